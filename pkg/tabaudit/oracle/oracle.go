// Package oracle delegates ambiguous structural and semantic judgments to
// an external language-model service. Everything it returns is advisory:
// structure proposals go through builder validation and repair, and
// semantic verdicts are plain strings the caller interprets defensively.
// The core stays testable with a deterministic Completer stub.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// PreviewRows bounds how many leading and trailing grid rows are shown to
// the oracle.
const PreviewRows = 10

// Completer is the narrow synchronous surface to a language model: text in,
// verdict out. Calls are single-shot and side-effect free, so callers may
// retry; implementations should honor the context deadline.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// StructureOracle asks a Completer for table-structure judgments.
type StructureOracle struct {
	llm Completer
	log *zap.SugaredLogger
}

// New returns a StructureOracle. A nil log is replaced with a nop logger.
func New(llm Completer, log *zap.SugaredLogger) *StructureOracle {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &StructureOracle{llm: llm, log: log}
}

// Preview renders the bounded preview of a grid that oracle prompts embed:
// the first and last PreviewRows rows as comma-joined text, separated by an
// ellipsis row when the grid is larger than both windows.
func Preview(g model.SheetGrid) string {
	var b strings.Builder
	n := g.RowCount()
	if n <= 2*PreviewRows {
		for _, row := range g.Rows {
			b.WriteString(strings.Join(row, ","))
			b.WriteString("\n")
		}
		return b.String()
	}
	for _, row := range g.Rows[:PreviewRows] {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	b.WriteString("...\n")
	for _, row := range g.Rows[n-PreviewRows:] {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// SelectMainSheet asks which sheet holds the main table. A response naming
// no known sheet falls back to the first sheet.
func (o *StructureOracle) SelectMainSheet(ctx context.Context, wb *model.Workbook) (string, error) {
	if len(wb.Sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if len(wb.Sheets) == 1 {
		return wb.Sheets[0].Name, nil
	}

	var b strings.Builder
	b.WriteString("Below are the leading rows of several spreadsheet sheets.\n")
	b.WriteString("Reply with exactly one sheet name: the sheet holding the main data table.\n\n")
	for _, s := range wb.Sheets {
		fmt.Fprintf(&b, "[%s]\n%s\n", s.Name, Preview(s))
	}

	resp, err := o.llm.Complete(ctx, b.String())
	if err != nil {
		o.log.Warnw("sheet selection failed, using first sheet", "error", err)
		return wb.Sheets[0].Name, nil
	}
	for _, s := range wb.Sheets {
		if strings.Contains(resp, s.Name) {
			return s.Name, nil
		}
	}
	o.log.Debugw("sheet selection named no known sheet, using first sheet",
		"response", resp)
	return wb.Sheets[0].Name, nil
}

// ProposeStructure asks for header/data/annotation row boundaries of one
// sheet. The returned proposal is untrusted; a missing or unparsable
// response yields an empty proposal for the builder to repair, never an
// error the pipeline would surface.
func (o *StructureOracle) ProposeStructure(ctx context.Context, g model.SheetGrid) model.StructureProposal {
	prompt := fmt.Sprintf(`Below are the first and last %d rows of sheet %q.
The table may have merged cells and a multi-row header.

Return the following as JSON (row numbers 1-indexed):
- "header_rows": list of header row numbers (e.g. [3] or [3,4])
- "data_start": first data row number
- "data_end": last data row number
- "annotation_rows": note rows outside the table (optional, may be several)

Example:
`+"```json"+`
{"header_rows": [3, 4], "data_start": 5, "data_end": 29, "annotation_rows": [1, 30]}
`+"```"+`

Preview:
%s`, PreviewRows, g.Name, Preview(g))

	resp, err := o.llm.Complete(ctx, prompt)
	if err != nil {
		o.log.Warnw("structure inference failed, builder will use defaults",
			"sheet", g.Name, "error", err)
		return model.EmptyProposal()
	}
	p, err := ParseProposal(resp)
	if err != nil {
		o.log.Warnw("structure response unparsable, builder will use defaults",
			"sheet", g.Name, "error", err)
		return model.EmptyProposal()
	}
	return p
}

var jsonFence = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// proposalPayload mirrors the oracle's declared JSON contract (1-indexed).
type proposalPayload struct {
	HeaderRows     []int `json:"header_rows"`
	DataStart      *int  `json:"data_start"`
	DataEnd        *int  `json:"data_end"`
	AnnotationRows []int `json:"annotation_rows"`
}

// ParseProposal parses an oracle structure response. The JSON may arrive
// bare or inside a ```json fence. This is the single place 1-indexed oracle
// rows become the 0-based indices used everywhere else.
func ParseProposal(raw string) (model.StructureProposal, error) {
	body := strings.TrimSpace(raw)
	if m := jsonFence.FindStringSubmatch(body); m != nil {
		body = m[1]
	}

	var payload proposalPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return model.StructureProposal{}, errors.Wrap(err, "parse structure response")
	}

	p := model.EmptyProposal()
	for _, r := range payload.HeaderRows {
		p.HeaderRows = append(p.HeaderRows, r-1)
	}
	if payload.DataStart != nil {
		p.DataStart = *payload.DataStart - 1
	}
	if payload.DataEnd != nil {
		p.DataEnd = *payload.DataEnd - 1
	}
	for _, r := range payload.AnnotationRows {
		p.AnnotationRows = append(p.AnnotationRows, r-1)
	}
	return p, nil
}
