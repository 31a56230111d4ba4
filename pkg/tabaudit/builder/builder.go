// Package builder turns an untrusted structure proposal and a raw grid into
// a validated, canonical TableContext. Building never fails outright:
// inconsistent proposals are repaired with deterministic fallbacks and the
// degraded parts are recorded as warnings on the resulting context.
package builder

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// Violation describes one inconsistency found in a proposal.
type Violation struct {
	// Field names the offending proposal field.
	Field string
	// Detail explains the inconsistency.
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Detail)
}

// Builder validates and repairs structure proposals against actual grid
// bounds and slices grids into canonical contexts.
type Builder struct {
	log *zap.SugaredLogger
}

// New returns a Builder logging through log. A nil log is replaced with a
// nop logger.
func New(log *zap.SugaredLogger) *Builder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Builder{log: log}
}

// Validate checks a proposal against the grid row count and returns every
// inconsistency found. An empty result means the proposal can be used as-is.
func (b *Builder) Validate(p model.StructureProposal, rowCount int) []Violation {
	var vs []Violation

	if len(p.HeaderRows) == 0 {
		vs = append(vs, Violation{"header_rows", "no header rows proposed"})
	}
	for _, r := range p.HeaderRows {
		if r < 0 || r >= rowCount {
			vs = append(vs, Violation{"header_rows", fmt.Sprintf("row %d outside grid of %d rows", r, rowCount)})
		}
	}

	if p.DataStart == model.Unset {
		vs = append(vs, Violation{"data_start", "missing"})
	} else if p.DataStart < 0 || p.DataStart >= rowCount {
		vs = append(vs, Violation{"data_start", fmt.Sprintf("row %d outside grid of %d rows", p.DataStart, rowCount)})
	}
	if p.DataEnd == model.Unset {
		vs = append(vs, Violation{"data_end", "missing"})
	} else if p.DataEnd < 0 || p.DataEnd >= rowCount {
		vs = append(vs, Violation{"data_end", fmt.Sprintf("row %d outside grid of %d rows", p.DataEnd, rowCount)})
	}
	if p.DataStart != model.Unset && p.DataEnd != model.Unset && p.DataStart > p.DataEnd {
		vs = append(vs, Violation{"data_range", fmt.Sprintf("data_start %d after data_end %d", p.DataStart, p.DataEnd)})
	}

	if max := p.MaxHeaderRow(); max != model.Unset && p.DataStart != model.Unset && p.DataStart <= max {
		vs = append(vs, Violation{"data_start", fmt.Sprintf("row %d overlaps header rows ending at %d", p.DataStart, max)})
	}

	for _, r := range p.AnnotationRows {
		if r < 0 || r >= rowCount {
			vs = append(vs, Violation{"annotation_rows", fmt.Sprintf("row %d outside grid of %d rows", r, rowCount)})
		}
	}

	return vs
}

// Repair resolves every violation with a deterministic fallback and returns
// a normalized proposal that is guaranteed to be usable against a grid of
// rowCount rows. For rowCount <= 1 the repaired proposal describes an
// empty-data context with a best-effort single-row header.
func (b *Builder) Repair(p model.StructureProposal, rowCount int) model.StructureProposal {
	out := model.StructureProposal{DataStart: p.DataStart, DataEnd: p.DataEnd}

	if rowCount <= 0 {
		return model.StructureProposal{DataStart: 0, DataEnd: model.Unset}
	}

	// Header rows: clamp into the grid, dedupe, sort; default to row 0.
	seen := make(map[int]bool)
	for _, r := range p.HeaderRows {
		if r < 0 {
			r = 0
		}
		if r >= rowCount {
			r = rowCount - 1
		}
		if !seen[r] {
			seen[r] = true
			out.HeaderRows = append(out.HeaderRows, r)
		}
	}
	if len(out.HeaderRows) == 0 {
		// The defaulted row joins seen so annotation filtering below
		// treats it like any proposed header row.
		out.HeaderRows = []int{0}
		seen[0] = true
	}
	sort.Ints(out.HeaderRows)
	maxHeader := out.HeaderRows[len(out.HeaderRows)-1]

	if rowCount == 1 {
		// Single-row grid: the row is the header, data is empty.
		out.HeaderRows = []int{0}
		out.DataStart = 1
		out.DataEnd = 0
		out.AnnotationRows = nil
		return out
	}

	// Data bounds: missing values default to the row after the header and
	// the last grid row; out-of-range and inverted bounds are clamped to
	// [min(data_start, rowCount-1), rowCount-1].
	if out.DataStart == model.Unset {
		out.DataStart = maxHeader + 1
	}
	if out.DataStart < 0 {
		out.DataStart = 0
	}
	if out.DataStart > rowCount-1 {
		out.DataStart = rowCount - 1
	}
	if out.DataStart <= maxHeader {
		out.DataStart = maxHeader + 1
	}
	if out.DataEnd == model.Unset || out.DataEnd > rowCount-1 || out.DataEnd < out.DataStart {
		out.DataEnd = rowCount - 1
	}
	// A header consuming the whole grid leaves no data rows.
	if out.DataStart > out.DataEnd {
		out.DataStart = out.DataEnd + 1
	}

	// Annotation rows must never overlap the header or data regions;
	// overlapping and out-of-range entries are dropped, not rejected.
	for _, r := range p.AnnotationRows {
		if r < 0 || r >= rowCount {
			continue
		}
		if seen[r] {
			continue
		}
		if r >= out.DataStart && r <= out.DataEnd {
			continue
		}
		out.AnnotationRows = append(out.AnnotationRows, r)
	}
	sort.Ints(out.AnnotationRows)

	return out
}

// BuildHeader composes the column header from the given header rows. Within
// each level a blank cell inherits the nearest preceding non-blank value
// (fill-down across the row, the usual shape left by merged header cells);
// cells still blank afterwards become an explicit placeholder. Multiple
// levels compose top-to-bottom into one hierarchical label per column.
func (b *Builder) BuildHeader(grid model.SheetGrid, headerRows []int) model.HeaderModel {
	width := grid.ColCount()
	levels := make([][]string, 0, len(headerRows))

	for _, r := range headerRows {
		level := make([]string, width)
		if r >= 0 && r < grid.RowCount() {
			copy(level, grid.Rows[r])
		}
		fill := ""
		for c := 0; c < width; c++ {
			cell := strings.TrimSpace(level[c])
			if cell == "" {
				cell = fill
			} else {
				fill = cell
			}
			if cell == "" {
				cell = model.PlaceholderLabel
			}
			level[c] = cell
		}
		levels = append(levels, level)
	}

	labels := make([]string, width)
	for c := 0; c < width; c++ {
		parts := make([]string, 0, len(levels))
		for _, level := range levels {
			if level[c] != model.PlaceholderLabel || len(levels) == 1 {
				parts = append(parts, level[c])
			}
		}
		if len(parts) == 0 {
			labels[c] = model.PlaceholderLabel
		} else {
			labels[c] = strings.Join(parts, " / ")
		}
	}

	return model.HeaderModel{Labels: labels, Levels: levels}
}

// syntheticHeader returns positional fallback labels col_1..col_n.
func syntheticHeader(n int) model.HeaderModel {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("col_%d", i+1)
	}
	return model.HeaderModel{Labels: labels, Levels: [][]string{append([]string(nil), labels...)}, Synthetic: true}
}

// Build converts a grid plus an untrusted proposal into a canonical
// TableContext. It never fails: the proposal is validated and repaired
// first, and structural problems surface only as warnings on the context.
func (b *Builder) Build(grid model.SheetGrid, p model.StructureProposal) *model.TableContext {
	rowCount := grid.RowCount()

	var warnings []string
	for _, v := range b.Validate(p, rowCount) {
		warnings = append(warnings, "proposal repaired: "+v.String())
	}
	if len(warnings) > 0 {
		b.log.Debugw("repairing structure proposal",
			"sheet", grid.Name, "violations", len(warnings))
	}
	np := b.Repair(p, rowCount)

	ctx := &model.TableContext{
		SheetName: grid.Name,
		RowIndices: model.RowIndices{
			HeaderRows:     np.HeaderRows,
			DataStart:      np.DataStart,
			DataEnd:        np.DataEnd,
			AnnotationRows: np.AnnotationRows,
		},
		Warnings: warnings,
	}

	if rowCount == 0 {
		ctx.Header = syntheticHeader(0)
		return ctx
	}

	ctx.Header = b.BuildHeader(grid, np.HeaderRows)

	// Slice regions by direct row ranges.
	minHeader := np.HeaderRows[0]
	for r := 0; r < minHeader && r < rowCount; r++ {
		ctx.UpperAnnotations = append(ctx.UpperAnnotations, append([]string(nil), grid.Rows[r]...))
	}
	for r := np.DataStart; r <= np.DataEnd && r < rowCount; r++ {
		ctx.Data = append(ctx.Data, append([]string(nil), grid.Rows[r]...))
		ctx.SourceRows = append(ctx.SourceRows, grid.SourceRow(r))
		ctx.DataWidths = append(ctx.DataWidths, grid.RowWidth(r))
	}
	for r := np.DataEnd + 1; r < rowCount; r++ {
		ctx.LowerAnnotations = append(ctx.LowerAnnotations, append([]string(nil), grid.Rows[r]...))
	}

	// Width reconciliation: the header must describe exactly the data
	// columns; otherwise fall back to synthetic positional names and
	// record a structural warning.
	if len(ctx.Data) > 0 && ctx.Header.Width() != len(ctx.Data[0]) {
		ctx.Warnings = append(ctx.Warnings, fmt.Sprintf(
			"header width %d does not match data width %d; using positional column names",
			ctx.Header.Width(), len(ctx.Data[0])))
		ctx.Header = syntheticHeader(len(ctx.Data[0]))
	}

	return ctx
}
