package checker

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/loader"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// csvHandler serves plain delimited text. CSV has no concept of drawings,
// merged cells, hidden rows or styling, so those leaf operations report
// SupportNone and the corresponding checks auto-pass as not applicable.
type csvHandler struct {
	path string
}

func newCSVHandler(path string, _ *model.Workbook) (Handler, error) {
	return &csvHandler{path: path}, nil
}

func (h *csvHandler) Format() model.Format   { return model.FormatCSV }
func (h *csvHandler) Extensions() []string   { return []string{".csv"} }
func (h *csvHandler) DescribeFormat() string { return "plain CSV text format" }

func (h *csvHandler) Support(op LeafOp) Support {
	switch op {
	case OpDrawings, OpMergedCells, OpHiddenRowsCols, OpCellStyling:
		return SupportNone
	}
	return SupportFull
}

func (h *csvHandler) Drawings() ([]string, error) { return nil, nil }

func (h *csvHandler) MergedRanges(string, int, int) ([]string, error) { return nil, nil }

func (h *csvHandler) HiddenRows(string) ([]int, error) { return nil, nil }

func (h *csvHandler) HiddenColumns(string) ([]string, error) { return nil, nil }

func (h *csvHandler) StyledCells(string, int, int, int) ([]string, error) { return nil, nil }

// AuxiliarySheets is always empty: a CSV file is a single table with no
// room for a codebook or metadata sheet.
func (h *csvHandler) AuxiliarySheets(string) []AuxSheet { return nil }

// NativeStructureIssues re-reads the raw file and flags ragged records:
// rows whose field count differs from the dominant width parse into the
// wrong columns downstream.
func (h *csvHandler) NativeStructureIssues(_ *model.TableContext) ([]string, error) {
	raw, err := os.ReadFile(h.path)
	if err != nil {
		return nil, errors.Wrap(err, "reread csv")
	}
	text, err := loader.DecodeText(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	counts := map[int]int{} // field count -> occurrences
	firstRowWith := map[int]int{}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return []string{fmt.Sprintf("row %d is not parseable as CSV: %v", row+1, err)}, nil
		}
		row++
		blank := true
		for _, f := range record {
			if f != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		n := len(record)
		counts[n]++
		if _, ok := firstRowWith[n]; !ok {
			firstRowWith[n] = row
		}
	}

	if len(counts) <= 1 {
		return nil, nil
	}
	dominant, best := 0, 0
	for n, c := range counts {
		if c > best {
			dominant, best = n, c
		}
	}
	var issues []string
	for n, c := range counts {
		if n == dominant {
			continue
		}
		issues = append(issues, fmt.Sprintf(
			"%d row(s) have %d fields instead of %d (first at row %d)",
			c, n, dominant, firstRowWith[n]))
	}
	return issues, nil
}

func (h *csvHandler) Close() error { return nil }
