package checker

import (
	"github.com/extrame/xls"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// auxPreviewRows bounds the per-sheet preview handed to the Level-3
// auxiliary-sheet checks.
const auxPreviewRows = 10

// xlsHandler serves legacy binary spreadsheets. The BIFF reader only
// exposes cell values, so merged cells, hidden rows/columns, styling and
// embedded objects cannot be inspected: those leaf operations report
// SupportUnavailable and the checks fail with an explicit manual-inspection
// caveat rather than claiming a clean result.
type xlsHandler struct {
	path string
	wb   *model.Workbook
}

func newXLSHandler(path string, wb *model.Workbook) (Handler, error) {
	return &xlsHandler{path: path, wb: wb}, nil
}

func (h *xlsHandler) Format() model.Format { return model.FormatXLS }
func (h *xlsHandler) Extensions() []string { return []string{".xls"} }

func (h *xlsHandler) DescribeFormat() string {
	return "legacy Excel (.xls) format; formatting and object checks are limited, inspect those manually"
}

func (h *xlsHandler) Support(op LeafOp) Support {
	switch op {
	case OpDrawings, OpMergedCells, OpHiddenRowsCols, OpCellStyling:
		return SupportUnavailable
	}
	return SupportFull
}

func (h *xlsHandler) Drawings() ([]string, error) { return nil, nil }

func (h *xlsHandler) MergedRanges(string, int, int) ([]string, error) { return nil, nil }

func (h *xlsHandler) HiddenRows(string) ([]int, error) { return nil, nil }

func (h *xlsHandler) HiddenColumns(string) ([]string, error) { return nil, nil }

func (h *xlsHandler) StyledCells(string, int, int, int) ([]string, error) { return nil, nil }

func (h *xlsHandler) AuxiliarySheets(mainSheet string) []AuxSheet {
	return auxSheetsFromWorkbook(h.wb, mainSheet)
}

// NativeStructureIssues verifies the BIFF container is intact: the file
// reopens and every sheet is reachable.
func (h *xlsHandler) NativeStructureIssues(_ *model.TableContext) ([]string, error) {
	book, err := xls.Open(h.path, "utf-8")
	if err != nil {
		return []string{"workbook container is not readable: " + err.Error()}, nil
	}
	var issues []string
	if book.NumSheets() == 0 {
		issues = append(issues, "workbook contains no sheets")
	}
	for i := 0; i < book.NumSheets(); i++ {
		if book.GetSheet(i) == nil {
			issues = append(issues, "a sheet is present but unreadable")
		}
	}
	return issues, nil
}

func (h *xlsHandler) Close() error { return nil }

// auxSheetsFromWorkbook builds grid-backed auxiliary sheet previews, shared
// by the handlers that keep no richer workbook handle.
func auxSheetsFromWorkbook(wb *model.Workbook, mainSheet string) []AuxSheet {
	if wb == nil {
		return nil
	}
	var aux []AuxSheet
	for _, g := range wb.Sheets {
		if g.Name == mainSheet {
			continue
		}
		a := AuxSheet{Name: g.Name}
		for i, row := range g.Rows {
			if i >= auxPreviewRows {
				break
			}
			line := ""
			for _, cell := range row {
				if cell == "" {
					continue
				}
				if line != "" {
					line += " "
				}
				line += cell
			}
			if line != "" {
				a.Preview = append(a.Preview, line)
			}
		}
		aux = append(aux, a)
	}
	return aux
}
