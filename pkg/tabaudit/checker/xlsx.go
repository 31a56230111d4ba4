package checker

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// xlsxHandler serves modern structured spreadsheets with full-fidelity
// introspection through excelize.
type xlsxHandler struct {
	path string
	wb   *model.Workbook
	file *excelize.File
}

func newXLSXHandler(path string, wb *model.Workbook) (Handler, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}
	return &xlsxHandler{path: path, wb: wb, file: f}, nil
}

func (h *xlsxHandler) Format() model.Format   { return model.FormatXLSX }
func (h *xlsxHandler) Extensions() []string   { return []string{".xlsx", ".xlsm"} }
func (h *xlsxHandler) DescribeFormat() string { return "modern Excel (.xlsx) format" }

func (h *xlsxHandler) Support(LeafOp) Support { return SupportFull }

// Drawings scans the OOXML package directly: anchored shapes live under
// xl/drawings/ and embedded media under xl/media/, neither of which
// excelize surfaces wholesale.
func (h *xlsxHandler) Drawings() ([]string, error) {
	z, err := zip.OpenReader(h.path)
	if err != nil {
		return nil, errors.Wrap(err, "open xlsx package")
	}
	defer z.Close()

	var found []string
	for _, entry := range z.File {
		name := entry.Name
		switch {
		case strings.HasPrefix(name, "xl/media/"):
			found = append(found, "embedded media "+path.Base(name))
		case strings.HasPrefix(name, "xl/drawings/") && strings.HasSuffix(name, ".xml"):
			rc, err := entry.Open()
			if err != nil {
				continue
			}
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(rc)
			rc.Close()
			if bytes.Contains(buf.Bytes(), []byte("<xdr:twoCellAnchor")) ||
				bytes.Contains(buf.Bytes(), []byte("<xdr:oneCellAnchor")) {
				found = append(found, "anchored drawing in "+path.Base(name))
			}
		}
	}
	return found, nil
}

// MergedRanges translates the grid-row window to sheet rows before
// comparing: blank sheet rows are dropped from the grid at load time, so
// grid indices and sheet coordinates diverge as soon as the sheet has a
// spacer row.
func (h *xlsxHandler) MergedRanges(sheet string, startRow, endRow int) ([]string, error) {
	grid, ok := h.wb.Sheet(sheet)
	if !ok {
		return nil, errors.Newf("unknown sheet %q", sheet)
	}
	if grid.RowCount() == 0 || endRow < startRow {
		return nil, nil
	}
	if startRow < 0 {
		startRow = 0
	}
	if endRow >= grid.RowCount() {
		endRow = grid.RowCount() - 1
	}
	firstSheetRow := grid.SourceRow(startRow)
	lastSheetRow := grid.SourceRow(endRow)

	merged, err := h.file.GetMergeCells(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "merged cells of %q", sheet)
	}
	var ranges []string
	for _, m := range merged {
		_, top, err1 := excelize.CellNameToCoordinates(m.GetStartAxis())
		_, bottom, err2 := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		if bottom < firstSheetRow || top > lastSheetRow {
			continue
		}
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	return ranges, nil
}

func (h *xlsxHandler) HiddenRows(sheet string) ([]int, error) {
	grid, ok := h.wb.Sheet(sheet)
	if !ok {
		return nil, errors.Newf("unknown sheet %q", sheet)
	}
	lastRow := 0
	if n := grid.RowCount(); n > 0 {
		lastRow = grid.SourceRow(n - 1)
	}
	var hidden []int
	for r := 1; r <= lastRow; r++ {
		visible, err := h.file.GetRowVisible(sheet, r)
		if err != nil {
			return nil, errors.Wrapf(err, "row visibility of %q", sheet)
		}
		if !visible {
			hidden = append(hidden, r)
		}
	}
	return hidden, nil
}

func (h *xlsxHandler) HiddenColumns(sheet string) ([]string, error) {
	grid, ok := h.wb.Sheet(sheet)
	if !ok {
		return nil, errors.Newf("unknown sheet %q", sheet)
	}
	var hidden []string
	for c := 1; c <= grid.ColCount(); c++ {
		letter := columnLetter(c)
		visible, err := h.file.GetColVisible(sheet, letter)
		if err != nil {
			return nil, errors.Wrapf(err, "column visibility of %q", sheet)
		}
		if !visible {
			hidden = append(hidden, letter)
		}
	}
	return hidden, nil
}

// StyledCells flags cells inside the table region whose visual styling
// (bold, italic, underline, non-default color, fill) may carry meaning the
// cell value does not.
func (h *xlsxHandler) StyledCells(sheet string, startRow, endRow, limit int) ([]string, error) {
	grid, ok := h.wb.Sheet(sheet)
	if !ok {
		return nil, errors.Newf("unknown sheet %q", sheet)
	}

	styleKinds := map[int][]string{} // style id -> flagged attributes
	var flagged []string
	for i := startRow; i <= endRow && i < grid.RowCount(); i++ {
		sourceRow := grid.SourceRow(i)
		for c := 1; c <= grid.ColCount(); c++ {
			ref := cellRef(c, sourceRow)
			styleID, err := h.file.GetCellStyle(sheet, ref)
			if err != nil {
				continue
			}
			kinds, seen := styleKinds[styleID]
			if !seen {
				style, err := h.file.GetStyle(styleID)
				if err == nil && style != nil {
					kinds = describeStyle(style)
				}
				styleKinds[styleID] = kinds
			}
			for _, kind := range kinds {
				flagged = append(flagged, fmt.Sprintf("%s (%s)", ref, kind))
				if limit > 0 && len(flagged) >= limit {
					return flagged, nil
				}
			}
		}
	}
	return flagged, nil
}

// describeStyle lists the meaning-bearing attributes of a cell style.
func describeStyle(s *excelize.Style) []string {
	var kinds []string
	if f := s.Font; f != nil {
		if f.Bold {
			kinds = append(kinds, "bold")
		}
		if f.Italic {
			kinds = append(kinds, "italic")
		}
		if f.Underline != "" && f.Underline != "none" {
			kinds = append(kinds, "underline")
		}
		if c := strings.ToUpper(f.Color); c != "" && c != "000000" && c != "FF000000" {
			kinds = append(kinds, "font color")
		}
	}
	if s.Fill.Type == "pattern" && s.Fill.Pattern > 0 {
		for _, c := range s.Fill.Color {
			cc := strings.ToUpper(c)
			if cc != "" && cc != "FFFFFF" && cc != "FFFFFFFF" && cc != "00000000" {
				kinds = append(kinds, "fill color")
				break
			}
		}
	}
	return kinds
}

func (h *xlsxHandler) AuxiliarySheets(mainSheet string) []AuxSheet {
	return auxSheetsFromWorkbook(h.wb, mainSheet)
}

// NativeStructureIssues flags hidden sheets: a workbook that hides part of
// itself is not machine-readable at face value.
func (h *xlsxHandler) NativeStructureIssues(_ *model.TableContext) ([]string, error) {
	var issues []string
	for _, name := range h.file.GetSheetList() {
		visible, err := h.file.GetSheetVisible(name)
		if err != nil {
			return nil, errors.Wrapf(err, "sheet visibility of %q", name)
		}
		if !visible {
			issues = append(issues, fmt.Sprintf("sheet %q is hidden", name))
		}
	}
	return issues, nil
}

func (h *xlsxHandler) Close() error { return h.file.Close() }
