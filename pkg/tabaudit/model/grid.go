// Package model defines the shared data structures for tabular auditing.
package model

// Format identifies the tabular file format of an input.
type Format string

const (
	// FormatCSV is plain delimited text.
	FormatCSV Format = "csv"
	// FormatXLS is the legacy binary spreadsheet format.
	FormatXLS Format = "xls"
	// FormatXLSX is the modern structured spreadsheet format.
	FormatXLSX Format = "xlsx"
)

// SheetGrid is the raw, unvalidated contents of one sheet: an ordered list of
// rows, each an ordered list of cell values coerced to text. Rows are padded
// to a common width so the grid is rectangular. All-blank rows are dropped at
// load time; SourceRows preserves the original 1-based row number of each
// surviving row so findings can cite real coordinates.
type SheetGrid struct {
	// Name is the sheet name ("CSV" for delimited text input).
	Name string
	// Rows holds cell text, rectangular by padding.
	Rows [][]string
	// SourceRows maps each row index to its original 1-based row number.
	SourceRows []int
	// RowWidths holds each row's cell count before padding, so padded
	// cells can be told apart from genuinely blank ones.
	RowWidths []int
}

// RowCount returns the number of rows in the grid.
func (g SheetGrid) RowCount() int { return len(g.Rows) }

// ColCount returns the padded width of the grid.
func (g SheetGrid) ColCount() int {
	if len(g.Rows) == 0 {
		return 0
	}
	return len(g.Rows[0])
}

// SourceRow returns the original 1-based row number for row index i, falling
// back to i+1 when the mapping is absent.
func (g SheetGrid) SourceRow(i int) int {
	if i >= 0 && i < len(g.SourceRows) {
		return g.SourceRows[i]
	}
	return i + 1
}

// RowWidth returns row i's cell count before padding, falling back to the
// padded width when the mapping is absent.
func (g SheetGrid) RowWidth(i int) int {
	if i >= 0 && i < len(g.RowWidths) {
		return g.RowWidths[i]
	}
	if i >= 0 && i < len(g.Rows) {
		return len(g.Rows[i])
	}
	return 0
}

// Workbook is the raw loader output for one input file.
type Workbook struct {
	// Path is the input file path.
	Path string
	// Format is the detected file format.
	Format Format
	// Sheets holds per-sheet grids in workbook order.
	Sheets []SheetGrid
}

// Sheet returns the grid for the named sheet.
func (w *Workbook) Sheet(name string) (SheetGrid, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return SheetGrid{}, false
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}
