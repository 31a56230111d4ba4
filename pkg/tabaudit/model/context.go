package model

// PlaceholderLabel replaces a header cell that stays blank after fill-down.
const PlaceholderLabel = "(unnamed)"

// HeaderModel is the canonical set of column labels for a table. Multi-row
// headers keep one entry per level in Levels; Labels holds the composed
// hierarchical label per column. Labels are never blank after repair, but
// they are not guaranteed unique.
type HeaderModel struct {
	// Labels is the composed label per column, in column order.
	Labels []string
	// Levels holds the per-level labels, outermost first. len(Levels) >= 1
	// for any non-synthetic header.
	Levels [][]string
	// Synthetic reports that the labels are positional fallbacks rather
	// than values read from the sheet.
	Synthetic bool
}

// Width returns the number of columns the header describes.
func (h HeaderModel) Width() int { return len(h.Labels) }

// RowIndices records where each region of the table sits in the source
// grid, after repair. Indices are 0-based into the loaded grid.
type RowIndices struct {
	HeaderRows     []int
	DataStart      int
	DataEnd        int
	AnnotationRows []int
}

// TableContext is the canonical, validated representation of one sheet:
// composed header, data matrix and annotation regions. It is built once per
// run and treated as read-only afterwards, so concurrent rule execution
// needs no locking.
type TableContext struct {
	// SheetName is the source sheet ("CSV" for delimited text input).
	SheetName string
	// Header is the canonical column header.
	Header HeaderModel
	// Data is the data region, rectangular, row-major.
	Data [][]string
	// UpperAnnotations holds rows above the header.
	UpperAnnotations [][]string
	// LowerAnnotations holds rows below the data region.
	LowerAnnotations [][]string
	// RowIndices maps the regions back to source grid rows.
	RowIndices RowIndices
	// SourceRows maps data row index to the original 1-based sheet row.
	SourceRows []int
	// DataWidths maps data row index to the row's cell count before the
	// loader padded it rectangular. Cells beyond this width are padding,
	// not values.
	DataWidths []int
	// Warnings lists non-fatal structural findings recorded during the
	// build (for example a header/data width mismatch).
	Warnings []string
}

// DataRowCount returns the number of data rows.
func (c *TableContext) DataRowCount() int { return len(c.Data) }

// ColCount returns the data column count, falling back to the header width
// for an empty-data context.
func (c *TableContext) ColCount() int {
	if len(c.Data) > 0 {
		return len(c.Data[0])
	}
	return c.Header.Width()
}

// Column returns the values of one data column in row order. Out-of-range
// indices yield an empty slice.
func (c *TableContext) Column(i int) []string {
	if i < 0 || i >= c.ColCount() {
		return nil
	}
	col := make([]string, 0, len(c.Data))
	for _, row := range c.Data {
		if i < len(row) {
			col = append(col, row[i])
		} else {
			col = append(col, "")
		}
	}
	return col
}

// CellPadded reports whether data cell (row, col) exists only because the
// loader padded the row to the grid width. Without width information no
// cell counts as padding.
func (c *TableContext) CellPadded(row, col int) bool {
	if row < 0 || row >= len(c.DataWidths) {
		return false
	}
	return col >= c.DataWidths[row]
}

// DataSourceRow returns the original 1-based sheet row for data row i.
func (c *TableContext) DataSourceRow(i int) int {
	if i >= 0 && i < len(c.SourceRows) {
		return c.SourceRows[i]
	}
	return c.RowIndices.DataStart + i + 1
}
