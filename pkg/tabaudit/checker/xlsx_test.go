package checker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/loader"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// Sheet layout: header on row 1, row 2 entirely blank, data on rows 3-5
// with A5:B5 merged. The blank row is dropped from the loaded grid, so
// grid indices and sheet rows diverge below it.
func writeMergedXLSX(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "merged.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "score"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "ann"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", 10))
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "bob"))
	require.NoError(t, f.SetCellValue("Sheet1", "B4", 20))
	require.NoError(t, f.SetCellValue("Sheet1", "A5", "total"))
	require.NoError(t, f.MergeCell("Sheet1", "A5", "B5"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestCheckNoMergedCellsSpansBlankSheetRows(t *testing.T) {
	path := writeMergedXLSX(t)

	wb, err := loader.NewRegistry(nil).Load(path)
	require.NoError(t, err)
	grid, ok := wb.Sheet("Sheet1")
	require.True(t, ok)
	// Blank sheet row 2 is dropped: four grid rows mapping to sheet rows
	// 1, 3, 4, 5.
	require.Equal(t, []int{1, 3, 4, 5}, grid.SourceRows)

	tc := &model.TableContext{
		SheetName: "Sheet1",
		Header:    model.HeaderModel{Labels: grid.Rows[0], Levels: [][]string{grid.Rows[0]}},
		Data:      grid.Rows[1:],
		RowIndices: model.RowIndices{
			HeaderRows: []int{0},
			DataStart:  1,
			DataEnd:    3,
		},
		SourceRows: grid.SourceRows[1:],
	}

	c, err := NewFactory().NewChecker(path, wb, model.Level1)
	require.NoError(t, err)
	defer c.Close()

	fn, ok := c.Capability("check_no_merged_cells")
	require.True(t, ok)
	passed, msg, err := fn(context.Background(), tc)
	require.NoError(t, err)
	assert.False(t, passed)
	assert.Contains(t, msg, "A5:B5")
}

func TestMergedRangesOutsideWindowIgnored(t *testing.T) {
	path := writeMergedXLSX(t)

	wb, err := loader.NewRegistry(nil).Load(path)
	require.NoError(t, err)

	h, err := newXLSXHandler(path, wb)
	require.NoError(t, err)
	defer h.Close()

	// Window covering grid rows 0-2 (sheet rows 1-4) excludes the merge
	// on sheet row 5.
	ranges, err := h.MergedRanges("Sheet1", 0, 2)
	require.NoError(t, err)
	assert.Empty(t, ranges)

	// An inverted window is empty, not an error.
	ranges, err = h.MergedRanges("Sheet1", 2, 0)
	require.NoError(t, err)
	assert.Empty(t, ranges)
}
