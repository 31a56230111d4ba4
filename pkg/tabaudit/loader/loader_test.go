package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "input.csv", []byte("id,name\n1,alice\n\n2,bob\n"))

	wb, err := NewRegistry(nil).Load(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	g := wb.Sheets[0]
	assert.Equal(t, "CSV", g.Name)
	assert.Equal(t, model.FormatCSV, wb.Format)
	// The blank row is dropped and original row numbers survive.
	require.Equal(t, 3, g.RowCount())
	assert.Equal(t, []int{1, 2, 4}, g.SourceRows)
	assert.Equal(t, []string{"2", "bob"}, g.Rows[2])
}

func TestLoadCSVPadsRaggedRows(t *testing.T) {
	path := writeFile(t, "ragged.csv", []byte("a,b,c\n1,2\n"))

	wb, err := NewRegistry(nil).Load(path)
	require.NoError(t, err)

	g := wb.Sheets[0]
	require.Equal(t, 2, g.RowCount())
	assert.Equal(t, 3, g.ColCount())
	assert.Equal(t, []string{"1", "2", ""}, g.Rows[1])
	// Pre-padding widths survive, so padded cells stay distinguishable
	// from genuinely blank ones.
	assert.Equal(t, []int{3, 2}, g.RowWidths)
	assert.Equal(t, 2, g.RowWidth(1))
}

func TestLoadCSVShiftJIS(t *testing.T) {
	utf8Body := "氏名,年齢\n山田,30\n"
	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(utf8Body))
	require.NoError(t, err)

	sjisPath := writeFile(t, "sjis.csv", sjis)
	utf8Path := writeFile(t, "utf8.csv", []byte(utf8Body))

	r := NewRegistry(nil)
	sjisWB, err := r.Load(sjisPath)
	require.NoError(t, err)
	utf8WB, err := r.Load(utf8Path)
	require.NoError(t, err)

	assert.Equal(t, utf8WB.Sheets[0].Rows, sjisWB.Sheets[0].Rows)
}

func TestLoadCSVStripsBOM(t *testing.T) {
	path := writeFile(t, "bom.csv", append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2\n")...))

	wb, err := NewRegistry(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, wb.Sheets[0].Rows[0])
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "id"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 1))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "alice"))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))

	wb, err := NewRegistry(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.FormatXLSX, wb.Format)

	g, ok := wb.Sheet("Sheet1")
	require.True(t, ok)
	require.Equal(t, 2, g.RowCount())
	assert.Equal(t, []string{"id", "name"}, g.Rows[0])
	assert.Equal(t, "1", g.Rows[1][0])
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "input.parquet", []byte("x"))

	_, err := NewRegistry(nil).Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewRegistry(nil).Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
