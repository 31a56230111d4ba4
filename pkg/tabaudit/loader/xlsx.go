package loader

import (
	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// xlsxLoader reads modern structured spreadsheets through excelize.
type xlsxLoader struct{}

func (l *xlsxLoader) Extensions() []string { return []string{".xlsx", ".xlsm"} }

func (l *xlsxLoader) Load(path string) (*model.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}
	defer f.Close()

	wb := &model.Workbook{Path: path, Format: model.FormatXLSX}
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, errors.Wrapf(err, "read sheet %q", sheetName)
		}
		wb.Sheets = append(wb.Sheets, newGrid(sheetName, rows))
	}
	return wb, nil
}
