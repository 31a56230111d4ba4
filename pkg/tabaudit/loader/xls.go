package loader

import (
	"github.com/cockroachdb/errors"
	"github.com/extrame/xls"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// xlsLoader reads legacy binary spreadsheets. The BIFF reader exposes cell
// values only; formatting introspection for this format is handled (and
// caveated) by the legacy checker variant.
type xlsLoader struct{}

func (l *xlsLoader) Extensions() []string { return []string{".xls"} }

func (l *xlsLoader) Load(path string) (*model.Workbook, error) {
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}

	wb := &model.Workbook{Path: path, Format: model.FormatXLS}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			// Row.LastCol is exclusive, per the BIFF row record.
			cells := make([]string, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			rows = append(rows, cells)
		}
		wb.Sheets = append(wb.Sheets, newGrid(sheet.Name, rows))
	}
	return wb, nil
}
