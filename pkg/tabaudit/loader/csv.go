package loader

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// csvSheetName is the synthetic sheet name for delimited text input, which
// has no sheet concept of its own.
const csvSheetName = "CSV"

// csvLoader reads delimited text. Input is decoded as UTF-8 (with or
// without BOM) when valid, otherwise as Shift_JIS, the common legacy
// encoding for published tabular data in Japan. Anything else is an
// undecodable resource error.
type csvLoader struct{}

func (l *csvLoader) Extensions() []string { return []string{".csv"} }

func (l *csvLoader) Load(path string) (*model.Workbook, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}

	text, err := DecodeText(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %q", path)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1 // ragged rows are a finding, not a read error
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "parse %q", path)
		}
		rows = append(rows, record)
	}

	return &model.Workbook{
		Path:   path,
		Format: model.FormatCSV,
		Sheets: []model.SheetGrid{newGrid(csvSheetName, rows)},
	}, nil
}

// DecodeText returns raw as UTF-8 text. A UTF-8 BOM is stripped; invalid
// UTF-8 falls back to Shift_JIS.
func DecodeText(raw []byte) ([]byte, error) {
	bom := unicode.UTF8BOM.NewDecoder()
	if stripped, _, err := transform.Bytes(bom, raw); err == nil && utf8.Valid(stripped) {
		return stripped, nil
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return nil, errors.Wrap(err, "input is neither valid UTF-8 nor Shift_JIS")
	}
	return decoded, nil
}
