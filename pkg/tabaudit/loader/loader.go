// Package loader reads tabular files into raw, unvalidated grids. Loaders
// do no structural interpretation: every cell is coerced to text, all-blank
// rows are dropped (keeping their original row numbers) and rows are padded
// to a common width so downstream code can assume rectangular grids.
package loader

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// ErrUnsupportedFormat indicates no loader is registered for the input's
// file extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Loader reads one file format into a raw workbook.
type Loader interface {
	// Extensions returns the lowercase file extensions this loader
	// handles, dot included.
	Extensions() []string
	// Load reads the file at path. Unreadable or undecodable input is a
	// fatal resource error.
	Load(path string) (*model.Workbook, error)
}

// Registry resolves loaders by file extension.
type Registry struct {
	loaders []Loader
	log     *zap.SugaredLogger
}

// NewRegistry returns a registry with the default loaders (CSV, legacy XLS,
// XLSX) registered.
func NewRegistry(log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Registry{log: log}
	r.Register(&csvLoader{})
	r.Register(&xlsLoader{})
	r.Register(&xlsxLoader{})
	return r
}

// Register appends a loader. Later registrations do not shadow earlier ones;
// the first loader claiming an extension wins.
func (r *Registry) Register(l Loader) {
	r.loaders = append(r.loaders, l)
}

// Resolve returns the loader for path's extension.
func (r *Registry) Resolve(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range r.loaders {
		for _, e := range l.Extensions() {
			if e == ext {
				return l, nil
			}
		}
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
}

// Load reads path with the loader registered for its extension.
func (r *Registry) Load(path string) (*model.Workbook, error) {
	l, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}
	wb, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	r.log.Debugw("loaded workbook",
		"path", path, "format", wb.Format, "sheets", len(wb.Sheets))
	return wb, nil
}

// newGrid normalizes raw rows into a SheetGrid: blank rows are dropped with
// their original 1-based row numbers recorded, and the survivors are padded
// to the widest row.
func newGrid(name string, rows [][]string) model.SheetGrid {
	g := model.SheetGrid{Name: name}
	width := 0
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if len(row) > width {
			width = len(row)
		}
		g.Rows = append(g.Rows, row)
		g.SourceRows = append(g.SourceRows, i+1)
		g.RowWidths = append(g.RowWidths, len(row))
	}
	for i, row := range g.Rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			g.Rows[i] = padded
		}
	}
	return g
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
