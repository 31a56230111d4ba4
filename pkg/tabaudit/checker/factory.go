package checker

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// ErrNoChecker indicates no registered format variant claims the input's
// extension. This is a configuration error and aborts the run before any
// rule executes.
var ErrNoChecker = errors.New("no checker registered for file format")

// HandlerFunc opens a format handler for a file. The workbook carries the
// already-loaded grids so handlers need not reparse cell values.
type HandlerFunc func(path string, wb *model.Workbook) (Handler, error)

// variant is one registered format implementation.
type variant struct {
	extensions []string
	open       HandlerFunc
}

// Factory resolves (file format, level) pairs to checkers.
type Factory struct {
	variants []variant
	judge    Judge
	log      *zap.SugaredLogger
}

// FactoryOption adjusts a Factory.
type FactoryOption func(*Factory)

// WithJudge installs the semantic oracle used by judgment-dependent checks.
func WithJudge(j Judge) FactoryOption {
	return func(f *Factory) { f.judge = j }
}

// WithLogger installs the factory (and checker) logger.
func WithLogger(log *zap.SugaredLogger) FactoryOption {
	return func(f *Factory) { f.log = log }
}

// NewFactory returns a Factory with the built-in format variants (CSV,
// legacy XLS, XLSX) registered.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(f)
	}
	f.Register([]string{".csv"}, newCSVHandler)
	f.Register([]string{".xls"}, newXLSHandler)
	f.Register([]string{".xlsx", ".xlsm"}, newXLSXHandler)
	return f
}

// Register adds a format variant. Variants are scanned linearly in
// registration order; the first whose extension set matches wins.
func (f *Factory) Register(extensions []string, open HandlerFunc) {
	f.variants = append(f.variants, variant{extensions: extensions, open: open})
}

// NewChecker resolves the variant for the file's extension and binds the
// level's capability set to it. ErrNoChecker (fatal) when no variant
// claims the extension; unknown levels are likewise configuration errors.
func (f *Factory) NewChecker(path string, wb *model.Workbook, level model.Level) (*Checker, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var open HandlerFunc
	for _, v := range f.variants {
		for _, e := range v.extensions {
			if e == ext {
				open = v.open
				break
			}
		}
		if open != nil {
			break
		}
	}
	if open == nil {
		return nil, errors.Wrapf(ErrNoChecker, "%q", ext)
	}

	handler, err := open(path, wb)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s handler", ext)
	}

	c := &Checker{
		level:   level,
		handler: handler,
		judge:   f.judge,
		log:     f.log,
	}
	switch level {
	case model.Level1:
		c.caps = level1Capabilities(c)
	case model.Level2:
		c.caps = level2Capabilities(c)
	case model.Level3:
		c.caps = level3Capabilities(c)
	default:
		handler.Close()
		return nil, errors.Newf("unknown check level %q", level)
	}

	f.log.Debugw("resolved checker",
		"format", handler.Format(), "level", level, "capabilities", len(c.caps))
	return c, nil
}
