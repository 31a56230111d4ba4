// Package tabaudit audits tabular files (CSV, legacy XLS, XLSX) for
// machine readability. A run is a pure function of the input file and the
// caller's hints: the file is loaded into raw grids, the table structure is
// inferred (or hinted) and repaired into a canonical context, and an
// ordered rule set per level is dispatched against a format-specific
// checker. Only resource and configuration trouble is an error; every
// rule-level fault is folded into its outcome.
package tabaudit

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/builder"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/checker"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/loader"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/oracle"
)

// ErrSheetNotFound indicates a hinted sheet name matching no sheet in the
// workbook. Unlike row hints, a bad sheet name cannot be repaired into
// anything meaningful, so it aborts the run.
var ErrSheetNotFound = errors.New("hinted sheet not found in workbook")

// Result is the outcome of one audit run.
type Result struct {
	// Path is the audited file.
	Path string `json:"path"`
	// Format is the detected file format.
	Format model.Format `json:"format"`
	// Sheet is the audited sheet.
	Sheet string `json:"sheet"`
	// Warnings lists structural repairs applied while building the table
	// context.
	Warnings []string `json:"warnings,omitempty"`
	// Summaries holds one entry per requested level, in order.
	Summaries []model.LevelSummary `json:"summaries"`
}

// Passed reports whether every rule in every level passed.
func (r *Result) Passed() bool {
	for _, s := range r.Summaries {
		if s.Passed < s.Total {
			return false
		}
	}
	return true
}

// Pipeline wires the loader, structure oracle, context builder and checker
// factory into one reusable audit engine. A Pipeline is safe for concurrent
// Run calls: all per-run state lives on the stack.
type Pipeline struct {
	opts     Options
	registry *loader.Registry
	builder  *builder.Builder
	factory  *checker.Factory
	oracle   *oracle.StructureOracle
	log      *zap.SugaredLogger
}

// New returns a Pipeline for the given options.
func New(opts Options) *Pipeline {
	if len(opts.Levels) == 0 {
		opts.Levels = model.Levels()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	factoryOpts := []checker.FactoryOption{checker.WithLogger(log)}
	var structOracle *oracle.StructureOracle
	if opts.Completer != nil {
		structOracle = oracle.New(opts.Completer, log)
		factoryOpts = append(factoryOpts, checker.WithJudge(opts.Completer))
	}

	return &Pipeline{
		opts:     opts,
		registry: loader.NewRegistry(log),
		builder:  builder.New(log),
		factory:  checker.NewFactory(factoryOpts...),
		oracle:   structOracle,
		log:      log,
	}
}

// Run audits one file and returns the ordered outcomes per level.
func (p *Pipeline) Run(ctx context.Context, path string, hints Hints) (*Result, error) {
	wb, err := p.registry.Load(path)
	if err != nil {
		return nil, err
	}

	grid, err := p.selectSheet(ctx, wb, hints)
	if err != nil {
		return nil, err
	}

	var proposal model.StructureProposal
	switch {
	case hints.structural():
		proposal = hints.proposal()
	case p.oracle != nil:
		proposal = p.oracle.ProposeStructure(ctx, grid)
	default:
		proposal = model.EmptyProposal()
	}

	tc := p.builder.Build(grid, proposal)

	result := &Result{
		Path:     path,
		Format:   wb.Format,
		Sheet:    tc.SheetName,
		Warnings: tc.Warnings,
	}
	for _, level := range p.opts.Levels {
		summary, err := p.runLevel(ctx, path, wb, level, tc)
		if err != nil {
			return nil, err
		}
		result.Summaries = append(result.Summaries, summary)
	}

	p.log.Infow("audit complete",
		"path", path, "sheet", tc.SheetName, "levels", len(result.Summaries),
		"passed", result.Passed())
	return result, nil
}

// selectSheet picks the sheet to audit: the hinted name when given, the
// oracle's choice for multi-sheet workbooks, the first sheet otherwise.
func (p *Pipeline) selectSheet(ctx context.Context, wb *model.Workbook, hints Hints) (model.SheetGrid, error) {
	if len(wb.Sheets) == 0 {
		return model.SheetGrid{}, errors.Newf("%q contains no sheets", wb.Path)
	}

	if hints.Sheet != "" {
		g, ok := wb.Sheet(hints.Sheet)
		if !ok {
			return model.SheetGrid{}, errors.Wrapf(ErrSheetNotFound,
				"%q (have %v)", hints.Sheet, wb.SheetNames())
		}
		return g, nil
	}

	if p.oracle != nil && len(wb.Sheets) > 1 {
		name, err := p.oracle.SelectMainSheet(ctx, wb)
		if err != nil {
			return model.SheetGrid{}, err
		}
		if g, ok := wb.Sheet(name); ok {
			return g, nil
		}
	}
	return wb.Sheets[0], nil
}

// runLevel resolves the level's rules and checker and dispatches the rules.
func (p *Pipeline) runLevel(ctx context.Context, path string, wb *model.Workbook, level model.Level, tc *model.TableContext) (model.LevelSummary, error) {
	rules, err := checker.LoadRules(level, p.opts.RulesDir)
	if err != nil {
		return model.LevelSummary{}, err
	}

	c, err := p.factory.NewChecker(path, wb, level)
	if err != nil {
		return model.LevelSummary{}, err
	}
	defer c.Close()

	var outcomes []model.CheckOutcome
	if p.opts.Workers > 1 {
		outcomes = checker.RunParallel(ctx, rules, c, tc, p.opts.Workers)
	} else {
		outcomes = checker.Run(ctx, rules, c, tc)
	}
	return model.Summarize(level, outcomes), nil
}
