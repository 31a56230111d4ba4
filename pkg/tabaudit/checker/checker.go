// Package checker implements the machine-readability rule checks and their
// per-format dispatch. One generic check body exists per rule; everything
// format-specific is pushed down into a small Handler interface with a
// variant per file format, so the three formats share the check logic
// instead of reimplementing it.
package checker

import (
	"context"

	"go.uber.org/zap"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// Judge is the optional external semantic oracle used by checks whose
// verdict is inherently ambiguous (whitespace intent, header clarity, sheet
// categorization). Judgments are advisory and never assumed deterministic;
// with a nil Judge every such check falls back to its built-in heuristic.
type Judge interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CheckFunc is one capability: a pure function of the read-only context
// (plus the workbook handle and file path the enclosing checker holds).
// A non-nil error is an execution fault the router converts into a failing
// outcome.
type CheckFunc func(ctx context.Context, tc *model.TableContext) (passed bool, msg string, err error)

// Checker binds one level's capability set to one format handler.
type Checker struct {
	level   model.Level
	handler Handler
	judge   Judge
	log     *zap.SugaredLogger
	caps    map[string]CheckFunc
}

// Level returns the rule tier this checker serves.
func (c *Checker) Level() model.Level { return c.level }

// Format returns the file format this checker inspects.
func (c *Checker) Format() model.Format { return c.handler.Format() }

// Capability resolves a named check operation. The second return is false
// for capability names this level does not implement.
func (c *Checker) Capability(name string) (CheckFunc, bool) {
	fn, ok := c.caps[name]
	return fn, ok
}

// CapabilityNames lists the implemented capability names (unordered).
func (c *Checker) CapabilityNames() []string {
	names := make([]string, 0, len(c.caps))
	for name := range c.caps {
		names = append(names, name)
	}
	return names
}

// Close releases the underlying workbook handle.
func (c *Checker) Close() error { return c.handler.Close() }

// judgeOrDefault asks the judge and returns its verdict, or fallback when
// no judge is configured or the call fails. Oracle trouble must never fail
// a rule on its own.
func (c *Checker) judgeOrDefault(ctx context.Context, prompt, fallback string) string {
	if c.judge == nil {
		return fallback
	}
	verdict, err := c.judge.Complete(ctx, prompt)
	if err != nil {
		c.log.Debugw("semantic judgment unavailable, using heuristic",
			"error", err)
		return fallback
	}
	return verdict
}
