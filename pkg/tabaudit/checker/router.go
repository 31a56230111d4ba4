package checker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// Run executes an ordered rule list against a resolved checker and a
// read-only context, producing exactly one outcome per rule in declaration
// order. Faults never escape a rule: an unknown capability becomes a "not
// implemented" failure and any error or panic inside a capability becomes a
// failing outcome carrying the fault text.
func Run(ctx context.Context, rules []model.RuleDescriptor, c *Checker, tc *model.TableContext) []model.CheckOutcome {
	outcomes := make([]model.CheckOutcome, len(rules))
	for i, rule := range rules {
		outcomes[i] = runOne(ctx, rule, c, tc)
	}
	return outcomes
}

// RunParallel executes the rule list with up to workers concurrent rule
// invocations. The context is immutable and every capability is read-only,
// so rules need no coordination; outcomes land in their declaration-order
// slot regardless of completion timing. Order is a contract, not an
// artifact of scheduling.
func RunParallel(ctx context.Context, rules []model.RuleDescriptor, c *Checker, tc *model.TableContext, workers int) []model.CheckOutcome {
	if workers <= 1 || len(rules) <= 1 {
		return Run(ctx, rules, c, tc)
	}

	outcomes := make([]model.CheckOutcome, len(rules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rule := range rules {
		g.Go(func() error {
			outcomes[i] = runOne(gctx, rule, c, tc)
			return nil
		})
	}
	// Workers only record outcomes; the group never carries an error.
	_ = g.Wait()
	return outcomes
}

// runOne invokes a single rule with total fault isolation.
func runOne(ctx context.Context, rule model.RuleDescriptor, c *Checker, tc *model.TableContext) (out model.CheckOutcome) {
	out = model.CheckOutcome{ID: rule.ID, Description: rule.Description}

	fn, ok := c.Capability(rule.Capability)
	if !ok {
		out.Passed = false
		out.Message = fmt.Sprintf("capability %q is not implemented", rule.Capability)
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			out.Passed = false
			out.Message = fmt.Sprintf("check failed: %v", r)
		}
	}()

	passed, msg, err := fn(ctx, tc)
	if err != nil {
		out.Passed = false
		out.Message = fmt.Sprintf("check failed: %v", err)
		return out
	}
	out.Passed = passed
	out.Message = msg
	return out
}
