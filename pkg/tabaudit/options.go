package tabaudit

import (
	"go.uber.org/zap"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/oracle"
)

// Hints carries caller-supplied structure overrides. Row numbers are
// 1-based and inclusive, matching what a person reads off a spreadsheet;
// zero means unset. Hints are advisory: they feed the same validation and
// repair path as inferred structure, so an impossible hint degrades into a
// repaired default instead of an error.
type Hints struct {
	// Sheet names the sheet to audit. Unset lets the pipeline choose.
	Sheet string
	// HeaderStart/HeaderEnd bound the header rows.
	HeaderStart int
	HeaderEnd   int
	// DataStart/DataEnd bound the data region.
	DataStart int
	DataEnd   int
}

// structural reports whether any row-boundary hint is set.
func (h Hints) structural() bool {
	return h.HeaderStart > 0 || h.HeaderEnd > 0 || h.DataStart > 0 || h.DataEnd > 0
}

// proposal converts the hints into a structure proposal, the single place
// their 1-based rows become 0-based indices.
func (h Hints) proposal() model.StructureProposal {
	p := model.EmptyProposal()
	if h.HeaderStart > 0 {
		end := h.HeaderEnd
		if end < h.HeaderStart {
			end = h.HeaderStart
		}
		for r := h.HeaderStart; r <= end; r++ {
			p.HeaderRows = append(p.HeaderRows, r-1)
		}
	}
	if h.DataStart > 0 {
		p.DataStart = h.DataStart - 1
	}
	if h.DataEnd > 0 {
		p.DataEnd = h.DataEnd - 1
	}
	return p
}

// Options configures a Pipeline.
type Options struct {
	// Levels selects the rule tiers to run, in order. Empty runs all.
	Levels []model.Level
	// Completer is the optional language-model client used for structure
	// inference and semantic judgments. With a nil Completer the pipeline
	// runs fully offline on repaired defaults and heuristics.
	Completer oracle.Completer
	// RulesDir overrides the built-in rule files per level.
	RulesDir string
	// Workers bounds concurrent rule execution per level; values below 2
	// run rules sequentially.
	Workers int
	// Logger receives structured diagnostics. Nil means silent.
	Logger *zap.SugaredLogger
}

// DefaultOptions returns the options for a full offline audit.
func DefaultOptions() Options {
	return Options{Levels: model.Levels()}
}
