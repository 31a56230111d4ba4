package model

// Level identifies a machine-readability rule tier.
type Level string

const (
	// Level1 covers structural rules (merged cells, hidden rows, ...).
	Level1 Level = "level1"
	// Level2 covers column-content rules (numeric purity, headers, ...).
	Level2 Level = "level2"
	// Level3 covers semantic rules (coded choices, auxiliary sheets, ...).
	Level3 Level = "level3"
)

// Levels lists all tiers in escalation order.
func Levels() []Level { return []Level{Level1, Level2, Level3} }

// RuleDescriptor is one declared rule from an external rule set. Descriptors
// are loaded once and iterated in declaration order; they are never mutated.
type RuleDescriptor struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation,omitempty"`
	// Capability names the check operation to invoke on the resolved
	// checker. An unmatched name yields a failing "not implemented"
	// outcome, never an abort.
	Capability string `json:"capability"`
}

// CheckOutcome is the result of running one rule. Exactly one outcome is
// produced per rule per run; outcomes are never mutated after creation.
type CheckOutcome struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Passed      bool   `json:"passed"`
	Message     string `json:"message"`
}

// LevelSummary tallies outcomes for one level.
type LevelSummary struct {
	Level   Level          `json:"level"`
	Passed  int            `json:"passed"`
	Total   int            `json:"total"`
	Results []CheckOutcome `json:"results"`
}

// Summarize tallies an ordered outcome list into a LevelSummary.
func Summarize(level Level, outcomes []CheckOutcome) LevelSummary {
	s := LevelSummary{Level: level, Total: len(outcomes), Results: outcomes}
	for _, o := range outcomes {
		if o.Passed {
			s.Passed++
		}
	}
	return s
}
