package model

// Unset marks an absent row index in a StructureProposal.
const Unset = -1

// StructureProposal is an untrusted hint about where the header, data and
// annotation rows of a sheet sit. It comes from the structure-inference
// oracle (or from caller hints) and may be incomplete, out of range or
// self-contradictory; it must pass through builder validation and repair
// before use. All indices are 0-based.
type StructureProposal struct {
	// HeaderRows lists the row indices that make up the column header,
	// top to bottom. Empty means unknown.
	HeaderRows []int
	// DataStart is the first data row index, or Unset.
	DataStart int
	// DataEnd is the last data row index (inclusive), or Unset.
	DataEnd int
	// AnnotationRows lists rows holding notes outside the table body.
	AnnotationRows []int
}

// EmptyProposal returns a proposal with every field unset.
func EmptyProposal() StructureProposal {
	return StructureProposal{DataStart: Unset, DataEnd: Unset}
}

// MaxHeaderRow returns the largest header row index, or Unset when no
// header rows are proposed.
func (p StructureProposal) MaxHeaderRow() int {
	max := Unset
	for _, r := range p.HeaderRows {
		if r > max {
			max = r
		}
	}
	return max
}

// MinHeaderRow returns the smallest header row index, or Unset when no
// header rows are proposed.
func (p StructureProposal) MinHeaderRow() int {
	if len(p.HeaderRows) == 0 {
		return Unset
	}
	min := p.HeaderRows[0]
	for _, r := range p.HeaderRows[1:] {
		if r < min {
			min = r
		}
	}
	return min
}
