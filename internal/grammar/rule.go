package grammar

import (
	"github.com/dekarrin/esox/internal/input"
	"github.com/dekarrin/esox/internal/util"
)

// EntryLHS is the LHS of the entry rule, which produces the entry symbol and
// has no non-terminal of its own.
const EntryLHS = -1

// EntryRuleIndex is the arena slot the entry rule always occupies.
const EntryRuleIndex = 0

// Rule is one BNF production. Rules live in the Grammar's arena and are
// referenced by index everywhere downstream; the values themselves are never
// mutated after the normalizer finishes.
//
// An RHS of exactly [Epsilon] is the canonical encoding of an empty
// production.
type Rule struct {
	// LHS is the index of the producing non-terminal, or EntryLHS for the
	// entry rule.
	LHS int

	RHS []Symbol

	// Origin is the source production this rule was normalized from, for
	// diagnostics. It is nil for the entry rule.
	Origin *input.ProductionRule
}

// IsEntry returns whether this is the synthesized entry rule.
func (r Rule) IsEntry() bool {
	return r.LHS == EntryLHS
}

// IsEpsilon returns whether this rule is an empty production.
func (r Rule) IsEpsilon() bool {
	return len(r.RHS) == 1 && r.RHS[0] == Epsilon
}

// Expansion is the RHS as the sequence of symbols the rule actually derives:
// nil for an empty production, the RHS itself otherwise. Item dot positions
// and reduce pop counts both run over the expansion, not the raw RHS.
func (r Rule) Expansion() []Symbol {
	if r.IsEpsilon() {
		return nil
	}
	return r.RHS
}

// Equal returns whether Rule is equal to another value. It will not be equal
// if the other value cannot be cast to Rule or *Rule. Origin is not compared.
func (r Rule) Equal(o any) bool {
	other, ok := o.(Rule)
	if !ok {
		otherPtr, ok := o.(*Rule)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if r.LHS != other.LHS {
		return false
	}
	return util.EqualSlices(r.RHS, other.RHS)
}
