package grammar

import (
	"github.com/dekarrin/esox/internal/util"
)

// SymbolSet is a set of symbols.
type SymbolSet = util.KeySet[Symbol]

// FirstSets computes FIRST for every non-terminal by worklist fixpoint: one
// pass over all rules is repeated until no set grows. FIRST of a terminal is
// itself and never stored.
//
// Running the computation again on its own output changes nothing; the result
// is the least fixpoint.
func FirstSets(g *Grammar) map[Symbol]SymbolSet {
	firsts := map[Symbol]SymbolSet{}
	for _, nt := range g.NonTerminals() {
		firsts[nt] = util.NewKeySet[Symbol]()
	}

	for updated := true; updated; {
		updated = false
		for i := range g.Rules() {
			r := g.Rule(i)
			if r.IsEntry() {
				continue
			}
			rhsFirsts := FirstOfSequence(r.RHS, firsts)
			if firsts[NonTerminal(r.LHS)].AddAll(rhsFirsts) {
				updated = true
			}
		}
	}

	return firsts
}

// FirstOfSequence computes FIRST of a symbol sequence: scan left to right,
// take each symbol's FIRST minus Epsilon, and stop at the first symbol whose
// FIRST lacks Epsilon. Epsilon is in the result only if every symbol of the
// sequence (or the empty sequence itself) derives it.
func FirstOfSequence(seq []Symbol, firsts map[Symbol]SymbolSet) SymbolSet {
	result := util.NewKeySet[Symbol]()

	for i, sym := range seq {
		isLast := i+1 == len(seq)

		switch sym.Kind {
		case KindTerminal, KindEnd:
			result.Add(sym)
			return result
		case KindEpsilon:
			if isLast {
				result.Add(Epsilon)
			}
		case KindNonTerminal:
			symFirsts := firsts[sym]
			hasEpsilon := symFirsts.Has(Epsilon)
			for f := range symFirsts {
				if f != Epsilon {
					result.Add(f)
				}
			}
			if !hasEpsilon {
				return result
			}
			if isLast {
				result.Add(Epsilon)
			}
		}
	}

	if len(seq) == 0 {
		result.Add(Epsilon)
	}
	return result
}

// FollowSets computes FOLLOW for every non-terminal from the FIRST sets, by
// the same worklist fixpoint discipline. FOLLOW of the entry symbol always
// contains End; the entry rule is processed as the terminated sequence
// "entry-symbol End" so that falls out of the general case.
func FollowSets(g *Grammar, firsts map[Symbol]SymbolSet) map[Symbol]SymbolSet {
	follows := map[Symbol]SymbolSet{}
	for _, nt := range g.NonTerminals() {
		follows[nt] = util.NewKeySet[Symbol]()
	}

	terminatedEntry := []Symbol{g.EntrySymbol(), End}

	for updated := true; updated; {
		updated = false

		for i := range g.Rules() {
			r := g.Rule(i)

			seq := r.RHS
			lhsFollow := SymbolSet(nil)
			if r.IsEntry() {
				seq = terminatedEntry
			} else {
				lhsFollow = follows[NonTerminal(r.LHS)]
			}

			for j, sym := range seq {
				if !sym.IsNonTerminal() {
					continue
				}

				remainder := seq[j+1:]
				remainderFirsts := FirstOfSequence(remainder, firsts)

				target := follows[sym]
				for f := range remainderFirsts {
					if f == Epsilon {
						continue
					}
					if !target.Has(f) {
						target.Add(f)
						updated = true
					}
				}

				// the remainder can vanish, so whatever follows the LHS
				// follows this symbol too
				if lhsFollow != nil && (len(remainder) == 0 || remainderFirsts.Has(Epsilon)) {
					if target.AddAll(lhsFollow) {
						updated = true
					}
				}
			}
		}
	}

	return follows
}
