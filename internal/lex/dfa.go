package lex

import (
	"fmt"
	"sort"

	"github.com/dekarrin/esox/internal/automaton"
	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/input"
)

// BuildDFA determinizes the Thompson NFA via subset construction. Accepting
// states carry the ordered list of token rule indices their powerset accepts;
// a state with more than one entry still needs precedence resolution.
func BuildDFA(nfa automaton.NFA[int]) automaton.DFA[[]int] {
	return nfa.Determinize(0)
}

// ResolvePrecedence reduces every multi-accepting DFA state to the single
// token rule with the highest declared precedence. If two or more rules tie
// for the highest precedence at any state, generation cannot continue and a
// PrecedenceConflict diagnostic naming every tied rule is returned.
func ResolvePrecedence(dfa automaton.DFA[[]int], rules []input.TokenRule, file string) (automaton.DFA[int], *exerrors.Diagnostic) {
	resolved := automaton.DFA[int]{}

	// same construction order, so state ids carry over unchanged
	for id := 0; id < dfa.Len(); id++ {
		stateID := automaton.StateID(id)
		if !dfa.IsAccepting(stateID) {
			resolved.AddIntermediateState()
			continue
		}

		winner, diag := resolveAccepting(dfa.Payload(stateID), rules, file)
		if diag != nil {
			return automaton.DFA[int]{}, diag
		}
		resolved.AddAcceptingState(winner)
	}

	for id := 0; id < dfa.Len(); id++ {
		stateID := automaton.StateID(id)
		for _, label := range dfa.TransitionLabels(stateID) {
			to, _ := dfa.Next(stateID, label)
			resolved.AddTransition(stateID, to, label)
		}
	}

	return resolved, nil
}

func resolveAccepting(accepts []int, rules []input.TokenRule, file string) (int, *exerrors.Diagnostic) {
	if len(accepts) == 0 {
		panic("accepting DFA state with empty payload")
	}

	highest := rules[accepts[0]].Precedence
	for _, rIdx := range accepts[1:] {
		if rules[rIdx].Precedence > highest {
			highest = rules[rIdx].Precedence
		}
	}

	var winners []int
	for _, rIdx := range accepts {
		if rules[rIdx].Precedence == highest {
			winners = append(winners, rIdx)
		}
	}
	sort.Ints(winners)

	if len(winners) > 1 {
		diag := exerrors.New(exerrors.CatPrecedenceConflict, "tokens overlap with the same precedence")
		for _, rIdx := range winners {
			r := rules[rIdx]
			diag.WithSection(file, r.Span.StartLine, r.Span.StartCol,
				fmt.Sprintf("token %s", r.Name),
				fmt.Sprintf("%s (precedence %d) can accept here", r.Name, r.Precedence))
		}
		return 0, diag
	}

	return winners[0], nil
}
