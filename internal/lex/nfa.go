package lex

import (
	"fmt"
	"sort"

	"github.com/dekarrin/esox/internal/automaton"
	"github.com/dekarrin/esox/internal/input"
)

// BuildNFA performs Thompson construction over the token rules. The accepting
// payloads are token rule indices. State 0 is the shared root, with an
// epsilon edge to the sub-NFA of every rule.
//
// This is an implementation of algorithm 3.23, "The McNaughton-Yamada-
// Thompson algorithm to convert a regular expression to an NFA", from the
// purple dragon book, adapted to run over the alphabet's range indices
// instead of raw characters.
func BuildNFA(alpha Alphabet, rules []input.TokenRule) automaton.NFA[int] {
	nfa := automaton.NFA[int]{}

	root := nfa.AddIntermediateState()
	for i := range rules {
		ruleStart := nfa.AddIntermediateState()
		ruleEnd := nfa.AddAcceptingState(i)
		nfa.AddEpsilonTransition(root, ruleStart)
		buildPatternNFA(&nfa, alpha, ruleStart, ruleEnd, rules[i].Pattern)
	}

	return nfa
}

func buildPatternNFA(nfa *automaton.NFA[int], alpha Alphabet, start, end automaton.StateID, pat *input.Pattern) {
	switch pat.Type {
	case input.PatternSequence:
		if len(pat.Elements) > 0 {
			chainPatterns(nfa, alpha, pat.Elements, start, end)
		}
	case input.PatternAlternative:
		for _, elem := range pat.Elements {
			innerStart := nfa.AddIntermediateState()
			innerEnd := nfa.AddIntermediateState()
			buildPatternNFA(nfa, alpha, innerStart, innerEnd, elem)
			nfa.AddEpsilonTransition(start, innerStart)
			nfa.AddEpsilonTransition(innerEnd, end)
		}
	case input.PatternRepetition:
		buildRepetitionNFA(nfa, alpha, start, end, pat)
	case input.PatternCharSet:
		indices := map[int]bool{}
		for _, chars := range pat.Chars {
			for _, idx := range rangeIndices(alpha, chars) {
				indices[idx] = true
			}
		}
		if pat.Negated {
			for i := 0; i < alpha.Len(); i++ {
				if !indices[i] {
					nfa.AddTransition(start, end, i)
				}
			}
		} else {
			ordered := make([]int, 0, len(indices))
			for i := range indices {
				ordered = append(ordered, i)
			}
			sort.Ints(ordered)
			for _, i := range ordered {
				nfa.AddTransition(start, end, i)
			}
		}
	case input.PatternChar:
		for _, idx := range rangeIndices(alpha, pat.Char) {
			nfa.AddTransition(start, end, idx)
		}
	case input.PatternEpsilon:
		nfa.AddEpsilonTransition(start, end)
	}
}

// buildRepetitionNFA encodes Repetition{min, max}: min mandatory copies in
// series, then either a loop back over the final copy (unbounded max) or a
// chain of max-min optional copies that each exit directly to the end.
func buildRepetitionNFA(nfa *automaton.NFA[int], alpha Alphabet, start, end automaton.StateID, pat *input.Pattern) {
	innerStart := nfa.AddIntermediateState()
	innerEnd := nfa.AddIntermediateState()
	nfa.AddEpsilonTransition(start, innerStart)

	if pat.Min == 0 && pat.Max == input.RepeatUnbounded {
		buildPatternNFA(nfa, alpha, innerStart, innerEnd, pat.Inner)
		nfa.AddEpsilonTransition(start, end)
		nfa.AddEpsilonTransition(innerEnd, innerStart)
		nfa.AddEpsilonTransition(innerEnd, end)
		return
	}

	var intermediates []automaton.StateID
	if pat.Min == 0 {
		nfa.AddEpsilonTransition(innerStart, innerEnd)
	} else {
		intermediates = chainPatternTimes(nfa, alpha, pat.Min, pat.Inner, innerStart, innerEnd)
	}

	if pat.Max == input.RepeatUnbounded {
		// loop back to the start of the final mandatory copy
		previous := innerStart
		if len(intermediates) > 0 {
			previous = intermediates[len(intermediates)-1]
		}
		nfa.AddEpsilonTransition(innerEnd, previous)
		nfa.AddEpsilonTransition(innerEnd, end)
	} else {
		additional := pat.Max - pat.Min
		maxStart := nfa.AddIntermediateState()
		nfa.AddEpsilonTransition(innerEnd, maxStart)
		maxEnd := nfa.AddIntermediateState()
		maxIntermediates := chainPatternTimes(nfa, alpha, additional, pat.Inner, maxStart, maxEnd)
		maxIntermediates = append(maxIntermediates, maxStart, maxEnd)
		for _, mi := range maxIntermediates {
			nfa.AddEpsilonTransition(mi, end)
		}
	}
}

// chainPatterns builds the sub-NFAs of the given patterns in series between
// start and end, introducing an intermediate state between each consecutive
// pair. The intermediates are returned in order.
func chainPatterns(nfa *automaton.NFA[int], alpha Alphabet, pats []*input.Pattern, start, end automaton.StateID) []automaton.StateID {
	var intermediates []automaton.StateID
	innerStart := start
	for i, p := range pats {
		if i+1 < len(pats) {
			innerEnd := nfa.AddIntermediateState()
			intermediates = append(intermediates, innerEnd)
			buildPatternNFA(nfa, alpha, innerStart, innerEnd, p)
			innerStart = innerEnd
		} else {
			buildPatternNFA(nfa, alpha, innerStart, end, p)
		}
	}
	return intermediates
}

// chainPatternTimes chains the same pattern the given number of times. With
// times == 0 it adds nothing; the caller is responsible for connecting start
// and end in that case.
func chainPatternTimes(nfa *automaton.NFA[int], alpha Alphabet, times int, pat *input.Pattern, start, end automaton.StateID) []automaton.StateID {
	if times == 0 {
		return nil
	}
	pats := make([]*input.Pattern, times)
	for i := range pats {
		pats[i] = pat
	}
	return chainPatterns(nfa, alpha, pats, start, end)
}

// rangeIndices gives every alphabet index covered by the given character
// range. The alphabet is constructed from the same patterns being compiled,
// so a miss is a bug, not an input error.
func rangeIndices(alpha Alphabet, chars input.Characters) []int {
	loIdx, ok := alpha.IndexOf(chars.Lo)
	if !ok {
		panic(fmt.Sprintf("codepoint %U not covered by alphabet", chars.Lo))
	}
	hiIdx, ok := alpha.IndexOf(chars.Hi)
	if !ok {
		panic(fmt.Sprintf("codepoint %U not covered by alphabet", chars.Hi))
	}

	indices := make([]int, 0, hiIdx-loIdx+1)
	for i := loIdx; i <= hiIdx; i++ {
		indices = append(indices, i)
	}
	return indices
}
