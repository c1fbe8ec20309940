// Package automaton provides the finite automata used by lexer generation.
// Both the NFA and DFA types are generic over the payload their accepting
// states carry; transitions are labeled with alphabet indices.
//
// States live in an arena and are referred to by StateID everywhere, so
// downstream tables can store plain integers. The zero-value NFA and DFA are
// empty and ready to have states added.
package automaton

import (
	"fmt"
	"sort"
	"strings"
)

// StateID identifies a state within one automaton. IDs are dense and assigned
// in creation order starting at 0.
type StateID int

// Transition is one labeled edge of an automaton. Labels are alphabet range
// indices.
type Transition struct {
	Label int
	To    StateID
}

type nfaState[E any] struct {
	accepting bool
	payload   E
	epsilons  []StateID
	edges     []Transition
}

// NFA is a nondeterministic finite automaton with epsilon moves. E is the
// payload type of accepting states.
type NFA[E any] struct {
	states []nfaState[E]
}

// AddIntermediateState adds a non-accepting state and returns its id.
func (nfa *NFA[E]) AddIntermediateState() StateID {
	nfa.states = append(nfa.states, nfaState[E]{})
	return StateID(len(nfa.states) - 1)
}

// AddAcceptingState adds an accepting state carrying the given payload and
// returns its id.
func (nfa *NFA[E]) AddAcceptingState(payload E) StateID {
	nfa.states = append(nfa.states, nfaState[E]{accepting: true, payload: payload})
	return StateID(len(nfa.states) - 1)
}

// Len returns the number of states.
func (nfa NFA[E]) Len() int {
	return len(nfa.states)
}

// IsAccepting returns whether the given state is accepting. Returns false if
// the state does not exist.
func (nfa NFA[E]) IsAccepting(id StateID) bool {
	if int(id) < 0 || int(id) >= len(nfa.states) {
		return false
	}
	return nfa.states[id].accepting
}

// Payload returns the payload of the given accepting state. Panics if the
// state does not exist.
func (nfa NFA[E]) Payload(id StateID) E {
	if int(id) < 0 || int(id) >= len(nfa.states) {
		panic(fmt.Sprintf("getting payload of non-existing state: %d", id))
	}
	return nfa.states[id].payload
}

// AddTransition adds an edge labeled with the given alphabet index. Panics if
// either state does not exist; states must be added before they are linked.
func (nfa *NFA[E]) AddTransition(from, to StateID, label int) {
	nfa.checkState(from)
	nfa.checkState(to)
	st := &nfa.states[from]
	st.edges = append(st.edges, Transition{Label: label, To: to})
}

// AddEpsilonTransition adds an edge that consumes no input.
func (nfa *NFA[E]) AddEpsilonTransition(from, to StateID) {
	nfa.checkState(from)
	nfa.checkState(to)
	st := &nfa.states[from]
	st.epsilons = append(st.epsilons, to)
}

func (nfa NFA[E]) checkState(id StateID) {
	if int(id) < 0 || int(id) >= len(nfa.states) {
		// Can't let you do that, Starfox
		panic(fmt.Sprintf("transition on non-existent state %d", id))
	}
}

// EpsilonClosure gives the set of states reachable from any of the given
// states using zero or more ε-moves, as a sorted slice.
func (nfa NFA[E]) EpsilonClosure(of []StateID) []StateID {
	seen := map[StateID]bool{}
	checking := make([]StateID, len(of))
	copy(checking, of)

	for len(checking) > 0 {
		cur := checking[len(checking)-1]
		checking = checking[:len(checking)-1]

		if seen[cur] {
			// we've already checked it. skip.
			continue
		}
		seen[cur] = true

		checking = append(checking, nfa.states[cur].epsilons...)
	}

	closure := make([]StateID, 0, len(seen))
	for id := range seen {
		closure = append(closure, id)
	}
	sort.Slice(closure, func(i, j int) bool { return closure[i] < closure[j] })
	return closure
}

// Move returns the set of states reachable with one transition on the given
// label from some state in from, as a sorted slice. Purple dragon book calls
// this function MOVE(T, a) on page 153 as part of algorithm 3.20.
func (nfa NFA[E]) Move(from []StateID, label int) []StateID {
	seen := map[StateID]bool{}
	for _, id := range from {
		for _, tr := range nfa.states[id].edges {
			if tr.Label == label {
				seen[tr.To] = true
			}
		}
	}

	moves := make([]StateID, 0, len(seen))
	for id := range seen {
		moves = append(moves, id)
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i] < moves[j] })
	return moves
}

// labelsFrom returns the sorted set of labels with at least one outgoing
// transition from some state in the given set.
func (nfa NFA[E]) labelsFrom(from []StateID) []int {
	seen := map[int]bool{}
	for _, id := range from {
		for _, tr := range nfa.states[id].edges {
			seen[tr.Label] = true
		}
	}

	labels := make([]int, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return labels
}

// Determinize converts the NFA into a DFA accepting the same strings via
// subset construction, starting from the given NFA state. Each DFA state's
// payload is the ordered list (by NFA state id) of payloads of the accepting
// NFA states in its powerset; a DFA state is accepting iff that list is
// non-empty.
//
// This is an implementation of algorithm 3.20 from the purple dragon book.
// Powersets are memoized by their canonical key so identical sets collapse to
// one DFA state, and the worklist runs in insertion order so state numbering
// is stable across runs.
func (nfa NFA[E]) Determinize(start StateID) DFA[[]E] {
	dfa := DFA[[]E]{}

	startSet := nfa.EpsilonClosure([]StateID{start})

	ids := map[string]StateID{}
	worklist := [][]StateID{startSet}
	ids[powersetKey(startSet)] = addPowerset(&dfa, nfa, startSet)

	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		curID := ids[powersetKey(cur)]

		for _, label := range nfa.labelsFrom(cur) {
			targets := nfa.Move(cur, label)
			if len(targets) == 0 {
				continue
			}
			targetSet := nfa.EpsilonClosure(targets)
			targetKey := powersetKey(targetSet)

			targetID, exists := ids[targetKey]
			if !exists {
				targetID = addPowerset(&dfa, nfa, targetSet)
				ids[targetKey] = targetID
				worklist = append(worklist, targetSet)
			}

			dfa.AddTransition(curID, targetID, label)
		}
	}

	return dfa
}

// addPowerset adds the DFA state for the given powerset, with the ordered
// accepting payloads of its members as the payload.
func addPowerset[E any](dfa *DFA[[]E], nfa NFA[E], set []StateID) StateID {
	var payloads []E
	for _, nfaID := range set {
		if nfa.IsAccepting(nfaID) {
			payloads = append(payloads, nfa.Payload(nfaID))
		}
	}

	if len(payloads) > 0 {
		return dfa.AddAcceptingState(payloads)
	}
	return dfa.AddIntermediateState()
}

func powersetKey(set []StateID) string {
	var sb strings.Builder
	sb.WriteRune('{')
	for i, id := range set {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", id))
	}
	sb.WriteRune('}')
	return sb.String()
}

func (nfa NFA[E]) String() string {
	var sb strings.Builder

	sb.WriteString("<START: 0, STATES:")
	for i := range nfa.states {
		st := nfa.states[i]

		sb.WriteString("\n\t")
		marker := "( )"
		if st.accepting {
			marker = fmt.Sprintf("((%v))", st.payload)
		}
		sb.WriteString(fmt.Sprintf("%d %s [", i, marker))

		var moves []string
		for _, eps := range st.epsilons {
			moves = append(moves, fmt.Sprintf("=(ε)=> %d", eps))
		}
		for _, tr := range st.edges {
			moves = append(moves, fmt.Sprintf("=(%d)=> %d", tr.Label, tr.To))
		}
		sort.Strings(moves)
		sb.WriteString(strings.Join(moves, ", "))
		sb.WriteRune(']')

		if i+1 < len(nfa.states) {
			sb.WriteRune(',')
		} else {
			sb.WriteRune('\n')
		}
	}
	sb.WriteRune('>')

	return sb.String()
}
