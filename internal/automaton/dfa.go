package automaton

import (
	"fmt"
	"sort"
	"strings"
)

type dfaState[E any] struct {
	accepting bool
	payload   E
	edges     map[int]StateID
}

// DFA is a deterministic finite automaton. E is the payload type of accepting
// states. State 0 is the start state by convention.
//
// No two out-edges of a state may share a label; AddTransition enforces this.
type DFA[E any] struct {
	states []dfaState[E]
}

// AddIntermediateState adds a non-accepting state and returns its id.
func (dfa *DFA[E]) AddIntermediateState() StateID {
	dfa.states = append(dfa.states, dfaState[E]{edges: map[int]StateID{}})
	return StateID(len(dfa.states) - 1)
}

// AddAcceptingState adds an accepting state carrying the given payload and
// returns its id.
func (dfa *DFA[E]) AddAcceptingState(payload E) StateID {
	dfa.states = append(dfa.states, dfaState[E]{accepting: true, payload: payload, edges: map[int]StateID{}})
	return StateID(len(dfa.states) - 1)
}

// Len returns the number of states.
func (dfa DFA[E]) Len() int {
	return len(dfa.states)
}

// IsAccepting returns whether the given state is accepting. Returns false if
// the state does not exist.
func (dfa DFA[E]) IsAccepting(id StateID) bool {
	if int(id) < 0 || int(id) >= len(dfa.states) {
		return false
	}
	return dfa.states[id].accepting
}

// Payload returns the payload of the given state. Panics if the state does
// not exist.
func (dfa DFA[E]) Payload(id StateID) E {
	if int(id) < 0 || int(id) >= len(dfa.states) {
		panic(fmt.Sprintf("getting payload of non-existing state: %d", id))
	}
	return dfa.states[id].payload
}

// AddTransition adds an edge labeled with the given alphabet index. Panics if
// either state does not exist or if the from state already has an edge with
// that label; determinism is an invariant, not a convention.
func (dfa *DFA[E]) AddTransition(from, to StateID, label int) {
	if int(from) < 0 || int(from) >= len(dfa.states) {
		panic(fmt.Sprintf("transition from non-existent state %d", from))
	}
	if int(to) < 0 || int(to) >= len(dfa.states) {
		panic(fmt.Sprintf("transition to non-existent state %d", to))
	}

	st := dfa.states[from]
	if _, ok := st.edges[label]; ok {
		panic(fmt.Sprintf("state %d already has a transition on %d", from, label))
	}
	st.edges[label] = to
}

// Next returns the state reached from the given state on the given label, and
// whether such a transition exists.
func (dfa DFA[E]) Next(from StateID, label int) (StateID, bool) {
	if int(from) < 0 || int(from) >= len(dfa.states) {
		return 0, false
	}
	to, ok := dfa.states[from].edges[label]
	return to, ok
}

// TransitionLabels returns the labels of all out-edges of the given state, in
// ascending order.
func (dfa DFA[E]) TransitionLabels(from StateID) []int {
	if int(from) < 0 || int(from) >= len(dfa.states) {
		return nil
	}

	labels := make([]int, 0, len(dfa.states[from].edges))
	for l := range dfa.states[from].edges {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return labels
}

func (dfa DFA[E]) String() string {
	var sb strings.Builder

	sb.WriteString("<START: 0, STATES:")
	for i := range dfa.states {
		st := dfa.states[i]

		sb.WriteString("\n\t")
		marker := "( )"
		if st.accepting {
			marker = fmt.Sprintf("((%v))", st.payload)
		}
		sb.WriteString(fmt.Sprintf("%d %s [", i, marker))

		labels := dfa.TransitionLabels(StateID(i))
		for j, l := range labels {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("=(%d)=> %d", l, st.edges[l]))
		}
		sb.WriteRune(']')

		if i+1 < len(dfa.states) {
			sb.WriteRune(',')
		} else {
			sb.WriteRune('\n')
		}
	}
	sb.WriteRune('>')

	return sb.String()
}
