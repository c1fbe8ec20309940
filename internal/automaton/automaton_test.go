package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildLiteralNFA gives the NFA for (a|ab) over labels 0='a', 1='b', with the
// accepting payloads "A" and "AB".
func buildLiteralNFA() NFA[string] {
	nfa := NFA[string]{}

	root := nfa.AddIntermediateState() // 0

	// branch A: just 'a'
	aStart := nfa.AddIntermediateState()
	aEnd := nfa.AddAcceptingState("A")
	nfa.AddEpsilonTransition(root, aStart)
	nfa.AddTransition(aStart, aEnd, 0)

	// branch AB: 'a' then 'b'
	abStart := nfa.AddIntermediateState()
	abMid := nfa.AddIntermediateState()
	abEnd := nfa.AddAcceptingState("AB")
	nfa.AddEpsilonTransition(root, abStart)
	nfa.AddTransition(abStart, abMid, 0)
	nfa.AddTransition(abMid, abEnd, 1)

	return nfa
}

func Test_EpsilonClosure(t *testing.T) {
	assert := assert.New(t)
	nfa := buildLiteralNFA()

	closure := nfa.EpsilonClosure([]StateID{0})

	// root reaches both branch starts; nothing else is epsilon-reachable
	assert.Equal([]StateID{0, 1, 3}, closure)
}

func Test_EpsilonClosure_chained(t *testing.T) {
	assert := assert.New(t)

	nfa := NFA[string]{}
	s0 := nfa.AddIntermediateState()
	s1 := nfa.AddIntermediateState()
	s2 := nfa.AddIntermediateState()
	nfa.AddEpsilonTransition(s0, s1)
	nfa.AddEpsilonTransition(s1, s2)
	// cycle back, closure must still terminate
	nfa.AddEpsilonTransition(s2, s0)

	closure := nfa.EpsilonClosure([]StateID{s0})

	assert.Equal([]StateID{0, 1, 2}, closure)
}

func Test_Determinize(t *testing.T) {
	assert := assert.New(t)
	nfa := buildLiteralNFA()

	dfa := nfa.Determinize(0)

	// start state: {root, aStart, abStart}, not accepting
	assert.False(dfa.IsAccepting(0))

	// on 'a': {aEnd, abMid}, accepting with payload [A]
	afterA, ok := dfa.Next(0, 0)
	if !assert.True(ok) {
		return
	}
	assert.True(dfa.IsAccepting(afterA))
	assert.Equal([]string{"A"}, dfa.Payload(afterA))

	// on 'b' from there: {abEnd}, accepting with payload [AB]
	afterAB, ok := dfa.Next(afterA, 1)
	if !assert.True(ok) {
		return
	}
	assert.True(dfa.IsAccepting(afterAB))
	assert.Equal([]string{"AB"}, dfa.Payload(afterAB))

	// no transition on 'b' from the start
	_, ok = dfa.Next(0, 1)
	assert.False(ok)

	// exactly the three powersets exist
	assert.Equal(3, dfa.Len())
}

func Test_Determinize_payloadOrder(t *testing.T) {
	assert := assert.New(t)

	// two rules accepting the same single input; payload order must follow
	// NFA state id order, which is rule declaration order
	nfa := NFA[string]{}
	root := nfa.AddIntermediateState()
	firstEnd := nfa.AddAcceptingState("first")
	secondEnd := nfa.AddAcceptingState("second")
	nfa.AddTransition(root, firstEnd, 0)
	nfa.AddTransition(root, secondEnd, 0)

	dfa := nfa.Determinize(0)

	after, ok := dfa.Next(0, 0)
	if !assert.True(ok) {
		return
	}
	assert.Equal([]string{"first", "second"}, dfa.Payload(after))
}

func Test_DFA_AddTransition_duplicateLabelPanics(t *testing.T) {
	assert := assert.New(t)

	dfa := DFA[string]{}
	s0 := dfa.AddIntermediateState()
	s1 := dfa.AddAcceptingState("x")
	s2 := dfa.AddAcceptingState("y")
	dfa.AddTransition(s0, s1, 0)

	assert.Panics(func() {
		dfa.AddTransition(s0, s2, 0)
	})
}
