package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/internal/util"
)

// expression grammar from purple dragon example 4.28, in surface syntax:
//
//	E  -> T E'
//	E' -> + T E' | ε
//	T  -> F T'
//	T' -> * F T' | ε
//	F  -> ( E ) | id
//
// The ε alternatives are spelled with ? on the recursive tails.
const dragonExprGrammar = `
	token ID = /[a-z]+/ ;
	token PLUS = "+" ;
	token STAR = "*" ;
	token LP = "(" ;
	token RP = ")" ;

	prod e = t etail ;
	prod etail = (PLUS t etail)? ;
	prod t = f ttail ;
	prod ttail = (STAR f ttail)? ;
	prod f = LP e RP | ID ;

	entry e ;
`

func symSet(syms ...Symbol) SymbolSet {
	return util.KeySetOf(syms)
}

func Test_FirstSets(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, dragonExprGrammar)

	id, plus, star, lp := Terminal(0), Terminal(1), Terminal(2), Terminal(3)
	e, etail, tSym, ttail, f := NonTerminal(0), NonTerminal(1), NonTerminal(2), NonTerminal(3), NonTerminal(4)

	// execute
	firsts := FirstSets(g)

	// assert: the classic FIRST sets of the dragon book grammar
	assert.True(firsts[e].Equal(symSet(lp, id)), "FIRST(E) = %s", firsts[e].StringOrdered())
	assert.True(firsts[tSym].Equal(symSet(lp, id)), "FIRST(T) = %s", firsts[tSym].StringOrdered())
	assert.True(firsts[f].Equal(symSet(lp, id)), "FIRST(F) = %s", firsts[f].StringOrdered())
	assert.True(firsts[etail].Equal(symSet(plus, Epsilon)), "FIRST(E') = %s", firsts[etail].StringOrdered())
	assert.True(firsts[ttail].Equal(symSet(star, Epsilon)), "FIRST(T') = %s", firsts[ttail].StringOrdered())
}

func Test_FollowSets(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, dragonExprGrammar)

	plus, star, rp := Terminal(1), Terminal(2), Terminal(4)
	e, etail, tSym, ttail, f := NonTerminal(0), NonTerminal(1), NonTerminal(2), NonTerminal(3), NonTerminal(4)

	firsts := FirstSets(g)

	// execute
	follows := FollowSets(g, firsts)

	// assert: the classic FOLLOW sets of the dragon book grammar
	assert.True(follows[e].Equal(symSet(rp, End)), "FOLLOW(E) = %s", follows[e].StringOrdered())
	assert.True(follows[etail].Equal(symSet(rp, End)), "FOLLOW(E') = %s", follows[etail].StringOrdered())
	assert.True(follows[tSym].Equal(symSet(plus, rp, End)), "FOLLOW(T) = %s", follows[tSym].StringOrdered())
	assert.True(follows[ttail].Equal(symSet(plus, rp, End)), "FOLLOW(T') = %s", follows[ttail].StringOrdered())
	assert.True(follows[f].Equal(symSet(plus, star, rp, End)), "FOLLOW(F) = %s", follows[f].StringOrdered())
}

// Running one more relaxation sweep over a finished fixpoint must not grow
// any set.
func Test_FirstSets_fixpoint(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, dragonExprGrammar)

	firsts := FirstSets(g)

	for i := range g.Rules() {
		r := g.Rule(i)
		if r.IsEntry() {
			continue
		}
		rhsFirsts := FirstOfSequence(r.RHS, firsts)
		for sym := range rhsFirsts {
			assert.True(firsts[NonTerminal(r.LHS)].Has(sym),
				"FIRST(%s) is missing %s", g.SymbolName(NonTerminal(r.LHS)), g.SymbolName(sym))
		}
	}
}

func Test_FirstOfSequence(t *testing.T) {
	g := buildTestGrammar(t, dragonExprGrammar)
	firsts := FirstSets(g)

	id, plus, star := Terminal(0), Terminal(1), Terminal(2)
	etail, ttail := NonTerminal(1), NonTerminal(3)

	testCases := []struct {
		name   string
		seq    []Symbol
		expect SymbolSet
	}{
		{
			name:   "leading terminal short-circuits",
			seq:    []Symbol{id, etail},
			expect: symSet(id),
		},
		{
			name:   "epsilon-deriving prefix falls through",
			seq:    []Symbol{ttail, plus},
			expect: symSet(star, plus),
		},
		{
			name:   "all epsilon-deriving keeps epsilon",
			seq:    []Symbol{ttail, etail},
			expect: symSet(star, plus, Epsilon),
		},
		{
			name:   "empty sequence is epsilon",
			seq:    nil,
			expect: symSet(Epsilon),
		},
		{
			name:   "explicit epsilon symbol",
			seq:    []Symbol{Epsilon},
			expect: symSet(Epsilon),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := FirstOfSequence(tc.seq, firsts)

			assert.True(actual.Equal(tc.expect), "got %s", actual.StringOrdered())
		})
	}
}
