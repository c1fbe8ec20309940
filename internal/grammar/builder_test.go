package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/input"
)

func buildTestGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	rs, diag := input.Parse("test.esox", src)
	if diag != nil {
		t.Fatalf("parsing test grammar: %s", diag.Error())
	}
	g, diag := Build(rs)
	if diag != nil {
		t.Fatalf("building test grammar: %s", diag.Error())
	}
	return g
}

func Test_Build_symbolNumbering(t *testing.T) {
	assert := assert.New(t)

	g := buildTestGrammar(t, `
		token NUM = /[0-9]+/ ;
		token PLUS = "+" ;
		prod sum = NUM ;
		prod extra = sum PLUS ;
		entry sum ;
	`)

	assert.Equal(2, g.TerminalCount())
	assert.Equal("NUM", g.TerminalName(0))
	assert.Equal("PLUS", g.TerminalName(1))

	// two named non-terminals, no anonymous ones
	assert.Equal(2, g.NonTerminalCount())
	assert.Equal(2, g.NamedNonTerminalCount())
	assert.Equal("sum", g.NonTerminalName(0))
	assert.Equal("extra", g.NonTerminalName(1))

	assert.Equal(NonTerminal(0), g.EntrySymbol())

	// entry rule at slot 0 producing the entry symbol
	entry := g.Rule(EntryRuleIndex)
	assert.True(entry.IsEntry())
	assert.Equal([]Symbol{NonTerminal(0)}, entry.RHS)
}

func Test_Build_ebnfExpansion(t *testing.T) {
	testCases := []struct {
		name string
		src  string

		// expected RHS shapes of the rules for the single anonymous
		// non-terminal, with N standing for the anonymous symbol itself
		expectAnonRules int
		expectEpsilons  int
	}{
		{
			name: "optional",
			src: `
				token A = "a" ;
				prod thing = A? ;
				entry thing ;
			`,
			expectAnonRules: 2,
			expectEpsilons:  1,
		},
		{
			name: "zero or many",
			src: `
				token A = "a" ;
				prod thing = A* ;
				entry thing ;
			`,
			expectAnonRules: 2,
			expectEpsilons:  1,
		},
		{
			name: "one or many",
			src: `
				token A = "a" ;
				prod thing = A+ ;
				entry thing ;
			`,
			expectAnonRules: 2,
			expectEpsilons:  0,
		},
		{
			name: "alternative",
			src: `
				token A = "a" ;
				token B = "b" ;
				prod thing = (A | B) ;
				entry thing ;
			`,
			expectAnonRules: 2,
			expectEpsilons:  0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := buildTestGrammar(t, tc.src)

			// one named, one anonymous
			assert.Equal(2, g.NonTerminalCount())
			assert.Equal(1, g.NamedNonTerminalCount())

			anon := NonTerminal(1)
			assert.True(g.IsAnonymous(anon))

			anonRules := g.RulesFor(anon)
			assert.Len(anonRules, tc.expectAnonRules)

			epsilons := 0
			for _, ri := range anonRules {
				if g.Rule(ri).IsEpsilon() {
					epsilons++
				}
			}
			assert.Equal(tc.expectEpsilons, epsilons)

			// the named production's single rule points at the anonymous
			// non-terminal
			named := g.RulesFor(NonTerminal(0))
			if assert.Len(named, 1) {
				assert.Equal([]Symbol{anon}, g.Rule(named[0]).RHS)
			}
		})
	}
}

func Test_Build_repetitionShapes(t *testing.T) {
	assert := assert.New(t)

	g := buildTestGrammar(t, `
		token A = "a" ;
		prod thing = A+ ;
		entry thing ;
	`)

	anon := NonTerminal(1)
	rules := g.RulesFor(anon)
	if !assert.Len(rules, 2) {
		return
	}

	// one-or-many: N -> A and N -> A N, in that order
	assert.Equal([]Symbol{Terminal(0)}, g.Rule(rules[0]).RHS)
	assert.Equal([]Symbol{Terminal(0), anon}, g.Rule(rules[1]).RHS)
}

func Test_Build_anonymousAboveNamed(t *testing.T) {
	assert := assert.New(t)

	g := buildTestGrammar(t, `
		token A = "a" ;
		prod first = A? ;
		prod second = A* ;
		entry first ;
	`)

	// named: first(0), second(1); anonymous: 2 and 3
	assert.Equal(4, g.NonTerminalCount())
	assert.Equal(2, g.NamedNonTerminalCount())
	assert.True(g.IsAnonymous(NonTerminal(2)))
	assert.True(g.IsAnonymous(NonTerminal(3)))
	assert.False(g.IsAnonymous(NonTerminal(1)))
}

func Test_Build_errors(t *testing.T) {
	testCases := []struct {
		name      string
		src       string
		expectCat exerrors.Category
	}{
		{
			name: "missing symbol",
			src: `
				token A = "a" ;
				prod thing = A other ;
				entry thing ;
			`,
			expectCat: exerrors.CatMissingSymbol,
		},
		{
			name: "missing entry symbol",
			src: `
				token A = "a" ;
				prod thing = A ;
				entry nothing ;
			`,
			expectCat: exerrors.CatMissingSymbol,
		},
		{
			name: "token and production share a name",
			src: `
				token thing = "a" ;
				prod thing = thing ;
				entry thing ;
			`,
			expectCat: exerrors.CatConflictingRules,
		},
		{
			name: "duplicate token",
			src: `
				token A = "a" ;
				token A = "b" ;
				prod thing = A ;
				entry thing ;
			`,
			expectCat: exerrors.CatConflictingRules,
		},
		{
			name: "entry names a token",
			src: `
				token A = "a" ;
				prod thing = A ;
				entry A ;
			`,
			expectCat: exerrors.CatGrammar,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			rs, diag := input.Parse("test.esox", tc.src)
			if !assert.Nil(diag) {
				return
			}

			_, diag = Build(rs)

			if assert.NotNil(diag) {
				assert.Equal(tc.expectCat, diag.Category)
			}
		})
	}
}

func Test_Build_mergedProductions(t *testing.T) {
	assert := assert.New(t)

	// two prods with the same name merge into alternatives of one
	// non-terminal
	g := buildTestGrammar(t, `
		token A = "a" ;
		token B = "b" ;
		prod thing = A ;
		prod thing = B ;
		entry thing ;
	`)

	assert.Equal(1, g.NonTerminalCount())
	assert.Len(g.RulesFor(NonTerminal(0)), 2)
}
