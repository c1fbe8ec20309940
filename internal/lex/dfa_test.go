package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/internal/automaton"
	"github.com/dekarrin/esox/internal/input"
)

// buildResolvedLexer runs the whole lexer pipeline for the token rules of the
// given grammar source.
func buildResolvedLexer(t *testing.T, src string) (automaton.DFA[int], Alphabet, []input.TokenRule) {
	t.Helper()

	rules := tokenRulesFromGrammar(t, src)
	alpha := NewAlphabet(rules)
	nfa := BuildNFA(alpha, rules)

	resolved, diag := ResolvePrecedence(BuildDFA(nfa), rules, "test.esox")
	if diag != nil {
		t.Fatalf("resolving precedence: %s", diag.Error())
	}
	return resolved, alpha, rules
}

// simulate walks the DFA over the input and reports whether it ends in an
// accepting state, and if so which rule it accepts.
func simulate(dfa automaton.DFA[int], alpha Alphabet, text string) (int, bool) {
	state := automaton.StateID(0)
	for _, ch := range text {
		idx, ok := alpha.IndexOf(ch)
		if !ok {
			return 0, false
		}
		next, ok := dfa.Next(state, idx)
		if !ok {
			return 0, false
		}
		state = next
	}
	if !dfa.IsAccepting(state) {
		return 0, false
	}
	return dfa.Payload(state), true
}

func Test_LexerPipeline_acceptsPatternLanguage(t *testing.T) {
	src := `
		token NUM = /[0-9]+/ ;
		token WORD = /[a-z][a-z0-9]*/ ;
		token PLUS = "+" ;
		prod sum = NUM ;
		entry sum ;
	`
	dfa, alpha, _ := buildResolvedLexer(t, src)

	testCases := []struct {
		name       string
		text       string
		expectRule int
		expectOK   bool
	}{
		{name: "single digit", text: "7", expectRule: 0, expectOK: true},
		{name: "multi digit", text: "1234", expectRule: 0, expectOK: true},
		{name: "word", text: "abc", expectRule: 1, expectOK: true},
		{name: "word with digits", text: "a0b1", expectRule: 1, expectOK: true},
		{name: "plus", text: "+", expectRule: 2, expectOK: true},
		{name: "empty", text: "", expectOK: false},
		{name: "digit then letter", text: "1a", expectOK: false},
		{name: "leading digit word", text: "0abc", expectOK: false},
		{name: "double plus", text: "++", expectOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			rule, ok := simulate(dfa, alpha, tc.text)

			assert.Equal(tc.expectOK, ok)
			if tc.expectOK && ok {
				assert.Equal(tc.expectRule, rule)
			}
		})
	}
}

func Test_LexerPipeline_countedRepetition(t *testing.T) {
	// the DFA for /a{2,4}b/ accepts exactly aab, aaab, and aaaab
	src := `
		token AB = /a{2,4}b/ ;
		prod thing = AB ;
		entry thing ;
	`
	dfa, alpha, _ := buildResolvedLexer(t, src)

	testCases := []struct {
		text     string
		expectOK bool
	}{
		{text: "ab", expectOK: false},
		{text: "aab", expectOK: true},
		{text: "aaab", expectOK: true},
		{text: "aaaab", expectOK: true},
		{text: "aaaaab", expectOK: false},
		{text: "aa", expectOK: false},
		{text: "b", expectOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			assert := assert.New(t)

			_, ok := simulate(dfa, alpha, tc.text)

			assert.Equal(tc.expectOK, ok)
		})
	}
}

func Test_LexerPipeline_negatedClass(t *testing.T) {
	assert := assert.New(t)
	src := `
		token STR = /"[^"]*"/ ;
		prod thing = STR ;
		entry thing ;
	`
	dfa, alpha, _ := buildResolvedLexer(t, src)

	_, ok := simulate(dfa, alpha, `"hello"`)
	assert.True(ok)

	_, ok = simulate(dfa, alpha, `""`)
	assert.True(ok)

	_, ok = simulate(dfa, alpha, `"unterminated`)
	assert.False(ok)
}

func Test_ResolvePrecedence(t *testing.T) {
	t.Run("higher precedence wins", func(t *testing.T) {
		assert := assert.New(t)
		src := `
			token WORD = /[a-z]+/ ;
			token IF 1 = "if" ;
			prod thing = WORD ;
			entry thing ;
		`
		dfa, alpha, _ := buildResolvedLexer(t, src)

		rule, ok := simulate(dfa, alpha, "if")
		if assert.True(ok) {
			assert.Equal(1, rule, "keyword rule must win over WORD")
		}

		rule, ok = simulate(dfa, alpha, "iffy")
		if assert.True(ok) {
			assert.Equal(0, rule)
		}
	})

	t.Run("tie is a conflict", func(t *testing.T) {
		assert := assert.New(t)
		rules := tokenRulesFromGrammar(t, `
			token WORD = /[a-z]+/ ;
			token ALSOWORD = /[a-z]+/ ;
			prod thing = WORD ;
			entry thing ;
		`)
		alpha := NewAlphabet(rules)
		nfa := BuildNFA(alpha, rules)

		_, diag := ResolvePrecedence(BuildDFA(nfa), rules, "test.esox")

		if assert.NotNil(diag) {
			assert.Len(diag.Sections, 2, "both tied rules must be named")
		}
	})
}
