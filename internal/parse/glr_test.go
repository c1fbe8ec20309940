package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// the textbook ambiguous grammar: S -> S S | x. Every input of n >= 3 x's has
// several derivations, so its table is conflicted and only the GLR driver can
// run it.
const ambiguousConcatGrammar = `
	token X = "x" ;
	prod s = s s ;
	prod s = X ;
	entry s ;
`

func Test_GLRParser_Parse_ambiguous(t *testing.T) {
	g := buildTestGrammar(t, ambiguousConcatGrammar)
	table := BuildGLRTable(g, 1)

	testCases := []struct {
		name      string
		input     []string
		expectErr bool
	}{
		{name: "one x", input: []string{"X"}},
		{name: "two xs", input: []string{"X", "X"}},
		{name: "three xs", input: []string{"X", "X", "X"}},
		{name: "five xs", input: []string{"X", "X", "X", "X", "X"}},
		{name: "empty", input: nil, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			parser := NewGLRParser(table)
			v := &eventVisitor{g: g}

			err := parser.Parse(mockTokens(t, g, tc.input...), v)

			if tc.expectErr {
				assert.Error(err)
				return
			}

			if !assert.NoError(err) {
				return
			}

			// whatever derivation won, every x is shifted once and n leaf
			// reductions plus n-1 concatenations happen
			shifts, reduces := v.counts()
			n := len(tc.input)
			assert.Equal(n, shifts)
			assert.Equal(n+(n-1), reduces)
		})
	}
}

func Test_GLRParser_Parse_reportsMerge(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, ambiguousConcatGrammar)
	table := BuildGLRTable(g, 1)

	parser := NewGLRParser(table)
	var traces []string
	parser.RegisterTraceListener(func(s string) {
		traces = append(traces, s)
	})

	err := parser.Parse(mockTokens(t, g, "X", "X", "X"), &eventVisitor{g: g})

	if !assert.NoError(err) {
		return
	}

	// the driver must have observed the parse forking and coming back
	// together, and exactly one accept
	var sawAccept bool
	for _, tr := range traces {
		if tr == "accept" {
			sawAccept = true
		}
	}
	assert.True(sawAccept)
	assert.NotEmpty(traces)
}

func Test_GLRParser_Parse_failure(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, ambiguousConcatGrammar)
	table := BuildGLRTable(g, 1)

	parser := NewGLRParser(table)

	// no input at all: the single live branch fails immediately
	err := parser.Parse(nil, &eventVisitor{g: g})
	if assert.Error(err) {
		assert.IsType(&UnexpectedTokenError{}, err)
	}
}

// On an LR(1) grammar the GLR driver never forks, so its event trace is
// exactly the canonical LR(1) driver's.
func Test_GLRParser_Parse_matchesLROnDeterministicGrammar(t *testing.T) {
	g := buildTestGrammar(t, lrSumGrammar)

	lrTable, diags := BuildLRTable(g, 1, "test.esox")
	if len(diags) > 0 {
		t.Fatalf("unexpected LR(1) conflicts: %v", diags[0])
	}
	glrTable := BuildGLRTable(g, 1)

	inputs := [][]string{
		{"NUM"},
		{"NUM", "PLUS", "NUM"},
		{"NUM", "PLUS", "NUM", "PLUS", "NUM"},
	}

	for _, in := range inputs {
		assert := assert.New(t)

		lrVisitor := &eventVisitor{g: g}
		glrVisitor := &eventVisitor{g: g}

		lrErr := NewLRParser(lrTable).Parse(mockTokens(t, g, in...), lrVisitor)
		glrErr := NewGLRParser(glrTable).Parse(mockTokens(t, g, in...), glrVisitor)

		assert.NoError(lrErr)
		assert.NoError(glrErr)
		assert.Equal(lrVisitor.events, glrVisitor.events, "traces diverge on %v", in)
	}
}

func Test_GLRParser_Parse_rejectsLikeLR(t *testing.T) {
	g := buildTestGrammar(t, lrSumGrammar)
	glrTable := BuildGLRTable(g, 1)

	badInputs := [][]string{
		{"PLUS"},
		{"NUM", "PLUS"},
		{"NUM", "NUM"},
	}

	for _, in := range badInputs {
		assert := assert.New(t)

		err := NewGLRParser(glrTable).Parse(mockTokens(t, g, in...), &eventVisitor{g: g})

		assert.Error(err, "input %v must be rejected", in)
	}
}
