package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/grammar"
)

// left-recursive sum grammar; LR(1) but neither LL(1) nor LR(0).
const lrSumGrammar = `
	token NUM = /[0-9]+/ ;
	token PLUS = "+" ;

	prod e = e PLUS t ;
	prod e = t ;
	prod t = NUM ;

	entry e ;
`

// balanced parens; LR(0).
const lr0ParensGrammar = `
	token X = "x" ;
	token LP = "(" ;
	token RP = ")" ;

	prod s = LP s RP ;
	prod s = X ;

	entry s ;
`

func Test_BuildLRTable_lr1(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, lrSumGrammar)

	table, diags := BuildLRTable(g, 1, "test.esox")

	if !assert.Empty(diags, "grammar must be LR(1)") {
		return
	}

	// state 0 shifts NUM and has a goto for both non-terminals
	num, _ := g.TerminalIndex("NUM")
	assert.Equal(LRShift, table.Action(0, termSym(num)).Type)

	_, hasGotoE := table.Goto(0, g.EntrySymbol())
	assert.True(hasGotoE)
}

func Test_BuildLRTable_lr0(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, lr0ParensGrammar)

	table, diags := BuildLRTable(g, 0, "test.esox")

	assert.Empty(diags, "grammar must be LR(0)")
	assert.NotNil(table)
}

func Test_BuildLRTable_conflicts(t *testing.T) {
	testCases := []struct {
		name      string
		src       string
		k         int
		expectCat exerrors.Category
	}{
		{
			name:      "left recursion under LR(0)",
			src:       lrSumGrammar,
			k:         0,
			expectCat: exerrors.CatShiftReduce,
		},
		{
			name: "ambiguous concatenation under LR(1)",
			src: `
				token X = "x" ;
				prod s = s s ;
				prod s = X ;
				entry s ;
			`,
			k:         1,
			expectCat: exerrors.CatShiftReduce,
		},
		{
			name: "identical productions under LR(1)",
			src: `
				token A = "a" ;
				prod s = one ;
				prod s = two ;
				prod one = A ;
				prod two = A ;
				entry s ;
			`,
			k:         1,
			expectCat: exerrors.CatReduceReduce,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := buildTestGrammar(t, tc.src)

			table, diags := BuildLRTable(g, tc.k, "test.esox")

			assert.Nil(table)
			if !assert.NotEmpty(diags) {
				return
			}

			var found bool
			for _, d := range diags {
				if d.Category == tc.expectCat {
					found = true
					break
				}
			}
			assert.True(found, "no %s diagnostic among %d reported", tc.expectCat, len(diags))
		})
	}
}

func Test_LRParser_Parse(t *testing.T) {
	g := buildTestGrammar(t, lrSumGrammar)
	table, diags := BuildLRTable(g, 1, "test.esox")
	if len(diags) > 0 {
		t.Fatalf("unexpected LR(1) conflicts: %v", diags[0])
	}

	testCases := []struct {
		name      string
		input     []string
		expectErr bool
	}{
		{name: "single num", input: []string{"NUM"}},
		{name: "sum", input: []string{"NUM", "PLUS", "NUM"}},
		{name: "long sum", input: []string{"NUM", "PLUS", "NUM", "PLUS", "NUM"}},
		{name: "empty", input: nil, expectErr: true},
		{name: "trailing plus", input: []string{"NUM", "PLUS"}, expectErr: true},
		{name: "leading plus", input: []string{"PLUS", "NUM"}, expectErr: true},
		{name: "juxtaposed nums", input: []string{"NUM", "NUM"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			parser := NewLRParser(table)
			v := &eventVisitor{g: g}

			err := parser.Parse(mockTokens(t, g, tc.input...), v)

			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

// The full left-to-right bottom-up traversal of 1+2+3: reductions come out
// left-associated, T before E at every step.
func Test_LRParser_Parse_reductionOrder(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, lrSumGrammar)
	table, diags := BuildLRTable(g, 1, "test.esox")
	if len(diags) > 0 {
		t.Fatalf("unexpected LR(1) conflicts: %v", diags[0])
	}

	parser := NewLRParser(table)
	v := &eventVisitor{g: g}

	err := parser.Parse(mockTokens(t, g, "NUM", "PLUS", "NUM", "PLUS", "NUM"), v)
	if !assert.NoError(err) {
		return
	}

	// rule arena: 0 entry, 1 e -> e PLUS t, 2 e -> t, 3 t -> NUM
	tToNum := g.RuleString(3)
	eToT := g.RuleString(2)
	eToSum := g.RuleString(1)

	expect := []string{
		"shift NUM",
		"reduce " + tToNum,
		"reduce " + eToT,
		"shift PLUS",
		"shift NUM",
		"reduce " + tToNum,
		"reduce " + eToSum,
		"shift PLUS",
		"shift NUM",
		"reduce " + tToNum,
		"reduce " + eToSum,
	}
	assert.Equal(expect, v.events)
}

func Test_ActionGotoTable_ExpectedTerminals(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, lrSumGrammar)
	table, diags := BuildLRTable(g, 1, "test.esox")
	if len(diags) > 0 {
		t.Fatalf("unexpected LR(1) conflicts: %v", diags[0])
	}

	// at the start only NUM can begin a sum
	assert.Equal([]string{"NUM"}, table.ExpectedTerminals(0))
}

func Test_BuildGLRTable_keepsConflicts(t *testing.T) {
	assert := assert.New(t)
	g := buildTestGrammar(t, `
		token X = "x" ;
		prod s = s s ;
		prod s = X ;
		entry s ;
	`)

	table := BuildGLRTable(g, 1)

	if !assert.NotNil(table) {
		return
	}

	// at least one cell must hold more than one entry
	var sawConflictedCell bool
	allSyms := append(g.Terminals(), grammar.End)
	for state := 0; state < table.States() && !sawConflictedCell; state++ {
		for _, sym := range allSyms {
			if len(table.Actions(state, sym)) > 1 {
				sawConflictedCell = true
				break
			}
		}
	}
	assert.True(sawConflictedCell)
}
