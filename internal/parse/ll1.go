package parse

import (
	"github.com/dekarrin/rosed"

	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/grammar"
	"github.com/dekarrin/esox/internal/util"
)

// LL1Table is the predictive parse table of an LL(1) grammar: a partial
// mapping from (non-terminal, terminal-or-End) to the rule to expand.
type LL1Table struct {
	g *grammar.Grammar
	m util.Matrix2[grammar.Symbol, grammar.Symbol, int]
}

// Grammar returns the grammar the table was built for.
func (t *LL1Table) Grammar() *grammar.Grammar {
	return t.g
}

// LL1Entry is one populated cell of an LL1Table, for bundle serialization.
type LL1Entry struct {
	NonTerminal grammar.Symbol
	Lookahead   grammar.Symbol
	Rule        int
}

// Entries returns every populated cell in deterministic (non-terminal,
// lookahead) order.
func (t *LL1Table) Entries() []LL1Entry {
	termSymbols := append(t.g.Terminals(), grammar.End)

	var entries []LL1Entry
	for _, nt := range t.g.NonTerminals() {
		for _, a := range termSymbols {
			if ruleIdx, ok := t.Get(nt, a); ok {
				entries = append(entries, LL1Entry{NonTerminal: nt, Lookahead: a, Rule: ruleIdx})
			}
		}
	}
	return entries
}

// NewLL1TableFromEntries rebuilds a table from its populated cells, for
// loading a compiled bundle.
func NewLL1TableFromEntries(g *grammar.Grammar, entries []LL1Entry) *LL1Table {
	t := &LL1Table{g: g, m: util.NewMatrix2[grammar.Symbol, grammar.Symbol, int]()}
	for _, e := range entries {
		t.m.Set(e.NonTerminal, e.Lookahead, e.Rule)
	}
	return t
}

// Get returns the arena index of the rule to expand for non-terminal A on
// lookahead a, and whether such an entry exists.
func (t *LL1Table) Get(A grammar.Symbol, a grammar.Symbol) (int, bool) {
	v := t.m.Get(A, a)
	if v == nil {
		return 0, false
	}
	return *v, true
}

// ExpectedTerminals returns the names of the terminals (and "$" for End)
// with an entry for the given non-terminal, for error reporting.
func (t *LL1Table) ExpectedTerminals(A grammar.Symbol) []string {
	var expected []string
	for _, term := range t.g.Terminals() {
		if _, ok := t.Get(A, term); ok {
			expected = append(expected, t.g.TerminalName(term.Index))
		}
	}
	if _, ok := t.Get(A, grammar.End); ok {
		expected = append(expected, "$")
	}
	return expected
}

// BuildLL1Table populates the predictive parse table.
//
// This is an implementation of Algorithm 4.31, "Construction of a predictive
// parsing table", from the purple dragon book: for every rule A -> α, the
// rule lands in M[A, t] for every terminal t in FIRST(α), and additionally in
// M[A, b] for every b in FOLLOW(A) if α derives the empty string. Writing a
// cell twice with non-equal productions means the grammar is not LL(1), and
// every such collision is reported as a diagnostic.
func BuildLL1Table(g *grammar.Grammar, file string) (*LL1Table, []*exerrors.Diagnostic) {
	firsts := grammar.FirstSets(g)
	follows := grammar.FollowSets(g, firsts)

	table := &LL1Table{g: g, m: util.NewMatrix2[grammar.Symbol, grammar.Symbol, int]()}

	var diags []*exerrors.Diagnostic

	set := func(A grammar.Symbol, a grammar.Symbol, ruleIdx int) {
		existing, ok := table.Get(A, a)
		if ok {
			if existing == ruleIdx || g.Rule(existing).Equal(g.Rule(ruleIdx)) {
				return
			}
			diags = append(diags, ll1ConflictDiagnostic(g, file, A, a, existing, ruleIdx))
			return
		}
		table.m.Set(A, a, ruleIdx)
	}

	for ruleIdx := range g.Rules() {
		r := g.Rule(ruleIdx)
		if r.IsEntry() {
			continue
		}
		A := grammar.NonTerminal(r.LHS)

		firstAlpha := grammar.FirstOfSequence(r.RHS, firsts)

		firstSyms := firstAlpha.Elements()
		grammar.SortSymbols(firstSyms)
		for _, a := range firstSyms {
			if a != grammar.Epsilon {
				set(A, a, ruleIdx)
			}
		}

		if firstAlpha.Has(grammar.Epsilon) {
			followSyms := follows[A].Elements()
			grammar.SortSymbols(followSyms)
			for _, b := range followSyms {
				set(A, b, ruleIdx)
			}
		}
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return table, nil
}

func ll1ConflictDiagnostic(g *grammar.Grammar, file string, A, a grammar.Symbol, rule1, rule2 int) *exerrors.Diagnostic {
	diag := exerrors.New(exerrors.CatLL,
		"grammar is not LL(1): two productions of %s apply on %s",
		g.SymbolName(A), g.SymbolName(a))

	for _, ruleIdx := range []int{rule1, rule2} {
		addItemSection(diag, g, file, grammar.NewItem(ruleIdx),
			"this production is predicted here")
	}
	return diag
}

// String renders the table for the --table dump, one row per non-terminal
// with one column per terminal plus End. If two tables produce the same
// String() output, they are considered equal.
func (t *LL1Table) String() string {
	termSymbols := append(t.g.Terminals(), grammar.End)

	data := [][]string{}

	topRow := []string{""}
	for _, term := range t.g.Terminals() {
		topRow = append(topRow, t.g.TerminalName(term.Index))
	}
	topRow = append(topRow, "$")
	data = append(data, topRow)

	for _, nt := range t.g.NonTerminals() {
		dataRow := []string{t.g.SymbolName(nt)}
		for _, a := range termSymbols {
			cell := ""
			if ruleIdx, ok := t.Get(nt, a); ok {
				cell = t.g.RuleString(ruleIdx)
			}
			dataRow = append(dataRow, cell)
		}
		data = append(data, dataRow)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableBorders: true,
		}).
		String()
}
