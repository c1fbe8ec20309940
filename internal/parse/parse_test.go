package parse

import (
	"testing"

	"github.com/dekarrin/esox/internal/grammar"
	"github.com/dekarrin/esox/internal/input"
)

// buildTestGrammar compiles surface syntax into a normalized grammar for the
// table builders.
func buildTestGrammar(t *testing.T, src string) *grammar.Grammar {
	t.Helper()

	rs, diag := input.Parse("test.esox", src)
	if diag != nil {
		t.Fatalf("parsing test grammar: %s", diag.Error())
	}
	g, diag := grammar.Build(rs)
	if diag != nil {
		t.Fatalf("building test grammar: %s", diag.Error())
	}
	return g
}

// mockTokens converts a space-free list of terminal names into driver input,
// resolving each name against the grammar.
func mockTokens(t *testing.T, g *grammar.Grammar, names ...string) []Token {
	t.Helper()

	tokens := make([]Token, len(names))
	for i, name := range names {
		idx, ok := g.TerminalIndex(name)
		if !ok {
			t.Fatalf("no terminal named %q in test grammar", name)
		}
		tokens[i] = Token{Terminal: idx, Name: name, Lexeme: name, Line: 1, Col: i + 1}
	}
	return tokens
}

func termSym(i int) grammar.Symbol {
	return grammar.Terminal(i)
}

// eventVisitor records parse events as compact strings for comparison.
type eventVisitor struct {
	g      *grammar.Grammar
	events []string
}

func (v *eventVisitor) Shift(tok Token) {
	v.events = append(v.events, "shift "+tok.Name)
}

func (v *eventVisitor) Reduce(rule int) {
	v.events = append(v.events, "reduce "+v.g.RuleString(rule))
}

func (v *eventVisitor) counts() (shifts, reduces int) {
	for _, e := range v.events {
		if len(e) >= 5 && e[:5] == "shift" {
			shifts++
		} else {
			reduces++
		}
	}
	return shifts, reduces
}
