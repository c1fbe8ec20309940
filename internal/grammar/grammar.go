package grammar

import (
	"fmt"
	"strings"
)

// Grammar is the normalized BNF form of a rule set. It is produced once by
// Build and read-only from then on; item sets, parse tables, and emitted
// metadata all hold indices into its rule arena.
type Grammar struct {
	// rules is the arena. rules[EntryRuleIndex] is the entry rule.
	rules []Rule

	entrySymbol Symbol

	termNames []string

	// nonTermNames names the named non-terminals; indices at or above
	// len(nonTermNames) are anonymous, allocated by the normalizer for EBNF
	// operators.
	nonTermNames []string

	nonTermCount int
}

// Reassemble rebuilds a Grammar from previously extracted parts, for loading
// a compiled bundle. Rule origins are not part of a bundle, so diagnostics on
// a reassembled grammar lack source positions.
func Reassemble(rules []Rule, entry Symbol, termNames []string, nonTermNames []string, nonTermCount int) *Grammar {
	return &Grammar{
		rules:        rules,
		entrySymbol:  entry,
		termNames:    termNames,
		nonTermNames: nonTermNames,
		nonTermCount: nonTermCount,
	}
}

// EntrySymbol returns the start symbol.
func (g *Grammar) EntrySymbol() Symbol {
	return g.entrySymbol
}

// Rules returns the rule arena. Callers must not modify it.
func (g *Grammar) Rules() []Rule {
	return g.rules
}

// Rule returns the rule at the given arena index.
func (g *Grammar) Rule(i int) Rule {
	return g.rules[i]
}

// RuleCount returns the number of rules in the arena, entry rule included.
func (g *Grammar) RuleCount() int {
	return len(g.rules)
}

// RulesFor returns the arena indices of every rule whose LHS is the given
// non-terminal, in arena order.
func (g *Grammar) RulesFor(nt Symbol) []int {
	if !nt.IsNonTerminal() {
		return nil
	}

	var indices []int
	for i := range g.rules {
		if g.rules[i].LHS == nt.Index {
			indices = append(indices, i)
		}
	}
	return indices
}

// TerminalCount returns the number of terminals.
func (g *Grammar) TerminalCount() int {
	return len(g.termNames)
}

// NonTerminalCount returns the number of non-terminals, anonymous included.
func (g *Grammar) NonTerminalCount() int {
	return g.nonTermCount
}

// NamedNonTerminalCount returns the number of non-terminals that carry a
// declared name.
func (g *Grammar) NamedNonTerminalCount() int {
	return len(g.nonTermNames)
}

// Terminals returns every terminal symbol in index order.
func (g *Grammar) Terminals() []Symbol {
	syms := make([]Symbol, len(g.termNames))
	for i := range syms {
		syms[i] = Terminal(i)
	}
	return syms
}

// NonTerminals returns every non-terminal symbol in index order, named before
// anonymous.
func (g *Grammar) NonTerminals() []Symbol {
	syms := make([]Symbol, g.nonTermCount)
	for i := range syms {
		syms[i] = NonTerminal(i)
	}
	return syms
}

// Symbols returns every non-terminal followed by every terminal, in the
// canonical symbol order.
func (g *Grammar) Symbols() []Symbol {
	return append(g.NonTerminals(), g.Terminals()...)
}

// TerminalName returns the declared name of the given terminal index.
func (g *Grammar) TerminalName(i int) string {
	return g.termNames[i]
}

// NonTerminalName returns the declared name of the given non-terminal index,
// or the empty string if the index is anonymous.
func (g *Grammar) NonTerminalName(i int) string {
	if i < len(g.nonTermNames) {
		return g.nonTermNames[i]
	}
	return ""
}

// TerminalIndex returns the index of the terminal with the given name.
func (g *Grammar) TerminalIndex(name string) (int, bool) {
	for i := range g.termNames {
		if g.termNames[i] == name {
			return i, true
		}
	}
	return 0, false
}

// IsAnonymous returns whether the symbol is a normalizer-allocated
// non-terminal.
func (g *Grammar) IsAnonymous(s Symbol) bool {
	return s.IsNonTerminal() && s.Index >= len(g.nonTermNames)
}

// SymbolName gives the human-readable form of a symbol: the declared name and
// index for terminals and named non-terminals, a placeholder for anonymous
// ones.
func (g *Grammar) SymbolName(s Symbol) string {
	switch s.Kind {
	case KindTerminal:
		return fmt.Sprintf("%s(%d)", g.termNames[s.Index], s.Index)
	case KindNonTerminal:
		if s.Index < len(g.nonTermNames) {
			return fmt.Sprintf("%s(%d)", g.nonTermNames[s.Index], s.Index)
		}
		return fmt.Sprintf("<anon>(%d)", s.Index)
	case KindEpsilon:
		return "<eps>"
	case KindEnd:
		return "<end>"
	default:
		return s.String()
	}
}

// RuleString renders the rule at the given arena index with symbol names.
func (g *Grammar) RuleString(i int) string {
	r := g.rules[i]

	rhsNames := make([]string, len(r.RHS))
	for j, sym := range r.RHS {
		rhsNames[j] = g.SymbolName(sym)
	}
	rhs := strings.Join(rhsNames, " ")

	if r.IsEntry() {
		return rhs
	}
	return fmt.Sprintf("%s -> %s", g.SymbolName(NonTerminal(r.LHS)), rhs)
}

func (g *Grammar) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Grammar (entry: %s) {", g.SymbolName(g.entrySymbol)))
	for i := range g.rules {
		sb.WriteString("\n\t")
		sb.WriteString(g.RuleString(i))
	}
	sb.WriteString("\n}")

	return sb.String()
}
