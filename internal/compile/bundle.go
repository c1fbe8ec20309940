// Package compile serializes the output of a generation run into the
// compiled bundle that code emitters and the sim console consume: the
// alphabet, the resolved lexer DFA, the grammar's name tables and rule arena,
// and the selected parse table, in one rezi-encoded artifact.
package compile

import (
	"github.com/dekarrin/esox/internal/automaton"
	"github.com/dekarrin/esox/internal/grammar"
	"github.com/dekarrin/esox/internal/lex"
	"github.com/dekarrin/esox/internal/parse"
)

// LexEdge is one DFA transition in bundle form.
type LexEdge struct {
	Label int
	To    int
}

// LexState is one DFA state in bundle form. Rule is meaningful only when
// Accepting is set.
type LexState struct {
	Accepting bool
	Rule      int
	Edges     []LexEdge
}

// Sym is a grammar symbol in bundle form.
type Sym struct {
	Kind  int
	Index int
}

func symOf(s grammar.Symbol) Sym {
	return Sym{Kind: int(s.Kind), Index: s.Index}
}

func (s Sym) symbol() grammar.Symbol {
	return grammar.Symbol{Kind: grammar.SymbolKind(s.Kind), Index: s.Index}
}

// BundleRule is one arena rule in bundle form.
type BundleRule struct {
	LHS int
	RHS []Sym
}

// Cell is one ACTION/GOTO entry in bundle form.
type Cell struct {
	Type  int
	State int
	Rule  int
}

// LLCell is one LL(1) table entry in bundle form.
type LLCell struct {
	NonTerminal int
	Lookahead   Sym
	Rule        int
}

// Bundle is everything a code emitter needs from one generation run.
type Bundle struct {
	// Language is the target language requested on the command line,
	// recorded for the external emitter that will consume the bundle.
	Language string

	// Algorithm is one of "ll1", "lr0", "lr1", "glr".
	Algorithm string

	HasLexer  bool
	Alphabet  []lex.CharRange
	LexStates []LexState

	TermNames    []string
	NonTermNames []string
	NonTermCount int
	Rules        []BundleRule
	Entry        Sym

	// LLCells is populated for algorithm ll1; LRCells for the others.
	// LRCells is indexed [state][slot] like the live table.
	LLCells []LLCell
	LRCells [][][]Cell
	LRK     int
}

// New assembles a Bundle from live generation results. dfa may be the zero
// DFA when the lexer stage was skipped; exactly one of ll and lr must be
// non-nil.
func New(language, algorithm string, hasLexer bool, alpha lex.Alphabet, dfa automaton.DFA[int], g *grammar.Grammar, ll *parse.LL1Table, lr *parse.ActionGotoTable) *Bundle {
	b := &Bundle{
		Language:     language,
		Algorithm:    algorithm,
		HasLexer:     hasLexer,
		Alphabet:     alpha.Ranges(),
		NonTermCount: g.NonTerminalCount(),
		Entry:        symOf(g.EntrySymbol()),
	}

	for _, t := range g.Terminals() {
		b.TermNames = append(b.TermNames, g.TerminalName(t.Index))
	}
	for i := 0; i < g.NamedNonTerminalCount(); i++ {
		b.NonTermNames = append(b.NonTermNames, g.NonTerminalName(i))
	}

	for _, r := range g.Rules() {
		br := BundleRule{LHS: r.LHS}
		for _, sym := range r.RHS {
			br.RHS = append(br.RHS, symOf(sym))
		}
		b.Rules = append(b.Rules, br)
	}

	if hasLexer {
		for id := 0; id < dfa.Len(); id++ {
			stateID := automaton.StateID(id)
			st := LexState{Accepting: dfa.IsAccepting(stateID)}
			if st.Accepting {
				st.Rule = dfa.Payload(stateID)
			}
			for _, label := range dfa.TransitionLabels(stateID) {
				to, _ := dfa.Next(stateID, label)
				st.Edges = append(st.Edges, LexEdge{Label: label, To: int(to)})
			}
			b.LexStates = append(b.LexStates, st)
		}
	}

	if ll != nil {
		for _, e := range ll.Entries() {
			b.LLCells = append(b.LLCells, LLCell{
				NonTerminal: e.NonTerminal.Index,
				Lookahead:   symOf(e.Lookahead),
				Rule:        e.Rule,
			})
		}
	}
	if lr != nil {
		b.LRK = lr.K()
		for _, stateCells := range lr.RawCells() {
			row := make([][]Cell, len(stateCells))
			for slot, acts := range stateCells {
				for _, act := range acts {
					row[slot] = append(row[slot], Cell{Type: int(act.Type), State: act.State, Rule: act.Rule})
				}
			}
			b.LRCells = append(b.LRCells, row)
		}
	}

	return b
}

// Grammar rebuilds the grammar the bundle was generated from. Source
// positions are not carried in bundles, so the rules have no origins.
func (b *Bundle) Grammar() *grammar.Grammar {
	rules := make([]grammar.Rule, len(b.Rules))
	for i, br := range b.Rules {
		r := grammar.Rule{LHS: br.LHS}
		for _, s := range br.RHS {
			r.RHS = append(r.RHS, s.symbol())
		}
		rules[i] = r
	}

	return grammar.Reassemble(rules, b.Entry.symbol(), b.TermNames, b.NonTermNames, b.NonTermCount)
}

// DFA rebuilds the resolved lexer DFA. The second return is false when the
// bundle was generated without a lexer.
func (b *Bundle) DFA() (automaton.DFA[int], bool) {
	if !b.HasLexer {
		return automaton.DFA[int]{}, false
	}

	dfa := automaton.DFA[int]{}
	for _, st := range b.LexStates {
		if st.Accepting {
			dfa.AddAcceptingState(st.Rule)
		} else {
			dfa.AddIntermediateState()
		}
	}
	for id, st := range b.LexStates {
		for _, e := range st.Edges {
			dfa.AddTransition(automaton.StateID(id), automaton.StateID(e.To), e.Label)
		}
	}
	return dfa, true
}

// LexAlphabet rebuilds the Alphabet.
func (b *Bundle) LexAlphabet() lex.Alphabet {
	return lex.FromRanges(b.Alphabet)
}

// LLTable rebuilds the LL(1) table. The second return is false when the
// bundle holds an LR-family table instead.
func (b *Bundle) LLTable() (*parse.LL1Table, bool) {
	if b.Algorithm != "ll1" {
		return nil, false
	}

	g := b.Grammar()
	var entries []parse.LL1Entry
	for _, c := range b.LLCells {
		entries = append(entries, parse.LL1Entry{
			NonTerminal: grammar.NonTerminal(c.NonTerminal),
			Lookahead:   c.Lookahead.symbol(),
			Rule:        c.Rule,
		})
	}
	return parse.NewLL1TableFromEntries(g, entries), true
}

// LRTable rebuilds the ACTION/GOTO table. The second return is false when the
// bundle holds an LL(1) table instead.
func (b *Bundle) LRTable() (*parse.ActionGotoTable, bool) {
	if b.Algorithm == "ll1" {
		return nil, false
	}

	g := b.Grammar()
	cells := make([][][]parse.LRAction, len(b.LRCells))
	for state, row := range b.LRCells {
		cells[state] = make([][]parse.LRAction, len(row))
		for slot, cellActs := range row {
			for _, c := range cellActs {
				cells[state][slot] = append(cells[state][slot], parse.LRAction{
					Type:  parse.LRActionType(c.Type),
					State: c.State,
					Rule:  c.Rule,
				})
			}
		}
	}
	return parse.NewActionGotoTableFromCells(g, b.LRK, cells), true
}
