package parse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/grammar"
)

// ActionGotoTable is the combined ACTION/GOTO table of an LR(k) parser. It is
// indexed by state and symbol; terminal columns (plus End) are the ACTION
// half and non-terminal columns are the GOTO half. Every cell holds a list of
// entries: canonical construction guarantees at most one per cell, while a
// GLR table preserves all of them.
type ActionGotoTable struct {
	g *grammar.Grammar
	k int

	// cells[state][slot] where slot is terminal index, then End, then
	// non-terminal index offset past them.
	cells [][][]LRAction
}

// Grammar returns the grammar the table was built for.
func (t *ActionGotoTable) Grammar() *grammar.Grammar {
	return t.g
}

// NewActionGotoTableFromCells rebuilds a table from its raw cells, for
// loading a compiled bundle.
func NewActionGotoTableFromCells(g *grammar.Grammar, k int, cells [][][]LRAction) *ActionGotoTable {
	return &ActionGotoTable{g: g, k: k, cells: cells}
}

// RawCells exposes the cell storage for bundle serialization. Callers must
// not modify it.
func (t *ActionGotoTable) RawCells() [][][]LRAction {
	return t.cells
}

// K returns the lookahead size the table was built with.
func (t *ActionGotoTable) K() int {
	return t.k
}

// States returns the number of parser states.
func (t *ActionGotoTable) States() int {
	return len(t.cells)
}

// Initial returns the start state of the parser.
func (t *ActionGotoTable) Initial() int {
	return 0
}

func (t *ActionGotoTable) slot(sym grammar.Symbol) int {
	switch sym.Kind {
	case grammar.KindTerminal:
		return sym.Index
	case grammar.KindEnd:
		return t.g.TerminalCount()
	case grammar.KindNonTerminal:
		return t.g.TerminalCount() + 1 + sym.Index
	default:
		panic(fmt.Sprintf("no table slot for symbol %s", sym))
	}
}

func (t *ActionGotoTable) slotCount() int {
	return t.g.TerminalCount() + 1 + t.g.NonTerminalCount()
}

// Actions returns every entry at (state, symbol). The slice is empty for
// error cells.
func (t *ActionGotoTable) Actions(state int, sym grammar.Symbol) []LRAction {
	return t.cells[state][t.slot(sym)]
}

// Action returns the single entry at (state, symbol), or an LRError action
// for an empty cell. For a GLR table with a conflicted cell this is the first
// entry; deterministic drivers must only be handed canonical tables.
func (t *ActionGotoTable) Action(state int, sym grammar.Symbol) LRAction {
	acts := t.cells[state][t.slot(sym)]
	if len(acts) == 0 {
		return LRAction{Type: LRError}
	}
	return acts[0]
}

// Goto returns the GOTO target for a non-terminal, or false for an error
// entry.
func (t *ActionGotoTable) Goto(state int, nt grammar.Symbol) (int, bool) {
	act := t.Action(state, nt)
	if act.Type != LRShift {
		return 0, false
	}
	return act.State, true
}

// ExpectedTerminals returns the names of the terminals (and "$" for End) with
// a non-error ACTION entry at the given state, for error reporting.
func (t *ActionGotoTable) ExpectedTerminals(state int) []string {
	var expected []string
	for _, term := range t.g.Terminals() {
		if len(t.Actions(state, term)) > 0 {
			expected = append(expected, t.g.TerminalName(term.Index))
		}
	}
	if len(t.Actions(state, grammar.End)) > 0 {
		expected = append(expected, "$")
	}
	return expected
}

// conflictType enumerates the kinds of LR table conflict.
type conflictType int

const (
	conflictShiftReduce conflictType = iota
	conflictReduceReduce
)

// conflict is one cell of the table written twice with non-equal entries.
type conflict struct {
	typ   conflictType
	state int

	// reduceItem and shiftSymbol describe a shift/reduce conflict.
	reduceItem  grammar.Item
	shiftSymbol grammar.Symbol

	// items are all complete items of the state for a reduce/reduce
	// conflict.
	items []grammar.Item
}

// BuildLRTable builds the canonical LR(k) ACTION/GOTO table, k in {0, 1}. If
// any cell is written twice with non-equal entries, the grammar is not LR(k)
// and every conflict is reported as a diagnostic.
func BuildLRTable(g *grammar.Grammar, k int, file string) (*ActionGotoTable, []*exerrors.Diagnostic) {
	table, conflicts := buildActionGotoTable(g, k)
	if len(conflicts) > 0 {
		return nil, conflictDiagnostics(g, conflicts, file)
	}
	return table, nil
}

// BuildGLRTable builds the ACTION/GOTO table with the same construction as
// BuildLRTable but keeps every entry of a conflicted cell; the generated GLR
// parser resolves the non-determinism at run time.
func BuildGLRTable(g *grammar.Grammar, k int) *ActionGotoTable {
	table, _ := buildActionGotoTable(g, k)
	return table
}

func buildActionGotoTable(g *grammar.Grammar, k int) (*ActionGotoTable, []conflict) {
	pg := newParserGraph(g, k)

	table := &ActionGotoTable{g: g, k: k}
	table.cells = make([][][]LRAction, len(pg.states))
	for i := range table.cells {
		table.cells[i] = make([][]LRAction, table.slotCount())
	}

	var conflicts []conflict
	conflicted := map[[2]int]bool{} // (state, slot) cells already reported

	insert := func(state int, sym grammar.Symbol, act LRAction, reducing *grammar.Item) {
		slot := table.slot(sym)
		cell := table.cells[state][slot]

		for _, existing := range cell {
			if existing.Equal(act) {
				return
			}
		}

		if len(cell) > 0 && !conflicted[[2]int{state, slot}] {
			conflicted[[2]int{state, slot}] = true
			conflicts = append(conflicts, newConflict(pg, state, sym, act, cell, reducing))
		}

		table.cells[state][slot] = append(cell, act)
	}

	// every lookahead of k=0 reduces: each terminal, then End
	allLookaheads := append(g.Terminals(), grammar.End)

	for state := range pg.states {
		// reductions (and accept) from complete items
		for _, item := range pg.sortedItems(state) {
			if !item.Complete(g) {
				continue
			}

			lookaheads := item.Lookahead
			if k == 0 {
				lookaheads = allLookaheads
			}

			isEntry := item.Rule == grammar.EntryRuleIndex
			for _, la := range lookaheads {
				if isEntry && la == grammar.End {
					insert(state, la, LRAction{Type: LRAccept}, &item)
				} else {
					insert(state, la, LRAction{Type: LRReduce, Rule: item.Rule}, &item)
				}
			}
		}

		// shifts and gotos from graph edges
		for _, edge := range pg.sortedEdges(state) {
			insert(state, edge.Symbol, LRAction{Type: LRShift, State: edge.Target}, nil)
		}
	}

	return table, conflicts
}

// newConflict classifies a doubly-written cell. A shift against a reduce is a
// shift/reduce conflict carrying the item being reduced and the shifting
// symbol; anything else involving two reduces lists every complete item of
// the state.
func newConflict(pg *parserGraph, state int, sym grammar.Symbol, incoming LRAction, cell []LRAction, reducing *grammar.Item) conflict {
	hasShift := incoming.Type == LRShift
	var reduceItem *grammar.Item

	if incoming.Type == LRReduce || incoming.Type == LRAccept {
		reduceItem = reducing
	}
	for _, act := range cell {
		if act.Type == LRShift {
			hasShift = true
		}
	}
	if reduceItem == nil {
		// the incoming entry is the shift; find a complete item to blame
		for _, item := range pg.sortedItems(state) {
			if item.Complete(pg.g) {
				itemCopy := item
				reduceItem = &itemCopy
				break
			}
		}
	}

	if hasShift && reduceItem != nil {
		return conflict{
			typ:         conflictShiftReduce,
			state:       state,
			reduceItem:  *reduceItem,
			shiftSymbol: sym,
		}
	}

	var completeItems []grammar.Item
	for _, item := range pg.sortedItems(state) {
		if item.Complete(pg.g) {
			completeItems = append(completeItems, item)
		}
	}
	return conflict{
		typ:   conflictReduceReduce,
		state: state,
		items: completeItems,
	}
}

func conflictDiagnostics(g *grammar.Grammar, conflicts []conflict, file string) []*exerrors.Diagnostic {
	var diags []*exerrors.Diagnostic

	for _, c := range conflicts {
		switch c.typ {
		case conflictShiftReduce:
			diag := exerrors.New(exerrors.CatShiftReduce,
				"shift/reduce conflict in state %d on %s", c.state, g.SymbolName(c.shiftSymbol))
			addItemSection(diag, g, file, c.reduceItem,
				fmt.Sprintf("this production can be reduced here, but %s can also be shifted", g.SymbolName(c.shiftSymbol)))
			diags = append(diags, diag)
		case conflictReduceReduce:
			diag := exerrors.New(exerrors.CatReduceReduce,
				"reduce/reduce conflict in state %d", c.state)
			for _, item := range c.items {
				addItemSection(diag, g, file, item, "this production is complete here")
			}
			diags = append(diags, diag)
		}
	}

	return diags
}

func addItemSection(diag *exerrors.Diagnostic, g *grammar.Grammar, file string, item grammar.Item, explanation string) {
	r := g.Rule(item.Rule)
	line, col := 0, 0
	source := g.RuleString(item.Rule)
	if r.Origin != nil {
		line, col = r.Origin.Span.StartLine, r.Origin.Span.StartCol
		source = "prod " + r.Origin.Name
	}
	diag.WithSection(file, line, col, source, explanation)
}

// String renders the table for the --table dump, one row per state with the
// ACTION half before the GOTO half. If two tables produce the same String()
// output, they are considered equal.
func (t *ActionGotoTable) String() string {
	allTerms := make([]string, 0, t.g.TerminalCount()+1)
	for _, term := range t.g.Terminals() {
		allTerms = append(allTerms, t.g.TerminalName(term.Index))
	}
	allTerms = append(allTerms, "$")

	data := [][]string{}

	headers := []string{"S", "|"}
	for _, name := range allTerms {
		headers = append(headers, "A:"+name)
	}
	headers = append(headers, "|")
	for _, nt := range t.g.NonTerminals() {
		headers = append(headers, "G:"+t.g.SymbolName(nt))
	}
	data = append(data, headers)

	termSymbols := append(t.g.Terminals(), grammar.End)
	for state := 0; state < t.States(); state++ {
		row := []string{fmt.Sprintf("%d", state), "|"}

		for _, sym := range termSymbols {
			row = append(row, t.cellString(state, sym, true))
		}
		row = append(row, "|")
		for _, nt := range t.g.NonTerminals() {
			row = append(row, t.cellString(state, nt, false))
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func (t *ActionGotoTable) cellString(state int, sym grammar.Symbol, action bool) string {
	acts := t.Actions(state, sym)

	var parts []string
	for _, act := range acts {
		switch act.Type {
		case LRAccept:
			parts = append(parts, "acc")
		case LRReduce:
			parts = append(parts, "r"+t.g.RuleString(act.Rule))
		case LRShift:
			if action {
				parts = append(parts, fmt.Sprintf("s%d", act.State))
			} else {
				parts = append(parts, fmt.Sprintf("%d", act.State))
			}
		}
	}
	sort.Strings(parts)

	return strings.Join(parts, "/")
}
