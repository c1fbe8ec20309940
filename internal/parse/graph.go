package parse

import (
	"fmt"

	"github.com/dekarrin/esox/internal/grammar"
)

// parserGraph is the canonical collection of LR(k) item sets together with
// its goto transitions. States are numbered in discovery order; state 0 is
// the closure of the entry item.
type parserGraph struct {
	g *grammar.Grammar
	k int

	// firsts backs lookahead computation during closure; only built for k=1.
	firsts map[grammar.Symbol]grammar.SymbolSet

	states []grammar.ItemSet
	edges  []map[grammar.Symbol]int

	stateIDs map[string]int
}

// newParserGraph computes the canonical collection for the grammar with
// k-symbol lookahead, k in {0, 1}.
//
// The worklist runs in insertion order and every per-state iteration is over
// sorted item keys, so state numbering and edge discovery are stable across
// runs.
func newParserGraph(g *grammar.Grammar, k int) *parserGraph {
	if k != 0 && k != 1 {
		panic(fmt.Sprintf("LR(%d) is not supported; k must be 0 or 1", k))
	}

	pg := &parserGraph{g: g, k: k, stateIDs: map[string]int{}}
	if k == 1 {
		pg.firsts = grammar.FirstSets(g)
	}

	var entryItem grammar.Item
	if k == 1 {
		entryItem = grammar.NewItem(grammar.EntryRuleIndex, grammar.End)
	} else {
		entryItem = grammar.NewItem(grammar.EntryRuleIndex)
	}

	entrySet := pg.closure(grammar.NewItemSet(entryItem))
	pg.addState(entrySet)

	// worklist of state indices, processed in insertion order
	for next := 0; next < len(pg.states); next++ {
		itemSet := pg.states[next]

		// kernel sets of goto(I, X), grouped by X
		kernels := map[grammar.Symbol]grammar.ItemSet{}
		for _, key := range itemSet.OrderedElements() {
			item := itemSet.Get(key)
			sym, ok := item.SymbolAfterDot(pg.g)
			if !ok {
				continue
			}
			kernel, ok := kernels[sym]
			if !ok {
				kernel = grammar.NewItemSet()
				kernels[sym] = kernel
			}
			advanced := item.Advanced(pg.g)
			kernel.Set(advanced.Key(), advanced)
		}

		transitionSymbols := make([]grammar.Symbol, 0, len(kernels))
		for sym := range kernels {
			transitionSymbols = append(transitionSymbols, sym)
		}
		grammar.SortSymbols(transitionSymbols)

		for _, sym := range transitionSymbols {
			targetSet := pg.closure(kernels[sym])
			targetKey := targetSet.StringOrdered()

			target, exists := pg.stateIDs[targetKey]
			if !exists {
				target = pg.addState(targetSet)
			}
			pg.edges[next][sym] = target
		}
	}

	return pg
}

func (pg *parserGraph) addState(set grammar.ItemSet) int {
	id := len(pg.states)
	pg.states = append(pg.states, set)
	pg.edges = append(pg.edges, map[grammar.Symbol]int{})
	pg.stateIDs[set.StringOrdered()] = id
	return id
}

// closure computes the closure of an item set: for every item A -> α · B β
// with non-terminal B and every rule B -> γ, the fresh item B -> · γ is
// added — with lookahead μ for each μ in FIRST(β λ) when k is 1 — and the
// process repeats until nothing new appears.
func (pg *parserGraph) closure(set grammar.ItemSet) grammar.ItemSet {
	closed := grammar.NewItemSet()
	var toExpand []grammar.Item

	for _, key := range set.OrderedElements() {
		item := set.Get(key)
		closed.Set(key, item)
		toExpand = append(toExpand, item)
	}

	for len(toExpand) > 0 {
		top := toExpand[len(toExpand)-1]
		toExpand = toExpand[:len(toExpand)-1]

		symbolAfterDot, ok := top.SymbolAfterDot(pg.g)
		if !ok || !symbolAfterDot.IsNonTerminal() {
			continue
		}

		var lookaheads []grammar.Symbol
		if pg.k == 1 {
			// FIRST of everything past B, terminated by the item's own
			// lookahead
			sequence := append([]grammar.Symbol{}, top.SymbolsPastDot(pg.g)...)
			sequence = append(sequence, top.Lookahead...)
			lookaheadSet := grammar.FirstOfSequence(sequence, pg.firsts)

			lookaheads = lookaheadSet.Elements()
			grammar.SortSymbols(lookaheads)
		}

		for _, ruleIdx := range pg.g.RulesFor(symbolAfterDot) {
			var fresh []grammar.Item
			if pg.k == 0 {
				fresh = []grammar.Item{grammar.NewItem(ruleIdx)}
			} else {
				for _, la := range lookaheads {
					fresh = append(fresh, grammar.NewItem(ruleIdx, la))
				}
			}

			for _, item := range fresh {
				if !closed.Has(item.Key()) {
					closed.Set(item.Key(), item)
					toExpand = append(toExpand, item)
				}
			}
		}
	}

	return closed
}

// sortedItems returns the items of the given state in key order.
func (pg *parserGraph) sortedItems(state int) []grammar.Item {
	set := pg.states[state]
	keys := set.OrderedElements()

	items := make([]grammar.Item, len(keys))
	for i, key := range keys {
		items[i] = set.Get(key)
	}
	return items
}

// sortedEdges returns the out-edges of the given state in symbol order.
func (pg *parserGraph) sortedEdges(state int) []graphEdge {
	syms := make([]grammar.Symbol, 0, len(pg.edges[state]))
	for sym := range pg.edges[state] {
		syms = append(syms, sym)
	}
	grammar.SortSymbols(syms)

	edges := make([]graphEdge, len(syms))
	for i, sym := range syms {
		edges[i] = graphEdge{Symbol: sym, Target: pg.edges[state][sym]}
	}
	return edges
}

type graphEdge struct {
	Symbol grammar.Symbol
	Target int
}

func (pg *parserGraph) String() string {
	s := fmt.Sprintf("parserGraph(k=%d) {", pg.k)
	for i := range pg.states {
		s += fmt.Sprintf("\n\t%d: %s", i, pg.states[i].StringOrdered())
		edges := pg.sortedEdges(i)
		for _, e := range edges {
			s += fmt.Sprintf("\n\t\t=(%s)=> %d", pg.g.SymbolName(e.Symbol), e.Target)
		}
	}
	s += "\n}"
	return s
}
