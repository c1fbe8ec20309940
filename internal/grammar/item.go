package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/esox/internal/util"
)

// Item is an LR(k) item: a rule reference, a dot position, and a k-symbol
// lookahead (k is 0 or 1, so the lookahead is empty or a single symbol). Dot
// positions run over the rule's Expansion, so an item over an empty
// production is complete at dot 0.
//
// Two items are equal iff rule index, dot, and lookahead all match.
type Item struct {
	Rule      int
	Dot       int
	Lookahead []Symbol
}

// NewItem gives the item for the given arena rule with the dot at the far
// left.
func NewItem(rule int, lookahead ...Symbol) Item {
	return Item{Rule: rule, Lookahead: lookahead}
}

// Key is the canonical map key of the item. It is grammar-independent and
// total: distinct items always have distinct keys.
func (item Item) Key() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("r%d.%d", item.Rule, item.Dot))
	for _, la := range item.Lookahead {
		sb.WriteString(", ")
		sb.WriteString(la.String())
	}
	return sb.String()
}

// SymbolAfterDot returns the symbol immediately after the dot, or false if
// the item is complete.
func (item Item) SymbolAfterDot(g *Grammar) (Symbol, bool) {
	expansion := g.Rule(item.Rule).Expansion()
	if item.Dot >= len(expansion) {
		return Symbol{}, false
	}
	return expansion[item.Dot], true
}

// SymbolsPastDot returns the symbols after the one after the dot; the β of
// an item A -> α · X β.
func (item Item) SymbolsPastDot(g *Grammar) []Symbol {
	expansion := g.Rule(item.Rule).Expansion()
	if item.Dot+1 >= len(expansion) {
		return nil
	}
	return expansion[item.Dot+1:]
}

// Complete returns whether the dot is past the last symbol.
func (item Item) Complete(g *Grammar) bool {
	return item.Dot >= len(g.Rule(item.Rule).Expansion())
}

// Advanced returns a copy of the item with the dot moved one symbol right.
// Panics if the item is already complete.
func (item Item) Advanced(g *Grammar) Item {
	if item.Complete(g) {
		panic(fmt.Sprintf("advancing complete item %s", item.Key()))
	}
	return Item{Rule: item.Rule, Dot: item.Dot + 1, Lookahead: item.Lookahead}
}

// Equal returns whether Item is equal to another value. It will not be equal
// if the other value cannot be cast to Item or *Item.
func (item Item) Equal(o any) bool {
	other, ok := o.(Item)
	if !ok {
		otherPtr, ok := o.(*Item)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if item.Rule != other.Rule {
		return false
	} else if item.Dot != other.Dot {
		return false
	}
	return util.EqualSlices(item.Lookahead, other.Lookahead)
}

// ItemString renders an item with symbol names, dragon-book style:
// "sum(0) -> NUM(0) • plus(1) NUM(0), <end>".
func (g *Grammar) ItemString(item Item) string {
	r := g.Rule(item.Rule)
	expansion := r.Expansion()

	var sb strings.Builder
	if !r.IsEntry() {
		sb.WriteString(g.SymbolName(NonTerminal(r.LHS)))
		sb.WriteString(" -> ")
	}

	for i := 0; i <= len(expansion); i++ {
		if i == item.Dot {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString("•")
		} else if i > 0 && i < len(expansion) {
			sb.WriteString(" ")
		}
		if i < len(expansion) {
			if i == item.Dot {
				sb.WriteString(" ")
			}
			sb.WriteString(g.SymbolName(expansion[i]))
		}
	}

	for _, la := range item.Lookahead {
		sb.WriteString(", ")
		sb.WriteString(g.SymbolName(la))
	}

	return sb.String()
}

// ItemSet is an ordered set of items keyed by Item.Key. The canonical key of
// the whole set (for memoizing item sets in the parser graph) is its
// StringOrdered form.
type ItemSet = util.SVSet[Item]

// NewItemSet creates an ItemSet holding the given items.
func NewItemSet(items ...Item) ItemSet {
	s := util.NewSVSet[Item]()
	for _, item := range items {
		s.Set(item.Key(), item)
	}
	return s
}
