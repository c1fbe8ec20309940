package parse

import (
	"fmt"

	"github.com/dekarrin/esox/internal/grammar"
	"github.com/dekarrin/esox/internal/util"
)

// LRParser is the reference driver for a canonical ActionGotoTable: a
// state-stack shift/reduce parser. It must only be handed conflict-free
// tables; BuildLRTable guarantees that, BuildGLRTable does not.
type LRParser struct {
	table *ActionGotoTable
	trace func(s string)
}

// NewLRParser creates a driver for the given canonical table.
func NewLRParser(table *ActionGotoTable) *LRParser {
	return &LRParser{table: table}
}

// RegisterTraceListener sets a function to call with a line of text every
// time the driver takes a step.
func (p *LRParser) RegisterTraceListener(listener func(s string)) {
	p.trace = listener
}

func (p *LRParser) notifyTrace(fmtStr string, args ...interface{}) {
	if p.trace != nil {
		p.trace(fmt.Sprintf(fmtStr, args...))
	}
}

// Parse runs the shift/reduce parse over the tokens, which must not include
// an end marker; the driver supplies its own. The Visitor receives a Shift
// for every consumed token and a Reduce for every completed production, in
// bottom-up order. Returns an *UnexpectedTokenError if the input is not in
// the grammar's language.
//
// This is an implementation of Algorithm 4.44, "LR-parsing algorithm", from
// the purple dragon book.
func (p *LRParser) Parse(tokens []Token, v Visitor) error {
	g := p.table.Grammar()

	stateStack := util.Stack[int]{Of: []int{p.table.Initial()}}

	pos := 0
	cur := func() Token {
		if pos < len(tokens) {
			return tokens[pos]
		}
		return endTokenAfter(tokens)
	}

	for { /* repeat forever */
		s := stateStack.Peek()
		a := cur()

		act := p.table.Action(s, a.symbol())
		p.notifyTrace("state %d on %s: %s", s, a.Name, act.String())

		switch act.Type {
		case LRShift:
			v.Shift(a)
			stateStack.Push(act.State)
			pos++
		case LRReduce:
			r := g.Rule(act.Rule)
			if r.IsEntry() {
				// reducing past the start symbol means the input continued
				// after a complete parse
				return &UnexpectedTokenError{Got: a, Expected: p.table.ExpectedTerminals(s)}
			}

			// pop |β| states, then go to GOTO[top, A]
			for i := 0; i < len(r.Expansion()); i++ {
				stateStack.Pop()
			}
			t := stateStack.Peek()
			target, ok := p.table.Goto(t, grammar.NonTerminal(r.LHS))
			if !ok {
				return &UnexpectedTokenError{Got: a, Expected: p.table.ExpectedTerminals(t)}
			}
			stateStack.Push(target)
			v.Reduce(act.Rule)
		case LRAccept:
			return nil
		case LRError:
			return &UnexpectedTokenError{Got: a, Expected: p.table.ExpectedTerminals(s)}
		}
	}
}
