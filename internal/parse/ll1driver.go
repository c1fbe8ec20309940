package parse

import (
	"fmt"

	"github.com/dekarrin/esox/internal/grammar"
	"github.com/dekarrin/esox/internal/util"
)

// LL1Parser is the reference driver for an LL1Table: a stack-based
// predictive parser. The Visitor receives a Reduce for every expansion as it
// is predicted (so expansions arrive in pre-order) and a Shift for every
// matched terminal.
type LL1Parser struct {
	table *LL1Table
	trace func(s string)
}

// NewLL1Parser creates a driver for the given table.
func NewLL1Parser(table *LL1Table) *LL1Parser {
	return &LL1Parser{table: table}
}

// RegisterTraceListener sets a function to call with a line of text every
// time the driver takes a step.
func (p *LL1Parser) RegisterTraceListener(listener func(s string)) {
	p.trace = listener
}

func (p *LL1Parser) notifyTrace(fmtStr string, args ...interface{}) {
	if p.trace != nil {
		p.trace(fmt.Sprintf(fmtStr, args...))
	}
}

// Parse runs the predictive parse over the tokens, which must not include an
// end marker; the driver supplies its own. Returns an *UnexpectedTokenError
// if the input is not in the grammar's language.
//
// This is an implementation of Algorithm 4.34, "Table-driven predictive
// parsing", from the purple dragon book.
func (p *LL1Parser) Parse(tokens []Token, v Visitor) error {
	g := p.table.Grammar()

	symStack := util.Stack[grammar.Symbol]{Of: []grammar.Symbol{grammar.End, g.EntrySymbol()}}

	pos := 0
	cur := func() Token {
		if pos < len(tokens) {
			return tokens[pos]
		}
		return endTokenAfter(tokens)
	}

	for {
		X := symStack.Peek()
		a := cur()
		p.notifyTrace("stack.peek(): %s; lookahead: %s", g.SymbolName(X), a.Name)

		if X == grammar.End {
			if a.IsEnd() {
				return nil
			}
			return &UnexpectedTokenError{Got: a, Expected: []string{"$"}}
		}

		switch X.Kind {
		case grammar.KindTerminal:
			if !a.IsEnd() && a.Terminal == X.Index {
				p.notifyTrace("match %s", a.Name)
				v.Shift(a)
				symStack.Pop()
				pos++
			} else {
				return &UnexpectedTokenError{Got: a, Expected: []string{g.TerminalName(X.Index)}}
			}
		case grammar.KindNonTerminal:
			ruleIdx, ok := p.table.Get(X, a.symbol())
			if !ok {
				return &UnexpectedTokenError{Got: a, Expected: p.table.ExpectedTerminals(X)}
			}

			p.notifyTrace("expand %s", g.RuleString(ruleIdx))
			v.Reduce(ruleIdx)
			symStack.Pop()

			// push the expansion in reverse so it is matched left to right;
			// an empty production pushes nothing
			expansion := g.Rule(ruleIdx).Expansion()
			for i := len(expansion) - 1; i >= 0; i-- {
				symStack.Push(expansion[i])
			}
		default:
			panic(fmt.Sprintf("symbol %s on predictive parse stack", X))
		}
	}
}

// endTokenAfter positions the synthetic end marker just past the final real
// token.
func endTokenAfter(tokens []Token) Token {
	if len(tokens) == 0 {
		return EndToken(1, 1)
	}
	last := tokens[len(tokens)-1]
	return EndToken(last.Line, last.Col+len([]rune(last.Lexeme)))
}
