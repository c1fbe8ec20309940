// Package parse builds the parse tables of the generator — LL(1), canonical
// LR(0) and LR(1), and the conflict-tolerant GLR variant — and provides the
// reference drivers that run them over token streams, feeding a Visitor.
package parse

import (
	"fmt"

	"github.com/dekarrin/esox/internal/grammar"
)

// LRActionType enumerates the kinds of LRAction.
type LRActionType int

const (
	LRShift LRActionType = iota
	LRReduce
	LRAccept
	LRError
)

func (t LRActionType) String() string {
	switch t {
	case LRShift:
		return "SHIFT"
	case LRReduce:
		return "REDUCE"
	case LRAccept:
		return "ACCEPT"
	case LRError:
		return "ERROR"
	default:
		return fmt.Sprintf("LRActionType(%d)", int(t))
	}
}

// LRAction is one cell entry of an ACTION/GOTO table. State is the target for
// LRShift (for both terminal shifts and non-terminal gotos; the two halves
// share one table); Rule is the arena index of the production for LRReduce.
type LRAction struct {
	Type  LRActionType
	State int
	Rule  int
}

func (act LRAction) String() string {
	switch act.Type {
	case LRAccept:
		return "ACTION<accept>"
	case LRError:
		return "ACTION<error>"
	case LRReduce:
		return fmt.Sprintf("ACTION<reduce rule %d>", act.Rule)
	case LRShift:
		return fmt.Sprintf("ACTION<shift %d>", act.State)
	default:
		return "ACTION<unknown>"
	}
}

// Equal returns whether LRAction is equal to another value. It will not be
// equal if the other value cannot be cast to LRAction or *LRAction.
func (act LRAction) Equal(o any) bool {
	other, ok := o.(LRAction)
	if !ok {
		otherPtr, ok := o.(*LRAction)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if act.Type != other.Type {
		return false
	} else if act.State != other.State {
		return false
	} else if act.Rule != other.Rule {
		return false
	}

	return true
}

// Visitor receives the parse events of a driver in order: a Shift for every
// consumed token and a Reduce, with the arena index of the reduced rule, for
// every completed production.
type Visitor interface {
	Shift(tok Token)
	Reduce(rule int)
}

// Token is the terminal input of the parse drivers. Terminal is the grammar
// terminal index; Lexeme, Line and Col describe the source text for error
// reporting.
type Token struct {
	Terminal int
	Name     string
	Lexeme   string
	Line     int
	Col      int
}

func (t Token) String() string {
	return fmt.Sprintf("(%s %q @%d:%d)", t.Name, t.Lexeme, t.Line, t.Col)
}

func (t Token) symbol() grammar.Symbol {
	if t.Terminal < 0 {
		return grammar.End
	}
	return grammar.Terminal(t.Terminal)
}
