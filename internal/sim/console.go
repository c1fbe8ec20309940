package sim

import (
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/esox/internal/automaton"
	"github.com/dekarrin/esox/internal/grammar"
	"github.com/dekarrin/esox/internal/input"
	"github.com/dekarrin/esox/internal/lex"
	"github.com/dekarrin/esox/internal/parse"
)

// Console is one interactive simulation session over a finished generation
// run.
type Console struct {
	// Tokens are the token rules the lexer was generated from.
	Tokens []input.TokenRule

	Grammar  *grammar.Grammar
	Alphabet lex.Alphabet
	DFA      automaton.DFA[int]

	// exactly one of LL and LR is set
	LL *parse.LL1Table
	LR *parse.ActionGotoTable

	// GLR selects the graph-structured-stack driver for the LR table.
	GLR bool

	// Debug additionally echoes driver trace lines to stderr.
	Debug bool

	// Out receives all console output except debug trace lines; defaults to
	// stdout.
	Out io.Writer

	// ForceDirect skips readline even on a TTY.
	ForceDirect bool
}

// Run reads lines until end of input or \quit, scanning and parsing each one
// and echoing the visitor events. Special lines: \dfa dumps the lexer
// automaton, \table dumps the parse table, \quit leaves the console.
func (c *Console) Run() error {
	if c.Out == nil {
		c.Out = os.Stdout
	}

	var reader LineReader
	var err error
	if c.ForceDirect {
		reader = NewDirectReader(os.Stdin)
	} else {
		reader, err = NewInteractiveReader()
		if err != nil {
			return err
		}
	}
	defer reader.Close()

	fmt.Fprintln(c.Out, "esox sim console; \\dfa and \\table dump the automata, \\quit exits")

	for {
		line, err := reader.ReadLine()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		switch line {
		case `\quit`:
			return nil
		case `\dfa`:
			fmt.Fprintln(c.Out, c.DFA.String())
			continue
		case `\table`:
			if c.LL != nil {
				fmt.Fprintln(c.Out, c.LL.String())
			} else {
				fmt.Fprintln(c.Out, c.LR.String())
			}
			continue
		}

		c.runLine(line)
	}
}

func (c *Console) runLine(line string) {
	tokens, diag := lex.Tokenize(line, c.DFA, c.Alphabet, c.Tokens, "<sim>")
	if diag != nil {
		fmt.Fprintln(c.Out, diag.FullMessage())
		return
	}

	parseTokens := make([]parse.Token, len(tokens))
	for i, t := range tokens {
		parseTokens[i] = parse.Token{
			Terminal: t.Rule, Name: t.Name, Lexeme: t.Lexeme, Line: t.Line, Col: t.Col,
		}
	}

	var err error
	visitor := &echoVisitor{out: c.Out, g: c.Grammar}
	switch {
	case c.LL != nil:
		p := parse.NewLL1Parser(c.LL)
		p.RegisterTraceListener(c.traceListener())
		err = p.Parse(parseTokens, visitor)
	case c.GLR:
		p := parse.NewGLRParser(c.LR)
		p.RegisterTraceListener(c.traceListener())
		err = p.Parse(parseTokens, visitor)
	default:
		p := parse.NewLRParser(c.LR)
		p.RegisterTraceListener(c.traceListener())
		err = p.Parse(parseTokens, visitor)
	}

	if err != nil {
		fmt.Fprintln(c.Out, err.Error())
		return
	}
	fmt.Fprintln(c.Out, "accepted")
}

func (c *Console) traceListener() func(string) {
	if !c.Debug {
		return nil
	}
	return func(s string) {
		fmt.Fprintf(os.Stderr, "  . %s\n", s)
	}
}

// echoVisitor prints every parse event as it is flushed.
type echoVisitor struct {
	out io.Writer
	g   *grammar.Grammar
}

func (v *echoVisitor) Shift(tok parse.Token) {
	fmt.Fprintf(v.out, "  shift %s\n", tok.String())
}

func (v *echoVisitor) Reduce(rule int) {
	fmt.Fprintf(v.out, "  reduce %s\n", v.g.RuleString(rule))
}
