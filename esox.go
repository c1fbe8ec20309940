// Package esox is a parser generator. It compiles a grammar file — token
// rules given as literals or regexes, productions given as EBNF-ish patterns
// — into a deterministic lexer DFA and a parse table (LL(1), LR(0), LR(1), or
// GLR), ready for consumption by code emitters and by the built-in drivers.
//
// Generate runs the whole pipeline; the stages it sequences live under
// internal/ and each stage only runs when everything before it succeeded.
package esox

import (
	"fmt"

	"github.com/dekarrin/esox/internal/automaton"
	"github.com/dekarrin/esox/internal/compile"
	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/grammar"
	"github.com/dekarrin/esox/internal/input"
	"github.com/dekarrin/esox/internal/lex"
	"github.com/dekarrin/esox/internal/parse"
)

// Algorithm selects the parse table construction.
type Algorithm string

const (
	AlgorithmLL1 Algorithm = "ll1"
	AlgorithmLR0 Algorithm = "lr0"
	AlgorithmLR1 Algorithm = "lr1"
	AlgorithmGLR Algorithm = "glr"
)

// ParseAlgorithm converts a command-line algorithm name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmLL1, AlgorithmLR0, AlgorithmLR1, AlgorithmGLR:
		return Algorithm(s), nil
	default:
		return "", fmt.Errorf("unknown algorithm %q; must be one of ll1, lr0, lr1, glr", s)
	}
}

// Options controls a generation run.
type Options struct {
	// Algorithm is the table construction to use. Defaults to LL(1).
	Algorithm Algorithm

	// Language is the target language for the external emitter, recorded in
	// the bundle.
	Language string

	// NoLexer skips lexer generation; the bundle then carries only grammar
	// and table data.
	NoLexer bool
}

// Result is everything one successful generation run produced.
type Result struct {
	RuleSet  *input.RuleSet
	Grammar  *grammar.Grammar
	Alphabet lex.Alphabet
	DFA      automaton.DFA[int]

	// exactly one of LLTable and LRTable is set, matching the algorithm
	LLTable *parse.LL1Table
	LRTable *parse.ActionGotoTable

	opts Options
}

// Generate runs the full pipeline over grammar file source: parse the rule
// set, normalize the grammar, build the lexer automata (unless disabled), and
// construct the selected parse table. The file name is used in diagnostics
// only.
//
// On failure the returned diagnostics hold every problem found in the stage
// that failed; later stages are not attempted.
func Generate(src string, file string, opts Options) (*Result, []*exerrors.Diagnostic) {
	if opts.Algorithm == "" {
		opts.Algorithm = AlgorithmLL1
	}

	rs, diag := input.Parse(file, src)
	if diag != nil {
		return nil, []*exerrors.Diagnostic{diag}
	}

	g, diag := grammar.Build(rs)
	if diag != nil {
		return nil, []*exerrors.Diagnostic{diag}
	}

	res := &Result{RuleSet: rs, Grammar: g, opts: opts}

	if !opts.NoLexer {
		res.Alphabet = lex.NewAlphabet(rs.Tokens)
		nfa := lex.BuildNFA(res.Alphabet, rs.Tokens)
		powersetDFA := lex.BuildDFA(nfa)

		resolved, diag := lex.ResolvePrecedence(powersetDFA, rs.Tokens, file)
		if diag != nil {
			return nil, []*exerrors.Diagnostic{diag}
		}
		res.DFA = resolved
	}

	switch opts.Algorithm {
	case AlgorithmLL1:
		table, diags := parse.BuildLL1Table(g, file)
		if len(diags) > 0 {
			return nil, diags
		}
		res.LLTable = table
	case AlgorithmLR0:
		table, diags := parse.BuildLRTable(g, 0, file)
		if len(diags) > 0 {
			return nil, diags
		}
		res.LRTable = table
	case AlgorithmLR1:
		table, diags := parse.BuildLRTable(g, 1, file)
		if len(diags) > 0 {
			return nil, diags
		}
		res.LRTable = table
	case AlgorithmGLR:
		res.LRTable = parse.BuildGLRTable(g, 1)
	}

	return res, nil
}

// Bundle assembles the compiled artifact for the run.
func (r *Result) Bundle() *compile.Bundle {
	return compile.New(
		r.opts.Language, string(r.opts.Algorithm), !r.opts.NoLexer,
		r.Alphabet, r.DFA, r.Grammar, r.LLTable, r.LRTable,
	)
}

// TableString renders the parse table dump for the --table flag.
func (r *Result) TableString() string {
	if r.LLTable != nil {
		return r.LLTable.String()
	}
	return r.LRTable.String()
}

// Tokenize scans text with the run's lexer. It must not be called on a run
// generated with NoLexer.
func (r *Result) Tokenize(text string) ([]lex.Token, *exerrors.Diagnostic) {
	return lex.Tokenize(text, r.DFA, r.Alphabet, r.RuleSet.Tokens, "<input>")
}

// ParseTokens converts scanned tokens to parser input. Terminal indices equal
// token rule indices, so the conversion is direct.
func ParseTokens(tokens []lex.Token) []parse.Token {
	out := make([]parse.Token, len(tokens))
	for i, t := range tokens {
		out[i] = parse.Token{
			Terminal: t.Rule,
			Name:     t.Name,
			Lexeme:   t.Lexeme,
			Line:     t.Line,
			Col:      t.Col,
		}
	}
	return out
}
