package grammar

import (
	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/input"
)

// Build normalizes the rule set's production patterns into a BNF Grammar.
//
// Token rules become terminals numbered by declaration order. Each distinct
// production name becomes a named non-terminal numbered by first appearance;
// every EBNF operator in a pattern gets a fresh anonymous non-terminal with
// an index above all the named ones:
//
//	alternation p1|..|pn   N -> p1 .. N -> pn
//	optional p?            N -> p, N -> ε
//	zero-or-many p*        N -> ε, N -> p N
//	one-or-many p+         N -> p, N -> p N
//
// The entry rule is synthesized as a pseudo-rule with no LHS producing the
// entry symbol, and always sits at arena slot EntryRuleIndex.
func Build(rs *input.RuleSet) (*Grammar, *exerrors.Diagnostic) {
	b := &builder{rs: rs, symbols: map[string]Symbol{}}

	// terminals first: one per token rule, numbered by declaration order
	for i := range rs.Tokens {
		tok := &rs.Tokens[i]
		if prev, ok := b.symbols[tok.Name]; ok {
			prevTok := rs.Tokens[prev.Index]
			return nil, exerrors.New(exerrors.CatConflictingRules, "token %s is declared more than once", tok.Name).
				WithSection(rs.File, prevTok.Span.StartLine, prevTok.Span.StartCol, "token "+prevTok.Name, "first declared here").
				WithSection(rs.File, tok.Span.StartLine, tok.Span.StartCol, "token "+tok.Name, "declared again here")
		}
		b.symbols[tok.Name] = Terminal(i)
		b.termNames = append(b.termNames, tok.Name)
	}

	// then named non-terminals, numbered by first appearance; repeated names
	// add alternative rules to the same non-terminal
	for i := range rs.Productions {
		prod := &rs.Productions[i]
		if prev, ok := b.symbols[prod.Name]; ok {
			if prev.IsTerminal() {
				prevTok := rs.Tokens[prev.Index]
				return nil, exerrors.New(exerrors.CatConflictingRules, "%s is declared as both a token and a production", prod.Name).
					WithSection(rs.File, prevTok.Span.StartLine, prevTok.Span.StartCol, "token "+prevTok.Name, "declared as a token here").
					WithSection(rs.File, prod.Span.StartLine, prod.Span.StartCol, "prod "+prod.Name, "and as a production here")
			}
			continue
		}
		b.symbols[prod.Name] = NonTerminal(len(b.nonTermNames))
		b.nonTermNames = append(b.nonTermNames, prod.Name)
	}

	// slot 0 is reserved for the entry rule; it is filled in last, once the
	// entry name can be resolved
	b.rules = append(b.rules, Rule{LHS: EntryLHS})

	for i := range rs.Productions {
		prod := &rs.Productions[i]
		lhs := b.symbols[prod.Name]

		rhs, diag := b.transformPattern(prod.Pattern, prod)
		if diag != nil {
			return nil, diag
		}
		b.rules = append(b.rules, Rule{LHS: lhs.Index, RHS: rhs, Origin: prod})
	}

	entrySymbol, ok := b.symbols[rs.Entry.Name]
	if !ok {
		return nil, missingSymbol(rs, rs.Entry.Name, rs.Entry.Span)
	}
	if !entrySymbol.IsNonTerminal() {
		return nil, exerrors.New(exerrors.CatGrammar, "entry %s is a token, not a production", rs.Entry.Name).
			WithSection(rs.File, rs.Entry.Span.StartLine, rs.Entry.Span.StartCol, "entry "+rs.Entry.Name+" ;", "the entry point must name a production")
	}
	b.rules[EntryRuleIndex] = Rule{LHS: EntryLHS, RHS: []Symbol{entrySymbol}}

	return &Grammar{
		rules:        b.rules,
		entrySymbol:  entrySymbol,
		termNames:    b.termNames,
		nonTermNames: b.nonTermNames,
		nonTermCount: len(b.nonTermNames) + b.tempCount,
	}, nil
}

type builder struct {
	rs           *input.RuleSet
	symbols      map[string]Symbol
	termNames    []string
	nonTermNames []string
	tempCount    int
	rules        []Rule
}

// tempSymbol allocates a fresh anonymous non-terminal. Anonymous indices
// start above the last named index, so the two allocations never collide.
func (b *builder) tempSymbol() Symbol {
	sym := NonTerminal(len(b.nonTermNames) + b.tempCount)
	b.tempCount++
	return sym
}

func (b *builder) resolve(name string, origin *input.ProductionRule) (Symbol, *exerrors.Diagnostic) {
	sym, ok := b.symbols[name]
	if !ok {
		return Symbol{}, missingSymbol(b.rs, name, origin.Span)
	}
	return sym, nil
}

func missingSymbol(rs *input.RuleSet, name string, span input.SourceSpan) *exerrors.Diagnostic {
	return exerrors.New(exerrors.CatMissingSymbol, "no token or production named %s", name).
		WithSection(rs.File, span.StartLine, span.StartCol, "", "referenced here but never declared")
}

// transformPattern emits the BNF rules a pattern requires and returns the
// symbol sequence that stands in for the pattern.
func (b *builder) transformPattern(pat *input.ProdPattern, origin *input.ProductionRule) ([]Symbol, *exerrors.Diagnostic) {
	switch pat.Type {
	case input.ProdSequence:
		var syms []Symbol
		for _, elem := range pat.Elements {
			inner, diag := b.transformPattern(elem, origin)
			if diag != nil {
				return nil, diag
			}
			syms = append(syms, inner...)
		}
		return syms, nil

	case input.ProdAlternative:
		alt := b.tempSymbol()
		for _, elem := range pat.Elements {
			inner, diag := b.transformPattern(elem, origin)
			if diag != nil {
				return nil, diag
			}
			b.rules = append(b.rules, Rule{LHS: alt.Index, RHS: inner, Origin: origin})
		}
		return []Symbol{alt}, nil

	case input.ProdOneOrMany:
		rep := b.tempSymbol()
		inner, diag := b.transformPattern(pat.Inner, origin)
		if diag != nil {
			return nil, diag
		}
		b.rules = append(b.rules, Rule{LHS: rep.Index, RHS: inner, Origin: origin})
		recursive := make([]Symbol, len(inner), len(inner)+1)
		copy(recursive, inner)
		recursive = append(recursive, rep)
		b.rules = append(b.rules, Rule{LHS: rep.Index, RHS: recursive, Origin: origin})
		return []Symbol{rep}, nil

	case input.ProdZeroOrMany:
		rep := b.tempSymbol()
		inner, diag := b.transformPattern(pat.Inner, origin)
		if diag != nil {
			return nil, diag
		}
		b.rules = append(b.rules, Rule{LHS: rep.Index, RHS: []Symbol{Epsilon}, Origin: origin})
		recursive := make([]Symbol, len(inner), len(inner)+1)
		copy(recursive, inner)
		recursive = append(recursive, rep)
		b.rules = append(b.rules, Rule{LHS: rep.Index, RHS: recursive, Origin: origin})
		return []Symbol{rep}, nil

	case input.ProdOptional:
		opt := b.tempSymbol()
		inner, diag := b.transformPattern(pat.Inner, origin)
		if diag != nil {
			return nil, diag
		}
		b.rules = append(b.rules, Rule{LHS: opt.Index, RHS: inner, Origin: origin})
		b.rules = append(b.rules, Rule{LHS: opt.Index, RHS: []Symbol{Epsilon}, Origin: origin})
		return []Symbol{opt}, nil

	case input.ProdRuleRef:
		sym, diag := b.resolve(pat.RuleName, origin)
		if diag != nil {
			return nil, diag
		}
		return []Symbol{sym}, nil

	default:
		panic("unknown production pattern type")
	}
}
