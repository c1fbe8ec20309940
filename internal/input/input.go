// Package input defines the parsed form of a grammar file and the parser that
// produces it. A grammar file declares token rules (literal or regex),
// production rules in an EBNF-ish pattern language, and exactly one entry
// declaration naming the start production.
//
// The parsed RuleSet is the sole input of the generation pipeline; everything
// downstream (alphabet, automata, grammar, tables) is derived from it.
package input

import (
	"fmt"
)

// SourceSpan is a region of the grammar file, with 1-based inclusive start and
// end positions.
type SourceSpan struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (sp SourceSpan) String() string {
	return fmt.Sprintf("%d:%d", sp.StartLine, sp.StartCol)
}

// Characters is an inclusive range of codepoints. A single character is the
// range whose Lo and Hi are equal.
type Characters struct {
	Lo rune
	Hi rune
}

// Single returns the Characters holding exactly the one given codepoint.
func Single(ch rune) Characters {
	return Characters{Lo: ch, Hi: ch}
}

// IsSingle returns whether the range holds exactly one codepoint.
func (c Characters) IsSingle() bool {
	return c.Lo == c.Hi
}

// PatternType enumerates the variants of Pattern.
type PatternType int

const (
	// PatternSequence matches each element in order.
	PatternSequence PatternType = iota

	// PatternAlternative matches any one element.
	PatternAlternative

	// PatternRepetition matches Inner repeated between Min and Max times.
	PatternRepetition

	// PatternCharSet matches one codepoint from (or outside of) a set of
	// ranges.
	PatternCharSet

	// PatternChar matches one codepoint from a single range.
	PatternChar

	// PatternEpsilon matches the empty string.
	PatternEpsilon
)

// RepeatUnbounded is the Max of a Repetition with no upper bound.
const RepeatUnbounded = -1

// Pattern is the algebraic form of a token pattern. Which fields are
// meaningful depends on Type:
//
//   - PatternSequence, PatternAlternative: Elements
//   - PatternRepetition: Inner, Min, Max (Max == RepeatUnbounded if open)
//   - PatternCharSet: Chars, Negated
//   - PatternChar: Char
//   - PatternEpsilon: nothing
type Pattern struct {
	Type     PatternType
	Elements []*Pattern
	Inner    *Pattern
	Min      int
	Max      int
	Chars    []Characters
	Negated  bool
	Char     Characters
}

// PatternFromLiteral gives the Pattern matching exactly the given string: a
// sequence of single-char patterns, or epsilon for the empty string.
func PatternFromLiteral(lit string) *Pattern {
	runes := []rune(lit)
	if len(runes) == 0 {
		return &Pattern{Type: PatternEpsilon}
	}
	if len(runes) == 1 {
		return &Pattern{Type: PatternChar, Char: Single(runes[0])}
	}

	elems := make([]*Pattern, len(runes))
	for i, ch := range runes {
		elems[i] = &Pattern{Type: PatternChar, Char: Single(ch)}
	}
	return &Pattern{Type: PatternSequence, Elements: elems}
}

func (p *Pattern) String() string {
	switch p.Type {
	case PatternSequence:
		s := ""
		for i, e := range p.Elements {
			if i > 0 {
				s += " "
			}
			s += e.String()
		}
		return "(" + s + ")"
	case PatternAlternative:
		s := ""
		for i, e := range p.Elements {
			if i > 0 {
				s += "|"
			}
			s += e.String()
		}
		return "(" + s + ")"
	case PatternRepetition:
		if p.Max == RepeatUnbounded {
			return fmt.Sprintf("%s{%d,}", p.Inner.String(), p.Min)
		}
		return fmt.Sprintf("%s{%d,%d}", p.Inner.String(), p.Min, p.Max)
	case PatternCharSet:
		s := "["
		if p.Negated {
			s += "^"
		}
		for _, c := range p.Chars {
			if c.IsSingle() {
				s += fmt.Sprintf("%q", c.Lo)
			} else {
				s += fmt.Sprintf("%q-%q", c.Lo, c.Hi)
			}
		}
		return s + "]"
	case PatternChar:
		if p.Char.IsSingle() {
			return fmt.Sprintf("%q", p.Char.Lo)
		}
		return fmt.Sprintf("%q-%q", p.Char.Lo, p.Char.Hi)
	case PatternEpsilon:
		return "ε"
	default:
		return fmt.Sprintf("Pattern(%d)", int(p.Type))
	}
}

// TokenRule is one token declaration. Precedence defaults to 0; higher wins
// when two tokens accept the same input.
type TokenRule struct {
	Name       string
	Precedence int
	Pattern    *Pattern

	// Literal is whether the rule was declared with a quoted literal rather
	// than a regex. It only affects how diagnostics describe the rule.
	Literal bool

	Span SourceSpan
}

// ProdPatternType enumerates the variants of ProdPattern.
type ProdPatternType int

const (
	// ProdSequence matches each element in order.
	ProdSequence ProdPatternType = iota

	// ProdAlternative matches any one element.
	ProdAlternative

	// ProdOptional matches Inner zero or one times.
	ProdOptional

	// ProdZeroOrMany matches Inner any number of times.
	ProdZeroOrMany

	// ProdOneOrMany matches Inner at least once.
	ProdOneOrMany

	// ProdRuleRef matches whatever the named token or production matches.
	ProdRuleRef
)

// ProdPattern is the pattern of a production rule. Elements is meaningful for
// ProdSequence and ProdAlternative, Inner for the repetition variants, and
// RuleName for ProdRuleRef.
type ProdPattern struct {
	Type     ProdPatternType
	Elements []*ProdPattern
	Inner    *ProdPattern
	RuleName string
}

func (p *ProdPattern) String() string {
	switch p.Type {
	case ProdSequence:
		s := ""
		for i, e := range p.Elements {
			if i > 0 {
				s += " "
			}
			s += e.String()
		}
		return s
	case ProdAlternative:
		s := "("
		for i, e := range p.Elements {
			if i > 0 {
				s += " | "
			}
			s += e.String()
		}
		return s + ")"
	case ProdOptional:
		return "(" + p.Inner.String() + ")?"
	case ProdZeroOrMany:
		return "(" + p.Inner.String() + ")*"
	case ProdOneOrMany:
		return "(" + p.Inner.String() + ")+"
	case ProdRuleRef:
		return p.RuleName
	default:
		return fmt.Sprintf("ProdPattern(%d)", int(p.Type))
	}
}

// ProductionRule is one production declaration.
type ProductionRule struct {
	Name    string
	Tag     string
	Pattern *ProdPattern
	Span    SourceSpan
}

// EntryRule names the start production.
type EntryRule struct {
	Name string
	Span SourceSpan
}

// RuleSet is a complete parsed grammar file.
type RuleSet struct {
	// File is the path the rule set was parsed from, used in diagnostics.
	File string

	Entry       EntryRule
	Tokens      []TokenRule
	Productions []ProductionRule
}

// Token returns the token rule with the given name, or nil if there is none.
func (rs *RuleSet) Token(name string) *TokenRule {
	for i := range rs.Tokens {
		if rs.Tokens[i].Name == name {
			return &rs.Tokens[i]
		}
	}
	return nil
}
