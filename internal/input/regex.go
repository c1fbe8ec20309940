package input

import (
	"fmt"
	"strconv"

	"github.com/dekarrin/esox/internal/exerrors"
)

// CompileRegex converts a regular expression into a Pattern tree. The span is
// the position of the expression in the grammar file and is used in
// diagnostics.
//
// Supported features: literal characters, \n \r \t \\ \/ and \uXXXX escapes,
// character classes with ranges and negation, alternation, grouping, and the
// repetition operators * + ? {m} {m,} {m,n}. Lookaround, backreferences, and
// lazy quantifiers are rejected.
func CompileRegex(file string, span SourceSpan, expr string) (*Pattern, *exerrors.Diagnostic) {
	if expr == "" {
		return nil, regexErr(file, span, expr, "regex is empty")
	}

	rp := &regexParser{file: file, span: span, expr: expr, src: []rune(expr)}
	pat, err := rp.parseAlternation()
	if err != nil {
		return nil, err
	}
	if !rp.atEnd() {
		// the only way to stop early without error is an unbalanced ")"
		return nil, rp.errf("unmatched %q", ')')
	}
	return pat, nil
}

func regexErr(file string, span SourceSpan, expr string, explanation string) *exerrors.Diagnostic {
	return exerrors.New(exerrors.CatRegex, "cannot convert regex").
		WithSection(file, span.StartLine, span.StartCol, "/"+expr+"/", explanation)
}

type regexParser struct {
	file string
	span SourceSpan
	expr string
	src  []rune
	pos  int
}

func (rp *regexParser) atEnd() bool {
	return rp.pos >= len(rp.src)
}

func (rp *regexParser) peek() rune {
	if rp.atEnd() {
		return 0
	}
	return rp.src[rp.pos]
}

func (rp *regexParser) next() rune {
	ch := rp.src[rp.pos]
	rp.pos++
	return ch
}

func (rp *regexParser) errf(format string, a ...interface{}) *exerrors.Diagnostic {
	return regexErr(rp.file, rp.span, rp.expr, fmt.Sprintf(format, a...))
}

func (rp *regexParser) parseAlternation() (*Pattern, *exerrors.Diagnostic) {
	first, err := rp.parseSequence()
	if err != nil {
		return nil, err
	}

	alts := []*Pattern{first}
	for !rp.atEnd() && rp.peek() == '|' {
		rp.next()
		alt, err := rp.parseSequence()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}

	if len(alts) == 1 {
		return alts[0], nil
	}
	return &Pattern{Type: PatternAlternative, Elements: alts}, nil
}

func (rp *regexParser) parseSequence() (*Pattern, *exerrors.Diagnostic) {
	var elems []*Pattern
	for !rp.atEnd() && rp.peek() != '|' && rp.peek() != ')' {
		elem, err := rp.parseRepetition()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}

	if len(elems) == 0 {
		return rp.errEmptyBranch()
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return &Pattern{Type: PatternSequence, Elements: elems}, nil
}

func (rp *regexParser) errEmptyBranch() (*Pattern, *exerrors.Diagnostic) {
	return nil, rp.errf("alternation branch is empty; use ? on the other branch instead")
}

func (rp *regexParser) parseRepetition() (*Pattern, *exerrors.Diagnostic) {
	elem, err := rp.parseElement()
	if err != nil {
		return nil, err
	}

	var repeated bool
	switch rp.peek() {
	case '*':
		rp.next()
		elem = &Pattern{Type: PatternRepetition, Inner: elem, Min: 0, Max: RepeatUnbounded}
		repeated = true
	case '+':
		rp.next()
		elem = &Pattern{Type: PatternRepetition, Inner: elem, Min: 1, Max: RepeatUnbounded}
		repeated = true
	case '?':
		rp.next()
		elem = &Pattern{Type: PatternRepetition, Inner: elem, Min: 0, Max: 1}
		repeated = true
	case '{':
		min, max, counted, err := rp.parseCountedRepetition()
		if err != nil {
			return nil, err
		}
		if counted {
			elem = &Pattern{Type: PatternRepetition, Inner: elem, Min: min, Max: max}
			repeated = true
		}
	}

	if repeated && !rp.atEnd() {
		switch rp.peek() {
		case '?':
			return nil, rp.errf("lazy quantifiers are not supported")
		case '*', '+':
			return nil, rp.errf("double repetition; group the inner repetition if it is intended")
		}
	}

	return elem, nil
}

// parseCountedRepetition reads a {m}, {m,}, or {m,n} suffix. If the braces do
// not form a counted repetition they are left unconsumed and counted is false,
// matching the convention that a stray "{" is a literal.
func (rp *regexParser) parseCountedRepetition() (min, max int, counted bool, diag *exerrors.Diagnostic) {
	start := rp.pos
	rp.next() // consume {

	var minDigits []rune
	for !rp.atEnd() && rp.peek() >= '0' && rp.peek() <= '9' {
		minDigits = append(minDigits, rp.next())
	}
	if len(minDigits) == 0 {
		rp.pos = start
		return 0, 0, false, nil
	}
	min, _ = strconv.Atoi(string(minDigits))

	max = min
	if !rp.atEnd() && rp.peek() == ',' {
		rp.next()
		var maxDigits []rune
		for !rp.atEnd() && rp.peek() >= '0' && rp.peek() <= '9' {
			maxDigits = append(maxDigits, rp.next())
		}
		if len(maxDigits) == 0 {
			max = RepeatUnbounded
		} else {
			max, _ = strconv.Atoi(string(maxDigits))
		}
	}

	if rp.atEnd() || rp.peek() != '}' {
		rp.pos = start
		return 0, 0, false, nil
	}
	rp.next() // consume }

	if max != RepeatUnbounded && max < min {
		return 0, 0, false, rp.errf("repetition {%d,%d} has max below min", min, max)
	}

	return min, max, true, nil
}

func (rp *regexParser) parseElement() (*Pattern, *exerrors.Diagnostic) {
	switch rp.peek() {
	case '(':
		rp.next()
		if rp.peek() == '?' {
			return nil, rp.errf("lookaround and group flags are not supported")
		}
		inner, err := rp.parseAlternation()
		if err != nil {
			return nil, err
		}
		if rp.atEnd() || rp.peek() != ')' {
			return nil, rp.errf("unmatched %q", '(')
		}
		rp.next()
		return inner, nil
	case '[':
		return rp.parseCharSet()
	case '*', '+', '?':
		return nil, rp.errf("repetition operator %q has nothing to repeat", rp.peek())
	default:
		ch, err := rp.parseChar()
		if err != nil {
			return nil, err
		}
		return &Pattern{Type: PatternChar, Char: Single(ch)}, nil
	}
}

func (rp *regexParser) parseCharSet() (*Pattern, *exerrors.Diagnostic) {
	rp.next() // consume [

	negated := false
	if rp.peek() == '^' {
		rp.next()
		negated = true
	}

	var chars []Characters
	for {
		if rp.atEnd() {
			return nil, rp.errf("unterminated character class")
		}
		if rp.peek() == ']' {
			rp.next()
			break
		}

		lo, err := rp.parseChar()
		if err != nil {
			return nil, err
		}

		// a "-" makes a range unless it is the last item in the class
		if rp.peek() == '-' && rp.pos+1 < len(rp.src) && rp.src[rp.pos+1] != ']' {
			rp.next()
			hi, err := rp.parseChar()
			if err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, rp.errf("character range %q-%q is reversed", lo, hi)
			}
			chars = append(chars, Characters{Lo: lo, Hi: hi})
		} else {
			chars = append(chars, Single(lo))
		}
	}

	if len(chars) == 0 {
		return nil, rp.errf("character class is empty")
	}

	return &Pattern{Type: PatternCharSet, Chars: chars, Negated: negated}, nil
}

// parseChar reads one literal or escaped character.
func (rp *regexParser) parseChar() (rune, *exerrors.Diagnostic) {
	if rp.atEnd() {
		return 0, rp.errf("unexpected end of regex")
	}

	ch := rp.next()
	if ch != '\\' {
		return ch, nil
	}

	if rp.atEnd() {
		return 0, rp.errf("trailing backslash")
	}
	esc := rp.next()
	switch esc {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		var digits []rune
		for i := 0; i < 4; i++ {
			if rp.atEnd() {
				return 0, rp.errf("\\u escape needs exactly 4 hex digits")
			}
			digits = append(digits, rp.next())
		}
		code, convErr := strconv.ParseUint(string(digits), 16, 32)
		if convErr != nil {
			return 0, rp.errf("\\u escape needs exactly 4 hex digits, got %q", string(digits))
		}
		return rune(code), nil
	case 'd', 'w', 's', 'D', 'W', 'S', 'p', 'P', 'x':
		return 0, rp.errf("class escape \\%c is not supported; use an explicit character class", esc)
	default:
		if esc >= '1' && esc <= '9' {
			return 0, rp.errf("backreferences are not supported")
		}
		// any other escaped character is itself
		return esc, nil
	}
}
