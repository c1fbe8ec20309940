package input

import (
	"strconv"

	"github.com/dekarrin/esox/internal/exerrors"
)

// Parse reads the given grammar file source and produces the RuleSet it
// declares. The file name is only used in diagnostics.
//
// The surface syntax is a sequence of semicolon-terminated statements:
//
//	token NAME [PREC] = "literal" ;
//	token NAME [PREC] = /regex/ ;
//	prod name [#tag] = pattern ;
//	entry name ;
//
// Line comments starting with "//" run to end of line. Production patterns
// use "|" for alternation, juxtaposition for sequence, postfix "*", "+", and
// "?" for repetition, and parentheses for grouping.
func Parse(file string, src string) (*RuleSet, *exerrors.Diagnostic) {
	sc := &scanner{file: file, src: []rune(src), line: 1, col: 1}

	rs := &RuleSet{File: file}
	var sawEntry bool

	for {
		sc.skipSpace()
		if sc.atEnd() {
			break
		}

		kwSpan := sc.spanHere()
		kw, err := sc.readName()
		if err != nil {
			return nil, err
		}

		switch kw {
		case "token":
			tok, err := sc.parseTokenRule(kwSpan)
			if err != nil {
				return nil, err
			}
			rs.Tokens = append(rs.Tokens, tok)
		case "prod":
			prod, err := sc.parseProductionRule(kwSpan)
			if err != nil {
				return nil, err
			}
			rs.Productions = append(rs.Productions, prod)
		case "entry":
			sc.skipSpace()
			nameSpan := sc.spanHere()
			name, err := sc.readName()
			if err != nil {
				return nil, err
			}
			if err := sc.expect(';'); err != nil {
				return nil, err
			}
			if sawEntry {
				return nil, exerrors.New(exerrors.CatGrammar, "multiple entry declarations").
					WithSection(file, rs.Entry.Span.StartLine, rs.Entry.Span.StartCol, "entry "+rs.Entry.Name+" ;", "the entry point is first declared here").
					WithSection(file, nameSpan.StartLine, nameSpan.StartCol, "entry "+name+" ;", "and declared again here; a grammar has exactly one entry point")
			}
			sawEntry = true
			rs.Entry = EntryRule{Name: name, Span: nameSpan}
		default:
			return nil, sc.errHeref("expected \"token\", \"prod\", or \"entry\", got %q", kw)
		}
	}

	if !sawEntry {
		return nil, exerrors.New(exerrors.CatGrammar, "grammar has no entry declaration").
			WithSection(file, 1, 1, "", "add \"entry NAME ;\" naming the start production")
	}

	return rs, nil
}

// scanner is a rune-by-rune reader over grammar file source with position
// tracking for diagnostics.
type scanner struct {
	file string
	src  []rune
	pos  int
	line int
	col  int
}

func (sc *scanner) atEnd() bool {
	return sc.pos >= len(sc.src)
}

func (sc *scanner) peek() rune {
	if sc.atEnd() {
		return 0
	}
	return sc.src[sc.pos]
}

func (sc *scanner) next() rune {
	ch := sc.src[sc.pos]
	sc.pos++
	if ch == '\n' {
		sc.line++
		sc.col = 1
	} else {
		sc.col++
	}
	return ch
}

func (sc *scanner) spanHere() SourceSpan {
	return SourceSpan{StartLine: sc.line, StartCol: sc.col, EndLine: sc.line, EndCol: sc.col}
}

// skipSpace consumes whitespace and line comments.
func (sc *scanner) skipSpace() {
	for !sc.atEnd() {
		ch := sc.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			sc.next()
			continue
		}
		if ch == '/' && sc.pos+1 < len(sc.src) && sc.src[sc.pos+1] == '/' {
			for !sc.atEnd() && sc.peek() != '\n' {
				sc.next()
			}
			continue
		}
		break
	}
}

func (sc *scanner) errHeref(format string, a ...interface{}) *exerrors.Diagnostic {
	return exerrors.New(exerrors.CatGrammar, format, a...).
		WithSection(sc.file, sc.line, sc.col, sc.curLineText(), "")
}

// curLineText gives the text of the line the scanner is currently on, for
// diagnostic sections.
func (sc *scanner) curLineText() string {
	start := sc.pos
	for start > 0 && sc.src[start-1] != '\n' {
		start--
	}
	end := sc.pos
	for end < len(sc.src) && sc.src[end] != '\n' {
		end++
	}
	return string(sc.src[start:end])
}

func isNameRune(ch rune) bool {
	return ch == '_' || ch == '-' ||
		('a' <= ch && ch <= 'z') ||
		('A' <= ch && ch <= 'Z') ||
		('0' <= ch && ch <= '9')
}

func (sc *scanner) readName() (string, *exerrors.Diagnostic) {
	if sc.atEnd() || !isNameRune(sc.peek()) {
		return "", sc.errHeref("expected a name")
	}
	var name []rune
	for !sc.atEnd() && isNameRune(sc.peek()) {
		name = append(name, sc.next())
	}
	return string(name), nil
}

func (sc *scanner) expect(want rune) *exerrors.Diagnostic {
	sc.skipSpace()
	if sc.atEnd() || sc.peek() != want {
		return sc.errHeref("expected %q", want)
	}
	sc.next()
	return nil
}

func (sc *scanner) parseTokenRule(start SourceSpan) (TokenRule, *exerrors.Diagnostic) {
	sc.skipSpace()
	name, err := sc.readName()
	if err != nil {
		return TokenRule{}, err
	}

	// optional precedence
	prec := 0
	sc.skipSpace()
	if !sc.atEnd() && sc.peek() >= '0' && sc.peek() <= '9' {
		var digits []rune
		for !sc.atEnd() && sc.peek() >= '0' && sc.peek() <= '9' {
			digits = append(digits, sc.next())
		}
		p, convErr := strconv.Atoi(string(digits))
		if convErr != nil {
			return TokenRule{}, sc.errHeref("bad precedence %q", string(digits))
		}
		prec = p
	}

	if err := sc.expect('='); err != nil {
		return TokenRule{}, err
	}

	sc.skipSpace()
	rule := TokenRule{Name: name, Precedence: prec, Span: start}
	switch sc.peek() {
	case '"':
		lit, err := sc.readQuotedLiteral()
		if err != nil {
			return TokenRule{}, err
		}
		if lit == "" {
			return TokenRule{}, exerrors.New(exerrors.CatRegex, "token %s matches the empty string", name).
				WithSection(sc.file, start.StartLine, start.StartCol, sc.curLineText(), "a token literal must contain at least one character")
		}
		rule.Literal = true
		rule.Pattern = PatternFromLiteral(lit)
	case '/':
		exprSpan := sc.spanHere()
		expr, err := sc.readRegexBody()
		if err != nil {
			return TokenRule{}, err
		}
		pat, err := CompileRegex(sc.file, exprSpan, expr)
		if err != nil {
			return TokenRule{}, err
		}
		rule.Pattern = pat
	default:
		return TokenRule{}, sc.errHeref("expected a quoted literal or /regex/ for token %s", name)
	}

	if err := sc.expect(';'); err != nil {
		return TokenRule{}, err
	}

	rule.Span.EndLine = sc.line
	rule.Span.EndCol = sc.col
	return rule, nil
}

// readQuotedLiteral consumes a double-quoted string with backslash escapes and
// returns its unescaped content.
func (sc *scanner) readQuotedLiteral() (string, *exerrors.Diagnostic) {
	sc.next() // opening quote
	var content []rune
	for {
		if sc.atEnd() || sc.peek() == '\n' {
			return "", sc.errHeref("unterminated string literal")
		}
		ch := sc.next()
		if ch == '"' {
			break
		}
		if ch == '\\' {
			if sc.atEnd() {
				return "", sc.errHeref("unterminated string literal")
			}
			esc := sc.next()
			switch esc {
			case 'n':
				ch = '\n'
			case 'r':
				ch = '\r'
			case 't':
				ch = '\t'
			default:
				ch = esc
			}
		}
		content = append(content, ch)
	}
	return string(content), nil
}

// readRegexBody consumes a /-delimited regex and returns the raw expression
// between the slashes, with escaped slashes left escaped for the regex
// compiler to handle.
func (sc *scanner) readRegexBody() (string, *exerrors.Diagnostic) {
	sc.next() // opening slash
	var content []rune
	for {
		if sc.atEnd() || sc.peek() == '\n' {
			return "", sc.errHeref("unterminated regex")
		}
		ch := sc.next()
		if ch == '/' {
			break
		}
		if ch == '\\' {
			if sc.atEnd() {
				return "", sc.errHeref("unterminated regex")
			}
			content = append(content, ch)
			ch = sc.next()
		}
		content = append(content, ch)
	}
	return string(content), nil
}

func (sc *scanner) parseProductionRule(start SourceSpan) (ProductionRule, *exerrors.Diagnostic) {
	sc.skipSpace()
	name, err := sc.readName()
	if err != nil {
		return ProductionRule{}, err
	}

	prod := ProductionRule{Name: name, Span: start}

	sc.skipSpace()
	if !sc.atEnd() && sc.peek() == '#' {
		sc.next()
		tag, err := sc.readName()
		if err != nil {
			return ProductionRule{}, err
		}
		prod.Tag = tag
	}

	if err := sc.expect('='); err != nil {
		return ProductionRule{}, err
	}

	pat, err := sc.parseProdAlternation()
	if err != nil {
		return ProductionRule{}, err
	}
	prod.Pattern = pat

	if err := sc.expect(';'); err != nil {
		return ProductionRule{}, err
	}

	prod.Span.EndLine = sc.line
	prod.Span.EndCol = sc.col
	return prod, nil
}

func (sc *scanner) parseProdAlternation() (*ProdPattern, *exerrors.Diagnostic) {
	first, err := sc.parseProdSequence()
	if err != nil {
		return nil, err
	}

	alts := []*ProdPattern{first}
	for {
		sc.skipSpace()
		if sc.atEnd() || sc.peek() != '|' {
			break
		}
		sc.next()
		alt, err := sc.parseProdSequence()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}

	if len(alts) == 1 {
		return alts[0], nil
	}
	return &ProdPattern{Type: ProdAlternative, Elements: alts}, nil
}

func (sc *scanner) parseProdSequence() (*ProdPattern, *exerrors.Diagnostic) {
	var elems []*ProdPattern
	for {
		sc.skipSpace()
		if sc.atEnd() {
			break
		}
		ch := sc.peek()
		if ch == ';' || ch == '|' || ch == ')' {
			break
		}

		elem, err := sc.parseProdElement()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}

	if len(elems) == 0 {
		return nil, sc.errHeref("expected a pattern")
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return &ProdPattern{Type: ProdSequence, Elements: elems}, nil
}

func (sc *scanner) parseProdElement() (*ProdPattern, *exerrors.Diagnostic) {
	var elem *ProdPattern

	if sc.peek() == '(' {
		sc.next()
		inner, err := sc.parseProdAlternation()
		if err != nil {
			return nil, err
		}
		if err := sc.expect(')'); err != nil {
			return nil, err
		}
		elem = inner
	} else if isNameRune(sc.peek()) {
		name, err := sc.readName()
		if err != nil {
			return nil, err
		}
		elem = &ProdPattern{Type: ProdRuleRef, RuleName: name}
	} else {
		return nil, sc.errHeref("expected a rule name or group, got %q", sc.peek())
	}

	// postfix repetition
	if !sc.atEnd() {
		switch sc.peek() {
		case '*':
			sc.next()
			elem = &ProdPattern{Type: ProdZeroOrMany, Inner: elem}
		case '+':
			sc.next()
			elem = &ProdPattern{Type: ProdOneOrMany, Inner: elem}
		case '?':
			sc.next()
			elem = &ProdPattern{Type: ProdOptional, Inner: elem}
		}
	}

	return elem, nil
}
