package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/esox/internal/util"
)

// EndToken gives the synthetic end-of-input token the drivers append after
// the last real token. Its Terminal index is negative; no grammar terminal
// ever has one.
func EndToken(line, col int) Token {
	return Token{Terminal: -1, Name: "$", Line: line, Col: col}
}

// IsEnd returns whether the token is the synthetic end-of-input marker.
func (t Token) IsEnd() bool {
	return t.Terminal < 0
}

// UnexpectedTokenError is a deterministic parser rejecting its input: the
// token it stopped on and the terminals that would have been accepted there.
type UnexpectedTokenError struct {
	Got      Token
	Expected []string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: unexpected %s; %s",
		e.Got.Line, e.Got.Col, e.Got.Name, expectedPhrase(e.Expected))
}

// UnexpectedTokensError is a GLR parser rejecting its input: every live
// branch failed on the same token, and each had its own expected set.
type UnexpectedTokensError struct {
	Got      Token
	Expected [][]string
}

func (e *UnexpectedTokensError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("syntax error at %d:%d: unexpected %s in all %d interpretations",
		e.Got.Line, e.Got.Col, e.Got.Name, len(e.Expected)))
	for _, exp := range e.Expected {
		sb.WriteString("\n\t")
		sb.WriteString(expectedPhrase(exp))
	}
	return sb.String()
}

func expectedPhrase(expected []string) string {
	if len(expected) == 0 {
		return "expected nothing to follow"
	}

	var sb strings.Builder
	sb.WriteString("expected ")
	sb.WriteString(util.ArticleFor(expected[0], false))
	sb.WriteRune(' ')
	sb.WriteString(util.MakeTextList(expected))
	return sb.String()
}
