package lex

import (
	"github.com/dekarrin/esox/internal/automaton"
	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/input"
)

// Tokenize runs the resolved DFA over src with maximal munch: from each
// position the scanner follows transitions as far as it can, remembering the
// last accepting state passed, and emits the token for that acceptance before
// resuming after it.
//
// A position from which no progress is possible and no acceptance has been
// seen is a lexical error; scanning stops there with a diagnostic. The file
// name is only used in the diagnostic.
func Tokenize(src string, dfa automaton.DFA[int], alpha Alphabet, rules []input.TokenRule, file string) ([]Token, *exerrors.Diagnostic) {
	runes := []rune(src)

	var tokens []Token

	pos := 0
	line, col := 1, 1
	for pos < len(runes) {
		state := automaton.StateID(0)

		lastAcceptEnd := -1
		lastAcceptRule := -1

		cur := pos
		for cur < len(runes) {
			symIdx, inAlphabet := alpha.IndexOf(runes[cur])
			if !inAlphabet {
				break
			}
			next, ok := dfa.Next(state, symIdx)
			if !ok {
				break
			}
			state = next
			cur++
			if dfa.IsAccepting(state) {
				lastAcceptEnd = cur
				lastAcceptRule = dfa.Payload(state)
			}
		}

		if lastAcceptEnd < 0 {
			excerptEnd := pos + 10
			if excerptEnd > len(runes) {
				excerptEnd = len(runes)
			}
			return tokens, exerrors.New(exerrors.CatGrammar, "lexical error: no token matches at %q", runes[pos]).
				WithSection(file, line, col, string(runes[pos:excerptEnd]), "scanning stopped here")
		}

		lexeme := string(runes[pos:lastAcceptEnd])
		tokens = append(tokens, Token{
			Rule:   lastAcceptRule,
			Name:   rules[lastAcceptRule].Name,
			Lexeme: lexeme,
			Line:   line,
			Col:    col,
		})

		for _, ch := range lexeme {
			if ch == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		pos = lastAcceptEnd
	}

	return tokens, nil
}
