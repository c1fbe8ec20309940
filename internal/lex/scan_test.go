package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Tokenize(t *testing.T) {
	src := `
		token NUM = /[0-9]+/ ;
		token PLUS = "+" ;
		prod sum = NUM ;
		entry sum ;
	`
	dfa, alpha, rules := buildResolvedLexer(t, src)

	t.Run("sums", func(t *testing.T) {
		assert := assert.New(t)

		tokens, diag := Tokenize("12+3+4", dfa, alpha, rules, "<test>")

		if !assert.Nil(diag) {
			return
		}
		if assert.Len(tokens, 5) {
			assert.Equal("NUM", tokens[0].Name)
			assert.Equal("12", tokens[0].Lexeme)
			assert.Equal("PLUS", tokens[1].Name)
			assert.Equal("NUM", tokens[2].Name)
			assert.Equal("3", tokens[2].Lexeme)
			assert.Equal("PLUS", tokens[3].Name)
			assert.Equal("4", tokens[4].Lexeme)

			assert.Equal(1, tokens[2].Line)
			assert.Equal(4, tokens[2].Col)
		}
	})

	t.Run("maximal munch", func(t *testing.T) {
		assert := assert.New(t)

		tokens, diag := Tokenize("1234", dfa, alpha, rules, "<test>")

		if assert.Nil(diag) && assert.Len(tokens, 1) {
			assert.Equal("1234", tokens[0].Lexeme)
		}
	})

	t.Run("error position", func(t *testing.T) {
		assert := assert.New(t)

		tokens, diag := Tokenize("12+x", dfa, alpha, rules, "<test>")

		if assert.NotNil(diag) {
			// everything before the bad character was already scanned
			assert.Len(tokens, 2)
			assert.Equal(4, diag.Sections[0].Col)
		}
	})
}

// Tokenize with overlapping literal and longer literal exercises both
// precedence resolution and maximal munch against each other.
func Test_Tokenize_precedence(t *testing.T) {
	src := `
		token A = "a" ;
		token B 1 = "ab" ;
		prod thing = A ;
		entry thing ;
	`
	dfa, alpha, rules := buildResolvedLexer(t, src)

	t.Run("longer match wins", func(t *testing.T) {
		assert := assert.New(t)

		tokens, diag := Tokenize("ab", dfa, alpha, rules, "<test>")

		if assert.Nil(diag) && assert.Len(tokens, 1) {
			assert.Equal("B", tokens[0].Name)
		}
	})

	t.Run("shorter input still scans", func(t *testing.T) {
		assert := assert.New(t)

		tokens, diag := Tokenize("a", dfa, alpha, rules, "<test>")

		if assert.Nil(diag) && assert.Len(tokens, 1) {
			assert.Equal("A", tokens[0].Name)
		}
	})

	t.Run("prefix then error", func(t *testing.T) {
		assert := assert.New(t)

		tokens, diag := Tokenize("ac", dfa, alpha, rules, "<test>")

		if assert.NotNil(diag) {
			if assert.Len(tokens, 1) {
				assert.Equal("A", tokens[0].Name)
			}
		}
	})
}
