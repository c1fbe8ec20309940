package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/internal/exerrors"
)

func Test_Parse_fullGrammar(t *testing.T) {
	assert := assert.New(t)

	src := `
		// arithmetic sums
		token NUM = /[0-9]+/ ;
		token PLUS = "+" ;
		token WORD 2 = /[a-z]+/ ;

		prod sum = NUM (PLUS NUM)* ;
		prod item #tagged = NUM | WORD ;

		entry sum ;
	`

	// execute
	rs, diag := Parse("test.esox", src)

	// assert
	if !assert.Nil(diag) {
		return
	}

	assert.Equal("test.esox", rs.File)
	assert.Equal("sum", rs.Entry.Name)

	if assert.Len(rs.Tokens, 3) {
		assert.Equal("NUM", rs.Tokens[0].Name)
		assert.Equal(0, rs.Tokens[0].Precedence)
		assert.False(rs.Tokens[0].Literal)

		assert.Equal("PLUS", rs.Tokens[1].Name)
		assert.True(rs.Tokens[1].Literal)
		assert.Equal(PatternChar, rs.Tokens[1].Pattern.Type)
		assert.Equal(Single('+'), rs.Tokens[1].Pattern.Char)

		assert.Equal("WORD", rs.Tokens[2].Name)
		assert.Equal(2, rs.Tokens[2].Precedence)
	}

	if assert.Len(rs.Productions, 2) {
		sum := rs.Productions[0]
		assert.Equal("sum", sum.Name)
		assert.Equal(ProdSequence, sum.Pattern.Type)
		if assert.Len(sum.Pattern.Elements, 2) {
			assert.Equal(ProdRuleRef, sum.Pattern.Elements[0].Type)
			assert.Equal("NUM", sum.Pattern.Elements[0].RuleName)
			assert.Equal(ProdZeroOrMany, sum.Pattern.Elements[1].Type)
		}

		item := rs.Productions[1]
		assert.Equal("item", item.Name)
		assert.Equal("tagged", item.Tag)
		assert.Equal(ProdAlternative, item.Pattern.Type)
	}
}

func Test_Parse_spans(t *testing.T) {
	assert := assert.New(t)

	src := "token A = \"a\" ;\nentry thing ;\nprod thing = A ;\n"

	rs, diag := Parse("g.esox", src)
	if !assert.Nil(diag) {
		return
	}

	assert.Equal(1, rs.Tokens[0].Span.StartLine)
	assert.Equal(2, rs.Entry.Span.StartLine)
	assert.Equal(3, rs.Productions[0].Span.StartLine)
}

func Test_Parse_errors(t *testing.T) {
	testCases := []struct {
		name      string
		src       string
		expectCat exerrors.Category
	}{
		{
			name:      "no entry",
			src:       `token A = "a" ; prod thing = A ;`,
			expectCat: exerrors.CatGrammar,
		},
		{
			name:      "multiple entries",
			src:       `token A = "a" ; prod thing = A ; entry thing ; entry thing ;`,
			expectCat: exerrors.CatGrammar,
		},
		{
			name:      "unknown keyword",
			src:       `taken A = "a" ;`,
			expectCat: exerrors.CatGrammar,
		},
		{
			name:      "empty literal",
			src:       `token A = "" ; prod thing = A ; entry thing ;`,
			expectCat: exerrors.CatRegex,
		},
		{
			name:      "unterminated string",
			src:       `token A = "a ;`,
			expectCat: exerrors.CatGrammar,
		},
		{
			name:      "missing semicolon",
			src:       `entry thing`,
			expectCat: exerrors.CatGrammar,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, diag := Parse("g.esox", tc.src)

			if assert.NotNil(diag) {
				assert.Equal(tc.expectCat, diag.Category)
			}
		})
	}
}
