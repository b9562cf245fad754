package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTypes(t *testing.T, l *Lexer, n int) []TokenType {
	t.Helper()
	types := make([]TokenType, 0, n)
	for i := 0; i < n; i++ {
		types = append(types, l.NextToken().Type)
	}
	return types
}

func TestNextTokenOperators(t *testing.T) {
	l := New("+ - * / % == != < <= > >= && || ! . = , : ( )")

	expected := []TokenType{
		TOKEN_PLUS, TOKEN_MINUS, TOKEN_STAR, TOKEN_SLASH, TOKEN_PERCENT,
		TOKEN_EQ, TOKEN_NEQ, TOKEN_LT, TOKEN_LTE, TOKEN_GT, TOKEN_GTE,
		TOKEN_AND, TOKEN_OR, TOKEN_BANG, TOKEN_DOT, TOKEN_ASSIGN,
		TOKEN_COMMA, TOKEN_COLON, TOKEN_LPAREN, TOKEN_RPAREN,
	}
	assert.Equal(t, expected, collectTypes(t, l, len(expected)))
}

func TestNextTokenKeywordsAndTrailingUnderscoreEscape(t *testing.T) {
	l := New("if else fn struct true false if_ else_ fn_")

	tests := []struct {
		typ     TokenType
		literal string
	}{
		{TOKEN_IF, "if"},
		{TOKEN_ELSE, "else"},
		{TOKEN_FN, "fn"},
		{TOKEN_STRUCT, "struct"},
		{TOKEN_TRUE, "true"},
		{TOKEN_FALSE, "false"},
		{TOKEN_IDENT, "if_"},
		{TOKEN_IDENT, "else_"},
		{TOKEN_IDENT, "fn_"},
	}
	for i, tt := range tests {
		tok := l.NextToken()
		assert.Equalf(t, tt.typ, tok.Type, "token %d", i)
		assert.Equalf(t, tt.literal, tok.Literal, "token %d", i)
	}
}

func TestNextTokenNumericLiterals(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"42", TOKEN_INT},
		{"3.14", TOKEN_FLOAT},
		{".5", TOKEN_FLOAT},
		{"1.", TOKEN_FLOAT},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		assert.Equalf(t, tt.typ, tok.Type, "input %q", tt.input)
		assert.Equalf(t, tt.input, tok.Literal, "input %q", tt.input)
	}
}

func TestNextTokenIntLiteralFollowedByFieldAccess(t *testing.T) {
	// "1.to_character()" is int 1, field access "to_character", not a
	// malformed float literal.
	l := New("1.to_character()")
	expected := []TokenType{TOKEN_INT, TOKEN_DOT, TOKEN_IDENT, TOKEN_LPAREN, TOKEN_RPAREN}
	assert.Equal(t, expected, collectTypes(t, l, len(expected)))

	lits := New("1.to_character()")
	tok := lits.NextToken()
	assert.Equal(t, "1", tok.Literal)
}

func TestNextTokenString(t *testing.T) {
	l := New(`"hello\nworld"`)
	tok := l.NextToken()
	require.Equal(t, TOKEN_STRING, tok.Type)
	assert.Equal(t, "hello\nworld", tok.Literal)
}

func TestIndentationProducesLayoutTokens(t *testing.T) {
	input := "fn f():\n\tx = 1\n\tx\n"
	l := New(input)

	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == TOKEN_EOF {
			break
		}
	}

	require.Contains(t, types, TOKEN_INDENT)
	require.Contains(t, types, TOKEN_DEDENT)

	indentAt := indexOf(types, TOKEN_INDENT)
	dedentAt := indexOf(types, TOKEN_DEDENT)
	assert.Less(t, indentAt, dedentAt, "INDENT must precede its matching DEDENT")
}

func TestParenSuspendsLayout(t *testing.T) {
	// A newline inside unbalanced parens must not emit NEWLINE/INDENT/DEDENT.
	input := "(1,\n\t2,\n\t3)"
	l := New(input)

	for {
		tok := l.NextToken()
		if tok.Type == TOKEN_EOF {
			break
		}
		require.NotEqual(t, TOKEN_NEWLINE, tok.Type)
		require.NotEqual(t, TOKEN_INDENT, tok.Type)
		require.NotEqual(t, TOKEN_DEDENT, tok.Type)
	}
}

func indexOf(types []TokenType, target TokenType) int {
	for i, typ := range types {
		if typ == target {
			return i
		}
	}
	return -1
}
