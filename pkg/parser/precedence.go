package parser

import "github.com/kraitlang/krait/pkg/lexer"

// Precedence levels, lowest to highest, following spec.md §4.2.
const (
	LOWEST int = iota
	OR         // ||
	AND        // &&
	EQUALITY   // == !=
	RELATIONAL // < > <= >=
	ADDITIVE   // + -
	MULTIPLICATIVE
	UNARY
	CALL // f(x), a.b
)

var precedences = map[lexer.TokenType]int{
	lexer.TOKEN_OR:      OR,
	lexer.TOKEN_AND:     AND,
	lexer.TOKEN_EQ:      EQUALITY,
	lexer.TOKEN_NEQ:     EQUALITY,
	lexer.TOKEN_LT:      RELATIONAL,
	lexer.TOKEN_GT:      RELATIONAL,
	lexer.TOKEN_LTE:     RELATIONAL,
	lexer.TOKEN_GTE:     RELATIONAL,
	lexer.TOKEN_PLUS:    ADDITIVE,
	lexer.TOKEN_MINUS:   ADDITIVE,
	lexer.TOKEN_STAR:    MULTIPLICATIVE,
	lexer.TOKEN_SLASH:   MULTIPLICATIVE,
	lexer.TOKEN_PERCENT: MULTIPLICATIVE,
	lexer.TOKEN_LPAREN:  CALL,
	lexer.TOKEN_DOT:     CALL,
}

func precedenceOf(t lexer.TokenType) int {
	if p, ok := precedences[t]; ok {
		return p
	}
	return LOWEST
}
