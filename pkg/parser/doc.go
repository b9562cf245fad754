// Package parser implements a recursive-descent, precedence-climbing
// parser for krait source.
//
// The parser is the second stage of the krait interpreter pipeline,
// transforming the lexer's token stream into an internal/ast tree.
//
// Architecture:
//
//   - Recursive descent for blocks, control flow, and function/struct
//     declarations
//   - Precedence climbing (a Pratt-style prefix/infix dispatch table) for
//     binary and unary operators
//   - A parse-time symbol table per scope to reject same-scope rebinding
//     (PARSER-5) and other static name errors (PARSER-6/7) before the
//     evaluator ever runs
//
// Tuple disambiguation:
//
//	()        invalid — PARSER-1, unless followed by ':' (a zero-parameter
//	          function literal)
//	(,)       the empty tuple
//	(e)       a parenthesized expression, NOT a tuple
//	(e,)      a one-element tuple
//	(a, b)    a two-element tuple
//
// Assignment (`a = b = expr`) is right-associative and is itself an
// expression, so it can appear nested inside a larger expression.
//
// Every grammar deviation is reported as PARSER-1 with a caret-underlined
// excerpt of the offending token, rendered by pkg/diag.
package parser
