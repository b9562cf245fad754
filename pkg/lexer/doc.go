// Package lexer provides lexical analysis for krait source.
//
// The lexer is the first stage of the krait interpreter pipeline,
// responsible for converting raw source text into a stream of tokens that
// can be consumed by the parser.
//
// Key Features:
//
// Token Recognition:
//   - Keywords: if, else, fn, struct, true, false
//   - Identifiers: letters/digits/underscore, with a trailing underscore
//     escaping an otherwise keyword-shaped name (if_, struct_, ...)
//   - Literals: integers (D+), floats (D+.D* or .D+), double-quoted strings
//   - Operators: = + - * / % == != < > <= >= && || ! .
//   - Delimiters: ( ) { } , :
//
// Layout:
//   - NEWLINE/INDENT/DEDENT tokens are synthesized from a stack of
//     indentation widths, following the offside rule
//   - Layout tracking is suspended while inside unbalanced parentheses, so
//     a call's arguments can be wrapped across lines freely
//   - Blank and comment-only lines never produce an INDENT or DEDENT token
//
// Comment Handling:
//   - Single-line comments starting with '#', consumed to end of line
//
// Position Tracking:
//   - Every token carries the [Start, End) byte span it was scanned from,
//     which pkg/diag resolves to a line/column/excerpt on demand
//
// String Processing:
//   - Double-quoted strings with \n \t \" \\ escapes
//
// The lexer follows the maximal-munch principle for operators, so
// multi-character operators like '==' and '<=' are never split into two
// single-character tokens.
package lexer
