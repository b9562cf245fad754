// Package diag implements krait's closed diagnostic enumeration: numbered,
// headlined parser and runtime errors, with caret-underlined source
// excerpts and colorized terminal output.
package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Code is one member of the closed PARSER-*/RUNTIME-* enumeration.
type Code string

const (
	Parser1 Code = "PARSER-1" // unexpected token / grammar deviation
	Parser2 Code = "PARSER-2" // invalid numeric literal
	Parser3 Code = "PARSER-3" // invalid escape sequence
	Parser4 Code = "PARSER-4" // unterminated string literal
	Parser5 Code = "PARSER-5" // name already bound in this scope
	Parser6 Code = "PARSER-6" // unknown identifier, statically detectable
	Parser7 Code = "PARSER-7" // unknown field, statically detectable

	Runtime1  Code = "RUNTIME-1"  // arity mismatch
	Runtime2  Code = "RUNTIME-2"  // type error (wrong operand/argument kind)
	Runtime5  Code = "RUNTIME-5"  // cyclic binding
	Runtime7  Code = "RUNTIME-7"  // division by zero
	Runtime9  Code = "RUNTIME-9"  // unknown field
	Runtime13 Code = "RUNTIME-13" // module not found, or an import cycle
	Runtime14 Code = "RUNTIME-14" // index out of bounds
	Runtime15 Code = "RUNTIME-15" // foreign library not found
	Runtime16 Code = "RUNTIME-16" // foreign symbol is not a usable value
	Runtime17 Code = "RUNTIME-17" // foreign symbol not present
	Runtime18 Code = "RUNTIME-18" // codepoint domain error
)

// ExitCode maps a Code to the process exit status spec.md §6 requires:
// 1 for any closed-enumeration error, 2 is reserved for unrecoverable host
// failure (I/O errors, a missing KRAIT_STARTUP file) and is never
// produced by a Code value itself.
func ExitCode(Code) int { return 1 }

// Excerpt is the source context a parser diagnostic renders: the single
// source line containing the error, its 1-based line number, and the
// 0-based column to place the caret under.
type Excerpt struct {
	LineNum int
	Line    string
	Column  int
	Length  int // number of characters to underline, minimum 1
}

// Diagnostic is one fully-formed error: a code, a one-line headline, an
// optional multi-line body, and an optional source excerpt (parser errors
// always have one; most runtime errors don't since there's no single
// token to blame).
type Diagnostic struct {
	Code     Code
	Headline string
	Body     string
	Excerpt  *Excerpt
}

func (d *Diagnostic) Error() string { return d.Render(false) }

// Render formats the diagnostic exactly as spec.md's §4.2 "Parser
// diagnostic" example shows it:
//
//	Error (<code>): <headline>
//
//	<body, if any>
//	  <line>  │ <source line>
//	          │ <caret underline>
//
// When color is true (stdout/stderr is a TTY and color hasn't been
// disabled), the code and headline are rendered in red and the caret line
// is dimmed, following akashmaji946-go-mix's red/yellow/cyan diagnostic
// convention.
func (d *Diagnostic) Render(useColor bool) string {
	var b strings.Builder

	headline := fmt.Sprintf("Error (%s): %s", d.Code, d.Headline)
	if useColor {
		headline = color.New(color.FgRed, color.Bold).Sprint(headline)
	}
	b.WriteString(headline)
	b.WriteByte('\n')

	if d.Body != "" || d.Excerpt != nil {
		b.WriteByte('\n')
	}

	if d.Body != "" {
		b.WriteString(d.Body)
		b.WriteByte('\n')
	}

	if d.Excerpt != nil {
		gutter := fmt.Sprintf("  %d  │ ", d.Excerpt.LineNum)
		b.WriteString(gutter)
		b.WriteString(d.Excerpt.Line)
		b.WriteByte('\n')

		length := d.Excerpt.Length
		if length < 1 {
			length = 1
		}
		pad := strings.Repeat(" ", utf8.RuneCountInString(gutter)-2) + "│ "
		caretLine := pad + strings.Repeat(" ", d.Excerpt.Column) + strings.Repeat("^", length)
		if useColor {
			caretLine = color.New(color.Faint).Sprint(caretLine)
		}
		b.WriteString(caretLine)
		b.WriteByte('\n')
	}

	return b.String()
}

// New constructs a Diagnostic with no source excerpt (typical for runtime
// errors that aren't anchored to a single token).
func New(code Code, headline string, bodyFormat string, args ...interface{}) *Diagnostic {
	body := ""
	if bodyFormat != "" {
		body = fmt.Sprintf(bodyFormat, args...)
	}
	return &Diagnostic{Code: code, Headline: headline, Body: body}
}

// WithExcerpt attaches a source excerpt to a Diagnostic and returns it,
// for chaining at the call site.
func (d *Diagnostic) WithExcerpt(lineNum int, line string, column, length int) *Diagnostic {
	d.Excerpt = &Excerpt{LineNum: lineNum, Line: line, Column: column, Length: length}
	return d
}

// LineAndColumn resolves a byte offset within src to a 1-based line number
// and 0-based column, and returns the full text of that line — the shared
// helper every diagnostic site uses to build an Excerpt from an
// ast.Span/lexer.Token offset.
func LineAndColumn(src string, offset int) (line int, column int, lineText string) {
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	column = offset - lineStart

	lineEnd := len(src)
	if idx := strings.IndexByte(src[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	lineText = src[lineStart:lineEnd]
	return
}

// ImportStack renders a module import cycle as
//
//	path1
//	↳ path2
//	↳ path3
//
// with the last entry being the module that could not be imported, matching
// original_source/tests/test_module_loader.py::test_import_cycles.
func ImportStack(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(paths[0])
	for _, p := range paths[1:] {
		b.WriteByte('\n')
		b.WriteString("↳ ")
		b.WriteString(p)
	}
	return b.String()
}
