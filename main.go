// Package main implements the krait command-line interface.
//
// krait is a small expression-oriented, dynamically-typed, lazily-evaluated
// tree-walking interpreter. This binary provides three modes of operation:
//
//   - Expression mode (-e): evaluate a single expression given on the command line
//   - File mode (a positional path argument): evaluate a krait source file
//   - REPL mode (no arguments, or -i): an interactive read-eval-print loop
//
// KRAIT_PATH, KRAIT_STARTUP, and KRAIT_STARTUP_EXCLUDE configure the module
// loader and the shared startup environment; see pkg/module and pkg/eval.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
	"github.com/kraitlang/krait/pkg/eval"
	"github.com/kraitlang/krait/pkg/lexer"
	"github.com/kraitlang/krait/pkg/parser"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	infoColor = color.New(color.FgCyan)
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

// run builds and executes the root command, returning the process exit
// status: 0 on success, 1 for any closed-enumeration diagnostic, 2 for an
// unrecoverable host failure (a file that can't be read, or a KRAIT_STARTUP
// path that does not exist).
func run() int {
	var exprFlag string
	var interactive bool

	root := &cobra.Command{
		Use:           "krait [file]",
		Short:         "krait - a lazily-evaluated expression language",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case exprFlag != "":
				return runExpression(exprFlag, ".")
			case interactive || len(args) == 0:
				runREPL()
				return nil
			default:
				return runFile(args[0])
			}
		},
	}
	root.Flags().StringVarP(&exprFlag, "eval", "e", "", "evaluate an expression")
	root.Flags().BoolVarP(&interactive, "interactive", "i", false, "start an interactive REPL")

	if err := root.Execute(); err != nil {
		return reportError(err)
	}
	return 0
}

// newEvaluator builds an Evaluator with its library search directory and
// KRAIT_STARTUP file (if any) wired in, ready to evaluate a file rooted at
// baseDir.
func newEvaluator(baseDir string) (*eval.Evaluator, error) {
	e := eval.New()
	e.SetLibraryBaseDir(baseDir)

	if startup := os.Getenv("KRAIT_STARTUP"); startup != "" {
		if _, err := os.Stat(startup); err != nil {
			return nil, &hostError{err}
		}
		if err := e.LoadStartup(startup, os.Getenv("KRAIT_STARTUP_EXCLUDE")); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// runExpression evaluates a single expression and prints its trailing value.
func runExpression(expr, baseDir string) error {
	e, err := newEvaluator(baseDir)
	if err != nil {
		return err
	}
	result, err := evalSource(e, expr, "<expression>")
	if err != nil {
		return err
	}
	fmt.Println(result.ToStr())
	return nil
}

// runFile reads filename and evaluates it as a standalone program, using its
// containing directory as the base for import_library resolution.
func runFile(filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return &hostError{err}
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		return &hostError{err}
	}
	e, err := newEvaluator(filepath.Dir(abs))
	if err != nil {
		return err
	}
	_, err = evalSource(e, string(src), abs)
	return err
}

// evalSource parses and evaluates one program's text, surfacing parse
// diagnostics before ever reaching the evaluator.
func evalSource(e *eval.Evaluator, src, path string) (value.Value, error) {
	lx := lexer.New(src)
	p := parser.New(lx, src)
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		return nil, &parseErrors{p.Errors().Diagnostics()}
	}
	v, err := e.EvalProgram(prog, path)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// runREPL starts an interactive loop, evaluating each line as its own
// program with one shared evaluator. Each line gets a fresh top-level
// scope, so bindings made on one line are not visible on later lines.
func runREPL() {
	infoColor.Println("krait " + version + " -- :quit to exit")

	e, err := newEvaluator(".")
	if err != nil {
		errColor.Fprintln(os.Stderr, renderError(err))
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("krait> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return
		}
		if line == ":help" || line == ":h" {
			fmt.Println("  :help, :h    show this help")
			fmt.Println("  :quit, :q    exit the REPL")
			continue
		}

		result, err := evalSource(e, line, "<repl>")
		if err != nil {
			errColor.Fprintln(os.Stderr, renderError(err))
			continue
		}
		fmt.Println(result.ToStr())
	}
}

// parseErrors wraps the diagnostics a failed parse accumulated so the CLI's
// error path can render every one of them, not just the first.
type parseErrors struct{ diags []*diag.Diagnostic }

func (p *parseErrors) Error() string { return p.diags[0].Error() }

// hostError marks an error as outside the closed diagnostic enumeration
// (file I/O, a malformed KRAIT_STARTUP path): exit code 2, not 1.
type hostError struct{ err error }

func (h *hostError) Error() string { return h.err.Error() }
func (h *hostError) Unwrap() error { return h.err }

// diagCarrier is implemented by error types that carry a diag.Diagnostic
// (pkg/module's internal error type), letting the CLI render it whichever
// package raised the error; eval.EvalError is handled by its own case.
type diagCarrier interface {
	Diagnostic() *diag.Diagnostic
}

func renderDiagnostics(diags []*diag.Diagnostic, useColor bool) string {
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Render(useColor))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderError(err error) string {
	useColor := color.NoColor == false
	switch e := err.(type) {
	case *parseErrors:
		return renderDiagnostics(e.diags, useColor)
	case *parser.ParseErrors:
		return renderDiagnostics(e.Diagnostics(), useColor)
	case *eval.EvalError:
		return e.Diag.Render(useColor)
	default:
		if dc, ok := err.(diagCarrier); ok {
			return dc.Diagnostic().Render(useColor)
		}
		return err.Error()
	}
}

// reportError prints err appropriately for its kind and returns the process
// exit status spec.md's diagnostic model requires: 2 for a host failure,
// otherwise 1.
func reportError(err error) int {
	var h *hostError
	if errors.As(err, &h) {
		errColor.Fprintf(os.Stderr, "krait: %v\n", h.err)
		return 2
	}
	errColor.Fprintln(os.Stderr, renderError(err))
	return 1
}
