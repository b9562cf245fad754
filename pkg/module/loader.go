// Package module implements krait's module loader: resolving `import(name)`
// against KRAIT_PATH, caching resolved modules by absolute file path, and
// detecting import cycles with an in-progress stack.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

// Eval is supplied by pkg/eval (or the CLI) so this package never needs to
// import the evaluator directly: it parses and evaluates one resolved
// source file's contents into a Module value.
type Eval func(src string, path string) (*value.Value, error)

// Loader resolves, loads, and caches krait modules, keyed by the resolved
// absolute file path rather than the dotted/relative import name — two
// different import spellings of the same file share one cache entry.
type Loader struct {
	mu       sync.Mutex
	searchPath []string
	cache    map[string]*value.Module
	stack    []string // in-progress resolved paths, for cycle rendering
	eval     Eval
}

// New creates a Loader whose search path comes from the KRAIT_PATH
// environment variable (colon-separated, like PATH).
func New(eval Eval) *Loader {
	var dirs []string
	if raw := os.Getenv("KRAIT_PATH"); raw != "" {
		dirs = strings.Split(raw, string(os.PathListSeparator))
	}
	return &Loader{searchPath: dirs, cache: make(map[string]*value.Module), eval: eval}
}

// Resolve locates name (a dotted path, e.g. "foo.bar", each segment
// translated to a directory separator) on the search path, probing
// "<dir>/<path>.krait" for every configured directory and stopping at the
// first match. A directory that exists at that path without an
// accompanying ".krait" file is not a module.
func (l *Loader) Resolve(name string) (string, error) {
	rel := filepath.Join(strings.Split(name, ".")...) + ".krait"

	for _, dir := range append([]string{"."}, l.searchPath...) {
		full := filepath.Join(dir, rel)
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(full)
			if err != nil {
				return "", err
			}
			return abs, nil
		}
	}
	return "", &notFoundError{name: name}
}

// Load resolves and evaluates name, returning its cached Module on repeat
// imports and detecting cycles via the in-progress stack.
func (l *Loader) Load(name string) (*value.Module, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, newModuleError(diag.Runtime13, fmt.Sprintf("The module %q wasn't found", name), "")
	}

	l.mu.Lock()
	if m, ok := l.cache[path]; ok {
		l.mu.Unlock()
		return m, nil
	}
	for _, inProgress := range l.stack {
		if inProgress == path {
			stack := append(append([]string(nil), l.stack...), path)
			l.mu.Unlock()
			body := fmt.Sprintf("%q couldn't be imported. See the following import stack.\n\n%s",
				path, diag.ImportStack(stack))
			return nil, newModuleError(diag.Runtime13, "Encountered an import cycle", body)
		}
	}
	l.stack = append(l.stack, path)
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.stack = l.stack[:len(l.stack)-1]
		l.mu.Unlock()
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, newModuleError(diag.Runtime13, fmt.Sprintf("could not read module %q: %v", name, err), "")
	}

	result, err := l.eval(string(src), path)
	if err != nil {
		return nil, err
	}
	m, ok := (*result).(*value.Module)
	if !ok {
		m = &value.Module{Path: path, ID: uuid.New(), Exports: make(map[string]value.Value)}
	}
	m.Path = path
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	l.mu.Lock()
	l.cache[path] = m
	l.mu.Unlock()
	return m, nil
}

type notFoundError struct{ name string }

func (e *notFoundError) Error() string { return fmt.Sprintf("module %q not found", e.name) }

func newModuleError(code diag.Code, headline, body string) error {
	return &moduleError{diag.New(code, headline, "%s", body)}
}

type moduleError struct{ d *diag.Diagnostic }

func (e *moduleError) Error() string    { return e.d.Error() }
func (e *moduleError) Code() diag.Code  { return e.d.Code }
func (e *moduleError) Diagnostic() *diag.Diagnostic { return e.d }
