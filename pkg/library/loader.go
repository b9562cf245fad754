// Package library implements krait's foreign-library loader: resolving
// `import_library(path)` to a dynamically loaded Go plugin and its exported
// symbols. There is no third-party dlopen/FFI binding anywhere in krait's
// dependency pack, so this loader is built on the standard library's
// plugin package (see DESIGN.md).
package library

import (
	"fmt"
	"path/filepath"
	"plugin"
	"reflect"
	"runtime"
	"sync"

	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

// Loader caches opened plugin handles by resolved path so repeated
// import_library calls for the same foreign library don't reopen it
// (RUNTIME-15/16/17 all reference the same cached handle).
type Loader struct {
	mu      sync.Mutex
	baseDir string
	plugins map[string]*plugin.Plugin
}

// New creates an empty Loader resolving libraries relative to baseDir (the
// entry file's directory).
func New() *Loader {
	return &Loader{baseDir: ".", plugins: make(map[string]*plugin.Plugin)}
}

// SetBaseDir changes the directory import_library resolves names against.
func (l *Loader) SetBaseDir(dir string) { l.baseDir = dir }

// platformExt is the native shared-library extension plugin.Open expects on
// the current platform.
func platformExt() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// resolvePath implements `<dir>/<name>_/<name>.<platform-ext>`.
func (l *Loader) resolvePath(name string) string {
	return filepath.Join(l.baseDir, name+"_", name+platformExt())
}

// Open resolves name to a *value.Library, opening the underlying plugin at
// most once per distinct resolved path.
func (l *Loader) Open(name string) (*value.Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.resolvePath(name)
	p, ok := l.plugins[path]
	if !ok {
		var err error
		p, err = plugin.Open(path)
		if err != nil {
			return nil, &loadError{code: diag.Runtime15, msg: fmt.Sprintf("foreign library %q not found: %v", name, err)}
		}
		l.plugins[path] = p
	}
	return value.NewLibrary(path, p), nil
}

// Resolve looks up symbol in lib, wrapping it as a value.Builtin callable
// from krait source. Resolved symbols are cached on the Library itself so
// repeated `.get` calls are free after the first.
func Resolve(lib *value.Library, symbol string) (*value.Builtin, error) {
	if b, ok := lib.CachedSymbol(symbol); ok {
		return b, nil
	}
	p, ok := lib.Handle.(*plugin.Plugin)
	if !ok {
		return nil, &loadError{code: diag.Runtime16, msg: fmt.Sprintf("library %q has no native handle", lib.Path)}
	}
	sym, err := p.Lookup(symbol)
	if err != nil {
		return nil, &loadError{code: diag.Runtime17, msg: fmt.Sprintf("symbol %q not found in %q: %v", symbol, lib.Path, err)}
	}
	fn, err := wrapSymbol(symbol, sym)
	if err != nil {
		return nil, err
	}
	lib.CacheSymbol(symbol, fn)
	return fn, nil
}

// wrapSymbol adapts an exported Go function of the form
// `func(...interface{}) (interface{}, error)` into a value.Builtin. Any
// other signature is a RUNTIME-16 (foreign symbol is not a usable value).
func wrapSymbol(name string, sym plugin.Symbol) (*value.Builtin, error) {
	fn, ok := sym.(func(...interface{}) (interface{}, error))
	if !ok {
		return nil, &loadError{code: diag.Runtime16, msg: fmt.Sprintf(
			"symbol %q does not match the expected func(...interface{}) (interface{}, error) signature", name)}
	}
	return value.NewBuiltin(name, func(args []value.Value) (value.Value, error) {
		in := make([]interface{}, len(args))
		for i, a := range args {
			in[i] = nativeOf(a)
		}
		out, err := fn(in...)
		if err != nil {
			return nil, &loadError{code: diag.Runtime16, msg: fmt.Sprintf("native call to %q failed: %v", name, err)}
		}
		return valueOf(out)
	}), nil
}

func nativeOf(v value.Value) interface{} {
	switch x := v.(type) {
	case value.Int:
		return int64(x)
	case value.Float:
		return float64(x)
	case value.Bool:
		return bool(x)
	case value.String:
		return string(x)
	default:
		return x
	}
}

func valueOf(out interface{}) (value.Value, error) {
	switch x := reflect.ValueOf(out); {
	case out == nil:
		return value.Unit{}, nil
	case x.Kind() == reflect.Int || x.Kind() == reflect.Int64:
		return value.Int(x.Int()), nil
	case x.Kind() == reflect.Float32 || x.Kind() == reflect.Float64:
		return value.Float(x.Float()), nil
	case x.Kind() == reflect.Bool:
		return value.Bool(x.Bool()), nil
	case x.Kind() == reflect.String:
		return value.String(x.String()), nil
	default:
		return nil, &loadError{code: diag.Runtime17, msg: fmt.Sprintf("unsupported native return type %T", out)}
	}
}

// loadError carries a diag.Code through pkg/library's plain-error returns
// so the evaluator/CLI can recover a diag.Diagnostic without importing
// plugin-specific types.
type loadError struct {
	code diag.Code
	msg  string
}

func (e *loadError) Error() string { return e.msg }

// Code returns the diag.Code the error should render as.
func (e *loadError) Code() diag.Code { return e.code }
