package eval

import (
	"fmt"
	"strings"

	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
	"github.com/kraitlang/krait/pkg/library"
)

// registerBuiltins binds every global built-in (println, print, import,
// import_library, __if_else__, __tuple__, __module__, __struct__) into e's
// top-level environment.
func registerBuiltins(e *Evaluator) {
	g := e.Globals
	g.Bind("println", value.Resolved(value.NewBuiltin("println", builtinPrintln)))
	g.Bind("print", value.Resolved(value.NewBuiltin("print", builtinPrint)))
	g.Bind("__if_else__", value.Resolved(value.NewBuiltin("__if_else__", ifElseBuiltin(e))))
	g.Bind("__tuple__", value.Resolved(value.NewBuiltin("__tuple__", builtinTuple)))
	g.Bind("__module__", value.Resolved(value.NewBuiltin("__module__", builtinModule)))
	g.Bind("__struct__", value.Resolved(value.NewBuiltin("__struct__", builtinStruct(e))))
	g.Bind("import", value.Resolved(value.NewBuiltin("import", importBuiltin(e))))
	g.Bind("import_library", value.Resolved(value.NewBuiltin("import_library", importLibraryBuiltin(e))))
}

func importBuiltin(e *Evaluator) value.BuiltinFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, newError(diag.Runtime1, "import expects exactly 1 argument", "")
		}
		name, ok := args[0].(value.String)
		if !ok {
			return nil, newError(diag.Runtime2, "import's argument must be a string", "")
		}
		m, err := e.modules.Load(string(name))
		if err != nil {
			return nil, translateLibraryError(err)
		}
		return m, nil
	}
}

func importLibraryBuiltin(e *Evaluator) value.BuiltinFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, newError(diag.Runtime1, "import_library expects exactly 1 argument", "")
		}
		name, ok := args[0].(value.String)
		if !ok {
			return nil, newError(diag.Runtime2, "import_library's argument must be a string", "")
		}
		lib, err := e.libraries.Open(string(name))
		if err != nil {
			return nil, translateLibraryError(err)
		}
		return lib, nil
	}
}

func builtinPrintln(args []value.Value) (value.Value, error) {
	parts := make([]interface{}, len(args))
	for i, a := range args {
		parts[i] = a.ToStr()
	}
	fmt.Println(parts...)
	return value.Unit{}, nil
}

func builtinPrint(args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.ToStr()
	}
	fmt.Print(strings.Join(parts, " "))
	return value.Unit{}, nil
}

func builtinTuple(args []value.Value) (value.Value, error) {
	return value.NewTuple(args...), nil
}

// builtinModule implements `__module__(name1, val1, name2, val2, ...)`,
// building a Module value from name/value pairs. Imported files do not go
// through it: their Module values are built directly from their bindings.
func builtinModule(args []value.Value) (value.Value, error) {
	if len(args)%2 != 0 {
		return nil, newError(diag.Runtime1, "__module__ expects an even number of name/value arguments", "")
	}
	m := &value.Module{Exports: make(map[string]value.Value)}
	for i := 0; i < len(args); i += 2 {
		name, ok := args[i].(value.String)
		if !ok {
			return nil, newError(diag.Runtime2, "__module__ names must be strings", "")
		}
		m.Names = append(m.Names, string(name))
		m.Exports[string(name)] = args[i+1]
	}
	return m, nil
}

// lookupBuiltinField resolves `.field` against the per-kind built-in field
// table: operator methods (a.+(b)), to_str, and kind-specific accessors
// like string length. Struct instances check their own fields first (in
// getField), falling back here only for the universally-available members.
func lookupBuiltinField(recv value.Value, name string) (value.Value, bool) {
	switch name {
	case "to_str":
		return value.NewBuiltin("to_str", func(args []value.Value) (value.Value, error) {
			return value.String(recv.ToStr()), nil
		}), true
	case "==", "!=", "+", "-", "*", "/", "%", "<", ">", "<=", ">=", "&&", "||", "!":
		return operatorMethod(recv, name), true
	}

	switch v := recv.(type) {
	case value.Int:
		switch name {
		case "to_character":
			return toCharacterMethod(v), true
		}
	case value.String:
		switch name {
		case "length":
			return value.Int(len([]rune(v))), true
		case "get":
			return stringGetMethod(v), true
		case "slice":
			return stringSliceMethod(v), true
		case "split":
			return stringSplitMethod(v), true
		case "strip":
			return stringStripMethod(v), true
		case "codepoint":
			return stringCodepointMethod(v), true
		}
	case *value.Tuple:
		switch name {
		case "length":
			return value.Int(len(v.Elements)), true
		case "get":
			return tupleGetMethod(v), true
		case "slice":
			return tupleSliceMethod(v), true
		}
	case *value.Module:
		if mv, ok := v.Get(name); ok {
			return mv, true
		}
	case *value.Library:
		switch name {
		case "get":
			return libraryGetMethod(v), true
		}
	}
	return nil, false
}

// operatorMethod builds the built-in behind an operator-named field of recv,
// applying the same operator implementation a BinaryExpr uses. Source
// cannot name such a field after a dot, since a field must be an identifier.
func operatorMethod(recv value.Value, op string) *value.Builtin {
	return value.NewBuiltin(op, func(args []value.Value) (value.Value, error) {
		if op == "-" && len(args) == 0 {
			return applyUnaryMinus(recv)
		}
		if op == "!" && len(args) == 0 {
			b, ok := recv.(value.Bool)
			if !ok {
				return nil, operandKindError(op, recv)
			}
			return !b, nil
		}
		if len(args) != 1 {
			return nil, newError(diag.Runtime1, fmt.Sprintf("operator %q expects exactly 1 argument", op), "")
		}
		return applyBinaryOp(op, recv, args[0])
	})
}

func applyUnaryMinus(v value.Value) (value.Value, error) {
	switch x := v.(type) {
	case value.Int:
		return -x, nil
	case value.Float:
		return -x, nil
	default:
		return nil, operandKindError("-", v)
	}
}

// libraryGetMethod implements `lib.get(symbol)`, resolving and caching a
// foreign symbol through pkg/library.
func libraryGetMethod(lib *value.Library) *value.Builtin {
	return value.NewBuiltin("get", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, newError(diag.Runtime1, "get expects exactly 1 argument", "")
		}
		name, ok := args[0].(value.String)
		if !ok {
			return nil, newError(diag.Runtime2, "get's argument must be a string", "")
		}
		b, err := library.Resolve(lib, string(name))
		if err != nil {
			return nil, translateLibraryError(err)
		}
		return b, nil
	})
}

// indexOutOfBoundsError reports a RUNTIME-14 for the `get` methods, with
// the body "Expected an index in the range [0, N), but got I." (`slice`
// clamps its bounds and never raises it).
func indexOutOfBoundsError(length, got int) error {
	return newError(diag.Runtime14, "Index out of bounds",
		"Expected an index in the range [0, %d), but got %d.", length, got)
}

func toCharacterMethod(n value.Int) *value.Builtin {
	return value.NewBuiltin("to_character", func(args []value.Value) (value.Value, error) {
		if len(args) != 0 {
			return nil, newError(diag.Runtime1, "to_character expects no arguments", "")
		}
		return value.String(string(rune(n))), nil
	})
}

// stringGetMethod implements `s.get(i)`, indexing by code point rather than
// byte; out-of-range (including negative) indices are RUNTIME-14.
func stringGetMethod(s value.String) *value.Builtin {
	return value.NewBuiltin("get", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, newError(diag.Runtime1, "get expects exactly 1 argument", "")
		}
		i, ok := args[0].(value.Int)
		if !ok {
			return nil, newError(diag.Runtime2, "get's argument must be an int", "")
		}
		runes := []rune(s)
		if i < 0 || int(i) >= len(runes) {
			return nil, indexOutOfBoundsError(len(runes), int(i))
		}
		return value.String(string(runes[i])), nil
	})
}

// stringSliceMethod implements `s.slice(lo, hi)`, clamped to [0, length];
// lo may exceed hi, yielding the empty string.
func stringSliceMethod(s value.String) *value.Builtin {
	return value.NewBuiltin("slice", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, newError(diag.Runtime1, "slice expects exactly 2 arguments", "")
		}
		lo, ok := args[0].(value.Int)
		if !ok {
			return nil, newError(diag.Runtime2, "slice's first argument must be an int", "")
		}
		hi, ok := args[1].(value.Int)
		if !ok {
			return nil, newError(diag.Runtime2, "slice's second argument must be an int", "")
		}
		runes := []rune(s)
		l := clampIndex(int(lo), len(runes))
		h := clampIndex(int(hi), len(runes))
		if l >= h {
			return value.String(""), nil
		}
		return value.String(string(runes[l:h])), nil
	})
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

// stringSplitMethod implements `s.split(sep)`: splits on every occurrence of
// sep, returning a tuple of the resulting pieces.
func stringSplitMethod(s value.String) *value.Builtin {
	return value.NewBuiltin("split", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, newError(diag.Runtime1, "split expects exactly 1 argument", "")
		}
		sep, ok := args[0].(value.String)
		if !ok {
			return nil, newError(diag.Runtime2, "split's argument must be a string", "")
		}
		parts := strings.Split(string(s), string(sep))
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.String(p)
		}
		return value.NewTuple(elems...), nil
	})
}

// stringStripMethod implements `s.strip(chars)`: removes any leading or
// trailing run of characters found in chars, from both ends.
func stringStripMethod(s value.String) *value.Builtin {
	return value.NewBuiltin("strip", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, newError(diag.Runtime1, "strip expects exactly 1 argument", "")
		}
		chars, ok := args[0].(value.String)
		if !ok {
			return nil, newError(diag.Runtime2, "strip's argument must be a string", "")
		}
		return value.String(strings.Trim(string(s), string(chars))), nil
	})
}

// stringCodepointMethod implements `s.codepoint()`: s must be exactly one
// code point, else RUNTIME-18.
func stringCodepointMethod(s value.String) *value.Builtin {
	return value.NewBuiltin("codepoint", func(args []value.Value) (value.Value, error) {
		if len(args) != 0 {
			return nil, newError(diag.Runtime1, "codepoint expects no arguments", "")
		}
		runes := []rune(s)
		if len(runes) != 1 {
			return nil, newError(diag.Runtime18, fmt.Sprintf(
				"Expected a single code point, but got %d.", len(runes)), "")
		}
		return value.Int(runes[0]), nil
	})
}

// tupleGetMethod implements `t.get(i)`: non-negative, out-of-range
// (including negative) indices are RUNTIME-14.
func tupleGetMethod(t *value.Tuple) *value.Builtin {
	return value.NewBuiltin("get", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, newError(diag.Runtime1, "get expects exactly 1 argument", "")
		}
		i, ok := args[0].(value.Int)
		if !ok {
			return nil, newError(diag.Runtime2, "get's argument must be an int", "")
		}
		if i < 0 || int(i) >= len(t.Elements) {
			return nil, indexOutOfBoundsError(len(t.Elements), int(i))
		}
		return t.Elements[i], nil
	})
}

// tupleSliceMethod implements `t.slice(lo, hi)`, clamped to [0, length];
// lo may exceed hi, yielding the empty tuple.
func tupleSliceMethod(t *value.Tuple) *value.Builtin {
	return value.NewBuiltin("slice", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, newError(diag.Runtime1, "slice expects exactly 2 arguments", "")
		}
		lo, ok := args[0].(value.Int)
		if !ok {
			return nil, newError(diag.Runtime2, "slice's first argument must be an int", "")
		}
		hi, ok := args[1].(value.Int)
		if !ok {
			return nil, newError(diag.Runtime2, "slice's second argument must be an int", "")
		}
		l := clampIndex(int(lo), len(t.Elements))
		h := clampIndex(int(hi), len(t.Elements))
		if l >= h {
			return value.NewTuple(), nil
		}
		return value.NewTuple(t.Elements[l:h]...), nil
	})
}

// diagCarrier is implemented by pkg/module's moduleError, which already
// carries a fully-formed Diagnostic (headline and body both set, for the
// import-cycle case) — translating it must reuse that Diagnostic verbatim
// rather than re-wrap its rendered text as a fresh headline.
type diagCarrier interface {
	Diagnostic() *diag.Diagnostic
}

type codeCarrier interface {
	Code() diag.Code
	Error() string
}

func translateLibraryError(err error) error {
	if dc, ok := err.(diagCarrier); ok {
		return &EvalError{Diag: dc.Diagnostic()}
	}
	if cc, ok := err.(codeCarrier); ok {
		return newError(cc.Code(), cc.Error(), "")
	}
	return newError(diag.Runtime16, err.Error(), "")
}
