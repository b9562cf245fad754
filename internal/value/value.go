// Package value implements krait's runtime value model: a closed variant of
// int, float, bool, string, tuple, unit, function, built-in function, struct
// instance, module, and library values, plus the thunk and environment types
// that give the evaluator its lazy-per-binding, eager-per-expression
// semantics.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies which variant a Value is.
type Kind byte

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindTuple
	KindUnit
	KindFunction
	KindBuiltin
	KindStruct
	KindModule
	KindLibrary
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	case KindUnit:
		return "unit"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "built-in function"
	case KindStruct:
		return "struct instance"
	case KindModule:
		return "module"
	case KindLibrary:
		return "library"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is implemented by every krait runtime value.
type Value interface {
	Kind() Kind
	// ToStr renders the value per krait's to_str built-in field (never
	// overridable by user struct fields).
	ToStr() string
}

// Int is a krait integer. A 64-bit signed integer matches the teacher's
// representation and every arithmetic scenario tested in spec.md §8.
type Int int64

func (Int) Kind() Kind      { return KindInt }
func (i Int) ToStr() string { return strconv.FormatInt(int64(i), 10) }

// Float is a krait floating-point number.
type Float float64

func (Float) Kind() Kind { return KindFloat }
func (f Float) ToStr() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

// Bool is a krait boolean.
type Bool bool

func (Bool) Kind() Kind      { return KindBool }
func (b Bool) ToStr() string { return strconv.FormatBool(bool(b)) }

// String is a krait string.
type String string

func (String) Kind() Kind      { return KindString }
func (s String) ToStr() string { return string(s) }

// Unit is krait's unit value: the result of an if with no else branch, an
// empty block, and print/println. krait source has no unit literal.
type Unit struct{}

func (Unit) Kind() Kind    { return KindUnit }
func (Unit) ToStr() string { return "()" }

// Tuple is a fixed-size ordered product of values (arity 0 or >=1; one-tuples
// are distinct from their bare element per spec.md's tuple grammar).
type Tuple struct {
	Elements []Value
}

// NewTuple constructs a Tuple, copying its element slice.
func NewTuple(elems ...Value) *Tuple {
	return &Tuple{Elements: append([]Value(nil), elems...)}
}

func (*Tuple) Kind() Kind { return KindTuple }
func (t *Tuple) ToStr() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.ToStr()
	}
	if len(t.Elements) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Function is a user-defined closure: parameter names, an AST body
// (interface{} to avoid an import cycle with internal/ast — the evaluator
// type-asserts it back to *ast.FnExpr's captured body), and the environment
// it closed over at definition time.
type Function struct {
	Params []string
	Body   interface{}
	Env    *Environment
	Name   string // for diagnostics and ToStr only; "" for anonymous fns
}

func (*Function) Kind() Kind { return KindFunction }
func (f *Function) ToStr() string {
	if f.Name != "" {
		return fmt.Sprintf("<function %s>", f.Name)
	}
	return "<function>"
}

// BuiltinFunc is the Go-native implementation behind a Builtin value.
type BuiltinFunc func(args []Value) (Value, error)

// Builtin is a built-in function exposed to krait source, e.g. println,
// import, or a polymorphic operator method like int#+.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

func NewBuiltin(name string, fn BuiltinFunc) *Builtin { return &Builtin{Name: name, Fn: fn} }

func (*Builtin) Kind() Kind                         { return KindBuiltin }
func (b *Builtin) ToStr() string                    { return fmt.Sprintf("<built-in function %s>", b.Name) }
func (b *Builtin) Call(args []Value) (Value, error) { return b.Fn(args) }

// StructType is the shared, per-declaration identity a group of
// StructInstance values are stamped from. Two instances are equal (per the
// `==` built-in field) only if they share a StructType AND their fields
// compare equal; structural-only equality across distinct declarations is
// never permitted, matching the GLOSSARY's definition of struct identity.
type StructType struct {
	ID     uuid.UUID
	Name   string
	Fields []string
}

// NewStructType mints a fresh, unforgeable identity token for one
// `struct` declaration.
func NewStructType(name string, fields []string) *StructType {
	return &StructType{ID: uuid.New(), Name: name, Fields: append([]string(nil), fields...)}
}

// StructInstance is a value produced by calling a struct's constructor.
// Field values are individually-memoized thunks so a field computed once
// from the field_factory is never recomputed (spec.md §4.4).
type StructInstance struct {
	Type   *StructType
	Fields map[string]*Thunk
	Extra  map[string]Value // non-overridable extra pairs (e.g. methods)

	// factory backs the generic __struct__(name, ctor, field_factory,
	// extra_pairs) lowering: fields not present in Fields/Extra are
	// resolved through it on first access and memoized per (instance,
	// field) pair in factoryMemo, so a field_factory call never runs twice
	// for the same instance.
	factory     func(self *StructInstance, field string) (Value, bool, error)
	factoryMemo map[string]*factoryResult
}

type factoryResult struct {
	value Value
	found bool
	err   error
}

// WithFieldFactory attaches a field_factory fallback to s and returns s,
// for chaining at the call site.
func (s *StructInstance) WithFieldFactory(f func(self *StructInstance, field string) (Value, bool, error)) *StructInstance {
	s.factory = f
	s.factoryMemo = make(map[string]*factoryResult)
	return s
}

func (*StructInstance) Kind() Kind { return KindStruct }
func (s *StructInstance) ToStr() string {
	parts := make([]string, 0, len(s.Type.Fields))
	for _, name := range s.Type.Fields {
		th := s.Fields[name]
		v, err := th.Force()
		if err != nil {
			parts = append(parts, "<error>")
			continue
		}
		parts = append(parts, v.ToStr())
	}
	return fmt.Sprintf("%s(%s)", s.Type.Name, strings.Join(parts, ", "))
}

// Get resolves a field by name, forcing its thunk. Extra pairs (from
// __struct__'s fourth argument) take precedence over constructor fields,
// except for the reserved to_str/==/!= names which built-in dispatch always
// intercepts first.
func (s *StructInstance) Get(name string) (Value, bool, error) {
	if v, ok := s.Extra[name]; ok {
		return v, true, nil
	}
	if th, ok := s.Fields[name]; ok {
		v, err := th.Force()
		return v, true, err
	}
	if s.factory == nil {
		return nil, false, nil
	}
	if r, ok := s.factoryMemo[name]; ok {
		return r.value, r.found, r.err
	}
	v, found, err := s.factory(s, name)
	s.factoryMemo[name] = &factoryResult{value: v, found: found, err: err}
	return v, found, err
}

// Equals implements struct equality: same StructType identity and every
// field compares equal via the generic Equal helper.
func (s *StructInstance) Equals(other *StructInstance) (bool, error) {
	if s.Type != other.Type {
		return false, nil
	}
	for _, name := range s.Type.Fields {
		av, _, err := s.Get(name)
		if err != nil {
			return false, err
		}
		bv, _, err := other.Get(name)
		if err != nil {
			return false, err
		}
		eq, err := Equal(av, bv)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// Module is the value produced by `import`: an insertion-ordered, read-only
// named collection of bound values plus an opaque identity. The `↳`-arrow
// import-cycle stack is rendered from module paths, not from ID.
type Module struct {
	Path    string
	ID      uuid.UUID
	Names   []string
	Exports map[string]Value
}

func (*Module) Kind() Kind      { return KindModule }
func (m *Module) ToStr() string { return fmt.Sprintf("<module %s>", m.Path) }

func (m *Module) Get(name string) (Value, bool) {
	v, ok := m.Exports[name]
	return v, ok
}

// Library is the value produced by `import_library`: a handle over a
// dynamically loaded foreign library, whose `.get(symbol)` built-in field
// caches resolved native symbols.
type Library struct {
	Path   string
	Handle interface{} // *plugin.Plugin, held opaquely to avoid a cross-package import here
	cache  map[string]*Builtin
}

// NewLibrary constructs a Library value around an opened native handle.
func NewLibrary(path string, handle interface{}) *Library {
	return &Library{Path: path, Handle: handle, cache: make(map[string]*Builtin)}
}

func (*Library) Kind() Kind      { return KindLibrary }
func (l *Library) ToStr() string { return fmt.Sprintf("<library %s>", l.Path) }

// CachedSymbol returns a previously resolved symbol wrapper, if any.
func (l *Library) CachedSymbol(name string) (*Builtin, bool) {
	b, ok := l.cache[name]
	return b, ok
}

// CacheSymbol records a resolved symbol wrapper for future .get calls.
func (l *Library) CacheSymbol(name string, b *Builtin) { l.cache[name] = b }

// Equal implements the host-level notion of == used by the generic
// comparison built-ins (int, float, bool, and string compare by value;
// tuples compare elementwise; structs defer to StructInstance.Equals;
// functions, built-ins, modules, and libraries compare by identity, so a
// value is equal to itself but never to a distinct value of the same shape).
func Equal(a, b Value) (bool, error) {
	if a.Kind() != b.Kind() {
		return false, nil
	}
	switch av := a.(type) {
	case Int:
		return av == b.(Int), nil
	case Float:
		return av == b.(Float), nil
	case Bool:
		return av == b.(Bool), nil
	case String:
		return av == b.(String), nil
	case Unit:
		return true, nil
	case *Tuple:
		bv := b.(*Tuple)
		if len(av.Elements) != len(bv.Elements) {
			return false, nil
		}
		for i := range av.Elements {
			eq, err := Equal(av.Elements[i], bv.Elements[i])
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case *StructInstance:
		return av.Equals(b.(*StructInstance))
	default:
		return a == b, nil
	}
}
