package value

// Environment is a persistent, parent-linked lexical scope. Names are kept
// in insertion order alongside the lookup map so that diagnostics and
// __module__/__tuple__ lowering can enumerate bindings the way they were
// declared, matching spec.md §3's "insertion-ordered name→thunk map".
type Environment struct {
	names    []string
	bindings map[string]*Thunk
	parent   *Environment
}

// NewEnvironment creates a fresh, empty top-level environment.
func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[string]*Thunk)}
}

// Extend creates a child scope. Child bindings shadow parent bindings with
// the same name; rebinding a name already declared in the SAME scope is
// rejected at parse time (PARSER-5), not here.
func (e *Environment) Extend() *Environment {
	return &Environment{bindings: make(map[string]*Thunk), parent: e}
}

// Bind registers name in this scope, in insertion order. It does not check
// for same-scope collisions: that is the parser's job (PARSER-5).
func (e *Environment) Bind(name string, th *Thunk) {
	if _, exists := e.bindings[name]; !exists {
		e.names = append(e.names, name)
	}
	e.bindings[name] = th
}

// Lookup walks the scope chain outward, returning the nearest binding.
func (e *Environment) Lookup(name string) (*Thunk, bool) {
	for env := e; env != nil; env = env.parent {
		if th, ok := env.bindings[name]; ok {
			return th, true
		}
	}
	return nil, false
}

// Names returns this scope's own bindings in declaration order (not
// including parent scopes), used to build __module__ values.
func (e *Environment) Names() []string {
	return append([]string(nil), e.names...)
}
