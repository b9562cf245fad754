package value

import "fmt"

// ThunkState is one of the three states a Thunk moves through during its
// lifetime (spec.md §3/§4.4).
type ThunkState byte

const (
	// Unevaluated: the thunk's expression has not been forced yet.
	Unevaluated ThunkState = iota
	// InProgress: Force has been called and is still running — forcing it
	// again (a self-referential binding) is RUNTIME-5.
	InProgress
	// Evaluated: Force has completed; Value/Err hold the memoized result.
	Evaluated
)

// ThunkEval is supplied by pkg/eval: given nothing (the expression and
// environment are captured in the closure at Thunk creation time), it
// evaluates and returns the thunk's value exactly once.
type ThunkEval func() (Value, error)

// Thunk is a memoized, lazily-forced binding. Every name bound by a
// `name = expr` binding, function declaration, or struct declaration in krait source is
// registered as a Thunk rather than evaluated immediately; it is only
// forced the first time something actually reads it.
type Thunk struct {
	state ThunkState
	eval  ThunkEval
	value Value
	err   error
}

// NewThunk wraps an evaluation closure in a fresh, unevaluated Thunk.
func NewThunk(eval ThunkEval) *Thunk {
	return &Thunk{state: Unevaluated, eval: eval}
}

// Resolved returns an already-Evaluated Thunk wrapping a known value, used
// for built-ins and other values that never need lazy evaluation.
func Resolved(v Value) *Thunk {
	return &Thunk{state: Evaluated, value: v}
}

// Force evaluates the thunk if needed and returns its memoized result.
// Forcing a thunk that is already InProgress is a cyclic-binding error
// (RUNTIME-5): krait has no mutation, so the only way to observe a cycle is
// a binding whose own evaluation depends on itself.
func (t *Thunk) Force() (Value, error) {
	switch t.state {
	case Evaluated:
		return t.value, t.err
	case InProgress:
		return nil, &CyclicBindingError{}
	}

	t.state = InProgress
	v, err := t.eval()
	t.state = Evaluated
	t.value, t.err = v, err
	return v, err
}

// State reports the thunk's current lifecycle state, used by diagnostics
// and tests; it never forces evaluation.
func (t *Thunk) State() ThunkState { return t.state }

// CyclicBindingError is RUNTIME-5: a binding was forced while already being
// forced, i.e. it (transitively) refers to itself.
type CyclicBindingError struct{}

func (*CyclicBindingError) Error() string {
	return fmt.Sprintf("infinite recursion detected while evaluating a binding")
}
