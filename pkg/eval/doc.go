// Package eval implements krait's tree-walking evaluator.
//
// The evaluator takes an internal/ast tree from pkg/parser and computes its
// runtime value, implementing:
//
//   - Lazy-per-binding, eager-per-expression evaluation: every `name = expr` binding,
//     fn declaration, and struct declaration becomes a thunk (registered,
//     not forced, in textual order within its scope); function call
//     arguments are evaluated eagerly, left to right, before dispatch
//   - Operator-as-method dispatch: `a + b` is sugar for `a.+(b)`, resolved
//     through each value kind's built-in field table
//   - Direct evaluation of surface syntax: `if`, tuples, and `struct` are
//     evaluated by their own cases, not by calling the
//     `__if_else__`/`__tuple__`/`__struct__` built-ins
//   - Cyclic-binding detection (RUNTIME-5) via the three-state thunk in
//     internal/value
//
// File layout, mirroring the separation of concerns in the pipeline:
//   - evaluator.go: core dispatcher and block/thunk registration
//   - operators.go: strongly-typed binary/unary operator methods — krait
//     never auto-coerces int to float, unlike the Nix dialect this
//     evaluator's structure was adapted from
//   - control_flow.go: if evaluation (block scoping lives in evaluator.go)
//   - functions.go: function/struct application and field access
//   - builtins.go: the global built-in registry and per-kind field tables
//   - struct.go: the __struct__ lowering and field-factory memoization
package eval
