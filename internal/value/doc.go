// Package value provides the runtime value model of the krait interpreter.
//
// Every krait value implements the Value interface: Kind reports which
// variant it is, and ToStr renders it the way the to_str built-in field does.
//
// Value kinds:
//   - Int: 64-bit signed integers
//   - Float: 64-bit floating-point numbers
//   - Bool: true and false
//   - String: strings
//   - Tuple: fixed-size ordered sequences of values
//   - Unit: the value of an if with no else, an empty block, and print/println
//   - Function: user-defined closures over their defining Environment
//   - Builtin: functions implemented in Go
//   - StructInstance: values built by a struct constructor, stamped with a
//     per-declaration StructType identity
//   - Module: the named exports produced by import
//   - Library: a handle over a foreign library loaded by import_library
//
// Equality:
//
//	Equal compares ints, floats, bools and strings by value, tuples
//	elementwise, struct instances by StructType identity and then field by
//	field, and every other kind by identity.
//
// Thunks and environments:
//
//	A Thunk holds one binding's value and moves through three states
//	(unevaluated, in progress, done); forcing a thunk that is already in
//	progress reports a cyclic binding. An Environment maps names to thunks
//	and chains to its parent, giving lexical scoping and closures.
package value
