// Package ast defines the tagged-variant abstract syntax tree produced by
// pkg/parser and consumed by pkg/eval.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Span is a half-open byte range [Start, End) into the source buffer the
// node was parsed from. Every node carries one, so diagnostics can always
// render a caret-underlined excerpt.
type Span struct {
	Start int
	End   int
}

// Node is implemented by every AST node.
type Node interface {
	String() string
	Span() Span
}

// Expr is implemented by every expression node. krait has no statement
// grammar: everything but top-level bindings is an expression.
type Expr interface {
	Node
	exprNode()
}

type Base struct {
	span Span
}

func (n Base) Span() Span { return n.span }

// At constructs a Base spanning [start, end).
func At(start, end int) Base { return Base{span: Span{Start: start, End: end}} }

// ----------------------------------------------------------------------
// Literals
// ----------------------------------------------------------------------

// IntExpr is an integer literal, e.g. 42.
type IntExpr struct {
	Base
	Value int64
}

func (e *IntExpr) String() string { return strconv.FormatInt(e.Value, 10) }
func (e *IntExpr) exprNode()      {}

// FloatExpr is a floating-point literal, e.g. 3.14 or .5.
type FloatExpr struct {
	Base
	Value float64
}

func (e *FloatExpr) String() string { return strconv.FormatFloat(e.Value, 'g', -1, 64) }
func (e *FloatExpr) exprNode()      {}

// BoolExpr is a boolean literal.
type BoolExpr struct {
	Base
	Value bool
}

func (e *BoolExpr) String() string { return strconv.FormatBool(e.Value) }
func (e *BoolExpr) exprNode()      {}

// UnitExpr is the placeholder node the parser returns after a PARSER-1 error
// (including a bare `()`); krait has no unit literal.
type UnitExpr struct {
	Base
}

func (e *UnitExpr) String() string { return "()" }
func (e *UnitExpr) exprNode()      {}

// StringExpr is a double-quoted string literal with escapes already resolved
// by the lexer.
type StringExpr struct {
	Base
	Value string
}

func (e *StringExpr) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *StringExpr) exprNode()      {}

// IdentExpr is a variable reference.
type IdentExpr struct {
	Base
	Name string
}

func (e *IdentExpr) String() string { return e.Name }
func (e *IdentExpr) exprNode()      {}

// ----------------------------------------------------------------------
// Compound expressions
// ----------------------------------------------------------------------

// TupleExpr is a parenthesized tuple literal: `(,)` has 0 elements, a
// one-tuple `(e,)` has 1, and `(a, b, ...)` has 2 or more.
type TupleExpr struct {
	Base
	Elements []Expr
}

func (e *TupleExpr) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (e *TupleExpr) exprNode() {}

// BlockExpr is a sequence of statements (bindings, declarations, and plain
// expressions) evaluated in a single shared scope, yielding the value of its
// trailing expression.
type BlockExpr struct {
	Base
	Statements []Statement
}

func (e *BlockExpr) String() string {
	parts := make([]string, len(e.Statements))
	for i, s := range e.Statements {
		parts[i] = s.String()
	}
	return "{\n" + strings.Join(parts, "\n") + "\n}"
}
func (e *BlockExpr) exprNode() {}

// Statement is one element of a BlockExpr's body.
type Statement interface {
	Node
	stmtNode()
}

// BindingStmt is a `name = expr` lazy binding, including right-associative
// chains (`a = b = expr` parses as one BindingStmt whose Value is itself an
// AssignExpr chain).
type BindingStmt struct {
	Base
	Name  string
	Value Expr
}

func (s *BindingStmt) String() string { return fmt.Sprintf("%s = %s", s.Name, s.Value) }
func (s *BindingStmt) stmtNode()      {}

// FnDeclStmt is a `fn name(params): body` declaration, sugar for a binding
// whose value is a FnExpr.
type FnDeclStmt struct {
	Base
	Name string
	Fn   *FnExpr
}

func (s *FnDeclStmt) String() string { return fmt.Sprintf("fn %s%s", s.Name, s.Fn.String()) }
func (s *FnDeclStmt) stmtNode()      {}

// StructDeclStmt is a `struct Name(self, fields): body` declaration; Fields
// excludes self.
type StructDeclStmt struct {
	Base
	Name   string
	Fields []string
	Body   *BlockExpr // extra members, evaluated with self and fields in scope
}

func (s *StructDeclStmt) String() string {
	return fmt.Sprintf("struct %s(%s)", s.Name, strings.Join(s.Fields, ", "))
}
func (s *StructDeclStmt) stmtNode() {}

// ExprStmt is a plain expression evaluated for effect (eagerly, in textual
// order) unless it is the block's final statement, in which case it is the
// block's result.
type ExprStmt struct {
	Base
	Value Expr
}

func (s *ExprStmt) String() string { return s.Value.String() }
func (s *ExprStmt) stmtNode()      {}

// ----------------------------------------------------------------------
// Operators
// ----------------------------------------------------------------------

// BinaryExpr is `left op right`, lowered at evaluation time to
// `left.op(right)` per the operator-as-method rule.
type BinaryExpr struct {
	Base
	Left  Expr
	Op    string
	Right Expr
}

func (e *BinaryExpr) String() string { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }
func (e *BinaryExpr) exprNode()      {}

// UnaryExpr is `op expr`, lowered to `expr.op()`.
type UnaryExpr struct {
	Base
	Op   string
	Expr Expr
}

func (e *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", e.Op, e.Expr) }
func (e *UnaryExpr) exprNode()      {}

// AssignExpr is `name = value`, right-associative, itself an expression
// yielding value (so `a = b = expr` assigns both a and b).
type AssignExpr struct {
	Base
	Name  string
	Value Expr
}

func (e *AssignExpr) String() string { return fmt.Sprintf("%s = %s", e.Name, e.Value) }
func (e *AssignExpr) exprNode()      {}

// ----------------------------------------------------------------------
// Control flow (evaluated directly by the evaluator, not via __if_else__)
// ----------------------------------------------------------------------

// IfExpr is `if cond then_block else else_block`.
type IfExpr struct {
	Base
	Cond Expr
	Then Expr
	Else Expr // nil means the else branch yields unit
}

func (e *IfExpr) String() string {
	if e.Else == nil {
		return fmt.Sprintf("if %s %s", e.Cond, e.Then)
	}
	return fmt.Sprintf("if %s %s else %s", e.Cond, e.Then, e.Else)
}
func (e *IfExpr) exprNode() {}

// ----------------------------------------------------------------------
// Functions
// ----------------------------------------------------------------------

// FnExpr is an anonymous function literal `(params): body`. Name is set
// by the parser when the literal is the right-hand side of a `fn` decl,
// purely for diagnostics and ToStr; it does not affect scoping.
type FnExpr struct {
	Base
	Params []string
	Body   Expr
	Name   string
}

func (e *FnExpr) String() string {
	if e.Name != "" {
		return fmt.Sprintf("fn %s(%s): %s", e.Name, strings.Join(e.Params, ", "), e.Body)
	}
	return fmt.Sprintf("(%s): %s", strings.Join(e.Params, ", "), e.Body)
}
func (e *FnExpr) exprNode() {}

// CallExpr is function application `callee(args...)`.
type CallExpr struct {
	Base
	Callee Expr
	Args   []Expr
}

func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(parts, ", "))
}
func (e *CallExpr) exprNode() {}

// ----------------------------------------------------------------------
// Field access
// ----------------------------------------------------------------------

// FieldExpr is `expr.field`, also used to reach built-in fields
// (`s.length`). The field must be an identifier, so operator methods such
// as `+` cannot be written after the dot.
type FieldExpr struct {
	Base
	Expr  Expr
	Field string
}

func (e *FieldExpr) String() string { return fmt.Sprintf("%s.%s", e.Expr, e.Field) }
func (e *FieldExpr) exprNode()      {}

// ----------------------------------------------------------------------
// Module / struct surface sugar. The evaluator builds modules and struct
// constructors directly, without calling __module__ / __struct__. Struct
// instantiation itself has no dedicated node: `Name(a, b)` is an ordinary
// CallExpr against the constructor produced by evaluating StructDeclStmt.
// ----------------------------------------------------------------------
