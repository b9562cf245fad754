package parser

import (
	"fmt"

	"github.com/kraitlang/krait/internal/ast"
	"github.com/kraitlang/krait/pkg/diag"
)

// globalNames lists the built-ins that are always in scope without any
// binding in source, so the resolver never flags them as unknown.
var globalNames = map[string]bool{
	"println": true, "print": true, "import": true, "import_library": true,
	"__if_else__": true, "__tuple__": true, "__module__": true, "__struct__": true,
}

// resolveScope mirrors scope but is built from the finished AST rather than
// the token stream, so it can see every name a block declares — including
// ones that appear textually after a reference to them — before resolving
// any identifier inside that block.
type resolveScope struct {
	names  map[string]bool
	parent *resolveScope
}

func newResolveScope(parent *resolveScope) *resolveScope {
	return &resolveScope{names: make(map[string]bool), parent: parent}
}

func (s *resolveScope) declare(name string) { s.names[name] = true }

func (s *resolveScope) has(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.names[name] {
			return true
		}
	}
	return false
}

// resolve walks prog reporting PARSER-6 (an identifier referencing no
// binding anywhere in its enclosing scope chain) and PARSER-7 (a field
// access on a receiver whose kind is known from its literal shape, against
// a name absent from that kind's built-in field table). Both checks are
// purely static: they never run evaluation and never reject anything a
// dynamic lookup might still resolve (struct instance fields, module
// exports, and any receiver whose kind isn't apparent from its literal
// form are left to the evaluator).
func (p *Parser) resolve(prog *ast.BlockExpr) {
	p.resolveBlock(prog, nil)
}

func (p *Parser) resolveBlock(block *ast.BlockExpr, parent *resolveScope) {
	scope := newResolveScope(parent)
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.BindingStmt:
			scope.declare(s.Name)
		case *ast.FnDeclStmt:
			scope.declare(s.Name)
		case *ast.StructDeclStmt:
			scope.declare(s.Name)
		}
	}
	for _, stmt := range block.Statements {
		p.resolveStmt(stmt, scope)
	}
}

func (p *Parser) resolveStmt(stmt ast.Statement, scope *resolveScope) {
	switch s := stmt.(type) {
	case *ast.BindingStmt:
		p.resolveExpr(s.Value, scope)
	case *ast.FnDeclStmt:
		p.resolveExpr(s.Fn, scope)
	case *ast.StructDeclStmt:
		if s.Body != nil {
			inner := newResolveScope(scope)
			for _, f := range s.Fields {
				inner.declare(f)
			}
			inner.declare("self")
			p.resolveBlock(s.Body, inner)
		}
	case *ast.ExprStmt:
		p.resolveExpr(s.Value, scope)
	}
}

func (p *Parser) resolveExpr(expr ast.Expr, scope *resolveScope) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.IntExpr, *ast.FloatExpr, *ast.BoolExpr, *ast.UnitExpr, *ast.StringExpr:
		// Literals reference nothing.
	case *ast.IdentExpr:
		if !scope.has(e.Name) && !globalNames[e.Name] {
			p.errs.Add(diag.Parser6, e.Span().Start, fmt.Sprintf("%q is not bound here", e.Name))
		}
	case *ast.TupleExpr:
		for _, el := range e.Elements {
			p.resolveExpr(el, scope)
		}
	case *ast.BlockExpr:
		p.resolveBlock(e, scope)
	case *ast.BinaryExpr:
		p.resolveExpr(e.Left, scope)
		p.resolveExpr(e.Right, scope)
	case *ast.UnaryExpr:
		p.resolveExpr(e.Expr, scope)
	case *ast.AssignExpr:
		// The assignment target itself introduces/rebinds e.Name in the
		// current scope (right-associative chains like `a = b = expr` bind
		// both), so later sibling statements may reference it.
		scope.declare(e.Name)
		p.resolveExpr(e.Value, scope)
	case *ast.IfExpr:
		p.resolveExpr(e.Cond, scope)
		p.resolveExpr(e.Then, scope)
		p.resolveExpr(e.Else, scope)
	case *ast.FnExpr:
		inner := newResolveScope(scope)
		for _, param := range e.Params {
			inner.declare(param)
		}
		p.resolveExpr(e.Body, inner)
	case *ast.CallExpr:
		p.resolveExpr(e.Callee, scope)
		for _, a := range e.Args {
			p.resolveExpr(a, scope)
		}
	case *ast.FieldExpr:
		p.resolveExpr(e.Expr, scope)
		if kind, ok := staticLiteralKind(e.Expr); ok {
			if !staticFields[kind][e.Field] {
				p.errs.Add(diag.Parser7, e.Span().Start, fmt.Sprintf(
					"%s has no field %q", kind, e.Field))
			}
		}
	}
}

// staticLiteralKind reports the value kind a receiver expression is
// guaranteed to produce purely from its syntactic shape — true only for
// literals, where no binding, call, or control flow can change the kind.
func staticLiteralKind(expr ast.Expr) (string, bool) {
	switch expr.(type) {
	case *ast.IntExpr:
		return "int", true
	case *ast.FloatExpr:
		return "float", true
	case *ast.BoolExpr:
		return "bool", true
	case *ast.UnitExpr:
		return "unit", true
	case *ast.StringExpr:
		return "string", true
	case *ast.TupleExpr:
		return "tuple", true
	default:
		return "", false
	}
}

var commonFields = map[string]bool{"==": true, "!=": true, "to_str": true}

var arith = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true,
	"<": true, ">": true, "<=": true, ">=": true}

var staticFields = map[string]map[string]bool{
	"int":    union(commonFields, arith, map[string]bool{"to_character": true}),
	"float":  union(commonFields, arith),
	"bool":   union(commonFields, map[string]bool{"&&": true, "||": true, "!": true}),
	"unit":   commonFields,
	"string": union(commonFields, map[string]bool{"+": true, "length": true, "get": true, "slice": true, "split": true, "strip": true, "codepoint": true}),
	"tuple":  union(commonFields, map[string]bool{"+": true, "*": true, "length": true, "get": true, "slice": true}),
}

func union(maps ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, m := range maps {
		for k := range m {
			out[k] = true
		}
	}
	return out
}
