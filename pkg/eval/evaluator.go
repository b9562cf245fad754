package eval

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kraitlang/krait/internal/ast"
	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
	"github.com/kraitlang/krait/pkg/lexer"
	"github.com/kraitlang/krait/pkg/library"
	"github.com/kraitlang/krait/pkg/module"
	"github.com/kraitlang/krait/pkg/parser"
)

// EvalError wraps a diag.Diagnostic so the diagnostic pipeline can recover
// one from any error returned out of this package.
type EvalError struct {
	Diag *diag.Diagnostic
}

func (e *EvalError) Error() string { return e.Diag.Error() }

func newError(code diag.Code, headline string, format string, args ...interface{}) *EvalError {
	return &EvalError{Diag: diag.New(code, headline, format, args...)}
}

// Evaluator walks an internal/ast tree against a chain of value.Environment
// scopes, producing value.Value results.
type Evaluator struct {
	Globals   *value.Environment
	modules   *module.Loader
	libraries *library.Loader

	// startupEnv is Globals extended with KRAIT_STARTUP's top-level bindings,
	// merged once at process start; every module's root environment extends
	// this instead of Globals directly, unless its path falls under
	// startupExclude (so the startup file can't transitively import itself).
	startupEnv     *value.Environment
	startupExclude string
}

// New creates an Evaluator whose global scope already holds the built-in
// registry (println, import, import_library, __if_else__, __tuple__,
// __struct__, ...).
func New() *Evaluator {
	e := &Evaluator{Globals: value.NewEnvironment(), libraries: library.New()}
	e.modules = module.New(e.evalSource)
	registerBuiltins(e)
	return e
}

// LoadStartup evaluates the file at path and merges its top-level bindings
// into a root environment shared by every module loaded afterward, as
// KRAIT_STARTUP requires — unless that module's own path falls under
// exclude, which prevents the startup file (typically the bundled standard
// library) from recursively pulling itself in. exclude may be empty to
// disable exclusion entirely.
func (e *Evaluator) LoadStartup(path, exclude string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lx := lexer.New(string(src))
	p := parser.New(lx, string(src))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		return p.Errors()
	}

	env := e.Globals.Extend()
	for _, stmt := range prog.Statements {
		e.registerStatement(stmt, env)
	}
	for _, stmt := range prog.Statements {
		if es, ok := stmt.(*ast.ExprStmt); ok {
			if _, err := e.Eval(es.Value, env); err != nil {
				return err
			}
		}
	}
	e.startupEnv = env

	if exclude != "" {
		if abs, err := filepath.Abs(exclude); err == nil {
			e.startupExclude = abs
		}
	}
	return nil
}

// SetLibraryBaseDir changes the directory import_library resolves foreign
// library names against, typically the entry file's directory.
func (e *Evaluator) SetLibraryBaseDir(dir string) { e.libraries.SetBaseDir(dir) }

// underExclude reports whether path lies at or under startupExclude.
func (e *Evaluator) underExclude(path string) bool {
	if e.startupExclude == "" || path == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(e.startupExclude, abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// rootFor picks the environment a module at path should be evaluated
// against: Globals extended with the startup file's bindings, unless path
// is excluded from startup or no startup file was loaded.
func (e *Evaluator) rootFor(path string) *value.Environment {
	if e.startupEnv != nil && !e.underExclude(path) {
		return e.startupEnv
	}
	return e.Globals
}

// evalSource parses and evaluates one file's contents as a standalone
// program, wrapping its top-level bindings into a Module value — the
// module.Eval hook pkg/module calls back into for `import`.
func (e *Evaluator) evalSource(src string, path string) (*value.Value, error) {
	lx := lexer.New(src)
	p := parser.New(lx, src)
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		return nil, p.Errors()
	}

	env := e.rootFor(path).Extend()
	for _, stmt := range prog.Statements {
		e.registerStatement(stmt, env)
	}
	for _, stmt := range prog.Statements {
		if es, ok := stmt.(*ast.ExprStmt); ok {
			if _, err := e.Eval(es.Value, env); err != nil {
				return nil, err
			}
		}
	}

	m := &value.Module{Path: path, ID: uuid.New(), Exports: make(map[string]value.Value)}
	for _, name := range env.Names() {
		th, _ := env.Lookup(name)
		v, err := forceThunk(th, name)
		if err != nil {
			return nil, err
		}
		m.Names = append(m.Names, name)
		m.Exports[name] = v
	}
	var result value.Value = m
	return &result, nil
}

// EvalProgram evaluates an entire parsed file as one top-level block in a
// fresh child of path's root environment (Globals, or Globals-plus-startup
// when path isn't excluded), returning its trailing value.
func (e *Evaluator) EvalProgram(prog *ast.BlockExpr, path string) (value.Value, error) {
	env := e.rootFor(path).Extend()
	return e.evalBlock(prog, env)
}

// Eval dispatches on the dynamic type of node, implementing the tagged-union
// walk over internal/ast's Expr variants.
func (e *Evaluator) Eval(node ast.Expr, env *value.Environment) (value.Value, error) {
	switch n := node.(type) {
	case *ast.IntExpr:
		return value.Int(n.Value), nil
	case *ast.FloatExpr:
		return value.Float(n.Value), nil
	case *ast.BoolExpr:
		return value.Bool(n.Value), nil
	case *ast.UnitExpr:
		return value.Unit{}, nil
	case *ast.StringExpr:
		return value.String(n.Value), nil
	case *ast.IdentExpr:
		return e.evalIdent(n, env)
	case *ast.TupleExpr:
		return e.evalTuple(n, env)
	case *ast.BlockExpr:
		return e.evalBlock(n, env.Extend())
	case *ast.BinaryExpr:
		return e.evalBinary(n, env)
	case *ast.UnaryExpr:
		return e.evalUnary(n, env)
	case *ast.AssignExpr:
		return e.evalAssign(n, env)
	case *ast.IfExpr:
		return e.evalIf(n, env)
	case *ast.FnExpr:
		return e.evalFnExpr(n, env), nil
	case *ast.CallExpr:
		return e.evalCall(n, env)
	case *ast.FieldExpr:
		return e.evalField(n, env)
	default:
		return nil, newError(diag.Runtime2, fmt.Sprintf("cannot evaluate node of type %T", node), "")
	}
}

func (e *Evaluator) evalIdent(n *ast.IdentExpr, env *value.Environment) (value.Value, error) {
	th, ok := env.Lookup(n.Name)
	if !ok {
		return nil, newError(diag.Runtime9, fmt.Sprintf("undefined variable %q", n.Name), "")
	}
	return forceThunk(th, n.Name)
}

// forceThunk forces th, converting the bare cyclic-binding sentinel from
// internal/value into a proper RUNTIME-5 diagnostic — the only place that
// error can legitimately surface.
func forceThunk(th *value.Thunk, name string) (value.Value, error) {
	v, err := th.Force()
	if _, ok := err.(*value.CyclicBindingError); ok {
		return nil, newError(diag.Runtime5, fmt.Sprintf("%q refers to itself while being evaluated", name), "")
	}
	return v, err
}

func (e *Evaluator) evalTuple(n *ast.TupleExpr, env *value.Environment) (value.Value, error) {
	elems := make([]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.Eval(el, env)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return value.NewTuple(elems...), nil
}

// evalBlock registers every statement's binding as a thunk in env (in
// textual order, not forced) before evaluating ExprStmts eagerly in order;
// the block's value is its last ExprStmt, or unit if it has none.
func (e *Evaluator) evalBlock(n *ast.BlockExpr, env *value.Environment) (value.Value, error) {
	for _, stmt := range n.Statements {
		e.registerStatement(stmt, env)
	}

	var result value.Value = value.Unit{}
	for _, stmt := range n.Statements {
		exprStmt, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}
		v, err := e.Eval(exprStmt.Value, env)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// chainNames walks a right-associative assignment chain (the Value of a
// BindingStmt, itself possibly nested AssignExprs from `a = b = c = expr`)
// and returns every bound name together with the chain's innermost,
// non-assignment expression.
func chainNames(first string, expr ast.Expr) ([]string, ast.Expr) {
	names := []string{first}
	for {
		a, ok := expr.(*ast.AssignExpr)
		if !ok {
			return names, expr
		}
		names = append(names, a.Name)
		expr = a.Value
	}
}

// registerStatement binds a statement's name to a lazily-evaluated thunk
// capturing env, without forcing it — the core of krait's lazy-per-binding
// semantics.
func (e *Evaluator) registerStatement(stmt ast.Statement, env *value.Environment) {
	switch s := stmt.(type) {
	case *ast.BindingStmt:
		// A right-associative chain (`a = b = expr`) names every target in
		// s.Name plus any nested AssignExprs; all of them share the single
		// thunk that evaluates the chain's innermost expression.
		names, expr := chainNames(s.Name, s.Value)
		th := value.NewThunk(func() (value.Value, error) {
			return e.Eval(expr, env)
		})
		for _, name := range names {
			env.Bind(name, th)
		}
	case *ast.FnDeclStmt:
		fn := s.Fn
		env.Bind(s.Name, value.Resolved(e.evalFnExpr(fn, env)))
	case *ast.StructDeclStmt:
		decl := s
		env.Bind(s.Name, value.NewThunk(func() (value.Value, error) {
			return e.evalStructDecl(decl, env)
		}))
	case *ast.ExprStmt:
		// Evaluated eagerly, in order, by evalBlock itself.
	}
}
