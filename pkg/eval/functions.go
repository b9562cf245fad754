package eval

import (
	"fmt"

	"github.com/kraitlang/krait/internal/ast"
	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

func (e *Evaluator) evalFnExpr(n *ast.FnExpr, env *value.Environment) *value.Function {
	return &value.Function{Params: n.Params, Body: n, Env: env, Name: n.Name}
}

// evalCall evaluates the callee and every argument eagerly, left to right,
// then dispatches by the callee's kind.
func (e *Evaluator) evalCall(n *ast.CallExpr, env *value.Environment) (value.Value, error) {
	callee, err := e.Eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return e.Apply(callee, args)
}

// Apply invokes any callable value (user function or built-in) with already
// -evaluated arguments.
func (e *Evaluator) Apply(callee value.Value, args []value.Value) (value.Value, error) {
	switch fn := callee.(type) {
	case *value.Function:
		return e.callFunction(fn, args)
	case *value.Builtin:
		return fn.Call(args)
	default:
		return nil, newError(diag.Runtime2, fmt.Sprintf("%s is not callable", callee.Kind()), "")
	}
}

func (e *Evaluator) callFunction(fn *value.Function, args []value.Value) (value.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, newError(diag.Runtime1, fmt.Sprintf(
			"%s expects %d argument(s), got %d", fnLabel(fn), len(fn.Params), len(args)), "")
	}
	body, ok := fn.Body.(*ast.FnExpr)
	if !ok {
		return nil, newError(diag.Runtime2, "malformed function value", "")
	}
	callEnv := fn.Env.Extend()
	for i, p := range fn.Params {
		v := args[i]
		callEnv.Bind(p, value.Resolved(v))
	}
	return e.Eval(body.Body, callEnv)
}

func fnLabel(fn *value.Function) string {
	if fn.Name != "" {
		return fmt.Sprintf("function %q", fn.Name)
	}
	return "function"
}

// evalField implements `.field` access: the reserved to_str/==/!= names
// always resolve to the built-ins; otherwise a struct instance's own
// constructor/extra/factory fields come first, then the built-in field table
// for the value's kind (operator methods, length, ...).
func (e *Evaluator) evalField(n *ast.FieldExpr, env *value.Environment) (value.Value, error) {
	recv, err := e.Eval(n.Expr, env)
	if err != nil {
		return nil, err
	}
	return e.getField(recv, n.Field)
}

func (e *Evaluator) getField(recv value.Value, name string) (value.Value, error) {
	reserved := name == "to_str" || name == "==" || name == "!="
	if inst, ok := recv.(*value.StructInstance); ok && !reserved {
		if v, found, err := inst.Get(name); found || err != nil {
			return v, err
		}
	}
	if bi, ok := lookupBuiltinField(recv, name); ok {
		return bi, nil
	}
	return nil, newError(diag.Runtime9, fmt.Sprintf("%s has no field %q", recv.Kind(), name), "")
}

// evalStructDecl builds the struct's StructType identity once and returns a
// Builtin constructor closure, mirroring `__struct__(name, ctor, field_factory,
// extra_pairs)`'s lowering (struct.go) without going through the surface
// built-in — declarations always construct their own type directly.
func (e *Evaluator) evalStructDecl(decl *ast.StructDeclStmt, env *value.Environment) (value.Value, error) {
	st := value.NewStructType(decl.Name, decl.Fields)
	body := decl.Body
	declEnv := env

	ctorFn := value.BuiltinFunc(func(args []value.Value) (value.Value, error) {
		if len(args) != len(st.Fields) {
			return nil, newError(diag.Runtime1, fmt.Sprintf(
				"struct %s expects %d argument(s), got %d", st.Name, len(st.Fields), len(args)), "")
		}
		inst := &value.StructInstance{Type: st, Fields: make(map[string]*value.Thunk), Extra: make(map[string]value.Value)}
		for i, f := range st.Fields {
			v := args[i]
			inst.Fields[f] = value.Resolved(v)
		}
		if body != nil {
			extraEnv := declEnv.Extend()
			for i, f := range st.Fields {
				extraEnv.Bind(f, value.Resolved(args[i]))
			}
			extraEnv.Bind("self", value.Resolved(inst))
			for _, stmt := range body.Statements {
				e.registerStatement(stmt, extraEnv)
			}
			for _, name := range extraEnv.Names() {
				if name == "self" {
					continue
				}
				isField := false
				for _, f := range st.Fields {
					if f == name {
						isField = true
						break
					}
				}
				if isField {
					continue
				}
				th, _ := extraEnv.Lookup(name)
				v, err := forceThunk(th, name)
				if err != nil {
					return nil, err
				}
				inst.Extra[name] = v
			}
		}
		return inst, nil
	})
	return value.NewBuiltin(decl.Name, ctorFn), nil
}
