package eval

import (
	"github.com/kraitlang/krait/internal/ast"
	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

// evalIf lowers surface `if cond then else other` to the same __if_else__
// semantics a user could invoke directly: the condition is evaluated
// eagerly, exactly one branch is evaluated, and a non-Bool condition is a
// runtime type error.
func (e *Evaluator) evalIf(n *ast.IfExpr, env *value.Environment) (value.Value, error) {
	cond, err := e.Eval(n.Cond, env)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(value.Bool)
	if !ok {
		return nil, newError(diag.Runtime2, "if condition must be a bool", "")
	}
	if bool(b) {
		return e.Eval(n.Then, env)
	}
	if n.Else == nil {
		return value.Unit{}, nil
	}
	return e.Eval(n.Else, env)
}

// ifElseBuiltin returns the callable form of `__if_else__`, taking
// zero-argument thunk functions for its branches so only the taken one is
// ever forced.
func ifElseBuiltin(e *Evaluator) value.BuiltinFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, newError(diag.Runtime1, "__if_else__ expects exactly 3 arguments", "")
		}
		cond, ok := args[0].(value.Bool)
		if !ok {
			return nil, newError(diag.Runtime2, "__if_else__'s first argument must be a bool", "")
		}
		branch := args[1]
		if !bool(cond) {
			branch = args[2]
		}
		switch branch.(type) {
		case *value.Function, *value.Builtin:
			return e.Apply(branch, nil)
		default:
			return branch, nil
		}
	}
}
