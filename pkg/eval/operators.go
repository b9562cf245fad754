package eval

import (
	"fmt"

	"github.com/kraitlang/krait/internal/ast"
	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

// evalBinary implements `left op right` by lowering to the operator-as-method
// rule (a+b ≡ a.+(b)): the left operand's kind decides which strongly-typed
// implementation runs. krait never auto-coerces int to float; mixed-kind
// arithmetic is a RUNTIME-2 (wrong argument/operand kind) error.
func (e *Evaluator) evalBinary(n *ast.BinaryExpr, env *value.Environment) (value.Value, error) {
	if n.Op == "&&" || n.Op == "||" {
		return e.evalShortCircuit(n, env)
	}

	left, err := e.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := e.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(n.Op, left, right)
}

// evalShortCircuit handles && and || without evaluating the right operand
// unless needed.
func (e *Evaluator) evalShortCircuit(n *ast.BinaryExpr, env *value.Environment) (value.Value, error) {
	left, err := e.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(value.Bool)
	if !ok {
		return nil, operandKindError(n.Op, left)
	}
	if n.Op == "&&" && !bool(lb) {
		return value.Bool(false), nil
	}
	if n.Op == "||" && bool(lb) {
		return value.Bool(true), nil
	}
	right, err := e.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(value.Bool)
	if !ok {
		return nil, operandKindError(n.Op, right)
	}
	return rb, nil
}

func operandKindError(op string, v value.Value) error {
	return newError(diag.Runtime2, fmt.Sprintf("operator %q is not defined for %s", op, v.Kind()), "")
}

func applyBinaryOp(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "==":
		eq, err := value.Equal(left, right)
		if err != nil {
			return nil, err
		}
		return value.Bool(eq), nil
	case "!=":
		eq, err := value.Equal(left, right)
		if err != nil {
			return nil, err
		}
		return value.Bool(!eq), nil
	}

	switch l := left.(type) {
	case value.Int:
		r, ok := right.(value.Int)
		if !ok {
			return nil, mismatchedKindError(op, left, right)
		}
		return intOp(op, l, r)
	case value.Float:
		r, ok := right.(value.Float)
		if !ok {
			return nil, mismatchedKindError(op, left, right)
		}
		return floatOp(op, l, r)
	case value.String:
		r, ok := right.(value.String)
		if !ok {
			return nil, mismatchedKindError(op, left, right)
		}
		return stringOp(op, l, r)
	case value.Bool:
		r, ok := right.(value.Bool)
		if !ok {
			return nil, mismatchedKindError(op, left, right)
		}
		return boolOp(op, l, r)
	case *value.Tuple:
		return tupleOp(op, l, right)
	default:
		return nil, operandKindError(op, left)
	}
}

func mismatchedKindError(op string, left, right value.Value) error {
	return newError(diag.Runtime2, "A built-in function was called with an argument of incorrect type",
		"%s expected argument #1 to be of a different type.", op)
}

func intOp(op string, l, r value.Int) (value.Value, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, divisionByZeroError("int#/")
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return nil, divisionByZeroError("int#%")
		}
		return l % r, nil
	case "<":
		return value.Bool(l < r), nil
	case ">":
		return value.Bool(l > r), nil
	case "<=":
		return value.Bool(l <= r), nil
	case ">=":
		return value.Bool(l >= r), nil
	default:
		return nil, operandKindError(op, l)
	}
}

func divisionByZeroError(receiver string) error {
	return newError(diag.Runtime7, "Division by zero", "Expected the right-hand side of %s to be nonzero.", receiver)
}

func floatOp(op string, l, r value.Float) (value.Value, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, divisionByZeroError("float#/")
		}
		return l / r, nil
	case "<":
		return value.Bool(l < r), nil
	case ">":
		return value.Bool(l > r), nil
	case "<=":
		return value.Bool(l <= r), nil
	case ">=":
		return value.Bool(l >= r), nil
	default:
		return nil, operandKindError(op, l)
	}
}

func stringOp(op string, l, r value.String) (value.Value, error) {
	switch op {
	case "+":
		return l + r, nil
	case "<":
		return value.Bool(l < r), nil
	case ">":
		return value.Bool(l > r), nil
	case "<=":
		return value.Bool(l <= r), nil
	case ">=":
		return value.Bool(l >= r), nil
	default:
		return nil, operandKindError(op, l)
	}
}

// tupleOp implements `+` (concatenation) and `*` (repetition by a
// non-negative int count; negative or zero yields the empty tuple, a
// non-int right-hand side is RUNTIME-2).
func tupleOp(op string, l *value.Tuple, right value.Value) (value.Value, error) {
	switch op {
	case "+":
		r, ok := right.(*value.Tuple)
		if !ok {
			return nil, mismatchedKindError(op, l, right)
		}
		elems := make([]value.Value, 0, len(l.Elements)+len(r.Elements))
		elems = append(elems, l.Elements...)
		elems = append(elems, r.Elements...)
		return value.NewTuple(elems...), nil
	case "*":
		r, ok := right.(value.Int)
		if !ok {
			return nil, mismatchedKindError(op, l, right)
		}
		if r <= 0 {
			return value.NewTuple(), nil
		}
		elems := make([]value.Value, 0, len(l.Elements)*int(r))
		for i := value.Int(0); i < r; i++ {
			elems = append(elems, l.Elements...)
		}
		return value.NewTuple(elems...), nil
	default:
		return nil, operandKindError(op, l)
	}
}

func boolOp(op string, l, r value.Bool) (value.Value, error) {
	switch op {
	case "&&":
		return l && r, nil
	case "||":
		return l || r, nil
	default:
		return nil, operandKindError(op, l)
	}
}

// evalUnary implements `-x` and `!x`, the only two prefix operators.
func (e *Evaluator) evalUnary(n *ast.UnaryExpr, env *value.Environment) (value.Value, error) {
	v, err := e.Eval(n.Expr, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		switch x := v.(type) {
		case value.Int:
			return -x, nil
		case value.Float:
			return -x, nil
		default:
			return nil, operandKindError(n.Op, v)
		}
	case "!":
		b, ok := v.(value.Bool)
		if !ok {
			return nil, operandKindError(n.Op, v)
		}
		return !b, nil
	default:
		return nil, operandKindError(n.Op, v)
	}
}

func (e *Evaluator) evalAssign(n *ast.AssignExpr, env *value.Environment) (value.Value, error) {
	v, err := e.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	env.Bind(n.Name, value.Resolved(v))
	return v, nil
}
