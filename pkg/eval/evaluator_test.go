package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/lexer"
	"github.com/kraitlang/krait/pkg/parser"
)

// evalString parses and evaluates src as a standalone top-level program, the
// way EvalProgram does for a real file.
func evalString(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l, src)
	prog := p.ParseProgram()
	require.Falsef(t, p.Errors().HasErrors(), "unexpected parse errors: %v", p.Errors().Errors())
	e := New()
	return e.EvalProgram(prog, "<test>")
}

func mustEval(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := evalString(t, src)
	require.NoError(t, err)
	return v
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"1 + 2 + 3", 6},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"(5 + 10 * 2 + 15 / 3) * 2", 60},
		{"81 % 12", 9},
		{"-(2 + 2)", -4},
	}
	for _, tt := range tests {
		v := mustEval(t, tt.input)
		i, ok := v.(value.Int)
		require.Truef(t, ok, "input %q: got %T", tt.input, v)
		assert.Equalf(t, tt.expected, int64(i), "input %q", tt.input)
	}
}

func TestEvalFloatArithmeticDoesNotCoerceWithInt(t *testing.T) {
	_, err := evalString(t, "1 + 1.0")
	require.Error(t, err)
	ee, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Equal(t, "RUNTIME-2", string(ee.Diag.Code))
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := evalString(t, "1 / 0")
	require.Error(t, err)
	ee, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Equal(t, "RUNTIME-7", string(ee.Diag.Code))
	assert.Contains(t, ee.Diag.Body, "int#/")
}

func TestEvalStringIndexOutOfBounds(t *testing.T) {
	_, err := evalString(t, `"abc".get(3)`)
	require.Error(t, err)
	ee, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Equal(t, "RUNTIME-14", string(ee.Diag.Code))
	assert.Contains(t, ee.Diag.Body, "[0, 3)")
}

func TestEvalIfTrueFalse(t *testing.T) {
	assert.Equal(t, value.Int(1), mustEval(t, "if true:\n\t1\nelse:\n\t2\n"))
	assert.Equal(t, value.Int(2), mustEval(t, "if false:\n\t1\nelse:\n\t2\n"))
}

func TestEvalIfWithoutElseYieldsUnit(t *testing.T) {
	v := mustEval(t, "if false:\n\t1\n")
	assert.Equal(t, value.Unit{}, v)
}

func TestEvalFunctionCall(t *testing.T) {
	src := "fn double(x):\n\tx * 2\ndouble(21)\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Int(42), v)
}

func TestEvalFunctionArityMismatch(t *testing.T) {
	_, err := evalString(t, "fn f(a, b):\n\ta + b\nf(1)\n")
	require.Error(t, err)
	ee, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Equal(t, "RUNTIME-1", string(ee.Diag.Code))
}

func TestEvalClosureCapturesDefiningEnvironment(t *testing.T) {
	src := "fn adder(n):\n\t(x): x + n\nadd5 = adder(5)\nadd5(10)\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Int(15), v)
}

func TestEvalTupleConcatenationAndRepetition(t *testing.T) {
	concat := mustEval(t, "(1, 2) + (3,)\n")
	tup, ok := concat.(*value.Tuple)
	require.True(t, ok)
	assert.Len(t, tup.Elements, 3)

	rep := mustEval(t, "(1, 2) * 2\n")
	tup2, ok := rep.(*value.Tuple)
	require.True(t, ok)
	assert.Len(t, tup2.Elements, 4)
}

func TestEvalTupleRepetitionByNonPositiveCountYieldsEmpty(t *testing.T) {
	v := mustEval(t, "(1, 2) * 0\n")
	tup, ok := v.(*value.Tuple)
	require.True(t, ok)
	assert.Len(t, tup.Elements, 0)
}

func TestEvalStructConstructorExcludesSelfFromArity(t *testing.T) {
	src := "struct Point(self, x, y):\n\tfn sum():\n\t\tx + y\np = Point(3, 4)\np.sum()\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Int(7), v)
}

func TestEvalStructConstructorArityMismatch(t *testing.T) {
	src := "struct Point(self, x, y):\n\tx\nPoint(1)\n"
	_, err := evalString(t, src)
	require.Error(t, err)
	ee, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Equal(t, "RUNTIME-1", string(ee.Diag.Code))
}

func TestEvalStructFieldAccess(t *testing.T) {
	src := "struct Point(self, x, y):\n\tx\np = Point(3, 4)\np.x\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Int(3), v)
}

func TestEvalStructEqualityRequiresSameDeclaration(t *testing.T) {
	src := "struct A(self, x):\n\tx\nstruct B(self, x):\n\tx\nA(1) == B(1)\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Bool(false), v)
}

func TestEvalStructEqualityComparesFields(t *testing.T) {
	src := "struct Point(self, x, y):\n\tx\np1 = Point(1, 2)\np2 = Point(1, 2)\np1 == p2\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Bool(true), v)
}

func TestEvalCyclicBindingIsRuntime5(t *testing.T) {
	src := "x = x + 1\nx\n"
	_, err := evalString(t, src)
	require.Error(t, err)
	ee, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Equal(t, "RUNTIME-5", string(ee.Diag.Code))
}

func TestEvalAssignmentChainSharesOneThunk(t *testing.T) {
	// b is never referenced before a forces the chain, but must still be
	// independently readable and equal to the same computed value.
	src := "a = b = 1 + 2\na + b\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Int(6), v)
}

func TestEvalLazyBindingNeverForcesUnusedSideEffects(t *testing.T) {
	// Referencing `used` alone must not force `unused`'s division by zero.
	src := "used = 1\nunused = 1 / 0\nused\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Int(1), v)
}

func TestEvalBlockResultIsLastExprStmt(t *testing.T) {
	src := "x = 1\ny = 2\nx + y\n"
	v := mustEval(t, src)
	assert.Equal(t, value.Int(3), v)
}

func TestEvalUnaryBangAndMinus(t *testing.T) {
	assert.Equal(t, value.Bool(false), mustEval(t, "!true\n"))
	assert.Equal(t, value.Int(-5), mustEval(t, "-5\n"))
}

func TestEvalShortCircuitAndOr(t *testing.T) {
	// A right-hand side that would error must never be evaluated.
	assert.Equal(t, value.Bool(false), mustEval(t, "false && (1 / 0 == 0)\n"))
	assert.Equal(t, value.Bool(true), mustEval(t, "true || (1 / 0 == 0)\n"))
}
