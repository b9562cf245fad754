package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

func TestStringMethodsGetSliceSplitStrip(t *testing.T) {
	assert.Equal(t, value.String("e"), mustEval(t, `"hello".get(1)`))
	assert.Equal(t, value.String("ell"), mustEval(t, `"hello".slice(1, 4)`))

	split := mustEval(t, `"a,b,c".split(",")`)
	tup, ok := split.(*value.Tuple)
	require.True(t, ok)
	assert.Equal(t, []value.Value{value.String("a"), value.String("b"), value.String("c")}, tup.Elements)

	assert.Equal(t, value.String("hi"), mustEval(t, `"  hi  ".strip(" ")`))
}

func TestStringCodepointRequiresSingleCodePoint(t *testing.T) {
	v := mustEval(t, `"a".codepoint()`)
	assert.Equal(t, value.Int('a'), v)

	_, err := evalString(t, `"ab".codepoint()`)
	require.Error(t, err)
	ee := err.(*EvalError)
	assert.Equal(t, diag.Runtime18, ee.Diag.Code)
}

func TestIntToCharacter(t *testing.T) {
	// "97.to_character()" (no parens needed: a letter right after the dot
	// always reads as field access, never as part of the float literal).
	v := mustEval(t, "97.to_character()")
	assert.Equal(t, value.String("a"), v)
}

func TestTupleSliceClampsOutOfRangeBounds(t *testing.T) {
	v := mustEval(t, "(1, 2, 3).slice(-5, 100)")
	tup, ok := v.(*value.Tuple)
	require.True(t, ok)
	assert.Len(t, tup.Elements, 3)
}

func TestOperatorAsMethodMatchesInfixForm(t *testing.T) {
	// lookupBuiltinField's "+" entry backs the a+b ≡ a.+(b) equivalence
	// spec.md describes; the parser's field-tail grammar only accepts an
	// identifier after a dot, so this equivalence is exercised at the
	// builtin-table level rather than through literal "a.+(b)" source text.
	infix := mustEval(t, "3 + 4")

	bi, ok := lookupBuiltinField(value.Int(3), "+")
	require.True(t, ok)
	method, err := bi.(*value.Builtin).Call([]value.Value{value.Int(4)})
	require.NoError(t, err)
	assert.Equal(t, infix, method)
}

func TestUnaryOperatorsAsMethodsTakeNoArguments(t *testing.T) {
	bi, ok := lookupBuiltinField(value.Int(5), "-")
	require.True(t, ok)
	neg, err := bi.(*value.Builtin).Call(nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(-5), neg)

	bi, ok = lookupBuiltinField(value.Bool(true), "!")
	require.True(t, ok)
	not, err := bi.(*value.Builtin).Call(nil)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), not)
}

func TestTranslateLibraryErrorPrefersDiagnosticOverReconstruction(t *testing.T) {
	d := diag.New(diag.Runtime13, "Encountered an import cycle", "body text")
	src := &diagCarryingStub{d: d}

	err := translateLibraryError(src)
	ee, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Same(t, d, ee.Diag)
	assert.Contains(t, ee.Error(), "Error (RUNTIME-13): Encountered an import cycle")
	assert.NotContains(t, ee.Error(), "Error (RUNTIME-13): Error (RUNTIME-13)")
}

type diagCarryingStub struct{ d *diag.Diagnostic }

func (s *diagCarryingStub) Error() string                { return s.d.Error() }
func (s *diagCarryingStub) Diagnostic() *diag.Diagnostic { return s.d }

func TestImportBuiltinPropagatesModuleNotFound(t *testing.T) {
	_, err := evalString(t, `import("definitely.not.a.module")`)
	require.Error(t, err)
	ee := err.(*EvalError)
	assert.Equal(t, diag.Runtime13, ee.Diag.Code)
	assert.NotContains(t, ee.Error(), "Error (RUNTIME-13): Error (RUNTIME-13)")
}
