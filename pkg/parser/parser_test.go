package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraitlang/krait/internal/ast"
	"github.com/kraitlang/krait/pkg/lexer"
)

func parseProgram(t *testing.T, src string) *ast.BlockExpr {
	t.Helper()
	p := New(lexer.New(src), src)
	prog := p.ParseProgram()
	require.Falsef(t, p.Errors().HasErrors(), "unexpected parse errors: %v", p.Errors().Errors())
	return prog
}

func TestParseFnDeclUsesColon(t *testing.T) {
	prog := parseProgram(t, "fn double(x):\n\tx * 2\n")
	require.Len(t, prog.Statements, 1)
	decl, ok := prog.Statements[0].(*ast.FnDeclStmt)
	require.True(t, ok)
	assert.Equal(t, "double", decl.Name)
	assert.Equal(t, []string{"x"}, decl.Fn.Params)
}

func TestParseFnDeclTrailingExprOnSameLine(t *testing.T) {
	prog := parseProgram(t, "fn double(x): x * 2\n")
	decl, ok := prog.Statements[0].(*ast.FnDeclStmt)
	require.True(t, ok)
	_, isBinary := decl.Fn.Body.(*ast.BinaryExpr)
	assert.True(t, isBinary)
}

func TestParseStructDeclRequiresSelfFirstAndExcludesIt(t *testing.T) {
	prog := parseProgram(t, "struct Point(self, x, y):\n\tfn sum():\n\t\tx + y\n")
	decl, ok := prog.Statements[0].(*ast.StructDeclStmt)
	require.True(t, ok)
	assert.Equal(t, "Point", decl.Name)
	// self must not be counted as a constructor field.
	assert.Equal(t, []string{"x", "y"}, decl.Fields)
}

func TestParseStructDeclWithoutSelfIsParserError(t *testing.T) {
	src := "struct Point(x, y):\n\tx\n"
	p := New(lexer.New(src), src)
	p.ParseProgram()
	assert.True(t, p.Errors().HasErrors())
}

func TestParseIfElseUsesColon(t *testing.T) {
	prog := parseProgram(t, "x = 1\nif x > 0:\n\tx\nelse:\n\t-x\n")
	stmt, ok := prog.Statements[1].(*ast.ExprStmt)
	require.True(t, ok)
	ifExpr, ok := stmt.Value.(*ast.IfExpr)
	require.True(t, ok)
	require.NotNil(t, ifExpr.Else)
}

func TestParseIfElseIfChain(t *testing.T) {
	prog := parseProgram(t, "x = 1\nif x > 0:\n\t1\nelse if x < 0:\n\t-1\nelse:\n\t0\n")
	stmt := prog.Statements[1].(*ast.ExprStmt)
	ifExpr := stmt.Value.(*ast.IfExpr)
	elseIf, ok := ifExpr.Else.(*ast.IfExpr)
	require.True(t, ok)
	require.NotNil(t, elseIf.Else)
}

func TestParseAnonFnLiteralUsesColonNotTuple(t *testing.T) {
	prog := parseProgram(t, "f = (x, y): x + y\n")
	binding, ok := prog.Statements[0].(*ast.BindingStmt)
	require.True(t, ok)
	fn, ok := binding.Value.(*ast.FnExpr)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, fn.Params)
}

func TestParseParenGroupingIsNotAFnLiteral(t *testing.T) {
	prog := parseProgram(t, "x = 1\ny = (x)\n")
	binding := prog.Statements[1].(*ast.BindingStmt)
	_, isFn := binding.Value.(*ast.FnExpr)
	assert.False(t, isFn)
	_, isIdent := binding.Value.(*ast.IdentExpr)
	assert.True(t, isIdent)
}

func TestParseTupleDisambiguation(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		length int
	}{
		{"empty tuple", "x = (,)\n", 0},
		{"one-tuple", "x = (1,)\n", 1},
		{"n-tuple", "x = (1, 2, 3)\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseProgram(t, tt.src)
			binding := prog.Statements[0].(*ast.BindingStmt)
			tup, ok := binding.Value.(*ast.TupleExpr)
			require.True(t, ok)
			assert.Len(t, tup.Elements, tt.length)
		})
	}
}

func TestParseAssignmentChainIsRightAssociative(t *testing.T) {
	prog := parseProgram(t, "a = b = 1 + 2\n")
	binding := prog.Statements[0].(*ast.BindingStmt)
	assert.Equal(t, "a", binding.Name)
	inner, ok := binding.Value.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, "b", inner.Name)
	_, isBinary := inner.Value.(*ast.BinaryExpr)
	assert.True(t, isBinary)
}

func TestParseRebindingInSameScopeIsParserError(t *testing.T) {
	src := "x = 1\nx = 2\n"
	p := New(lexer.New(src), src)
	p.ParseProgram()
	assert.True(t, p.Errors().HasErrors())
}

func TestParseUnknownIdentifierIsParser6(t *testing.T) {
	src := "y\n"
	p := New(lexer.New(src), src)
	p.ParseProgram()
	require.True(t, p.Errors().HasErrors())
	diags := p.Errors().Diagnostics()
	assert.Equal(t, "PARSER-6", string(diags[0].Code))
}

func TestParseForwardReferenceWithinBlockIsAllowed(t *testing.T) {
	// a references b, which is declared after it in the same block; this is
	// legal because block registration binds every name before forcing any.
	src := "fn f():\n\ta = b\n\tb = 1\n\ta\n"
	parseProgram(t, src)
}

func TestParseStaticFieldAccessOnUnknownFieldIsParser7(t *testing.T) {
	src := "x = 1.not_a_field\n"
	p := New(lexer.New(src), src)
	p.ParseProgram()
	require.True(t, p.Errors().HasErrors())
	diags := p.Errors().Diagnostics()
	found := false
	for _, d := range diags {
		if string(d.Code) == "PARSER-7" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParsePrecedenceOfArithmeticAndComparison(t *testing.T) {
	prog := parseProgram(t, "x = 1 + 2 * 3 == 7\n")
	binding := prog.Statements[0].(*ast.BindingStmt)
	eq, ok := binding.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "==", eq.Op)
	add, ok := eq.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestParseUnaryMinusAndNot(t *testing.T) {
	prog := parseProgram(t, "x = -1\ny = !true\n")
	xb := prog.Statements[0].(*ast.BindingStmt)
	unary, ok := xb.Value.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, "-", unary.Op)

	yb := prog.Statements[1].(*ast.BindingStmt)
	bang, ok := yb.Value.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, "!", bang.Op)
}

func TestParseFieldAndCallChaining(t *testing.T) {
	prog := parseProgram(t, "a = (1,)\nx = a.get(0).length\n")
	binding := prog.Statements[1].(*ast.BindingStmt)
	field, ok := binding.Value.(*ast.FieldExpr)
	require.True(t, ok)
	assert.Equal(t, "length", field.Field)
	call, ok := field.Expr.(*ast.CallExpr)
	require.True(t, ok)
	callee, ok := call.Callee.(*ast.FieldExpr)
	require.True(t, ok)
	assert.Equal(t, "get", callee.Field)
}

func TestParseEmptyParensIsParserError(t *testing.T) {
	src := "x = ()\n"
	p := New(lexer.New(src), src)
	prog := p.ParseProgram()
	assert.True(t, p.Errors().HasErrors())
	_ = prog
}
