package parser

import (
	"fmt"
	"strconv"

	"github.com/kraitlang/krait/internal/ast"
	"github.com/kraitlang/krait/pkg/diag"
	"github.com/kraitlang/krait/pkg/lexer"
)

var binaryOps = map[lexer.TokenType]string{
	lexer.TOKEN_OR:    "||",
	lexer.TOKEN_AND:   "&&",
	lexer.TOKEN_EQ:    "==",
	lexer.TOKEN_NEQ:   "!=",
	lexer.TOKEN_LT:    "<",
	lexer.TOKEN_GT:    ">",
	lexer.TOKEN_LTE:   "<=",
	lexer.TOKEN_GTE:   ">=",
	lexer.TOKEN_PLUS:  "+",
	lexer.TOKEN_MINUS: "-",
	lexer.TOKEN_STAR:  "*",
	lexer.TOKEN_SLASH: "/",
	lexer.TOKEN_PERCENT: "%",
}

// parseExpr is the precedence-climbing entry point. Right-associative
// assignment (`a = b = expr`) is checked first: it is itself an expression,
// so it can nest inside a larger one.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	if p.curIs(lexer.TOKEN_IDENT) && p.peekIs(lexer.TOKEN_ASSIGN) {
		return p.parseAssign()
	}

	left := p.parseUnary()

	for {
		op, ok := binaryOps[p.cur.Type]
		if !ok {
			break
		}
		prec := precedenceOf(p.cur.Type)
		if prec < minPrec || prec == LOWEST {
			break
		}
		start := left.Span().Start
		p.advance()
		right := p.parseExpr(prec + 1)
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right, Base: ast.At(start, p.cur.Start)}
	}

	return left
}

func (p *Parser) parseAssign() ast.Expr {
	start := p.cur.Start
	name := p.cur.Literal
	p.advance() // name
	p.advance() // '='
	value := p.parseExpr(LOWEST)
	return &ast.AssignExpr{Name: name, Value: value, Base: ast.At(start, p.cur.Start)}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.curIs(lexer.TOKEN_BANG) || p.curIs(lexer.TOKEN_MINUS) {
		start := p.cur.Start
		op := p.cur.Literal
		p.advance()
		expr := p.parseUnary()
		return &ast.UnaryExpr{Op: op, Expr: expr, Base: ast.At(start, p.cur.Start)}
	}
	return p.parseCallOrField()
}

func (p *Parser) parseCallOrField() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.curIs(lexer.TOKEN_LPAREN):
			expr = p.parseCallTail(expr)
		case p.curIs(lexer.TOKEN_DOT):
			expr = p.parseFieldTail(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) parseCallTail(callee ast.Expr) ast.Expr {
	start := callee.Span().Start
	p.advance() // '('
	var args []ast.Expr
	for !p.curIs(lexer.TOKEN_RPAREN) && !p.curIs(lexer.TOKEN_EOF) {
		args = append(args, p.parseExpr(LOWEST))
		if p.curIs(lexer.TOKEN_COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.TOKEN_RPAREN)
	return &ast.CallExpr{Callee: callee, Args: args, Base: ast.At(start, p.cur.Start)}
}

func (p *Parser) parseFieldTail(expr ast.Expr) ast.Expr {
	start := expr.Span().Start
	p.advance() // '.'
	nameTok, _ := p.expect(lexer.TOKEN_IDENT)
	return &ast.FieldExpr{Expr: expr, Field: nameTok.Literal, Base: ast.At(start, p.cur.Start)}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur.Start
	switch p.cur.Type {
	case lexer.TOKEN_INT:
		lit := p.cur.Literal
		p.advance()
		v, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			p.errs.Add(diag.Parser2, start, fmt.Sprintf("invalid integer literal %q", lit))
		}
		return &ast.IntExpr{Value: v, Base: ast.At(start, p.cur.Start)}

	case lexer.TOKEN_FLOAT:
		lit := p.cur.Literal
		p.advance()
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			p.errs.Add(diag.Parser2, start, fmt.Sprintf("invalid float literal %q", lit))
		}
		return &ast.FloatExpr{Value: v, Base: ast.At(start, p.cur.Start)}

	case lexer.TOKEN_STRING:
		lit := p.cur.Literal
		p.advance()
		return &ast.StringExpr{Value: lit, Base: ast.At(start, p.cur.Start)}

	case lexer.TOKEN_TRUE:
		p.advance()
		return &ast.BoolExpr{Value: true, Base: ast.At(start, p.cur.Start)}

	case lexer.TOKEN_FALSE:
		p.advance()
		return &ast.BoolExpr{Value: false, Base: ast.At(start, p.cur.Start)}

	case lexer.TOKEN_IDENT:
		name := p.cur.Literal
		p.advance()
		return &ast.IdentExpr{Name: name, Base: ast.At(start, p.cur.Start)}

	case lexer.TOKEN_IF:
		return p.parseIf()

	case lexer.TOKEN_LPAREN:
		return p.parseParenExpr()

	case lexer.TOKEN_LBRACE:
		return p.parseBlock()

	default:
		p.errorHere(diag.Parser1, fmt.Sprintf("unexpected token %s", p.cur.Type))
		tok := p.cur
		p.advance()
		return &ast.UnitExpr{Base: ast.At(tok.Start, tok.End)}
	}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.cur.Start
	p.advance() // 'if'
	cond := p.parseExpr(LOWEST)
	p.expect(lexer.TOKEN_COLON)
	then := p.parseBlockOrExpr()

	var elseExpr ast.Expr
	for p.curIs(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	if p.curIs(lexer.TOKEN_ELSE) {
		p.advance()
		if p.curIs(lexer.TOKEN_IF) {
			elseExpr = p.parseIf()
		} else {
			p.expect(lexer.TOKEN_COLON)
			elseExpr = p.parseBlockOrExpr()
		}
	}
	return &ast.IfExpr{Cond: cond, Then: then, Else: elseExpr, Base: ast.At(start, p.cur.Start)}
}

// parseParenExpr disambiguates krait's five parenthesized forms:
//
//	()        invalid (PARSER-1) unless followed by ':' (a function literal)
//	(,)       the empty tuple
//	(e)       a parenthesized grouping expression
//	(e,)      a one-element tuple
//	(a, b)    a tuple with >= 2 elements
func (p *Parser) parseParenExpr() ast.Expr {
	start := p.cur.Start
	p.advance() // '('

	if p.curIs(lexer.TOKEN_COMMA) {
		p.advance()
		p.expect(lexer.TOKEN_RPAREN)
		return &ast.TupleExpr{Elements: nil, Base: ast.At(start, p.cur.Start)}
	}

	// A possibly empty identifier list followed by ')' ':' is a function
	// literal.
	if fn, ok := p.tryParseFnLiteral(start); ok {
		return fn
	}

	if p.curIs(lexer.TOKEN_RPAREN) {
		p.errorHere(diag.Parser1, "empty parentheses are not a valid expression; write (,) for the empty tuple")
		p.advance()
		return &ast.UnitExpr{Base: ast.At(start, p.cur.Start)}
	}

	first := p.parseExpr(LOWEST)
	if p.curIs(lexer.TOKEN_RPAREN) {
		p.advance()
		return first // plain grouping, not a tuple
	}

	elems := []ast.Expr{first}
	sawComma := false
	for p.curIs(lexer.TOKEN_COMMA) {
		sawComma = true
		p.advance()
		if p.curIs(lexer.TOKEN_RPAREN) {
			break // trailing comma: one-tuple or n-tuple, closes below
		}
		elems = append(elems, p.parseExpr(LOWEST))
	}
	p.expect(lexer.TOKEN_RPAREN)
	if !sawComma {
		// Unreachable in practice (the loop above only runs with a comma),
		// kept for clarity of the grammar's intent.
		return first
	}
	return &ast.TupleExpr{Elements: elems, Base: ast.At(start, p.cur.Start)}
}

// tryParseFnLiteral speculatively parses the anonymous-function form
// `(param*): body`. krait's grammar makes this unambiguous with a
// tuple/group because only an identifier list followed directly by ':'
// can start a function literal; anything else falls through to ordinary
// paren/tuple parsing.
func (p *Parser) tryParseFnLiteral(start int) (ast.Expr, bool) {
	if !p.curIs(lexer.TOKEN_IDENT) && !p.curIs(lexer.TOKEN_RPAREN) {
		return nil, false
	}
	// Parse optimistically using the existing token stream: krait's grammar
	// guarantees any other use of an identifier list in parens is itself
	// reparsed identically as tuple elements if ':' doesn't follow. mark
	// checkpoints the token cursor itself (not just the scope) so a failed
	// guess can be undone completely and the caller re-reads the same
	// tokens as ordinary grouping/tuple syntax.
	savedScope := p.scope
	savedPos := p.mark()
	p.scope = newScope(p.scope)

	var params []string
	ok := true
	for p.curIs(lexer.TOKEN_IDENT) {
		params = append(params, p.cur.Literal)
		p.scope.declare(p.cur.Literal)
		p.advance()
		if p.curIs(lexer.TOKEN_COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.curIs(lexer.TOKEN_RPAREN) || !p.peekIs(lexer.TOKEN_COLON) {
		ok = false
	}
	if !ok {
		p.scope = savedScope
		p.rewind(savedPos)
		return nil, false
	}
	p.advance() // ')'
	p.advance() // ':'
	body := p.parseBlockOrExpr()
	p.scope = savedScope
	return &ast.FnExpr{Params: params, Body: body, Base: ast.At(start, p.cur.Start)}, true
}
