// Package parser turns a krait token stream into an internal/ast tree.
package parser

import (
	"fmt"

	"github.com/kraitlang/krait/internal/ast"
	"github.com/kraitlang/krait/pkg/diag"
	"github.com/kraitlang/krait/pkg/lexer"
)

// scope is the parser's own symbol table, used purely for static checks
// (PARSER-5/6/7) — it never influences evaluation.
type scope struct {
	names  map[string]bool
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{names: make(map[string]bool), parent: parent}
}

// declare registers name in this scope, returning false if it was already
// bound in this exact scope (same-scope rebinding is PARSER-5; shadowing a
// name from an enclosing scope is always allowed).
func (s *scope) declare(name string) bool {
	if s.names[name] {
		return false
	}
	s.names[name] = true
	return true
}

// Parser is krait's recursive-descent, precedence-climbing parser.
//
// Every token the lexer ever produces is kept in tokens, indexed by pos, so
// a speculative parse (tryParseFnLiteral's `(params): body` lookahead) can
// roll the cursor back to an exact checkpoint with mark/rewind instead of
// only undoing its side effects on p.scope.
type Parser struct {
	lex *lexer.Lexer
	src string

	tokens []lexer.Token
	pos    int

	cur  lexer.Token
	peek lexer.Token

	errs  *ParseErrors
	scope *scope
}

// New creates a Parser reading tokens from lex, whose underlying source
// text is src (kept around so diagnostics can render excerpts).
func New(lex *lexer.Lexer, src string) *Parser {
	p := &Parser{lex: lex, src: src, errs: NewParseErrors(src), scope: newScope(nil)}
	p.ensureToken(1)
	p.cur = p.tokens[0]
	p.peek = p.tokens[1]
	return p
}

// ensureToken pulls tokens from the lexer until tokens[i] exists.
func (p *Parser) ensureToken(i int) {
	for len(p.tokens) <= i {
		p.tokens = append(p.tokens, p.lex.NextToken())
	}
}

func (p *Parser) advance() {
	p.pos++
	p.ensureToken(p.pos + 1)
	p.cur = p.tokens[p.pos]
	p.peek = p.tokens[p.pos+1]
}

// mark returns a checkpoint for the current cursor position.
func (p *Parser) mark() int { return p.pos }

// rewind restores the cursor to a position previously returned by mark,
// for a speculative parse that turned out not to match.
func (p *Parser) rewind(pos int) {
	p.pos = pos
	p.cur = p.tokens[p.pos]
	p.peek = p.tokens[p.pos+1]
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

// skipNewlines consumes any run of NEWLINE tokens, which separate
// statements but never carry meaning on their own.
func (p *Parser) skipNewlines() {
	for p.curIs(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
}

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, bool) {
	if p.cur.Type != t {
		p.errorHere(diag.Parser1, fmt.Sprintf("expected %s, found %s", t, p.cur.Type))
		return p.cur, false
	}
	tok := p.cur
	p.advance()
	return tok, true
}

func (p *Parser) errorHere(code diag.Code, msg string) {
	p.errs.Add(code, p.cur.Start, msg)
}

// Errors returns every PARSER-* error accumulated during Parse.
func (p *Parser) Errors() *ParseErrors { return p.errs }

// ParseProgram parses an entire file: a sequence of top-level statements
// ending at EOF, exactly as if the whole file were one block's body.
func (p *Parser) ParseProgram() *ast.BlockExpr {
	start := p.cur.Start
	stmts := p.parseStatements(lexer.TOKEN_EOF)
	prog := &ast.BlockExpr{Statements: stmts, Base: ast.At(start, p.cur.Start)}
	p.resolve(prog)
	return prog
}

// parseStatements parses statements separated by NEWLINE until it sees end
// or runs out of input.
func (p *Parser) parseStatements(end lexer.TokenType) []ast.Statement {
	var stmts []ast.Statement
	p.skipNewlines()
	for !p.curIs(end) && !p.curIs(lexer.TOKEN_EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.curIs(lexer.TOKEN_NEWLINE) {
			p.skipNewlines()
			continue
		}
		if p.curIs(end) || p.curIs(lexer.TOKEN_EOF) {
			break
		}
		// A statement that ended with an offside block has already consumed
		// the block's DEDENT, which separates it from the next statement.
		if p.pos > 0 && p.tokens[p.pos-1].Type == lexer.TOKEN_DEDENT {
			continue
		}
		// No separator found and we're not at the terminator: the grammar
		// expectation failed right here.
		p.errorHere(diag.Parser1, fmt.Sprintf("unexpected token %s", p.cur.Type))
		p.advance()
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.TOKEN_FN:
		return p.parseFnDecl()
	case lexer.TOKEN_STRUCT:
		return p.parseStructDecl()
	case lexer.TOKEN_IDENT:
		if p.peekIs(lexer.TOKEN_ASSIGN) {
			return p.parseBinding()
		}
	}
	start := p.cur.Start
	expr := p.parseExpr(LOWEST)
	return &ast.ExprStmt{Value: expr, Base: ast.At(start, p.cur.Start)}
}

func (p *Parser) parseBinding() ast.Statement {
	start := p.cur.Start
	name := p.cur.Literal
	if !p.scope.declare(name) {
		p.errorHere(diag.Parser5, fmt.Sprintf("%q is already bound in this scope", name))
	}
	p.advance() // name
	p.advance() // '='
	value := p.parseExpr(LOWEST)
	return &ast.BindingStmt{Name: name, Value: value, Base: ast.At(start, p.cur.Start)}
}

func (p *Parser) parseFnDecl() ast.Statement {
	start := p.cur.Start
	p.advance() // 'fn'
	nameTok, ok := p.expect(lexer.TOKEN_IDENT)
	name := nameTok.Literal
	if ok && !p.scope.declare(name) {
		p.errorHere(diag.Parser5, fmt.Sprintf("%q is already bound in this scope", name))
	}
	fn := p.parseFnTail(start)
	fn.Name = name
	return &ast.FnDeclStmt{Name: name, Fn: fn, Base: ast.At(start, p.cur.Start)}
}

func (p *Parser) parseFnTail(start int) *ast.FnExpr {
	p.expectOpen(lexer.TOKEN_LPAREN)
	params := p.parseParamList()
	p.expectClose(lexer.TOKEN_RPAREN)
	p.expect(lexer.TOKEN_COLON)
	p.scope = newScope(p.scope)
	for _, param := range params {
		p.scope.declare(param)
	}
	body := p.parseBlockOrExpr()
	p.scope = p.scope.parent
	return &ast.FnExpr{Params: params, Body: body, Base: ast.At(start, p.cur.Start)}
}

func (p *Parser) parseParamList() []string {
	var params []string
	for !p.curIs(lexer.TOKEN_RPAREN) && !p.curIs(lexer.TOKEN_EOF) {
		tok, ok := p.expect(lexer.TOKEN_IDENT)
		if ok {
			params = append(params, tok.Literal)
		}
		if p.curIs(lexer.TOKEN_COMMA) {
			p.advance()
		}
	}
	return params
}

// parseStructParamList parses struct_decl's "(self ("," param)*)" list,
// requiring the literal name "self" first and excluding it from the
// returned field list — self is bound specially inside the body, not as a
// constructor argument (spec.md §4.4's struct lowering).
func (p *Parser) parseStructParamList() []string {
	if tok, ok := p.expect(lexer.TOKEN_IDENT); ok && tok.Literal != "self" {
		p.errorHere(diag.Parser1, fmt.Sprintf(`expected "self", found %q`, tok.Literal))
	}
	if p.curIs(lexer.TOKEN_COMMA) {
		p.advance()
	}
	return p.parseParamList()
}

func (p *Parser) parseStructDecl() ast.Statement {
	start := p.cur.Start
	p.advance() // 'struct'
	nameTok, ok := p.expect(lexer.TOKEN_IDENT)
	name := nameTok.Literal
	if ok && !p.scope.declare(name) {
		p.errorHere(diag.Parser5, fmt.Sprintf("%q is already bound in this scope", name))
	}
	p.expectOpen(lexer.TOKEN_LPAREN)
	fields := p.parseStructParamList()
	p.expectClose(lexer.TOKEN_RPAREN)
	p.expect(lexer.TOKEN_COLON)

	var body *ast.BlockExpr
	if p.curIs(lexer.TOKEN_NEWLINE) && p.peekIs(lexer.TOKEN_INDENT) {
		p.advance()
	}
	if p.curIs(lexer.TOKEN_LBRACE) || p.curIs(lexer.TOKEN_INDENT) {
		p.scope = newScope(p.scope)
		for _, f := range fields {
			p.scope.declare(f)
		}
		p.scope.declare("self")
		body = p.parseBlock()
		p.scope = p.scope.parent
	}
	return &ast.StructDeclStmt{Name: name, Fields: fields, Body: body, Base: ast.At(start, p.cur.Start)}
}

// expectOpen/expectClose consume a bracket whether or not layout tokens
// slipped in around it (parentheses suspend layout tracking in the lexer,
// but braces don't, so a block-opening '{' may be preceded by an INDENT).
func (p *Parser) expectOpen(t lexer.TokenType) {
	for p.curIs(lexer.TOKEN_NEWLINE) || p.curIs(lexer.TOKEN_INDENT) {
		p.advance()
	}
	p.expect(t)
}

func (p *Parser) expectClose(t lexer.TokenType) {
	p.expect(t)
}

// parseBlockOrExpr accepts either an explicit `{ ... }` / offside block, or
// a single trailing expression on the same line (`fn double(x): x * 2`).
func (p *Parser) parseBlockOrExpr() ast.Expr {
	// An offside block starts on the next line: the lexer emits the line's
	// NEWLINE before the INDENT that opens the block.
	if p.curIs(lexer.TOKEN_NEWLINE) && p.peekIs(lexer.TOKEN_INDENT) {
		p.advance()
	}
	if p.curIs(lexer.TOKEN_LBRACE) || p.curIs(lexer.TOKEN_INDENT) {
		return p.parseBlock()
	}
	return p.parseExpr(LOWEST)
}

func (p *Parser) parseBlock() *ast.BlockExpr {
	start := p.cur.Start
	p.scope = newScope(p.scope)
	defer func() { p.scope = p.scope.parent }()

	if p.curIs(lexer.TOKEN_LBRACE) {
		p.advance()
		stmts := p.parseStatements(lexer.TOKEN_RBRACE)
		p.expect(lexer.TOKEN_RBRACE)
		return &ast.BlockExpr{Statements: stmts, Base: ast.At(start, p.cur.Start)}
	}

	p.expect(lexer.TOKEN_INDENT)
	stmts := p.parseStatements(lexer.TOKEN_DEDENT)
	if p.curIs(lexer.TOKEN_DEDENT) {
		p.advance()
	}
	return &ast.BlockExpr{Statements: stmts, Base: ast.At(start, p.cur.Start)}
}
