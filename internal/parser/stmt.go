package parser

import (
	"viper/internal/ast"
	"viper/internal/source"
	"viper/internal/token"
)

// parseBlock parses a `{ stmt* }` compound block, pushing a child scope for
// its duration (spec §3: "every function body, if-branch ... opens its own
// scope").
func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.LBrace)
	p.pushScope()
	defer p.popScope()

	blk := &ast.Block{Base: ast.NewBase(start.Span, p.scp)}

	for !p.got(token.RBrace) && !p.got(token.EOF) {
		blk.Stmts = append(blk.Stmts, p.parseStmt())
	}

	end := p.expect(token.RBrace)
	blk.Base = ast.NewBase(source.Over(start.Span, end.Span), blk.Scope())

	return blk
}

// parseStmt dispatches on the leading token of a statement: `return`,
// `let`, `if`, or a bare expression statement (spec §4.2's primary
// dispatcher).
func (p *Parser) parseStmt() ast.Node {
	switch p.tok.Kind {
	case token.KWReturn:
		return p.parseReturn()
	case token.KWLet:
		return p.parseLet()
	case token.KWIf:
		return p.parseIf()
	default:
		expr := p.parseExpr()
		p.expect(token.Semi)
		return expr
	}
}

func (p *Parser) parseReturn() *ast.ReturnStmt {
	start := p.expect(token.KWReturn)

	var expr ast.Expr
	if !p.got(token.Semi) {
		expr = p.parseExpr()
	}

	end := p.expect(token.Semi)
	return &ast.ReturnStmt{Base: ast.NewBase(source.Over(start.Span, end.Span), p.scp), Expr: expr}
}

// parseLet parses `let name: T = init;`.
func (p *Parser) parseLet() *ast.VarDecl {
	start := p.expect(token.KWLet)

	nameTok := p.expect(token.Ident)
	p.expect(token.Colon)
	declType := p.parseType()

	p.expect(token.Assign)
	init := p.parseExpr()

	end := p.expect(token.Semi)

	sym := p.scp.Define(nameTok.Value, declType, nameTok.Span)

	return &ast.VarDecl{
		Base: ast.NewBase(source.Over(start.Span, end.Span), p.scp),
		Sym:  sym,
		Init: init,
	}
}

// parseIf parses `if (cond) then [else else_]` (spec §4.2). The condition
// is parsed in the enclosing scope; each branch is a single statement —
// which may itself be a braced block, but a block is not required (the
// ground-truth grammar parses the body as one statement, same as `while`
// or `for` would).
func (p *Parser) parseIf() *ast.IfStmt {
	start := p.expect(token.KWIf)
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)

	then := p.parseIfBody()

	var els ast.Node
	end := then.Span()
	if p.got(token.KWElse) {
		p.next()
		els = p.parseIfBody()
		end = els.Span()
	}

	return &ast.IfStmt{
		Base: ast.NewBase(source.Over(start.Span, end), p.scp),
		Cond: cond,
		Then: then,
		Else: els,
	}
}

// parseIfBody parses a then/else branch body: a braced block, which opens
// its own scope, or a single bare statement parsed in the enclosing scope.
func (p *Parser) parseIfBody() ast.Node {
	if p.got(token.LBrace) {
		return p.parseBlock()
	}
	return p.parseStmt()
}
