package parser

import (
	"viper/internal/ast"
	"viper/internal/scope"
	"viper/internal/source"
	"viper/internal/token"
	"viper/internal/types"
)

// parseGlobal dispatches on a top-level construct: `export`, `import`,
// `func`/`pure func`, or `class` (spec §4.2 "Global constructs").
func (p *Parser) parseGlobal() ast.Node {
	switch p.tok.Kind {
	case token.KWExport:
		return p.parseExport()
	case token.KWImport:
		return p.parseImport()
	case token.KWPure, token.KWFunc:
		return p.parseFuncDef(false)
	case token.KWClass:
		return p.parseClassDef(false)
	default:
		p.rejectMsg("expected a global declaration, got %s", describeTok(p.tok))
		return nil
	}
}

// parseExport parses `export {...}` or `export <decl>` (spec §4.2).
func (p *Parser) parseExport() ast.Node {
	p.expect(token.KWExport)

	if p.got(token.LBrace) {
		p.next()
		var decls []ast.Node
		for !p.got(token.RBrace) && !p.got(token.EOF) {
			decls = append(decls, p.parseExportedDecl())
		}
		p.expect(token.RBrace)
		// A braced export block is one global: a single member is returned
		// as-is, several members are wrapped in an unnamed ast.Namespace
		// (the file's Globals list is not flattened). Every member already
		// carries its Exported flag.
		if len(decls) == 1 {
			return decls[0]
		}
		return &ast.Namespace{Base: ast.NewBase(p.spanHere(), p.scp), Decls: decls}
	}

	return p.parseExportedDecl()
}

func (p *Parser) parseExportedDecl() ast.Node {
	switch p.tok.Kind {
	case token.KWPure, token.KWFunc:
		return p.parseFuncDef(true)
	case token.KWClass:
		return p.parseClassDef(true)
	default:
		p.rejectMsg("only `func` and `class` declarations may be exported, got %s", describeTok(p.tok))
		return nil
	}
}

// parseImport parses `import A.B.C;` (spec §4.2, §6). The path is
// recognized with `.`-separated identifiers as the teacher's
// `parsePkgPath` does, distinct from the `::`-separated qualified-name
// operator used inside expressions.
func (p *Parser) parseImport() *ast.Import {
	start := p.expect(token.KWImport)

	path := []string{p.expect(token.Ident).Value}
	for p.got(token.Dot) {
		p.next()
		path = append(path, p.expect(token.Ident).Value)
	}

	end := p.expect(token.Semi)
	span := source.Over(start.Span, end.Span)

	imp := &ast.Import{Base: ast.NewBase(span, p.scp), Path: path}

	if p.imp != nil {
		if resolved, ok := p.imp.Resolve(path, span, p.scp); ok {
			imp.ResolvedPath = resolved
		}
	}

	return imp
}

// parseFuncDef parses `pure? func name(arg: T, ...) -> T { body }` or a
// declaration-only `...;` form (spec §4.2).
func (p *Parser) parseFuncDef(exported bool) *ast.FuncDef {
	start := p.tok

	pure := false
	if p.got(token.KWPure) {
		pure = true
		p.next()
	}
	p.expect(token.KWFunc)

	nameTok := p.expect(token.Ident)

	p.expect(token.LParen)

	fnScope := p.pushScope()
	fnScope.Pure = pure

	var params []ast.FuncParam
	if !p.got(token.RParen) {
		params = append(params, p.parseFuncParam())
		for p.got(token.Comma) {
			p.next()
			params = append(params, p.parseFuncParam())
		}
	}
	p.expect(token.RParen)

	p.expect(token.Arrow)
	retType := p.parseType()
	fnScope.ExpectedReturn = retType

	argTypes := make([]types.Type, len(params))
	for i, param := range params {
		argTypes[i] = param.Type
	}
	sig := p.reg.Func(retType, argTypes)

	sym := &scope.Symbol{Name: nameTok.Value, Type: sig, Pure: pure, Exported: exported, DefSpan: nameTok.Span}
	// Function symbols are declared in the scope enclosing the function
	// (not the function's own body scope), so calls and recursion resolve.
	fnScope.Parent.DefineSymbol(sym)

	fd := &ast.FuncDef{
		Base:     ast.NewBase(nameTok.Span, fnScope.Parent),
		Sym:      sym,
		Name:     nameTok.Value,
		Pure:     pure,
		Exported: exported,
		Params:   params,
		RetType:  retType,
		FnScope:  fnScope,
	}

	if p.got(token.Semi) {
		// Declaration-only form: pop the now-unused body scope.
		p.next()
		p.popScope()
		return fd
	}

	fd.Body = p.parseBlockInScope(fnScope)
	p.popScope()

	closeSpan := nameTok.Span
	if fd.Body != nil {
		closeSpan = fd.Body.Span()
	}
	fd.Base = ast.NewBase(source.Over(start.Span, closeSpan), fd.Scope())

	return fd
}

func (p *Parser) parseFuncParam() ast.FuncParam {
	nameTok := p.expect(token.Ident)
	p.expect(token.Colon)
	t := p.parseType()

	sym := p.scp.Define(nameTok.Value, t, nameTok.Span)

	return ast.FuncParam{Name: nameTok.Value, Type: t, Sym: sym}
}

// parseBlockInScope parses a block reusing an already-pushed scope (the
// function body shares its scope with its parameter list) rather than
// pushing a fresh child, unlike a bare parseBlock call.
func (p *Parser) parseBlockInScope(scp *scope.Scope) *ast.Block {
	start := p.expect(token.LBrace)

	blk := &ast.Block{Base: ast.NewBase(start.Span, scp)}
	for !p.got(token.RBrace) && !p.got(token.EOF) {
		blk.Stmts = append(blk.Stmts, p.parseStmt())
	}
	end := p.expect(token.RBrace)
	blk.Base = ast.NewBase(source.Over(start.Span, end.Span), scp)

	return blk
}

// parseClassDef parses `class Name { field: T; field: T; }` (spec §4.2).
func (p *Parser) parseClassDef(exported bool) *ast.ClassDef {
	start := p.expect(token.KWClass)
	nameTok := p.expect(token.Ident)

	p.expect(token.LBrace)

	var fields []ast.ClassField
	for !p.got(token.RBrace) && !p.got(token.EOF) {
		fNameTok := p.expect(token.Ident)
		p.expect(token.Colon)
		fType := p.parseType()
		p.expect(token.Semi)
		fields = append(fields, ast.ClassField{Name: fNameTok.Value, Type: fType})
	}

	end := p.expect(token.RBrace)

	regFields := make([]types.Field, len(fields))
	for i, f := range fields {
		regFields[i] = types.Field{Name: f.Name, Type: f.Type}
	}
	st := p.reg.CompleteStruct(nameTok.Value, regFields)

	typeSym := &scope.Symbol{Name: nameTok.Value, Type: st, Exported: exported, DefSpan: nameTok.Span}
	p.scp.DefineSymbol(typeSym)

	return &ast.ClassDef{
		Base:     ast.NewBase(source.Over(start.Span, end.Span), p.scp),
		Name:     nameTok.Value,
		Exported: exported,
		Fields:   fields,
		Struct:   st,
	}
}
