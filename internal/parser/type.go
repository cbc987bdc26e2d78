package parser

import (
	"viper/internal/token"
	"viper/internal/types"
)

// parseType parses a type reference: a primitive keyword, a pointer `T*`,
// a struct name, or a function pointer type `(T, T) *... -> T` (spec
// §4.2's "Function pointer types").
func (p *Parser) parseType() types.Type {
	var t types.Type

	switch {
	case token.IsTypeKeyword(p.tok.Kind):
		t = p.primitiveType(p.tok.Kind)
		p.next()
	case p.got(token.LParen):
		t = p.parseFuncPointerType()
	case p.got(token.Ident):
		name := p.tok.Value
		p.next()
		t = p.reg.DeclareStruct(name)
	default:
		p.rejectMsg("expected a type, got %s", describeTok(p.tok))
		return p.reg.ErrorSentinel()
	}

	for p.got(token.Star) {
		p.next()
		t = p.reg.PointerTo(t)
	}

	return t
}

func (p *Parser) primitiveType(kind token.Kind) types.Type {
	switch kind {
	case token.KWI8:
		return p.reg.Int(types.I8)
	case token.KWI16:
		return p.reg.Int(types.I16)
	case token.KWI32:
		return p.reg.Int(types.I32)
	case token.KWI64:
		return p.reg.Int(types.I64)
	case token.KWU8:
		return p.reg.Int(types.U8)
	case token.KWU16:
		return p.reg.Int(types.U16)
	case token.KWU32:
		return p.reg.Int(types.U32)
	case token.KWU64:
		return p.reg.Int(types.U64)
	case token.KWBool:
		return p.reg.Bool()
	case token.KWVoid:
		return p.reg.Void()
	default:
		p.rejectMsg("not a primitive type keyword")
		return p.reg.ErrorSentinel()
	}
}

// parseFuncPointerType parses `(T, T) *... -> T`: a parenthesized argument
// type list, a required `*` marking it as a function pointer (spec §4.2),
// then `-> T`.
func (p *Parser) parseFuncPointerType() types.Type {
	p.expect(token.LParen)

	var args []types.Type
	if !p.got(token.RParen) {
		args = append(args, p.parseType())
		for p.got(token.Comma) {
			p.next()
			args = append(args, p.parseType())
		}
	}
	p.expect(token.RParen)
	p.expect(token.Star)
	p.expect(token.Arrow)

	ret := p.parseType()
	return p.reg.Func(ret, args)
}
