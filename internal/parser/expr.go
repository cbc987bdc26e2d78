package parser

import (
	"strconv"
	"strings"

	"viper/internal/ast"
	"viper/internal/source"
	"viper/internal/token"
)

// precTable is spec §4.2's precedence table, binary operators only
// (postfix call/member and prefix unary are handled outside the table).
// Higher numbers bind tighter. precedenceParse is a table-driven
// precedence-climbing Pratt parser, grounded on the teacher's
// syntax.precedenceParse (ComedicChimera/chai
// bootstrap/syntax/parse_expr.go), generalized from the teacher's
// array-of-levels scheme to the single numeric-precedence scheme spec §4.2
// specifies directly.
var precTable = map[token.Kind]struct {
	prec  int
	binOp ast.BinaryOpKind
}{
	token.Star:   {75, ast.BinMul},
	token.Slash:  {75, ast.BinDiv},
	token.Plus:   {70, ast.BinAdd},
	token.Minus:  {70, ast.BinSub},
	token.Lt:     {55, ast.BinLt},
	token.Gt:     {55, ast.BinGt},
	token.Le:     {55, ast.BinLe},
	token.Ge:     {55, ast.BinGe},
	token.EqEq:   {50, ast.BinEq},
	token.NotEq:  {50, ast.BinNeq},
	token.Assign: {20, ast.BinAssign},
}

const assignPrec = 20

// parseExpr parses a full expression via precedence climbing starting at
// precedence 0 (lowest), so assignment (the lowest-precedence operator) is
// considered.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(p.parseUnary(), 0)
}

// parseBinary climbs the precedence table starting from lhs. Binary
// operators are left-associative except assignment, which is
// right-associative per spec §4.2.
func (p *Parser) parseBinary(lhs ast.Expr, minPrec int) ast.Expr {
	for {
		info, ok := precTable[p.tok.Kind]
		if !ok || info.prec < minPrec {
			return lhs
		}

		opTok := p.tok
		p.next()

		rhs := p.parseUnary()

		// Left-associative: a higher-or-equal-precedence operator to our
		// right binds tighter only if its precedence strictly exceeds ours
		// (or, for assignment, is equal — right associativity).
		for {
			nextInfo, ok := precTable[p.tok.Kind]
			if !ok {
				break
			}
			if nextInfo.prec > info.prec || (info.prec == assignPrec && nextInfo.prec == assignPrec) {
				rhs = p.parseBinary(rhs, nextInfo.prec)
				continue
			}
			break
		}

		lhs = &ast.BinaryExpr{
			ExprBase: ast.NewExprBase(opTok.Span, p.scp),
			Op:       info.binOp,
			Lhs:      lhs,
			Rhs:      rhs,
		}
	}
}

// parseUnary handles spec §4.2's prefix-precedence-85 operators: unary `-`,
// `&`, `*`. Anything else falls through to the postfix/primary parser.
func (p *Parser) parseUnary() ast.Expr {
	switch p.tok.Kind {
	case token.Minus:
		tok := p.tok
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryExpr{ExprBase: ast.NewExprBase(tok.Span, p.scp), Op: ast.UnaryNegate, Operand: operand}
	case token.Amp:
		tok := p.tok
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryExpr{ExprBase: ast.NewExprBase(tok.Span, p.scp), Op: ast.UnaryAddrOf, Operand: operand}
	case token.Star:
		tok := p.tok
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryExpr{ExprBase: ast.NewExprBase(tok.Span, p.scp), Op: ast.UnaryDeref, Operand: operand}
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

// parsePostfix handles spec §4.2's precedence-90 operators: call `(`, `.`,
// `->`, looping to allow chains like `a.b.c()->d`.
func (p *Parser) parsePostfix(operand ast.Expr) ast.Expr {
	for {
		switch p.tok.Kind {
		case token.LParen:
			p.next()
			var args []ast.Expr
			if !p.got(token.RParen) {
				args = append(args, p.parseExpr())
				for p.got(token.Comma) {
					p.next()
					args = append(args, p.parseExpr())
				}
			}
			end := p.expect(token.RParen)
			operand = &ast.CallExpr{
				ExprBase: ast.NewExprBase(source.Over(operand.Span(), end.Span), p.scp),
				Callee:   operand,
				Args:     args,
			}
		case token.Dot:
			p.next()
			fieldTok := p.expect(token.Ident)
			operand = &ast.MemberAccess{
				ExprBase:  ast.NewExprBase(source.Over(operand.Span(), fieldTok.Span), p.scp),
				Kind:      ast.MemberDot,
				Operand:   operand,
				FieldName: fieldTok.Value,
				FieldSpan: fieldTok.Span,
			}
		case token.Arrow:
			p.next()
			fieldTok := p.expect(token.Ident)
			operand = &ast.MemberAccess{
				ExprBase:  ast.NewExprBase(source.Over(operand.Span(), fieldTok.Span), p.scp),
				Kind:      ast.MemberArrow,
				Operand:   operand,
				FieldName: fieldTok.Value,
				FieldSpan: fieldTok.Span,
			}
		default:
			return operand
		}
	}
}

// parsePrimary dispatches on the current token: integer/string literals,
// true/false, identifier-started (possibly qualified) names, and
// parenthesized sub-expressions.
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.tok

	switch tok.Kind {
	case token.IntLit:
		p.next()
		return &ast.IntLit{
			ExprBase: ast.NewExprBase(tok.Span, p.scp),
			Text:     tok.Value,
			Value64:  parseIntLiteral(tok.Value),
		}
	case token.StringLit:
		p.next()
		return &ast.StringLit{ExprBase: ast.NewExprBase(tok.Span, p.scp), Value: tok.Value}
	case token.KWTrue:
		p.next()
		return &ast.BoolLit{ExprBase: ast.NewExprBase(tok.Span, p.scp), Value: true}
	case token.KWFalse:
		p.next()
		return &ast.BoolLit{ExprBase: ast.NewExprBase(tok.Span, p.scp), Value: false}
	case token.Ident:
		return p.parseVarExpr()
	case token.LParen:
		p.next()
		inner := p.parseExpr()
		p.expect(token.RParen)
		return inner
	default:
		p.rejectMsg("expected an expression, got %s", describeTok(tok))
		return nil
	}
}

// parseVarExpr parses a possibly-qualified name path: `A::B::name`, per
// spec §4.2 "Qualified names".
func (p *Parser) parseVarExpr() *ast.VarExpr {
	start := p.tok
	path := []string{p.expect(token.Ident).Value}

	for p.got(token.ColonColon) {
		p.next()
		path = append(path, p.expect(token.Ident).Value)
	}

	end := p.toks[p.pos-1]
	return &ast.VarExpr{
		ExprBase: ast.NewExprBase(source.Over(start.Span, end.Span), p.scp),
		Path:     path,
	}
}

// parseIntLiteral parses the numeric value of an integer literal token,
// with the radix inferred from its lexical prefix per spec §4.1: a leading
// `0x` is hex, `0b` is binary, a leading `0` otherwise is octal, anything
// else is decimal. Digit separators have already been stripped by the
// lexer.
func parseIntLiteral(text string) uint64 {
	base := 10
	digits := text

	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		base = 16
		digits = text[2:]
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		base = 2
		digits = text[2:]
	case strings.HasPrefix(text, "0") && len(text) > 1:
		base = 8
		digits = text[1:]
	}

	v, _ := strconv.ParseUint(digits, base, 64)
	return v
}
