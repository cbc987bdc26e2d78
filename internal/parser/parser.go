// Package parser implements the Pratt-style recursive-descent parser of
// spec §4.2: tokens to AST, constructing symbols and scopes as it goes.
// Grounded on the teacher's syntax.Parser (ComedicChimera/chai
// bootstrap/syntax/parser.go): a single current-token cursor with
// assert/want-style helpers, adapted from the teacher's pull-based lexer to
// operate over the fully-materialized token slice the lexer's scan pass
// (spec §4.1) already validated.
package parser

import (
	"viper/internal/ast"
	"viper/internal/report"
	"viper/internal/scope"
	"viper/internal/source"
	"viper/internal/token"
	"viper/internal/types"
)

// Importer is the narrow interface the parser needs of the import manager
// (internal/importer) to resolve an `import` global (spec §4.4). Declared
// here rather than imported directly to avoid a parser<->importer cycle,
// since the importer must itself invoke a parser on the imported file.
type Importer interface {
	Resolve(path []string, span *source.Span, importerScope *scope.Scope) (resolvedPath string, ok bool)
}

// Parser parses a single source file's token stream into an AST, declaring
// symbols and pushing/popping scopes as it descends into function bodies
// and if-branches (spec §4.2: "The parser mutates the scope tree live").
type Parser struct {
	file   string
	toks   []*token.Token
	pos    int
	tok    *token.Token
	reg    *types.Registry
	global *scope.Scope
	scp    *scope.Scope
	imp    Importer
}

// New creates a parser for file's token stream. global is the scope the
// file's top-level declarations are defined into. The driver and the
// importer give each file its own child of the compilation's root scope, so
// another file's names are visible only through an import.
func New(file string, toks []*token.Token, reg *types.Registry, global *scope.Scope, imp Importer) *Parser {
	p := &Parser{file: file, toks: toks, reg: reg, global: global, scp: global, imp: imp}
	if len(toks) > 0 {
		p.tok = toks[0]
	}
	return p
}

// ParseFile parses the entire token stream as a top-level file, per spec
// §4.2's global constructs. On the first parse error (spec §7 kind 2) the
// parse unwinds via report.Raise; ParseFile recovers that unwind itself and
// returns nil, leaving the recorded error to stop the pipeline.
func (p *Parser) ParseFile(name string) *ast.File {
	defer report.Recover()

	f := &ast.File{
		Base: ast.NewBase(p.spanHere(), p.global),
		Name: name,
	}

	for !p.got(token.EOF) {
		f.Globals = append(f.Globals, p.parseGlobal())
	}

	return f
}

// -----------------------------------------------------------------------------
// Cursor primitives.

func (p *Parser) next() {
	p.pos++
	if p.pos < len(p.toks) {
		p.tok = p.toks[p.pos]
	} else {
		p.tok = &token.Token{Kind: token.EOF}
	}
}

func (p *Parser) got(kind token.Kind) bool {
	return p.tok.Kind == kind
}

// expect asserts the current token is of kind and advances past it,
// aborting the parse with a syntactic error otherwise (spec §7 kind 2).
func (p *Parser) expect(kind token.Kind) *token.Token {
	if !p.got(kind) {
		p.reject(kind)
	}
	tok := p.tok
	p.next()
	return tok
}

func (p *Parser) reject(expected token.Kind) {
	report.Raise(p.tok.Span, "unexpected token: expected %s, got %s", expected, describeTok(p.tok))
}

func (p *Parser) rejectMsg(format string, args ...any) {
	report.Raise(p.tok.Span, format, args...)
}

func describeTok(t *token.Token) string {
	if t.Kind == token.Ident || t.Kind == token.IntLit || t.Kind == token.StringLit {
		return t.Value
	}
	return t.Kind.String()
}

func (p *Parser) spanHere() *source.Span {
	return p.tok.Span
}

// -----------------------------------------------------------------------------
// Scope helpers: the parser mutates the scope tree live (spec §4.2).

func (p *Parser) pushScope() *scope.Scope {
	p.scp = scope.NewChild(p.scp)
	return p.scp
}

func (p *Parser) popScope() {
	p.scp = p.scp.Parent
}
