// Package ast defines the abstract syntax tree the parser produces: a
// tagged sum type expressed as a closed set of Go structs implementing a
// common Node interface, per spec §9 ("The AST is the canonical sum type —
// express it as a tagged variant with pattern matching, not as a
// dynamically-dispatched class hierarchy"). Grounded on the teacher's
// ast.ASTNode / ast.ASTBase pattern (ComedicChimera/chai
// bootstrap/ast/ast.go).
package ast

import (
	"viper/internal/scope"
	"viper/internal/source"
	"viper/internal/types"
)

// Node is the common interface of every AST node: expressions, statements,
// and globals alike, per spec §3 ("AST node. Common header: scope pointer,
// inferred type ..., originating token").
type Node interface {
	Span() *source.Span
	Scope() *scope.Scope
}

// Expr is implemented by every expression node variant. Expressions
// additionally carry a settable inferred type, per spec §3 invariant (i):
// "every expression node's type field is set before lowering."
type Expr interface {
	Node
	Type() types.Type
	SetType(types.Type)
}

// Base is embedded by every node and supplies the common header fields:
// scope pointer and originating span. It deliberately does not carry a
// token value — callers that need the originating lexeme read it from the
// span via the source buffer, keeping Base small and copyable.
type Base struct {
	span *source.Span
	scp  *scope.Scope
}

// NewBase constructs a Base over span in scp. Spec §3 invariant (iii): a
// node's scope pointer is never nil.
func NewBase(span *source.Span, scp *scope.Scope) Base {
	if scp == nil {
		panic("ast: node constructed with nil scope")
	}
	return Base{span: span, scp: scp}
}

func (b Base) Span() *source.Span   { return b.span }
func (b Base) Scope() *scope.Scope  { return b.scp }

// ExprBase embeds Base and additionally tracks an expression's inferred
// type, initially nil ("undetermined", per spec §3).
type ExprBase struct {
	Base
	typ types.Type
}

// NewExprBase constructs an ExprBase over span in scp.
func NewExprBase(span *source.Span, scp *scope.Scope) ExprBase {
	return ExprBase{Base: NewBase(span, scp)}
}

func (e *ExprBase) Type() types.Type     { return e.typ }
func (e *ExprBase) SetType(t types.Type) { e.typ = t }
