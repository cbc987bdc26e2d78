package ast

import (
	"viper/internal/scope"
	"viper/internal/source"
)

// IntLit is an integer literal, spec §3. Its Text preserves the
// lexer's radix prefix; the numeric Value64 is parsed at AST-construction
// time with the radix inferred from that prefix, per spec §4.1.
type IntLit struct {
	ExprBase
	Text    string
	Value64 uint64
}

// BoolLit is a `true`/`false` literal.
type BoolLit struct {
	ExprBase
	Value bool
}

// StringLit is a `"..."` literal with escapes already decoded by the lexer.
type StringLit struct {
	ExprBase
	Value string
}

// VarExpr is a (possibly qualified) name reference, eg. `x` or `A::B::name`
// (spec §3, §4.2 "Qualified names").
type VarExpr struct {
	ExprBase
	Path []string

	// Sym is filled in by sema's type-check pass once the name has been
	// resolved against scope.
	Sym *scope.Symbol
}

// Name returns the unqualified terminal name of the path.
func (v *VarExpr) Name() string { return v.Path[len(v.Path)-1] }

// UnaryOpKind enumerates spec §4.3's three unary operators.
type UnaryOpKind int

const (
	UnaryNegate UnaryOpKind = iota
	UnaryDeref
	UnaryAddrOf
)

// UnaryExpr is a unary operator application: `-e`, `*e`, or `&e`.
type UnaryExpr struct {
	ExprBase
	Op      UnaryOpKind
	Operand Expr
}

// BinaryOpKind enumerates spec §4.2's binary operator families, excluding
// call and member access, which get their own node kinds.
type BinaryOpKind int

const (
	BinAdd BinaryOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinLt
	BinGt
	BinLe
	BinGe
	BinEq
	BinNeq
	BinAssign
)

// BinaryExpr is a binary operator application (arithmetic, comparison, or
// assignment). Member-dot, member-arrow, and call are separate node kinds
// per spec §3.
type BinaryExpr struct {
	ExprBase
	Op       BinaryOpKind
	Lhs, Rhs Expr
}

// CallExpr is a function call: `callee(args...)`.
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// MemberAccessKind distinguishes `.` (struct field) from `->` (pointer to
// struct field), per spec §4.3.
type MemberAccessKind int

const (
	MemberDot MemberAccessKind = iota
	MemberArrow
)

// MemberAccess is a `e.f` or `e->f` expression.
type MemberAccess struct {
	ExprBase
	Kind      MemberAccessKind
	Operand   Expr
	FieldName string
	FieldSpan *source.Span

	// FieldIndex is resolved by sema's type-check pass.
	FieldIndex int
}

// ImplicitCast wraps an operand with a compiler-inserted conversion to
// Type() (spec §3 invariant (ii), §4.3). It is only ever constructed by
// sema — the parser never emits one.
type ImplicitCast struct {
	ExprBase
	Operand Expr
}
