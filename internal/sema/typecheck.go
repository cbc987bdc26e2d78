package sema

import (
	"viper/internal/ast"
	"viper/internal/report"
	"viper/internal/types"
)

// checkBlock type-checks every statement of blk in order. retType is the
// enclosing function's expected return type, threaded down so return
// statements can be checked against it.
func (a *Analyzer) checkBlock(blk *ast.Block, retType types.Type) {
	for i, stmt := range blk.Stmts {
		blk.Stmts[i] = a.checkStmt(stmt, retType)
	}
}

// checkStmt type-checks a single statement, returning the (possibly
// rewritten, for a bare expression statement) node to store back in its
// parent's statement list.
func (a *Analyzer) checkStmt(stmt ast.Node, retType types.Type) ast.Node {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		s.Init = a.checkExpr(s.Init)
		s.Init = a.coerceTo(s.Init, s.Sym.Type)
		return s

	case *ast.ReturnStmt:
		if s.Expr == nil {
			if _, ok := retType.(*types.VoidType); !ok {
				report.Error(s.Span(), "missing return value: function expects %s", retType)
			}
			return s
		}
		s.Expr = a.checkExpr(s.Expr)
		s.Expr = a.coerceTo(s.Expr, retType)
		return s

	case *ast.IfStmt:
		s.Cond = a.checkExpr(s.Cond)
		s.Cond = a.coerceTo(s.Cond, a.reg.Bool())
		s.Then = a.checkStmt(s.Then, retType)
		if s.Else != nil {
			s.Else = a.checkStmt(s.Else, retType)
		}
		return s

	case *ast.Block:
		a.checkBlock(s, retType)
		return s

	case ast.Expr:
		return a.checkExpr(s)

	default:
		return stmt
	}
}

// checkExpr infers e's type (storing it via SetType) and returns the node
// to use in e's place: e itself, unless a legal implicit conversion had to
// be inserted elsewhere by a caller via coerceTo.
func (a *Analyzer) checkExpr(e ast.Expr) ast.Expr {
	switch ex := e.(type) {
	case *ast.IntLit:
		ex.SetType(a.reg.Int(types.I32))
		return ex

	case *ast.BoolLit:
		ex.SetType(a.reg.Bool())
		return ex

	case *ast.StringLit:
		ex.SetType(a.reg.PointerTo(a.reg.Int(types.U8)))
		return ex

	case *ast.VarExpr:
		sym, ok := ex.Scope().LookupQualified(ex.Path)
		if !ok {
			report.Error(ex.Span(), "undeclared identifier `%s`", ex.Name())
			ex.SetType(a.reg.ErrorSentinel())
			return ex
		}
		ex.Sym = sym
		ex.SetType(sym.Type)
		return ex

	case *ast.UnaryExpr:
		return a.checkUnary(ex)

	case *ast.BinaryExpr:
		return a.checkBinary(ex)

	case *ast.CallExpr:
		return a.checkCall(ex)

	case *ast.MemberAccess:
		return a.checkMemberAccess(ex)

	case *ast.ImplicitCast:
		// Only ever constructed by this package; re-checking is a no-op.
		return ex

	default:
		return e
	}
}

func (a *Analyzer) checkUnary(ex *ast.UnaryExpr) ast.Expr {
	ex.Operand = a.checkExpr(ex.Operand)
	opType := ex.Operand.Type()

	switch ex.Op {
	case ast.UnaryNegate:
		if _, ok := opType.(*types.IntType); !ok {
			report.Error(ex.Span(), "unary `-` requires an integer operand, got %s", opType)
			ex.SetType(a.reg.ErrorSentinel())
			return ex
		}
		ex.SetType(opType)

	case ast.UnaryDeref:
		ptr, ok := opType.(*types.PointerType)
		if !ok {
			report.Error(ex.Span(), "unary `*` requires a pointer operand, got %s", opType)
			ex.SetType(a.reg.ErrorSentinel())
			return ex
		}
		ex.SetType(ptr.Elem)

	case ast.UnaryAddrOf:
		if !isAddressable(ex.Operand) {
			report.Error(ex.Span(), "cannot take the address of a non-addressable expression")
			ex.SetType(a.reg.ErrorSentinel())
			return ex
		}
		ex.SetType(a.reg.PointerTo(opType))
	}

	return ex
}

// isAddressable reports whether e is a variable expression, a dereference,
// or a member access — the three addressable expression forms spec §4.3
// names for unary `&`.
func isAddressable(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.VarExpr:
		return true
	case *ast.UnaryExpr:
		return v.Op == ast.UnaryDeref
	case *ast.MemberAccess:
		return true
	}
	return false
}

func (a *Analyzer) checkBinary(ex *ast.BinaryExpr) ast.Expr {
	ex.Lhs = a.checkExpr(ex.Lhs)

	if ex.Op == ast.BinAssign {
		ex.Rhs = a.checkExpr(ex.Rhs)
		ex.Rhs = a.coerceTo(ex.Rhs, ex.Lhs.Type())
		ex.SetType(ex.Lhs.Type())
		return ex
	}

	ex.Rhs = a.checkExpr(ex.Rhs)

	lt, rok := ex.Lhs.Type().(*types.IntType)
	_, rtOk := ex.Rhs.Type().(*types.IntType)
	if !rok || !rtOk {
		report.Error(ex.Span(), "operator requires integer operands, got %s and %s", ex.Lhs.Type(), ex.Rhs.Type())
		ex.SetType(a.reg.ErrorSentinel())
		return ex
	}

	ex.Rhs = a.coerceTo(ex.Rhs, lt)

	switch ex.Op {
	case ast.BinAdd, ast.BinSub, ast.BinMul, ast.BinDiv:
		ex.SetType(lt)
	default:
		ex.SetType(a.reg.Bool())
	}

	return ex
}

func (a *Analyzer) checkCall(ex *ast.CallExpr) ast.Expr {
	ex.Callee = a.checkExpr(ex.Callee)

	ft, ok := ex.Callee.Type().(*types.FuncType)
	if !ok {
		if _, isErr := ex.Callee.Type().(*types.ErrorType); !isErr {
			report.Error(ex.Span(), "called expression is not a function")
		}
		ex.SetType(a.reg.ErrorSentinel())
		return ex
	}

	if len(ex.Args) != len(ft.Args) {
		report.Error(ex.Span(), "wrong number of arguments: got %d, want %d", len(ex.Args), len(ft.Args))
		ex.SetType(a.reg.ErrorSentinel())
		return ex
	}

	for i := range ex.Args {
		ex.Args[i] = a.checkExpr(ex.Args[i])
		ex.Args[i] = a.coerceTo(ex.Args[i], ft.Args[i])
	}

	ex.SetType(ft.Return)
	return ex
}

func (a *Analyzer) checkMemberAccess(ex *ast.MemberAccess) ast.Expr {
	ex.Operand = a.checkExpr(ex.Operand)
	opType := ex.Operand.Type()

	var st *types.StructType
	switch ex.Kind {
	case ast.MemberDot:
		s, ok := opType.(*types.StructType)
		if !ok {
			report.Error(ex.Span(), "`.` requires a struct operand, got %s", opType)
			ex.SetType(a.reg.ErrorSentinel())
			return ex
		}
		st = s
	case ast.MemberArrow:
		ptr, ok := opType.(*types.PointerType)
		if !ok {
			report.Error(ex.Span(), "`->` requires a pointer-to-struct operand, got %s", opType)
			ex.SetType(a.reg.ErrorSentinel())
			return ex
		}
		s, ok := ptr.Elem.(*types.StructType)
		if !ok {
			report.Error(ex.Span(), "`->` requires a pointer-to-struct operand, got %s", opType)
			ex.SetType(a.reg.ErrorSentinel())
			return ex
		}
		st = s
	}

	idx := st.FieldIndex(ex.FieldName)
	if idx < 0 {
		report.Error(ex.FieldSpan, "struct `%s` has no field named `%s`", st.Name, ex.FieldName)
		ex.SetType(a.reg.ErrorSentinel())
		return ex
	}

	ex.FieldIndex = idx
	ex.SetType(st.Fields[idx].Type)
	return ex
}

// coerceTo ensures e's type matches dest, wrapping e in an ast.ImplicitCast
// when a legal conversion exists (spec §4.3), and reporting a type-mismatch
// error otherwise. e's own type is left untouched by error-type
// propagation once it has already been flagged upstream.
func (a *Analyzer) coerceTo(e ast.Expr, dest types.Type) ast.Expr {
	if _, isErr := e.Type().(*types.ErrorType); isErr {
		return e
	}
	if e.Type() == dest {
		return e
	}

	if lit, ok := e.(*ast.IntLit); ok {
		if destInt, ok := dest.(*types.IntType); ok {
			truncateIntLiteral(lit, destInt, a.reg)
			return wrapCast(e, dest)
		}
	}

	if _, srcBool := e.Type().(*types.BoolType); srcBool {
		if _, destInt := dest.(*types.IntType); destInt {
			return wrapCast(e, dest)
		}
	}

	report.Error(e.Span(), "cannot convert %s to %s", e.Type(), dest)
	e.SetType(a.reg.ErrorSentinel())
	return e
}

func wrapCast(e ast.Expr, dest types.Type) ast.Expr {
	cast := &ast.ImplicitCast{ExprBase: ast.NewExprBase(e.Span(), e.Scope()), Operand: e}
	cast.SetType(dest)
	return cast
}

// truncateIntLiteral implements spec §4.3's integer-narrowing rule: if an
// integer literal's magnitude exceeds dest's range, it is truncated modulo
// 2^width and a warning in category "implicit" is emitted referencing the
// original and truncated values.
func truncateIntLiteral(lit *ast.IntLit, dest *types.IntType, reg *types.Registry) {
	width := dest.Kind.Width()
	mod := uint64(1) << uint(width)

	var max uint64
	if dest.Kind.Signed() {
		max = mod/2 - 1
	} else {
		max = mod - 1
	}

	if lit.Value64 <= max {
		return
	}

	truncated := lit.Value64 % mod
	report.Warning(lit.Span(), "implicit", "implicit narrowing conversion: %d does not fit in %s, truncated to %d", lit.Value64, dest, truncated)
	lit.Value64 = truncated
}
