package sema

import (
	"viper/internal/ast"
	"viper/internal/report"
)

// usageCheckFile runs Pass B (spec §4.5) over every function body in f.
func (a *Analyzer) usageCheckFile(f *ast.File) {
	for _, g := range f.Globals {
		a.usageCheckGlobal(g)
	}
}

func (a *Analyzer) usageCheckGlobal(g ast.Node) {
	switch gl := g.(type) {
	case *ast.FuncDef:
		if gl.Body != nil {
			a.usageCheckBlock(gl.Body, gl.FnScope.Pure)
		}
	case *ast.Namespace:
		for _, d := range gl.Decls {
			a.usageCheckGlobal(d)
		}
	}
}

// usageCheckBlock walks blk's statements top-down, flagging unreachable
// code after a return and delegating each statement to usageCheckStmt.
func (a *Analyzer) usageCheckBlock(blk *ast.Block, pure bool) {
	returned := false
	for _, stmt := range blk.Stmts {
		if returned {
			report.Warning(stmt.Span(), "unreachable", "unreachable code after return")
		}
		a.usageCheckStmt(stmt, pure)
		if _, ok := stmt.(*ast.ReturnStmt); ok {
			returned = true
		}
	}
}

// usageCheckStmt dispatches a single statement. Every expression reached
// directly as a statement is checked with isStatement=true; every
// expression reached as a sub-expression of another expression is checked
// with isStatement=false (spec §4.5 Pass B's "top-down with an isStatement
// flag").
func (a *Analyzer) usageCheckStmt(stmt ast.Node, pure bool) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		a.usageCheckExpr(s.Init, false, pure)

	case *ast.ReturnStmt:
		if s.Expr != nil {
			a.usageCheckExpr(s.Expr, false, pure)
		}

	case *ast.IfStmt:
		a.usageCheckExpr(s.Cond, false, pure)
		a.usageCheckStmt(s.Then, pure)
		if s.Else != nil {
			a.usageCheckStmt(s.Else, pure)
		}

	case *ast.Block:
		a.usageCheckBlock(s, pure)

	case ast.Expr:
		a.usageCheckExpr(s, true, pure)
	}
}

// usageCheckExpr enforces purity and lvalue rules and warns on a
// statement-position expression whose value is silently discarded.
func (a *Analyzer) usageCheckExpr(e ast.Expr, isStatement, pure bool) {
	switch ex := e.(type) {
	case *ast.BinaryExpr:
		if ex.Op == ast.BinAssign {
			if !isAddressable(ex.Lhs) {
				report.Error(ex.Lhs.Span(), "left side of assignment is not assignable")
			}
			a.usageCheckExpr(ex.Lhs, false, pure)
			a.usageCheckExpr(ex.Rhs, false, pure)
			return
		}

		a.usageCheckExpr(ex.Lhs, false, pure)
		a.usageCheckExpr(ex.Rhs, false, pure)
		if isStatement {
			report.Warning(ex.Span(), "unused", "result of expression is unused")
		}

	case *ast.CallExpr:
		if pure {
			if callee, ok := ex.Callee.(*ast.VarExpr); ok && callee.Sym != nil && !callee.Sym.Pure {
				report.Error(ex.Span(), "call to non-pure function `%s` from a pure scope", callee.Sym.Name)
			}
		}
		a.usageCheckExpr(ex.Callee, false, pure)
		for _, arg := range ex.Args {
			a.usageCheckExpr(arg, false, pure)
		}
		// A call's result may be legitimately discarded (it is called for
		// its side effect), so no "unused value" warning fires here even
		// in statement position.

	case *ast.UnaryExpr:
		a.usageCheckExpr(ex.Operand, false, pure)
		if isStatement {
			report.Warning(ex.Span(), "unused", "result of expression is unused")
		}

	case *ast.MemberAccess:
		a.usageCheckExpr(ex.Operand, false, pure)
		if isStatement {
			report.Warning(ex.Span(), "unused", "result of expression is unused")
		}

	case *ast.ImplicitCast:
		a.usageCheckExpr(ex.Operand, false, pure)

	case *ast.VarExpr, *ast.IntLit, *ast.BoolLit, *ast.StringLit:
		if isStatement {
			report.Warning(ex.Span(), "unused", "result of expression is unused")
		}
	}
}
