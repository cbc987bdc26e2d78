package sema_test

import (
	"testing"

	"viper/internal/ast"
	"viper/internal/lexer"
	"viper/internal/parser"
	"viper/internal/report"
	"viper/internal/scope"
	"viper/internal/sema"
	"viper/internal/types"
)

func init() {
	report.Init(report.LogLevelSilent)
}

func parseAndCheck(t *testing.T, src string) *ast.File {
	t.Helper()
	report.Init(report.LogLevelSilent)

	toks, ok := lexer.New("t.vi", src).Tokens()
	if !ok {
		t.Fatalf("lex error in: %s", src)
	}
	reg := types.NewRegistry()
	root := scope.NewRoot()
	p := parser.New("t.vi", toks, reg, root, nil)
	f := p.ParseFile("t.vi")

	sema.New(reg).Run([]*ast.File{f})
	return f
}

func TestIdentityFunctionTypeChecks(t *testing.T) {
	report.Init(report.LogLevelSilent)
	f := parseAndCheck(t, `func id(x: i32) -> i32 { return x; }`)
	if !report.ShouldProceed() {
		t.Fatal("expected no errors")
	}
	fd := f.Globals[0].(*ast.FuncDef)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	if ret.Expr.Type() == nil {
		t.Fatal("expected return expression to have an inferred type")
	}
}

func TestNarrowingWarningTruncatesLiteral(t *testing.T) {
	f := parseAndCheck(t, `func h() -> i8 { return 300; }`)
	if !report.ShouldProceed() {
		t.Fatal("a narrowing conversion should warn, not error")
	}

	fd := f.Globals[0].(*ast.FuncDef)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	cast, ok := ret.Expr.(*ast.ImplicitCast)
	if !ok {
		t.Fatalf("expected an ImplicitCast, got %T", ret.Expr)
	}
	lit, ok := cast.Operand.(*ast.IntLit)
	if !ok {
		t.Fatalf("expected an IntLit operand, got %T", cast.Operand)
	}
	if lit.Value64 != 44 {
		t.Errorf("got truncated value %d, want 44", lit.Value64)
	}
}

func TestPurityViolation(t *testing.T) {
	parseAndCheck(t, `
		func imp() -> void { return; }
		pure func p() -> void { imp(); }
	`)
	if report.ShouldProceed() {
		t.Fatal("expected a purity violation error")
	}
}

func TestAssignToNonLvalueIsError(t *testing.T) {
	parseAndCheck(t, `
		func f() -> i32 {
			1 = 2;
			return 0;
		}
	`)
	if report.ShouldProceed() {
		t.Fatal("expected a non-lvalue assignment error")
	}
}

func TestUnreachableAfterReturnWarns(t *testing.T) {
	// A warning alone must not abort the pipeline.
	parseAndCheck(t, `
		func f() -> i32 {
			return 0;
			return 1;
		}
	`)
	if !report.ShouldProceed() {
		t.Fatal("an unreachable-code warning must not be fatal")
	}
}

func TestUndeclaredIdentifierIsError(t *testing.T) {
	parseAndCheck(t, `func f() -> i32 { return y; }`)
	if report.ShouldProceed() {
		t.Fatal("expected an undeclared-identifier error")
	}
}

func TestIfMergeTypeChecksCondition(t *testing.T) {
	f := parseAndCheck(t, `
		func f(x: i32) -> i32 {
			let y: i32 = 1;
			if (x == 0) {
				y = 2;
			}
			return y;
		}
	`)
	if !report.ShouldProceed() {
		t.Fatal("expected no errors")
	}
	fd := f.Globals[0].(*ast.FuncDef)
	ifStmt := fd.Body.Stmts[1].(*ast.IfStmt)
	if ifStmt.Cond.Type() == nil {
		t.Fatal("expected the if condition to have an inferred type")
	}
}
