package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"viper/internal/ast"
	"viper/internal/lexer"
	"viper/internal/parser"
	"viper/internal/report"
	"viper/internal/scope"
	"viper/internal/types"
)

func init() {
	report.Init(report.LogLevelSilent)
}

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	toks, ok := lexer.New("t.vi", src).Tokens()
	if !ok {
		t.Fatalf("lex error in: %s", src)
	}
	reg := types.NewRegistry()
	root := scope.NewRoot()
	p := parser.New("t.vi", toks, reg, root, nil)
	return p.ParseFile("t.vi")
}

func TestParseIdentityFunction(t *testing.T) {
	f := parse(t, `func id(x: i32) -> i32 { return x; }`)

	if len(f.Globals) != 1 {
		t.Fatalf("got %d globals, want 1", len(f.Globals))
	}
	fd, ok := f.Globals[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("global is %T, want *ast.FuncDef", f.Globals[0])
	}
	if fd.Name != "id" {
		t.Errorf("got name %q, want id", fd.Name)
	}
	if len(fd.Params) != 1 || fd.Params[0].Name != "x" {
		t.Fatalf("unexpected params: %+v", fd.Params)
	}
	if len(fd.Body.Stmts) != 1 {
		t.Fatalf("got %d body stmts, want 1", len(fd.Body.Stmts))
	}
	ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.ReturnStmt", fd.Body.Stmts[0])
	}
	v, ok := ret.Expr.(*ast.VarExpr)
	if !ok || v.Name() != "x" {
		t.Fatalf("return expr is %+v, want VarExpr x", ret.Expr)
	}
}

func TestParseIfElseMerge(t *testing.T) {
	f := parse(t, `
		func pick(c: bool) -> i32 {
			let y: i32 = 0;
			if (c) {
				y = 1;
			} else {
				y = 2;
			}
			return y;
		}
	`)

	fd := f.Globals[0].(*ast.FuncDef)
	if len(fd.Body.Stmts) != 3 {
		t.Fatalf("got %d stmts, want 3 (let, if, return)", len(fd.Body.Stmts))
	}
	ifStmt, ok := fd.Body.Stmts[1].(*ast.IfStmt)
	if !ok {
		t.Fatalf("stmt 1 is %T, want *ast.IfStmt", fd.Body.Stmts[1])
	}
	if ifStmt.Else == nil {
		t.Fatal("expected an else branch")
	}
	then, ok := ifStmt.Then.(*ast.Block)
	if !ok {
		t.Fatalf("then branch is %T, want *ast.Block", ifStmt.Then)
	}
	els, ok := ifStmt.Else.(*ast.Block)
	if !ok {
		t.Fatalf("else branch is %T, want *ast.Block", ifStmt.Else)
	}
	if len(then.Stmts) != 1 || len(els.Stmts) != 1 {
		t.Fatalf("expected one assignment per branch")
	}
}

// TestParseIfWithBareStatementBody is spec §8 scenario 2: `if (x == 0) y =
// 2;` with no braces around the branch body.
func TestParseIfWithBareStatementBody(t *testing.T) {
	f := parse(t, `
		func f(x: i32) -> i32 {
			let y: i32 = 1;
			if (x == 0) y = 2;
			return y;
		}
	`)

	fd := f.Globals[0].(*ast.FuncDef)
	ifStmt, ok := fd.Body.Stmts[1].(*ast.IfStmt)
	if !ok {
		t.Fatalf("stmt 1 is %T, want *ast.IfStmt", fd.Body.Stmts[1])
	}
	if ifStmt.Else != nil {
		t.Fatal("expected no else branch")
	}
	if _, ok := ifStmt.Then.(*ast.Block); ok {
		t.Fatal("expected a bare statement, not a braced block")
	}
	if _, ok := ifStmt.Then.(*ast.BinaryExpr); !ok {
		t.Fatalf("then branch is %T, want *ast.BinaryExpr (the assignment)", ifStmt.Then)
	}
}

func TestParseAddressOf(t *testing.T) {
	f := parse(t, `
		func addr(x: i32) -> i32* {
			return &x;
		}
	`)

	fd := f.Globals[0].(*ast.FuncDef)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	un, ok := ret.Expr.(*ast.UnaryExpr)
	if !ok || un.Op != ast.UnaryAddrOf {
		t.Fatalf("expected unary address-of, got %+v", ret.Expr)
	}
}

func TestParsePureViolationIsSyntacticallyLegal(t *testing.T) {
	// Purity is a semantic-analysis concern (spec §4.5); the parser must
	// accept a call inside a pure function without complaint and simply
	// record the Pure attribute for sema to check later.
	f := parse(t, `
		pure func f() -> void {
			g();
		}
		func g() -> void {
			return;
		}
	`)

	fd := f.Globals[0].(*ast.FuncDef)
	if !fd.Pure {
		t.Error("expected Pure to be true")
	}
	if !fd.FnScope.Pure {
		t.Error("expected the function's scope to inherit Pure")
	}
}

func TestParseClassDef(t *testing.T) {
	f := parse(t, `
		class Point {
			x: i32;
			y: i32;
		}
	`)

	cd, ok := f.Globals[0].(*ast.ClassDef)
	if !ok {
		t.Fatalf("global is %T, want *ast.ClassDef", f.Globals[0])
	}
	if cd.Struct.Incomplete {
		t.Error("expected struct to be complete after class def")
	}
	if cd.Struct.FieldIndex("y") != 1 {
		t.Errorf("got field index %d, want 1", cd.Struct.FieldIndex("y"))
	}
}

func TestParseExportedFunc(t *testing.T) {
	f := parse(t, `export func pub() -> void { return; }`)

	fd, ok := f.Globals[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("global is %T, want *ast.FuncDef", f.Globals[0])
	}
	if !fd.Exported {
		t.Error("expected Exported to be true")
	}
	if !fd.Sym.Exported {
		t.Error("expected the function symbol's Exported flag to match")
	}
}

func TestParseFuncPointerType(t *testing.T) {
	f := parse(t, `func apply(fn: (i32) * -> i32, x: i32) -> i32 { return fn(x); }`)

	fd := f.Globals[0].(*ast.FuncDef)
	ft, ok := fd.Params[0].Type.(*types.FuncType)
	if !ok {
		t.Fatalf("param type is %T, want *types.FuncType", fd.Params[0].Type)
	}
	if len(ft.Args) != 1 {
		t.Fatalf("got %d func-pointer args, want 1", len(ft.Args))
	}
}

func TestParseQualifiedNamePath(t *testing.T) {
	f := parse(t, `func f() -> i32 { return math::geometry::origin_x; }`)

	fd := f.Globals[0].(*ast.FuncDef)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	v, ok := ret.Expr.(*ast.VarExpr)
	if !ok {
		t.Fatalf("return expr is %T, want *ast.VarExpr", ret.Expr)
	}

	want := []string{"math", "geometry", "origin_x"}
	if diff := cmp.Diff(want, v.Path); diff != "" {
		t.Errorf("qualified path mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDeclarationOnlyFunc(t *testing.T) {
	f := parse(t, `func extern_fn(x: i32) -> i32;`)

	fd := f.Globals[0].(*ast.FuncDef)
	if fd.Body != nil {
		t.Error("expected a nil body for a declaration-only function")
	}
}
