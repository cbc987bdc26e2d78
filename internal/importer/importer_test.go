package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"viper/internal/ast"
	"viper/internal/importer"
	"viper/internal/lexer"
	"viper/internal/parser"
	"viper/internal/report"
	"viper/internal/scope"
	"viper/internal/token"
	"viper/internal/types"
)

func init() {
	report.Init(report.LogLevelSilent)
}

func lex(file, text string) ([]*token.Token, bool) {
	return lexer.New(file, text).Tokens()
}

// TestImportVisibility is the exported half of spec §8 scenario 6: an
// exported function is visible through an import.
// TestImportUnexportedSymbolNotVisible covers the unexported half.
func TestImportVisibility(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "m.vi"), []byte(`export func k() -> i32 { return 7; }`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := types.NewRegistry()
	root := scope.NewRoot()
	im := importer.New(dir, ".vi", lex, reg, root)

	toks, ok := lexer.New("main.vi", `import m; func main() -> i32 { return k(); }`).Tokens()
	if !ok {
		t.Fatal("unexpected lex error")
	}

	p := parser.New("main.vi", toks, reg, root, im)
	f := p.ParseFile("main.vi")

	if len(f.Globals) != 2 {
		t.Fatalf("got %d globals, want 2 (import, main)", len(f.Globals))
	}
	imp, ok := f.Globals[0].(*ast.Import)
	if !ok {
		t.Fatalf("global 0 is %T, want *ast.Import", f.Globals[0])
	}
	if imp.ResolvedPath == "" {
		t.Fatal("expected import to resolve to a file path")
	}

	if _, ok := root.Lookup("k"); !ok {
		t.Error("expected imported symbol k to be resolvable from the root scope")
	}

	im.CheckUnresolvedTypes()
	if !report.ShouldProceed() {
		t.Error("expected no errors for a valid import")
	}
}

func TestImportUnexportedSymbolNotVisible(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "m.vi"), []byte(`func k() -> i32 { return 7; }`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := types.NewRegistry()
	root := scope.NewRoot()
	im := importer.New(dir, ".vi", lex, reg, root)

	toks, _ := lexer.New("main.vi", `import m;`).Tokens()
	p := parser.New("main.vi", toks, reg, root, im)
	p.ParseFile("main.vi")

	if _, ok := root.Lookup("k"); ok {
		t.Error("expected unexported symbol k to not be resolvable")
	}
}

func TestImportMissingFileReportsError(t *testing.T) {
	dir := t.TempDir()

	reg := types.NewRegistry()
	root := scope.NewRoot()
	im := importer.New(dir, ".vi", lex, reg, root)

	report.Init(report.LogLevelSilent)
	toks, _ := lexer.New("main.vi", `import nonexistent;`).Tokens()
	p := parser.New("main.vi", toks, reg, root, im)
	p.ParseFile("main.vi")

	if report.ShouldProceed() {
		t.Error("expected an error for an unresolvable import path")
	}
}

func TestImportCacheReusesParsedUnit(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "m.vi"), []byte(`export func k() -> i32 { return 7; }`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := types.NewRegistry()
	root := scope.NewRoot()
	im := importer.New(dir, ".vi", lex, reg, root)

	report.Init(report.LogLevelSilent)

	toks, _ := lexer.New("main.vi", `import m; import m;`).Tokens()
	p := parser.New("main.vi", toks, reg, root, im)
	p.ParseFile("main.vi")

	if len(im.Files()) != 1 {
		t.Fatalf("got %d cached units, want 1 (second import should hit the cache)", len(im.Files()))
	}
}

// TestImportFilesReturnsFirstImportedOrder is a regression test for Files()
// having returned files in Go's randomized map-iteration order: the
// returned slice must match the order the imports were first resolved in.
func TestImportFilesReturnsFirstImportedOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		body := "export func " + name + "_fn() -> i32 { return 0; }"
		if err := os.WriteFile(filepath.Join(dir, name+".vi"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := types.NewRegistry()
	root := scope.NewRoot()
	im := importer.New(dir, ".vi", lex, reg, root)

	toks, _ := lexer.New("main.vi", `import c; import a; import b;`).Tokens()
	p := parser.New("main.vi", toks, reg, root, im)
	p.ParseFile("main.vi")

	files := im.Files()
	if len(files) != 3 {
		t.Fatalf("got %d imported files, want 3", len(files))
	}
	want := []string{filepath.Join(dir, "c.vi"), filepath.Join(dir, "a.vi"), filepath.Join(dir, "b.vi")}
	for i, f := range files {
		if f.Name != want[i] {
			t.Errorf("file %d: got %q, want %q", i, f.Name, want[i])
		}
	}
}
