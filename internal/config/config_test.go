package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"viper/internal/config"
)

func TestLoadMissingProjectFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	pf, found, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected no viper.toml to be found")
	}
	if pf.OptLevel != 0 || len(pf.ImportRoots) != 0 {
		t.Fatalf("expected zero-value default, got %+v", pf)
	}
}

func TestLoadFindsProjectFileInAncestorDirectory(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	const contents = `
name = "demo"
import-roots = ["lib"]
warnings = ["implicit"]
opt-level = 2
`
	if err := os.WriteFile(filepath.Join(root, "viper.toml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	pf, found, err := config.Load(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected viper.toml to be found in an ancestor directory")
	}
	if pf.Name != "demo" || pf.OptLevel != 2 {
		t.Fatalf("unexpected decode: %+v", pf)
	}
	if len(pf.ImportRoots) != 1 || pf.ImportRoots[0] != "lib" {
		t.Fatalf("unexpected import roots: %v", pf.ImportRoots)
	}
}

func TestMergePrefersCLIOptLevelWhenNonZero(t *testing.T) {
	pf := &config.ProjectFile{OptLevel: 1, ImportRoots: []string{"a"}}

	optLevel, roots := pf.Merge(3, []string{"b"})
	if optLevel != 3 {
		t.Errorf("got opt level %d, want 3", optLevel)
	}
	if len(roots) != 2 || roots[0] != "a" || roots[1] != "b" {
		t.Errorf("unexpected merged roots: %v", roots)
	}
}

func TestMergeFallsBackToProjectFileOptLevel(t *testing.T) {
	pf := &config.ProjectFile{OptLevel: 2}
	optLevel, _ := pf.Merge(0, nil)
	if optLevel != 2 {
		t.Errorf("got opt level %d, want 2", optLevel)
	}
}
