package driver_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"viper/internal/driver"
	"viper/internal/report"
)

func TestCompileIdentityFunctionProducesOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.vi")
	if err := os.WriteFile(src, []byte(`func id(x: i32) -> i32 { return x; }`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := driver.New(driver.Options{InputPath: src, LogLevel: report.LogLevelSilent})
	if code := c.Run(); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	out, err := os.ReadFile(strings.TrimSuffix(src, ".vi") + ".ll")
	if err != nil {
		t.Fatalf("expected an output file: %v", err)
	}
	if !strings.Contains(string(out), "id") {
		t.Errorf("expected emitted IR to mention function `id`, got:\n%s", out)
	}
}

func TestCompileUndeclaredIdentifierFailsWithoutEmitting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.vi")
	if err := os.WriteFile(src, []byte(`func f() -> i32 { return y; }`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := driver.New(driver.Options{InputPath: src, LogLevel: report.LogLevelSilent})
	if code := c.Run(); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	if _, err := os.Stat(strings.TrimSuffix(src, ".vi") + ".ll"); err == nil {
		t.Error("expected no output file to be produced on a failed compile")
	}
}
