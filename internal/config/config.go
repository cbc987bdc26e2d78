// Package config loads the optional project file described in SPEC_FULL.md
// §1.2: a `viper.toml` sitting next to the input file (or an ancestor
// directory) supplying defaults that CLI flags may override. Grounded on
// the teacher's depm/load_mod.go, which loads chai's (mandatory) module
// file via github.com/pelletier/go-toml; generalized here to an optional
// load, since spec.md's CLI is a single-file compiler with no project file
// of its own.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// ProjectFile is the decoded contents of a viper.toml.
type ProjectFile struct {
	Name        string   `toml:"name"`
	ImportRoots []string `toml:"import-roots"`
	Warnings    []string `toml:"warnings"`
	OptLevel    int      `toml:"opt-level"`
}

// Default returns the zero-value project file used when no viper.toml is
// found: no extra import roots, no warnings pre-enabled, optimization
// level 0.
func Default() *ProjectFile {
	return &ProjectFile{}
}

// Load searches startDir and its ancestors for a viper.toml and decodes it.
// A missing file is not an error — it returns Default(), false — since the
// project file is optional (unlike the teacher's mandatory module file).
func Load(startDir string) (*ProjectFile, bool, error) {
	path, ok := findProjectFile(startDir)
	if !ok {
		return Default(), false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	pf := &ProjectFile{}
	if err := toml.Unmarshal(data, pf); err != nil {
		return nil, false, err
	}
	return pf, true, nil
}

func findProjectFile(startDir string) (string, bool) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, "viper.toml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Merge layers CLI-supplied values over pf's defaults: a zero CLI opt level
// leaves the project file's OptLevel in place and a non-zero one overrides
// it; CLI import roots are appended after the project file's roots. Only
// OptLevel and ImportRoots are merged; Warnings is not merged here and the
// driver does not read it.
func (pf *ProjectFile) Merge(cliOptLevel int, cliImportRoots []string) (int, []string) {
	optLevel := pf.OptLevel
	if cliOptLevel != 0 {
		optLevel = cliOptLevel
	}

	roots := append([]string(nil), pf.ImportRoots...)
	roots = append(roots, cliImportRoots...)
	return optLevel, roots
}
