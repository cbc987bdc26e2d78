// Package driver orchestrates a single compilation: spec §5's strict
// phase pipeline (Lex -> ParseAndImport -> TypeCheck -> UsageCheck -> Lower
// -> Emit), aborting between phases whenever the reporter has accumulated
// an error (spec §7: "a nonzero error count aborts the pipeline before the
// next pass begins"). Grounded on the teacher's cmd.Compiler
// (ComedicChimera/chai cmd/compiler.go), which drives the same
// Initialize -> Analyze -> Generate shape over a reporter and a shared type
// table; generalized to this spec's six-phase split and single-file-plus-
// imports compilation unit.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"viper/internal/ast"
	"viper/internal/config"
	"viper/internal/importer"
	"viper/internal/irgen"
	"viper/internal/lexer"
	"viper/internal/parser"
	"viper/internal/report"
	"viper/internal/scope"
	"viper/internal/sema"
	"viper/internal/token"
	"viper/internal/types"
)

// Options is the set of compilation settings taken from the command line.
// Run loads the optional project file (SPEC_FULL.md §1.2) itself and takes
// only its import roots.
type Options struct {
	InputPath   string
	OutputPath  string
	OptLevel    int
	LogLevel    int
	Debug       bool
	WarnOff     []string
	WarnAsError bool
}

// Compiler runs one compilation from an entry file through object emission.
type Compiler struct {
	opts Options
	reg  *types.Registry
}

// New constructs a Compiler for opts.
func New(opts Options) *Compiler {
	return &Compiler{opts: opts, reg: types.NewRegistry()}
}

// Run executes the full pipeline and returns the process exit code spec §6
// specifies: 0 on success, 1 on failure.
func (c *Compiler) Run() int {
	report.Init(c.opts.LogLevel)
	report.SetWarnError(c.opts.WarnAsError)
	for _, name := range c.opts.WarnOff {
		report.SetWarningEnabled(name, false)
	}

	pf, _, err := config.Load(filepath.Dir(c.opts.InputPath))
	if err != nil {
		report.Error(nil, "failed to read project file: %s", err)
		return c.finish()
	}
	_, importRoots := pf.Merge(c.opts.OptLevel, nil)
	searchRoot := filepath.Dir(c.opts.InputPath)
	if len(importRoots) > 0 {
		searchRoot = importRoots[0]
	}

	root := scope.NewRoot()

	text, err := os.ReadFile(c.opts.InputPath)
	if err != nil {
		report.Error(nil, "cannot read `%s`: %s", c.opts.InputPath, err)
		return c.finish()
	}

	toks, ok := lexSource(c.opts.InputPath, string(text))
	if !ok || !report.ShouldProceed() {
		return c.finish()
	}

	im := importer.New(searchRoot, filepath.Ext(c.opts.InputPath), lexSource, c.reg, root)
	fileScope := scope.NewChild(root)
	p := parser.New(c.opts.InputPath, toks, c.reg, fileScope, im)
	entry := p.ParseFile(c.opts.InputPath)
	im.CheckUnresolvedTypes()
	if !report.ShouldProceed() {
		return c.finish()
	}

	files := append([]*ast.File{entry}, im.Files()...)

	if !sema.New(c.reg).Run(files) {
		return c.finish()
	}

	lw := irgen.New(c.reg, c.opts.InputPath)
	for _, f := range files {
		lw.LowerFile(f)
	}
	if !report.ShouldProceed() {
		return c.finish()
	}

	if err := c.emit(lw); err != nil {
		report.Error(nil, "failed to emit output: %s", err)
	}

	return c.finish()
}

func (c *Compiler) outputPath() string {
	if c.opts.OutputPath != "" {
		return c.opts.OutputPath
	}
	return strings.TrimSuffix(c.opts.InputPath, filepath.Ext(c.opts.InputPath)) + ".ll"
}

func (c *Compiler) finish() int {
	report.Summary(c.outputPath())
	if !report.ShouldProceed() {
		return 1
	}
	return 0
}

func (c *Compiler) emit(lw *irgen.Lowerer) error {
	f, err := os.Create(c.outputPath())
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprint(f, lw.Module().String()); err != nil {
		return err
	}

	if c.opts.Debug {
		fmt.Fprintln(os.Stderr, lw.Module().String())
	}
	return nil
}

func lexSource(file, text string) ([]*token.Token, bool) {
	return lexer.New(file, text).Tokens()
}
