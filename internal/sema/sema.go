// Package sema implements the two-pass semantic analyzer of spec §4.5:
// Pass A (type check — infer every expression's type, insert implicit
// casts, propagate the error-type sentinel) followed by Pass B (usage
// check — a top-down, isStatement-flagged walk enforcing purity, lvalue,
// and reachability rules). Grounded on the teacher's `walk` package
// (ComedicChimera/chai bootstrap/walk), which similarly structures semantic
// analysis as per-node-kind switch dispatch over the AST rather than a
// visitor-interface hierarchy, per spec §9's tagged-sum-type guidance.
package sema

import (
	"viper/internal/ast"
	"viper/internal/report"
	"viper/internal/types"
)

// Analyzer holds the shared state both passes read: the type registry used
// to canonicalize cast destinations. Pass B's pure-scope flag is passed down
// the walk as a parameter rather than held here.
type Analyzer struct {
	reg *types.Registry
}

// New creates an Analyzer backed by reg.
func New(reg *types.Registry) *Analyzer {
	return &Analyzer{reg: reg}
}

// Run executes both passes over every file, in the order spec §4.5 and §7
// require: Pass A runs to completion over all files before Pass B begins,
// and either pass aborts the pipeline (returns false) if it records any
// error, before the next stage runs.
func (a *Analyzer) Run(files []*ast.File) bool {
	for _, f := range files {
		a.checkFile(f)
	}
	if !report.ShouldProceed() {
		return false
	}

	for _, f := range files {
		a.usageCheckFile(f)
	}
	return report.ShouldProceed()
}

func (a *Analyzer) checkFile(f *ast.File) {
	for _, g := range f.Globals {
		a.checkGlobal(g)
	}
}

func (a *Analyzer) checkGlobal(g ast.Node) {
	switch gl := g.(type) {
	case *ast.FuncDef:
		if gl.Body != nil {
			a.checkBlock(gl.Body, gl.RetType)
		}
	case *ast.Namespace:
		for _, d := range gl.Decls {
			a.checkGlobal(d)
		}
	case *ast.ClassDef, *ast.Import, nil:
		// Neither carries executable code for Pass A to type-check.
	}
}
