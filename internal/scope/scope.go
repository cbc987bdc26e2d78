// Package scope implements the hierarchical symbol environment of spec §3
// ("Scope") and §4.4: parent-linked scopes with imported child scopes, and
// symbols carrying the per-basic-block value history the lowerer reads and
// appends to, grounded on the teacher's common.Symbol
// (ComedicChimera/chai bootstrap/common/symbol.go) generalized from an
// LLVM-value field to the ordered (block, value) history spec §3 names.
package scope

import (
	"viper/internal/ir"
	"viper/internal/source"
	"viper/internal/types"
)

// Symbol is a named value or definition: a variable, function, or type
// alias. Attributes correspond to spec §3's symbol attribute set.
type Symbol struct {
	ID   int
	Name string
	Type types.Type

	Pure     bool
	Exported bool

	// OwningStruct is non-nil when this symbol is a method of a struct type.
	OwningStruct *types.StructType

	DefSpan *source.Span

	// history is the ordered (basic-block, value) sequence populated during
	// lowering (spec §3, §4.6, §9). It is empty until lowering begins.
	history []binding

	// Slot is set once the lowerer has materialized this symbol into an
	// alloca (spec §4.6 "Address-of materialization"); once set, reads and
	// writes of this symbol always go through load/store of Slot rather
	// than through history lookup.
	Slot ir.Value
}

type binding struct {
	block ir.Block
	value ir.Value
}

// BindValue appends a new (block, value) pair to the symbol's value
// history. This is the SSA-construction-free binding scheme of spec §9:
// there is no separate mem2reg pass, bindings simply accumulate in order.
func (s *Symbol) BindValue(bb ir.Block, v ir.Value) {
	s.history = append(s.history, binding{block: bb, value: v})
}

// LatestValue returns the most recent value bound at or dominating bb, or
// nil if the symbol has never been bound in a block reachable from bb. The
// lowerer supplies the dominance predicate since only it knows the
// control-flow graph being built; scope does not depend on irgen to avoid
// an import cycle (irgen depends on scope to read/append history).
func (s *Symbol) LatestValue(bb ir.Block, dominates func(def, use ir.Block) bool) ir.Value {
	for i := len(s.history) - 1; i >= 0; i-- {
		b := s.history[i]
		if b.block == bb || dominates(b.block, bb) {
			return b.value
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Scope is a single lexical environment: the root (global) scope has no
// parent; every function body, if-branch, and namespace opens its own
// scope, per spec §3 invariants.
type Scope struct {
	Parent *Scope

	// Name is the scope's namespace name, if it is a namespace scope.
	Name string

	IsNamespace bool

	// Pure, if true, forbids calls to non-pure symbols transitively
	// (spec §3, enforced during semantic analysis in internal/sema).
	Pure bool

	// ExpectedReturn is the return type return-statements in this scope (or
	// the nearest enclosing function scope) must match. Nil outside any
	// function body.
	ExpectedReturn types.Type

	symbols map[string]*Symbol

	// imported holds scopes injected by the import manager: their symbols
	// are resolvable from this scope but not owned by it (spec §4.4).
	imported []*Scope
}

var nextSymbolID int

// NewRoot creates the global scope. It has no parent, per spec §3.
func NewRoot() *Scope {
	return &Scope{symbols: make(map[string]*Symbol)}
}

// NewChild creates a child scope of parent. Most function bodies and if
// branches are plain (non-namespace, non-pure) children; namespace/pure
// scopes are created with NewNamespace / explicit field assignment.
func NewChild(parent *Scope) *Scope {
	return &Scope{
		Parent:         parent,
		Pure:           parent.Pure,
		ExpectedReturn: parent.ExpectedReturn,
		symbols:        make(map[string]*Symbol),
	}
}

// NewNamespace creates a named namespace child scope (spec §3: "every ...
// namespace opens its own scope").
func NewNamespace(parent *Scope, name string) *Scope {
	s := NewChild(parent)
	s.Name = name
	s.IsNamespace = true
	return s
}

// Define adds a new symbol to the scope. It does not check for redefinition
// — callers (the parser, when it constructs symbols per spec §4.2) are
// responsible for reporting a conflicting definition before calling Define.
func (s *Scope) Define(name string, typ types.Type, span *source.Span) *Symbol {
	nextSymbolID++
	sym := &Symbol{ID: nextSymbolID, Name: name, Type: typ, DefSpan: span}
	s.symbols[name] = sym
	return sym
}

// DefineSymbol inserts an already-constructed symbol (used when the parser
// builds a fully-populated Symbol, eg. for a function with attributes, and
// just needs it registered).
func (s *Scope) DefineSymbol(sym *Symbol) {
	s.symbols[sym.Name] = sym
}

// Lookup searches this scope, then its imported scopes, then walks outward
// through parents, per spec §4.4.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	if sym, ok := s.symbols[name]; ok {
		return sym, true
	}

	for _, imp := range s.imported {
		if sym, ok := imp.symbols[name]; ok {
			return sym, true
		}
	}

	if s.Parent != nil {
		return s.Parent.Lookup(name)
	}

	return nil, false
}

// LookupQualified resolves a `::`-separated qualified name by descending
// namespace scopes by name before resolving the terminal identifier, per
// spec §4.4.
func (s *Scope) LookupQualified(path []string) (*Symbol, bool) {
	if len(path) == 1 {
		return s.Lookup(path[0])
	}

	ns, ok := s.lookupNamespace(path[0])
	if !ok {
		return nil, false
	}
	return ns.LookupQualified(path[1:])
}

func (s *Scope) lookupNamespace(name string) (*Scope, bool) {
	for _, imp := range s.imported {
		if imp.IsNamespace && imp.Name == name {
			return imp, true
		}
	}
	if s.Parent != nil {
		return s.Parent.lookupNamespace(name)
	}
	return nil, false
}

// AddImportedScope attaches an imported scope as a resolvable-but-unowned
// child of s, per spec §4.4.
func (s *Scope) AddImportedScope(imported *Scope) {
	s.imported = append(s.imported, imported)
}

// Symbols returns the symbols directly owned by this scope (not imported,
// not inherited); the import manager uses it to collect a file's exported
// symbols.
func (s *Scope) Symbols() map[string]*Symbol {
	return s.symbols
}
