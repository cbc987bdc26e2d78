package ast

import (
	"viper/internal/scope"
	"viper/internal/types"
)

// FuncParam is a single formal parameter of a function definition.
type FuncParam struct {
	Name string
	Type types.Type
	Sym  *scope.Symbol
}

// FuncDef is a `[pure] func name(args) -> T { body }` global, or a
// declaration-only `func name(args) -> T;` when Body is nil (spec §4.2).
type FuncDef struct {
	Base
	Sym      *scope.Symbol
	Name     string
	Pure     bool
	Exported bool
	Params   []FuncParam
	RetType  types.Type
	Body     *Block

	// FnScope is the scope opened for the function body (spec §3: "every
	// function body ... opens its own scope"). It is the scope in which
	// Params' symbols and the body's locals live.
	FnScope *scope.Scope
}

// ClassField is a single field of a `class` declaration.
type ClassField struct {
	Name string
	Type types.Type
}

// ClassDef is a `class Name { field: T; ... }` global (spec §4.2).
type ClassDef struct {
	Base
	Name     string
	Exported bool
	Fields   []ClassField
	Struct   *types.StructType
}

// Namespace is a grouping of globals. The parser builds one only for a
// braced `export { ... }` block with more than one member; that wrapper has
// an empty Name and a nil NSScope, and its members are declared in the
// enclosing scope.
type Namespace struct {
	Base
	Name  string
	Decls []Node
	NSScope *scope.Scope
}

// Import is an `import A.B.C;` global. ResolvedPath is the file-system path
// the import manager resolved it to (spec §4.4, §6).
type Import struct {
	Base
	Path         []string
	ResolvedPath string
}

// File is the top-level AST of a single source unit: its ordered list of
// global declarations.
type File struct {
	Base
	Name    string
	Globals []Node
}
