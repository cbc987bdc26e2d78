// Package token defines the lexical token vocabulary of the Language.
package token

import "viper/internal/source"

// Token is a single lexical token: its text (for a string literal, the
// decoded content without quotes), its kind, and the span of source text it
// came from.
type Token struct {
	Kind  Kind
	Value string
	Span  *source.Span
}

// Kind enumerates the kinds of tokens the lexer can produce.
type Kind int

const (
	// Keywords.
	KWFunc Kind = iota
	KWPure
	KWReturn
	KWLet
	KWIf
	KWElse
	KWTrue
	KWFalse
	KWExport
	KWImport
	KWClass

	// Type-name keywords.
	KWI8
	KWI16
	KWI32
	KWI64
	KWU8
	KWU16
	KWU32
	KWU64
	KWVoid
	KWBool

	// Literals and names.
	Ident
	IntLit
	StringLit

	// Punctuation and operators.
	Arrow    // ->
	Le       // <=
	Ge       // >=
	EqEq     // ==
	NotEq    // !=
	Assign   // =
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Amp      // &
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	Semi     // ;
	Colon    // :
	Comma    // ,
	Dot      // .
	Lt       // <
	Gt       // >
	ColonColon // ::

	EOF
	Error
)

// keywords maps identifier text to its keyword kind.
var keywords = map[string]Kind{
	"func":   KWFunc,
	"pure":   KWPure,
	"return": KWReturn,
	"let":    KWLet,
	"if":     KWIf,
	"else":   KWElse,
	"true":   KWTrue,
	"false":  KWFalse,
	"export": KWExport,
	"import": KWImport,
	"class":  KWClass,
	"i8":     KWI8,
	"i16":    KWI16,
	"i32":    KWI32,
	"i64":    KWI64,
	"u8":     KWU8,
	"u16":    KWU16,
	"u32":    KWU32,
	"u64":    KWU64,
	"void":   KWVoid,
	"bool":   KWBool,
}

// LookupIdent classifies ident text as a keyword kind, or Ident if it
// doesn't match any keyword.
func LookupIdent(text string) Kind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return Ident
}

// IsTypeKeyword reports whether kind names a primitive type.
func IsTypeKeyword(kind Kind) bool {
	switch kind {
	case KWI8, KWI16, KWI32, KWI64, KWU8, KWU16, KWU32, KWU64, KWVoid, KWBool:
		return true
	}
	return false
}

// String renders a token kind for diagnostics.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "<unknown token>"
}

var kindNames = map[Kind]string{
	KWFunc: "func", KWPure: "pure", KWReturn: "return", KWLet: "let",
	KWIf: "if", KWElse: "else", KWTrue: "true", KWFalse: "false",
	KWExport: "export", KWImport: "import", KWClass: "class",
	KWI8: "i8", KWI16: "i16", KWI32: "i32", KWI64: "i64",
	KWU8: "u8", KWU16: "u16", KWU32: "u32", KWU64: "u64",
	KWVoid: "void", KWBool: "bool",
	Ident: "identifier", IntLit: "integer literal", StringLit: "string literal",
	Arrow: "->", Le: "<=", Ge: ">=", EqEq: "==", NotEq: "!=", Assign: "=",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Amp: "&",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	Semi: ";", Colon: ":", Comma: ",", Dot: ".", Lt: "<", Gt: ">",
	ColonColon: "::",
	EOF:        "end of file", Error: "<error>",
}
