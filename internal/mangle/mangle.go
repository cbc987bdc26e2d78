// Package mangle implements spec §4.7's name mangler: a deterministic,
// injective mapping from a qualified name path plus a function signature to
// a flat, link-visible symbol name. Grounded on the teacher's name-mangling
// convention in generate/start_builder.go (which prefixes every emitted
// symbol with a package-qualifying string before handing it to llir/llvm),
// generalized to the length-prefixed, type-encoding scheme spec §4.7
// describes so that two distinct (path, signature) pairs can never collide.
package mangle

import (
	"fmt"
	"strconv"
	"strings"

	"viper/internal/types"
)

// prefix distinguishes mangled viper symbols from anything else that might
// land in the same object file (a C runtime symbol, the entry point).
const prefix = "_V"

// Name mangles a qualified name path and function signature into a flat
// symbol name. path is the (possibly namespace-qualified) declaration path,
// eg. []string{"math", "add"} for `add` declared inside namespace `math`.
func Name(path []string, sig *types.FuncType) string {
	var b strings.Builder
	b.WriteString(prefix)

	for _, component := range path {
		writeLengthPrefixed(&b, component)
	}

	b.WriteString(encodeFunc(sig))
	return b.String()
}

func writeLengthPrefixed(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteString(s)
}

// encodeFunc renders a function signature as `F<ret><argcount><args>E`, per
// spec §4.7.
func encodeFunc(sig *types.FuncType) string {
	var b strings.Builder
	b.WriteByte('F')
	b.WriteString(encodeType(sig.Return))
	b.WriteString(strconv.Itoa(len(sig.Args)))
	for _, a := range sig.Args {
		b.WriteString(encodeType(a))
	}
	b.WriteByte('E')
	return b.String()
}

// encodeType renders a single type per spec §4.7: primitives as a single
// letter, pointers as `P<inner>`, structs as `S<len><name>`, and nested
// function types by recursing into encodeFunc.
func encodeType(t types.Type) string {
	switch v := t.(type) {
	case *types.IntType:
		return intCode(v.Kind)
	case *types.BoolType:
		return "b"
	case *types.VoidType:
		return "v"
	case *types.PointerType:
		return "P" + encodeType(v.Elem)
	case *types.StructType:
		var b strings.Builder
		b.WriteByte('S')
		writeLengthPrefixed(&b, v.Name)
		return b.String()
	case *types.FuncType:
		return encodeFunc(v)
	default:
		panic(fmt.Sprintf("mangle: no encoding for type %T", t))
	}
}

func intCode(kind types.IntKind) string {
	switch kind {
	case types.I8:
		return "c"
	case types.I16:
		return "s"
	case types.I32:
		return "i"
	case types.I64:
		return "l"
	case types.U8:
		return "C"
	case types.U16:
		return "S"
	case types.U32:
		return "I"
	case types.U64:
		return "L"
	default:
		panic("mangle: unknown integer kind")
	}
}
