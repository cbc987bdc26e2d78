// Package source defines the source position, span and buffer value types
// used for diagnostics. It holds no offset-to-position mapping: the lexer
// tracks lines and columns itself while scanning.
package source

import (
	"fmt"
)

// Position is a single point in a source file: a byte offset plus the line
// and column it corresponds to. Lines and columns are zero-indexed
// internally and rendered one-indexed for diagnostics.
type Position struct {
	File   string
	Line   int
	Col    int
	Offset int
}

// Span is a start/end range of source text. Start is inclusive and End is
// exclusive: Start is the first rune in the span and End is one past the
// last rune.
type Span struct {
	File                string
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Over returns a span which covers a and b in their entirety.
func Over(a, b *Span) *Span {
	return &Span{
		File:      a.File,
		StartLine: a.StartLine,
		StartCol:  a.StartCol,
		EndLine:   b.EndLine,
		EndCol:    b.EndCol,
	}
}

func (s *Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine+1, s.StartCol+1)
}

// Buffer owns the full text of a single source file along with its logical
// (display) name, which may differ from the path on disk when the file was
// loaded through an import search root.
type Buffer struct {
	// Name is the logical file name used in diagnostics (eg. the import
	// path-derived name).
	Name string

	// AbsPath is the absolute path on disk, used to re-open the file when
	// rendering a source excerpt for a diagnostic.
	AbsPath string

	// Text is the full decoded source text.
	Text string
}

// NewBuffer creates a source buffer for the given logical name, absolute
// path, and decoded text.
func NewBuffer(name, absPath, text string) *Buffer {
	return &Buffer{Name: name, AbsPath: absPath, Text: text}
}
