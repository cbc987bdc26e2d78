// Package lexer tokenizes Language source text.
package lexer

import (
	"bufio"
	"strings"

	"viper/internal/report"
	"viper/internal/source"
	"viper/internal/token"
)

// Lexer tokenizes a single source file.
type Lexer struct {
	file     string
	reader   *bufio.Reader
	tokBuff  *strings.Builder

	line, col           int
	startLine, startCol int

	sawError bool
}

// New creates a lexer over text, tagging all tokens with the given logical
// file name (used in diagnostics and spans).
func New(file string, text string) *Lexer {
	return &Lexer{
		file:    file,
		reader:  bufio.NewReader(strings.NewReader(text)),
		tokBuff: &strings.Builder{},
	}
}

// symbolPatterns maps punctuation/operator text to its token kind. Longer
// patterns are attempted first by repeatedly extending the match (mirrors
// the teacher's greedy symbol lexer).
var symbolPatterns = map[string]token.Kind{
	"->": token.Arrow,
	"<=": token.Le,
	">=": token.Ge,
	"==": token.EqEq,
	"!=": token.NotEq,
	"=":  token.Assign,
	"+":  token.Plus,
	"-":  token.Minus,
	"*":  token.Star,
	"/":  token.Slash,
	"&":  token.Amp,
	"(":  token.LParen,
	")":  token.RParen,
	"{":  token.LBrace,
	"}":  token.RBrace,
	";":  token.Semi,
	":":  token.Colon,
	"::": token.ColonColon,
	",":  token.Comma,
	".":  token.Dot,
	"<":  token.Lt,
	">":  token.Gt,
}

// Tokens lexes the entire file and returns its token stream, terminated by
// an EOF token. If any Error tokens were produced, every one of them is
// reported to the diagnostic sink (so all lexical errors in the file are
// seen at once) and ok is false, per spec §4.1 / §7 kind 1.
func (l *Lexer) Tokens() (toks []*token.Token, ok bool) {
	for {
		tok := l.next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.Error {
			l.sawError = true
			report.Error(tok.Span, "unknown byte: %q", tok.Value)
		}
	}

	return toks, !l.sawError
}

// next retrieves the next token from the input. At end of file it returns an
// EOF token.
func (l *Lexer) next() *token.Token {
	for {
		c, ok := l.peek()
		if !ok {
			return l.makeToken(token.EOF)
		}

		switch {
		case c == '\n' || c == '\t' || c == ' ' || c == '\r':
			l.skip()
		case c == '/':
			if tok := l.lexCommentOrSlash(); tok != nil {
				return tok
			}
		case c == '"':
			return l.lexString()
		case isDecimalDigit(c):
			return l.lexNumber()
		case isIdentStart(c):
			return l.lexIdentOrKeyword()
		default:
			return l.lexPunct()
		}
	}
}

// lexCommentOrSlash consumes a `//` line comment, a `/* ... */` block
// comment (terminated by exactly `*/`, per spec §4.1's resolution of the
// open question in §9), or a single `/` token.
func (l *Lexer) lexCommentOrSlash() *token.Token {
	l.mark()
	l.skip() // leading '/'

	c, ok := l.peek()
	if !ok {
		return l.makeToken(token.Slash)
	}

	switch c {
	case '/':
		for {
			c, ok := l.peek()
			if !ok || c == '\n' {
				break
			}
			l.skip()
		}
		return nil
	case '*':
		l.skip()
		for {
			c, ok := l.peek()
			if !ok {
				break
			}
			l.skip()
			if c == '*' {
				c2, ok2 := l.peek()
				if ok2 && c2 == '/' {
					l.skip()
					break
				}
			}
		}
		return nil
	default:
		l.tokBuff.Reset()
		return l.makeToken(token.Slash)
	}
}

// lexPunct lexes a punctuation or operator symbol by greedily extending the
// longest match in symbolPatterns.
func (l *Lexer) lexPunct() *token.Token {
	l.mark()
	l.eat()

	for {
		c, ok := l.peek()
		if !ok {
			break
		}
		if _, ok := symbolPatterns[l.tokBuff.String()+string(c)]; ok {
			l.eat()
		} else {
			break
		}
	}

	kind, ok := symbolPatterns[l.tokBuff.String()]
	if !ok {
		return l.errToken()
	}
	return l.makeToken(kind)
}

// lexIdentOrKeyword lexes `[A-Za-z_][A-Za-z0-9_]*` and classifies it.
func (l *Lexer) lexIdentOrKeyword() *token.Token {
	l.mark()
	l.eat()

	for {
		c, ok := l.peek()
		if !ok || !(isIdentStart(c) || isDecimalDigit(c)) {
			break
		}
		l.eat()
	}

	return l.makeToken(token.LookupIdent(l.tokBuff.String()))
}

// lexNumber lexes a numeric literal with an optional 0x/0b/0 radix prefix
// and single-quote (') digit separators, per spec §4.1.
func (l *Lexer) lexNumber() *token.Token {
	l.mark()
	first, _ := l.eat()

	isDigit := isDecimalDigit
	if first == '0' {
		if c, ok := l.peek(); ok {
			switch c {
			case 'x', 'X':
				l.eat()
				isDigit = isHexDigit
			case 'b', 'B':
				l.eat()
				isDigit = isBinDigit
			default:
				isDigit = isOctalDigit
			}
		}
	}

	for {
		c, ok := l.peek()
		if !ok {
			break
		}
		if c == '\'' {
			// Digit separator: consumed but not written to the token text.
			l.skip()
			continue
		}
		if isDigit(c) {
			l.eat()
		} else {
			break
		}
	}

	return l.makeToken(token.IntLit)
}

// lexString lexes a `"..."` literal, decoding the recognized escape
// sequences in place so the token's Value holds the decoded content.
func (l *Lexer) lexString() *token.Token {
	l.mark()
	l.skip() // opening quote

	var decoded strings.Builder
	for {
		c, ok := l.peek()
		if !ok {
			l.tokBuff.Reset()
			return l.makeToken(token.Error)
		}

		switch c {
		case '"':
			l.skip()
			value := decoded.String()
			l.tokBuff.Reset()
			tok := l.makeToken(token.StringLit)
			tok.Value = value
			return tok
		case '\\':
			l.skip()
			ec, ok := l.eat()
			if !ok {
				l.tokBuff.Reset()
				return l.makeToken(token.Error)
			}
			switch ec {
			case 'n':
				decoded.WriteByte('\n')
			case '\'':
				decoded.WriteByte('\'')
			case '"':
				decoded.WriteByte('"')
			case '\\':
				decoded.WriteByte('\\')
			case '0':
				decoded.WriteByte(0)
			default:
				report.Error(l.getSpan(), "unknown escape sequence: \\%c", ec)
			}
		default:
			l.eat()
			decoded.WriteRune(c)
		}
	}
}

// errToken produces an Error token holding the single unrecognized byte.
func (l *Lexer) errToken() *token.Token {
	return l.makeToken(token.Error)
}

// -----------------------------------------------------------------------------

func (l *Lexer) mark() {
	l.startLine, l.startCol = l.line, l.col
}

func (l *Lexer) makeToken(kind token.Kind) *token.Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()
	return &token.Token{Kind: kind, Value: value, Span: l.getSpan()}
}

func (l *Lexer) getSpan() *source.Span {
	return &source.Span{
		File:      l.file,
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    l.col,
	}
}

// eat consumes and returns the next rune, appending it to the token buffer.
func (l *Lexer) eat() (rune, bool) {
	c, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, false
	}
	l.advance(c)
	l.tokBuff.WriteRune(c)
	return c, true
}

// skip consumes the next rune without appending it to the token buffer.
func (l *Lexer) skip() (rune, bool) {
	c, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, false
	}
	l.advance(c)
	return c, true
}

// peek returns the next rune without consuming it.
func (l *Lexer) peek() (rune, bool) {
	c, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, false
	}
	l.reader.UnreadRune()
	return c, true
}

func (l *Lexer) advance(c rune) {
	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// -----------------------------------------------------------------------------

func isDecimalDigit(c rune) bool { return '0' <= c && c <= '9' }
func isOctalDigit(c rune) bool   { return '0' <= c && c <= '7' }
func isBinDigit(c rune) bool     { return c == '0' || c == '1' }
func isHexDigit(c rune) bool {
	return isDecimalDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
func isIdentStart(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}
