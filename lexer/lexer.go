/*
Package lexer implements the hand-written streaming scanner for the
Kaleidoscope-family surface syntax. It consumes a read-only source string
and produces one token at a time; the parser drives it with Next and
inspects the most recently produced token with Current.

One-byte lookahead is all the scanning rules in spec.md §4.1 need: every
multi-character token (a run of digits, a run of letters, an operator
spelling) is decided by looking at the class of the current byte and
scanning forward until that class ends.
*/
package lexer

import (
	"strconv"
	"unicode"

	"github.com/kale-lang/kalc/token"
)

// Lexer scans Kaleidoscope source text into tokens.
type Lexer struct {
	src    string
	pos    int  // index of cur in src
	cur    byte // byte at pos, or 0 at end of input
	line   int
	column int

	current token.Token // last token produced, returned by Current
}

// New creates a Lexer positioned at the start of src and primes Current
// with the first token.
func New(src string) *Lexer {
	lex := &Lexer{src: src, line: 1, column: 1}
	if len(src) > 0 {
		lex.cur = src[0]
	}
	lex.current = lex.scan()
	return lex
}

// Current returns the most recently produced token without advancing.
func (lex *Lexer) Current() token.Token {
	return lex.current
}

// Next advances the lexer and returns the new current token. Once Empty
// has been produced, every subsequent call keeps returning Empty.
func (lex *Lexer) Next() token.Token {
	if lex.current.Kind == token.Empty {
		return lex.current
	}
	lex.current = lex.scan()
	return lex.current
}

func (lex *Lexer) advance() {
	if lex.cur == '\n' {
		lex.line++
		lex.column = 1
	} else {
		lex.column++
	}
	lex.pos++
	if lex.pos >= len(lex.src) {
		lex.cur = 0
		lex.pos = len(lex.src)
	} else {
		lex.cur = lex.src[lex.pos]
	}
}

func isSpace(c byte) bool { return unicode.IsSpace(rune(c)) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isAlphanumeric(c byte) bool { return isAlpha(c) || isDigit(c) }

// scan implements the ordered scanning rules of spec.md §4.1: skip
// whitespace and #-comments, then dispatch on the class of the current
// byte.
func (lex *Lexer) scan() token.Token {
	for {
		for lex.cur != 0 && isSpace(lex.cur) {
			lex.advance()
		}
		if lex.cur == '#' {
			for lex.cur != 0 && lex.cur != '\n' && lex.cur != '\r' {
				lex.advance()
			}
			continue
		}
		break
	}

	line, column := lex.line, lex.column

	switch {
	case lex.cur == 0:
		return token.NewAt(token.Empty, "", line, column)

	case isAlpha(lex.cur):
		return lex.scanWord(line, column)

	case isDigit(lex.cur):
		return lex.scanNumber(line, column)

	default:
		c := lex.cur
		lex.advance()
		return token.NewAt(token.Punct, string(c), line, column)
	}
}

// scanWord consumes a maximal alphanumeric run and classifies it as a
// keyword, the `operator` prefix (which consumes a following operator
// spelling), or a plain identifier.
func (lex *Lexer) scanWord(line, column int) token.Token {
	start := lex.pos
	for lex.cur != 0 && isAlphanumeric(lex.cur) {
		lex.advance()
	}
	word := lex.src[start:lex.pos]

	if word == "operator" {
		for lex.cur != 0 && isSpace(lex.cur) {
			lex.advance()
		}
		opStart := lex.pos
		// The spelling run stops at whitespace, at a digit (the start of
		// an optional precedence number), or at '(' (the start of the
		// parameter list) — none of these can be part of a spelling, so
		// `operator&100(l,r)` scans as spelling "&", number 100, then "(".
		for lex.cur != 0 && !isSpace(lex.cur) && !isDigit(lex.cur) && lex.cur != '(' {
			lex.advance()
		}
		spelling := lex.src[opStart:lex.pos]
		return token.NewAt(token.Operator, spelling, line, column)
	}

	if kind, ok := token.Keywords[word]; ok {
		return token.NewAt(kind, word, line, column)
	}
	return token.NewAt(token.Identifier, word, line, column)
}

// scanNumber consumes a maximal digit run, optionally followed by a `.`
// and more digits. A second `.` within the same literal is a malformed
// number and yields Invalid("bad number") per spec.md §4.1 rule 4.
func (lex *Lexer) scanNumber(line, column int) token.Token {
	start := lex.pos
	for lex.cur != 0 && isDigit(lex.cur) {
		lex.advance()
	}

	dotCount := 0
	if lex.cur == '.' {
		dotCount++
		lex.advance()
		for lex.cur != 0 && isDigit(lex.cur) {
			lex.advance()
		}
		for lex.cur == '.' {
			dotCount++
			lex.advance()
			for lex.cur != 0 && isDigit(lex.cur) {
				lex.advance()
			}
		}
	}

	if dotCount > 1 {
		return token.NewAt(token.Invalid, "bad number", line, column)
	}

	text := lex.src[start:lex.pos]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token.NewAt(token.Invalid, "bad number", line, column)
	}
	return token.NewNumberAt(value, text, line, column)
}
