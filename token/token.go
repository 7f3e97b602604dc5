/*
Package token defines the closed set of lexical categories produced by the
lexer and consumed by the parser.

A Token is a tagged value: exactly one of the constants in Kind describes
what it is, and the accompanying fields (Literal, Value) carry the payload
for the kinds that need one. There is no inheritance here and no open set
of kinds a downstream package could extend — the grammar in the parser
switches over a closed enum, and the enum is this one.
*/
package token

import "fmt"

// Kind identifies which variant of the Token sum type a value holds.
type Kind int

const (
	// Empty marks end of input. Once the lexer emits it, every later
	// Next() call yields Empty again.
	Empty Kind = iota
	// Invalid marks a malformed token (currently only a bad number
	// literal). Literal carries the diagnostic.
	Invalid

	// Keywords.
	Def
	Extern
	If
	Then
	Else
	For
	In
	Let

	// Identifier is any maximal alphanumeric run that is not a keyword.
	Identifier
	// Operator is produced only after the `operator` keyword; Literal is
	// the run of bytes that followed it after any whitespace, ending at
	// the next whitespace, digit, or '(' (see the lexer's scanWord).
	Operator
	// Number is a parsed float64 literal; Value carries it.
	Number
	// Punct is a single non-alphanumeric, non-whitespace byte reported
	// verbatim; the parser interprets its spelling from Literal.
	Punct
)

var kindNames = map[Kind]string{
	Empty:      "EOF",
	Invalid:    "INVALID",
	Def:        "def",
	Extern:     "extern",
	If:         "if",
	Then:       "then",
	Else:       "else",
	For:        "for",
	In:         "in",
	Let:        "let",
	Identifier: "IDENT",
	Operator:   "OPERATOR",
	Number:     "NUMBER",
	Punct:      "PUNCT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Keywords maps a reserved spelling to its Kind. scanWord in the lexer
// consults this before falling back to Identifier.
var Keywords = map[string]Kind{
	"def":    Def,
	"extern": Extern,
	"if":     If,
	"then":   Then,
	"else":   Else,
	"for":    For,
	"in":     In,
	"let":    Let,
}

// Token is a single lexical token: a Kind tag plus whatever payload that
// kind carries, and its source position for diagnostics.
type Token struct {
	Kind    Kind
	Literal string  // spelling for Invalid/Identifier/Operator/Punct
	Value   float64 // parsed value for Number
	Line    int
	Column  int
}

// New builds a Token with no position metadata (used by tests that don't
// care about location).
func New(kind Kind, literal string) Token {
	return Token{Kind: kind, Literal: literal}
}

// NewAt builds a Token with full position metadata, as the lexer does.
func NewAt(kind Kind, literal string, line, column int) Token {
	return Token{Kind: kind, Literal: literal, Line: line, Column: column}
}

// NewNumberAt builds a Number token carrying its parsed value.
func NewNumberAt(value float64, literal string, line, column int) Token {
	return Token{Kind: Number, Literal: literal, Value: value, Line: line, Column: column}
}

// Spelling returns the string a Pratt parser would use to look this token
// up in the operator precedence table: the literal text for Punct,
// Operator and Identifier tokens, empty otherwise.
func (t Token) Spelling() string {
	switch t.Kind {
	case Punct, Operator, Identifier:
		return t.Literal
	default:
		return ""
	}
}

// String renders the token for debugging, e.g. "+:PUNCT" or "42:NUMBER".
func (t Token) String() string {
	switch t.Kind {
	case Number:
		return fmt.Sprintf("%v:%s", t.Value, t.Kind)
	case Invalid:
		return fmt.Sprintf("%s:%s", t.Literal, t.Kind)
	default:
		if t.Literal == "" {
			return t.Kind.String()
		}
		return fmt.Sprintf("%s:%s", t.Literal, t.Kind)
	}
}
