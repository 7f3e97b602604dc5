/*
Package operator implements the mutable operator-precedence table the
parser consults and extends (spec.md §3, §4.2, §5). The lowering pass
does not read it: it lowers a user operator to a call on the function
named by its spelling.

The teacher's Pratt dispatch (parser/parser_precedence.go) hard-codes a
switch over a closed set of token types, because GoMix has no
user-declarable operators. This language does, so precedence has to be
data a running parse can mutate rather than code fixed at compile time:
Install is called mid-parse whenever a `def operator SPELLING
PRECEDENCE(...)` or `extern operator SPELLING PRECEDENCE(...)` prototype
is parsed, before its body is parsed, and the body may legitimately use
the operator it just installed.
*/
package operator

// Seed precedences spec.md §3 requires to always be present.
const (
	AssignPrecedence = 2
	LessThanPrecedence = 10
	AddPrecedence      = 20
	SubPrecedence      = 20
	MulPrecedence      = 40
)

// Table is a spelling -> precedence map for infix operators plus a set of
// spellings usable as a prefix operator. It is not safe for concurrent
// mutation from multiple goroutines (spec.md §5: the core is
// single-threaded; a future shared-table embedding would need a
// readers-writer lock around Install).
type Table struct {
	infix  map[string]int64
	prefix map[string]bool
}

// New returns a Table pre-seeded with the four built-in infix operators
// spec.md §3 mandates: `=`:2, `<`:10, `+`/`-`:20, `*`:40.
func New() *Table {
	t := &Table{
		infix:  make(map[string]int64),
		prefix: make(map[string]bool),
	}
	t.infix["="] = AssignPrecedence
	t.infix["<"] = LessThanPrecedence
	t.infix["+"] = AddPrecedence
	t.infix["-"] = SubPrecedence
	t.infix["*"] = MulPrecedence
	return t
}

// Install records precedence for spelling as an infix operator. Once
// installed, a precedence is never removed during a single compile
// (spec.md §8's monotonicity invariant) — Install only ever adds or
// overwrites an entry, never deletes one.
func (t *Table) Install(spelling string, precedence int64) {
	t.infix[spelling] = precedence
}

// InstallPrefix records spelling as usable as a prefix (unary) operator.
func (t *Table) InstallPrefix(spelling string) {
	t.prefix[spelling] = true
}

// Lookup returns the installed precedence for spelling, and whether it
// is installed at all. An empty spelling or an unknown one reports
// false, which the Pratt loop treats as "lower than any threshold" and
// uses to terminate (spec.md §3).
func (t *Table) Lookup(spelling string) (int64, bool) {
	if spelling == "" {
		return 0, false
	}
	p, ok := t.infix[spelling]
	return p, ok
}

// IsPrefix reports whether spelling has been declared as a prefix
// operator.
func (t *Table) IsPrefix(spelling string) bool {
	return t.prefix[spelling]
}
