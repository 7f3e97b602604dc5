// Package compile wires the parser and lowering pass together into the
// single entry point the REPL and the CLI both drive.
package compile

import (
	"github.com/kale-lang/kalc/ir"
	"github.com/kale-lang/kalc/lower"
	"github.com/kale-lang/kalc/operator"
	"github.com/kale-lang/kalc/parser"
)

// Compile parses and lowers source in one shot over a fresh unit, the
// mode a one-off file compile runs in.
func Compile(source string) (*ir.Module, error) {
	return New().Compile(source)
}

// Unit is a running compile session: an operator table and an IR
// builder that both persist across calls to Compile, so that a
// `def operator` declared on one line is installed for the next, and a
// function defined on one line is still present in the module a later
// line's Dump sees. This is what lets internal/repl accumulate a whole
// session's worth of definitions one line at a time.
type Unit struct {
	ops    *operator.Table
	b      ir.Builder
	anonID int
}

// New returns a Unit over a freshly seeded operator table and an empty
// module.
func New() *Unit {
	return &Unit{ops: operator.New(), b: ir.NewBuilder()}
}

// Compile parses source against u's operator table and lowers the
// result into u's running module. A parse failure surfaces as a
// *lower.Error of kind ParseFailure (the parser collapses the whole
// unit to one ast.Error node, which Lower then reports), so callers
// only ever need to handle the one error type.
func (u *Unit) Compile(source string) (*ir.Module, error) {
	p := parser.NewWithTable(source, u.ops)
	nodes := p.Parse()
	err := lower.LowerInto(u.b, nodes, &u.anonID)
	return u.b.Module(), err
}

// Module returns the module built so far, without compiling anything
// new.
func (u *Unit) Module() *ir.Module {
	return u.b.Module()
}

// Errors parses source again against u's operator table, without
// lowering it, and returns every diagnostic that parse records, in case
// a caller wants the raw messages rather than the collapsed error
// Compile returns. Operator prototypes in source are installed into the
// table as a side effect.
func (u *Unit) Errors(source string) []string {
	p := parser.NewWithTable(source, u.ops)
	p.Parse()
	return p.Errors()
}
