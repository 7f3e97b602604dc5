package lower

import "github.com/kale-lang/kalc/ir"

// scope is a chain of named-value frames, generalizing scope/scope.go's
// Variables-map-plus-Parent chain from runtime values to IR stack slots:
// lookup walks from the innermost frame outward, so a `for`/`let` frame
// shadows anything with the same name further out, and discarding the
// frame on exit (see lowerer.VisitForExpr/VisitLetExpr) restores whatever
// was visible before.
type scope struct {
	slots  map[string]*ir.Instruction
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{slots: make(map[string]*ir.Instruction), parent: parent}
}

func (s *scope) bind(name string, slot *ir.Instruction) {
	s.slots[name] = slot
}

func (s *scope) lookup(name string) (*ir.Instruction, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if slot, ok := cur.slots[name]; ok {
			return slot, true
		}
	}
	return nil, false
}
