/*
Package lower implements the AST-to-IR lowering pass: it walks the
parser's node forest via ast.Visitor and drives an ir.Builder to produce
a populated ir.Module, following the stack-slot-promotion scheme (every
parameter, for-induction, and let-binding gets an entry-block alloca;
reads load it, assignment stores to it) so that `=` is correct by
construction without a separate SSA-construction pass over every name.
*/
package lower

import (
	"fmt"

	"github.com/kale-lang/kalc/ast"
	"github.com/kale-lang/kalc/ir"
)

// Lower walks nodes in order over a fresh builder and returns the module
// they build. This is the one-shot entry point a single whole-file
// compile uses; an incremental caller (the REPL, compiling one line at
// a time into a module that accumulates across lines) uses LowerInto
// instead.
func Lower(nodes []ast.Node) (*ir.Module, error) {
	b := ir.NewBuilder()
	anonID := 0
	err := LowerInto(b, nodes, &anonID)
	return b.Module(), err
}

// LowerInto walks nodes into the module b already owns, so a caller can
// lower several node batches into the same growing module over
// successive calls; anonID is threaded in by the caller so each batch's
// anonymous-expression names keep counting up rather than colliding with
// names from an earlier batch. A bare top-level expression is wrapped
// into an anonymous function first, the classic Kaleidoscope tutorial's
// convention for making "just type an expression" work at the REPL.
// Lowering continues past a failing top-level node (the function that
// failed is removed from the module so a caller never sees a half-built
// one) and returns the first error encountered; every other node still
// gets its chance to lower.
func LowerInto(b ir.Builder, nodes []ast.Node, anonID *int) error {
	l := &lowerer{b: b, anonID: *anonID}
	var firstErr error
	for _, n := range nodes {
		target := n
		if expr, ok := n.(ast.Expr); ok {
			name := fmt.Sprintf("__anon_expr%d", l.anonID)
			l.anonID++
			target = &ast.Function{Proto: &ast.Prototype{Name: name}, Body: expr}
		}
		l.err = nil
		target.Accept(l)
		if l.err != nil && firstErr == nil {
			firstErr = l.err
		}
	}
	*anonID = l.anonID
	return firstErr
}

// lowerer is the sole production ast.Visitor: it holds the running
// builder cursor, the current named-value scope, and the one error (if
// any) the node being visited produced. Visit methods that yield a
// value stash it in lastValue rather than returning it directly, since
// ast.Visitor's methods are void — lowerExpr is the wrapper every
// caller actually uses.
type lowerer struct {
	b ir.Builder

	scope  *scope
	fnName string // name of the Function currently being lowered, for error context

	anonID int

	lastValue *ir.Instruction
	err       error
}

func (l *lowerer) fail(kind Kind, format string, args ...interface{}) {
	if l.err != nil {
		return
	}
	l.err = &Error{Kind: kind, Func: l.fnName, Message: fmt.Sprintf(format, args...)}
}

// lowerExpr visits n and returns the value it produced, or nil if an
// error was already recorded (by n itself or an earlier sibling).
func (l *lowerer) lowerExpr(n ast.Expr) *ir.Instruction {
	if l.err != nil {
		return nil
	}
	n.Accept(l)
	if l.err != nil {
		return nil
	}
	return l.lastValue
}

// allocaInEntry emits an alloca in fn's entry block regardless of the
// builder's current insertion point, then restores that point — every
// user-named slot must live in entry (spec: "all user names ... live in
// stack slots in the entry block") even when the binding is introduced
// deep inside a loop or a let body.
func (l *lowerer) allocaInEntry(fn *ir.Function, name string) *ir.Instruction {
	cur := l.b.InsertBlock()
	entry := fn.EntryBlock()
	terminated := entry.Terminated()
	l.b.SetInsertPoint(entry)
	slot := l.b.EmitAlloca(name)
	l.b.SetInsertPoint(cur)
	if terminated {
		// Keep entry's terminator last: move the new alloca in front of it.
		n := len(entry.Instrs)
		entry.Instrs[n-2], entry.Instrs[n-1] = entry.Instrs[n-1], entry.Instrs[n-2]
	}
	return slot
}

func (l *lowerer) VisitVariable(n *ast.Variable) {
	slot, ok := l.scope.lookup(n.Name)
	if !ok {
		l.fail(UnknownSymbol, "Unknown symbol %s", n.Name)
		return
	}
	l.lastValue = l.b.EmitLoad(slot)
}

func (l *lowerer) VisitLiteral(n *ast.Literal) {
	l.lastValue = l.b.EmitConst(n.Value)
}

func (l *lowerer) VisitUnaryExpr(n *ast.UnaryExpr) {
	operand := l.lowerExpr(n.Operand)
	if l.err != nil {
		return
	}
	l.lastValue = l.lowerOperatorCall(n.Op, []*ir.Instruction{operand})
}

func (l *lowerer) VisitBinExpr(n *ast.BinExpr) {
	if n.Op == "=" {
		l.lowerAssign(n)
		return
	}

	lhs := l.lowerExpr(n.LHS)
	if l.err != nil {
		return
	}
	rhs := l.lowerExpr(n.RHS)
	if l.err != nil {
		return
	}

	switch n.Op {
	case "+":
		l.lastValue = l.b.EmitAdd(lhs, rhs)
	case "-":
		l.lastValue = l.b.EmitSub(lhs, rhs)
	case "*":
		l.lastValue = l.b.EmitMul(lhs, rhs)
	case "<":
		cmp := l.b.EmitCmpULT(lhs, rhs)
		l.lastValue = l.b.EmitUIToFP(cmp)
	default:
		l.lastValue = l.lowerOperatorCall(n.Op, []*ir.Instruction{lhs, rhs})
	}
}

// lowerAssign requires a Variable on the left; anything else (the
// chained `a = b = c` case flagged as an open question, or a literal,
// call, etc.) is rejected rather than guessed at.
func (l *lowerer) lowerAssign(n *ast.BinExpr) {
	target, ok := n.LHS.(*ast.Variable)
	if !ok {
		l.fail(BadAssignment, "left-hand side of = must be a variable")
		return
	}
	slot, ok := l.scope.lookup(target.Name)
	if !ok {
		l.fail(UnknownSymbol, "Unknown symbol %s", target.Name)
		return
	}
	rhs := l.lowerExpr(n.RHS)
	if l.err != nil {
		return
	}
	l.b.EmitStore(slot, rhs)
	l.lastValue = rhs
}

// lowerOperatorCall lowers a user-defined operator application (infix
// or prefix) to a call on the function named by its spelling.
func (l *lowerer) lowerOperatorCall(spelling string, args []*ir.Instruction) *ir.Instruction {
	fn, ok := l.b.Module().Function(spelling)
	if !ok {
		l.fail(UnknownFunction, "Unknown function referenced")
		return nil
	}
	if fn.Arity() != len(args) {
		l.fail(ArityMismatch, "Mismatch in the number of arguments between the function call and definition")
		return nil
	}
	return l.b.EmitCall(spelling, args, fn.ReturnType())
}

func (l *lowerer) VisitCallExpr(n *ast.CallExpr) {
	fn, ok := l.b.Module().Function(n.Callee)
	if !ok {
		l.fail(UnknownFunction, "Unknown function referenced")
		return
	}
	if fn.Arity() != len(n.Args) {
		l.fail(ArityMismatch, "Mismatch in the number of arguments between the function call and definition")
		return
	}
	args := make([]*ir.Instruction, len(n.Args))
	for i, a := range n.Args {
		v := l.lowerExpr(a)
		if l.err != nil {
			return
		}
		args[i] = v
	}
	l.lastValue = l.b.EmitCall(n.Callee, args, fn.ReturnType())
}

// cmpNotZero lowers cond and compares it not-equal to 0.0, the branch
// test every conditional and for-loop condition shares.
func (l *lowerer) cmpNotZero(cond ast.Expr) *ir.Instruction {
	v := l.lowerExpr(cond)
	if l.err != nil {
		return nil
	}
	zero := l.b.EmitConst(0.0)
	return l.b.EmitCmpNE(v, zero)
}

// VisitConditionalExpr lowers to a real phi at the join block rather
// than an anonymous stack slot: the then/else arms are a non-looping,
// two-predecessor merge, so there is no back-edge to patch up and a phi
// is already the simplest correct shape — unlike ForExpr, which reuses
// the induction variable's slot because its loop header is itself a
// predecessor of code that runs before the slot's final store exists.
func (l *lowerer) VisitConditionalExpr(n *ast.ConditionalExpr) {
	fn := l.b.InsertBlock().Func

	test := l.cmpNotZero(n.Cond)
	if l.err != nil {
		return
	}

	thenBlock := l.b.AppendBlock(fn, blockLabel(fn, "then"))
	elseBlock := l.b.AppendBlock(fn, blockLabel(fn, "else"))
	joinBlock := l.b.AppendBlock(fn, blockLabel(fn, "ifcont"))

	l.b.EmitCondBr(test, thenBlock, elseBlock)

	l.b.SetInsertPoint(thenBlock)
	thenVal := l.lowerExpr(n.Then)
	if l.err != nil {
		return
	}
	thenExit := l.b.InsertBlock()
	l.b.EmitBr(joinBlock)

	l.b.SetInsertPoint(elseBlock)
	elseVal := l.lowerExpr(n.Else)
	if l.err != nil {
		return
	}
	elseExit := l.b.InsertBlock()
	l.b.EmitBr(joinBlock)

	l.b.SetInsertPoint(joinBlock)
	l.lastValue = l.b.EmitPhi(ir.F64, []ir.PhiEdge{
		{Value: thenVal, Block: thenExit},
		{Value: elseVal, Block: elseExit},
	})
}

// VisitForExpr lowers a counted loop: the induction variable keeps its
// stack slot across the back edge rather than being promoted to a phi,
// the scope-limiting choice PromoteStackSlots' doc comment explains —
// a loop header's phi would need its back-edge value patched in after
// the body is lowered, which is exactly the speculative dominance
// work this core's intra-block-only promotion pass avoids.
func (l *lowerer) VisitForExpr(n *ast.ForExpr) {
	fn := l.b.InsertBlock().Func

	init := l.lowerExpr(n.Init)
	if l.err != nil {
		return
	}
	slot := l.allocaInEntry(fn, n.Name)
	l.b.EmitStore(slot, init)

	loopBlock := l.b.AppendBlock(fn, blockLabel(fn, "loop"))
	afterBlock := l.b.AppendBlock(fn, blockLabel(fn, "afterloop"))
	l.b.EmitBr(loopBlock)

	l.b.SetInsertPoint(loopBlock)
	prevScope := l.scope
	l.scope = newScope(prevScope)
	l.scope.bind(n.Name, slot)

	l.lowerExpr(n.Body) // value discarded; for always yields 0.0
	if l.err != nil {
		l.scope = prevScope
		return
	}

	step := n.Step
	var stepVal *ir.Instruction
	if step == nil {
		stepVal = l.b.EmitConst(1.0)
	} else {
		stepVal = l.lowerExpr(step)
		if l.err != nil {
			l.scope = prevScope
			return
		}
	}
	cur := l.b.EmitLoad(slot)
	next := l.b.EmitAdd(cur, stepVal)
	l.b.EmitStore(slot, next)

	test := l.cmpNotZero(n.Cond)
	l.scope = prevScope
	if l.err != nil {
		return
	}
	l.b.EmitCondBr(test, loopBlock, afterBlock)

	l.b.SetInsertPoint(afterBlock)
	l.lastValue = l.b.EmitConst(0.0)
}

func (l *lowerer) VisitLetExpr(n *ast.LetExpr) {
	fn := l.b.InsertBlock().Func
	prevScope := l.scope
	l.scope = newScope(prevScope)

	for _, bind := range n.Bindings {
		var init *ir.Instruction
		if bind.Init == nil {
			init = l.b.EmitConst(0.0)
		} else {
			init = l.lowerExpr(bind.Init)
			if l.err != nil {
				l.scope = prevScope
				return
			}
		}
		slot := l.allocaInEntry(fn, bind.Name)
		l.b.EmitStore(slot, init)
		l.scope.bind(bind.Name, slot)
	}

	l.lastValue = l.lowerExpr(n.Body)
	l.scope = prevScope
}

// VisitPrototype only fires when a Prototype is visited on its own,
// which the forest this package walks never does directly — Function
// and Extern both resolve their own Proto through declare instead, so
// that each can tell "fresh declaration" apart from "already defined".
// This method exists to satisfy ast.Visitor.
func (l *lowerer) VisitPrototype(n *ast.Prototype) {
	l.declare(n)
}

// declare returns the module's existing function by this name, or
// registers a fresh declaration. An existing function is returned as it
// is; its parameter list is not compared with proto's. already is true only
// when a prior *definition* (not just an extern) exists under this
// name, the one case Function lowering must reject.
func (l *lowerer) declare(proto *ast.Prototype) (fn *ir.Function, already bool) {
	ret := ir.F64
	if proto.Name == "main" {
		ret = ir.I32
	}
	if existing, ok := l.b.Module().Function(proto.Name); ok {
		if !existing.IsDeclaration() {
			return existing, true
		}
		return existing, false
	}
	return l.b.DeclareFunction(proto.Name, proto.Params, ret), false
}

func (l *lowerer) VisitFunction(n *ast.Function) {
	l.fnName = n.Proto.Name
	defer func() { l.fnName = "" }()

	fn, already := l.declare(n.Proto)
	if already {
		l.fail(AlreadyDefined, "%q is already defined", n.Proto.Name)
		return
	}

	entry := l.b.AppendBlock(fn, "entry")
	l.b.SetInsertPoint(entry)

	prevScope := l.scope
	l.scope = newScope(nil)
	defer func() { l.scope = prevScope }()

	for i, pname := range n.Proto.Params {
		param := l.b.EmitParam(i, pname)
		slot := l.b.EmitAlloca(pname)
		l.b.EmitStore(slot, param)
		l.scope.bind(pname, slot)
	}

	ret := l.lowerExpr(n.Body)
	if l.err != nil {
		l.b.RemoveFunction(fn.Name)
		return
	}

	if fn.ReturnType() == ir.I32 {
		ret = l.b.EmitFPToSI(ret)
	}
	l.b.EmitRet(ret)

	if err := ir.Verify(fn); err != nil {
		l.fail(VerifierError, "%s: %v", fn.Name, err)
		l.b.RemoveFunction(fn.Name)
		return
	}
	ir.Optimize(fn)
}

func (l *lowerer) VisitExtern(n *ast.Extern) {
	l.fnName = n.Proto.Name
	defer func() { l.fnName = "" }()

	if _, already := l.declare(n.Proto); already {
		l.fail(AlreadyDefined, "%q is already defined", n.Proto.Name)
	}
}

func (l *lowerer) VisitError(n *ast.Error) {
	l.fail(ParseFailure, "%s", n.Message)
}

func blockLabel(fn *ir.Function, base string) string {
	return fmt.Sprintf("%s%d", base, len(fn.Blocks))
}
