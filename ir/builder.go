package ir

// Builder is the façade the lowering pass drives: it creates functions
// and blocks and emits instructions at a single insertion cursor,
// without ever seeing Module/Function/BasicBlock internals directly.
// Kept as an interface (spec design note: "dynamic dispatch for the IR
// builder … isolates the core from any particular IR library") so a
// test can swap in a recording double instead of a real Module.
type Builder interface {
	Module() *Module

	DeclareFunction(name string, params []string, ret Type) *Function
	RemoveFunction(name string)

	AppendBlock(f *Function, label string) *BasicBlock
	SetInsertPoint(b *BasicBlock)
	InsertBlock() *BasicBlock

	EmitParam(index int, name string) *Instruction
	EmitConst(v float64) *Instruction
	EmitAdd(l, r *Instruction) *Instruction
	EmitSub(l, r *Instruction) *Instruction
	EmitMul(l, r *Instruction) *Instruction
	EmitCmpULT(l, r *Instruction) *Instruction
	EmitCmpNE(l, r *Instruction) *Instruction
	EmitUIToFP(v *Instruction) *Instruction
	EmitFPToSI(v *Instruction) *Instruction
	EmitAlloca(name string) *Instruction
	EmitLoad(slot *Instruction) *Instruction
	EmitStore(slot, v *Instruction)
	EmitCall(callee string, args []*Instruction, ret Type) *Instruction
	EmitRet(v *Instruction)
	EmitBr(target *BasicBlock)
	EmitCondBr(cond *Instruction, trueBlock, falseBlock *BasicBlock)
	EmitPhi(typ Type, incoming []PhiEdge) *Instruction
}

// ModuleBuilder is the production Builder: it appends straight into a
// real Module, one straight-line cursor at a time.
type ModuleBuilder struct {
	mod *Module
	cur *BasicBlock
}

// NewBuilder returns a Builder over a fresh, empty Module.
func NewBuilder() *ModuleBuilder {
	return &ModuleBuilder{mod: NewModule()}
}

func (b *ModuleBuilder) Module() *Module { return b.mod }

func (b *ModuleBuilder) DeclareFunction(name string, params []string, ret Type) *Function {
	return b.mod.Declare(name, params, ret)
}

func (b *ModuleBuilder) RemoveFunction(name string) {
	b.mod.Remove(name)
	if b.cur != nil && b.cur.Func != nil && b.cur.Func.Name == name {
		b.cur = nil
	}
}

func (b *ModuleBuilder) AppendBlock(f *Function, label string) *BasicBlock {
	blk := &BasicBlock{Label: label, Func: f}
	f.Blocks = append(f.Blocks, blk)
	return blk
}

func (b *ModuleBuilder) SetInsertPoint(blk *BasicBlock) { b.cur = blk }

func (b *ModuleBuilder) InsertBlock() *BasicBlock { return b.cur }

func (b *ModuleBuilder) emit(instr *Instruction) *Instruction {
	instr.ID = b.cur.Func.nextValueID()
	instr.Block = b.cur
	b.cur.Instrs = append(b.cur.Instrs, instr)
	return instr
}

func (b *ModuleBuilder) EmitParam(index int, name string) *Instruction {
	return b.emit(&Instruction{Op: OpParam, Type: F64, Index: index, Name: name})
}

func (b *ModuleBuilder) EmitConst(v float64) *Instruction {
	return b.emit(&Instruction{Op: OpConst, Type: F64, Imm: v})
}

func (b *ModuleBuilder) EmitAdd(l, r *Instruction) *Instruction {
	return b.emit(&Instruction{Op: OpAdd, Type: F64, Operands: []*Instruction{l, r}})
}

func (b *ModuleBuilder) EmitSub(l, r *Instruction) *Instruction {
	return b.emit(&Instruction{Op: OpSub, Type: F64, Operands: []*Instruction{l, r}})
}

func (b *ModuleBuilder) EmitMul(l, r *Instruction) *Instruction {
	return b.emit(&Instruction{Op: OpMul, Type: F64, Operands: []*Instruction{l, r}})
}

func (b *ModuleBuilder) EmitCmpULT(l, r *Instruction) *Instruction {
	return b.emit(&Instruction{Op: OpCmpULT, Type: Bool, Operands: []*Instruction{l, r}})
}

func (b *ModuleBuilder) EmitCmpNE(l, r *Instruction) *Instruction {
	return b.emit(&Instruction{Op: OpCmpNE, Type: Bool, Operands: []*Instruction{l, r}})
}

func (b *ModuleBuilder) EmitUIToFP(v *Instruction) *Instruction {
	return b.emit(&Instruction{Op: OpUIToFP, Type: F64, Operands: []*Instruction{v}})
}

func (b *ModuleBuilder) EmitFPToSI(v *Instruction) *Instruction {
	return b.emit(&Instruction{Op: OpFPToSI, Type: I32, Operands: []*Instruction{v}})
}

func (b *ModuleBuilder) EmitAlloca(name string) *Instruction {
	return b.emit(&Instruction{Op: OpAlloca, Type: F64, Name: name})
}

func (b *ModuleBuilder) EmitLoad(slot *Instruction) *Instruction {
	return b.emit(&Instruction{Op: OpLoad, Type: F64, Operands: []*Instruction{slot}})
}

func (b *ModuleBuilder) EmitStore(slot, v *Instruction) {
	b.emit(&Instruction{Op: OpStore, Operands: []*Instruction{slot, v}})
}

func (b *ModuleBuilder) EmitCall(callee string, args []*Instruction, ret Type) *Instruction {
	return b.emit(&Instruction{Op: OpCall, Type: ret, Callee: callee, Operands: args})
}

func (b *ModuleBuilder) EmitRet(v *Instruction) {
	var operands []*Instruction
	if v != nil {
		operands = []*Instruction{v}
	}
	b.emit(&Instruction{Op: OpRet, Operands: operands})
}

func (b *ModuleBuilder) EmitBr(target *BasicBlock) {
	b.emit(&Instruction{Op: OpBr, Target: target})
}

func (b *ModuleBuilder) EmitCondBr(cond *Instruction, trueBlock, falseBlock *BasicBlock) {
	b.emit(&Instruction{Op: OpCondBr, Operands: []*Instruction{cond}, TrueTarget: trueBlock, FalseTarget: falseBlock})
}

func (b *ModuleBuilder) EmitPhi(typ Type, incoming []PhiEdge) *Instruction {
	return b.emit(&Instruction{Op: OpPhi, Type: typ, Incoming: incoming})
}
