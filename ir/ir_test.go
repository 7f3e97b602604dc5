package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_DeclareIsIdempotent(t *testing.T) {
	mod := NewModule()
	f1 := mod.Declare("foo", []string{"a", "b"}, F64)
	f2 := mod.Declare("foo", []string{"x"}, I32)
	assert.Same(t, f1, f2)
	assert.Equal(t, []string{"a", "b"}, f2.Params)
}

func TestModule_FunctionsPreservesDeclarationOrder(t *testing.T) {
	mod := NewModule()
	mod.Declare("c", nil, F64)
	mod.Declare("a", nil, F64)
	mod.Declare("b", nil, F64)

	names := make([]string, 0, 3)
	for _, f := range mod.Functions() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestModule_RemoveDropsFunctionAndOrderEntry(t *testing.T) {
	mod := NewModule()
	mod.Declare("keep", nil, F64)
	mod.Declare("drop", nil, F64)
	mod.Remove("drop")

	_, ok := mod.Function("drop")
	assert.False(t, ok)
	assert.Len(t, mod.Functions(), 1)
	assert.Equal(t, "keep", mod.Functions()[0].Name)

	mod.Remove("nonexistent") // no-op, must not panic
}

func TestFunction_ArityAndReturnType(t *testing.T) {
	mod := NewModule()
	f := mod.Declare("foo", []string{"a", "b", "c"}, F64)
	assert.Equal(t, 3, f.Arity())
	assert.Equal(t, F64, f.ReturnType())

	main := mod.Declare("main", nil, I32)
	assert.Equal(t, 0, main.Arity())
	assert.Equal(t, I32, main.ReturnType())
}

func TestFunction_IsDeclarationUntilItGetsABlock(t *testing.T) {
	mod := NewModule()
	f := mod.Declare("foo", []string{"x"}, F64)
	assert.True(t, f.IsDeclaration())
	assert.Nil(t, f.EntryBlock())

	b := NewBuilder()
	entry := b.AppendBlock(f, "entry")
	assert.False(t, f.IsDeclaration())
	assert.Same(t, entry, f.EntryBlock())
}

func buildSimpleFunction(b *ModuleBuilder, name string, ret Type) *Function {
	f := b.DeclareFunction(name, []string{"a", "b"}, ret)
	entry := b.AppendBlock(f, "entry")
	b.SetInsertPoint(entry)
	return f
}

// TestDump_GoldenScenario mirrors `def foo(a,b) 1+(2*3) def main() foo(1,2)`:
// foo computes a constant expression and returns it as a double; main calls
// foo and narrows the result to i32 via fptosi.
func TestDump_GoldenScenario(t *testing.T) {
	b := NewBuilder()

	foo := buildSimpleFunction(b, "foo", F64)
	two := b.EmitConst(2)
	three := b.EmitConst(3)
	mul := b.EmitMul(two, three)
	one := b.EmitConst(1)
	sum := b.EmitAdd(one, mul)
	b.EmitRet(sum)
	require.NoError(t, Verify(foo))

	main := b.DeclareFunction("main", nil, I32)
	mainEntry := b.AppendBlock(main, "entry")
	b.SetInsertPoint(mainEntry)
	one2 := b.EmitConst(1)
	two2 := b.EmitConst(2)
	call := b.EmitCall("foo", []*Instruction{one2, two2}, F64)
	narrowed := b.EmitFPToSI(call)
	b.EmitRet(narrowed)
	require.NoError(t, Verify(main))

	dump := b.Module().Dump()

	assert.Contains(t, dump, "define double @foo(double %a, double %b)")
	assert.Contains(t, dump, "define i32 @main()")
	assert.Contains(t, dump, "fptosi")
	assert.Contains(t, dump, "call double @foo(")

	// constants render in decimal, never scientific, form.
	assert.True(t, strings.Contains(dump, "fconst 1.0") || strings.Contains(dump, "fconst 1"))
}

func TestDump_DeclarationRendersAsDeclare(t *testing.T) {
	mod := NewModule()
	mod.Declare("sin", []string{"x"}, F64)
	dump := mod.Dump()
	assert.Contains(t, dump, "declare double @sin(double %x)")
	assert.NotContains(t, dump, "define double @sin")
}

func TestVerify_PassesOnWellFormedFunction(t *testing.T) {
	b := NewBuilder()
	f := buildSimpleFunction(b, "foo", F64)
	c := b.EmitConst(42)
	b.EmitRet(c)
	assert.NoError(t, Verify(f))
}

func TestVerify_DeclarationAlwaysPasses(t *testing.T) {
	mod := NewModule()
	f := mod.Declare("sin", []string{"x"}, F64)
	assert.NoError(t, Verify(f))
}

func TestVerify_FailsOnUnterminatedBlock(t *testing.T) {
	b := NewBuilder()
	f := b.DeclareFunction("foo", nil, F64)
	entry := b.AppendBlock(f, "entry")
	b.SetInsertPoint(entry)
	b.EmitConst(1) // no ret

	err := Verify(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not terminated")
}

func TestVerify_FailsOnUseBeforeDefInSameBlock(t *testing.T) {
	b := NewBuilder()
	f := b.DeclareFunction("foo", nil, F64)
	entry := b.AppendBlock(f, "entry")
	b.SetInsertPoint(entry)

	// Manually construct a use-before-def: an add referencing an
	// instruction that is numbered (and appears) after it.
	later := &Instruction{Op: OpConst, Imm: 1}
	bad := &Instruction{Op: OpAdd, Type: F64, Operands: []*Instruction{later, later}}
	bad.ID = f.nextValueID()
	bad.Block = entry
	later.ID = f.nextValueID()
	later.Block = entry
	entry.Instrs = []*Instruction{bad, later}
	b.EmitRet(bad)

	err := Verify(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before it is defined")
}

func TestVerify_FailsOnNonDominatingCrossBlockUse(t *testing.T) {
	b := NewBuilder()
	f := b.DeclareFunction("foo", nil, F64)
	entry := b.AppendBlock(f, "entry")
	thenBlk := b.AppendBlock(f, "then")
	elseBlk := b.AppendBlock(f, "else")

	b.SetInsertPoint(entry)
	cond := b.EmitConst(1)
	b.EmitCondBr(cond, thenBlk, elseBlk)

	b.SetInsertPoint(thenBlk)
	onlyInThen := b.EmitConst(7)
	b.EmitRet(onlyInThen)

	b.SetInsertPoint(elseBlk)
	// elseBlk illegitimately uses a value defined only in the sibling
	// thenBlk, which does not dominate it.
	b.EmitRet(onlyInThen)

	err := Verify(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not dominate")
}

func TestBasicBlock_SuccessorsByTerminator(t *testing.T) {
	b := NewBuilder()
	f := b.DeclareFunction("foo", nil, F64)
	entry := b.AppendBlock(f, "entry")
	target := b.AppendBlock(f, "target")

	assert.Empty(t, entry.Successors())
	assert.False(t, entry.Terminated())

	b.SetInsertPoint(entry)
	b.EmitBr(target)
	assert.Equal(t, []*BasicBlock{target}, entry.Successors())
	assert.True(t, entry.Terminated())
}
