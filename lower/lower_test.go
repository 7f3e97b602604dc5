package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kale-lang/kalc/ir"
	"github.com/kale-lang/kalc/parser"
)

func lowerSource(t *testing.T, src string) (*ir.Module, error) {
	t.Helper()
	p := parser.New(src)
	nodes := p.Parse()
	return Lower(nodes)
}

func TestLower_SimpleArithmeticFunction(t *testing.T) {
	mod, err := lowerSource(t, "def foo(a,b) 1 + (2*3+a) + 4*5 + 6*b")
	require.NoError(t, err)

	fn, ok := mod.Function("foo")
	require.True(t, ok)
	assert.False(t, fn.IsDeclaration())
	assert.Equal(t, 2, fn.Arity())
	assert.Equal(t, ir.F64, fn.ReturnType())
}

func TestLower_MainReturnsI32(t *testing.T) {
	mod, err := lowerSource(t, "def foo(a,b) a+b   def main() foo(9,10)")
	require.NoError(t, err)

	main, ok := mod.Function("main")
	require.True(t, ok)
	assert.Equal(t, ir.I32, main.ReturnType())
	last := main.EntryBlock()
	for len(last.Successors()) > 0 {
		last = last.Successors()[len(last.Successors())-1]
	}
	assert.True(t, last.Terminated())
}

func TestLower_CallArityPreserved(t *testing.T) {
	mod, err := lowerSource(t, "def foo(a,b) a+b   def main() foo(9,10)")
	require.NoError(t, err)

	main, _ := mod.Function("main")
	var calls int
	for _, blk := range main.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Op == ir.OpCall {
				calls++
				assert.Equal(t, 2, len(instr.Operands))
			}
		}
	}
	assert.Equal(t, 1, calls)
}

func TestLower_ExternIsDeclarationOnly(t *testing.T) {
	mod, err := lowerSource(t, "extern bar(a,b)   def foo(a,b) a+b   def main() foo(9,10)")
	require.NoError(t, err)

	bar, ok := mod.Function("bar")
	require.True(t, ok)
	assert.True(t, bar.IsDeclaration())

	foo, ok := mod.Function("foo")
	require.True(t, ok)
	assert.False(t, foo.IsDeclaration())

	main, ok := mod.Function("main")
	require.True(t, ok)
	assert.False(t, main.IsDeclaration())
}

func TestLower_RedefiningAFunctionIsAlreadyDefined(t *testing.T) {
	_, err := lowerSource(t, "def foo() 1   def foo() 2")
	require.Error(t, err)
	lerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, AlreadyDefined, lerr.Kind)
}

func TestLower_ExternThenDefIsAllowed(t *testing.T) {
	mod, err := lowerSource(t, "extern foo(a)   def foo(a) a+1")
	require.NoError(t, err)
	fn, ok := mod.Function("foo")
	require.True(t, ok)
	assert.False(t, fn.IsDeclaration())
}

func TestLower_UnknownSymbol(t *testing.T) {
	_, err := lowerSource(t, "def foo() bar")
	require.Error(t, err)
	lerr := err.(*Error)
	assert.Equal(t, UnknownSymbol, lerr.Kind)
}

func TestLower_UnknownFunctionCall(t *testing.T) {
	_, err := lowerSource(t, "def main() bar(1,2)")
	require.Error(t, err)
	lerr := err.(*Error)
	assert.Equal(t, UnknownFunction, lerr.Kind)
}

func TestLower_ArityMismatch(t *testing.T) {
	_, err := lowerSource(t, "def foo(a,b) a+b   def main() foo(1)")
	require.Error(t, err)
	lerr := err.(*Error)
	assert.Equal(t, ArityMismatch, lerr.Kind)
}

func TestLower_BadAssignmentTarget(t *testing.T) {
	_, err := lowerSource(t, "def foo() 1 = 2")
	require.Error(t, err)
	lerr := err.(*Error)
	assert.Equal(t, BadAssignment, lerr.Kind)
}

func TestLower_AssignmentToLetBinding(t *testing.T) {
	mod, err := lowerSource(t, "def foo() let x=0 in x = x + 1")
	require.NoError(t, err)
	fn, ok := mod.Function("foo")
	require.True(t, ok)

	var stores int
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Op == ir.OpStore {
				stores++
			}
		}
	}
	assert.GreaterOrEqual(t, stores, 2) // initializer store + assignment store
}

func TestLower_ConditionalYieldsPhi(t *testing.T) {
	mod, err := lowerSource(t, "def foo(a,b) if(a<b) then 1 else 2")
	require.NoError(t, err)
	fn, _ := mod.Function("foo")

	var sawPhi bool
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Op == ir.OpPhi {
				sawPhi = true
				assert.Len(t, instr.Incoming, 2)
			}
		}
	}
	assert.True(t, sawPhi)
}

func TestLower_ForLoopTerminatesEveryBlock(t *testing.T) {
	mod, err := lowerSource(t, "def foo() let x=0 in (for i=1,i<10,1 in x = x + i)")
	require.NoError(t, err)
	fn, _ := mod.Function("foo")
	for _, blk := range fn.Blocks {
		assert.Truef(t, blk.Terminated(), "block %s not terminated", blk.Label)
	}
}

func TestLower_PrefixOperatorCallsDeclaredFunction(t *testing.T) {
	mod, err := lowerSource(t, "def operator!(l) 0-l   def main() !42")
	require.NoError(t, err)
	main, _ := mod.Function("main")

	var sawCall bool
	for _, blk := range main.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Op == ir.OpCall && instr.Callee == "!" {
				sawCall = true
				assert.Len(t, instr.Operands, 1)
			}
		}
	}
	assert.True(t, sawCall)
}

func TestLower_InfixUserOperatorCallsDeclaredFunction(t *testing.T) {
	mod, err := lowerSource(t, "def operator&100(l,r) if(l) then if(r) then 1 else 0 else 0   def main() 1 & 0")
	require.NoError(t, err)
	main, _ := mod.Function("main")

	var sawCall bool
	for _, blk := range main.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Op == ir.OpCall && instr.Callee == "&" {
				sawCall = true
				assert.Len(t, instr.Operands, 2)
			}
		}
	}
	assert.True(t, sawCall)
}

// `&` has no precedence in the table, so main's body ends at `1`; the
// parser then rejects `&` as the start of a new top-level expression
// because it was never declared as a prefix operator either.
func TestLower_UndeclaredOperatorIsParseFailure(t *testing.T) {
	_, err := lowerSource(t, "def main() 1 & 0")
	require.Error(t, err)
	lerr := err.(*Error)
	assert.Equal(t, ParseFailure, lerr.Kind)
}

func TestLower_BareExpressionWrappedAsAnonymousFunction(t *testing.T) {
	mod, err := lowerSource(t, "4+5")
	require.NoError(t, err)
	fns := mod.Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, "__anon_expr0", fns[0].Name)
}

func TestLower_LexErrorSurfacesAsParseFailureWithNoFunction(t *testing.T) {
	mod, err := lowerSource(t, "def foo() 1..2")
	require.Error(t, err)
	lerr := err.(*Error)
	assert.Equal(t, ParseFailure, lerr.Kind)
	assert.NotEmpty(t, lerr.Message)

	_, ok := mod.Function("foo")
	assert.False(t, ok)
}
