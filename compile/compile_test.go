package compile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kale-lang/kalc/lower"
)

func TestCompile_ArithmeticAndConditionalProgram(t *testing.T) {
	mod, err := Compile(`def foo(a,b) 1 + (2*3+a) + 4*5 + 6*b*if(a<b)then 16*b else 32*a   def main() foo(9,10)`)
	require.NoError(t, err)

	foo, ok := mod.Function("foo")
	require.True(t, ok)
	assert.False(t, foo.IsDeclaration())

	main, ok := mod.Function("main")
	require.True(t, ok)
	assert.False(t, main.IsDeclaration())
}

func TestCompile_UserOperatorLoopProgram(t *testing.T) {
	mod, err := Compile(`def operator:1(l,r) r   def baz() let x=0 in (for i=1,i<10,1 in x = x + i) : x   def main() baz()`)
	require.NoError(t, err)

	_, ok := mod.Function("baz")
	assert.True(t, ok)
	_, ok = mod.Function("main")
	assert.True(t, ok)
}

func TestCompile_PrefixOperatorProgram(t *testing.T) {
	mod, err := Compile(`def operator!(l) 0-l   def main() !42`)
	require.NoError(t, err)

	main, ok := mod.Function("main")
	require.True(t, ok)
	assert.False(t, main.IsDeclaration())
}

func TestCompile_InfixOperatorProgram(t *testing.T) {
	mod, err := Compile(`def operator&100(l,r) if(l) then if(r) then 1 else 0 else 0   def main() 1 & 0`)
	require.NoError(t, err)

	_, ok := mod.Function("&")
	assert.True(t, ok)
}

func TestCompile_ExternDeclarationAlongsideDefinitions(t *testing.T) {
	mod, err := Compile(`extern bar(a,b)   def foo(a,b) 1 + (2*3+a) + 4*5 + 6*b   def main() foo(9,10)`)
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

func TestCompile_LexErrorYieldsNoFooFunction(t *testing.T) {
	mod, err := Compile(`def foo() 1..2`)
	require.Error(t, err)
	lerr, ok := err.(*lower.Error)
	require.True(t, ok)
	assert.Equal(t, lower.ParseFailure, lerr.Kind)
	assert.NotEmpty(t, lerr.Message)

	_, ok = mod.Function("foo")
	assert.False(t, ok)
}

func TestCompile_StructuralGoldenDump(t *testing.T) {
	mod, err := Compile(`def foo(a,b) 1+(2*3) def main() foo(1,2)`)
	require.NoError(t, err)

	dump := mod.Dump()
	assert.Equal(t, 1, strings.Count(dump, "define double @foo"))
	assert.Contains(t, dump, "define double @foo(double %a, double %b)")
	assert.Equal(t, 1, strings.Count(dump, "define i32 @main"))
	assert.Contains(t, dump, "fptosi")
	assert.Contains(t, dump, "call double @foo(")
}

func TestUnit_OperatorPersistsAcrossIncrementalCompiles(t *testing.T) {
	u := New()
	_, err := u.Compile(`def operator$50(l,r) l*r`)
	require.NoError(t, err)

	_, err = u.Compile(`def main() 2 $ 3`)
	require.NoError(t, err)

	_, ok := u.Module().Function("main")
	assert.True(t, ok)
}

func TestUnit_ModuleAccumulatesAcrossCompiles(t *testing.T) {
	u := New()
	_, err := u.Compile(`def foo(a) a+1`)
	require.NoError(t, err)
	_, err = u.Compile(`def main() foo(41)`)
	require.NoError(t, err)

	mod := u.Module()
	_, ok := mod.Function("foo")
	assert.True(t, ok)
	_, ok = mod.Function("main")
	assert.True(t, ok)
}
