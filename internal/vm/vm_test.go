package vm

import (
	"testing"

	"github.com/aegis-lang/aegis/internal/lexer"
	"github.com/aegis-lang/aegis/internal/parser"
	"github.com/aegis-lang/aegis/internal/pipeline"
)

func run(t *testing.T, src string) Value {
	t.Helper()
	ctx := pipeline.NewPipelineContext(src)
	lexProc := &lexer.LexerProcessor{}
	ctx = lexProc.Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("lex error: %s", ctx.Errors[0].Error())
	}

	p := parser.New(ctx.TokenStream)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %s", errs[0].Error())
	}

	globals := NewGlobalTable()
	natives := NewNativeRegistry(nil)
	compiler := NewCompiler("<test>", globals, natives)
	fn, cerrs := compiler.Compile(program)
	if len(cerrs) > 0 {
		t.Fatalf("compile error: %s", cerrs[0].Error())
	}

	machine := NewVM(globals, natives)
	result, err := machine.Run(fn)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return result
}

func expectInt(t *testing.T, v Value, want int64) {
	t.Helper()
	if v.Kind != KindInt {
		t.Fatalf("expected Int, got %s (%v)", v.Kind, v)
	}
	if v.I != want {
		t.Errorf("got Int %d, want %d", v.I, want)
	}
}

func expectFloat(t *testing.T, v Value, want float64) {
	t.Helper()
	if v.Kind != KindFloat {
		t.Fatalf("expected Float, got %s (%v)", v.Kind, v)
	}
	if v.F != want {
		t.Errorf("got Float %g, want %g", v.F, want)
	}
}

func expectString(t *testing.T, v Value, want string) {
	t.Helper()
	if v.Kind != KindString {
		t.Fatalf("expected String, got %s (%v)", v.Kind, v)
	}
	if v.S != want {
		t.Errorf("got String %q, want %q", v.S, want)
	}
}

func expectBool(t *testing.T, v Value, want bool) {
	t.Helper()
	if v.Kind != KindBool {
		t.Fatalf("expected Bool, got %s (%v)", v.Kind, v)
	}
	if v.B != want {
		t.Errorf("got Bool %v, want %v", v.B, want)
	}
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"1 + 2", 3},
		{"10 - 4", 6},
		{"3 * 4", 12},
		{"7 % 3", 1},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 2", 5},
	}
	for _, c := range cases {
		expectInt(t, run(t, c.src), c.want)
	}
}

func TestFloatDivisionWhenUneven(t *testing.T) {
	expectFloat(t, run(t, "7 / 2"), 3.5)
}

func TestStringConcat(t *testing.T) {
	expectString(t, run(t, `"foo" + "bar"`), "foobar")
}

func TestComparisons(t *testing.T) {
	expectBool(t, run(t, "3 < 5"), true)
	expectBool(t, run(t, "3 == 3"), true)
	expectBool(t, run(t, `"a" == "a"`), true)
	expectBool(t, run(t, "3 != 4"), true)
}

func TestVarAndIf(t *testing.T) {
	src := `
var x = 10
if (x > 5) {
	x = x + 1
} else {
	x = 0
}
x
`
	expectInt(t, run(t, src), 11)
}

func TestWhileLoop(t *testing.T) {
	src := `
var i = 0
var sum = 0
while (i < 5) {
	sum = sum + i
	i = i + 1
}
sum
`
	expectInt(t, run(t, src), 10)
}

func TestFunctionCallAndReturn(t *testing.T) {
	src := `
func add(a, b) {
	return a + b
}
add(3, 4)
`
	expectInt(t, run(t, src), 7)
}

func TestClosureCapture(t *testing.T) {
	src := `
func makeAdder(n) {
	func adder(x) {
		return x + n
	}
	return adder
}
var addFive = makeAdder(5)
addFive(10)
`
	expectInt(t, run(t, src), 15)
}

func TestClassInheritanceAndSuper(t *testing.T) {
	src := `
class Animal {
	func speak() {
		return "..."
	}
}
class Dog extends Animal {
	func speak() {
		return super.speak() + "bark"
	}
}
var d = new Dog()
d.speak()
`
	expectString(t, run(t, src), "...bark")
}

func TestTryCatch(t *testing.T) {
	src := `
var result = ""
try {
	throw "boom"
} catch (e) {
	result = e
}
result
`
	expectString(t, run(t, src), "boom")
}

func TestNamespace(t *testing.T) {
	src := `
namespace Geo {
	var pi = 3
}
Geo.pi
`
	expectInt(t, run(t, src), 3)
}

func TestTernaryAndNullCoalesce(t *testing.T) {
	expectInt(t, run(t, "true ? 1 : 2"), 1)
	expectInt(t, run(t, "false ? 1 : 2"), 2)
	expectInt(t, run(t, "null ?? 5"), 5)
}

func TestForeachOverList(t *testing.T) {
	src := `
var total = 0
foreach (x in [1, 2, 3]) {
	total = total + x
}
total
`
	expectInt(t, run(t, src), 6)
}
