package parser

import (
	"testing"

	"github.com/aegis-lang/aegis/internal/ast"
	"github.com/aegis-lang/aegis/internal/lexer"
	"github.com/aegis-lang/aegis/internal/token"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	p := New(toks)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			t.Errorf("parse error: %v", e)
		}
		t.FailNow()
	}
	return prog
}

func TestParseVarAndPrint(t *testing.T) {
	prog := parseProgram(t, `var x = 1 + 2 * 3
print x`)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	v, ok := prog.Statements[0].(*ast.VarStatement)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.VarStatement", prog.Statements[0])
	}
	bin, ok := v.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+' for precedence climbing, got %#v", v.Value)
	}
}

func TestParseDestructuringVar(t *testing.T) {
	prog := parseProgram(t, `var [a, b] = pair`)
	seq, ok := prog.Statements[0].(*ast.SeqStatement)
	if !ok {
		t.Fatalf("expected *ast.SeqStatement, got %T", prog.Statements[0])
	}
	if len(seq.Statements) != 3 {
		t.Fatalf("expected 3 lowered statements (tmp + a + b), got %d", len(seq.Statements))
	}
}

func TestParseIfElseIf(t *testing.T) {
	prog := parseProgram(t, `if (x == 1) { print 1 } else if (x == 2) { print 2 } else { print 3 }`)
	ifs, ok := prog.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected *ast.IfStatement, got %T", prog.Statements[0])
	}
	if ifs.Else == nil || len(ifs.Else.Statements) != 1 {
		t.Fatalf("expected else branch holding nested if")
	}
	if _, ok := ifs.Else.Statements[0].(*ast.IfStatement); !ok {
		t.Fatalf("expected else-if to nest as *ast.IfStatement, got %T", ifs.Else.Statements[0])
	}
}

func TestParseCStyleFor(t *testing.T) {
	prog := parseProgram(t, `for (i, 0, 10, 2) { print i }`)
	f, ok := prog.Statements[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected *ast.ForStatement, got %T", prog.Statements[0])
	}
	if f.Var != "i" || f.Step == nil {
		t.Fatalf("unexpected for-loop shape: %+v", f)
	}
}

func TestParseClassWithExtendsAndSuper(t *testing.T) {
	prog := parseProgram(t, `
class Animal {
	prop name
	func speak() { print this.name }
}
class Dog extends Animal {
	func speak() { super.speak() }
}
`)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 class statements, got %d", len(prog.Statements))
	}
	dog := prog.Statements[1].(*ast.ClassStatement)
	if dog.Parent != "Animal" {
		t.Fatalf("expected Dog to extend Animal, got %q", dog.Parent)
	}
	speak := dog.Methods[0].Function
	if len(speak.Params) != 1 || speak.Params[0].Name != "this" {
		t.Fatalf("expected implicit 'this' parameter, got %+v", speak.Params)
	}
	stmt := speak.Body[0].(*ast.ExpressionStatement)
	if _, ok := stmt.Expr.(*ast.SuperCallExpr); !ok {
		t.Fatalf("expected super.speak() to parse as SuperCallExpr, got %T", stmt.Expr)
	}
}

func TestParseClassConstructorParamsAndMethodShorthand(t *testing.T) {
	prog := parseProgram(t, `
class A(x) { show() { print this.x } }
class B extends A { show() { super.show()
print this.x + 1 } }
`)
	a := prog.Statements[0].(*ast.ClassStatement)
	if len(a.Params) != 1 || a.Params[0] != "x" {
		t.Fatalf("expected A's constructor param 'x', got %+v", a.Params)
	}
	if a.Methods[0].Function.Name != "show" {
		t.Fatalf("expected method shorthand name 'show', got %q", a.Methods[0].Function.Name)
	}
	b := prog.Statements[1].(*ast.ClassStatement)
	if b.Params != nil {
		t.Fatalf("expected B to inherit A's constructor params (nil own list), got %+v", b.Params)
	}
}

func TestParseTryCatchThrow(t *testing.T) {
	prog := parseProgram(t, `
try {
	throw "boom"
} catch (e) {
	print e
}
`)
	tr, ok := prog.Statements[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("expected *ast.TryStatement, got %T", prog.Statements[0])
	}
	if tr.CatchVar != "e" {
		t.Fatalf("expected catch var 'e', got %q", tr.CatchVar)
	}
	if _, ok := tr.Try.Statements[0].(*ast.ThrowStatement); !ok {
		t.Fatalf("expected ThrowStatement in try body")
	}
}

func TestParseSwitch(t *testing.T) {
	prog := parseProgram(t, `
switch (x) {
case 1:
	print "one"
case 2, 3:
	print "two or three"
default:
	print "other"
}
`)
	sw, ok := prog.Statements[0].(*ast.SwitchStatement)
	if !ok {
		t.Fatalf("expected *ast.SwitchStatement, got %T", prog.Statements[0])
	}
	if len(sw.Cases) != 2 || len(sw.Cases[1].Values) != 2 || len(sw.Default) != 1 {
		t.Fatalf("unexpected switch shape: %+v", sw)
	}
}

func TestParseTernaryAndNullCoalesce(t *testing.T) {
	prog := parseProgram(t, `var x = a ? b : c ?? d`)
	v := prog.Statements[0].(*ast.VarStatement)
	if _, ok := v.Value.(*ast.TernaryExpr); !ok {
		t.Fatalf("expected TernaryExpr at top level, got %T", v.Value)
	}
}

func TestParseCompoundAssignAndIncrement(t *testing.T) {
	prog := parseProgram(t, `x += 1
x++`)
	es := prog.Statements[0].(*ast.ExpressionStatement)
	assign, ok := es.Expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", es.Expr)
	}
	if _, ok := assign.Value.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected compound assign to desugar to a BinaryExpr RHS, got %T", assign.Value)
	}
}

func TestParseMemberAssignChain(t *testing.T) {
	prog := parseProgram(t, `a.b.c = 1`)
	es := prog.Statements[0].(*ast.ExpressionStatement)
	assign := es.Expr.(*ast.AssignExpr)
	member, ok := assign.Target.(*ast.MemberExpr)
	if !ok || member.Name != "c" {
		t.Fatalf("expected assignment target member 'c', got %#v", assign.Target)
	}
	if _, ok := member.Object.(*ast.MemberExpr); !ok {
		t.Fatalf("expected nested member chain for 'a.b'")
	}
}

func TestParseDecoratedFunction(t *testing.T) {
	prog := parseProgram(t, `@memo func square(n) { return n * n }`)
	es, ok := prog.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", prog.Statements[0])
	}
	assign, ok := es.Expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected decorated func to lower to an assignment, got %T", es.Expr)
	}
	ident, ok := assign.Target.(*ast.Identifier)
	if !ok || ident.Name != "square" {
		t.Fatalf("expected assignment target 'square', got %#v", assign.Target)
	}
	call, ok := assign.Value.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected decorator call wrapping the lambda, got %T", assign.Value)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected decorator called with one lambda arg")
	}
}
