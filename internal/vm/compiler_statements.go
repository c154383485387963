package vm

import (
	"strings"

	"github.com/aegis-lang/aegis/internal/ast"
)

func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		c.compileExpression(s.Expr)
		c.emit(OpPop, s.Line())
	case *ast.VarStatement:
		c.compileVarStatement(s)
	case *ast.ConstStatement:
		c.compileConstStatement(s)
	case *ast.PrintStatement:
		c.compileExpression(s.Value)
		c.emit(OpPrint, s.Line())
	case *ast.BlockStatement:
		c.beginScope()
		for _, st := range s.Statements {
			c.compileStatement(st)
		}
		c.endScope(s.Line())
	case *ast.IfStatement:
		c.compileIfStatement(s)
	case *ast.WhileStatement:
		c.compileWhileStatement(s)
	case *ast.ForStatement:
		c.compileForStatement(s)
	case *ast.ForeachStatement:
		c.compileForeachStatement(s)
	case *ast.FunctionStatement:
		c.compileFunctionStatement(s)
	case *ast.ClassStatement:
		c.compileClassStatement(s)
	case *ast.InterfaceStatement:
		c.compileInterfaceStatement(s)
	case *ast.EnumStatement:
		c.compileEnumStatement(s)
	case *ast.NamespaceStatement:
		c.compileNamespaceStatement(s)
	case *ast.ImportStatement:
		c.compileImportStatement(s)
	case *ast.TryStatement:
		c.compileTryStatement(s)
	case *ast.ThrowStatement:
		c.compileExpression(s.Value)
		c.emit(OpThrow, s.Line())
	case *ast.SwitchStatement:
		c.compileSwitchStatement(s)
	case *ast.BreakStatement:
		c.compileBreakStatement(s)
	case *ast.ContinueStatement:
		c.compileContinueStatement(s)
	case *ast.ReturnStatement:
		c.compileReturnStatement(s)
	case *ast.SeqStatement:
		for _, st := range s.Statements {
			c.compileStatement(st)
		}
	default:
		c.errorf(stmt.Line(), "compiler: unhandled statement %T", stmt)
	}
}

// bindDeclaration stores the value already sitting on top of the
// stack under name: as a global (when compiling at script scope) or
// as a new local (whose slot is simply wherever that value already
// is on the operand stack).
func (c *Compiler) bindDeclaration(name string, line int) {
	if c.atScriptScope() {
		gid := c.globals.Intern(name)
		c.emit(OpSetGlobal, line)
		c.emitByte(byte(gid), line)
		c.emit(OpPop, line)
		return
	}
	c.declareLocal(name, line)
}

func (c *Compiler) compileVarStatement(v *ast.VarStatement) {
	line := v.Line()
	if v.Value != nil {
		c.compileExpression(v.Value)
	} else {
		c.emitConst(Null(), line)
	}
	if v.Type != "" {
		c.emit(OpDup, line)
		tidx := c.internConstString(v.Type, line)
		c.emit(OpCheckType, line)
		c.emitByte(tidx, line)
		c.emit(OpPop, line)
	}
	c.bindDeclaration(v.Name, line)
}

func (c *Compiler) compileConstStatement(s *ast.ConstStatement) {
	c.compileExpression(s.Value)
	c.bindDeclaration(s.Name, s.Line())
}

func (c *Compiler) compileIfStatement(n *ast.IfStatement) {
	line := n.Line()
	c.compileExpression(n.Cond)
	thenJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)
	c.compileStatement(n.Then)
	if n.Else != nil {
		elseJump := c.emitJump(OpJump, line)
		c.patchJump(thenJump)
		c.emit(OpPop, line)
		c.compileStatement(n.Else)
		c.patchJump(elseJump)
		return
	}
	c.patchJump(thenJump)
	c.emit(OpPop, line)
}

func (c *Compiler) compileFunctionStatement(f *ast.FunctionStatement) {
	c.compileFunctionLiteral(f.Function)
	c.bindDeclaration(f.Function.Name, f.Line())
}

func (c *Compiler) compileInterfaceStatement(s *ast.InterfaceStatement) {
	line := s.Line()
	idx, err := c.fn.chunk.AddConstant(Value{Kind: KindInterface, S: s.Name})
	if err != nil {
		c.errorf(line, "%v", err)
		return
	}
	c.emit(OpLoadConst, line)
	c.emitByte(idx, line)
	c.bindDeclaration(s.Name, line)
}

func (c *Compiler) compileEnumStatement(e *ast.EnumStatement) {
	line := e.Line()
	c.emitConst(Str(e.Name), line)
	var next int64
	for _, m := range e.Members {
		if m.Value != nil {
			next = *m.Value
		}
		c.emitConst(Str(m.Name), line)
		c.emitConst(Int(next), line)
		next++
	}
	if len(e.Members) > 255 {
		c.errorf(line, "enum %s has more than 255 members", e.Name)
		return
	}
	c.emit(OpMakeEnum, line)
	c.emitByte(byte(len(e.Members)), line)
	c.bindDeclaration(e.Name, line)
}

// compileNamespaceStatement lowers `namespace Name { ... }` into an
// immediately-invoked zero-argument closure whose body is the
// namespace's statements, returning a dict of the names it declared
// at its own top level (spec.md §4.3).
func (c *Compiler) compileNamespaceStatement(n *ast.NamespaceStatement) {
	line := n.Line()
	parent := c.fn
	c.fn = &funcScope{chunk: NewChunk(), enclosing: parent}

	var names []string
	for _, st := range n.Body {
		c.compileStatement(st)
		switch s := st.(type) {
		case *ast.VarStatement:
			names = append(names, s.Name)
		case *ast.ConstStatement:
			names = append(names, s.Name)
		case *ast.FunctionStatement:
			names = append(names, s.Function.Name)
		case *ast.ClassStatement:
			names = append(names, s.Name)
		case *ast.EnumStatement:
			names = append(names, s.Name)
		}
	}
	for _, nm := range names {
		c.emitConst(Str(nm), line)
		slot, _ := c.resolveLocal(c.fn, nm)
		c.emit(OpGetLocal, line)
		c.emitByte(byte(slot), line)
	}
	if len(names) > 255 {
		c.errorf(line, "namespace %s has more than 255 members", n.Name)
	}
	c.emit(OpMakeDict, line)
	c.emitByte(byte(len(names)), line)
	c.emit(OpReturn, line)

	fn := &Function{Name: n.Name, Chunk: c.fn.chunk}
	c.fn = parent

	idx, err := c.fn.chunk.AddConstant(Value{Kind: KindFunction, Obj: fn})
	if err != nil {
		c.errorf(line, "%v", err)
		return
	}
	c.emit(OpLoadConst, line)
	c.emitByte(idx, line)
	c.emit(OpMakeClosure, line)
	c.emit(OpCall, line)
	c.emitByte(0, line)
	c.bindDeclaration(n.Name, line)
}

func (c *Compiler) compileImportStatement(s *ast.ImportStatement) {
	line := s.Line()
	idx := c.internConstString(s.Path, line)
	c.emit(OpImport, line)
	c.emitByte(idx, line)
	name := s.Alias
	if name == "" {
		name = importBasename(s.Path)
	}
	c.bindDeclaration(name, line)
}

func importBasename(path string) string {
	p := path
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		p = p[:i]
	}
	return p
}

func (c *Compiler) compileTryStatement(t *ast.TryStatement) {
	line := t.Line()
	except := c.emitJump(OpSetupExcept, line)
	c.compileStatement(t.Try)
	c.emit(OpPopExcept, line)
	endJump := c.emitJump(OpJump, line)
	c.patchJump(except)
	c.beginScope()
	c.declareLocal(t.CatchVar, line)
	for _, st := range t.Catch.Statements {
		c.compileStatement(st)
	}
	c.endScope(line)
	c.patchJump(endJump)
}

// compileSwitchStatement compiles `switch (subject) { case v1, v2: ...
// default: ... }` as a chain of equality tests against a temporary
// holding the subject's value.
func (c *Compiler) compileSwitchStatement(sw *ast.SwitchStatement) {
	line := sw.Line()
	c.beginScope()
	c.compileExpression(sw.Subject)
	subjSlot := c.declareLocal("$switch", line)

	var endJumps []int
	for _, cs := range sw.Cases {
		for i, val := range cs.Values {
			c.emit(OpGetLocal, line)
			c.emitByte(byte(subjSlot), line)
			c.compileExpression(val)
			c.emit(OpEqual, line)
			if i > 0 {
				c.emit(OpBitOr, line)
			}
		}
		skip := c.emitJump(OpJumpIfFalse, line)
		c.emit(OpPop, line)
		for _, st := range cs.Body {
			c.compileStatement(st)
		}
		endJumps = append(endJumps, c.emitJump(OpJump, line))
		c.patchJump(skip)
		c.emit(OpPop, line)
	}
	for _, st := range sw.Default {
		c.compileStatement(st)
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
	c.endScope(line)
}

func (c *Compiler) compileReturnStatement(r *ast.ReturnStatement) {
	if r.Value != nil {
		c.compileExpression(r.Value)
	} else {
		c.emitConst(Null(), r.Line())
	}
	c.emit(OpReturn, r.Line())
}
