package vm

import "github.com/aegis-lang/aegis/internal/ast"

func (c *Compiler) compileExpression(e ast.Expression) {
	switch ex := e.(type) {
	case *ast.IntegerLiteral:
		c.emitConst(Int(ex.Value), ex.Line())
	case *ast.FloatLiteral:
		c.emitConst(Float(ex.Value), ex.Line())
	case *ast.StringLiteral:
		c.emitConst(Str(ex.Value), ex.Line())
	case *ast.BoolLiteral:
		c.emitConst(Bool(ex.Value), ex.Line())
	case *ast.NullLiteral:
		c.emitConst(Null(), ex.Line())
	case *ast.Identifier:
		c.compileIdentifierRead(ex)
	case *ast.BinaryExpr:
		c.compileBinaryExpr(ex)
	case *ast.LogicalExpr:
		c.compileLogicalExpr(ex)
	case *ast.UnaryExpr:
		c.compileUnaryExpr(ex)
	case *ast.TernaryExpr:
		c.compileTernaryExpr(ex)
	case *ast.NullCoalesceExpr:
		c.compileNullCoalesceExpr(ex)
	case *ast.ListLiteral:
		c.compileListLiteral(ex)
	case *ast.DictLiteral:
		c.compileDictLiteral(ex)
	case *ast.RangeExpr:
		c.compileExpression(ex.Start)
		c.compileExpression(ex.End)
		c.emit(OpMakeRange, ex.Line())
	case *ast.FunctionLiteral:
		c.compileFunctionLiteral(ex)
	case *ast.CallExpr:
		c.compileCallExpr(ex)
	case *ast.MemberExpr:
		c.compileExpression(ex.Object)
		idx := c.internConstString(ex.Name, ex.Line())
		c.emit(OpGetAttr, ex.Line())
		c.emitByte(idx, ex.Line())
	case *ast.SuperCallExpr:
		c.compileSuperCallExpr(ex)
	case *ast.NewExpr:
		c.compileNewExpr(ex)
	case *ast.AssignExpr:
		c.compileAssignExpr(ex)
	default:
		c.errorf(e.Line(), "compiler: unhandled expression %T", e)
	}
}

func (c *Compiler) internConstString(s string, line int) byte {
	idx, err := c.fn.chunk.AddConstant(Str(s))
	if err != nil {
		c.errorf(line, "%v", err)
	}
	return idx
}

// --- identifiers ----------------------------------------------------------

func (c *Compiler) compileIdentifierRead(id *ast.Identifier) {
	if slot, ok := c.resolveLocal(c.fn, id.Name); ok {
		c.emit(OpGetLocal, id.Line())
		c.emitByte(byte(slot), id.Line())
		return
	}
	if c.resolveFree(id.Name) {
		idx := c.internConstString(id.Name, id.Line())
		c.emit(OpGetFreeVar, id.Line())
		c.emitByte(idx, id.Line())
		return
	}
	gid := c.globals.Intern(id.Name)
	c.emit(OpGetGlobal, id.Line())
	c.emitByte(byte(gid), id.Line())
}

// resolveFree reports whether name is a local of some function this
// one is lexically nested inside (so OpGetFreeVar, not OpGetGlobal,
// is the right read at runtime).
func (c *Compiler) resolveFree(name string) bool {
	for fs := c.fn.enclosing; fs != nil; fs = fs.enclosing {
		if _, ok := c.resolveLocal(fs, name); ok {
			return true
		}
	}
	return false
}

// --- binary / logical / unary ---------------------------------------------

var binaryOps = map[string]OpCode{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"==": OpEqual, "!=": OpNotEqual,
	">": OpGreater, ">=": OpGreaterEqual, "<": OpLess, "<=": OpLessEqual,
	"&": OpBitAnd, "|": OpBitOr, "^": OpBitXor, "<<": OpShiftLeft, ">>": OpShiftRight,
}

func (c *Compiler) compileBinaryExpr(b *ast.BinaryExpr) {
	c.compileExpression(b.Left)
	c.compileExpression(b.Right)
	op, ok := binaryOps[b.Op]
	if !ok {
		c.errorf(b.Line(), "compiler: unknown binary operator %q", b.Op)
		return
	}
	c.emit(op, b.Line())
}

func (c *Compiler) compileLogicalExpr(l *ast.LogicalExpr) {
	c.compileExpression(l.Left)
	line := l.Line()
	if l.Op == "&&" {
		endJump := c.emitJump(OpJumpIfFalse, line)
		c.emit(OpPop, line)
		c.compileExpression(l.Right)
		c.patchJump(endJump)
		return
	}
	// "||"
	elseJump := c.emitJump(OpJumpIfFalse, line)
	endJump := c.emitJump(OpJump, line)
	c.patchJump(elseJump)
	c.emit(OpPop, line)
	c.compileExpression(l.Right)
	c.patchJump(endJump)
}

func (c *Compiler) compileUnaryExpr(u *ast.UnaryExpr) {
	c.compileExpression(u.Operand)
	switch u.Op {
	case "!":
		c.emit(OpNot, u.Line())
	case "-":
		c.emit(OpNeg, u.Line())
	default:
		c.errorf(u.Line(), "compiler: unknown unary operator %q", u.Op)
	}
}

func (c *Compiler) compileTernaryExpr(t *ast.TernaryExpr) {
	line := t.Line()
	c.compileExpression(t.Cond)
	thenJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)
	c.compileExpression(t.Then)
	elseJump := c.emitJump(OpJump, line)
	c.patchJump(thenJump)
	c.emit(OpPop, line)
	c.compileExpression(t.Else)
	c.patchJump(elseJump)
}

// compileNullCoalesceExpr compiles `left ?? right`: left's value
// survives unless it is exactly Null, in which case right is
// evaluated instead.
func (c *Compiler) compileNullCoalesceExpr(n *ast.NullCoalesceExpr) {
	line := n.Line()
	c.compileExpression(n.Left)
	c.emit(OpDup, line)
	c.emitConst(Null(), line)
	c.emit(OpEqual, line)
	keepJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line) // discard the "isNull" flag
	c.emit(OpPop, line) // discard the null left value
	c.compileExpression(n.Right)
	endJump := c.emitJump(OpJump, line)
	c.patchJump(keepJump)
	c.emit(OpPop, line) // discard the "isNull" flag; left stays
	c.patchJump(endJump)
}

// --- containers -------------------------------------------------------

func (c *Compiler) compileListLiteral(l *ast.ListLiteral) {
	for _, el := range l.Elements {
		c.compileExpression(el)
	}
	if len(l.Elements) > 255 {
		c.errorf(l.Line(), "list literal exceeds 255 elements")
		return
	}
	c.emit(OpMakeList, l.Line())
	c.emitByte(byte(len(l.Elements)), l.Line())
}

func (c *Compiler) compileDictLiteral(d *ast.DictLiteral) {
	for _, e := range d.Entries {
		c.compileExpression(e.Key)
		c.compileExpression(e.Value)
	}
	if len(d.Entries) > 255 {
		c.errorf(d.Line(), "dict literal exceeds 255 entries")
		return
	}
	c.emit(OpMakeDict, d.Line())
	c.emitByte(byte(len(d.Entries)), d.Line())
}

// --- functions / calls ------------------------------------------------

func (c *Compiler) compileFunctionLiteral(lit *ast.FunctionLiteral) {
	fn := c.compileFunctionBody(lit.Name, lit.Params, lit.ReturnType, lit.Body, lit.Line())
	idx, err := c.fn.chunk.AddConstant(Value{Kind: KindFunction, Obj: fn})
	if err != nil {
		c.errorf(lit.Line(), "%v", err)
		return
	}
	c.emit(OpLoadConst, lit.Line())
	c.emitByte(idx, lit.Line())
	c.emit(OpMakeClosure, lit.Line())
}

func (c *Compiler) compileFunctionBody(name string, params []ast.Param, retType string, body []ast.Statement, line int) *Function {
	parent := c.fn
	c.fn = &funcScope{chunk: NewChunk(), enclosing: parent}
	vmParams := make([]Param, len(params))
	for i, p := range params {
		vmParams[i] = Param{Name: p.Name, Type: p.Type}
		c.declareLocal(p.Name, line)
		if p.Type != "" {
			c.emit(OpGetLocal, line)
			c.emitByte(byte(i), line)
			tidx := c.internConstString(p.Type, line)
			c.emit(OpCheckType, line)
			c.emitByte(tidx, line)
			c.emit(OpPop, line)
		}
	}
	for _, stmt := range body {
		c.compileStatement(stmt)
	}
	c.emitConst(Null(), line)
	c.emit(OpReturn, line)

	fn := &Function{Name: name, Params: vmParams, ReturnType: retType, Chunk: c.fn.chunk}
	c.fn = parent
	return fn
}

func (c *Compiler) compileCallExpr(call *ast.CallExpr) {
	if member, ok := call.Callee.(*ast.MemberExpr); ok {
		c.compileExpression(member.Object)
		for _, a := range call.Args {
			c.compileExpression(a)
		}
		if len(call.Args) > 255 {
			c.errorf(call.Line(), "call has more than 255 arguments")
			return
		}
		idx := c.internConstString(member.Name, call.Line())
		c.emit(OpMethod, call.Line())
		c.emitByte(idx, call.Line())
		c.emitByte(byte(len(call.Args)), call.Line())
		return
	}
	c.compileExpression(call.Callee)
	for _, a := range call.Args {
		c.compileExpression(a)
	}
	if len(call.Args) > 255 {
		c.errorf(call.Line(), "call has more than 255 arguments")
		return
	}
	c.emit(OpCall, call.Line())
	c.emitByte(byte(len(call.Args)), call.Line())
}

func (c *Compiler) compileSuperCallExpr(s *ast.SuperCallExpr) {
	cls := c.currentClass()
	if cls == nil || cls.parentName == "" {
		c.errorf(s.Line(), "super used outside a subclass method")
		return
	}
	c.emit(OpGetLocal, s.Line())
	c.emitByte(0, s.Line()) // this is always slot 0 inside a method
	for _, a := range s.Args {
		c.compileExpression(a)
	}
	if len(s.Args) > 255 {
		c.errorf(s.Line(), "super call has more than 255 arguments")
		return
	}
	methodIdx := c.internConstString(s.Method, s.Line())
	parentIdx := c.internConstString(cls.parentName, s.Line())
	c.emit(OpSuper, s.Line())
	c.emitByte(methodIdx, s.Line())
	c.emitByte(byte(len(s.Args)), s.Line())
	c.emitByte(parentIdx, s.Line())
}

func (c *Compiler) compileNewExpr(n *ast.NewExpr) {
	gid := c.globals.Intern(n.ClassName)
	c.emit(OpGetGlobal, n.Line())
	c.emitByte(byte(gid), n.Line())
	for _, a := range n.Args {
		c.compileExpression(a)
	}
	if len(n.Args) > 255 {
		c.errorf(n.Line(), "constructor call has more than 255 arguments")
		return
	}
	c.emit(OpNewInst, n.Line())
	c.emitByte(byte(len(n.Args)), n.Line())
}

// --- assignment ---------------------------------------------------------

func (c *Compiler) compileAssignExpr(a *ast.AssignExpr) {
	switch target := a.Target.(type) {
	case *ast.Identifier:
		c.compileExpression(a.Value)
		if slot, ok := c.resolveLocal(c.fn, target.Name); ok {
			c.emit(OpSetLocal, a.Line())
			c.emitByte(byte(slot), a.Line())
			return
		}
		gid := c.globals.Intern(target.Name)
		c.emit(OpSetGlobal, a.Line())
		c.emitByte(byte(gid), a.Line())
	case *ast.MemberExpr:
		c.compileExpression(target.Object)
		c.compileExpression(a.Value)
		idx := c.internConstString(target.Name, a.Line())
		c.emit(OpSetAttr, a.Line())
		c.emitByte(idx, a.Line())
	default:
		c.errorf(a.Line(), "compiler: invalid assignment target %T", a.Target)
	}
}
