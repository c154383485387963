package vm

import "github.com/aegis-lang/aegis/internal/ast"

func (c *Compiler) pushLoop() *loopCtx {
	lp := &loopCtx{}
	c.fn.loops = append(c.fn.loops, lp)
	return lp
}

func (c *Compiler) popLoop() {
	c.fn.loops = c.fn.loops[:len(c.fn.loops)-1]
}

func (c *Compiler) currentLoop() *loopCtx {
	if len(c.fn.loops) == 0 {
		return nil
	}
	return c.fn.loops[len(c.fn.loops)-1]
}

func (c *Compiler) compileWhileStatement(w *ast.WhileStatement) {
	line := w.Line()
	condStart := len(c.fn.chunk.Code)
	lp := c.pushLoop()
	c.compileExpression(w.Cond)
	exitJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)
	c.compileStatement(w.Body)
	for _, j := range lp.continueJumps {
		c.patchJump(j)
	}
	c.emitLoop(condStart, line)
	c.patchJump(exitJump)
	c.emit(OpPop, line)
	for _, j := range lp.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
}

// compileForStatement compiles the C-style `for (i, start, end, step)`.
// The loop always counts up (i < end); step defaults to 1.
func (c *Compiler) compileForStatement(f *ast.ForStatement) {
	line := f.Line()
	c.beginScope()
	c.compileExpression(f.Start)
	slot := c.declareLocal(f.Var, line)

	condStart := len(c.fn.chunk.Code)
	lp := c.pushLoop()
	c.emit(OpGetLocal, line)
	c.emitByte(byte(slot), line)
	c.compileExpression(f.End)
	c.emit(OpLess, line)
	exitJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)

	c.compileStatement(f.Body)

	for _, j := range lp.continueJumps {
		c.patchJump(j)
	}
	c.emit(OpGetLocal, line)
	c.emitByte(byte(slot), line)
	if f.Step != nil {
		c.compileExpression(f.Step)
	} else {
		c.emitConst(Int(1), line)
	}
	c.emit(OpAdd, line)
	c.emit(OpSetLocal, line)
	c.emitByte(byte(slot), line)
	c.emit(OpPop, line)

	c.emitLoop(condStart, line)
	c.patchJump(exitJump)
	c.emit(OpPop, line)
	for _, j := range lp.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
	c.endScope(line)
}

// compileForeachStatement lowers `foreach (x in iterable) { body }` to
// an index-counting loop driven by the iterable's own `len`/`at`
// methods, so lists, strings, ranges, and enums all work through the
// same builtin method dispatch the rest of the language uses. Dicts
// have no `at` method, so foreach over a dict raises an error.
func (c *Compiler) compileForeachStatement(f *ast.ForeachStatement) {
	line := f.Line()
	c.beginScope()
	c.compileExpression(f.Iterable)
	iterSlot := c.declareLocal("$iter", line)
	c.emitConst(Int(0), line)
	idxSlot := c.declareLocal("$i", line)

	condStart := len(c.fn.chunk.Code)
	lp := c.pushLoop()
	c.emit(OpGetLocal, line)
	c.emitByte(byte(idxSlot), line)
	c.emit(OpGetLocal, line)
	c.emitByte(byte(iterSlot), line)
	lenIdx := c.internConstString("len", line)
	c.emit(OpMethod, line)
	c.emitByte(lenIdx, line)
	c.emitByte(0, line)
	c.emit(OpLess, line)
	exitJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)

	c.beginScope()
	c.emit(OpGetLocal, line)
	c.emitByte(byte(iterSlot), line)
	c.emit(OpGetLocal, line)
	c.emitByte(byte(idxSlot), line)
	atIdx := c.internConstString("at", line)
	c.emit(OpMethod, line)
	c.emitByte(atIdx, line)
	c.emitByte(1, line)
	c.declareLocal(f.Var, line)
	for _, stmt := range f.Body.Statements {
		c.compileStatement(stmt)
	}
	c.endScope(line)

	for _, j := range lp.continueJumps {
		c.patchJump(j)
	}
	c.emit(OpGetLocal, line)
	c.emitByte(byte(idxSlot), line)
	c.emitConst(Int(1), line)
	c.emit(OpAdd, line)
	c.emit(OpSetLocal, line)
	c.emitByte(byte(idxSlot), line)
	c.emit(OpPop, line)
	c.emitLoop(condStart, line)
	c.patchJump(exitJump)
	c.emit(OpPop, line)
	for _, j := range lp.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
	c.endScope(line)
}

func (c *Compiler) compileBreakStatement(b *ast.BreakStatement) {
	lp := c.currentLoop()
	if lp == nil {
		c.errorf(b.Line(), "break used outside a loop")
		return
	}
	j := c.emitJump(OpJump, b.Line())
	lp.breakJumps = append(lp.breakJumps, j)
}

func (c *Compiler) compileContinueStatement(s *ast.ContinueStatement) {
	lp := c.currentLoop()
	if lp == nil {
		c.errorf(s.Line(), "continue used outside a loop")
		return
	}
	j := c.emitJump(OpJump, s.Line())
	lp.continueJumps = append(lp.continueJumps, j)
}
