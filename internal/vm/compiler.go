package vm

import (
	"github.com/aegis-lang/aegis/internal/ast"
	"github.com/aegis-lang/aegis/internal/diagnostics"
)

// localVar is one slot in the function currently being compiled. Slots
// are stack positions relative to the call frame's base, matching the
// single-byte GetLocal/SetLocal operand.
type localVar struct {
	name  string
	depth int
}

// funcScope is the compiler's state for one function body (the script
// itself counts as a function). enclosing links to the function this
// one is lexically nested inside, which resolveFree walks to find
// names that are locals of an outer function.
type funcScope struct {
	enclosing *funcScope
	chunk     *Chunk
	locals    []localVar
	depth     int
	isScript  bool
	loops     []*loopCtx
}

// loopCtx tracks the patch lists for break/continue inside one loop.
// Both jump forward to a location not yet known when break/continue is
// compiled (continue's target is the loop's increment/re-check step,
// break's is the code right after the loop), so both are patched once
// the loop finishes compiling rather than resolved as a backward Loop.
type loopCtx struct {
	breakJumps    []int
	continueJumps []int
}

// Compiler lowers an AST into a Chunk plus a table of compiled Class
// and Function constants. One Compiler compiles one program; nested
// function literals share its Globals/Natives tables and error sink
// but get their own funcScope.
type Compiler struct {
	globals *GlobalTable
	natives *NativeRegistry
	errors  []*diagnostics.Error
	file    string

	fn *funcScope

	// classStack holds the name of the class currently being compiled,
	// for `this`/`super` resolution inside method bodies.
	classStack []*compilingClass
}

type compilingClass struct {
	name       string
	parentName string
}

func NewCompiler(file string, globals *GlobalTable, natives *NativeRegistry) *Compiler {
	return &Compiler{file: file, globals: globals, natives: natives}
}

func (c *Compiler) Errors() []*diagnostics.Error { return c.errors }

func (c *Compiler) errorf(line int, format string, args ...interface{}) {
	c.errors = append(c.errors, diagnostics.NewErrorAt(diagnostics.ErrRuntimeGeneric, line, format, args...))
}

// Compile lowers prog into the top-level script Function. Top-level
// `var`/`const`/`func`/`class`/`enum`/`namespace` declarations bind as
// globals; everything nested inside a function body is a local. When
// the last top-level statement is an expression statement, its value
// is the script's return value; otherwise the script returns null.
func (c *Compiler) Compile(prog *ast.Program) (*Function, []*diagnostics.Error) {
	c.fn = &funcScope{chunk: NewChunk(), isScript: true}
	for i, stmt := range prog.Statements {
		if es, ok := stmt.(*ast.ExpressionStatement); ok && i == len(prog.Statements)-1 {
			c.compileExpression(es.Expr)
			c.emit(OpReturn, es.Line())
			return &Function{Name: "<script>", Chunk: c.fn.chunk}, c.errors
		}
		c.compileStatement(stmt)
	}
	c.emitConst(Null(), 0)
	c.emit(OpReturn, 0)

	fn := &Function{Name: "<script>", Chunk: c.fn.chunk}
	return fn, c.errors
}

// --- low-level chunk emission -------------------------------------------

func (c *Compiler) emitByte(b byte, line int) int { return c.fn.chunk.WriteByte(b, line) }
func (c *Compiler) emit(op OpCode, line int) int  { return c.fn.chunk.WriteOp(op, line) }

func (c *Compiler) emitConst(v Value, line int) {
	idx, err := c.fn.chunk.AddConstant(v)
	if err != nil {
		c.errorf(line, "%v", err)
		return
	}
	c.emit(OpLoadConst, line)
	c.emitByte(idx, line)
}

// emitJump writes op followed by a two-byte placeholder and returns
// the offset of the first placeholder byte, for patchJump to fix up
// once the jump target is known.
func (c *Compiler) emitJump(op OpCode, line int) int {
	c.emit(op, line)
	off := c.emitByte(0xff, line)
	c.emitByte(0xff, line)
	return off
}

func (c *Compiler) patchJump(offset int) {
	dist := len(c.fn.chunk.Code) - offset - 2
	c.fn.chunk.Code[offset] = byte(dist >> 8)
	c.fn.chunk.Code[offset+1] = byte(dist & 0xff)
}

func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emit(OpLoop, line)
	dist := len(c.fn.chunk.Code) - loopStart + 2
	c.emitByte(byte(dist>>8), line)
	c.emitByte(byte(dist&0xff), line)
}

// --- scope / local resolution --------------------------------------------

func (c *Compiler) beginScope() { c.fn.depth++ }

func (c *Compiler) endScope(line int) {
	c.fn.depth--
	for len(c.fn.locals) > 0 && c.fn.locals[len(c.fn.locals)-1].depth > c.fn.depth {
		c.fn.locals = c.fn.locals[:len(c.fn.locals)-1]
		c.emit(OpPop, line)
	}
}

// declareLocal registers name as a local of the current function at
// the current depth and records its slot/name into the chunk's debug
// map (also the source OpMakeClosure reads to snapshot named locals).
func (c *Compiler) declareLocal(name string, line int) int {
	slot := len(c.fn.locals)
	c.fn.locals = append(c.fn.locals, localVar{name: name, depth: c.fn.depth})
	c.fn.chunk.LocalNames[slot] = name
	return slot
}

func (c *Compiler) resolveLocal(fs *funcScope, name string) (int, bool) {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

// atScriptScope reports whether declarations in the current
// funcScope should bind as globals.
func (c *Compiler) atScriptScope() bool {
	return c.fn.isScript && c.fn.depth == 0
}

// currentClass returns the class currently being compiled, if any.
func (c *Compiler) currentClass() *compilingClass {
	if len(c.classStack) == 0 {
		return nil
	}
	return c.classStack[len(c.classStack)-1]
}
