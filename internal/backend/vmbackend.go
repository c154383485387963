package backend

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/aegis-lang/aegis/internal/modules"
	"github.com/aegis-lang/aegis/internal/pipeline"
	"github.com/aegis-lang/aegis/internal/vm"
)

// VMBackend compiles ctx.AstRoot and runs it on the bytecode VM,
// mirroring the teacher's VMBackend (internal/backend/vmbackend.go)
// minus the tree-walk alternative and type-alias/trait wiring aegis
// has no equivalent of.
type VMBackend struct {
	Natives *vm.NativeRegistry
	Stdout  io.Writer

	// DebuggerHook, if set, is attached to every VM this backend
	// creates, gated behind cmd/aegis's -step flag.
	DebuggerHook *vm.Debugger
}

func NewVM(natives *vm.NativeRegistry) *VMBackend {
	return &VMBackend{Natives: natives}
}

func (b *VMBackend) Name() string { return "vm" }

// Run compiles ctx.AstRoot and executes it, installing (or reusing)
// ctx.Loader as the VM's import resolver the same way the teacher's
// VMBackend.Run does.
func (b *VMBackend) Run(ctx *pipeline.PipelineContext) (vm.Value, error) {
	if ctx.AstRoot == nil {
		return vm.Value{}, fmt.Errorf("no AST to compile")
	}

	globals := vm.NewGlobalTable()
	compiler := vm.NewCompiler(ctx.FilePath, globals, b.Natives)
	fn, errs := compiler.Compile(ctx.AstRoot)
	if len(errs) > 0 {
		return vm.Value{}, errs[0]
	}

	machine := vm.NewVM(globals, b.Natives)
	if b.Stdout != nil {
		machine.Stdout = b.Stdout
	}
	if b.DebuggerHook != nil {
		machine.Debugger = b.DebuggerHook
	}

	loader, ok := ctx.Loader.(*modules.Loader)
	if !ok || loader == nil {
		baseDir := "."
		if ctx.FilePath != "" {
			baseDir = filepath.Dir(ctx.FilePath)
		}
		loader = modules.NewLoader(b.Natives, baseDir)
		ctx.Loader = loader
	}
	machine.ModuleLoader = loader.Load

	result, err := machine.Run(fn)
	if err != nil {
		return vm.Value{}, err
	}
	return result, nil
}

// Disassemble compiles ctx.AstRoot without running it and writes its
// bytecode listing to w, used by cmd/aegis's -debug flag.
func (b *VMBackend) Disassemble(ctx *pipeline.PipelineContext, w io.Writer) error {
	if ctx.AstRoot == nil {
		return fmt.Errorf("no AST to compile")
	}
	globals := vm.NewGlobalTable()
	compiler := vm.NewCompiler(ctx.FilePath, globals, b.Natives)
	fn, errs := compiler.Compile(ctx.AstRoot)
	if len(errs) > 0 {
		return errs[0]
	}
	vm.Disassemble(w, "<script>", fn.Chunk)
	return nil
}
