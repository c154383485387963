// Package modules resolves `import "path"` statements to a value, the
// external collaborator spec.md leaves unspecified ("delegated to a
// host-supplied loader"). It is the flat-file counterpart of the
// compiler's own namespace lowering: an imported file runs to
// completion in its own VM and the dict of names it left in its
// global table becomes the value bound at the import site, exactly
// the way a `namespace Name { ... }` block's body becomes a dict of
// its locals (internal/vm/compiler_statements.go).
package modules

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aegis-lang/aegis/internal/lexer"
	"github.com/aegis-lang/aegis/internal/parser"
	"github.com/aegis-lang/aegis/internal/pipeline"
	"github.com/aegis-lang/aegis/internal/vm"
)

// Loader loads and caches modules by resolved path, mirroring the
// teacher's Loader (internal/modules/loader.go: LoadedModules cache +
// Processing cycle guard) minus the package-directory/export-list
// machinery a richer static module system needs — aegis files have no
// package declaration, so "the module" is just whatever top-level
// names the file leaves behind.
type Loader struct {
	Natives *vm.NativeRegistry
	BaseDir string

	cache      map[string]vm.Value
	processing map[string]bool
}

// NewLoader constructs a Loader resolving relative import paths
// against baseDir (normally the entry script's directory).
func NewLoader(natives *vm.NativeRegistry, baseDir string) *Loader {
	return &Loader{
		Natives:    natives,
		BaseDir:    baseDir,
		cache:      make(map[string]vm.Value),
		processing: make(map[string]bool),
	}
}

func (l *Loader) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(l.BaseDir, path))
}

// Load implements the vm.VM.ModuleLoader signature: resolve path to a
// file, run it, and hand back a dict of its top-level names.
func (l *Loader) Load(path string) (vm.Value, error) {
	abs := l.resolve(path)

	if v, ok := l.cache[abs]; ok {
		return v, nil
	}
	if l.processing[abs] {
		return vm.Value{}, fmt.Errorf("circular import: %s", path)
	}
	l.processing[abs] = true
	defer delete(l.processing, abs)

	src, err := os.ReadFile(abs)
	if err != nil {
		return vm.Value{}, fmt.Errorf("import %q: %w", path, err)
	}

	ctx := pipeline.NewPipelineContext(string(src))
	ctx.FilePath = abs
	lexProc := &lexer.LexerProcessor{}
	ctx = lexProc.Process(ctx)
	if len(ctx.Errors) > 0 {
		return vm.Value{}, fmt.Errorf("import %q: %s", path, ctx.Errors[0].Error())
	}

	p := parser.New(ctx.TokenStream)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return vm.Value{}, fmt.Errorf("import %q: %s", path, errs[0].Error())
	}

	globals := vm.NewGlobalTable()
	compiler := vm.NewCompiler(abs, globals, l.Natives)
	fn, cerrs := compiler.Compile(program)
	if len(cerrs) > 0 {
		return vm.Value{}, fmt.Errorf("import %q: %s", path, cerrs[0].Error())
	}

	machine := vm.NewVM(globals, l.Natives)
	machine.ModuleLoader = l.Load
	if _, err := machine.Run(fn); err != nil {
		return vm.Value{}, fmt.Errorf("import %q: %w", path, err)
	}

	result := vm.NewDict(machine.Globals())
	l.cache[abs] = result
	return result, nil
}
