package modules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aegis-lang/aegis/internal/lexer"
	"github.com/aegis-lang/aegis/internal/parser"
	"github.com/aegis-lang/aegis/internal/pipeline"
	"github.com/aegis-lang/aegis/internal/vm"
)

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func runSource(t *testing.T, dir, src string, natives *vm.NativeRegistry) vm.Value {
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

	globals := vm.NewGlobalTable()
	compiler := vm.NewCompiler("<test>", globals, natives)
	fn, cerrs := compiler.Compile(program)
	if len(cerrs) > 0 {
		t.Fatalf("compile error: %s", cerrs[0].Error())
	}

	machine := vm.NewVM(globals, natives)
	loader := NewLoader(natives, dir)
	machine.ModuleLoader = loader.Load
	result, err := machine.Run(fn)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return result
}

func TestLoadExposesTopLevelGlobals(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "geo.ag", "var pi = 3\nfunc double(x) { return x * 2 }\n")

	natives := vm.NewNativeRegistry(nil)
	result := runSource(t, dir, `
import "geo.ag"
geo.double(geo.pi)
`, natives)

	if result.Kind != vm.KindInt || result.I != 6 {
		t.Fatalf("got %v, want Int 6", result)
	}
}

func TestLoadWithAlias(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "geo.ag", "var pi = 3\n")

	natives := vm.NewNativeRegistry(nil)
	result := runSource(t, dir, `
import "geo.ag" as g
g.pi
`, natives)

	if result.Kind != vm.KindInt || result.I != 3 {
		t.Fatalf("got %v, want Int 3", result)
	}
}

func TestLoadCachesRepeatedImport(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "counter.ag", "var n = 1\n")

	natives := vm.NewNativeRegistry(nil)
	loader := NewLoader(natives, dir)

	first, err := loader.Load("counter.ag")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := loader.Load("counter.ag")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !vm.StructuralEqual(first, second) {
		t.Errorf("expected cached load to equal first load")
	}
	if len(loader.cache) != 1 {
		t.Errorf("expected exactly one cache entry, got %d", len(loader.cache))
	}
}

func TestLoadDetectsCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.ag", `import "b.ag"`)
	writeScript(t, dir, "b.ag", `import "a.ag"`)

	natives := vm.NewNativeRegistry(nil)
	loader := NewLoader(natives, dir)
	if _, err := loader.Load("a.ag"); err == nil {
		t.Error("expected circular import error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	natives := vm.NewNativeRegistry(nil)
	loader := NewLoader(natives, dir)
	if _, err := loader.Load("missing.ag"); err == nil {
		t.Error("expected error loading missing file")
	}
}

func TestResolveAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	abs := writeScript(t, dir, "abs.ag", "var v = 42\n")

	natives := vm.NewNativeRegistry(nil)
	loader := NewLoader(natives, "/unrelated")
	result, err := loader.Load(abs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := result.Obj.(*vm.Dict)
	if v, ok := d.Entries["v"]; !ok || v.I != 42 {
		t.Errorf("got entries %v, want v=42", d.Entries)
	}
}
