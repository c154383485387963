package backend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aegis-lang/aegis/internal/diagnostics"
	"github.com/aegis-lang/aegis/internal/lexer"
	"github.com/aegis-lang/aegis/internal/parser"
	"github.com/aegis-lang/aegis/internal/pipeline"
	"github.com/aegis-lang/aegis/internal/vm"
)

func compileAndRun(t *testing.T, src string, b *VMBackend) (*pipeline.PipelineContext, vm.Value, error) {
	t.Helper()
	ctx := pipeline.NewPipelineContext(src)
	pl := pipeline.New(&lexer.LexerProcessor{}, &parser.Processor{})
	ctx = pl.Run(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("lex/parse error: %s", ctx.Errors[0].Error())
	}
	result, err := b.Run(ctx)
	return ctx, result, err
}

func TestVMBackendRunReturnsValue(t *testing.T) {
	b := NewVM(vm.NewNativeRegistry(nil))
	_, result, err := compileAndRun(t, "1 + 2", b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Kind != vm.KindInt || result.I != 3 {
		t.Fatalf("got %v, want Int 3", result)
	}
}

func TestVMBackendName(t *testing.T) {
	b := NewVM(vm.NewNativeRegistry(nil))
	if b.Name() != "vm" {
		t.Errorf("Name() = %q, want %q", b.Name(), "vm")
	}
}

func TestVMBackendStdoutIsWired(t *testing.T) {
	var out bytes.Buffer
	b := NewVM(vm.NewNativeRegistry(nil))
	b.Stdout = &out
	if _, _, err := compileAndRun(t, `print "hi"`, b); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "hi") {
		t.Errorf("stdout = %q, want it to contain %q", out.String(), "hi")
	}
}

func TestVMBackendPropagatesRuntimeError(t *testing.T) {
	b := NewVM(vm.NewNativeRegistry(nil))
	_, _, err := compileAndRun(t, `throw "boom"`, b)
	if err == nil {
		t.Fatal("expected runtime error to propagate")
	}
}

func TestVMBackendDisassembleDoesNotRun(t *testing.T) {
	var out bytes.Buffer
	b := NewVM(vm.NewNativeRegistry(nil))
	ctx := pipeline.NewPipelineContext(`print "should not run"`)
	pl := pipeline.New(&lexer.LexerProcessor{}, &parser.Processor{})
	ctx = pl.Run(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("lex/parse error: %s", ctx.Errors[0].Error())
	}
	if err := b.Disassemble(ctx, &out); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if out.Len() == 0 {
		t.Error("expected non-empty disassembly output")
	}
}

func TestExecutionProcessorRecordsDiagnostic(t *testing.T) {
	b := NewVM(vm.NewNativeRegistry(nil))
	ctx := pipeline.NewPipelineContext(`throw "boom"`)
	pl := pipeline.New(&lexer.LexerProcessor{}, &parser.Processor{}, NewExecutionProcessor(b))
	ctx = pl.Run(ctx)
	if len(ctx.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(ctx.Errors), ctx.Errors)
	}
	if !strings.Contains(ctx.Errors[0].Message, "boom") {
		t.Errorf("error message %q does not mention boom", ctx.Errors[0].Message)
	}
}

func TestExecutionProcessorSkipsOnEarlierErrors(t *testing.T) {
	b := NewVM(vm.NewNativeRegistry(nil))
	ctx := pipeline.NewPipelineContext(`var x = `)
	pl := pipeline.New(&lexer.LexerProcessor{}, &parser.Processor{}, NewExecutionProcessor(b))
	ctx = pl.Run(ctx)
	if len(ctx.Errors) == 0 {
		t.Fatal("expected parse error to be recorded")
	}
	for _, e := range ctx.Errors {
		if e.Code == diagnostics.ErrRuntimeGeneric {
			t.Errorf("execution ran despite the parse error: %s", e.Error())
		}
	}
}
