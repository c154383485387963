// Command aegis is the language's driver: it feeds source text through
// internal/pipeline and prints whatever diagnostics come out, the way
// spec.md's own framing of the CLI puts it ("merely feed source text
// into the pipeline and print diagnostics"). It does not itself know
// how to lex, parse, compile, or execute — that's internal/backend's
// job — mirroring the teacher's cmd/funxy/main.go's separation of
// concerns, minus its bundle/build/self-contained-binary surface,
// which is out of this implementation's scope.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aegis-lang/aegis/internal/backend"
	"github.com/aegis-lang/aegis/internal/config"
	"github.com/aegis-lang/aegis/internal/diagnostics"
	"github.com/aegis-lang/aegis/internal/lexer"
	"github.com/aegis-lang/aegis/internal/modules"
	"github.com/aegis-lang/aegis/internal/native"
	"github.com/aegis-lang/aegis/internal/parser"
	"github.com/aegis-lang/aegis/internal/pipeline"
	"github.com/aegis-lang/aegis/internal/vm"
)

func main() {
	debugFlag := flag.Bool("debug", false, "print bytecode disassembly instead of running")
	stepFlag := flag.Bool("step", false, "run under the interactive single-step debugger")
	natFlag := flag.String("natives", "", "path to a native-module enable list (yaml)")
	versionFlag := flag.Bool("version", false, "print the aegis version")
	flag.Parse()

	if *versionFlag {
		fmt.Println("aegis " + config.Version)
		return
	}

	natives := buildNatives(*natFlag)

	args := flag.Args()
	if len(args) == 0 {
		runREPL(natives)
		return
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := buildContext(string(src), path, natives)
	b := backend.NewVM(natives)

	if *debugFlag {
		if err := b.Disassemble(ctx, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *stepFlag {
		runStepping(ctx, b)
		return
	}

	pl := pipeline.New(&lexer.LexerProcessor{}, &parser.Processor{}, backend.NewExecutionProcessor(b))
	ctx = pl.Run(ctx)
	if len(ctx.Errors) > 0 {
		diagnostics.PrintAll(os.Stderr, ctx.Errors)
		os.Exit(1)
	}
}

func buildContext(src, path string, natives *vm.NativeRegistry) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(src)
	ctx.FilePath = path
	if path != "" {
		ctx.Loader = modules.NewLoader(natives, filepath.Dir(path))
	}
	return ctx
}

func buildNatives(enableListPath string) *vm.NativeRegistry {
	if enableListPath == "" {
		return native.NewRegistry(native.Merge(native.MathSet(), native.StringsSet(), native.TimeSet()))
	}
	list, err := native.LoadEnableList(enableListPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	set, unknown, _ := native.Build(list)
	for _, name := range unknown {
		fmt.Fprintf(os.Stderr, "warning: unknown native module %q\n", name)
	}
	return native.NewRegistry(set)
}

// runStepping parses and compiles ctx once, then drives the VM's
// debugger off stdin, printing prompts to stdout the way the teacher's
// debugger_cli.go does (continue/step/next/out/locals/globals/stack/
// run), scaled down to aegis's single-chunk-per-frame model.
func runStepping(ctx *pipeline.PipelineContext, b *backend.VMBackend) {
	lexProc := &lexer.LexerProcessor{}
	ctx = lexProc.Process(ctx)
	parseProc := &parser.Processor{}
	ctx = parseProc.Process(ctx)
	if len(ctx.Errors) > 0 {
		diagnostics.PrintAll(os.Stderr, ctx.Errors)
		os.Exit(1)
	}

	in := bufio.NewReader(os.Stdin)
	dbg := vm.NewDebugger(os.Stdout)
	dbg.Enabled = true
	dbg.Continue()
	dbg.OnStop = func(d *vm.Debugger, machine *vm.VM) {
		d.PrintLocation(machine)
		for {
			fmt.Print("(aegis-dbg) ")
			line, err := in.ReadString('\n')
			if err != nil {
				d.Run()
				return
			}
			switch line[:len(line)-1] {
			case "c", "continue":
				d.Continue()
				return
			case "s", "step":
				d.Step()
				return
			case "n", "next":
				d.StepOver(machine)
				return
			case "o", "out":
				d.StepOut(machine)
				return
			case "locals":
				d.PrintLocals(machine)
			case "globals":
				d.PrintGlobals(machine)
			case "bt", "stack":
				d.PrintCallStack(machine)
			case "r", "run":
				d.Run()
				return
			default:
				fmt.Println("commands: continue, step, next, out, locals, globals, stack, run")
			}
		}
	}

	b.DebuggerHook = dbg
	pl := pipeline.New(backend.NewExecutionProcessor(b))
	ctx = pl.Run(ctx)
	if len(ctx.Errors) > 0 {
		diagnostics.PrintAll(os.Stderr, ctx.Errors)
		os.Exit(1)
	}
}

// runREPL reads one line at a time, compiling and running it in a
// single persistent VM so declarations accumulate across lines — the
// same "evaluate and keep going" shape as the teacher's REPL loop in
// cmd/funxy/main.go, stripped of its bundle/backend-selection flags.
func runREPL(natives *vm.NativeRegistry) {
	fmt.Println("aegis " + config.Version + " — interactive mode, Ctrl-D to exit")
	globals := vm.NewGlobalTable()
	machine := vm.NewVM(globals, natives)
	in := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(">> ")
		if !in.Scan() {
			fmt.Println()
			return
		}
		line := in.Text()
		if line == "" {
			continue
		}

		ctx := pipeline.NewPipelineContext(line)
		lexProc := &lexer.LexerProcessor{}
		ctx = lexProc.Process(ctx)
		if len(ctx.Errors) > 0 {
			diagnostics.PrintAll(os.Stderr, ctx.Errors)
			continue
		}
		p := parser.New(ctx.TokenStream)
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			diagnostics.PrintAll(os.Stderr, errs)
			continue
		}

		compiler := vm.NewCompiler("<repl>", globals, natives)
		fn, errs := compiler.Compile(program)
		if len(errs) > 0 {
			diagnostics.PrintAll(os.Stderr, errs)
			continue
		}

		machine.SyncGlobals()
		result, err := machine.Run(fn)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if !result.IsNull() {
			fmt.Println(result.ToDisplayString())
		}
	}
}
