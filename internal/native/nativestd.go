package native

import (
	"strings"
	"time"

	"github.com/aegis-lang/aegis/internal/vm"
)

// StringsSet wires a `string.*` subset beyond the builtin methods
// vm.callBuiltinMethod already provides on String values directly —
// the ones that make more sense as free functions than receiver
// methods (case conversion and substring search).
func StringsSet() Set {
	return Set{
		"string.upper": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 || args[0].Kind != vm.KindString {
				return vm.Value{}, arityErr("string.upper", 1, len(args))
			}
			return vm.Str(strings.ToUpper(args[0].S)), nil
		},
		"string.lower": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 || args[0].Kind != vm.KindString {
				return vm.Value{}, arityErr("string.lower", 1, len(args))
			}
			return vm.Str(strings.ToLower(args[0].S)), nil
		},
		"string.contains": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 2 || args[0].Kind != vm.KindString || args[1].Kind != vm.KindString {
				return vm.Value{}, arityErr("string.contains", 2, len(args))
			}
			return vm.Bool(strings.Contains(args[0].S, args[1].S)), nil
		},
	}
}

// TimeSet wires a `time.*` subset: a monotonic-ish wall clock reading
// and a formatter. Not a scheduler or a sleep primitive — the VM has
// no concurrency to suspend in the first place.
func TimeSet() Set {
	return Set{
		"time.nowUnix": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 0 {
				return vm.Value{}, arityErr("time.nowUnix", 0, len(args))
			}
			return vm.Int(time.Now().Unix()), nil
		},
		"time.format": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 2 || args[0].Kind != vm.KindInt || args[1].Kind != vm.KindString {
				return vm.Value{}, arityErr("time.format", 2, len(args))
			}
			t := time.Unix(args[0].I, 0).UTC()
			return vm.Str(t.Format(args[1].S)), nil
		},
	}
}

// unregisteredModules documents the native modules
// original_source/src/native/*.rs ships that this implementation does
// not provide runnable code for (http, json, random, socket, system,
// and the full "core" surface beyond what vm_builtins.go already
// covers as instance methods). io.* is NOT in this list — nativeio.go
// wires a real, if buffer-only, implementation. Real process/network
// I/O stays out of scope; this slice exists so a host's `-help
// natives` style listing can still mention the rest as
// known-but-unimplemented, rather than silently pretending they don't
// exist.
var unregisteredModules = []string{
	"http", "json", "random", "socket", "system",
}

// UnregisteredModules returns the documented-but-unimplemented native
// module names.
func UnregisteredModules() []string {
	return append([]string{}, unregisteredModules...)
}
