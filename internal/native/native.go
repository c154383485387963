// Package native is the boundary between the VM's opaque native-call
// opcode and the outside world. It defines the registration contract
// (a name -> vm.NativeFunc map handed to vm.NewNativeRegistry) and
// ships a small, explicitly illustrative set of natives — enough to
// exercise OpCall's native path end-to-end. It is not a standard
// library: real file/socket/process I/O stays out of scope, matching
// the native registry's documented boundary-only role.
package native

import (
	"math"

	"github.com/aegis-lang/aegis/internal/vm"
)

// Set is a set of name -> implementation natives, ready to be
// wrapped in a vm.NativeRegistry. Built by composing the Set functions
// below, so a host can enable only the groups it wants (mirroring the
// teacher's per-module virtual-package init pattern).
type Set map[string]vm.NativeFunc

// Merge combines any number of Sets into one, later sets overriding
// earlier ones on name collision.
func Merge(sets ...Set) Set {
	out := make(Set)
	for _, s := range sets {
		for name, fn := range s {
			out[name] = fn
		}
	}
	return out
}

func arityErr(name string, want, got int) error {
	return errArity{name: name, want: want, got: got}
}

type errArity struct {
	name      string
	want, got int
}

func (e errArity) Error() string {
	return e.name + ": expected " + itoa(e.want) + " argument(s), got " + itoa(e.got)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func numArg(args []vm.Value, i int) (float64, error) {
	if i >= len(args) {
		return 0, errArity{name: "native", want: i + 1, got: len(args)}
	}
	v := args[i]
	switch v.Kind {
	case vm.KindInt:
		return float64(v.I), nil
	case vm.KindFloat:
		return v.F, nil
	default:
		return 0, errArity{name: "native", want: i + 1, got: len(args)}
	}
}

// MathSet wires `math.*` natives onto the VM's float arithmetic, the
// same small surface the original's src/native/math.rs ships (sqrt,
// pow, floor, ceil, abs).
func MathSet() Set {
	return Set{
		"math.sqrt": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 {
				return vm.Value{}, arityErr("math.sqrt", 1, len(args))
			}
			x, err := numArg(args, 0)
			if err != nil {
				return vm.Value{}, err
			}
			return vm.Float(math.Sqrt(x)), nil
		},
		"math.pow": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 2 {
				return vm.Value{}, arityErr("math.pow", 2, len(args))
			}
			x, err := numArg(args, 0)
			if err != nil {
				return vm.Value{}, err
			}
			y, err := numArg(args, 1)
			if err != nil {
				return vm.Value{}, err
			}
			return vm.Float(math.Pow(x, y)), nil
		},
		"math.floor": func(args []vm.Value) (vm.Value, error) {
			x, err := numArg(args, 0)
			if err != nil {
				return vm.Value{}, err
			}
			return vm.Int(int64(math.Floor(x))), nil
		},
		"math.ceil": func(args []vm.Value) (vm.Value, error) {
			x, err := numArg(args, 0)
			if err != nil {
				return vm.Value{}, err
			}
			return vm.Int(int64(math.Ceil(x))), nil
		},
		"math.abs": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 {
				return vm.Value{}, arityErr("math.abs", 1, len(args))
			}
			if args[0].Kind == vm.KindInt {
				v := args[0].I
				if v < 0 {
					v = -v
				}
				return vm.Int(v), nil
			}
			x, err := numArg(args, 0)
			if err != nil {
				return vm.Value{}, err
			}
			return vm.Float(math.Abs(x)), nil
		},
	}
}
