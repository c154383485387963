package vm

import "sort"

// GlobalTable interns top-level names (var/func/class/enum/namespace
// declarations) to small integer ids, so OpGetGlobal/OpSetGlobal can
// carry a single-byte operand instead of a string compare at runtime.
// The compiler builds one GlobalTable per compiled program; the VM
// allocates its global slot array to match its final size.
type GlobalTable struct {
	Names []string
	index map[string]int
}

func NewGlobalTable() *GlobalTable {
	return &GlobalTable{index: make(map[string]int)}
}

// Intern returns name's existing id, assigning it the next free id on
// first sight.
func (g *GlobalTable) Intern(name string) int {
	if id, ok := g.index[name]; ok {
		return id
	}
	id := len(g.Names)
	g.index[name] = id
	g.Names = append(g.Names, name)
	return id
}

func (g *GlobalTable) Lookup(name string) (int, bool) {
	id, ok := g.index[name]
	return id, ok
}

// NativeRegistry assigns every registered native function a stable id
// derived from its name's position in sorted order, not its
// registration order, so ids depend only on the set of names. The VM
// resolves a Native value's name through Lookup when it is called;
// the compiler emits no native references, and no compiled code
// produces a Native value.
type NativeRegistry struct {
	Names []string
	Funcs []NativeFunc
	index map[string]int
}

func NewNativeRegistry(fns map[string]NativeFunc) *NativeRegistry {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &NativeRegistry{
		Names: names,
		Funcs: make([]NativeFunc, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		r.Funcs[i] = fns[name]
		r.index[name] = i
	}
	return r
}

func (r *NativeRegistry) Lookup(name string) (int, bool) {
	id, ok := r.index[name]
	return id, ok
}

func (r *NativeRegistry) Call(id int, args []Value) (Value, error) {
	return r.Funcs[id](args)
}
