package native

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aegis-lang/aegis/internal/vm"
)

// handleTable is the process-wide map of opaque native resource
// handles spec.md describes: "native functions that keep process-wide
// state ... use a single serialized map; the core treats such IDs as
// opaque integers." The integer is what aegis code ever sees; the
// UUID is a debug label stamped on each entry only so two handles
// opened across VM restarts (and thus colliding on small integer ids)
// remain distinguishable in a log line.
type handleTable struct {
	mu      sync.Mutex
	next    int64
	entries map[int64]*handle
}

type handle struct {
	label string // uuid, for logs only
	data  interface{}
}

var handles = &handleTable{entries: make(map[int64]*handle)}

// Open registers data under a new opaque id and returns it.
func Open(data interface{}) int64 {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	handles.next++
	id := handles.next
	handles.entries[id] = &handle{label: uuid.NewString(), data: data}
	return id
}

// Lookup retrieves the data registered under id.
func Lookup(id int64) (interface{}, bool) {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	h, ok := handles.entries[id]
	if !ok {
		return nil, false
	}
	return h.data, true
}

// Close removes id from the table.
func Close(id int64) {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	delete(handles.entries, id)
}

// DebugLabel returns the uuid stamped on id, for log lines; "" if id
// is not (or no longer) open.
func DebugLabel(id int64) string {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	h, ok := handles.entries[id]
	if !ok {
		return ""
	}
	return h.label
}

// IOSet wires the native-handle lifecycle onto aegis-visible
// functions: open a handle around an in-memory byte buffer (the only
// resource this implementation actually backs, since real file/socket
// I/O is out of scope), write to it, read it back, and close it.
func IOSet() Set {
	return Set{
		"io.openBuffer": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 0 {
				return vm.Value{}, arityErr("io.openBuffer", 0, len(args))
			}
			id := Open(&[]byte{})
			return vm.Int(id), nil
		},
		"io.write": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 2 || args[0].Kind != vm.KindInt || args[1].Kind != vm.KindString {
				return vm.Value{}, arityErr("io.write", 2, len(args))
			}
			data, ok := Lookup(args[0].I)
			if !ok {
				return vm.Value{}, fmt.Errorf("io.write: no open handle %d", args[0].I)
			}
			buf := data.(*[]byte)
			*buf = append(*buf, args[1].S...)
			return vm.Null(), nil
		},
		"io.readAll": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 || args[0].Kind != vm.KindInt {
				return vm.Value{}, arityErr("io.readAll", 1, len(args))
			}
			data, ok := Lookup(args[0].I)
			if !ok {
				return vm.Value{}, fmt.Errorf("io.readAll: no open handle %d", args[0].I)
			}
			buf := data.(*[]byte)
			return vm.Str(string(*buf)), nil
		},
		"io.close": func(args []vm.Value) (vm.Value, error) {
			if len(args) != 1 || args[0].Kind != vm.KindInt {
				return vm.Value{}, arityErr("io.close", 1, len(args))
			}
			Close(args[0].I)
			return vm.Null(), nil
		},
	}
}
