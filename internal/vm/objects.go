package vm

// List is a shared, mutable, ordered sequence of Values.
type List struct {
	Items []Value
}

// Dict is a shared, mutable mapping from string keys to Values.
type Dict struct {
	Entries map[string]Value
}

// Enum is a shared, immutable mapping from member name to its
// integer value.
type Enum struct {
	Name    string
	Members map[string]int64
	Order   []string
}

// Function is a compiled function body: its parameter list, optional
// return-type annotation, and the Chunk the compiler produced for it.
// Function values are shared and immutable once compiled.
type Function struct {
	Name       string
	Params     []Param
	ReturnType string
	Chunk      *Chunk
}

// Param is one formal parameter, with an optional runtime-checked
// type-name annotation.
type Param struct {
	Name string
	Type string
}

// Closure wraps a Function with a snapshot of the enclosing frame's
// named locals, taken at the moment `MakeClosure` executed. This is
// deliberately not a true lexical upvalue: rebinding the outer name
// after the snapshot is taken is invisible to the closure, matching
// the language's documented "capture by snapshot" semantics.
type Closure struct {
	Fn      *Function
	Captured map[string]Value
}

// Class carries its method table and, for single inheritance, the
// name and (once resolved) the pointer of its parent. ConstructorParams
// names the fields seeded positionally from `new` arguments; a
// subclass that declares no parameter list of its own inherits the
// parent's via EffectiveParams.
type Class struct {
	Name              string
	ParentName        string
	Parent            *Class
	ConstructorParams  []string
	PropDefaults      []PropDefault
	Methods           map[string]*Function
}

// PropDefault is a `prop name = expr` field; Chunk holds the compiled
// expression, evaluated for every new Instance after constructor
// params are bound.
type PropDefault struct {
	Name  string
	Chunk *Chunk
}

// EffectiveParams returns c's own constructor parameter names, or the
// nearest ancestor's if c declared none.
func (c *Class) EffectiveParams() []string {
	for cl := c; cl != nil; cl = cl.Parent {
		if cl.ConstructorParams != nil {
			return cl.ConstructorParams
		}
	}
	return nil
}

// FindMethod walks the inheritance chain starting at c, returning the
// first class that defines name and the method itself.
func (c *Class) FindMethod(name string) (*Function, *Class) {
	for cl := c; cl != nil; cl = cl.Parent {
		if fn, ok := cl.Methods[name]; ok {
			return fn, cl
		}
	}
	return nil, nil
}

// Instance is a shared, mutable object: a Class reference plus a
// field map seeded from constructor arguments and `prop` defaults.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// Range is the inclusive-start/exclusive-end integer range produced
// by `..`, walked by `foreach` through its `len`/`at` methods.
type Range struct {
	Start, End, Step int64
}

// NativeFunc is the registry contract the VM calls through: a vector
// of arguments in, a Value or an error out. The core never inspects a
// native's internals, only its name and arity via this signature.
type NativeFunc func(args []Value) (Value, error)

// BoundMethod pairs a receiver Instance with one of its class's
// methods, produced when attribute access (GetAttr) on an instance
// finds a method rather than a field. `Method` dispatch calls the
// method directly without building one.
type BoundMethod struct {
	Receiver Value
	Fn       *Function
}
