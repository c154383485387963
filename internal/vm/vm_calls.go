package vm

// invoke runs fn synchronously with args bound starting at local slot
// 0, used by native builtins that must call back into user code (a
// closure passed to list.map) and by class instantiation's prop
// defaults. It nests a fresh runUntil on top of whatever the Go call
// stack is already doing.
func (vm *VM) invoke(fn *Function, closure *Closure, args []Value) (Value, error) {
	base := len(vm.stack)
	for _, a := range args {
		vm.push(a)
	}
	depth := len(vm.frames)
	vm.frames = append(vm.frames, &Frame{fn: fn, closure: closure, base: base, truncateTo: base})
	return vm.runUntil(depth)
}

func (vm *VM) execCall(argc int, line int) error {
	calleeIdx := len(vm.stack) - argc - 1
	callee := vm.stack[calleeIdx]
	switch callee.Kind {
	case KindClosure:
		cl := callee.Obj.(*Closure)
		vm.frames = append(vm.frames, &Frame{fn: cl.Fn, closure: cl, base: calleeIdx + 1, truncateTo: calleeIdx})
	case KindFunction:
		fn := callee.Obj.(*Function)
		vm.frames = append(vm.frames, &Frame{fn: fn, base: calleeIdx + 1, truncateTo: calleeIdx})
	case KindBoundMethod:
		bm := callee.Obj.(*BoundMethod)
		vm.stack[calleeIdx] = bm.Receiver
		vm.frames = append(vm.frames, &Frame{fn: bm.Fn, base: calleeIdx, truncateTo: calleeIdx})
	case KindNative:
		id, ok := vm.natives.Lookup(callee.S)
		if !ok {
			return throwf(line, "undefined native %q", callee.S)
		}
		args := append([]Value{}, vm.stack[calleeIdx+1:]...)
		result, err := vm.natives.Call(id, args)
		if err != nil {
			return throwf(line, "%v", err)
		}
		vm.stack = vm.stack[:calleeIdx]
		vm.push(result)
	default:
		return throwf(line, "value of kind %s is not callable", callee.Kind)
	}
	return nil
}

func (vm *VM) execMethod(name string, argc int, line int) error {
	receiverIdx := len(vm.stack) - argc - 1
	receiver := vm.stack[receiverIdx]

	if receiver.Kind == KindInstance {
		inst := receiver.Obj.(*Instance)
		if fn, _ := inst.Class.FindMethod(name); fn != nil {
			vm.frames = append(vm.frames, &Frame{fn: fn, base: receiverIdx, truncateTo: receiverIdx})
			return nil
		}
	}

	args := append([]Value{}, vm.stack[receiverIdx+1:]...)
	result, err := vm.callBuiltinMethod(receiver, name, args, line)
	if err != nil {
		return err
	}
	vm.stack = vm.stack[:receiverIdx]
	vm.push(result)
	return nil
}

func (vm *VM) execSuper(methodName, parentName string, argc int, line int) error {
	thisIdx := len(vm.stack) - argc - 1
	parentVal, ok := vm.findGlobal(parentName)
	if !ok || parentVal.Kind != KindClass {
		return throwf(line, "undefined parent class %q", parentName)
	}
	parentClass := parentVal.Obj.(*Class)
	fn, _ := parentClass.FindMethod(methodName)
	if fn == nil {
		return throwf(line, "undefined method %q on %s", methodName, parentName)
	}
	vm.frames = append(vm.frames, &Frame{fn: fn, base: thisIdx, truncateTo: thisIdx})
	return nil
}

// resolveParent links class.Parent to the global it names, the first
// time it's needed, so classes may extend one declared later in the
// same program.
func (vm *VM) resolveParent(class *Class) {
	if class.Parent != nil || class.ParentName == "" {
		return
	}
	if v, ok := vm.findGlobal(class.ParentName); ok && v.Kind == KindClass {
		class.Parent = v.Obj.(*Class)
		vm.resolveParent(class.Parent)
	}
}

func (vm *VM) execNewInst(argc int, line int) error {
	classIdx := len(vm.stack) - argc - 1
	classVal := vm.stack[classIdx]
	if classVal.Kind != KindClass {
		return throwf(line, "cannot instantiate a %s", classVal.Kind)
	}
	class := classVal.Obj.(*Class)
	vm.resolveParent(class)

	params := class.EffectiveParams()
	args := append([]Value{}, vm.stack[classIdx+1:]...)
	if len(args) != len(params) {
		return throwf(line, "%s expects %d constructor argument(s), got %d", class.Name, len(params), len(args))
	}

	fields := make(map[string]Value, len(params))
	for i, p := range params {
		fields[p] = args[i]
	}
	inst := &Instance{Class: class, Fields: fields}
	instVal := Value{Kind: KindInstance, Obj: inst}

	var chain []*Class
	for cl := class; cl != nil; cl = cl.Parent {
		chain = append(chain, cl)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, pd := range chain[i].PropDefaults {
			val, err := vm.invoke(&Function{Name: pd.Name, Chunk: pd.Chunk}, nil, []Value{instVal})
			if err != nil {
				return err
			}
			inst.Fields[pd.Name] = val
		}
	}

	vm.stack = vm.stack[:classIdx]
	vm.push(instVal)
	return nil
}

// importModule resolves an import path to the module's exported
// value (normally a namespace-shaped dict). Actual filesystem/package
// resolution is an external collaborator's concern, plugged in here.
func (vm *VM) importModule(path string, line int) (Value, error) {
	if vm.ModuleLoader == nil {
		return Value{}, throwf(line, "cannot import %q: no module loader configured", path)
	}
	v, err := vm.ModuleLoader(path)
	if err != nil {
		return Value{}, throwf(line, "import %q failed: %v", path, err)
	}
	return v, nil
}
