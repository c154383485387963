package vm

import (
	"fmt"
	"math"
)

// runUntil executes frames until the frame stack has unwound back to
// targetDepth (a normal OpReturn chain) or an uncaught error occurs.
// It is re-entrant: native builtins that must call back into a
// closure (list.map, a class's prop-default expression) call it
// through invoke, nesting a fresh target depth inside whatever
// runUntil is already on the Go call stack.
func (vm *VM) runUntil(targetDepth int) (Value, error) {
	for len(vm.frames) > targetDepth {
		if vm.Debugger.shouldBreak(vm) && vm.Debugger.OnStop != nil {
			vm.Debugger.OnStop(vm.Debugger, vm)
		}
		if err := vm.step(); err != nil {
			rerr, ok := err.(*RuntimeError)
			if !ok {
				return Value{}, err
			}
			if !vm.unwind(rerr, targetDepth) {
				return Value{}, rerr
			}
			continue
		}
	}
	if len(vm.stack) == 0 {
		return Null(), nil
	}
	return vm.pop(), nil
}

// unwind searches for the most recently installed handler that
// belongs to a frame owned by this runUntil call (depth > targetDepth)
// and, if found, rewinds frames/stack to it and resumes at its catch
// IP. A handler belonging to an outer runUntil is left in place so
// the error keeps propagating toward it.
func (vm *VM) unwind(rerr *RuntimeError, targetDepth int) bool {
	if len(vm.handlers) == 0 {
		return false
	}
	h := vm.handlers[len(vm.handlers)-1]
	if h.frameDepth <= targetDepth {
		return false
	}
	vm.handlers = vm.handlers[:len(vm.handlers)-1]
	vm.frames = vm.frames[:h.frameDepth]
	vm.stack = vm.stack[:h.stackHeight]
	vm.push(rerr.Value)
	vm.currentFrame().ip = h.catchIP
	return true
}

func (vm *VM) readByte(f *Frame) byte {
	b := f.fn.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readUint16(f *Frame) int {
	hi := f.fn.Chunk.Code[f.ip]
	lo := f.fn.Chunk.Code[f.ip+1]
	f.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) step() error {
	f := vm.currentFrame()
	line := f.fn.Chunk.LineAt(f.ip)
	op := OpCode(f.fn.Chunk.Code[f.ip])
	f.ip++

	switch op {
	case OpLoadConst:
		idx := vm.readByte(f)
		vm.push(f.fn.Chunk.Constants[idx])

	case OpGetGlobal:
		idx := vm.readByte(f)
		vm.push(vm.globals[idx])
	case OpSetGlobal:
		idx := vm.readByte(f)
		vm.globals[idx] = vm.peek(0)

	case OpGetLocal:
		slot := vm.readByte(f)
		vm.push(vm.stack[f.base+int(slot)])
	case OpSetLocal:
		slot := vm.readByte(f)
		vm.stack[f.base+int(slot)] = vm.peek(0)

	case OpMakeClosure:
		vm.execMakeClosure(f)
	case OpGetFreeVar:
		idx := vm.readByte(f)
		name := f.fn.Chunk.Constants[idx].S
		if f.closure != nil {
			if val, ok := f.closure.Captured[name]; ok {
				vm.push(val)
				break
			}
		}
		vm.push(Null())

	case OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
		OpBitAnd, OpBitOr, OpBitXor, OpShiftLeft, OpShiftRight:
		b := vm.pop()
		a := vm.pop()
		v, err := binaryOp(op, a, b, line)
		if err != nil {
			return err
		}
		vm.push(v)

	case OpNot:
		v := vm.pop()
		vm.push(Bool(!v.Truthy()))
	case OpNeg:
		v := vm.pop()
		switch v.Kind {
		case KindInt:
			vm.push(Int(-v.I))
		case KindFloat:
			vm.push(Float(-v.F))
		default:
			return throwf(line, "cannot negate a %s", v.Kind)
		}

	case OpPop:
		vm.pop()
	case OpDup:
		vm.push(vm.peek(0))

	case OpMakeList:
		n := int(vm.readByte(f))
		items := append([]Value{}, vm.stack[len(vm.stack)-n:]...)
		vm.stack = vm.stack[:len(vm.stack)-n]
		vm.push(NewList(items))
	case OpMakeDict:
		n := int(vm.readByte(f))
		entries := make(map[string]Value, n)
		base := len(vm.stack) - 2*n
		for i := 0; i < n; i++ {
			k := vm.stack[base+2*i]
			v := vm.stack[base+2*i+1]
			if k.Kind != KindString {
				return throwf(line, "dict keys must be strings, got %s", k.Kind)
			}
			entries[k.S] = v
		}
		vm.stack = vm.stack[:base]
		vm.push(NewDict(entries))
	case OpMakeEnum:
		n := int(vm.readByte(f))
		base := len(vm.stack) - 2*n - 1
		nameVal := vm.stack[base]
		members := make(map[string]int64, n)
		order := make([]string, 0, n)
		for i := 0; i < n; i++ {
			mname := vm.stack[base+1+2*i].S
			mval := vm.stack[base+1+2*i+1].I
			members[mname] = mval
			order = append(order, mname)
		}
		vm.stack = vm.stack[:base]
		vm.push(Value{Kind: KindEnum, Obj: &Enum{Name: nameVal.S, Members: members, Order: order}})
	case OpMakeRange:
		end := vm.pop()
		start := vm.pop()
		vm.push(Value{Kind: KindRange, Obj: &Range{Start: start.I, End: end.I, Step: 1}})

	case OpJump:
		off := vm.readUint16(f)
		f.ip += off
	case OpJumpIfFalse:
		off := vm.readUint16(f)
		if !vm.peek(0).Truthy() {
			f.ip += off
		}
	case OpLoop:
		off := vm.readUint16(f)
		f.ip -= off

	case OpCall:
		argc := int(vm.readByte(f))
		if err := vm.execCall(argc, line); err != nil {
			return err
		}
	case OpReturn:
		ret := vm.pop()
		fr := vm.frames[len(vm.frames)-1]
		vm.stack = vm.stack[:fr.truncateTo]
		vm.frames = vm.frames[:len(vm.frames)-1]
		vm.push(ret)

	case OpClass:
		idx := vm.readByte(f)
		vm.push(f.fn.Chunk.Constants[idx])
	case OpMethod:
		nameIdx := vm.readByte(f)
		argc := int(vm.readByte(f))
		name := f.fn.Chunk.Constants[nameIdx].S
		if err := vm.execMethod(name, argc, line); err != nil {
			return err
		}
	case OpGetAttr:
		idx := vm.readByte(f)
		name := f.fn.Chunk.Constants[idx].S
		obj := vm.pop()
		v, err := vm.getAttr(obj, name, line)
		if err != nil {
			return err
		}
		vm.push(v)
	case OpSetAttr:
		idx := vm.readByte(f)
		name := f.fn.Chunk.Constants[idx].S
		value := vm.pop()
		obj := vm.pop()
		if err := vm.setAttr(obj, name, value, line); err != nil {
			return err
		}
		vm.push(value)
	case OpSuper:
		methodIdx := vm.readByte(f)
		argc := int(vm.readByte(f))
		parentIdx := vm.readByte(f)
		methodName := f.fn.Chunk.Constants[methodIdx].S
		parentName := f.fn.Chunk.Constants[parentIdx].S
		if err := vm.execSuper(methodName, parentName, argc, line); err != nil {
			return err
		}
	case OpNewInst:
		argc := int(vm.readByte(f))
		if err := vm.execNewInst(argc, line); err != nil {
			return err
		}

	case OpPrint:
		v := vm.pop()
		fmt.Fprintln(vm.Stdout, v.ToDisplayString())
	case OpInput:
		var line string
		fmt.Fscanln(vm.Stdin, &line)
		vm.push(Str(line))

	case OpCheckType:
		idx := vm.readByte(f)
		typeName := f.fn.Chunk.Constants[idx].S
		if !valueMatchesType(vm.peek(0), typeName) {
			return throwf(line, "expected type %s, got %s", typeName, vm.peek(0).Kind)
		}

	case OpSetupExcept:
		off := vm.readUint16(f)
		vm.handlers = append(vm.handlers, excHandler{
			frameDepth:  len(vm.frames),
			catchIP:     f.ip + off,
			stackHeight: len(vm.stack),
		})
	case OpPopExcept:
		if len(vm.handlers) > 0 {
			vm.handlers = vm.handlers[:len(vm.handlers)-1]
		}
	case OpThrow:
		v := vm.pop()
		return &RuntimeError{Value: v, Line: line}

	case OpImport:
		idx := vm.readByte(f)
		path := f.fn.Chunk.Constants[idx].S
		v, err := vm.importModule(path, line)
		if err != nil {
			return err
		}
		vm.push(v)

	case OpHalt:
		vm.frames = vm.frames[:0]

	default:
		return throwf(line, "unknown opcode %d", op)
	}
	return nil
}

func (vm *VM) execMakeClosure(f *Frame) {
	v := vm.pop()
	fn := v.Obj.(*Function)
	cf := vm.currentFrame()
	captured := map[string]Value{}
	liveCount := len(vm.stack) - cf.base
	for slot := 0; slot < liveCount; slot++ {
		if name, ok := cf.fn.Chunk.LocalNames[slot]; ok {
			captured[name] = vm.stack[cf.base+slot]
		}
	}
	vm.push(Value{Kind: KindClosure, Obj: &Closure{Fn: fn, Captured: captured}})
}

// --- binary operators -----------------------------------------------------

func binaryOp(op OpCode, a, b Value, line int) (Value, error) {
	switch op {
	case OpAdd:
		return addValues(a, b, line)
	case OpSub:
		return numericOp(a, b, line, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
	case OpMul:
		return numericOp(a, b, line, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
	case OpDiv:
		return divValues(a, b, line)
	case OpMod:
		return modValues(a, b, line)
	case OpEqual:
		return Bool(StructuralEqual(a, b)), nil
	case OpNotEqual:
		return Bool(!StructuralEqual(a, b)), nil
	case OpGreater:
		return compareValues(a, b, line, func(c int) bool { return c > 0 })
	case OpGreaterEqual:
		return compareValues(a, b, line, func(c int) bool { return c >= 0 })
	case OpLess:
		return compareValues(a, b, line, func(c int) bool { return c < 0 })
	case OpLessEqual:
		return compareValues(a, b, line, func(c int) bool { return c <= 0 })
	case OpBitAnd:
		if a.Kind == KindBool && b.Kind == KindBool {
			return Bool(a.B && b.B), nil
		}
		return intOp(a, b, line, func(x, y int64) int64 { return x & y })
	case OpBitOr:
		if a.Kind == KindBool && b.Kind == KindBool {
			return Bool(a.B || b.B), nil
		}
		return intOp(a, b, line, func(x, y int64) int64 { return x | y })
	case OpBitXor:
		return intOp(a, b, line, func(x, y int64) int64 { return x ^ y })
	case OpShiftLeft:
		return intOp(a, b, line, func(x, y int64) int64 { return x << uint(y) })
	case OpShiftRight:
		return intOp(a, b, line, func(x, y int64) int64 { return x >> uint(y) })
	}
	return Value{}, throwf(line, "unsupported binary operator")
}

func addValues(a, b Value, line int) (Value, error) {
	if a.Kind == KindString || b.Kind == KindString {
		return Str(a.ToDisplayString() + b.ToDisplayString()), nil
	}
	if a.Kind == KindList && b.Kind == KindList {
		al, bl := a.Obj.(*List), b.Obj.(*List)
		merged := append(append([]Value{}, al.Items...), bl.Items...)
		return NewList(merged), nil
	}
	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, throwf(line, "cannot add %s and %s", a.Kind, b.Kind)
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		return Int(a.I + b.I), nil
	}
	return Float(numericValue(a) + numericValue(b)), nil
}

func numericOp(a, b Value, line int, intOp func(int64, int64) int64, floatOp func(float64, float64) float64) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, throwf(line, "expected numbers, got %s and %s", a.Kind, b.Kind)
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		return Int(intOp(a.I, b.I)), nil
	}
	return Float(floatOp(numericValue(a), numericValue(b))), nil
}

func divValues(a, b Value, line int) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return Value{}, throwf(line, "expected numbers, got %s and %s", a.Kind, b.Kind)
	}
	if numericValue(b) == 0 {
		return Value{}, throwf(line, "division by zero")
	}
	if a.Kind == KindInt && b.Kind == KindInt && a.I%b.I == 0 {
		return Int(a.I / b.I), nil
	}
	return Float(numericValue(a) / numericValue(b)), nil
}

func modValues(a, b Value, line int) (Value, error) {
	if a.Kind == KindInt && b.Kind == KindInt {
		if b.I == 0 {
			return Value{}, throwf(line, "modulo by zero")
		}
		return Int(a.I % b.I), nil
	}
	if isNumeric(a) && isNumeric(b) {
		return Float(math.Mod(numericValue(a), numericValue(b))), nil
	}
	return Value{}, throwf(line, "expected numbers, got %s and %s", a.Kind, b.Kind)
}

func intOp(a, b Value, line int, op func(int64, int64) int64) (Value, error) {
	if a.Kind != KindInt || b.Kind != KindInt {
		return Value{}, throwf(line, "expected integers, got %s and %s", a.Kind, b.Kind)
	}
	return Int(op(a.I, b.I)), nil
}

func compareValues(a, b Value, line int, test func(int) bool) (Value, error) {
	if isNumeric(a) && isNumeric(b) {
		av, bv := numericValue(a), numericValue(b)
		switch {
		case av < bv:
			return Bool(test(-1)), nil
		case av > bv:
			return Bool(test(1)), nil
		default:
			return Bool(test(0)), nil
		}
	}
	if a.Kind == KindString && b.Kind == KindString {
		switch {
		case a.S < b.S:
			return Bool(test(-1)), nil
		case a.S > b.S:
			return Bool(test(1)), nil
		default:
			return Bool(test(0)), nil
		}
	}
	return Value{}, throwf(line, "cannot compare %s and %s", a.Kind, b.Kind)
}

// --- attribute access -------------------------------------------------

func (vm *VM) getAttr(obj Value, name string, line int) (Value, error) {
	switch obj.Kind {
	case KindInstance:
		inst := obj.Obj.(*Instance)
		if v, ok := inst.Fields[name]; ok {
			return v, nil
		}
		if fn, _ := inst.Class.FindMethod(name); fn != nil {
			return Value{Kind: KindBoundMethod, Obj: &BoundMethod{Receiver: obj, Fn: fn}}, nil
		}
		return Value{}, throwf(line, "undefined field %q on instance of %s", name, inst.Class.Name)
	case KindEnum:
		e := obj.Obj.(*Enum)
		if val, ok := e.Members[name]; ok {
			return Int(val), nil
		}
		return Value{}, throwf(line, "undefined enum member %q on %s", name, e.Name)
	case KindDict:
		d := obj.Obj.(*Dict)
		if v, ok := d.Entries[name]; ok {
			return v, nil
		}
		return Null(), nil
	default:
		return Value{}, throwf(line, "cannot read attribute %q of a %s", name, obj.Kind)
	}
}

func (vm *VM) setAttr(obj Value, name string, value Value, line int) error {
	switch obj.Kind {
	case KindInstance:
		obj.Obj.(*Instance).Fields[name] = value
		return nil
	case KindDict:
		obj.Obj.(*Dict).Entries[name] = value
		return nil
	default:
		return throwf(line, "cannot set attribute %q of a %s", name, obj.Kind)
	}
}

// --- type checking ------------------------------------------------------

func valueMatchesType(v Value, typeName string) bool {
	switch typeName {
	case "", "any":
		return true
	case "int":
		return v.Kind == KindInt
	case "float":
		return v.Kind == KindFloat
	case "string":
		return v.Kind == KindString
	case "bool":
		return v.Kind == KindBool
	case "list":
		return v.Kind == KindList
	case "dict":
		return v.Kind == KindDict
	case "null":
		return v.Kind == KindNull
	case "function":
		return v.Kind == KindFunction || v.Kind == KindClosure || v.Kind == KindBoundMethod
	}
	if v.Kind == KindInstance {
		for cl := v.Obj.(*Instance).Class; cl != nil; cl = cl.Parent {
			if cl.Name == typeName {
				return true
			}
		}
	}
	return false
}
