package vm

import "strings"

// callBuiltinMethod dispatches `receiver.name(args...)` for the
// primitive container/scalar kinds, since these have no Class and so
// never go through user-method lookup. Closures passed as callback
// arguments (list.map, list.filter, list.for_each) are invoked
// through vm.invoke so they run to completion before the builtin
// returns its result.
func (vm *VM) callBuiltinMethod(receiver Value, name string, args []Value, line int) (Value, error) {
	switch receiver.Kind {
	case KindList:
		return vm.listMethod(receiver.Obj.(*List), name, args, line)
	case KindDict:
		return vm.dictMethod(receiver.Obj.(*Dict), name, args, line)
	case KindString:
		return stringMethod(receiver.S, name, args, line)
	case KindRange:
		return rangeMethod(receiver.Obj.(*Range), name, args, line)
	case KindEnum:
		return enumMethod(receiver.Obj.(*Enum), name, args, line)
	default:
		return Value{}, throwf(line, "%s has no method %q", receiver.Kind, name)
	}
}

func (vm *VM) callValue(fn Value, args []Value, line int) (Value, error) {
	switch fn.Kind {
	case KindClosure:
		cl := fn.Obj.(*Closure)
		return vm.invoke(cl.Fn, cl, args)
	case KindFunction:
		return vm.invoke(fn.Obj.(*Function), nil, args)
	case KindBoundMethod:
		bm := fn.Obj.(*BoundMethod)
		return vm.invoke(bm.Fn, nil, append([]Value{bm.Receiver}, args...))
	default:
		return Value{}, throwf(line, "value of kind %s is not callable", fn.Kind)
	}
}

func (vm *VM) listMethod(l *List, name string, args []Value, line int) (Value, error) {
	switch name {
	case "push":
		l.Items = append(l.Items, args...)
		return NewList(l.Items), nil
	case "pop":
		if len(l.Items) == 0 {
			return Value{}, throwf(line, "pop from an empty list")
		}
		v := l.Items[len(l.Items)-1]
		l.Items = l.Items[:len(l.Items)-1]
		return v, nil
	case "at":
		i, err := indexArg(args, line)
		if err != nil {
			return Value{}, err
		}
		if i < 0 || i >= len(l.Items) {
			return Value{}, throwf(line, "list index %d out of range (len %d)", i, len(l.Items))
		}
		return l.Items[i], nil
	case "len":
		return Int(int64(len(l.Items))), nil
	case "map":
		if len(args) != 1 {
			return Value{}, throwf(line, "map expects one function argument")
		}
		out := make([]Value, len(l.Items))
		for i, item := range l.Items {
			v, err := vm.callValue(args[0], []Value{item}, line)
			if err != nil {
				return Value{}, err
			}
			out[i] = v
		}
		return NewList(out), nil
	case "filter":
		if len(args) != 1 {
			return Value{}, throwf(line, "filter expects one function argument")
		}
		var out []Value
		for _, item := range l.Items {
			v, err := vm.callValue(args[0], []Value{item}, line)
			if err != nil {
				return Value{}, err
			}
			if v.Truthy() {
				out = append(out, item)
			}
		}
		return NewList(out), nil
	case "for_each":
		if len(args) != 1 {
			return Value{}, throwf(line, "for_each expects one function argument")
		}
		for _, item := range l.Items {
			if _, err := vm.callValue(args[0], []Value{item}, line); err != nil {
				return Value{}, err
			}
		}
		return Null(), nil
	default:
		return Value{}, throwf(line, "list has no method %q", name)
	}
}

func (vm *VM) dictMethod(d *Dict, name string, args []Value, line int) (Value, error) {
	switch name {
	case "insert":
		if len(args) != 2 || args[0].Kind != KindString {
			return Value{}, throwf(line, "insert expects a string key and a value")
		}
		d.Entries[args[0].S] = args[1]
		return Null(), nil
	case "get":
		if len(args) < 1 || args[0].Kind != KindString {
			return Value{}, throwf(line, "get expects a string key")
		}
		if v, ok := d.Entries[args[0].S]; ok {
			return v, nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return Null(), nil
	case "keys":
		keys := make([]Value, 0, len(d.Entries))
		for k := range d.Entries {
			keys = append(keys, Str(k))
		}
		return NewList(keys), nil
	case "len":
		return Int(int64(len(d.Entries))), nil
	default:
		return Value{}, throwf(line, "dict has no method %q", name)
	}
}

func stringMethod(s string, name string, args []Value, line int) (Value, error) {
	switch name {
	case "len":
		return Int(int64(len([]rune(s)))), nil
	case "trim":
		return Str(strings.TrimSpace(s)), nil
	case "replace":
		if len(args) != 2 || args[0].Kind != KindString || args[1].Kind != KindString {
			return Value{}, throwf(line, "replace expects two string arguments")
		}
		return Str(strings.ReplaceAll(s, args[0].S, args[1].S)), nil
	case "split":
		sep := " "
		if len(args) > 0 {
			if args[0].Kind != KindString {
				return Value{}, throwf(line, "split expects a string separator")
			}
			sep = args[0].S
		}
		parts := strings.Split(s, sep)
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return NewList(out), nil
	case "at":
		i, err := indexArg(args, line)
		if err != nil {
			return Value{}, err
		}
		r := []rune(s)
		if i < 0 || i >= len(r) {
			return Value{}, throwf(line, "string index %d out of range (len %d)", i, len(r))
		}
		return Str(string(r[i])), nil
	default:
		return Value{}, throwf(line, "string has no method %q", name)
	}
}

func rangeMethod(r *Range, name string, args []Value, line int) (Value, error) {
	switch name {
	case "len":
		if r.Step == 0 {
			return Value{}, throwf(line, "range has zero step")
		}
		n := (r.End - r.Start) / r.Step
		if n < 0 {
			n = 0
		}
		return Int(n), nil
	case "at":
		i, err := indexArg(args, line)
		if err != nil {
			return Value{}, err
		}
		return Int(r.Start + int64(i)*r.Step), nil
	default:
		return Value{}, throwf(line, "range has no method %q", name)
	}
}

func enumMethod(e *Enum, name string, args []Value, line int) (Value, error) {
	switch name {
	case "len":
		return Int(int64(len(e.Order))), nil
	case "at":
		i, err := indexArg(args, line)
		if err != nil {
			return Value{}, err
		}
		if i < 0 || i >= len(e.Order) {
			return Value{}, throwf(line, "enum index %d out of range", i)
		}
		return Int(e.Members[e.Order[i]]), nil
	default:
		return Value{}, throwf(line, "enum has no method %q", name)
	}
}

func indexArg(args []Value, line int) (int, error) {
	if len(args) != 1 || args[0].Kind != KindInt {
		return 0, throwf(line, "expected a single integer index argument")
	}
	return int(args[0].I), nil
}
