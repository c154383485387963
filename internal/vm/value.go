// Package vm implements the bytecode compiler and stack-based
// virtual machine: the Value model, Chunk format, opcode set, and the
// Compile/Run entry points.
package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags a Value's active variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
	KindDict
	KindEnum
	KindFunction
	KindClosure
	KindClass
	KindInstance
	KindNative
	KindInterface
	KindRange
	KindBoundMethod
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindList:
		return "List"
	case KindDict:
		return "Dict"
	case KindEnum:
		return "Enum"
	case KindFunction:
		return "Function"
	case KindClosure:
		return "Function"
	case KindClass:
		return "Class"
	case KindInstance:
		return "Instance"
	case KindNative:
		return "Native"
	case KindInterface:
		return "Interface"
	case KindRange:
		return "Range"
	case KindBoundMethod:
		return "Function"
	default:
		return "Unknown"
	}
}

// Value is the tagged union flowing through the operand stack.
// Integer, Float, String, and Bool are value-semantic and copied by
// assignment; List, Dict, and Instance carry a pointer to a shared,
// mutable heap object, so assignment copies the reference.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	S    string
	B    bool
	Obj  interface{}
}

func Null() Value            { return Value{Kind: KindNull} }
func Int(i int64) Value      { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, F: f} }
func Str(s string) Value     { return Value{Kind: KindString, S: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, B: b} }

func NewList(items []Value) Value {
	return Value{Kind: KindList, Obj: &List{Items: items}}
}
func NewDict(d map[string]Value) Value {
	return Value{Kind: KindDict, Obj: &Dict{Entries: d}}
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Truthy implements the spec's truth table: a Bool is its own value,
// Null and Integer 0 are false, everything else (including Float 0.0
// and "") is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.B
	case KindInt:
		return v.I != 0
	default:
		return true
	}
}

// ToDisplayString renders v the way `print` and string-interpolation
// `toString` conversions do.
func (v Value) ToDisplayString() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return strconv.FormatInt(v.I, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KindString:
		return v.S
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindList:
		l := v.Obj.(*List)
		parts := make([]string, len(l.Items))
		for i, it := range l.Items {
			parts[i] = it.ToDisplayString()
			if it.Kind == KindString {
				parts[i] = strconv.Quote(it.S)
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindDict:
		d := v.Obj.(*Dict)
		parts := make([]string, 0, len(d.Entries))
		for k, val := range d.Entries {
			parts = append(parts, fmt.Sprintf("%s: %s", k, val.ToDisplayString()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFunction, KindClosure:
		return "<function>"
	case KindBoundMethod:
		return "<bound method>"
	case KindClass:
		return "<class " + v.Obj.(*Class).Name + ">"
	case KindInstance:
		return "<instance of " + v.Obj.(*Instance).Class.Name + ">"
	case KindNative:
		return "<native " + v.S + ">"
	case KindEnum:
		return "<enum " + v.Obj.(*Enum).Name + ">"
	case KindInterface:
		return "<interface " + v.S + ">"
	case KindRange:
		r := v.Obj.(*Range)
		return fmt.Sprintf("%d..%d", r.Start, r.End)
	default:
		return "<?>"
	}
}

// StructuralEqual implements Value-level `==`: numbers compare across
// Int/Float, containers compare element-wise, everything else by tag
// plus payload identity/value.
func StructuralEqual(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		return numericValue(a) == numericValue(b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindString:
		return a.S == b.S
	case KindBool:
		return a.B == b.B
	case KindList:
		al, bl := a.Obj.(*List), b.Obj.(*List)
		if len(al.Items) != len(bl.Items) {
			return false
		}
		for i := range al.Items {
			if !StructuralEqual(al.Items[i], bl.Items[i]) {
				return false
			}
		}
		return true
	case KindDict:
		ad, bd := a.Obj.(*Dict), b.Obj.(*Dict)
		if len(ad.Entries) != len(bd.Entries) {
			return false
		}
		for k, v := range ad.Entries {
			bv, ok := bd.Entries[k]
			if !ok || !StructuralEqual(v, bv) {
				return false
			}
		}
		return true
	case KindInstance:
		return a.Obj == b.Obj
	case KindInterface, KindNative:
		return a.S == b.S
	default:
		return a.Obj == b.Obj
	}
}

func isNumeric(v Value) bool { return v.Kind == KindInt || v.Kind == KindFloat }

func numericValue(v Value) float64 {
	if v.Kind == KindInt {
		return float64(v.I)
	}
	return v.F
}
