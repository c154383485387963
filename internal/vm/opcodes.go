package vm

// OpCode is a single bytecode instruction. Operand widths are fixed
// per opcode (never varint-encoded) so the debug printer can decode a
// chunk without executing it.
type OpCode byte

const (
	OpLoadConst OpCode = iota // * const-idx
	OpGetGlobal               // * global-id
	OpSetGlobal               // * global-id
	OpGetLocal                // * slot
	OpSetLocal                // * slot
	OpMakeClosure             //   (wraps the function on top of stack)
	OpGetFreeVar              // * name const-idx

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual

	OpNot
	OpNeg
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight

	OpPop
	OpDup

	OpMakeList  // * element count
	OpMakeDict  // * pair count (stack holds 2n interleaved key,value)
	OpMakeEnum  // * member count (stack holds 2n interleaved name-const,int)
	OpMakeRange //   (pops end, start; pushes a Range with step 1)

	OpJump        // ** forward offset
	OpJumpIfFalse // ** forward offset (peeks, does not pop)
	OpLoop        // ** backward offset

	OpCall   // * argc
	OpReturn //

	OpClass     // * const-idx of compiled Class
	OpMethod    // ** name const-idx, argc
	OpGetAttr   // * name const-idx
	OpSetAttr   // * name const-idx
	OpSuper     // *** method-name const-idx, argc, parent-name const-idx
	OpNewInst   // * argc (constructs an Instance from the class on the stack)

	OpPrint
	OpInput

	OpCheckType // * type-name const-idx

	OpSetupExcept // ** catch offset
	OpPopExcept   //
	OpThrow       //

	OpImport // * path const-idx

	OpHalt //
)

// operandWidths gives the number of operand bytes following each
// opcode, read by the disassembler to step from one instruction to
// the next. Opcodes absent from this map take zero operand bytes.
var operandWidths = map[OpCode]int{
	OpLoadConst:   1,
	OpGetGlobal:   1,
	OpSetGlobal:   1,
	OpGetLocal:    1,
	OpSetLocal:    1,
	OpGetFreeVar:  1,
	OpMakeList:    1,
	OpMakeDict:    1,
	OpMakeEnum:    1,
	OpJump:        2,
	OpJumpIfFalse: 2,
	OpLoop:        2,
	OpCall:        1,
	OpClass:       1,
	OpMethod:      2,
	OpGetAttr:     1,
	OpSetAttr:     1,
	OpSuper:       3,
	OpNewInst:     1,
	OpCheckType:   1,
	OpSetupExcept: 2,
	OpImport:      1,
}

var opcodeNames = map[OpCode]string{
	OpLoadConst: "LoadConst", OpGetGlobal: "GetGlobal", OpSetGlobal: "SetGlobal",
	OpGetLocal: "GetLocal", OpSetLocal: "SetLocal", OpMakeClosure: "MakeClosure",
	OpGetFreeVar: "GetFreeVar",
	OpAdd:        "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Modulo",
	OpEqual: "Equal", OpNotEqual: "NotEqual", OpGreater: "Greater",
	OpGreaterEqual: "GreaterEqual", OpLess: "Less", OpLessEqual: "LessEqual",
	OpNot: "Not", OpNeg: "Neg", OpBitAnd: "BitAnd", OpBitOr: "BitOr",
	OpBitXor: "BitXor", OpShiftLeft: "ShiftLeft", OpShiftRight: "ShiftRight",
	OpPop: "Pop", OpDup: "Dup",
	OpMakeList: "MakeList", OpMakeDict: "MakeDict", OpMakeEnum: "MakeEnum",
	OpMakeRange: "MakeRange",
	OpJump:      "Jump", OpJumpIfFalse: "JumpIfFalse", OpLoop: "Loop",
	OpCall: "Call", OpReturn: "Return",
	OpClass: "Class", OpMethod: "Method", OpGetAttr: "GetAttr",
	OpSetAttr: "SetAttr", OpSuper: "Super", OpNewInst: "NewInst",
	OpPrint: "Print", OpInput: "Input",
	OpCheckType:   "CheckType",
	OpSetupExcept: "SetupExcept", OpPopExcept: "PopExcept", OpThrow: "Throw",
	OpImport: "Import",
	OpHalt:   "Halt",
}

func (op OpCode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "UNKNOWN"
}
