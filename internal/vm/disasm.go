package vm

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of chunk to w, one
// instruction per line, prefixed with its byte offset and source line.
// Used by VMBackend.Disassemble, which cmd/aegis calls for its -debug
// flag.
func Disassemble(w io.Writer, name string, chunk *Chunk) {
	fmt.Fprintf(w, "== %s ==\n", name)
	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstr(w, chunk, offset)
	}
}

func disassembleInstr(w io.Writer, chunk *Chunk, offset int) int {
	op := OpCode(chunk.Code[offset])
	line := chunk.LineAt(offset)
	fmt.Fprintf(w, "%04d %4d  %s", offset, line, op)

	width := operandWidths[op]
	next := offset + 1 + width

	switch op {
	case OpLoadConst, OpClass:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(w, " %d  ; %s", idx, constDisplay(chunk, int(idx)))
	case OpGetGlobal, OpSetGlobal:
		fmt.Fprintf(w, " %d", chunk.Code[offset+1])
	case OpGetLocal, OpSetLocal:
		slot := int(chunk.Code[offset+1])
		if name, ok := chunk.LocalNames[slot]; ok {
			fmt.Fprintf(w, " %d  ; %s", slot, name)
		} else {
			fmt.Fprintf(w, " %d", slot)
		}
	case OpGetFreeVar:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(w, " %d  ; %s", idx, constDisplay(chunk, int(idx)))
	case OpMakeList, OpMakeDict, OpMakeEnum, OpCall, OpNewInst:
		fmt.Fprintf(w, " %d", chunk.Code[offset+1])
	case OpGetAttr, OpSetAttr, OpCheckType, OpImport:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(w, " %d  ; %s", idx, constDisplay(chunk, int(idx)))
	case OpMethod:
		nameIdx := chunk.Code[offset+1]
		argc := chunk.Code[offset+2]
		fmt.Fprintf(w, " %d %d  ; %s", nameIdx, argc, constDisplay(chunk, int(nameIdx)))
	case OpSuper:
		methodIdx := chunk.Code[offset+1]
		argc := chunk.Code[offset+2]
		parentIdx := chunk.Code[offset+3]
		fmt.Fprintf(w, " %d %d %d  ; %s / %s", methodIdx, argc, parentIdx,
			constDisplay(chunk, int(methodIdx)), constDisplay(chunk, int(parentIdx)))
	case OpJump, OpJumpIfFalse, OpLoop:
		hi, lo := chunk.Code[offset+1], chunk.Code[offset+2]
		dist := int(hi)<<8 | int(lo)
		target := offset + 3
		if op == OpLoop {
			target -= dist
		} else {
			target += dist
		}
		fmt.Fprintf(w, " -> %04d", target)
	case OpSetupExcept:
		hi, lo := chunk.Code[offset+1], chunk.Code[offset+2]
		dist := int(hi)<<8 | int(lo)
		fmt.Fprintf(w, " -> %04d", offset+3+dist)
	}

	fmt.Fprintln(w)
	return next
}

func constDisplay(chunk *Chunk, idx int) string {
	if idx < 0 || idx >= len(chunk.Constants) {
		return "?"
	}
	v := chunk.Constants[idx]
	if v.Kind == KindString {
		return fmt.Sprintf("%q", v.S)
	}
	return v.ToDisplayString()
}
