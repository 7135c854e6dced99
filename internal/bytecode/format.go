package bytecode

import (
	"sort"

	"github.com/sodigy-lang/sodigyc/internal/span"
	"github.com/sodigy-lang/sodigyc/internal/varint"
)

// Program is a whole lowered session ready to serialize (spec.md §6
// "Bytecode file format"): every top-level function's resolved
// instruction stream, keyed by a stable hash of its def-site, plus the
// entry point.
type Program struct {
	Entry     uint64
	Functions map[uint64][]Instruction
}

// NewProgram builds a Program from a map of def-span to already-Resolve'd
// function bodies, keying each by ConstKey so the on-disk format never
// has to carry raw spans.
func NewProgram(entry span.Span, funcs map[span.Span][]Instruction) *Program {
	p := &Program{Entry: ConstKey(entry), Functions: map[uint64][]Instruction{}}
	for def, code := range funcs {
		p.Functions[ConstKey(def)] = code
	}
	return p
}

// Encode serializes p per spec.md §6: a header naming the entry function's
// ConstKey, then the function count and, in ascending key order, each
// function's ConstKey followed by its instruction sequence, using the
// varint codec throughout (internal/varint). Functions are keyed by the
// u64 ConstKey hash of their def-site, not by a sequential u32 label id.
func (p *Program) Encode() []byte {
	var buf []byte
	buf = varint.EncodeUint64(buf, p.Entry)

	keys := make([]uint64, 0, len(p.Functions))
	for k := range p.Functions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buf = varint.EncodeUint64(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = varint.EncodeUint64(buf, k)
		code := p.Functions[k]
		buf = varint.EncodeUint64(buf, uint64(len(code)))
		for _, instr := range code {
			buf = encodeInstruction(buf, instr)
		}
	}
	return buf
}

func encodeRegister(buf []byte, r Register) []byte {
	buf = append(buf, byte(r.Class))
	switch r.Class {
	case RegLocal, RegCall:
		buf = varint.EncodeInt64(buf, int64(r.N))
	case RegConst:
		buf = varint.EncodeUint64(buf, ConstKey(r.Def))
	}
	return buf
}

func encodeLabel(buf []byte, l Label) []byte {
	buf = append(buf, byte(l.Kind))
	switch l.Kind {
	case LabelLocal:
		buf = varint.EncodeInt64(buf, int64(l.ID))
	case LabelGlobal:
		buf = varint.EncodeUint64(buf, ConstKey(l.Def))
	}
	return buf
}

func encodeValue(buf []byte, v Value) []byte {
	buf = append(buf, byte(v.Kind))
	switch v.Kind {
	case ValInt:
		buf = varint.EncodeInt64(buf, v.Int)
	case ValBool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		buf = append(buf, b)
	case ValString:
		buf = varint.EncodeUint64(buf, uint64(len(v.Str)))
		buf = append(buf, v.Str...)
	case ValFuncPointer:
		buf = varint.EncodeUint64(buf, ConstKey(v.FuncDef))
	}
	return buf
}

func encodeInstruction(buf []byte, instr Instruction) []byte {
	buf = append(buf, byte(instr.Op))
	switch instr.Op {
	case OpPush:
		buf = encodeRegister(buf, instr.Src)
		buf = encodeRegister(buf, instr.Dst)
	case OpPushConst:
		buf = encodeValue(buf, instr.Value)
		buf = encodeRegister(buf, instr.Dst)
	case OpPop, OpAssert, OpIncRefCount:
		buf = encodeRegister(buf, instr.Reg)
	case OpPushCallStack:
		buf = encodeLabel(buf, instr.Label)
	case OpPopCallStack, OpReturn:
		// no operands
	case OpGoto:
		buf = encodeLabel(buf, instr.Label)
	case OpJumpIf, OpJumpIfInit:
		buf = encodeRegister(buf, instr.Reg)
		buf = encodeLabel(buf, instr.Label)
	case OpLabel:
		buf = encodeLabel(buf, instr.Label)
	case OpIntrinsic:
		buf = varint.EncodeUint64(buf, uint64(len(instr.IntrinsicOp)))
		buf = append(buf, instr.IntrinsicOp...)
		buf = varint.EncodeUint64(buf, uint64(len(instr.Args)))
		for _, a := range instr.Args {
			buf = encodeRegister(buf, a)
		}
		buf = encodeRegister(buf, instr.Dst)
	case OpRead:
		buf = encodeRegister(buf, instr.Src)
		buf = encodeRegister(buf, instr.Dst)
		if instr.FieldIsIndex {
			buf = append(buf, 1)
			buf = varint.EncodeInt64(buf, int64(instr.FieldOffset))
		} else {
			buf = append(buf, 0)
			buf = varint.EncodeUint64(buf, uint64(len(instr.FieldName)))
			buf = append(buf, instr.FieldName...)
		}
	case OpInitTuple, OpInitList:
		buf = encodeRegister(buf, instr.Dst)
		buf = varint.EncodeUint64(buf, uint64(instr.N))
		for _, a := range instr.Args {
			buf = encodeRegister(buf, a)
		}
	case OpIncStackPointer, OpDecStackPointer:
		buf = varint.EncodeUint64(buf, uint64(instr.N))
	case OpJumpDynamic:
		buf = encodeRegister(buf, instr.Reg)
	}
	return buf
}
