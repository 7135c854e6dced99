package bytecode

import (
	"strconv"
	"strings"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/mir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// Compiler lowers one function body's MIR into a flat instruction stream.
// It owns the local-variable slot assignment and the sequential label
// counter for the function currently being lowered; nothing here is
// shared across functions (mirrors original_source's per-function
// `Session::stack_offset`/`local_values` bookkeeping, scoped down since
// this package doesn't also own the cross-function entity tables
// internal/session does).
type Compiler struct {
	locals     map[span.Span]int
	localStack []int
	nextLocal  int
	nextCall   int
	labelSeq   int
	code       []Instruction
}

// NewCompiler returns a Compiler with param slots 0..len(paramSpans)-1
// pre-assigned, matching the calling convention §4.6 assumes: a callee's
// own Local registers start at its parameters.
func NewCompiler(paramSpans []span.Span) *Compiler {
	c := &Compiler{locals: map[span.Span]int{}}
	for i, s := range paramSpans {
		c.locals[s] = i
	}
	c.nextLocal = len(paramSpans)
	return c
}

// LowerFunc lowers a whole function body (already wrapped in
// mir.FuncBody's is_tail=true) and returns its instruction stream.
func LowerFunc(body *mir.Node, paramSpans []span.Span) []Instruction {
	c := NewCompiler(paramSpans)
	c.lowerExpr(body, Ret(), true)
	return c.code
}

func (c *Compiler) emit(i Instruction) { c.code = append(c.code, i) }

func (c *Compiler) label() Label {
	c.labelSeq++
	return Label{Kind: LabelLocal, ID: c.labelSeq}
}

// dropAllLocals pops every local currently on the stack, in reverse
// declaration order, matching "Each non-return register names a stack
// (last-in semantics)" (spec.md §3 "Register").
func (c *Compiler) dropAllLocals() {
	for i := len(c.localStack) - 1; i >= 0; i-- {
		c.emit(Instruction{Op: OpPop, Reg: Local(c.localStack[i])})
	}
}

func tupleIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "_") {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// lowerExpr is the recursive dispatcher described in spec.md §4.6's
// "Lowering contract for expressions".
func (c *Compiler) lowerExpr(n *mir.Node, dst Register, isTail bool) {
	if n == nil || n.IsPoison() {
		c.emit(Instruction{Op: OpPushConst, Value: IntValue(0), Dst: dst})
		if isTail {
			c.dropAllLocals()
			c.emit(Instruction{Op: OpReturn})
		}
		return
	}

	switch n.Tag {
	case mir.NIdent:
		c.lowerIdent(n, dst, isTail)
	case mir.NConstInt:
		c.emit(Instruction{Op: OpPushConst, Value: IntValue(n.IntValue), Dst: dst})
		c.tailReturn(isTail)
	case mir.NConstBool:
		// Canonicalized to the scalars 1/0 (spec.md §4.6 "Boolean lowering").
		v := int64(0)
		if n.BoolValue {
			v = 1
		}
		c.emit(Instruction{Op: OpPushConst, Value: IntValue(v), Dst: dst})
		c.tailReturn(isTail)
	case mir.NConstString:
		c.emit(Instruction{Op: OpPushConst, Value: StringValue(n.StrValue), Dst: dst})
		c.tailReturn(isTail)
	case mir.NNever:
		c.emit(Instruction{Op: OpPushConst, Value: IntValue(0), Dst: dst})
		c.tailReturn(isTail)
	case mir.NIf:
		c.lowerIf(n, dst, isTail)
	case mir.NBlock:
		c.lowerBlock(n, dst, isTail)
	case mir.NField:
		c.lowerField(n, dst, isTail)
	case mir.NCall:
		c.lowerCall(n, dst, isTail)
	case mir.NTuple, mir.NList, mir.NStructLit:
		c.lowerCtor(n, dst, isTail)
	default:
		c.emit(Instruction{Op: OpPushConst, Value: IntValue(0), Dst: dst})
		c.tailReturn(isTail)
	}
}

func (c *Compiler) tailReturn(isTail bool) {
	if isTail {
		c.dropAllLocals()
		c.emit(Instruction{Op: OpReturn})
	}
}

func (c *Compiler) move(src, dst Register) {
	if src != dst {
		c.emit(Instruction{Op: OpPush, Src: src, Dst: dst})
	}
}

// lowerIdent implements the Ident case of §4.6's lowering contract: a
// local reads straight off its stack slot; a top-level let goes through
// the lazy-init protocol (PushCallStack/JumpIfInit/Label/PopCallStack)
// against its Const(span) slot; a function reference pushes a
// FuncPointer constant. Any origin this pass can't classify (should not
// arise from a well-formed session, but the core stays total per §7's
// "continue as far as it can safely") degrades to reading whatever is
// already sitting in Return rather than aborting the pass.
func (c *Compiler) lowerIdent(n *mir.Node, dst Register, isTail bool) {
	origin := n.Origin

	if slot, ok := c.locals[origin.DefSpan]; ok {
		c.move(Local(slot), dst)
		c.tailReturn(isTail)
		return
	}

	switch {
	case origin.Tag == hir.OriginFuncParam:
		c.move(Local(origin.Idx), dst)
		c.tailReturn(isTail)

	case origin.Kind == hir.KindFunc:
		c.emit(Instruction{Op: OpPushConst, Value: FuncPointerValue(origin.DefSpan), Dst: dst})
		c.tailReturn(isTail)

	case origin.Kind == hir.KindLet && origin.IsTopLevel:
		done := c.label()
		c.emit(Instruction{Op: OpPushCallStack, Label: done})
		c.emit(Instruction{Op: OpJumpIfInit, Reg: Const(origin.DefSpan), Label: Global(origin.DefSpan)})
		c.emit(Instruction{Op: OpLabel, Label: done})
		c.emit(Instruction{Op: OpPopCallStack})
		c.move(Const(origin.DefSpan), dst)
		c.tailReturn(isTail)

	default:
		c.move(Ret(), dst)
		c.tailReturn(isTail)
	}
}

func (c *Compiler) lowerIf(n *mir.Node, dst Register, isTail bool) {
	trueLabel := c.label()
	endLabel := c.label()

	c.lowerExpr(n.Cond, Ret(), false)
	c.emit(Instruction{Op: OpJumpIf, Reg: Ret(), Label: trueLabel})

	c.lowerExpr(n.Else, dst, isTail)
	if !isTail {
		c.emit(Instruction{Op: OpGoto, Label: endLabel})
	}

	c.emit(Instruction{Op: OpLabel, Label: trueLabel})
	c.lowerExpr(n.Then, dst, isTail)
	if !isTail {
		c.emit(Instruction{Op: OpLabel, Label: endLabel})
	}
}

func (c *Compiler) lowerBlock(n *mir.Node, dst Register, isTail bool) {
	declared := make([]int, 0, len(n.Lets))
	for _, l := range n.Lets {
		slot := c.nextLocal
		c.nextLocal++
		c.locals[l.NameSpan] = slot
		c.localStack = append(c.localStack, slot)
		declared = append(declared, slot)
		c.lowerExpr(l.Value, Local(slot), false)
	}

	for _, a := range n.Asserts {
		c.lowerExpr(a.Condition, Ret(), false)
		c.emit(Instruction{Op: OpAssert, Reg: Ret()})
	}

	c.lowerExpr(n.Value, dst, isTail)

	if !isTail {
		for i := len(declared) - 1; i >= 0; i-- {
			c.emit(Instruction{Op: OpPop, Reg: Local(declared[i])})
		}
		c.localStack = c.localStack[:len(c.localStack)-len(declared)]
	}
}

func (c *Compiler) lowerField(n *mir.Node, dst Register, isTail bool) {
	c.lowerExpr(n.Base, Ret(), false)
	for _, f := range n.Fields {
		if idx, ok := tupleIndex(f); ok {
			c.emit(Instruction{Op: OpRead, Src: Ret(), Dst: Ret(), FieldOffset: idx, FieldIsIndex: true})
		} else {
			c.emit(Instruction{Op: OpRead, Src: Ret(), Dst: Ret(), FieldName: f})
		}
	}
	c.move(Ret(), dst)
	c.tailReturn(isTail)
}

// lowerArgs evaluates each argument into its own Call-class slot, saving
// and restoring the Call-frame cursor around the evaluation the way
// original_source's `session.stack_offset` does, so that a call nested
// inside an argument expression gets slots above the ones already in use
// rather than clobbering them.
func (c *Compiler) lowerArgs(args []*mir.Node) int {
	base := c.nextCall
	c.nextCall += len(args)
	for i, a := range args {
		c.lowerExpr(a, Call(base+i), false)
	}
	c.nextCall -= len(args)
	return base
}

func (c *Compiler) shiftArgsDown(base, n int) {
	for i := 0; i < n; i++ {
		c.move(Call(base+i), Call(i))
	}
}

// lowerCall implements the Call case of §4.6's lowering contract:
// intrinsics emit a single Intrinsic op; a statically-known function call
// either jumps in place (tail) or goes through the push/jump/pop return
// protocol; a call through a function-pointer value in a register does
// the same via JumpDynamic instead of a resolved Goto.
func (c *Compiler) lowerCall(n *mir.Node, dst Register, isTail bool) {
	base := c.lowerArgs(n.Args)
	argRegs := make([]Register, len(n.Args))
	for i := range n.Args {
		argRegs[i] = Call(base + i)
	}

	if n.IsIntrinsic {
		c.emit(Instruction{Op: OpIntrinsic, IntrinsicOp: n.IntrinsicOp, Args: argRegs, Dst: dst})
		c.tailReturn(isTail)
		return
	}

	if n.Func != nil && n.Func.Tag == mir.NIdent && n.Func.Origin.Kind == hir.KindFunc {
		funcLabel := Global(n.Func.Origin.DefSpan)
		if isTail {
			c.dropAllLocals()
			c.shiftArgsDown(base, len(n.Args))
			c.emit(Instruction{Op: OpGoto, Label: funcLabel})
			return
		}
		ret := c.label()
		c.emit(Instruction{Op: OpPushCallStack, Label: ret})
		c.emit(Instruction{Op: OpIncStackPointer, N: base})
		c.emit(Instruction{Op: OpGoto, Label: funcLabel})
		c.emit(Instruction{Op: OpLabel, Label: ret})
		c.emit(Instruction{Op: OpDecStackPointer, N: base})
		c.emit(Instruction{Op: OpPopCallStack})
		c.move(Ret(), dst)
		return
	}

	// Dynamic dispatch: the callee is a function-pointer value that has to
	// be evaluated, not a statically-known def-site.
	c.lowerExpr(n.Func, Ret(), false)
	if isTail {
		c.dropAllLocals()
		c.shiftArgsDown(base, len(n.Args))
		c.emit(Instruction{Op: OpJumpDynamic, Reg: Ret()})
		return
	}
	ret := c.label()
	c.emit(Instruction{Op: OpPushCallStack, Label: ret})
	c.emit(Instruction{Op: OpIncStackPointer, N: base})
	c.emit(Instruction{Op: OpJumpDynamic, Reg: Ret()})
	c.emit(Instruction{Op: OpLabel, Label: ret})
	c.emit(Instruction{Op: OpDecStackPointer, N: base})
	c.emit(Instruction{Op: OpPopCallStack})
	c.move(Ret(), dst)
}

// lowerCtor implements the Constructor case of §4.6's lowering contract:
// tuple/struct/list literals evaluate their elements into a contiguous
// Call-register run, then a single Init op builds the value and
// IncRefCount marks it owned.
func (c *Compiler) lowerCtor(n *mir.Node, dst Register, isTail bool) {
	var elems []*mir.Node
	switch n.Tag {
	case mir.NTuple, mir.NList:
		elems = n.Elems
	case mir.NStructLit:
		elems = make([]*mir.Node, len(n.SFields))
		for i, f := range n.SFields {
			elems[i] = f.Value
		}
	}

	base := c.lowerArgs(elems)
	argRegs := make([]Register, len(elems))
	for i := range elems {
		argRegs[i] = Call(base + i)
	}

	op := OpInitTuple
	if n.Tag == mir.NList {
		op = OpInitList
	}
	c.emit(Instruction{Op: op, Dst: dst, Args: argRegs, N: len(elems)})
	c.emit(Instruction{Op: OpIncRefCount, Reg: dst})
	c.tailReturn(isTail)
}
