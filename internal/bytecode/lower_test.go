package bytecode

import (
	"testing"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/mir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

func constIntNode(v int64) *mir.Node {
	return &mir.Node{Tag: mir.NConstInt, IntValue: v}
}

// spec.md §8 scenario 1 (arithmetic): a tail call to an intrinsic lowers
// to exactly one Intrinsic op, no PushCallStack/PopCallStack pair, ending
// in Return (P6, P7).
func TestLowerFuncTailIntrinsicCallHasNoCallStack(t *testing.T) {
	body := &mir.Node{
		Tag: mir.NCall, IsTail: true,
		IsIntrinsic: true, IntrinsicOp: "IntegerAdd",
		Args: []*mir.Node{constIntNode(1), constIntNode(2)},
	}
	code := LowerFunc(body, nil)

	intrinsics, pushCallStack, returns := 0, 0, 0
	for _, instr := range code {
		switch instr.Op {
		case OpIntrinsic:
			intrinsics++
			if instr.IntrinsicOp != "IntegerAdd" {
				t.Fatalf("expected IntegerAdd, got %q", instr.IntrinsicOp)
			}
		case OpPushCallStack, OpPopCallStack:
			pushCallStack++
		case OpReturn:
			returns++
		}
	}
	if intrinsics != 1 {
		t.Fatalf("expected exactly one Intrinsic op (P6), got %d", intrinsics)
	}
	if pushCallStack != 0 {
		t.Fatalf("expected no PushCallStack/PopCallStack pair around a tail intrinsic call, got %d", pushCallStack)
	}
	if returns != 1 {
		t.Fatalf("expected the tail call to end in Return, got %d", returns)
	}
	if code[len(code)-1].Op != OpReturn {
		t.Fatalf("expected Return to be the final instruction, got %+v", code[len(code)-1])
	}
}

// A non-tail call to a plain top-level function must go through the full
// push/jump/pop protocol (P7's converse).
func TestLowerFuncNonTailStaticCallUsesCallStack(t *testing.T) {
	funcDef := span.NewFile("a.sdg", 10, 20)
	body := &mir.Node{
		Tag: mir.NBlock,
		Lets: []*mir.Let{{
			Name: "r", NameSpan: span.NewFile("a.sdg", 0, 1),
			Value: &mir.Node{
				Tag:  mir.NCall,
				Func: &mir.Node{Tag: mir.NIdent, Origin: hir.Local(hir.KindFunc, funcDef)},
				Args: nil,
			},
		}},
		Value: &mir.Node{Tag: mir.NIdent, Name: "r", Origin: hir.LocalLet(span.NewFile("a.sdg", 0, 1), false)},
	}
	code := LowerFunc(body, nil)

	pushCallStack, popCallStack, gotos := 0, 0, 0
	for _, instr := range code {
		switch instr.Op {
		case OpPushCallStack:
			pushCallStack++
		case OpPopCallStack:
			popCallStack++
		case OpGoto:
			gotos++
			if instr.Label.Kind != LabelGlobal {
				t.Fatalf("expected the call's Goto target to be the function's global label")
			}
		}
	}
	if pushCallStack != 1 || popCallStack != 1 {
		t.Fatalf("expected exactly one PushCallStack/PopCallStack pair, got %d/%d", pushCallStack, popCallStack)
	}
	if gotos != 1 {
		t.Fatalf("expected exactly one Goto to the callee, got %d", gotos)
	}
}

// spec.md §8 scenario 2 (integer equality branch): an If lowers to a
// JumpIf plus the matching Label pair.
func TestLowerIfEmitsJumpIf(t *testing.T) {
	body := &mir.Node{
		Tag:  mir.NIf,
		Cond: constIntNode(1),
		Then: constIntNode(0),
		Else: constIntNode(1),
	}
	code := LowerFunc(body, nil)

	jumpIfs := 0
	for _, instr := range code {
		if instr.Op == OpJumpIf {
			jumpIfs++
		}
	}
	if jumpIfs != 1 {
		t.Fatalf("expected exactly one JumpIf, got %d", jumpIfs)
	}
}

// A block in tail position emits no Pops of its own; the tail Return path
// (dropAllLocals) pops each of its locals exactly once before returning.
func TestLowerTailBlockDropsLocalsOnceBeforeReturn(t *testing.T) {
	letSpan := span.NewFile("a.sdg", 0, 1)
	mkBlock := func() *mir.Node {
		return &mir.Node{
			Tag:   mir.NBlock,
			Lets:  []*mir.Let{{Name: "x", NameSpan: letSpan, Value: constIntNode(1)}},
			Value: constIntNode(2),
		}
	}

	tail := Resolve(LowerFunc(mkBlock(), nil))
	pops := 0
	for _, instr := range tail {
		if instr.Op == OpPop {
			pops++
		}
	}
	if pops != 1 {
		t.Fatalf("expected one Pop dropping the block-local before the tail Return, got %d", pops)
	}
}

// Field access on a tuple-shaped path ("_0"/"_1") resolves to a static
// index Read rather than a named-field Read.
func TestLowerFieldTupleIndexUsesStaticOffset(t *testing.T) {
	body := &mir.Node{
		Tag:  mir.NField,
		Base: &mir.Node{Tag: mir.NIdent, Name: "p"},
		Fields: []string{"_1"},
	}
	code := LowerFunc(body, nil)

	found := false
	for _, instr := range code {
		if instr.Op == OpRead {
			found = true
			if !instr.FieldIsIndex || instr.FieldOffset != 1 {
				t.Fatalf("expected a static index-1 Read, got %+v", instr)
			}
		}
	}
	if !found {
		t.Fatalf("expected a Read instruction for the field access")
	}
}

// Constructing a tuple emits InitTuple followed by IncRefCount, per
// spec.md §4.6's Constructor case.
func TestLowerTupleEmitsInitThenIncRefCount(t *testing.T) {
	body := &mir.Node{
		Tag:   mir.NTuple,
		Elems: []*mir.Node{constIntNode(1), constIntNode(2)},
	}
	code := LowerFunc(body, nil)

	initIdx, incIdx := -1, -1
	for i, instr := range code {
		switch instr.Op {
		case OpInitTuple:
			initIdx = i
		case OpIncRefCount:
			incIdx = i
		}
	}
	if initIdx == -1 || incIdx == -1 {
		t.Fatalf("expected both InitTuple and IncRefCount, got %+v", code)
	}
	if incIdx != initIdx+1 {
		t.Fatalf("expected IncRefCount to immediately follow InitTuple, got init=%d inc=%d", initIdx, incIdx)
	}
}

func TestResolveStripsLabelsAndRewritesLocalJumpTargets(t *testing.T) {
	body := &mir.Node{
		Tag:  mir.NIf,
		Cond: constIntNode(1),
		Then: constIntNode(0),
		Else: constIntNode(1),
	}
	resolved := Resolve(LowerFunc(body, nil))

	for _, instr := range resolved {
		if instr.Op == OpLabel {
			t.Fatalf("expected Resolve to strip OpLabel markers, found one: %+v", instr)
		}
	}
	for i, instr := range resolved {
		if instr.Op == OpJumpIf && instr.Label.Kind == LabelLocal {
			if instr.Label.ID < 0 || instr.Label.ID > len(resolved) {
				t.Fatalf("instruction %d: JumpIf target %d out of range", i, instr.Label.ID)
			}
		}
	}
}

func TestConstKeyStableForIdenticalSpan(t *testing.T) {
	a := span.NewFile("a.sdg", 3, 7)
	b := span.NewFile("a.sdg", 3, 7)
	if ConstKey(a) != ConstKey(b) {
		t.Fatalf("expected identical spans to hash to the same ConstKey")
	}
	c := span.NewFile("a.sdg", 3, 8)
	if ConstKey(a) == ConstKey(c) {
		t.Fatalf("expected different spans to (almost certainly) hash differently")
	}
}

func TestProgramEncodeRoundTripsWithoutPanicking(t *testing.T) {
	entry := span.NewFile("a.sdg", 0, 1)
	code := Resolve(LowerFunc(constIntNode(1), nil))
	p := NewProgram(entry, map[span.Span][]Instruction{entry: code})
	buf := p.Encode()
	if len(buf) == 0 {
		t.Fatalf("expected non-empty encoded program")
	}
}
