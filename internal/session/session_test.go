package session

import (
	"testing"

	"github.com/sodigy-lang/sodigyc/internal/bytecode"
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

func intT() hir.Type  { return hir.Static(span.NewPolyName("Int")) }
func boolT() hir.Type { return hir.Static(span.NewPolyName("Bool")) }

func ident(name string, s span.Span) *hir.Expr {
	return &hir.Expr{Tag: hir.EIdent, Name: name, Span: s}
}

// spec.md §8 scenario 1: a pure function `add(a, b) = a + b` runs clean
// through every stage and its body lowers to exactly one IntegerAdd
// intrinsic ending in Return, with no PushCallStack pair (tail position).
func TestArithmeticFunctionCompilesEndToEnd(t *testing.T) {
	aSpan := span.NewFile("s.sdg", 4, 5)
	bSpan := span.NewFile("s.sdg", 10, 11)
	bodySpan := span.NewFile("s.sdg", 16, 21)

	f := &hir.Func{
		NameSpan: span.NewFile("s.sdg", 0, 3),
		Name:     "add",
		Purity:   hir.PurityPure,
		Params: []hir.Param{
			{Name: "a", DefSpan: aSpan, Type: intT()},
			{Name: "b", DefSpan: bSpan, Type: intT()},
		},
		Return: intT(),
		Body: &hir.Expr{
			Tag: hir.EInfixOp, Span: bodySpan, Op: "+",
			Left:  ident("a", span.NewFile("s.sdg", 16, 17)),
			Right: ident("b", span.NewFile("s.sdg", 20, 21)),
		},
	}

	s := New()
	s.RegisterFunc(f)
	s.Run()

	if len(s.Errors) != 0 {
		t.Fatalf("expected no errors, got %+v", s.Errors)
	}
	code, ok := s.Bytecode[f.NameSpan]
	if !ok {
		t.Fatalf("expected bytecode for %q", f.Name)
	}

	intrinsics, pushCallStack, returns := 0, 0, 0
	for _, instr := range code {
		switch instr.Op {
		case bytecode.OpIntrinsic:
			intrinsics++
			if instr.IntrinsicOp != "IntegerAdd" {
				t.Fatalf("expected IntegerAdd, got %q", instr.IntrinsicOp)
			}
		case bytecode.OpPushCallStack, bytecode.OpPopCallStack:
			pushCallStack++
		case bytecode.OpReturn:
			returns++
		}
	}
	if intrinsics != 1 {
		t.Fatalf("expected exactly one Intrinsic op, got %d", intrinsics)
	}
	if pushCallStack != 0 {
		t.Fatalf("expected no call-stack push/pop around a tail intrinsic call, got %d", pushCallStack)
	}
	if returns != 1 {
		t.Fatalf("expected exactly one Return, got %d", returns)
	}
}

// spec.md §8 scenario 2: `check(a) = if a == 1 { true } else { false }`
// lowers the equality branch to an IntegerEq intrinsic feeding a JumpIf.
func TestIntegerEqualityBranchCompilesEndToEnd(t *testing.T) {
	aSpan := span.NewFile("s.sdg", 4, 5)

	f := &hir.Func{
		NameSpan: span.NewFile("s.sdg", 0, 5),
		Name:     "check",
		Purity:   hir.PurityPure,
		Params:   []hir.Param{{Name: "a", DefSpan: aSpan, Type: intT()}},
		Return:   boolT(),
		Body: &hir.Expr{
			Tag: hir.EIf, Span: span.NewFile("s.sdg", 10, 40),
			Cond: &hir.Expr{
				Tag: hir.EInfixOp, Span: span.NewFile("s.sdg", 13, 19), Op: "==",
				Left:  ident("a", span.NewFile("s.sdg", 13, 14)),
				Right: &hir.Expr{Tag: hir.EConstantInt, Span: span.NewFile("s.sdg", 18, 19), IntValue: 1},
			},
			Then: &hir.Expr{Tag: hir.EConstantBool, Span: span.NewFile("s.sdg", 22, 26), BoolValue: true},
			Else: &hir.Expr{Tag: hir.EConstantBool, Span: span.NewFile("s.sdg", 35, 40), BoolValue: false},
		},
	}

	s := New()
	s.RegisterFunc(f)
	s.Run()

	if len(s.Errors) != 0 {
		t.Fatalf("expected no errors, got %+v", s.Errors)
	}
	code, ok := s.Bytecode[f.NameSpan]
	if !ok {
		t.Fatalf("expected bytecode for %q", f.Name)
	}

	eqIntrinsics, jumpIfs := 0, 0
	for _, instr := range code {
		switch instr.Op {
		case bytecode.OpIntrinsic:
			if instr.IntrinsicOp == "IntegerEq" {
				eqIntrinsics++
			}
		case bytecode.OpJumpIf:
			jumpIfs++
		}
	}
	if eqIntrinsics != 1 {
		t.Fatalf("expected exactly one IntegerEq intrinsic, got %d", eqIntrinsics)
	}
	if jumpIfs != 1 {
		t.Fatalf("expected exactly one JumpIf, got %d", jumpIfs)
	}
}

// spec.md §8 scenario 3: a non-exhaustive match on an Int reports
// NonExhaustiveArms at the match span and emits no bytecode for that
// function.
func TestNonExhaustiveMatchReportsDiagnosticAndEmitsNoBytecode(t *testing.T) {
	matchSpan := span.NewFile("s.sdg", 10, 50)
	xSpan := span.NewFile("s.sdg", 4, 5)

	f := &hir.Func{
		NameSpan: span.NewFile("s.sdg", 0, 5),
		Name:     "f",
		Purity:   hir.PurityPure,
		Params:   []hir.Param{{Name: "x", DefSpan: xSpan, Type: intT()}},
		Return:   intT(),
		Body: &hir.Expr{
			Tag: hir.EMatch, Span: matchSpan,
			Scrutinee: ident("x", xSpan),
			Arms: []hir.MatchArm{
				{Pattern: &hir.Pattern{Tag: hir.PNumber, NumberValue: 0}, Body: &hir.Expr{Tag: hir.EConstantInt, IntValue: 0}},
				{Pattern: &hir.Pattern{Tag: hir.PNumber, NumberValue: 1}, Body: &hir.Expr{Tag: hir.EConstantInt, IntValue: 1}},
			},
		},
	}

	s := New()
	s.RegisterFunc(f)
	s.Run()

	found := false
	for _, d := range s.Errors {
		if d.Kind == "NonExhaustiveArms" {
			found = true
			if d.Primary != matchSpan {
				t.Fatalf("expected NonExhaustiveArms at the match span, got %+v", d.Primary)
			}
		}
	}
	if !found {
		t.Fatalf("expected a NonExhaustiveArms diagnostic, got %+v", s.Errors)
	}
	if _, ok := s.Bytecode[f.NameSpan]; ok {
		t.Fatalf("expected no bytecode emitted for a function with a reported error")
	}
}

func TestLoggerHookFiresDuringRun(t *testing.T) {
	f := &hir.Func{
		NameSpan: span.NewFile("s.sdg", 0, 3),
		Name:     "add",
		Purity:   hir.PurityPure,
		Params: []hir.Param{
			{Name: "a", DefSpan: span.NewFile("s.sdg", 4, 5), Type: intT()},
			{Name: "b", DefSpan: span.NewFile("s.sdg", 10, 11), Type: intT()},
		},
		Return: intT(),
		Body: &hir.Expr{
			Tag: hir.EInfixOp, Span: span.NewFile("s.sdg", 16, 21), Op: "+",
			Left:  ident("a", span.NewFile("s.sdg", 16, 17)),
			Right: ident("b", span.NewFile("s.sdg", 20, 21)),
		},
	}
	s := New()
	var lines int
	s.Logger = func(format string, args ...any) { lines++ }
	s.RegisterFunc(f)
	s.Run()

	if lines == 0 {
		t.Fatalf("expected Logger to be called at least once")
	}
}

func TestDumpYAMLProducesNonEmptyOutput(t *testing.T) {
	f := &hir.Func{
		NameSpan: span.NewFile("s.sdg", 0, 3),
		Name:     "add",
		Purity:   hir.PurityPure,
		Params: []hir.Param{
			{Name: "a", DefSpan: span.NewFile("s.sdg", 4, 5), Type: intT()},
			{Name: "b", DefSpan: span.NewFile("s.sdg", 10, 11), Type: intT()},
		},
		Return: intT(),
		Body: &hir.Expr{
			Tag: hir.EInfixOp, Span: span.NewFile("s.sdg", 16, 21), Op: "+",
			Left:  ident("a", span.NewFile("s.sdg", 16, 17)),
			Right: ident("b", span.NewFile("s.sdg", 20, 21)),
		},
	}
	s := New()
	s.RegisterFunc(f)
	s.Run()

	out, err := s.DumpYAML()
	if err != nil {
		t.Fatalf("DumpYAML returned an error: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty YAML output")
	}
}
