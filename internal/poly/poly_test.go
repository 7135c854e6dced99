package poly

import (
	"testing"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

func TestSimpleTypeOfFoldsNeverAndHolesToVar(t *testing.T) {
	if Of(hir.Never()) != varType {
		t.Fatalf("Never should coarsen to the wildcard Var branch")
	}
	if Of(hir.Var(span.NewFile("a.sdg", 0, 1), false)) != varType {
		t.Fatalf("an unsolved Var should coarsen to the wildcard Var branch")
	}
}

func TestSimpleTypeOfStaticDistinguishesByDefSpan(t *testing.T) {
	intDef := span.NewFile("a.sdg", 0, 3)
	boolDef := span.NewFile("a.sdg", 10, 14)

	if Of(hir.Static(intDef)) == Of(hir.Static(boolDef)) {
		t.Fatalf("two different Static defs must coarsen to different SimpleTypes")
	}
}

// eq(1, 2) dispatch scenario (spec.md §8 scenario 5): one poly, two
// impls (eq_int, eq_tup2), a call with T bound to Int should match
// exactly eq_int.
func TestSolveOneCandidate(t *testing.T) {
	intDef := span.NewFile("prelude.sdg", 0, 3)
	tupleCtor := span.NewFile("prelude.sdg", 50, 55)
	tGeneric := span.NewFile("poly.sdg", 0, 1)

	s := NewPolySolver()
	eqInt := span.NewFile("impl.sdg", 0, 10)
	eqTup2 := span.NewFile("impl.sdg", 20, 30)

	s.Impls[eqInt] = map[span.Span]hir.Type{tGeneric: hir.Static(intDef)}
	s.Impls[eqTup2] = map[span.Span]hir.Type{tGeneric: hir.Param(hir.Static(tupleCtor), hir.Static(intDef), hir.Static(intDef))}
	s.BuildStateMachine()

	matched := s.Solve(map[span.Span]hir.Type{tGeneric: hir.Static(intDef)})
	if len(matched) != 1 || matched[0] != eqInt {
		t.Fatalf("expected exactly [eqInt], got %+v", matched)
	}
}

// Ambiguous poly scenario (spec.md §8 scenario 6): adding a fully generic
// `eq_any<A>(_: A, _: A) -> Bool` impl means every call matches both it
// and the concrete one.
func TestSolveMultiCandidatesWhenGenericImplOverlaps(t *testing.T) {
	intDef := span.NewFile("prelude.sdg", 0, 3)
	tGeneric := span.NewFile("poly.sdg", 0, 1)
	aGeneric := span.NewFile("any_impl.sdg", 0, 1)

	s := NewPolySolver()
	eqInt := span.NewFile("impl.sdg", 0, 10)
	eqAny := span.NewFile("impl.sdg", 40, 50)

	s.Impls[eqInt] = map[span.Span]hir.Type{tGeneric: hir.Static(intDef)}
	s.Impls[eqAny] = map[span.Span]hir.Type{tGeneric: hir.Var(aGeneric, false)}
	s.BuildStateMachine()

	matched := s.Solve(map[span.Span]hir.Type{tGeneric: hir.Static(intDef)})
	if len(matched) != 2 {
		t.Fatalf("expected both impls to match an Int call, got %+v", matched)
	}

	result := TrySolvePoly(
		map[span.Span]hir.Poly{tGeneric: {NameSpan: tGeneric, Impls: []span.Span{eqInt, eqAny}}},
		map[span.Span]*PolySolver{tGeneric: s},
		tGeneric,
		map[span.Span]hir.Type{tGeneric: hir.Static(intDef)},
	)
	if result.Kind != MultiCandidates || len(result.Candidates) != 2 {
		t.Fatalf("expected MultiCandidates with 2 entries, got %+v", result)
	}
	d := result.DiagnosticFor(span.NewFile("a.sdg", 0, 1))
	if d.Index != ErrCannotSpecializePolyGeneric {
		t.Fatalf("expected CannotSpecializePolyGeneric diagnostic, got %+v", d)
	}
}

func TestTrySolvePolyNoCandidatesFallsBackToDefaultImpl(t *testing.T) {
	boolDef := span.NewFile("prelude.sdg", 60, 64)
	tGeneric := span.NewFile("poly.sdg", 0, 1)
	intDef := span.NewFile("prelude.sdg", 0, 3)

	s := NewPolySolver()
	eqInt := span.NewFile("impl.sdg", 0, 10)
	s.Impls[eqInt] = map[span.Span]hir.Type{tGeneric: hir.Static(intDef)}
	s.BuildStateMachine()

	polys := map[span.Span]hir.Poly{tGeneric: {NameSpan: tGeneric, HasDefaultImpl: true, Impls: []span.Span{eqInt}}}
	solvers := map[span.Span]*PolySolver{tGeneric: s}

	result := TrySolvePoly(polys, solvers, tGeneric, map[span.Span]hir.Type{tGeneric: hir.Static(boolDef)})
	if result.Kind != DefaultImpl {
		t.Fatalf("expected DefaultImpl fallback, got %+v", result)
	}
}

func TestTrySolvePolyNotPoly(t *testing.T) {
	result := TrySolvePoly(nil, nil, span.NewFile("a.sdg", 0, 1), nil)
	if result.Kind != NotPoly {
		t.Fatalf("expected NotPoly for an unknown def span, got %+v", result)
	}
}

func TestSolveFnTypesRecordsSubstitution(t *testing.T) {
	intDef := span.NewFile("prelude.sdg", 0, 3)
	tGeneric := span.NewFile("poly.sdg", 0, 1)
	polySpan := span.NewFile("poly.sdg", 10, 20)
	implSpan := span.NewFile("impl.sdg", 0, 10)

	polyType := FuncType{Params: []hir.Type{hir.Var(tGeneric, false)}, Return: hir.Static(intDef)}
	implType := FuncType{Params: []hir.Type{hir.Static(intDef)}, Return: hir.Static(intDef)}

	subst, diags := solveFnTypes(polyType, implType, []span.Span{tGeneric}, polySpan, implSpan)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	got, ok := subst[tGeneric]
	if !ok || got.Tag != hir.TStatic || got.DefSpan != intDef {
		t.Fatalf("expected T bound to Int, got %+v", subst)
	}
}

func TestSolveFnTypesParamCountMismatch(t *testing.T) {
	polyType := FuncType{Params: []hir.Type{hir.Unit()}, Return: hir.Unit()}
	implType := FuncType{Params: []hir.Type{hir.Unit(), hir.Unit()}, Return: hir.Unit()}

	_, diags := solveFnTypes(polyType, implType, nil, span.NewFile("a.sdg", 0, 1), span.NewFile("b.sdg", 0, 1))
	if len(diags) != 1 || diags[0].Index != ErrPolyImplParamCountMismatch {
		t.Fatalf("expected PolyImplDifferentNumberOfParams, got %+v", diags)
	}
}
