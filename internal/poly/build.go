package poly

import (
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
	"github.com/sodigy-lang/sodigyc/internal/types"
)

// solveFnTypes checks that implType is a valid specialization of
// polyType (both already rewritten so their own generics are Vars), and
// returns the substitution `{poly generic param -> concrete type}` the
// impl pins down (spec.md §4.4 step 2: "the solved substitution {Gi ↦
// Ti} is recorded").
func solveFnTypes(polyType, implType FuncType, typeVars []span.Span, polySpan, implSpan span.Span) (map[span.Span]hir.Type, []span.Diagnostic) {
	if len(polyType.Params) != len(implType.Params) {
		return nil, []span.Diagnostic{errParamCountMismatch(len(polyType.Params), len(implType.Params), polySpan, implSpan)}
	}

	solver := types.NewSolver()
	var diags []span.Diagnostic

	checkOne := func(i int, want, got hir.Type) {
		before := len(solver.Diagnostics())
		solver.SolveSupertype(want, got, types.Ctx("poly implementation"), implSpan)
		if len(solver.Diagnostics()) > before {
			diags = append(diags, errCannotImplPoly(i, polySpan, implSpan))
		}
	}
	for i := range polyType.Params {
		checkOne(i, polyType.Params[i], implType.Params[i])
	}
	checkOne(ReturnParamIndex, polyType.Return, implType.Return)

	if len(diags) > 0 {
		return nil, diags
	}

	result := map[span.Span]hir.Type{}
	for _, tv := range typeVars {
		if t, ok := solver.Subst.LookupVar(tv, false); ok {
			result[tv] = t
		}
		// A generic param the impl's signature never mentions (e.g. poly
		// has <T, U> but an impl's types don't constrain U) simply has no
		// entry, mirroring original_source's filter_map over type_vars.
	}
	return result, nil
}

// InitPolySolvers builds one PolySolver per poly in polys, given each
// entity's already-inferred FuncType (keyed by name_span, covering both
// the poly itself and every impl it lists). Mirrors
// original_source::init_poly_solvers, minus the Session plumbing: the
// caller (internal/session) is expected to have already resolved types
// for every func before calling this.
func InitPolySolvers(polys map[span.Span]hir.Poly, funcsBySpan map[span.Span]hir.Func, funcTypes map[span.Span]FuncType) (map[span.Span]*PolySolver, []span.Diagnostic) {
	result := map[span.Span]*PolySolver{}
	var diags []span.Diagnostic

	for polySpan, poly := range polys {
		polyDef, ok := funcsBySpan[polySpan]
		if !ok {
			continue
		}
		polyType, ok := funcTypes[polySpan]
		if !ok {
			continue
		}
		if idx, bad := polyType.FindTypeVar(); bad {
			diags = append(diags, errCannotInferPolyParam(idx, polySpan))
			continue
		}

		typeVars := genericParamSpans(polyDef.Generics)
		polyType = polyType.GenericsToTypeVars()

		solver := NewPolySolver()
		solverHadError := false

		for _, implSpan := range poly.Impls {
			implType, ok := funcTypes[implSpan]
			if !ok {
				continue
			}
			if idx, bad := implType.FindTypeVar(); bad {
				diags = append(diags, errCannotInferPolyImpl(idx, polySpan, implSpan))
				solverHadError = true
				continue
			}
			implType = implType.GenericsToTypeVars()

			constraints, implDiags := solveFnTypes(polyType, implType, typeVars, polySpan, implSpan)
			if len(implDiags) > 0 {
				diags = append(diags, implDiags...)
				solverHadError = true
				continue
			}
			solver.Impls[implSpan] = constraints
		}

		if !solverHadError {
			solver.BuildStateMachine()
			result[polySpan] = solver
		}
	}

	return result, diags
}

// ResultKind classifies what TrySolvePoly found for one call site.
type ResultKind int

const (
	NotPoly ResultKind = iota
	DefaultImpl
	NoCandidates
	OneCandidate
	MultiCandidates
)

// SolveResult is the outcome of dispatching one poly call (spec.md §4.4
// step 3 / §8 scenarios 5-6).
type SolveResult struct {
	Kind ResultKind
	// Impl is set for DefaultImpl/OneCandidate.
	Impl span.Span
	// Candidates is set for MultiCandidates.
	Candidates []span.Span
}

// TrySolvePoly dispatches a generic call: def is the poly's name_span the
// call resolved to, generics is the concrete type each of the poly's own
// generic parameters was bound to at this call site.
func TrySolvePoly(polys map[span.Span]hir.Poly, solvers map[span.Span]*PolySolver, def span.Span, generics map[span.Span]hir.Type) SolveResult {
	poly, ok := polys[def]
	if !ok {
		return SolveResult{Kind: NotPoly}
	}
	solver := solvers[def]
	var candidates []span.Span
	if solver != nil {
		candidates = solver.Solve(generics)
	}

	switch len(candidates) {
	case 0:
		if poly.HasDefaultImpl {
			return SolveResult{Kind: DefaultImpl, Impl: def}
		}
		return SolveResult{Kind: NoCandidates}
	case 1:
		return SolveResult{Kind: OneCandidate, Impl: candidates[0]}
	default:
		return SolveResult{Kind: MultiCandidates, Candidates: candidates}
	}
}

// DiagnosticFor renders a MultiCandidates result as the
// CannotSpecializePolyGeneric diagnostic spec.md §8 scenario 6 expects.
// Call this only when Kind == MultiCandidates.
func (r SolveResult) DiagnosticFor(use span.Span) span.Diagnostic {
	return errCannotSpecialize(len(r.Candidates), use)
}
