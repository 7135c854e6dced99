package types

import (
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// varKey identifies an inference hole the way spec.md §4.3 does: "type
// variables are identified by their def_span", disambiguated further by
// whether the hole stands for a return type (a function's own return
// position is solved independently from a same-span parameter hole in a
// couple of corner cases the teacher's unifier handled with a bool flag).
type varKey struct {
	def      span.Span
	isReturn bool
}

// instKey identifies one per-call-site instantiation of a generic
// parameter: the same GenericDef solved differently at two call sites
// must not be confused with each other (spec.md §4.3 "per call-site
// instantiation").
type instKey struct {
	callSite   span.Span
	genericDef span.Span
}

// Subst accumulates the solutions the solver has committed to so far.
type Subst struct {
	vars      map[varKey]hir.Type
	instances map[instKey]hir.Type
}

func NewSubst() *Subst {
	return &Subst{vars: map[varKey]hir.Type{}, instances: map[instKey]hir.Type{}}
}

func (s *Subst) lookupVar(k varKey) (hir.Type, bool) {
	t, ok := s.vars[k]
	return t, ok
}

func (s *Subst) lookupInstance(k instKey) (hir.Type, bool) {
	t, ok := s.instances[k]
	return t, ok
}

// LookupVar exposes a committed Var solution to callers outside this
// package (e.g. internal/poly reading back which concrete type a poly's
// generic parameter was solved to for one impl).
func (s *Subst) LookupVar(def span.Span, isReturn bool) (hir.Type, bool) {
	return s.lookupVar(varKey{def, isReturn})
}

// Solver runs solve_supertype calls against one accumulating Subst and
// collects every diagnostic it raises along the way.
//
// Grounded on the teacher's internal/typesystem/unify.go (a recursive,
// co-inductive Unify over an interface-typed Type with an explicit Subst
// map) redesigned around hir.Type's closed sum and spec.md §4.3's
// asymmetric solve_supertype (expected, got) contract rather than the
// teacher's symmetric unify(a, b).
type Solver struct {
	Subst       *Subst
	diagnostics []span.Diagnostic
}

func NewSolver() *Solver {
	return &Solver{Subst: NewSubst()}
}

func (s *Solver) Diagnostics() []span.Diagnostic { return s.diagnostics }

func (s *Solver) report(d span.Diagnostic) { s.diagnostics = append(s.diagnostics, d) }

// SolveSupertype checks that got is acceptable wherever expected is
// required, committing any inference holes it resolves along the way
// (spec.md §4.3). use is the span blamed in diagnostics; ctx annotates
// why this particular check is happening.
func (s *Solver) SolveSupertype(expected, got hir.Type, ctx ErrorContext, use span.Span) bool {
	// Never is bottom: it is a valid substitute for anything (spec.md
	// §4.3 "Never ≤ T for all T" — the typical case is a `panic`/`exit`
	// branch of a match or if).
	if got.Tag == hir.TNever {
		return true
	}

	switch expected.Tag {
	case hir.TVarTag:
		return s.solveVar(varKey{expected.DefSpan, expected.IsReturn}, got, use)
	case hir.TGenericInstance:
		return s.solveInstance(instKey{expected.CallSite, expected.GenericDef}, got, use)
	}

	// expected is concrete; if got is a hole, solve it against expected
	// instead (solve_supertype is asymmetric but holes can appear on
	// either side depending on inference order).
	switch got.Tag {
	case hir.TVarTag:
		return s.solveVar(varKey{got.DefSpan, got.IsReturn}, expected, use)
	case hir.TGenericInstance:
		return s.solveInstance(instKey{got.CallSite, got.GenericDef}, expected, use)
	}

	if expected.Tag != got.Tag {
		s.report(errUnexpectedType(expected.String(), got.String(), ctx, use))
		return false
	}

	switch expected.Tag {
	case hir.TStatic, hir.TGenericDef:
		if expected.DefSpan != got.DefSpan {
			s.report(errUnexpectedType(expected.String(), got.String(), ctx, use))
			return false
		}
		return true
	case hir.TUnit:
		return true
	case hir.TParam:
		ok := true
		if expected.Ctor != nil && got.Ctor != nil {
			if !s.SolveSupertype(*expected.Ctor, *got.Ctor, ctx, use) {
				ok = false
			}
		}
		if len(expected.Args) != len(got.Args) {
			s.report(errUnexpectedType(expected.String(), got.String(), ctx, use))
			return false
		}
		for i := range expected.Args {
			if !s.SolveSupertype(expected.Args[i], got.Args[i], ctx, use) {
				ok = false
			}
		}
		return ok
	case hir.TFunc:
		return s.solveFunc(expected, got, ctx, use)
	default:
		return true
	}
}

// solveFunc checks a function's supertype relation: parameters are
// contravariant (the expected function must accept at least as much as
// got demands, so we check got's params against expected's in the
// reverse direction), the return type is covariant, and purity must
// match via hir.Purity.Matches (spec.md §4.3).
func (s *Solver) solveFunc(expected, got hir.Type, ctx ErrorContext, use span.Span) bool {
	ok := true
	if !expected.FuncPur.Matches(got.FuncPur) {
		s.report(errUnexpectedPurity(expected.FuncPur.String(), got.FuncPur.String(), use))
		ok = false
	}
	if len(expected.Params) != len(got.Params) {
		s.report(errWrongNumberOfArguments(len(expected.Params), len(got.Params), use))
		return false
	}
	for i := range expected.Params {
		// contravariant: swap expected/got for parameters.
		if !s.SolveSupertype(got.Params[i], expected.Params[i], ctx, use) {
			ok = false
		}
	}
	if expected.Return != nil && got.Return != nil {
		if !s.SolveSupertype(*expected.Return, *got.Return, ctx, use) {
			ok = false
		}
	}
	return ok
}

func (s *Solver) solveVar(k varKey, got hir.Type, use span.Span) bool {
	if existing, ok := s.Subst.lookupVar(k); ok {
		if typesEqual(existing, got) {
			return true
		}
		s.report(errUnexpectedType(existing.String(), got.String(), ctxInferedAgain(k.def), use))
		return false
	}
	s.Subst.vars[k] = got
	return true
}

func (s *Solver) solveInstance(k instKey, got hir.Type, use span.Span) bool {
	if existing, ok := s.Subst.lookupInstance(k); ok {
		if typesEqual(existing, got) {
			return true
		}
		s.report(errUnexpectedType(existing.String(), got.String(), ctxInferedAgain(k.callSite), use))
		return false
	}
	s.Subst.instances[k] = got
	return true
}

// typesEqual compares two already-solved types structurally. It does not
// itself attempt unification: both sides are expected to be fully
// concrete by the time two solutions are compared for equality.
func typesEqual(a, b hir.Type) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case hir.TStatic, hir.TGenericDef:
		return a.DefSpan == b.DefSpan
	case hir.TUnit, hir.TNever:
		return true
	case hir.TParam:
		if (a.Ctor == nil) != (b.Ctor == nil) {
			return false
		}
		if a.Ctor != nil && !typesEqual(*a.Ctor, *b.Ctor) {
			return false
		}
		if len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !typesEqual(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case hir.TFunc:
		if a.FuncPur != b.FuncPur || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !typesEqual(a.Params[i], b.Params[i]) {
				return false
			}
		}
		if (a.Return == nil) != (b.Return == nil) {
			return false
		}
		return a.Return == nil || typesEqual(*a.Return, *b.Return)
	case hir.TVarTag:
		return a.DefSpan == b.DefSpan && a.IsReturn == b.IsReturn
	case hir.TGenericInstance:
		return a.CallSite == b.CallSite && a.GenericDef == b.GenericDef
	default:
		return false
	}
}

// Resolve walks t, replacing every Var/GenericInstance hole with its
// committed solution, as many times as it takes to reach a fixed point
// (a solved Var may itself mention another Var solved later). Returns
// the resolved type and whether it is now fully concrete.
func (s *Solver) Resolve(t hir.Type) (hir.Type, bool) {
	const maxDepth = 64
	complete := true
	for depth := 0; depth < maxDepth; depth++ {
		next, changed := s.resolveOnce(t)
		t = next
		if !changed {
			break
		}
	}
	if v := t.FindVar(); !v.IsNone() {
		complete = false
	}
	return t, complete
}

func (s *Solver) resolveOnce(t hir.Type) (hir.Type, bool) {
	switch t.Tag {
	case hir.TVarTag:
		if sol, ok := s.Subst.lookupVar(varKey{t.DefSpan, t.IsReturn}); ok {
			return sol, true
		}
		return t, false
	case hir.TGenericInstance:
		if sol, ok := s.Subst.lookupInstance(instKey{t.CallSite, t.GenericDef}); ok {
			return sol, true
		}
		return t, false
	case hir.TParam:
		changed := false
		out := t
		if t.Ctor != nil {
			if c, ch := s.resolveOnce(*t.Ctor); ch {
				out.Ctor = &c
				changed = true
			}
		}
		if len(t.Args) > 0 {
			args := make([]hir.Type, len(t.Args))
			for i, a := range t.Args {
				na, ch := s.resolveOnce(a)
				args[i] = na
				changed = changed || ch
			}
			out.Args = args
		}
		return out, changed
	case hir.TFunc:
		changed := false
		out := t
		if len(t.Params) > 0 {
			params := make([]hir.Type, len(t.Params))
			for i, p := range t.Params {
				np, ch := s.resolveOnce(p)
				params[i] = np
				changed = changed || ch
			}
			out.Params = params
		}
		if t.Return != nil {
			if r, ch := s.resolveOnce(*t.Return); ch {
				out.Return = &r
				changed = true
			}
		}
		return out, changed
	default:
		return t, false
	}
}
