package poly

import (
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
	"github.com/sodigy-lang/sodigyc/internal/types"
)

// PolySolver holds one poly's build-phase result: for every impl, the
// concrete type each of the poly's generic parameters was solved to
// (spec.md §4.4 step 2), plus an optional discrimination-tree shortcut
// over those constraints.
type PolySolver struct {
	// Impls maps impl def_span -> (poly generic param def_span -> the
	// concrete Type that impl requires for that parameter).
	Impls map[span.Span]map[span.Span]hir.Type

	stateMachine *StateMachine
}

func NewPolySolver() *PolySolver {
	return &PolySolver{Impls: map[span.Span]map[span.Span]hir.Type{}}
}

// BuildStateMachine derives the discrimination tree from Impls. Skipped
// entirely when there are fewer than two impls: a single candidate needs
// no discrimination at all (spec.md: "there's no need for an
// optimization").
func (s *PolySolver) BuildStateMachine() {
	if len(s.Impls) < 2 {
		s.stateMachine = nil
		return
	}

	implsByGenerics := map[span.Span]map[SimpleType][]span.Span{}
	all := make([]span.Span, 0, len(s.Impls))
	for implSpan := range s.Impls {
		all = append(all, implSpan)
	}

	for implSpan, constraints := range s.Impls {
		for genParam, t := range constraints {
			byType, ok := implsByGenerics[genParam]
			if !ok {
				byType = map[SimpleType][]span.Span{}
				implsByGenerics[genParam] = byType
			}
			st := Of(t)
			byType[st] = append(byType[st], implSpan)
		}
	}

	if len(implsByGenerics) == 0 {
		s.stateMachine = nil
		return
	}
	s.stateMachine = buildStateMachine(implsByGenerics, all)
}

// Solve returns every impl whose recorded constraints unify with the
// concrete types a call site bound its generics to (spec.md §4.4 step 3).
// It first narrows candidates via the state machine (a pure optimization:
// false positives are fine, false negatives are not), then re-verifies
// each candidate with a real Solver.
func (s *PolySolver) Solve(generics map[span.Span]hir.Type) []span.Span {
	candidates := make([]span.Span, 0, len(s.Impls))
	if s.stateMachine != nil {
		candidates = append(candidates, s.stateMachine.GetCandidates(generics)...)
	} else {
		for implSpan := range s.Impls {
			candidates = append(candidates, implSpan)
		}
	}

	matched := make([]span.Span, 0, len(candidates))
candidateLoop:
	for _, candidate := range candidates {
		constraints := s.Impls[candidate]
		solver := types.NewSolver()
		for genParam, wantedByCallSite := range generics {
			required, ok := constraints[genParam]
			if !ok {
				// This impl places no constraint on this particular
				// generic parameter (it isn't mentioned in the impl's
				// signature) - nothing to check against it.
				continue
			}
			if !solver.SolveSupertype(required, wantedByCallSite, types.Ctx("poly dispatch"), span.None) {
				continue candidateLoop
			}
		}
		matched = append(matched, candidate)
	}
	return matched
}
