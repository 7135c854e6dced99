package poly

import "github.com/sodigy-lang/sodigyc/internal/hir"
import "github.com/sodigy-lang/sodigyc/internal/span"

// stateMachineOrLeaves is either a nested StateMachine (more generic
// parameters left to discriminate on) or a terminal candidate list.
// Machine != nil selects the nested case; otherwise Leaves is the
// candidate list, which may be empty (nil).
type stateMachineOrLeaves struct {
	Machine *StateMachine
	Leaves  []span.Span
}

func leaves(impls []span.Span) stateMachineOrLeaves { return stateMachineOrLeaves{Leaves: impls} }
func machine(m *StateMachine) stateMachineOrLeaves   { return stateMachineOrLeaves{Machine: m} }

func (n stateMachineOrLeaves) candidates(generics map[span.Span]hir.Type) []span.Span {
	if n.Machine != nil {
		return n.Machine.GetCandidates(generics)
	}
	return n.Leaves
}

// StateMachine discriminates on one generic parameter (GenericParam) at a
// time, branching by the SimpleType of whatever concrete type a call site
// bound that parameter to. Default is the Var branch, also used whenever
// a concrete branch has no entry at all (spec.md §4.4 "Var acting as a
// wildcard branch").
type StateMachine struct {
	GenericParam span.Span
	branches     map[SimpleType]stateMachineOrLeaves
	def          stateMachineOrLeaves
}

// GetCandidates walks the tree using the concrete types a call site bound
// its generics to, returning the (possibly over-approximate) set of impls
// that might apply.
func (s *StateMachine) GetCandidates(generics map[span.Span]hir.Type) []span.Span {
	t, ok := generics[s.GenericParam]
	if !ok {
		return s.def.candidates(generics)
	}
	key := Of(t)
	if n, ok := s.branches[key]; ok {
		return n.candidates(generics)
	}
	return s.def.candidates(generics)
}

// buildStateMachine turns the per-impl constraint sets (implSpan ->
// genericParamSpan -> concrete Type) into a StateMachine, picking at each
// level the generic parameter with the most distinct SimpleType branches
// first (same heuristic as original_source: `sort_by_key(types_count)`,
// take the last).
func buildStateMachine(implsByGenerics map[span.Span]map[SimpleType][]span.Span, impls []span.Span) *StateMachine {
	// Filter each generic's type->impls map down to impls that are still
	// live candidates at this level, and drop now-empty entries.
	for gen, byType := range implsByGenerics {
		for st, implList := range byType {
			filtered := filterLive(implList, impls)
			if len(filtered) == 0 {
				delete(byType, st)
			} else {
				byType[st] = filtered
			}
		}
		implsByGenerics[gen] = byType
	}

	// Pick the generic parameter with the most branches; ties break on
	// span identity for determinism (map iteration order is not stable).
	var bestGen span.Span
	bestCount := -1
	haveBest := false
	for gen, byType := range implsByGenerics {
		count := len(byType)
		if count > bestCount || (count == bestCount && haveBest && spanLess(gen, bestGen)) {
			bestGen = gen
			bestCount = count
			haveBest = true
		}
	}
	if !haveBest {
		return &StateMachine{branches: map[SimpleType]stateMachineOrLeaves{}, def: leaves(nil)}
	}

	byType := implsByGenerics[bestGen]
	rest := make(map[span.Span]map[SimpleType][]span.Span, len(implsByGenerics)-1)
	for gen, bt := range implsByGenerics {
		if gen != bestGen {
			rest[gen] = bt
		}
	}

	defaultImpls := append([]span.Span(nil), byType[varType]...)

	branches := map[SimpleType]stateMachineOrLeaves{}
	for st, implList := range byType {
		if st == varType {
			continue
		}
		combined := append(append([]span.Span(nil), implList...), defaultImpls...)
		branches[st] = nodeFor(combined, rest)
	}

	return &StateMachine{
		GenericParam: bestGen,
		branches:     branches,
		def:          nodeFor(defaultImpls, rest),
	}
}

func nodeFor(impls []span.Span, rest map[span.Span]map[SimpleType][]span.Span) stateMachineOrLeaves {
	if len(impls) < 2 || len(rest) == 0 {
		return leaves(impls)
	}
	restCopy := cloneImplsByGenerics(rest)
	return machine(buildStateMachine(restCopy, impls))
}

func cloneImplsByGenerics(m map[span.Span]map[SimpleType][]span.Span) map[span.Span]map[SimpleType][]span.Span {
	out := make(map[span.Span]map[SimpleType][]span.Span, len(m))
	for gen, byType := range m {
		inner := make(map[SimpleType][]span.Span, len(byType))
		for st, impls := range byType {
			inner[st] = append([]span.Span(nil), impls...)
		}
		out[gen] = inner
	}
	return out
}

func filterLive(implList, live []span.Span) []span.Span {
	out := make([]span.Span, 0, len(implList))
	for _, i := range implList {
		for _, l := range live {
			if i == l {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// spanLess gives a deterministic (if arbitrary) total order over spans,
// used only to break ties when picking which generic parameter to branch
// on first so that StateMachine construction is reproducible.
func spanLess(a, b span.Span) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.End < b.End
}
