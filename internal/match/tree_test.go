package match

import (
	"testing"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

func numPat(s span.Span, v int64) *hir.Pattern {
	return &hir.Pattern{Tag: hir.PNumber, Span: s, NumberValue: v}
}

func rangePat(s span.Span, from, to int64, inclusive bool) *hir.Pattern {
	return &hir.Pattern{
		Tag: hir.PRange, Span: s, Inclusive: inclusive,
		From: numPat(s, from), To: numPat(s, to),
	}
}

func tuplePat(s span.Span, elems ...*hir.Pattern) *hir.Pattern {
	return &hir.Pattern{Tag: hir.PTuple, Span: s, Elems: elems}
}

// `match n { _ => 0 }` - a single wildcard arm is trivially exhaustive
// and resolves to a single leaf.
func TestBuildWildcardOnlyIsExhaustiveLeaf(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	arms := []Arm{{ID: 0, Pat: hir.Wildcard(s)}}

	node, diags := Build(arms, s)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if node == nil || !node.IsLeaf || node.Matched != 0 {
		t.Fatalf("expected a single leaf matching arm 0, got %+v", node)
	}
}

// `match n { 1 => ..., _ => ... }` without a literal 0 arm is still
// exhaustive thanks to the trailing wildcard.
func TestBuildLiteralThenWildcardIsExhaustive(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	arms := []Arm{
		{ID: 0, Pat: numPat(s, 1)},
		{ID: 1, Pat: hir.Wildcard(s)},
	}

	node, diags := Build(arms, s)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if node == nil || node.IsLeaf {
		t.Fatalf("expected an interior range branch, got %+v", node)
	}
	if len(node.Branches) != 2 {
		t.Fatalf("expected one CRange branch plus one CWildcard default, got %d", len(node.Branches))
	}
}

// spec.md §8 scenario 3: only a literal arm, no wildcard or full range
// coverage - NonExhaustiveArms must fire.
func TestBuildLiteralOnlyIsNonExhaustive(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	matchSpan := span.NewFile("a.sdg", 0, 10)
	arms := []Arm{{ID: 0, Pat: numPat(s, 1)}}

	_, diags := Build(arms, matchSpan)
	found := false
	for _, d := range diags {
		if d.Index == ErrNonExhaustiveArms {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected NonExhaustiveArms, got %+v", diags)
	}
}

// A literal arm that an earlier wildcard already fully covers can never
// be reached.
func TestBuildUnreachableArmAfterWildcard(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	litSpan := span.NewFile("a.sdg", 5, 6)
	arms := []Arm{
		{ID: 0, Pat: hir.Wildcard(s)},
		{ID: 1, Pat: numPat(litSpan, 1)},
	}

	_, diags := Build(arms, s)
	found := false
	for _, d := range diags {
		if d.Index == WarnUnreachableMatchArm {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UnreachableMatchArm warning, got %+v", diags)
	}
}

// `(1, _) => a`, `(_, 2) => b`, `_ => c` - tuple arity discrimination
// followed by per-element range branching.
func TestBuildTupleDiscriminatesElementwise(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	arms := []Arm{
		{ID: 0, Pat: tuplePat(s, numPat(s, 1), hir.Wildcard(s))},
		{ID: 1, Pat: tuplePat(s, hir.Wildcard(s), numPat(s, 2))},
		{ID: 2, Pat: hir.Wildcard(s)},
	}

	node, diags := Build(arms, s)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if node == nil || node.IsLeaf {
		t.Fatalf("expected an interior tuple branch, got %+v", node)
	}
	if len(node.Branches) != 1 || node.Branches[0].Cond.Tag != CTuple || node.Branches[0].Cond.Arity != 2 {
		t.Fatalf("expected a single CTuple(2) branch, got %+v", node.Branches)
	}
	// Element 0's discriminator lives at field "_0"; whatever it falls
	// through to discriminates element 1 at "_1", a sibling path - not
	// "_0/_1", which would wrongly imply element 1 nests inside element 0.
	elem0 := node.Branches[0].Node
	if len(elem0.Field) != 1 || elem0.Field[0] != "_0" {
		t.Fatalf("expected element 0 branch at field [_0], got %v", elem0.Field)
	}
	for _, b := range elem0.Branches {
		if b.Node != nil && !b.Node.IsLeaf {
			if len(b.Node.Field) != 1 || b.Node.Field[0] != "_1" {
				t.Fatalf("expected element 1 branch at sibling field [_1], got %v", b.Node.Field)
			}
		}
	}
}

// Or-patterns: `1 | 2 => a, _ => b` both alternatives resolve to the same
// arm, so mergeIdenticalArmSets should fold them into one Or branch.
func TestBuildOrPatternMergesIntoOneBranch(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	or := &hir.Pattern{Tag: hir.POr, Span: s, Left: numPat(s, 1), Right: numPat(s, 2)}
	arms := []Arm{
		{ID: 0, Pat: or},
		{ID: 1, Pat: hir.Wildcard(s)},
	}

	node, diags := Build(arms, s)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	rangeBranches := 0
	var orBranch *Branch
	for i := range node.Branches {
		if node.Branches[i].Cond.Tag == CRange || node.Branches[i].Cond.Tag == COr {
			rangeBranches++
			orBranch = &node.Branches[i]
		}
	}
	if rangeBranches != 1 {
		t.Fatalf("expected the two literal alternatives to merge into one branch, got %d", rangeBranches)
	}
	if orBranch.Cond.Tag != COr || len(orBranch.Cond.Or) != 2 {
		t.Fatalf("expected a COr constructor with 2 alternatives, got %+v", orBranch.Cond)
	}
}

// spec.md §4.5 P4: two overlapping range patterns must decompose into
// disjoint pieces rather than one silently shadowing the other.
func TestBuildOverlappingRangesDecompose(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	arms := []Arm{
		{ID: 0, Pat: rangePat(span.NewFile("a.sdg", 1, 2), 0, 10, true)},
		{ID: 1, Pat: rangePat(span.NewFile("a.sdg", 2, 3), 5, 15, true)},
		{ID: 2, Pat: hir.Wildcard(s)},
	}

	node, diags := Build(arms, s)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	// [0,10] and [5,15] split into [0,5), [5,10], (10,15] - three
	// non-wildcard branches, none of them empty.
	nonWildcard := 0
	for _, b := range node.Branches {
		if b.Cond.Tag != CWildcard {
			nonWildcard++
			if b.Cond.R.isEmpty() {
				t.Fatalf("split produced an empty range branch: %+v", b.Cond.R)
			}
		}
	}
	if nonWildcard != 3 {
		t.Fatalf("expected 3 disjoint range branches after decomposition, got %d", nonWildcard)
	}
}

// A guarded arm before the final catch-all must still appear as a nested
// conditional rather than being discarded.
func TestBuildGuardedArmNestsBeforeFallback(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	guard := &hir.Expr{}
	arms := []Arm{
		{ID: 0, Pat: hir.Wildcard(s), Guard: guard},
		{ID: 1, Pat: hir.Wildcard(s)},
	}

	node, diags := Build(arms, s)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if node == nil || node.IsLeaf {
		t.Fatalf("expected a guard-dispatch interior node, got %+v", node)
	}
	if len(node.Branches) != 2 {
		t.Fatalf("expected [guarded arm 0, fallback arm 1], got %+v", node.Branches)
	}
	if node.Branches[0].Node.Matched != 0 || node.Branches[1].Node.Matched != 1 {
		t.Fatalf("expected arm 0 to be tried before arm 1, got %+v", node.Branches)
	}
	if node.Branches[0].Guard != guard {
		t.Fatalf("expected the guarded branch to carry arm 0's guard expression")
	}
	if node.Branches[1].Guard != nil {
		t.Fatalf("the fallback branch must not carry a guard")
	}
}

func TestMergeIdenticalArmSetsLeavesDistinctLeavesAlone(t *testing.T) {
	a := Branch{Cond: Constructor{Tag: CRange, R: point(LitInt, 1)}, Node: &Node{IsLeaf: true, Matched: 0}}
	b := Branch{Cond: Constructor{Tag: CRange, R: point(LitInt, 2)}, Node: &Node{IsLeaf: true, Matched: 1}}

	out := mergeIdenticalArmSets([]Branch{a, b})
	if len(out) != 2 {
		t.Fatalf("expected two distinct leaves to stay separate, got %+v", out)
	}
}
