package mir

import (
	"strings"
	"testing"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

func numPat(s span.Span, v int64) *hir.Pattern {
	return &hir.Pattern{Tag: hir.PNumber, Span: s, NumberValue: v}
}

func bindPat(s span.Span, name string) *hir.Pattern {
	return &hir.Pattern{Tag: hir.PBinding, Span: s, NameBind: name}
}

func tuplePat(s span.Span, elems ...*hir.Pattern) *hir.Pattern {
	return &hir.Pattern{Tag: hir.PTuple, Span: s, Elems: elems}
}

// collectCacheLets walks a lowered node collecting every synthesized
// `curr_*` field-cache let, to check resolveField only ever caches a given
// field path once.
func collectCacheLets(n *Node, out *[]string) {
	if n == nil {
		return
	}
	for _, l := range n.Lets {
		if strings.HasPrefix(l.Name, "curr_") {
			*out = append(*out, l.Name)
		}
		collectCacheLets(l.Value, out)
	}
	collectCacheLets(n.Cond, out)
	collectCacheLets(n.Then, out)
	collectCacheLets(n.Else, out)
	collectCacheLets(n.Value, out)
	collectCacheLets(n.Base, out)
	for _, a := range n.Args {
		collectCacheLets(a, out)
	}
}

// `match n { 1 => 10, _ => 20 }` must expand to a single If on an
// IntegerEq intrinsic call, falling through to the wildcard body.
func TestLowerMatchSimpleLiteralExpandsToIf(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	e := &hir.Expr{
		Tag: hir.EMatch, Span: s,
		Scrutinee: ident(s, "n"),
		Arms: []hir.MatchArm{
			{Pattern: numPat(s, 1), Body: constInt(s, 10)},
			{Pattern: hir.Wildcard(s), Body: constInt(s, 20)},
		},
	}
	var diags []span.Diagnostic
	n := Lower(e, true, &diags)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	// The scrutinee is "n" directly (no field path), so no curr_* cache let
	// should be needed at all here.
	var cacheLets []string
	collectCacheLets(n, &cacheLets)
	if len(cacheLets) != 0 {
		t.Fatalf("expected no field-cache lets for a bare-scrutinee match, got %v", cacheLets)
	}

	// Find the IntegerEq call somewhere in the tree.
	if !containsIntrinsic(n, "IntegerEq") {
		t.Fatalf("expected an IntegerEq intrinsic call in the expansion, got %+v", n)
	}
}

func containsIntrinsic(n *Node, op string) bool {
	if n == nil {
		return false
	}
	if n.Tag == NCall && n.IsIntrinsic && n.IntrinsicOp == op {
		return true
	}
	for _, a := range n.Args {
		if containsIntrinsic(a, op) {
			return true
		}
	}
	return containsIntrinsic(n.Cond, op) || containsIntrinsic(n.Then, op) ||
		containsIntrinsic(n.Else, op) || containsIntrinsic(n.Value, op) || containsIntrinsic(n.Base, op)
}

// `match pair { (1, y) => y, _ => 0 }` exercises field-path caching: the
// tuple discrimination reads field "_0", and the matched arm's own
// binding for "y" reads field "_1" - each exactly once.
func TestLowerMatchTupleCachesFieldReadsOnce(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	e := &hir.Expr{
		Tag: hir.EMatch, Span: s,
		Scrutinee: ident(s, "pair"),
		Arms: []hir.MatchArm{
			{Pattern: tuplePat(s, numPat(s, 1), bindPat(s, "y")), Body: ident(s, "y")},
			{Pattern: hir.Wildcard(s), Body: constInt(s, 0)},
		},
	}
	var diags []span.Diagnostic
	n := Lower(e, true, &diags)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	var cacheLets []string
	collectCacheLets(n, &cacheLets)
	seen := map[string]int{}
	for _, name := range cacheLets {
		seen[name]++
	}
	for name, count := range seen {
		if count != 1 {
			t.Fatalf("expected field %q to be cached exactly once, got %d", name, count)
		}
	}
	if seen["curr__1"] == 0 {
		t.Fatalf("expected a cached read of tuple field _1 for the y binding, got %v", seen)
	}
}

// A guarded arm must expand into its own If whose condition is the
// lowered guard expression, tried before the fallback arm.
func TestLowerMatchGuardedArmBuildsIfOnGuard(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	guard := ident(s, "cond")
	e := &hir.Expr{
		Tag: hir.EMatch, Span: s,
		Scrutinee: ident(s, "n"),
		Arms: []hir.MatchArm{
			{Pattern: hir.Wildcard(s), Guard: guard, Body: constInt(s, 1)},
			{Pattern: hir.Wildcard(s), Body: constInt(s, 2)},
		},
	}
	var diags []span.Diagnostic
	n := Lower(e, true, &diags)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	top := n
	if top.Tag == NBlock {
		top = top.Value
	}
	if top.Tag != NIf {
		t.Fatalf("expected a guard If at the top of the expansion, got %+v", top)
	}
	if top.Cond == nil || top.Cond.Name != "cond" {
		t.Fatalf("expected the guard expression as the If condition, got %+v", top.Cond)
	}
}

// A range pattern `1..=10` must expand into a conjunction of endpoint
// intrinsic checks (IntegerGt/IntegerLt, inclusively ORed with IntegerEq).
func TestLowerMatchRangeBuildsBoundedCondition(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	rp := &hir.Pattern{Tag: hir.PRange, Span: s, Inclusive: true, From: numPat(s, 1), To: numPat(s, 10)}
	e := &hir.Expr{
		Tag: hir.EMatch, Span: s,
		Scrutinee: ident(s, "n"),
		Arms: []hir.MatchArm{
			{Pattern: rp, Body: constInt(s, 1)},
			{Pattern: hir.Wildcard(s), Body: constInt(s, 0)},
		},
	}
	var diags []span.Diagnostic
	n := Lower(e, true, &diags)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if !containsIntrinsic(n, "IntegerGt") || !containsIntrinsic(n, "IntegerLt") {
		t.Fatalf("expected bounded range condition to use IntegerGt/IntegerLt, got %+v", n)
	}
}

// Non-exhaustive match: expandNode/expandBranches must still return a
// total (non-nil) tree even when match.Build reports a diagnostic, so
// downstream lowering never has to special-case a missing tree.
func TestLowerMatchNonExhaustiveStillReturnsNode(t *testing.T) {
	s := span.NewFile("a.sdg", 0, 1)
	matchSpan := span.NewFile("a.sdg", 0, 10)
	e := &hir.Expr{
		Tag: hir.EMatch, Span: matchSpan,
		Scrutinee: ident(s, "n"),
		Arms: []hir.MatchArm{
			{Pattern: numPat(s, 1), Body: constInt(s, 1)},
		},
	}
	var diags []span.Diagnostic
	n := Lower(e, true, &diags)
	if n == nil {
		t.Fatalf("expected a non-nil node even for a non-exhaustive match")
	}
	if len(diags) == 0 {
		t.Fatalf("expected a NonExhaustiveArms diagnostic to propagate")
	}
}
