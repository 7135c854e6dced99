package match

import "testing"

func TestSplitDisjointRangesYieldNoOverlap(t *testing.T) {
	a := point(LitInt, 1)
	b := point(LitInt, 2)
	sp := splitToNonOverlappingRanges(a, b)
	if sp.overlap != nil {
		t.Fatalf("disjoint points should not overlap, got %+v", sp)
	}
}

func TestSplitOverlappingClosedRanges(t *testing.T) {
	lo, hi := int64(0), int64(10)
	lo2, hi2 := int64(5), int64(15)
	a := Range{Kind: LitInt, Lhs: &lo, LhsInclusive: true, Rhs: &hi, RhsInclusive: true}
	b := Range{Kind: LitInt, Lhs: &lo2, LhsInclusive: true, Rhs: &hi2, RhsInclusive: true}

	sp := splitToNonOverlappingRanges(a, b)
	if sp.overlap == nil {
		t.Fatalf("expected an overlap between [0,10] and [5,15]")
	}
	if *sp.overlap.r.Lhs != 5 || *sp.overlap.r.Rhs != 10 {
		t.Fatalf("expected overlap [5,10], got %+v", sp.overlap.r)
	}
	if sp.aLeft == nil || *sp.aLeft.r.Lhs != 0 || *sp.aLeft.r.Rhs != 5 {
		t.Fatalf("expected aLeft [0,5), got %+v", sp.aLeft)
	}
	if sp.bRight == nil || *sp.bRight.r.Lhs != 10 || *sp.bRight.r.Rhs != 15 {
		t.Fatalf("expected bRight (10,15], got %+v", sp.bRight)
	}
	if sp.aRight != nil || sp.bLeft != nil {
		t.Fatalf("expected no aRight or bLeft remainder, got aRight=%+v bLeft=%+v", sp.aRight, sp.bLeft)
	}
}

func TestSplitIdenticalRangesHaveNoRemainder(t *testing.T) {
	a := point(LitInt, 3)
	b := point(LitInt, 3)
	sp := splitToNonOverlappingRanges(a, b)
	if sp.overlap == nil {
		t.Fatalf("identical ranges should overlap entirely")
	}
	if sp.aLeft != nil || sp.aRight != nil || sp.bLeft != nil || sp.bRight != nil {
		t.Fatalf("identical ranges should leave no remainder, got %+v", sp)
	}
}

func TestRemoveOverlapsMergesRowsOnSharedSubRange(t *testing.T) {
	lo, hi := int64(0), int64(10)
	lo2, hi2 := int64(5), int64(15)
	buckets := []RangeBucket[int]{
		{R: Range{Kind: LitInt, Lhs: &lo, LhsInclusive: true, Rhs: &hi, RhsInclusive: true}, Rows: []int{0}},
		{R: Range{Kind: LitInt, Lhs: &lo2, LhsInclusive: true, Rhs: &hi2, RhsInclusive: true}, Rows: []int{1}},
	}

	out := RemoveOverlaps(buckets)
	if len(out) != 3 {
		t.Fatalf("expected 3 disjoint buckets after splitting [0,10] and [5,15], got %d: %+v", len(out), out)
	}
	total := 0
	for _, b := range out {
		if b.R.isEmpty() {
			t.Fatalf("RemoveOverlaps must never produce an empty bucket, got %+v", b)
		}
		total += len(b.Rows)
	}
	if total != 4 {
		t.Fatalf("expected 4 total row references (0,{0,1},1), got %d", total)
	}
}

func TestRemoveOverlapsLeavesDisjointBucketsAlone(t *testing.T) {
	buckets := []RangeBucket[int]{
		{R: point(LitInt, 1), Rows: []int{0}},
		{R: point(LitInt, 2), Rows: []int{1}},
	}
	out := RemoveOverlaps(buckets)
	if len(out) != 2 {
		t.Fatalf("expected disjoint buckets to pass through unchanged, got %+v", out)
	}
}
