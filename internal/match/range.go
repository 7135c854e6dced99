// Package match implements pattern-match compilation (spec.md §2
// components H and L): decision-tree construction over a match
// expression's arms, non-overlapping range decomposition, Or-constructor
// merging, and exhaustiveness/unreachability diagnostics. Expansion of
// the resulting tree into nested if/let MIR lives in internal/mir
// (match_expand.go).
//
// Grounded on
// original_source/crates/post-mir/src/match/{tree,range,state_machine}.rs.
package match

import (
	"sort"

	"github.com/sodigy-lang/sodigyc/internal/span"
)

// LiteralKind distinguishes the literal families a Range endpoint can
// belong to (original_source's LiteralType).
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitChar
	LitByte
)

// Range is a half-open-or-closed interval over one literal kind. A nil
// Lhs/Rhs means unbounded in that direction (spec.md §4.5 range
// patterns, original_source::Range).
type Range struct {
	Kind         LiteralKind
	Lhs          *int64
	LhsInclusive bool
	Rhs          *int64
	RhsInclusive bool
}

func point(kind LiteralKind, v int64) Range {
	return Range{Kind: kind, Lhs: &v, LhsInclusive: true, Rhs: &v, RhsInclusive: true}
}

func full(kind LiteralKind) Range {
	return Range{Kind: kind}
}

func (r Range) equal(o Range) bool {
	return r.Kind == o.Kind &&
		ptrEq(r.Lhs, o.Lhs) && r.LhsInclusive == o.LhsInclusive &&
		ptrEq(r.Rhs, o.Rhs) && r.RhsInclusive == o.RhsInclusive
}

func ptrEq(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r Range) isEmpty() bool {
	if r.Lhs == nil || r.Rhs == nil {
		return false
	}
	if *r.Lhs < *r.Rhs {
		return false
	}
	if *r.Lhs > *r.Rhs {
		return true
	}
	return !(r.LhsInclusive && r.RhsInclusive)
}

// splits is the outcome of intersecting two ranges: at most one leftover
// piece of `a` outside `b`, one leftover piece of `b` outside `a`, and the
// shared overlap, any of which may be absent (spec.md §4.5 P4
// "split_to_non_overlapping_ranges").
type splits struct {
	aLeft, aRight *rangeWith
	overlap       *rangeWith
	bLeft, bRight *rangeWith
}

type rangeWith struct {
	r   Range
	src []int // which of {0: a, 1: b} contributed, used by callers to merge row lists
}

// splitToNonOverlappingRanges decomposes a and b into up to 5 disjoint
// pieces, each tagged in `src` with which of a (0) and b (1) it came
// from: whatever of a lies strictly left of b, the shared overlap
// (tagged with both a and b's contributors), whatever of a lies strictly
// right of b, and the same for b's leftover pieces.
func splitToNonOverlappingRanges(a, b Range) splits {
	if a.Kind != b.Kind {
		return splits{}
	}

	lhs, lhsIncl := maxLhs(a, b)
	rhs, rhsIncl := minRhs(a, b)
	overlap := Range{Kind: a.Kind, Lhs: lhs, LhsInclusive: lhsIncl, Rhs: rhs, RhsInclusive: rhsIncl}
	if overlap.isEmpty() {
		return splits{}
	}

	out := splits{overlap: &rangeWith{r: overlap, src: []int{0, 1}}}

	if aLeft, ok := leftRemainder(a, overlap); ok {
		out.aLeft = &rangeWith{r: aLeft, src: []int{0}}
	}
	if aRight, ok := rightRemainder(a, overlap); ok {
		out.aRight = &rangeWith{r: aRight, src: []int{0}}
	}
	if bLeft, ok := leftRemainder(b, overlap); ok {
		out.bLeft = &rangeWith{r: bLeft, src: []int{1}}
	}
	if bRight, ok := rightRemainder(b, overlap); ok {
		out.bRight = &rangeWith{r: bRight, src: []int{1}}
	}
	return out
}

func maxLhs(a, b Range) (*int64, bool) {
	if a.Lhs == nil {
		return b.Lhs, b.LhsInclusive
	}
	if b.Lhs == nil {
		return a.Lhs, a.LhsInclusive
	}
	if *a.Lhs > *b.Lhs {
		return a.Lhs, a.LhsInclusive
	}
	if *b.Lhs > *a.Lhs {
		return b.Lhs, b.LhsInclusive
	}
	return a.Lhs, a.LhsInclusive && b.LhsInclusive
}

func minRhs(a, b Range) (*int64, bool) {
	if a.Rhs == nil {
		return b.Rhs, b.RhsInclusive
	}
	if b.Rhs == nil {
		return a.Rhs, a.RhsInclusive
	}
	if *a.Rhs < *b.Rhs {
		return a.Rhs, a.RhsInclusive
	}
	if *b.Rhs < *a.Rhs {
		return b.Rhs, b.RhsInclusive
	}
	return a.Rhs, a.RhsInclusive && b.RhsInclusive
}

// leftRemainder returns the part of r strictly left of overlap's lhs, if
// any (r.lhs .. overlap.lhs, exclusive at the overlap boundary).
func leftRemainder(r, overlap Range) (Range, bool) {
	if overlap.Lhs == nil {
		return Range{}, false
	}
	if r.Lhs != nil && *r.Lhs >= *overlap.Lhs {
		return Range{}, false
	}
	out := Range{Kind: r.Kind, Lhs: r.Lhs, LhsInclusive: r.LhsInclusive, Rhs: overlap.Lhs, RhsInclusive: !overlap.LhsInclusive}
	if out.isEmpty() {
		return Range{}, false
	}
	return out, true
}

func rightRemainder(r, overlap Range) (Range, bool) {
	if overlap.Rhs == nil {
		return Range{}, false
	}
	if r.Rhs != nil && *r.Rhs <= *overlap.Rhs {
		return Range{}, false
	}
	out := Range{Kind: r.Kind, Lhs: overlap.Rhs, LhsInclusive: !overlap.RhsInclusive, Rhs: r.Rhs, RhsInclusive: r.RhsInclusive}
	if out.isEmpty() {
		return Range{}, false
	}
	return out, true
}

// RangeBucket pairs one Range with whatever payload (row/tupleRow list)
// is associated with it, generic over the payload so both the top-level
// and the tuple-element range branchers can reuse the same decomposition
// (original_source's `remove_overlaps<T: Clone + Merge>`).
type RangeBucket[T any] struct {
	R    Range
	Rows []T
}

// RemoveOverlaps decomposes a set of (possibly overlapping) range
// buckets into a disjoint set, merging the row lists of any two buckets
// that shared a sub-range (spec.md §4.5 P4). Ported from
// original_source::remove_overlaps: repeatedly sort-and-split adjacent
// pairs until a full pass makes no further overlap.
func RemoveOverlaps[T any](buckets []RangeBucket[T]) []RangeBucket[T] {
	for {
		sort.SliceStable(buckets, func(i, j int) bool { return lhsLess(buckets[i].R, buckets[j].R) })

		var result []RangeBucket[T]
		hasOverlap := false
		i := 0
		for i < len(buckets) {
			if i+1 >= len(buckets) {
				result = append(result, buckets[i])
				i++
				continue
			}
			a, b := buckets[i], buckets[i+1]
			sp := splitToNonOverlappingRanges(a.R, b.R)
			if sp.overlap == nil {
				result = append(result, a)
				i++
				continue
			}
			hasOverlap = true
			if sp.aLeft != nil {
				result = append(result, RangeBucket[T]{R: sp.aLeft.r, Rows: a.Rows})
			}
			result = append(result, RangeBucket[T]{R: sp.overlap.r, Rows: append(append([]T{}, a.Rows...), b.Rows...)})
			if sp.aRight != nil {
				result = append(result, RangeBucket[T]{R: sp.aRight.r, Rows: a.Rows})
			}
			if sp.bLeft != nil {
				result = append(result, RangeBucket[T]{R: sp.bLeft.r, Rows: b.Rows})
			}
			if sp.bRight != nil {
				result = append(result, RangeBucket[T]{R: sp.bRight.r, Rows: b.Rows})
			}
			i += 2
		}
		if !hasOverlap {
			return result
		}
		buckets = result
	}
}

func lhsLess(a, b Range) bool {
	if a.Lhs == nil && b.Lhs == nil {
		return false
	}
	if a.Lhs == nil {
		return true
	}
	if b.Lhs == nil {
		return false
	}
	if *a.Lhs != *b.Lhs {
		return *a.Lhs < *b.Lhs
	}
	return a.LhsInclusive && !b.LhsInclusive
}

// diagnostic indices for the match cluster (spec.md §7, warning band for
// Unreachable, error band for NonExhaustive per §8 scenario 3).
const (
	ErrNonExhaustiveArms    = 500
	ErrTypeErrorInPattern   = 501
	WarnUnreachableMatchArm = 5500
)

func errNonExhaustive(use span.Span) span.Diagnostic {
	return span.New(ErrNonExhaustiveArms, "NonExhaustiveArms", "this match is not exhaustive; add a wildcard or cover every case", use)
}

func errTypeErrorInPattern(use span.Span) span.Diagnostic {
	return span.New(ErrTypeErrorInPattern, "TypeErrorInPattern", "this pattern's shape does not match the scrutinee's type", use)
}

func warnUnreachable(use span.Span) span.Diagnostic {
	return span.New(WarnUnreachableMatchArm, "UnreachableMatchArm", "this arm can never be reached; an earlier arm already covers every value it matches", use)
}
