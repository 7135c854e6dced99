package match

import (
	"sort"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// NameBinding records that, once a branch is taken, `name` must be bound
// to the current field value (spec.md §4.5: "scrutinee.field is bound to
// the name, after the field is evaluated and before the branch body").
type NameBinding struct {
	Name     string
	NameSpan span.Span
}

// Arm is one `pattern [if guard] => body` entry of a match expression,
// addressed by its position (ID) in the original arm list.
type Arm struct {
	ID    int
	Pat   *hir.Pattern
	Guard *hir.Expr
}

// ConstructorTag discriminates what a DecisionTreeBranch actually
// branches on.
type ConstructorTag int

const (
	CWildcard ConstructorTag = iota
	CRange
	CTuple
	COr
)

// Constructor is the condition attached to one branch of a decision
// tree (original_source's Constructor enum, reduced to the shapes this
// tree builder actually discriminates on).
type Constructor struct {
	Tag   ConstructorTag
	R     Range
	Arity int // CTuple
	Or    []Constructor
}

// Node is either an interior decision (branch on a field) or a leaf that
// resolves to a specific arm.
type Node struct {
	// Interior node: non-nil Branches.
	Field    []string
	Branches []Branch

	// Leaf node: Branches is nil.
	Matched   int
	Unmatched []int
	IsLeaf    bool
}

// Branch is one edge of an interior Node. Guard is non-nil only for the
// wildcard-dispatch chain baseLeaf builds ahead of a guarded arm (spec.md
// §3 Decision tree: "Branch{condition, guard: Option<Expr>, ...}") - such
// a branch's Cond is always CWildcard, with the guard expression itself
// supplying the real runtime condition.
type Branch struct {
	Cond         Constructor
	Guard        *hir.Expr
	NameBindings []NameBinding
	Node         *Node
}

// row is one (arm, sub-pattern-at-this-field) pairing threaded through
// the recursive builder; Pat is nil for a wildcard/binding row once its
// own pattern has been fully consumed.
type row struct {
	armID int
	pat   *hir.Pattern
	guard *hir.Expr
}

func isWildcardLike(p *hir.Pattern) bool {
	return p == nil || p.Tag == hir.PWildcard || p.Tag == hir.PBinding
}

func namebindOf(p *hir.Pattern) (NameBinding, bool) {
	if p == nil || p.NameBind == "" {
		return NameBinding{}, false
	}
	return NameBinding{Name: p.NameBind, NameSpan: p.Span}, true
}

// Build compiles arms into a decision tree rooted at the scrutinee itself.
// Returns the tree root and every diagnostic raised along the way
// (TypeErrorInPattern and NonExhaustiveArms errors, UnreachableMatchArm).
func Build(arms []Arm, matchSpan span.Span) (*Node, []span.Diagnostic) {
	rows := expandOrPatterns(arms)
	var diags []span.Diagnostic
	node := buildTree(nil, rows, &diags)
	if node == nil || hasDeadEnd(node) {
		diags = append(diags, errNonExhaustive(matchSpan))
	}
	if node == nil {
		return nil, diags
	}
	diags = append(diags, unreachableDiagnostics(node, arms)...)
	return node, diags
}

// hasDeadEnd reports whether some branch of the tree has no node to fall
// back to - i.e. there is a reachable combination of scrutinee values no
// arm's pattern covers (spec.md §8 scenario 3, NonExhaustiveArms).
func hasDeadEnd(n *Node) bool {
	if n == nil {
		return true
	}
	if n.IsLeaf {
		return false
	}
	for _, b := range n.Branches {
		if hasDeadEnd(b.Node) {
			return true
		}
	}
	return false
}

// expandOrPatterns flattens `p1 | p2` into two rows sharing the same
// armID, so the discrimination walk treats each alternative as its own
// candidate while leaf-building still resolves both back to one arm
// (spec.md: "different name bindings in an or-pattern" is checked
// earlier, in internal/resolve; by the time match compilation runs, both
// sides bind the same names).
func expandOrPatterns(arms []Arm) []row {
	var out []row
	var walk func(armID int, p *hir.Pattern, guard *hir.Expr)
	walk = func(armID int, p *hir.Pattern, guard *hir.Expr) {
		if p != nil && p.Tag == hir.POr {
			walk(armID, p.Left, guard)
			walk(armID, p.Right, guard)
			return
		}
		out = append(out, row{armID: armID, pat: p, guard: guard})
	}
	for _, a := range arms {
		walk(a.ID, a.Pat, a.Guard)
	}
	return out
}

// buildTree is the recursive workhorse, grounded on
// original_source::build_tree: it looks at the dominant (first
// non-wildcard) pattern shape among rows and either peels a transparent
// structural layer (Tuple), branches on a value (Range/literal), or -
// once every row is wildcard-like - resolves to a Leaf.
func buildTree(field []string, rows []row, diags *[]span.Diagnostic) *Node {
	if len(rows) == 0 {
		return nil
	}

	allWild := true
	dominant := hir.PWildcard
	for _, r := range rows {
		if !isWildcardLike(r.pat) {
			allWild = false
			dominant = r.pat.Tag
			break
		}
	}
	if allWild {
		return baseLeaf(rows)
	}

	switch dominant {
	case hir.PTuple, hir.PTupleStruct, hir.PList:
		return buildTupleBranch(field, rows, diags)
	case hir.PNumber, hir.PChar, hir.PByte, hir.PRange:
		return buildRangeBranch(field, rows, diags)
	default:
		// Struct patterns and anything else not modeled here fall back to
		// treating every row as wildcard - a type-checked program never
		// reaches this for a genuine mismatch, since internal/types already
		// rejected it; this is a defensive fallback, not a silent
		// correctness gap.
		return baseLeaf(rows)
	}
}

// baseLeaf implements the matrix.is_empty() case of
// original_source::build_tree: the first row without a guard wins
// outright; rows before it with guards become nested wildcard-guarded
// branches; everything strictly after the first unguarded row is
// unreachable.
func baseLeaf(rows []row) *Node {
	type guarded struct {
		armID int
		guard *hir.Expr
	}
	var guardedRows []guarded
	var winner *int
	var unmatched []int

	for i, r := range rows {
		if r.guard != nil {
			guardedRows = append(guardedRows, guarded{armID: r.armID, guard: r.guard})
			continue
		}
		w := r.armID
		winner = &w
		for _, rest := range rows[i+1:] {
			unmatched = append(unmatched, rest.armID)
		}
		break
	}

	if winner == nil {
		if len(guardedRows) == 0 {
			return nil
		}
		winner = &guardedRows[len(guardedRows)-1].armID
		guardedRows = guardedRows[:len(guardedRows)-1]
	}

	leaf := &Node{IsLeaf: true, Matched: *winner, Unmatched: unmatched}
	if len(guardedRows) == 0 {
		return leaf
	}

	// Thread the guarded rows (in original order) as nested branches: the
	// first one whose guard holds at runtime wins, otherwise fall through
	// to the next, and finally to `leaf`.
	node := leaf
	for i := len(guardedRows) - 1; i >= 0; i-- {
		g := guardedRows[i]
		thisArm := &Node{IsLeaf: true, Matched: g.armID}
		node = &Node{
			Field: nil,
			Branches: []Branch{
				{Cond: Constructor{Tag: CWildcard}, Guard: g.guard, Node: thisArm},
				{Cond: Constructor{Tag: CWildcard}, Node: node},
			},
		}
	}
	return node
}

// tupleRow is a row whose structural pattern has been peeled down to its
// tuple elements: elems[i] is nil for a row that never constrained slot
// i (the whole arm pattern was a wildcard/binding). Tuple elements are
// themselves limited to wildcard/binding/literal/range shapes - nested
// tuples-of-tuples are treated as an opaque further match compiled
// independently, a deliberate scope reduction from
// original_source::build_tree's fully general recursion (see DESIGN.md).
type tupleRow struct {
	armID int
	guard *hir.Expr
	elems []*hir.Pattern
}

func buildTupleBranch(field []string, rows []row, diags *[]span.Diagnostic) *Node {
	arity := 0
	for _, r := range rows {
		if !isWildcardLike(r.pat) {
			arity = len(r.pat.Elems)
			break
		}
	}

	var tupleRows []tupleRow
	var bindings []NameBinding
	for _, r := range rows {
		if isWildcardLike(r.pat) {
			if nb, ok := namebindOf(r.pat); ok {
				bindings = append(bindings, nb)
			}
			tupleRows = append(tupleRows, tupleRow{armID: r.armID, guard: r.guard, elems: make([]*hir.Pattern, arity)})
			continue
		}
		if len(r.pat.Elems) != arity {
			*diags = append(*diags, errTypeErrorInPattern(r.pat.Span))
			continue
		}
		if nb, ok := namebindOf(r.pat); ok {
			bindings = append(bindings, nb)
		}
		tupleRows = append(tupleRows, tupleRow{armID: r.armID, guard: r.guard, elems: r.pat.Elems})
	}

	inner := buildTupleChain(field, tupleRows, arity, 0, diags)
	return &Node{
		Field: field,
		Branches: []Branch{
			{Cond: Constructor{Tag: CTuple, Arity: arity}, NameBindings: bindings, Node: inner},
		},
	}
}

// buildTupleChain discriminates tuple elements left to right, one at a
// time, threading the surviving candidate rows into the next element;
// once every slot has been consumed it resolves exactly like baseLeaf.
func buildTupleChain(field []string, rows []tupleRow, arity, idx int, diags *[]span.Diagnostic) *Node {
	if idx >= arity {
		plain := make([]row, len(rows))
		for i, r := range rows {
			plain[i] = row{armID: r.armID, guard: r.guard}
		}
		return baseLeaf(plain)
	}

	allWild := true
	for _, r := range rows {
		if r.elems[idx] != nil && !isWildcardLike(r.elems[idx]) {
			allWild = false
			break
		}
	}
	if allWild {
		return buildTupleChain(field, rows, arity, idx+1, diags)
	}

	elemField := append(append([]string{}, field...), elemName(idx))
	var buckets []RangeBucket[tupleRow]
	var pendingWildcard []tupleRow

	findBucket := func(r Range) int {
		for i := range buckets {
			if buckets[i].R.equal(r) {
				return i
			}
		}
		return -1
	}

	for _, r := range rows {
		ep := r.elems[idx]
		if isWildcardLike(ep) {
			pendingWildcard = append(pendingWildcard, r)
			continue
		}
		rg, ok := rangeOf(ep)
		if !ok {
			*diags = append(*diags, errTypeErrorInPattern(ep.Span))
			continue
		}
		if i := findBucket(rg); i >= 0 {
			buckets[i].Rows = append(buckets[i].Rows, r)
			continue
		}
		buckets = append(buckets, RangeBucket[tupleRow]{R: rg, Rows: []tupleRow{r}})
	}
	// Decompose any genuinely overlapping (not merely identical) ranges
	// into disjoint pieces before the wildcard rows - which apply to every
	// sub-range alike - are folded in (spec.md §4.5 P4).
	buckets = RemoveOverlaps(buckets)

	branches := make([]Branch, 0, len(buckets)+1)
	for _, b := range buckets {
		combined := append(append([]tupleRow{}, pendingWildcard...), b.Rows...)
		sort.SliceStable(combined, func(i, j int) bool { return combined[i].armID < combined[j].armID })
		// idx+1 addresses a sibling tuple slot, not a child of this one, so
		// the recursion keeps the tuple's own field path rather than
		// elemField - only this branch node itself is labelled with it.
		next := buildTupleChain(field, combined, arity, idx+1, diags)
		branches = append(branches, Branch{Cond: Constructor{Tag: CRange, R: b.R}, Node: next})
	}
	branches = mergeIdenticalArmSets(branches)
	def := buildTupleChain(field, pendingWildcard, arity, idx+1, diags)
	branches = append(branches, Branch{Cond: Constructor{Tag: CWildcard}, Node: def})

	return &Node{Field: elemField, Branches: branches}
}

func elemName(i int) string { return ElemName(i) }

// ElemName names tuple slot i as the decision tree's field-path builder
// does ("_0", "_1", ...), exported so internal/mir can recompute the same
// field paths when resolving an arm's own pattern bindings.
func ElemName(i int) string {
	digits := []byte{'_'}
	s := itoa(i)
	return string(append(digits, s...))
}

func itoa(i int) []byte {
	if i == 0 {
		return []byte{'0'}
	}
	var buf []byte
	for i > 0 {
		buf = append([]byte{byte('0' + i%10)}, buf...)
		i /= 10
	}
	return buf
}

func buildRangeBranch(field []string, rows []row, diags *[]span.Diagnostic) *Node {
	var buckets []RangeBucket[row]
	var pendingWildcard []row

	findBucket := func(r Range) int {
		for i := range buckets {
			if buckets[i].R.equal(r) {
				return i
			}
		}
		return -1
	}

	for _, r := range rows {
		if isWildcardLike(r.pat) {
			pendingWildcard = append(pendingWildcard, r)
			continue
		}
		rg, ok := rangeOf(r.pat)
		if !ok {
			*diags = append(*diags, errTypeErrorInPattern(r.pat.Span))
			continue
		}
		if i := findBucket(rg); i >= 0 {
			buckets[i].Rows = append(buckets[i].Rows, r)
			continue
		}
		buckets = append(buckets, RangeBucket[row]{R: rg, Rows: []row{r}})
	}
	// Decompose any genuinely overlapping (not merely identical) ranges
	// into disjoint pieces before the wildcard rows are folded in, so two
	// partially-overlapping range patterns each keep exactly the arms that
	// actually cover their shared sub-range (spec.md §4.5 P4,
	// original_source::remove_overlaps).
	buckets = RemoveOverlaps(buckets)

	branches := make([]Branch, 0, len(buckets))
	for _, b := range buckets {
		combined := append(append([]row{}, pendingWildcard...), b.Rows...)
		sort.SliceStable(combined, func(i, j int) bool { return combined[i].armID < combined[j].armID })
		leaf := baseLeaf(combined)
		if leaf == nil {
			continue
		}
		branches = append(branches, Branch{Cond: Constructor{Tag: CRange, R: b.R}, Node: leaf})
	}
	branches = mergeIdenticalArmSets(branches)

	defaultLeaf := baseLeaf(pendingWildcard)
	branches = append(branches, Branch{Cond: Constructor{Tag: CWildcard}, Node: defaultLeaf})

	return &Node{Field: field, Branches: branches}
}

// mergeIdenticalArmSets folds branches whose leaf resolves to the exact
// same (matched, unmatched) pair into a single Or-constructor branch
// (spec.md §4.5 / original_source::merge_conditions): two literal
// patterns that both fall through to the same arm don't need two
// separate runtime comparisons represented as two tree branches - they
// read as one branch with an Or condition.
func mergeIdenticalArmSets(branches []Branch) []Branch {
	var out []Branch
outer:
	for _, b := range branches {
		for i := range out {
			if leafKey(out[i].Node) == leafKey(b.Node) && out[i].Node.IsLeaf && b.Node.IsLeaf {
				out[i].Cond = mergeConstructor(out[i].Cond, b.Cond)
				continue outer
			}
		}
		out = append(out, b)
	}
	return out
}

func leafKey(n *Node) string {
	if n == nil || !n.IsLeaf {
		return ""
	}
	s := itoaKey(n.Matched)
	for _, u := range n.Unmatched {
		s += "," + itoaKey(u)
	}
	return s
}

func itoaKey(i int) string { return string(itoa(i)) }

func mergeConstructor(a, b Constructor) Constructor {
	if a.Tag == COr {
		a.Or = append(a.Or, b)
		return a
	}
	return Constructor{Tag: COr, Or: []Constructor{a, b}}
}

func rangeOf(p *hir.Pattern) (Range, bool) {
	switch p.Tag {
	case hir.PNumber:
		return point(LitInt, p.NumberValue), true
	case hir.PChar:
		if len(p.Text) == 0 {
			return Range{}, false
		}
		return point(LitChar, int64(p.Text[0])), true
	case hir.PByte:
		if len(p.Text) == 0 {
			return Range{}, false
		}
		return point(LitByte, int64(p.Text[0])), true
	case hir.PRange:
		return rangeFromPattern(p)
	default:
		return Range{}, false
	}
}

func rangeFromPattern(p *hir.Pattern) (Range, bool) {
	r := Range{Kind: LitInt, LhsInclusive: true, RhsInclusive: p.Inclusive}
	if p.From != nil && p.From.Tag == hir.PNumber {
		v := p.From.NumberValue
		r.Lhs = &v
	}
	if p.To != nil && p.To.Tag == hir.PNumber {
		v := p.To.NumberValue
		r.Rhs = &v
	}
	return r, true
}

// unreachableDiagnostics walks the finished tree and reports one
// UnreachableMatchArm warning per arm id that appears only in some
// leaf's Unmatched set and never as any leaf's Matched id.
func unreachableDiagnostics(root *Node, arms []Arm) []span.Diagnostic {
	matched := map[int]bool{}
	unmatched := map[int]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.IsLeaf {
			matched[n.Matched] = true
			for _, u := range n.Unmatched {
				unmatched[u] = true
			}
			return
		}
		for _, b := range n.Branches {
			walk(b.Node)
		}
	}
	walk(root)

	var diags []span.Diagnostic
	for _, a := range arms {
		if unmatched[a.ID] && !matched[a.ID] {
			diags = append(diags, warnUnreachable(a.Pat.Span))
		}
	}
	return diags
}
