package mir

import (
	"strings"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/match"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// lowerMatch compiles a match expression's decision tree and re-expands
// it into nested MIR If/Block nodes (spec.md §4.5 "Re-expansion (L)").
func lowerMatch(e *hir.Expr, isTail bool, diags *[]span.Diagnostic) *Node {
	arms := make([]match.Arm, len(e.Arms))
	for i, a := range e.Arms {
		arms[i] = match.Arm{ID: i, Pat: a.Pattern, Guard: a.Guard}
	}

	tree, matchDiags := match.Build(arms, e.Span)
	*diags = append(*diags, matchDiags...)
	if tree == nil {
		return Never(e.Span)
	}

	scrutinee := Lower(e.Scrutinee, false, diags)
	cache := map[string]*Node{}
	return expandNode(tree, scrutinee, cache, e.Arms, isTail, diags)
}

// expandNode turns one decision-tree node into MIR: an interior node
// becomes (optionally) a field-caching let followed by a branch chain; a
// leaf becomes its arm's body, preceded by whatever name bindings that
// arm's own pattern introduces.
func expandNode(n *match.Node, scrutinee *Node, cache map[string]*Node, arms []hir.MatchArm, isTail bool, diags *[]span.Diagnostic) *Node {
	if n == nil {
		return Never(scrutinee.Span)
	}
	if n.IsLeaf {
		return expandLeaf(n, scrutinee, cache, arms, isTail, diags)
	}

	fieldVal, newLet := resolveField(n.Field, scrutinee, cache)
	body := expandBranches(n.Branches, 0, fieldVal, scrutinee, cache, arms, isTail, diags)
	if newLet == nil {
		return body
	}
	return &Node{Tag: NBlock, Span: scrutinee.Span, Type: body.Type, IsTail: isTail, Lets: []*Let{newLet}, Value: body}
}

// expandBranches walks a node's branches in order, building an If-chain:
// the first branch whose condition (value equality, or a guard) holds
// wins; CTuple and plain CWildcard branches have no runtime condition of
// their own and simply recurse.
func expandBranches(branches []match.Branch, idx int, fieldVal *Node, scrutinee *Node, cache map[string]*Node, arms []hir.MatchArm, isTail bool, diags *[]span.Diagnostic) *Node {
	if idx >= len(branches) {
		return Never(scrutinee.Span)
	}
	b := branches[idx]
	bindings := bindingsForNames(b.NameBindings, fieldVal)
	then := wrapWithBindings(expandNode(b.Node, scrutinee, cache, arms, isTail, diags), bindings, isTail)

	if b.Guard != nil {
		cond := Lower(b.Guard, false, diags)
		els := expandBranches(branches, idx+1, fieldVal, scrutinee, cache, arms, isTail, diags)
		return &Node{Tag: NIf, Span: scrutinee.Span, Type: then.Type, IsTail: isTail, Cond: cond, Then: then, Else: els}
	}

	switch b.Cond.Tag {
	case match.CTuple:
		return then
	case match.CWildcard:
		return then
	case match.CRange:
		cond := buildRangeCondition(b.Cond.R, fieldVal)
		els := expandBranches(branches, idx+1, fieldVal, scrutinee, cache, arms, isTail, diags)
		return &Node{Tag: NIf, Span: scrutinee.Span, Type: then.Type, IsTail: isTail, Cond: cond, Then: then, Else: els}
	case match.COr:
		cond := buildOrCondition(b.Cond.Or, fieldVal)
		els := expandBranches(branches, idx+1, fieldVal, scrutinee, cache, arms, isTail, diags)
		return &Node{Tag: NIf, Span: scrutinee.Span, Type: then.Type, IsTail: isTail, Cond: cond, Then: then, Else: els}
	default:
		return then
	}
}

func expandLeaf(n *match.Node, scrutinee *Node, cache map[string]*Node, arms []hir.MatchArm, isTail bool, diags *[]span.Diagnostic) *Node {
	arm := arms[n.Matched]
	bindings := bindingsForPattern(arm.Pattern, nil, scrutinee, cache)
	body := Lower(arm.Body, isTail, diags)
	return wrapWithBindings(body, bindings, isTail)
}

func wrapWithBindings(body *Node, lets []*Let, isTail bool) *Node {
	if len(lets) == 0 {
		return body
	}
	return &Node{Tag: NBlock, Span: body.Span, Type: body.Type, IsTail: isTail, Lets: lets, Value: body}
}

func bindingsForNames(nbs []match.NameBinding, fieldVal *Node) []*Let {
	out := make([]*Let, 0, len(nbs))
	for _, nb := range nbs {
		out = append(out, &Let{Name: nb.Name, NameSpan: nb.NameSpan, Value: fieldVal})
	}
	return out
}

// bindingsForPattern recomputes the name bindings an arm's own pattern
// introduces, walking it in lock-step with tuple field paths - a
// deliberate simplification versus threading per-branch bindings all the
// way through the tree (see DESIGN.md): the bindings a body needs are
// exactly the bindings in its own arm's pattern, regardless of which tree
// path reached the leaf.
func bindingsForPattern(p *hir.Pattern, path []string, scrutinee *Node, cache map[string]*Node) []*Let {
	if p == nil {
		return nil
	}
	var out []*Let
	if p.NameBind != "" {
		v, newLet := resolveField(path, scrutinee, cache)
		if newLet != nil {
			out = append(out, newLet)
		}
		out = append(out, &Let{Name: p.NameBind, NameSpan: p.Span, Value: v})
	}
	switch p.Tag {
	case hir.PTuple, hir.PTupleStruct, hir.PList:
		for i, elem := range p.Elems {
			elemPath := append(append([]string{}, path...), match.ElemName(i))
			out = append(out, bindingsForPattern(elem, elemPath, scrutinee, cache)...)
		}
	case hir.POr:
		// Both alternatives bind the same names (internal/resolve already
		// rejected any mismatch), so either side yields the same set.
		out = append(out, bindingsForPattern(p.Left, path, scrutinee, cache)...)
	}
	return out
}

// resolveField returns the MIR value for a decision-tree field path,
// caching a fresh `let curr = scrutinee.field` the first time the path is
// needed so later references (further down the tree, or an arm's own
// bindings) read the same evaluation (spec.md §4.5 "let curr =
// scrutinee.field caching").
func resolveField(path []string, scrutinee *Node, cache map[string]*Node) (*Node, *Let) {
	if len(path) == 0 {
		return scrutinee, nil
	}
	key := strings.Join(path, ".")
	if n, ok := cache[key]; ok {
		return n, nil
	}
	name := "curr_" + strings.Join(path, "_")
	read := &Node{Tag: NField, Span: scrutinee.Span, Base: scrutinee, Fields: path}
	ident := &Node{Tag: NIdent, Span: scrutinee.Span, Type: read.Type, Name: name}
	cache[key] = ident
	return ident, &Let{Name: name, NameSpan: scrutinee.Span, Value: read}
}

func fieldRef(path []string, scrutinee *Node, cache map[string]*Node) *Node {
	v, _ := resolveField(path, scrutinee, cache)
	return v
}

// buildRangeCondition lowers one Range into a boolean MIR expression
// testing whether fieldVal falls inside it: a point range becomes a
// single equality intrinsic call, a bounded range becomes the
// conjunction of its endpoint checks, and an unbounded range (both ends
// nil - a bare wildcard carrier) is always true.
func buildRangeCondition(r match.Range, fieldVal *Node) *Node {
	if r.Lhs != nil && r.Rhs != nil && *r.Lhs == *r.Rhs && r.LhsInclusive && r.RhsInclusive {
		return intrinsicCall("IntegerEq", fieldVal, constIntNode(fieldVal.Span, *r.Lhs))
	}
	var lo, hi *Node
	if r.Lhs != nil {
		eq := intrinsicCall("IntegerEq", fieldVal, constIntNode(fieldVal.Span, *r.Lhs))
		gt := intrinsicCall("IntegerGt", fieldVal, constIntNode(fieldVal.Span, *r.Lhs))
		if r.LhsInclusive {
			lo = orCond(eq, gt)
		} else {
			lo = gt
		}
	}
	if r.Rhs != nil {
		eq := intrinsicCall("IntegerEq", fieldVal, constIntNode(fieldVal.Span, *r.Rhs))
		lt := intrinsicCall("IntegerLt", fieldVal, constIntNode(fieldVal.Span, *r.Rhs))
		if r.RhsInclusive {
			hi = orCond(eq, lt)
		} else {
			hi = lt
		}
	}
	switch {
	case lo != nil && hi != nil:
		return andCond(lo, hi)
	case lo != nil:
		return lo
	case hi != nil:
		return hi
	default:
		return constBool(fieldVal.Span, true)
	}
}

func buildOrCondition(cs []match.Constructor, fieldVal *Node) *Node {
	if len(cs) == 0 {
		return constBool(fieldVal.Span, false)
	}
	cond := buildRangeCondition(cs[0].R, fieldVal)
	for _, c := range cs[1:] {
		cond = orCond(cond, buildRangeCondition(c.R, fieldVal))
	}
	return cond
}

func intrinsicCall(op string, a, b *Node) *Node {
	return &Node{Tag: NCall, Span: a.Span, IsIntrinsic: true, IntrinsicOp: op, Args: []*Node{a, b}}
}

func andCond(a, b *Node) *Node {
	return &Node{Tag: NIf, Span: a.Span, Cond: a, Then: b, Else: constBool(a.Span, false)}
}

func orCond(a, b *Node) *Node {
	return &Node{Tag: NIf, Span: a.Span, Cond: a, Then: constBool(a.Span, true), Else: b}
}

func constIntNode(s span.Span, v int64) *Node {
	return &Node{Tag: NConstInt, Span: s, IntValue: v}
}

func constBool(s span.Span, v bool) *Node {
	return &Node{Tag: NConstBool, Span: s, BoolValue: v}
}
