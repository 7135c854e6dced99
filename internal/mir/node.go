// Package mir implements the MIR stage (spec.md §3/§4.6 component I): a
// three-address-ish IR lowered from type-checked, match-compiled HIR, with
// tail positions marked explicitly so the bytecode lowerer (internal/
// bytecode) can apply the tail-call protocol without re-deriving it.
//
// Grounded on the teacher's internal/vm/compiler_expressions.go and
// compiler_statements.go (the shape of a recursive expression-to-
// instruction lowering pass, restructured here as HIR-to-IR rather than
// IR-to-bytecode directly), and on
// original_source/crates/post-mir/src/match/tree.rs's `into_expr` for the
// decision-tree re-expansion (component L).
package mir

import (
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// NodeTag discriminates the MIR node sum. Smaller than hir's ExprTag: by
// this stage, EInfixOp has been desugared away (arithmetic/comparison
// become intrinsic NCall, && / || become NIf; spec.md §4.6 "Boolean
// lowering") and EMatch has been re-expressed as nested NIf/NBlock.
type NodeTag int

const (
	NIdent NodeTag = iota
	NConstInt
	NConstBool
	NConstString
	NNever
	NIf
	NBlock
	NField
	NCall
	NTuple
	NList
	NStructLit
)

// StructLitField is a `name: value` entry of a struct literal, lowered.
type StructLitField struct {
	Name  string
	Value *Node
}

// Let is one `let name = value` binding inside a Block, including the
// synthetic bindings the match expander introduces to cache a field read
// (spec.md §4.5 "Re-expansion (L)").
type Let struct {
	Name     string
	NameSpan span.Span
	Value    *Node
}

// Assert is a lowered top-level or block-local assert statement.
type Assert struct {
	Span      span.Span
	Condition *Node
}

// Node is the MIR expression node (spec.md §3 "Type (shared by HIR/MIR,
// progressively refined)" plus the structured if/block/call/field forms
// named in §2's component table).
type Node struct {
	Tag    NodeTag
	Span   span.Span
	Type   hir.Type
	IsTail bool

	// NIdent
	Name   string
	Origin hir.NameOrigin

	// NConstInt / NConstBool / NConstString
	IntValue  int64
	BoolValue bool
	StrValue  string

	// NIf
	Cond, Then, Else *Node

	// NBlock
	Lets    []*Let
	Asserts []*Assert
	Value   *Node

	// NField
	Base   *Node
	Fields []string

	// NCall
	Func        *Node
	Args        []*Node
	IsIntrinsic bool
	IntrinsicOp string

	// NTuple / NList
	Elems []*Node

	// NStructLit
	CtorName string
	SFields  []StructLitField
}

// Never builds the Poison placeholder MIR carries forward from hir.Dummy
// (spec.md §9 "Dummy placeholder values"): a Never-typed node that keeps
// later passes total instead of needing a distinct "absent" case.
func Never(s span.Span) *Node {
	return &Node{Tag: NNever, Span: s, Type: hir.Never()}
}

// IsPoison reports whether n is (or degrades to) the Never placeholder.
func (n *Node) IsPoison() bool {
	return n == nil || n.Tag == NNever
}
