package hir

import "github.com/sodigy-lang/sodigyc/internal/span"

// ExprTag discriminates the HIR expression sum. This is a deliberately
// small surface — just enough of the source language's expression forms to
// drive type inference, match compilation, and bytecode lowering, matching
// spec.md's own running examples (arithmetic, if, block, match, calls,
// field access, poly dispatch).
type ExprTag int

const (
	EIdent ExprTag = iota
	EConstantInt
	EConstantBool
	EConstantString
	ENever // Poison placeholder (spec.md §9 "Dummy placeholder values")
	EIf
	EBlock
	EField
	ECall
	EMatch
	ETuple
	EList
	EStructLit
	EInfixOp
)

// StructLitField is a `name: value` entry of a struct literal.
type StructLitField struct {
	Name  string
	Value *Expr
}

// MatchArm is a single `pattern [if guard] => body` arm of a match
// expression.
type MatchArm struct {
	Pattern *Pattern
	Guard   *Expr // nil if no guard
	Body    *Expr
	Span    span.Span
}

// Expr is the HIR expression node.
type Expr struct {
	Tag  ExprTag
	Span span.Span
	Type Type // filled in by internal/types; zero value until solved

	// EIdent
	Name   string
	Origin NameOrigin

	// EConstantInt / EConstantBool
	IntValue  int64
	BoolValue bool
	StrValue  string

	// EIf
	Cond, Then, Else *Expr

	// EBlock
	Lets    []*Let
	Asserts []*Assert
	Value   *Expr

	// EField
	Base   *Expr
	Fields []string

	// ECall
	Func         *Expr
	Args         []*Expr
	IsIntrinsic  bool
	IntrinsicOp  string
	IsTail       bool // set by the MIR lowerer (internal/mir), not parsed

	// EMatch
	Scrutinee *Expr
	Arms      []MatchArm

	// ETuple / EList
	Elems []*Expr

	// EStructLit
	CtorName string
	SFields  []StructLitField

	// EInfixOp
	Op          string
	Left, Right *Expr
}

// Dummy returns the always-inhabited Poison placeholder the spec mandates
// for a node that could not be resolved/type-checked (spec.md §9): a Never
// -typed expression carrying the span where the real one would have been,
// so later passes stay total without special-casing "absent" nodes.
func Dummy(s span.Span) *Expr {
	return &Expr{Tag: ENever, Span: s, Type: Never()}
}

// IsPoison reports whether e is (or degrades to) the Dummy placeholder.
func (e *Expr) IsPoison() bool {
	return e == nil || e.Tag == ENever
}
