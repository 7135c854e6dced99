package hir

import "github.com/sodigy-lang/sodigyc/internal/span"

// PatternTag discriminates the recursive Pattern sum (spec.md §3 "Pattern").
type PatternTag int

const (
	PWildcard PatternTag = iota
	PBinding
	PNumber
	PChar
	PByte
	PString
	PIdentifier
	PPath
	PTupleStruct
	PStruct
	PTuple
	PList
	PRange
	POr
	PInfixOp
)

// StructField is a single `name: pattern` entry of a struct pattern.
type StructField struct {
	Name    string
	Pattern *Pattern
}

// Pattern is the recursive match-pattern AST (spec.md §3). Every variant
// may additionally carry a name binding and a type annotation; the checker
// (internal/resolve) rejects both in positions that forbid them (range
// endpoints, a nested tuple element when the enclosing tuple pattern
// already binds a name, etc.) rather than the parser refusing to build the
// node at all — matching the teacher's "parse permissively, reject during
// analysis" style (internal/analyzer/declarations_patterns.go).
type Pattern struct {
	Tag  PatternTag
	Span span.Span

	// Optional binding/type annotation carried by any variant.
	NameBind  string  // "" if none
	TypeAnnot *Type   // nil if none
	Origin    NameOrigin

	// PNumber
	NumberValue int64
	Negative    bool

	// PChar / PByte / PString / PIdentifier / PPath
	Text  string
	Path  []string

	// PTupleStruct / PStruct
	CtorName string
	Fields   []StructField  // PStruct
	Elems    []*Pattern     // PTupleStruct / PTuple / PList

	// PRange
	From      *Pattern
	To        *Pattern
	Inclusive bool

	// POr
	Left  *Pattern
	Right *Pattern

	// PInfixOp (list cons-like patterns, e.g. `head :: tail`)
	Op string
}

// Wildcard builds a `_` pattern.
func Wildcard(s span.Span) *Pattern { return &Pattern{Tag: PWildcard, Span: s} }

// Binding builds a bare name-binding pattern (`x`).
func Binding(s span.Span, name string) *Pattern {
	return &Pattern{Tag: PBinding, Span: s, NameBind: name}
}

// CollectBindings walks p and returns every name this pattern binds, in
// left-to-right order, including names bound by nested sub-patterns. For an
// or-pattern only the left alternative is walked. Used by internal/resolve
// to detect DifferentNameBindingsInOrPattern.
func (p *Pattern) CollectBindings() []string {
	if p == nil {
		return nil
	}
	var out []string
	if p.NameBind != "" {
		out = append(out, p.NameBind)
	}
	switch p.Tag {
	case PTupleStruct, PTuple, PList:
		for _, e := range p.Elems {
			out = append(out, e.CollectBindings()...)
		}
	case PStruct:
		for _, f := range p.Fields {
			out = append(out, f.Pattern.CollectBindings()...)
		}
	case PRange:
		// Range endpoints never bind (checker rejects it earlier); nothing
		// to collect even if malformed input slipped through.
	case POr:
		out = append(out, p.Left.CollectBindings()...)
	case PInfixOp:
		out = append(out, p.Left.CollectBindings()...)
		out = append(out, p.Right.CollectBindings()...)
	}
	return out
}
