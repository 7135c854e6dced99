package hir

import "github.com/sodigy-lang/sodigyc/internal/span"

// Attrs is the attribute bag every top-level entity carries, supplementing
// spec.md's entity tables with the general decorator mechanism from
// original_source/crates/hir/src/attribute.rs (`#[poly]`, `#[impl(name)]`,
// `#[built_in]`, doc comments) instead of a parallel ad hoc field per
// concern.
type Attrs struct {
	IsPoly   bool
	ImplOf   span.Span // set when #[impl(f)]: def-span of the poly this implements
	BuiltIn  bool
	DocLines []string
}

// GenericParamDecl is one `<T>` entry of a func/poly's generic parameter
// list.
type GenericParamDecl struct {
	Name    string
	DefSpan span.Span
}

// Param is one value parameter of a function.
type Param struct {
	Name    string
	DefSpan span.Span
	Type    Type
}

// Func is a function entity (spec.md §3 "Entity tables").
type Func struct {
	NameSpan span.Span // identity; also the key into Session.Funcs
	Name     string
	Purity   Purity
	Generics []GenericParamDecl
	Params   []Param
	Return   Type
	Body     *Expr // nil for a poly declaration (no default impl)
	Origin   NameOrigin
	BuiltIn  bool
	Attrs    Attrs
}

// Let is a `let`/top-level constant binding.
type Let struct {
	NameSpan  span.Span
	Name      string
	TypeAnnot *Type // optional
	Value     *Expr
	Origin    NameOrigin
}

// AssociatedFunc records a method attached to a struct/enum shape:
// spec.md §3 "associated_funcs: map name → (arity, purity, [site])".
type AssociatedFunc struct {
	Arity  int
	Purity Purity
	Sites  []span.Span
}

// StructShape is a struct's field/associated-item table.
type StructShape struct {
	NameSpan        span.Span
	Name            string
	Fields          []Param
	AssociatedFuncs map[string]AssociatedFunc
	AssociatedLets  map[string]span.Span
}

// EnumVariant is one variant of an enum, itself able to own associated
// items (spec.md §4.2: "Enum -> analogous; each variant can own its own
// associated items").
type EnumVariant struct {
	NameSpan        span.Span
	Name            string
	Fields          []Param // empty for a unit variant
	AssociatedFuncs map[string]AssociatedFunc
	AssociatedLets  map[string]span.Span
}

// EnumShape is an enum's variant table.
type EnumShape struct {
	NameSpan span.Span
	Name     string
	Variants []EnumVariant
}

// Poly is a `#[poly] fn f` declaration plus the impls registered against it
// (spec.md §3, §4.4).
type Poly struct {
	NameSpan       span.Span
	Name           string
	HasDefaultImpl bool
	Impls          []span.Span
}

// Assert is a top-level or block-local `assert` statement.
type Assert struct {
	Span      span.Span
	Condition *Expr
}

func NewStructShape(nameSpan span.Span, name string, fields []Param) *StructShape {
	return &StructShape{
		NameSpan:        nameSpan,
		Name:            name,
		Fields:          fields,
		AssociatedFuncs: make(map[string]AssociatedFunc),
		AssociatedLets:  make(map[string]span.Span),
	}
}

func NewEnumShape(nameSpan span.Span, name string, variants []EnumVariant) *EnumShape {
	for i := range variants {
		if variants[i].AssociatedFuncs == nil {
			variants[i].AssociatedFuncs = make(map[string]AssociatedFunc)
		}
		if variants[i].AssociatedLets == nil {
			variants[i].AssociatedLets = make(map[string]span.Span)
		}
	}
	return &EnumShape{NameSpan: nameSpan, Name: name, Variants: variants}
}

// FindVariant returns the variant named `name`, if any.
func (e *EnumShape) FindVariant(name string) (*EnumVariant, bool) {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i], true
		}
	}
	return nil, false
}
