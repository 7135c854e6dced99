package assoc

import (
	"fmt"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// ReceiverHead classifies the resolved head of an `impl T.m` type path
// (spec.md §4.2).
type ReceiverHead int

const (
	HeadStruct ReceiverHead = iota
	HeadEnum
	HeadEnumVariant
	HeadTuple
	HeadFunc
	HeadNever
	HeadWildcardOrGeneric
)

// Item is an `impl T.m` member being attached: either a function or a let.
type Item struct {
	Name    string
	IsFunc  bool
	Arity   int
	Purity  hir.Purity
	Site    span.Span
	VariantName string // set when Head == HeadEnumVariant
}

// Tables is the subset of Session entity tables the resolver mutates.
type Tables struct {
	Structs map[span.Span]*hir.StructShape
	Enums   map[span.Span]*hir.EnumShape
}

// Resolver attaches associated items to shapes and synthesizes poly
// skeletons for every associated function it registers.
type Resolver struct {
	tables      Tables
	diagnostics []span.Diagnostic

	// Synthesized records every poly skeleton minted so far, keyed by the
	// synthetic name, so the caller (internal/session) can register them
	// into Session.Funcs/Polys.
	Synthesized []SynthesizedPoly
}

// SynthesizedPoly is a poly skeleton manufactured for one associated
// function (spec.md §4.2).
type SynthesizedPoly struct {
	Poly hir.Poly
	Func hir.Func
}

func New(tables Tables) *Resolver {
	return &Resolver{tables: tables}
}

func (r *Resolver) Diagnostics() []span.Diagnostic { return r.diagnostics }

func (r *Resolver) report(d span.Diagnostic) { r.diagnostics = append(r.diagnostics, d) }

// Attach attaches item to the shape named by head/targetStruct/targetEnum
// (exactly one of which is meaningful depending on head), reporting
// CannotAssociateItem / TooGeneralToAssociateItem / collisions as needed.
// On success it also synthesizes the poly skeleton described in spec.md
// §4.2 for function items.
func (r *Resolver) Attach(head ReceiverHead, targetStruct *hir.StructShape, targetEnum *hir.EnumShape, item Item) {
	switch head {
	case HeadStruct:
		r.attachToStruct(targetStruct, item)
	case HeadEnum, HeadEnumVariant:
		// spec.md §4.2: "Enum -> analogous; each variant can own its own
		// associated items." `impl Enum.m` with no variant qualifier
		// attaches to every variant uniformly; `impl Enum.Variant.m`
		// attaches to just that one.
		if head == HeadEnumVariant {
			v, ok := targetEnum.FindVariant(item.VariantName)
			if !ok {
				r.report(errCannotAssociate(fmt.Sprintf("unknown variant %q", item.VariantName), item.Site))
				return
			}
			r.attachFuncOrLet(&enumVariantShape{v}, item)
			return
		}
		for i := range targetEnum.Variants {
			r.attachFuncOrLet(&enumVariantShape{&targetEnum.Variants[i]}, item)
		}
	case HeadTuple:
		r.report(errCannotAssociate("a tuple type", item.Site))
	case HeadFunc:
		r.report(errCannotAssociate("a function type", item.Site))
	case HeadNever:
		r.report(errCannotAssociate("the Never type", item.Site))
	case HeadWildcardOrGeneric:
		r.report(errTooGeneral(item.Site))
	}
}

// attachTarget is the minimal surface both StructShape and EnumVariant
// satisfy, letting attachFuncOrLet treat them uniformly.
type attachTarget interface {
	funcs() map[string]hir.AssociatedFunc
	lets() map[string]span.Span
}

type enumVariantShape struct{ v *hir.EnumVariant }

func (s *enumVariantShape) funcs() map[string]hir.AssociatedFunc { return s.v.AssociatedFuncs }
func (s *enumVariantShape) lets() map[string]span.Span           { return s.v.AssociatedLets }

func (r *Resolver) attachToStruct(s *hir.StructShape, item Item) {
	r.attachFuncOrLet(structTarget{s}, item)
}

type structTarget struct{ s *hir.StructShape }

func (t structTarget) funcs() map[string]hir.AssociatedFunc { return t.s.AssociatedFuncs }
func (t structTarget) lets() map[string]span.Span           { return t.s.AssociatedLets }

func (r *Resolver) attachFuncOrLet(target attachTarget, item Item) {
	funcs := target.funcs()
	lets := target.lets()

	if !item.IsFunc {
		if prev, ok := funcs[item.Name]; ok {
			r.report(errLetVsFunc(item.Name, item.Site, prev.Sites[0]))
			return
		}
		if _, ok := lets[item.Name]; ok {
			// Re-defining the same let is a collision too, but spec.md
			// only names func-vs-let/field-vs-func explicitly; treat a
			// let/let clash the same as a func/func clash.
			r.report(errAssocCollision(item.Name, item.Site, lets[item.Name]))
			return
		}
		lets[item.Name] = item.Site
		return
	}

	if _, ok := lets[item.Name]; ok {
		r.report(errLetVsFunc(item.Name, item.Site, lets[item.Name]))
		return
	}
	if prev, ok := funcs[item.Name]; ok {
		if prev.Arity == item.Arity && prev.Purity == item.Purity {
			r.report(errAssocCollision(item.Name, item.Site, prev.Sites[0]))
			return
		}
		// Different (arity, purity): spec.md distinguishes overloads by
		// (kind, arity, purity), so this is a second, distinct overload of
		// the same associated name.
		prev.Sites = append(prev.Sites, item.Site)
		funcs[item.Name] = prev
		r.synthesizePoly(item)
		return
	}
	funcs[item.Name] = hir.AssociatedFunc{Arity: item.Arity, Purity: item.Purity, Sites: []span.Span{item.Site}}
	r.synthesizePoly(item)
}

// synthesizePoly manufactures the helper poly described in spec.md §4.2:
//
//	Name:      associated_func::{item}::{pure|impure}::{arity}
//	Generics:  T0..T(n-1), V
//	Signature: fn(p0: T0, ..., p(n-1): T(n-1)) -> V
//
// and pushes `item.Site` onto that poly's impl list, so every method
// dispatch — regardless of the receiver's concrete shape — goes through
// the same poly-dispatch code path (internal/poly).
func (r *Resolver) synthesizePoly(item Item) {
	purityTag := "pure"
	if item.Purity == hir.PurityImpure {
		purityTag = "impure"
	}
	polyName := fmt.Sprintf("associated_func::%s::%s::%d", item.Name, purityTag, item.Arity)
	polySpan := span.NewPolyName(polyName)

	generics := make([]hir.GenericParamDecl, item.Arity+1)
	params := make([]hir.Param, item.Arity)
	for i := 0; i < item.Arity; i++ {
		gname := fmt.Sprintf("T%d", i)
		gspan := span.NewPolyParam(polyName, i)
		generics[i] = hir.GenericParamDecl{Name: gname, DefSpan: gspan}
		params[i] = hir.Param{Name: fmt.Sprintf("p%d", i), DefSpan: gspan, Type: hir.GenericDef(gspan)}
	}
	retSpan := span.NewPolyReturn(polyName)
	generics[item.Arity] = hir.GenericParamDecl{Name: "V", DefSpan: retSpan}

	skeleton := SynthesizedPoly{
		Poly: hir.Poly{NameSpan: polySpan, Name: polyName, Impls: []span.Span{item.Site}},
		Func: hir.Func{
			NameSpan: polySpan,
			Name:     polyName,
			Purity:   item.Purity,
			Generics: generics,
			Params:   params,
			Return:   hir.GenericDef(retSpan),
			Attrs:    hir.Attrs{IsPoly: true},
		},
	}

	// If this poly skeleton already exists (the same associated
	// name/purity/arity attached to another shape or enum variant), just
	// extend its impl list instead of minting a duplicate.
	for i := range r.Synthesized {
		if r.Synthesized[i].Poly.Name == polyName {
			r.Synthesized[i].Poly.Impls = append(r.Synthesized[i].Poly.Impls, item.Site)
			return
		}
	}
	r.Synthesized = append(r.Synthesized, skeleton)
}
