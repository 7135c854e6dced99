package poly

import "github.com/sodigy-lang/sodigyc/internal/hir"
import "github.com/sodigy-lang/sodigyc/internal/span"

// FuncType is the (params, return) shape the poly solver reasons about,
// independent of the full hir.Func entity (spec.md §4.4 step 1).
type FuncType struct {
	Params []hir.Type
	Return hir.Type
}

// ReturnParamIndex is the sentinel FindTypeVar/diagnostics use to mean
// "the return type", since -1 can't collide with a real parameter index.
const ReturnParamIndex = -1

// FindTypeVar returns the index of the first param (or ReturnParamIndex
// for the return type) that still contains an unresolved Var/
// GenericInstance, in left-to-right, params-then-return order. ok is
// false when the whole signature is fully concrete.
func (ft FuncType) FindTypeVar() (index int, ok bool) {
	for i, p := range ft.Params {
		if !p.FindVar().IsNone() {
			return i, true
		}
	}
	if !ft.Return.FindVar().IsNone() {
		return ReturnParamIndex, true
	}
	return 0, false
}

// GenericsToTypeVars rewrites every GenericDef reachable from ft into a
// Var keyed by the same def_span, so a poly's own `T`/`U` parameters
// become inference holes the solver can bind while checking each impl
// against the poly signature (spec.md: "poly_type.generics_to_type_vars()").
func (ft FuncType) GenericsToTypeVars() FuncType {
	out := FuncType{Params: make([]hir.Type, len(ft.Params))}
	for i, p := range ft.Params {
		out.Params[i] = genericToVar(p)
	}
	out.Return = genericToVar(ft.Return)
	return out
}

func genericToVar(t hir.Type) hir.Type {
	switch t.Tag {
	case hir.TGenericDef:
		return hir.Var(t.DefSpan, false)
	case hir.TParam:
		out := t
		if t.Ctor != nil {
			c := genericToVar(*t.Ctor)
			out.Ctor = &c
		}
		if len(t.Args) > 0 {
			args := make([]hir.Type, len(t.Args))
			for i, a := range t.Args {
				args[i] = genericToVar(a)
			}
			out.Args = args
		}
		return out
	case hir.TFunc:
		out := t
		if len(t.Params) > 0 {
			params := make([]hir.Type, len(t.Params))
			for i, p := range t.Params {
				params[i] = genericToVar(p)
			}
			out.Params = params
		}
		if t.Return != nil {
			r := genericToVar(*t.Return)
			out.Return = &r
		}
		return out
	default:
		return t
	}
}

// genericParamSpans lists the def_spans of a poly's own generic
// parameters, in declaration order (the `T`, `U` of `fn add<T, U>`).
func genericParamSpans(generics []hir.GenericParamDecl) []span.Span {
	out := make([]span.Span, len(generics))
	for i, g := range generics {
		out[i] = g.DefSpan
	}
	return out
}
