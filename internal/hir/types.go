package hir

import (
	"fmt"
	"strings"

	"github.com/sodigy-lang/sodigyc/internal/span"
)

// Purity is the purity annotation a function carries (spec.md §4.3).
type Purity int

const (
	PurityPure Purity = iota
	PurityImpure
	PurityBoth // accepts either side when checked against a call (func types only)
)

func (p Purity) String() string {
	switch p {
	case PurityPure:
		return "pure"
	case PurityImpure:
		return "impure"
	case PurityBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Matches reports whether a callee of purity `callee` may be invoked from a
// context requiring purity `ctx` (spec.md §4.3: "purity annotations must
// match except Both accepts both").
func (ctx Purity) Matches(callee Purity) bool {
	if ctx == PurityBoth || callee == PurityBoth {
		return true
	}
	return ctx == callee
}

// TypeTag discriminates the closed sum of types shared by HIR/MIR
// (spec.md §3 "Type").
type TypeTag int

const (
	TStatic TypeTag = iota
	TGenericDef
	TUnit
	TNever
	TParam
	TFunc
	TVarTag
	TGenericInstance
)

// Type is the sum type shared by HIR and MIR, progressively refined by the
// type solver (internal/types). It is intentionally a plain struct (not an
// interface per variant) so that a Type value can be copied, hashed by
// field comparison, and stored directly in maps without an allocation per
// node — the same flat-table-friendly style the spec's "Entity tables"
// section assumes throughout (spans as identity, no pointer graphs).
type Type struct {
	Tag TypeTag

	// TStatic / TGenericDef: the definition site identifying the struct,
	// enum, or generic parameter this type names.
	DefSpan span.Span

	// TParam: ctor applied to args, e.g. List<Int> = Param{ctor: List, args: [Int]}.
	Ctor *Type
	Args []Type

	// TFunc
	Params  []Type
	Return  *Type
	FuncPur Purity

	// TVar: inference hole.
	IsReturn bool

	// TGenericInstance: a fresh per-call-site instance of a generic param.
	CallSite   span.Span
	GenericDef span.Span
}

// Constructors keep call sites readable and avoid accidental zero-value Tag
// ambiguity (TStatic happens to be the zero value, so every other
// constructor is spelled out explicitly).

func Static(def span.Span) Type { return Type{Tag: TStatic, DefSpan: def} }

func GenericDef(def span.Span) Type { return Type{Tag: TGenericDef, DefSpan: def} }

func Unit() Type { return Type{Tag: TUnit} }

func Never() Type { return Type{Tag: TNever} }

func Param(ctor Type, args ...Type) Type {
	c := ctor
	return Type{Tag: TParam, Ctor: &c, Args: args}
}

// FuncType builds the Type value describing a function's signature (not to
// be confused with the Func entity in entities.go, which is the top-level
// declaration a FuncType is derived from).
func FuncType(params []Type, ret Type, purity Purity) Type {
	r := ret
	return Type{Tag: TFunc, Params: params, Return: &r, FuncPur: purity}
}

func Var(def span.Span, isReturn bool) Type {
	return Type{Tag: TVarTag, DefSpan: def, IsReturn: isReturn}
}

func GenericInstance(callSite, genericDef span.Span) Type {
	return Type{Tag: TGenericInstance, CallSite: callSite, GenericDef: genericDef}
}

// IsVarOrInstance reports whether t is an unsolved inference hole — either
// flavor (spec.md §3 invariant: "after solving, no Var or GenericInstance
// remains in any type reachable from a committed function signature").
func (t Type) IsVarOrInstance() bool {
	return t.Tag == TVarTag || t.Tag == TGenericInstance
}

// FindVar returns the span of the first Var/GenericInstance reachable from
// t in a deterministic (params-left-to-right, then return) order, or
// span.None if t is fully solved.
func (t Type) FindVar() span.Span {
	switch t.Tag {
	case TVarTag:
		return t.DefSpan
	case TGenericInstance:
		return t.CallSite
	case TParam:
		if t.Ctor != nil {
			if s := t.Ctor.FindVar(); !s.IsNone() {
				return s
			}
		}
		for _, a := range t.Args {
			if s := a.FindVar(); !s.IsNone() {
				return s
			}
		}
	case TFunc:
		for _, p := range t.Params {
			if s := p.FindVar(); !s.IsNone() {
				return s
			}
		}
		if t.Return != nil {
			return t.Return.FindVar()
		}
	}
	return span.None
}

func (t Type) String() string {
	switch t.Tag {
	case TStatic:
		return fmt.Sprintf("Static(%v)", t.DefSpan)
	case TGenericDef:
		return fmt.Sprintf("GenericDef(%v)", t.DefSpan)
	case TUnit:
		return "Unit"
	case TNever:
		return "Never"
	case TParam:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		ctor := "?"
		if t.Ctor != nil {
			ctor = t.Ctor.String()
		}
		return fmt.Sprintf("%s<%s>", ctor, strings.Join(args, ", "))
	case TFunc:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.String()
		}
		ret := "?"
		if t.Return != nil {
			ret = t.Return.String()
		}
		prefix := ""
		if t.FuncPur == PurityImpure {
			prefix = "impure "
		}
		return fmt.Sprintf("%sfn(%s) -> %s", prefix, strings.Join(params, ", "), ret)
	case TVarTag:
		return fmt.Sprintf("Var(%v)", t.DefSpan)
	case TGenericInstance:
		return fmt.Sprintf("GenericInstance(%v@%v)", t.GenericDef, t.CallSite)
	default:
		return "<invalid type>"
	}
}
