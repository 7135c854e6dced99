// Package hir implements the typed AST with resolved visibility and
// attributes (spec.md §2 component C, §3 "Name origin" / "Type" /
// "Entity tables" / "Pattern").
//
// Grounded on the teacher's internal/ast/ast_core.go (plain-struct node
// style, no separate lexer-facing token wrapper needed once past parsing)
// and original_source/crates/hir/src/attribute.rs (the Attrs bag carried by
// every entity).
package hir

import "github.com/sodigy-lang/sodigyc/internal/span"

// OriginKind is the `kind` tag of a Local/Foreign name origin
// (spec.md §3 "Name origin").
type OriginKind int

const (
	KindLet OriginKind = iota
	KindFunc
	KindEnumVariant
	KindAlias
	KindUse
	KindFuncParam
	KindGenericParam
	KindPatternNameBind
	KindPipeline
	KindStruct
	KindEnum
	KindModule
)

func (k OriginKind) String() string {
	switch k {
	case KindLet:
		return "Let"
	case KindFunc:
		return "Func"
	case KindEnumVariant:
		return "EnumVariant"
	case KindAlias:
		return "Alias"
	case KindUse:
		return "Use"
	case KindFuncParam:
		return "FuncParam"
	case KindGenericParam:
		return "GenericParam"
	case KindPatternNameBind:
		return "PatternNameBind"
	case KindPipeline:
		return "Pipeline"
	case KindStruct:
		return "Struct"
	case KindEnum:
		return "Enum"
	case KindModule:
		return "Module"
	default:
		return "Unknown"
	}
}

// OriginTag distinguishes the five top-level shapes of NameOrigin.
type OriginTag int

const (
	OriginLocal OriginTag = iota
	OriginForeign
	OriginFuncParam
	OriginGenericParam
	OriginExternal
)

// NameOrigin is the tagged variant attached to every resolved identifier
// (spec.md §3 "Name origin", §4.1).
type NameOrigin struct {
	Tag OriginTag

	// Local{kind} / Foreign{kind}
	Kind OriginKind

	// FuncParam{idx} / GenericParam{idx}
	Idx int

	// Foreign carries the owning module path for import tracking.
	ModulePath string

	// DefSpan is the identity of the binder this name resolved to.
	DefSpan span.Span

	// IsTopLevel applies only when Kind == KindLet: Local{Let{is_top_level}}.
	IsTopLevel bool
}

func Local(kind OriginKind, def span.Span) NameOrigin {
	return NameOrigin{Tag: OriginLocal, Kind: kind, DefSpan: def}
}

func LocalLet(def span.Span, isTopLevel bool) NameOrigin {
	return NameOrigin{Tag: OriginLocal, Kind: KindLet, DefSpan: def, IsTopLevel: isTopLevel}
}

func Foreign(kind OriginKind, def span.Span, modulePath string) NameOrigin {
	return NameOrigin{Tag: OriginForeign, Kind: kind, DefSpan: def, ModulePath: modulePath}
}

func FuncParam(idx int, def span.Span) NameOrigin {
	return NameOrigin{Tag: OriginFuncParam, Idx: idx, DefSpan: def}
}

func GenericParam(idx int, def span.Span) NameOrigin {
	return NameOrigin{Tag: OriginGenericParam, Idx: idx, DefSpan: def}
}

func External() NameOrigin {
	return NameOrigin{Tag: OriginExternal}
}

// IsType reports whether this origin is legal in a type position
// (spec.md §4.1 path classification): Struct | Enum | GenericParam.
func (o NameOrigin) IsType() bool {
	if o.Tag == OriginGenericParam {
		return true
	}
	return o.Tag == OriginLocal && (o.Kind == KindStruct || o.Kind == KindEnum) ||
		o.Tag == OriginForeign && (o.Kind == KindStruct || o.Kind == KindEnum)
}

// IsExpr reports whether this origin is legal in an expression position:
// Let | Func | EnumVariant | FuncParam | PatternNameBind | Pipeline.
func (o NameOrigin) IsExpr() bool {
	if o.Tag == OriginFuncParam {
		return true
	}
	switch o.Kind {
	case KindLet, KindFunc, KindEnumVariant, KindFuncParam, KindPatternNameBind, KindPipeline:
		return o.Tag == OriginLocal || o.Tag == OriginForeign
	default:
		return false
	}
}

// IsStructCtor reports whether this origin is legal where a struct
// constructor is expected: Struct | EnumVariant.
func (o NameOrigin) IsStructCtor() bool {
	switch o.Kind {
	case KindStruct, KindEnumVariant:
		return o.Tag == OriginLocal || o.Tag == OriginForeign
	default:
		return false
	}
}
