// Package resolve implements name resolution (spec.md §2 component D, §4.1):
// resolving identifiers to (kind, def_span) across modules, generics,
// locals, pattern bindings, and pipeline variables, then reclassifying
// resolved paths by the syntactic position they appear in.
//
// Grounded on the teacher's internal/symbols (a SymbolTable chained via an
// `outer *SymbolTable` pointer forms the scope stack) and
// original_source/crates/sdg_ast/src/expr/name_resolve.rs.
package resolve

import "github.com/sodigy-lang/sodigyc/internal/span"

// Diagnostic indices for the Name cluster (spec.md §7: 300-400).
const (
	ErrUndefinedName                     = 300
	ErrNameCollisionBlock                = 301
	ErrNameCollisionEnum                 = 302
	ErrNameCollisionFuncParams           = 303
	ErrNameCollisionFuncGenerics         = 304
	ErrNameCollisionPattern              = 305
	ErrNameCollisionStruct               = 306
	ErrCyclicLet                         = 310
	ErrCyclicAlias                       = 311
	ErrAliasResolveRecursionLimitReached = 312
	ErrNotType                           = 320
	ErrNotExpr                           = 321
	ErrNotStructCtor                     = 322
	ErrDifferentNameBindingsInOrPattern  = 330
)

// CollisionKind mirrors spec.md's `NameCollision{kind in {Block{top}, Enum,
// Func{params,generics}, Pattern, Struct}}`.
type CollisionKind int

const (
	CollisionBlock CollisionKind = iota
	CollisionEnum
	CollisionFuncParams
	CollisionFuncGenerics
	CollisionPattern
	CollisionStruct
)

func collisionIndex(k CollisionKind) int {
	switch k {
	case CollisionBlock:
		return ErrNameCollisionBlock
	case CollisionEnum:
		return ErrNameCollisionEnum
	case CollisionFuncParams:
		return ErrNameCollisionFuncParams
	case CollisionFuncGenerics:
		return ErrNameCollisionFuncGenerics
	case CollisionPattern:
		return ErrNameCollisionPattern
	case CollisionStruct:
		return ErrNameCollisionStruct
	default:
		return ErrNameCollisionBlock
	}
}

func errUndefinedName(name string, use span.Span) span.Diagnostic {
	return span.New(ErrUndefinedName, "UndefinedName", "undefined name `"+name+"`", use)
}

func errNameCollision(kind CollisionKind, name string, use, prev span.Span) span.Diagnostic {
	return span.New(collisionIndex(kind), "NameCollision", "`"+name+"` is already defined in this scope", use).
		WithAux(prev).
		WithNote("previous definition here", prev)
}

func errCyclicLet(name string, use span.Span) span.Diagnostic {
	return span.New(ErrCyclicLet, "CyclicLet", "`"+name+"` refers to itself while being defined", use)
}

func errCyclicAlias(name string, use span.Span) span.Diagnostic {
	return span.New(ErrCyclicAlias, "CyclicAlias", "alias `"+name+"` refers to itself", use)
}

func errAliasRecursionLimit(name string, use span.Span) span.Diagnostic {
	return span.New(ErrAliasResolveRecursionLimitReached, "AliasResolveRecursionLimitReached",
		"exceeded the recursion limit while resolving alias `"+name+"`", use)
}

func errNotType(name string, but string, use span.Span) span.Diagnostic {
	return span.New(ErrNotType, "NotType", "`"+name+"` is not a type, it is "+but, use)
}

func errNotExpr(name string, but string, use span.Span) span.Diagnostic {
	return span.New(ErrNotExpr, "NotExpr", "`"+name+"` cannot be used as an expression, it is "+but, use)
}

func errNotStructCtor(name string, but string, use span.Span) span.Diagnostic {
	return span.New(ErrNotStructCtor, "NotStructCtor", "`"+name+"` is not a struct or enum-variant constructor, it is "+but, use)
}

func errDifferentBindings(use span.Span, left, right span.Span) span.Diagnostic {
	return span.New(ErrDifferentNameBindingsInOrPattern, "DifferentNameBindingsInOrPattern",
		"the two sides of an `|` pattern must bind the same names", use).
		WithAux(left).WithAux(right)
}
