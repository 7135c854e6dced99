package resolve

import (
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

const maxAliasRecursion = 64

// ModuleSymbol is an entry of the module-level symbol table the resolver
// falls back to once the scope stack is exhausted (spec.md §4.1: "if the
// name is not in any scope, it falls back to the module symbol table,
// otherwise reports UndefinedName").
type ModuleSymbol struct {
	Origin hir.NameOrigin
	Def    span.Span
}

// Resolver walks HIR expressions/patterns with unresolved Identifier nodes
// and annotates each with a NameOrigin and def_span (spec.md §4.1 contract).
type Resolver struct {
	module      map[string]ModuleSymbol
	diagnostics []span.Diagnostic

	// aliasDepth is not read anywhere; ResolveAlias bounds alias chains
	// with a seen set and maxAliasRecursion.
	aliasDepth int
}

// New builds a Resolver over the given module symbol table.
func New(module map[string]ModuleSymbol) *Resolver {
	if module == nil {
		module = map[string]ModuleSymbol{}
	}
	return &Resolver{module: module}
}

// Diagnostics returns every diagnostic collected so far.
func (r *Resolver) Diagnostics() []span.Diagnostic {
	return r.diagnostics
}

func (r *Resolver) report(d span.Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

// Resolve looks a bare name up through scope (innermost first), then falls
// back to the module table, reporting UndefinedName if neither has it.
func (r *Resolver) Resolve(scope *Scope, name string, use span.Span) hir.NameOrigin {
	if origin, ok := scope.Lookup(name); ok {
		return origin
	}
	if sym, ok := r.module[name]; ok {
		return sym.Origin
	}
	r.report(errUndefinedName(name, use))
	return hir.External() // External is never IsType/IsExpr/IsStructCtor
}

// ResolveExpr annotates every EIdent reachable from e, recursing through
// compound expressions and opening/closing scopes for EBlock and EMatch
// arms. It mutates e.Origin fields in place; an identifier that cannot be
// resolved gets an External origin (only that ident's own origin, not the
// whole subtree, so later passes keep working on the rest of the block).
func (r *Resolver) ResolveExpr(scope *Scope, e *hir.Expr) {
	if e == nil {
		return
	}
	switch e.Tag {
	case hir.EIdent:
		e.Origin = r.Resolve(scope, e.Name, e.Span)

	case hir.EIf:
		r.ResolveExpr(scope, e.Cond)
		r.ResolveExpr(scope, e.Then)
		r.ResolveExpr(scope, e.Else)

	case hir.EBlock:
		r.ResolveBlock(scope, e)

	case hir.EField:
		r.ResolveExpr(scope, e.Base)

	case hir.ECall:
		r.ResolveExpr(scope, e.Func)
		for _, a := range e.Args {
			r.ResolveExpr(scope, a)
		}

	case hir.EMatch:
		r.ResolveExpr(scope, e.Scrutinee)
		for i := range e.Arms {
			arm := &e.Arms[i]
			patScope := NewScope(scope, ScopePattern)
			r.ResolvePattern(patScope, arm.Pattern)
			if arm.Guard != nil {
				r.ResolveExpr(patScope, arm.Guard)
			}
			r.ResolveExpr(patScope, arm.Body)
		}

	case hir.ETuple, hir.EList:
		for _, el := range e.Elems {
			r.ResolveExpr(scope, el)
		}

	case hir.EStructLit:
		for _, f := range e.SFields {
			r.ResolveExpr(scope, f.Value)
		}

	case hir.EInfixOp:
		r.ResolveExpr(scope, e.Left)
		r.ResolveExpr(scope, e.Right)
	}
}

// ResolveBlock opens a child scope, binds every local let BEFORE resolving
// any let's value, then resolves asserts and the final value. Pre-binding
// every name up front is what lets mutually- and self-recursive local
// functions resolve their own (and each other's) names inside their bodies
// — the open question flagged in spec.md §9 ("closure/recursive-closure
// resolution"), decided per original_source's
// resolve_recursive_lambdas_in_block.rs: bind first, resolve bodies second.
func (r *Resolver) ResolveBlock(outer *Scope, block *hir.Expr) {
	inner := NewScope(outer, ScopeBlock)

	for _, l := range block.Lets {
		origin := hir.LocalLet(l.NameSpan, false)
		if d := inner.Define(l.Name, origin, l.NameSpan); d != nil {
			r.report(*d)
		}
		l.Origin = origin
	}

	for _, l := range block.Lets {
		r.ResolveExpr(inner, l.Value)
	}
	for _, a := range block.Asserts {
		r.ResolveExpr(inner, a.Condition)
	}
	r.ResolveExpr(inner, block.Value)
}

// ResolvePattern annotates a pattern's name bindings and recurses into
// sub-patterns. Or-patterns must bind identical name sets on both sides;
// violations are reported but resolution continues using the left side's
// bindings so the arm body still resolves.
func (r *Resolver) ResolvePattern(scope *Scope, p *hir.Pattern) {
	if p == nil {
		return
	}
	if p.NameBind != "" {
		origin := hir.Local(hir.KindPatternNameBind, p.Span)
		if d := scope.Define(p.NameBind, origin, p.Span); d != nil {
			r.report(*d)
		}
		p.Origin = origin
	}

	switch p.Tag {
	case hir.PTupleStruct, hir.PTuple, hir.PList:
		for _, e := range p.Elems {
			r.ResolvePattern(scope, e)
		}
	case hir.PStruct:
		for _, f := range p.Fields {
			r.ResolvePattern(scope, f.Pattern)
		}
	case hir.POr:
		leftNames := p.Left.CollectBindings()
		rightNames := p.Right.CollectBindings()
		r.ResolvePattern(scope, p.Left)
		r.ResolvePattern(NewScope(scope, ScopePattern), p.Right)
		if !sameNameSet(leftNames, rightNames) {
			r.report(errDifferentBindings(p.Span, p.Left.Span, p.Right.Span))
		}
	case hir.PInfixOp:
		r.ResolvePattern(scope, p.Left)
		r.ResolvePattern(scope, p.Right)
	case hir.PPath, hir.PIdentifier:
		// Resolved by the caller via ClassifyStructCtor/ClassifyType once
		// the surrounding position (expr/type/struct-ctor) is known.
	}
}

func sameNameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, n := range a {
		seen[n]++
	}
	for _, n := range b {
		seen[n]--
	}
	for _, c := range seen {
		if c != 0 {
			return false
		}
	}
	return true
}

// ClassifyType reclassifies a resolved origin used in a type position
// (spec.md §4.1 "Path classification").
func (r *Resolver) ClassifyType(name string, origin hir.NameOrigin, use span.Span) bool {
	if origin.IsType() {
		return true
	}
	r.report(errNotType(name, originDescription(origin), use))
	return false
}

// ClassifyExpr reclassifies a resolved origin used in an expression
// position.
func (r *Resolver) ClassifyExpr(name string, origin hir.NameOrigin, use span.Span) bool {
	if origin.IsExpr() {
		return true
	}
	r.report(errNotExpr(name, originDescription(origin), use))
	return false
}

// ClassifyStructCtor reclassifies a resolved origin used in a
// struct-constructor position. Per spec.md §4.1, the compiler cannot yet
// decide whether an EnumVariant has fields here; that precise error is
// deferred to the associated-item / inter-HIR stage.
func (r *Resolver) ClassifyStructCtor(name string, origin hir.NameOrigin, use span.Span) bool {
	if origin.IsStructCtor() {
		return true
	}
	r.report(errNotStructCtor(name, originDescription(origin), use))
	return false
}

func originDescription(o hir.NameOrigin) string {
	switch o.Tag {
	case hir.OriginFuncParam:
		return "a function parameter"
	case hir.OriginGenericParam:
		return "a generic parameter"
	case hir.OriginExternal:
		return "undefined"
	default:
		return "a " + o.Kind.String()
	}
}
