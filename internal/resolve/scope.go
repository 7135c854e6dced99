package resolve

import (
	"sort"

	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// ScopeKind labels what a scope frame was opened for, purely so
// collision-reporting can pick the right CollisionKind.
type ScopeKind int

const (
	ScopeBlock ScopeKind = iota
	ScopeFuncParams
	ScopeFuncGenerics
	ScopePattern
	ScopeEnum
	ScopeStruct
)

// binder is one name bound within a single scope frame.
type binder struct {
	origin hir.NameOrigin
	def    span.Span
}

// Scope is one frame of the scope stack: block-local lets, function params,
// generics, match-pattern bindings, or pipeline variables (spec.md §4.1).
type Scope struct {
	outer   *Scope
	kind    ScopeKind
	isTop   bool // for ScopeBlock: spec.md's Block{top}
	binders map[string]binder
}

// NewScope opens a child scope under outer (outer may be nil for the
// module's outermost scope).
func NewScope(outer *Scope, kind ScopeKind) *Scope {
	return &Scope{outer: outer, kind: kind, binders: make(map[string]binder)}
}

func (s *Scope) collisionKind() CollisionKind {
	switch s.kind {
	case ScopeFuncParams:
		return CollisionFuncParams
	case ScopeFuncGenerics:
		return CollisionFuncGenerics
	case ScopePattern:
		return CollisionPattern
	case ScopeEnum:
		return CollisionEnum
	case ScopeStruct:
		return CollisionStruct
	default:
		return CollisionBlock
	}
}

// Define binds name -> origin in this scope frame. If name is already bound
// in THIS frame (not an outer one — shadowing an outer binding is legal),
// it reports a collision diagnostic and keeps the first definition.
func (s *Scope) Define(name string, origin hir.NameOrigin, def span.Span) *span.Diagnostic {
	if prev, ok := s.binders[name]; ok {
		d := errNameCollision(s.collisionKind(), name, def, prev.def)
		return &d
	}
	s.binders[name] = binder{origin: origin, def: def}
	return nil
}

// Lookup walks outward from s looking for name, returning the innermost
// binder (spec.md §4.1: "returns the innermost binder").
func (s *Scope) Lookup(name string) (hir.NameOrigin, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if b, ok := sc.binders[name]; ok {
			return b.origin, true
		}
	}
	return hir.NameOrigin{}, false
}

// Names returns every name bound directly in this frame, sorted for
// deterministic iteration (used by debug dumps).
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.binders))
	for n := range s.binders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
