// Package assoc implements the associated-item resolver (spec.md §2
// component E, §4.2): attaching `impl T.m` methods/fields to the struct or
// enum shape `T` names, and synthesizing the helper poly skeleton that
// routes every method dispatch through the poly machinery.
//
// Grounded on the teacher's internal/analyzer/declarations_instances_core.go
// (resolving an impl's receiver type head before attaching members) and
// original_source/crates/inter-hir/src/assoc.rs.
package assoc

import "github.com/sodigy-lang/sodigyc/internal/span"

const (
	ErrCannotAssociateItem     = 340
	ErrTooGeneralToAssociate   = 341
	ErrAssocNameCollision      = 342
	ErrAssocLetVsFunc          = 343
	ErrAssocFieldVsFunc        = 344
)

func errCannotAssociate(headDescr string, use span.Span) span.Diagnostic {
	return span.New(ErrCannotAssociateItem, "CannotAssociateItem",
		"cannot attach an associated item to "+headDescr, use)
}

func errTooGeneral(use span.Span) span.Diagnostic {
	return span.New(ErrTooGeneralToAssociate, "TooGeneralToAssociateItem",
		"the receiver type is too general to attach an associated item to", use)
}

func errAssocCollision(name string, use, prev span.Span) span.Diagnostic {
	return span.New(ErrAssocNameCollision, "NameCollision",
		"`"+name+"` is already associated with this shape with the same arity and purity", use).
		WithAux(prev).WithNote("previous definition here", prev)
}

func errLetVsFunc(name string, use, prev span.Span) span.Diagnostic {
	return span.New(ErrAssocLetVsFunc, "NameCollision",
		"`"+name+"` is defined both as an associated let and an associated func", use).
		WithAux(prev)
}

func errFieldVsFunc(name string, use, prev span.Span) span.Diagnostic {
	return span.New(ErrAssocFieldVsFunc, "NameCollision",
		"`"+name+"` is defined both as a field and an associated func", use).
		WithAux(prev)
}
