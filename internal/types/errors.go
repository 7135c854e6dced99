// Package types implements the type solver (spec.md §2 component F, §4.3):
// unification over hir.Type, per-call-site generic instantiation, and
// purity propagation.
//
// Grounded on the teacher's internal/typesystem (an interface-per-variant
// Type plus a recursive co-inductive Unify and a Subst map) redesigned
// around spec.md's own closed Type sum type (hir.Type) instead of the
// teacher's open TCon/TApp/TRecord/TUnion hierarchy.
package types

import "github.com/sodigy-lang/sodigyc/internal/span"

// Diagnostic indices for the Type cluster (spec.md §7: 400-470).
const (
	ErrUnexpectedType            = 400
	ErrCannotInferType            = 401
	ErrPartiallyInferedType       = 402
	ErrCannotInferGenericType     = 403
	ErrPartiallyInferedGenericType = 404
	ErrCannotApplyInfixOp         = 405
	ErrUnexpectedPurity           = 406
	ErrWrongNumberOfArguments     = 407
	ErrImpureCallInPureContext    = 408
	ErrCannotImplPoly             = 409
	ErrPolySignatureNotInferred   = 410

	WarnNoImpureCallInImpureContext = 5400
)

// ErrorContext names the surrounding construct a solve_supertype call is
// checking, so the (external) renderer can attach a precise note, e.g.
// "all arms of a match must have the same type" (spec.md §4.3).
type ErrorContext struct {
	Description string
	// InferedAgain is set when a Var already had a different solution
	// (spec.md: "If inserting a different T' later, emit UnexpectedType
	// with ErrorContext::InferedAgain{type_var}").
	InferedAgain bool
	TypeVar      span.Span
}

func Ctx(description string) ErrorContext {
	return ErrorContext{Description: description}
}

func ctxInferedAgain(tv span.Span) ErrorContext {
	return ErrorContext{Description: "a type variable was solved twice with different types", InferedAgain: true, TypeVar: tv}
}

func errUnexpectedType(expected, got string, ctx ErrorContext, use span.Span) span.Diagnostic {
	msg := "expected " + expected + ", got " + got
	if ctx.Description != "" {
		msg += " (" + ctx.Description + ")"
	}
	d := span.New(ErrUnexpectedType, "UnexpectedType", msg, use)
	if ctx.InferedAgain {
		d = d.WithAux(ctx.TypeVar).WithNote("this type variable was already solved to something else", ctx.TypeVar)
	}
	return d
}

func errCannotInferType(use span.Span) span.Diagnostic {
	return span.New(ErrCannotInferType, "CannotInferType", "cannot infer the type of this expression", use)
}

func errWrongNumberOfArguments(expected, got int, use span.Span) span.Diagnostic {
	return span.New(ErrWrongNumberOfArguments, "WrongNumberOfArguments",
		"wrong number of arguments", use)
}

func errCannotApplyInfixOp(op string, lhs, rhs string, use span.Span) span.Diagnostic {
	return span.New(ErrCannotApplyInfixOp, "CannotApplyInfixOp",
		"cannot apply `"+op+"` to "+lhs+" and "+rhs, use)
}

func errUnexpectedPurity(expected, got string, use span.Span) span.Diagnostic {
	return span.New(ErrUnexpectedPurity, "UnexpectedPurity",
		"expected a "+expected+" function, got a "+got+" one", use)
}

func errImpureCallInPureContext(use span.Span) span.Diagnostic {
	return span.New(ErrImpureCallInPureContext, "ImpureCallInPureContext",
		"an impure function cannot be called from a pure context", use)
}

func warnNoImpureCall(use span.Span) span.Diagnostic {
	return span.New(WarnNoImpureCallInImpureContext, "NoImpureCallInImpureContext",
		"this function is marked impure but never calls an impure function", use)
}

func errCannotImplPoly(paramIndex int, use span.Span) span.Diagnostic {
	return span.New(ErrCannotImplPoly, "CannotImplPoly",
		"this impl's signature does not match the poly it implements", use)
}

func errPolyNotInferred(use span.Span) span.Diagnostic {
	return span.New(ErrPolySignatureNotInferred, "PolySignatureNotFullyInferred",
		"the poly's own signature still has an unresolved type", use)
}
