package poly

import (
	"fmt"

	"github.com/sodigy-lang/sodigyc/internal/span"
)

// Diagnostic indices, still within the Type cluster (spec.md §7: 400-470
// "poly specialization failure").
const (
	ErrCannotInferPolyGenericParam = 460
	ErrCannotInferPolyGenericImpl  = 461
	ErrPolyImplParamCountMismatch  = 462
	ErrCannotImplPoly              = 463
	ErrCannotSpecializePolyGeneric = 464
)

func errCannotInferPolyParam(paramIndex int, polySpan span.Span) span.Diagnostic {
	return span.New(ErrCannotInferPolyGenericParam, "CannotInferPolyGenericParam",
		fmt.Sprintf("cannot infer the type of parameter %d of this poly's own signature", paramIndex), polySpan)
}

func errCannotInferPolyImpl(paramIndex int, polySpan, implSpan span.Span) span.Diagnostic {
	return span.New(ErrCannotInferPolyGenericImpl, "CannotInferPolyGenericImpl",
		fmt.Sprintf("cannot infer the type of parameter %d of this impl", paramIndex), implSpan).
		WithAux(polySpan)
}

func errParamCountMismatch(polyParams, implParams int, polySpan, implSpan span.Span) span.Diagnostic {
	return span.New(ErrPolyImplParamCountMismatch, "PolyImplDifferentNumberOfParams",
		fmt.Sprintf("this impl has %d parameter(s), the poly it implements has %d", implParams, polyParams), implSpan).
		WithAux(polySpan)
}

func errCannotImplPoly(paramIndex int, polySpan, implSpan span.Span) span.Diagnostic {
	return span.New(ErrCannotImplPoly, "CannotImplPoly",
		fmt.Sprintf("parameter %d of this impl is not a valid specialization of the poly's signature", paramIndex), implSpan).
		WithAux(polySpan)
}

func errCannotSpecialize(numCandidates int, use span.Span) span.Diagnostic {
	return span.New(ErrCannotSpecializePolyGeneric, "CannotSpecializePolyGeneric",
		fmt.Sprintf("this call matches %d impls of the poly; only one is allowed", numCandidates), use)
}
