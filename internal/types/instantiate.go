package types

import "github.com/sodigy-lang/sodigyc/internal/hir"
import "github.com/sodigy-lang/sodigyc/internal/span"

// Instantiate replaces every GenericDef reachable from t with a fresh
// GenericInstance tied to callSite, so two calls to the same generic
// function get independently-solved type arguments (spec.md §4.3
// "per-call-site instantiation"). Non-generic parts of t pass through
// unchanged.
func Instantiate(t hir.Type, callSite span.Span) hir.Type {
	switch t.Tag {
	case hir.TGenericDef:
		return hir.GenericInstance(callSite, t.DefSpan)
	case hir.TParam:
		out := t
		if t.Ctor != nil {
			c := Instantiate(*t.Ctor, callSite)
			out.Ctor = &c
		}
		if len(t.Args) > 0 {
			args := make([]hir.Type, len(t.Args))
			for i, a := range t.Args {
				args[i] = Instantiate(a, callSite)
			}
			out.Args = args
		}
		return out
	case hir.TFunc:
		out := t
		if len(t.Params) > 0 {
			params := make([]hir.Type, len(t.Params))
			for i, p := range t.Params {
				params[i] = Instantiate(p, callSite)
			}
			out.Params = params
		}
		if t.Return != nil {
			r := Instantiate(*t.Return, callSite)
			out.Return = &r
		}
		return out
	default:
		return t
	}
}

// CheckCall validates a call's argument types against a (possibly
// generic) callee signature, instantiating generics at callSite first,
// then running solve_supertype parameter-by-parameter and returning the
// instantiated, as-yet-unsolved return type; diagnostics are reported
// through s (spec.md §4.3 "function application").
func (s *Solver) CheckCall(callee hir.Type, args []hir.Type, callSite span.Span) hir.Type {
	inst := Instantiate(callee, callSite)
	if inst.Tag != hir.TFunc {
		s.report(errCannotApplyInfixOp("()", inst.String(), "", callSite))
		return hir.Never()
	}
	if len(inst.Params) != len(args) {
		s.report(errWrongNumberOfArguments(len(inst.Params), len(args), callSite))
		return hir.Never()
	}
	for i, p := range inst.Params {
		s.SolveSupertype(p, args[i], Ctx("argument type"), callSite)
	}
	if inst.Return == nil {
		return hir.Unit()
	}
	return *inst.Return
}

// CheckPurity reports ImpureCallInPureContext when an impure callee is
// invoked from a pure caller (spec.md §4.3). It does not itself track
// "did this impure function ever call anything impure" — that
// bookkeeping belongs to the caller (internal/session), which calls
// NoImpureCallWarning once per function body after walking it.
func CheckPurity(callerPurity, calleePurity hir.Purity, callSite span.Span) *span.Diagnostic {
	if callerPurity == hir.PurityPure && calleePurity == hir.PurityImpure {
		d := errImpureCallInPureContext(callSite)
		return &d
	}
	return nil
}

// NoImpureCallWarning reports the NoImpureCallInImpureContext warning when
// an impure function's body never actually calls anything impure
// (spec.md §4.3 / §7 warning band).
func NoImpureCallWarning(funcPurity hir.Purity, calledAnyImpure bool, funcSpan span.Span) *span.Diagnostic {
	if funcPurity == hir.PurityImpure && !calledAnyImpure {
		d := warnNoImpureCall(funcSpan)
		return &d
	}
	return nil
}
