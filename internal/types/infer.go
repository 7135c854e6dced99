package types

import (
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// Env is the read-only context InferExpr needs to look a resolved name's
// type up without re-deriving it: the session's committed func/let
// signatures, the enclosing function's own param types (keyed by each
// param's own def_span, since a param origin's DefSpan points at the
// param, not the function), and the intrinsic signature table used for
// `==`/`+`/etc (spec.md §4.3's running arithmetic/equality examples).
type Env struct {
	FuncTypes  map[span.Span]hir.Type // KindFunc origin -> Func type
	LetTypes   map[span.Span]hir.Type // KindLet origin -> value type
	ParamTypes map[span.Span]hir.Type // FuncParam origin -> param type
	Structs    map[span.Span]*hir.StructShape
	Enums      map[span.Span]*hir.EnumShape
	Intrinsics map[string]hir.Type // e.g. "IntegerAdd" -> fn(Int, Int) -> Int

	// CallerPurity is the purity of the function whose body is currently
	// being inferred, for the ImpureCallInPureContext check.
	CallerPurity hir.Purity
	// CalledImpure is set by InferExpr whenever it sees a call to an
	// impure function, so the caller can run NoImpureCallWarning once the
	// whole body has been walked.
	CalledImpure *bool
}

// InferExpr assigns e.Type (and every reachable subexpression's Type) by
// walking e bottom-up against s, reporting diagnostics through s and
// returning the expression's own type (spec.md §4.3's component F
// contract run over one function body at a time; internal/session calls
// this once per func body and top-level let, in def_span order).
func InferExpr(s *Solver, env Env, e *hir.Expr) hir.Type {
	if e == nil || e.IsPoison() {
		return hir.Never()
	}

	switch e.Tag {
	case hir.EIdent:
		e.Type = inferIdent(env, e)

	case hir.EConstantInt:
		e.Type = hir.Static(span.NewPolyName("Int"))
	case hir.EConstantBool:
		e.Type = hir.Static(span.NewPolyName("Bool"))
	case hir.EConstantString:
		e.Type = hir.Static(span.NewPolyName("String"))

	case hir.ENever:
		e.Type = hir.Never()

	case hir.EIf:
		cond := InferExpr(s, env, e.Cond)
		s.SolveSupertype(hir.Static(span.NewPolyName("Bool")), cond, Ctx("condition of `if` must be boolean"), e.Cond.Span)
		then := InferExpr(s, env, e.Then)
		els := InferExpr(s, env, e.Else)
		s.SolveSupertype(then, els, Ctx("both branches of `if` must have the same type"), e.Else.Span)
		e.Type = then

	case hir.EBlock:
		for _, l := range e.Lets {
			lt := InferExpr(s, env, l.Value)
			if l.TypeAnnot != nil {
				s.SolveSupertype(*l.TypeAnnot, lt, Ctx("let binding's declared type"), l.NameSpan)
				lt = *l.TypeAnnot
			}
			env.LetTypes[l.NameSpan] = lt
		}
		for _, a := range e.Asserts {
			cond := InferExpr(s, env, a.Condition)
			s.SolveSupertype(hir.Static(span.NewPolyName("Bool")), cond, Ctx("assert condition must be boolean"), a.Span)
		}
		e.Type = InferExpr(s, env, e.Value)

	case hir.EField:
		base := InferExpr(s, env, e.Base)
		e.Type = inferField(env, base, e)

	case hir.ECall:
		e.Type = inferCall(s, env, e)

	case hir.EMatch:
		InferExpr(s, env, e.Scrutinee)
		var result hir.Type
		for i := range e.Arms {
			arm := &e.Arms[i]
			if arm.Guard != nil {
				cond := InferExpr(s, env, arm.Guard)
				s.SolveSupertype(hir.Static(span.NewPolyName("Bool")), cond, Ctx("match guard must be boolean"), arm.Guard.Span)
			}
			bodyType := InferExpr(s, env, arm.Body)
			if i == 0 {
				result = bodyType
			} else {
				s.SolveSupertype(result, bodyType, Ctx("all arms of a match must have the same type"), arm.Body.Span)
			}
		}
		if result.Tag == 0 && len(e.Arms) == 0 {
			result = hir.Never()
		}
		e.Type = result

	case hir.ETuple:
		elemTypes := make([]hir.Type, len(e.Elems))
		for i, el := range e.Elems {
			elemTypes[i] = InferExpr(s, env, el)
		}
		e.Type = hir.Param(hir.Static(span.NewPolyName("Tuple")), elemTypes...)

	case hir.EList:
		var elem hir.Type
		for i, el := range e.Elems {
			t := InferExpr(s, env, el)
			if i == 0 {
				elem = t
			} else {
				s.SolveSupertype(elem, t, Ctx("every element of a list literal must have the same type"), el.Span)
			}
		}
		if len(e.Elems) == 0 {
			elem = hir.Var(e.Span, false)
		}
		e.Type = hir.Param(hir.Static(span.NewPolyName("List")), elem)

	case hir.EStructLit:
		e.Type = inferStructLit(s, env, e)

	case hir.EInfixOp:
		e.Type = inferInfix(s, env, e)

	default:
		e.Type = hir.Never()
	}

	return e.Type
}

func inferIdent(env Env, e *hir.Expr) hir.Type {
	o := e.Origin
	switch o.Tag {
	case hir.OriginFuncParam:
		if t, ok := env.ParamTypes[o.DefSpan]; ok {
			return t
		}
		return hir.Never()
	case hir.OriginLocal, hir.OriginForeign:
		switch o.Kind {
		case hir.KindFunc:
			if t, ok := env.FuncTypes[o.DefSpan]; ok {
				return Instantiate(t, e.Span)
			}
		case hir.KindLet:
			if t, ok := env.LetTypes[o.DefSpan]; ok {
				return t
			}
		case hir.KindStruct:
			return hir.Static(o.DefSpan)
		case hir.KindEnum:
			return hir.Static(o.DefSpan)
		}
	}
	return hir.Never()
}

func inferField(env Env, base hir.Type, e *hir.Expr) hir.Type {
	if base.Tag != hir.TStatic {
		return hir.Never()
	}
	if shape, ok := env.Structs[base.DefSpan]; ok {
		name := e.Fields[len(e.Fields)-1]
		for _, f := range shape.Fields {
			if f.Name == name {
				return f.Type
			}
		}
	}
	return hir.Never()
}

func inferCall(s *Solver, env Env, e *hir.Expr) hir.Type {
	if e.IsIntrinsic {
		sig, ok := env.Intrinsics[e.IntrinsicOp]
		if !ok {
			return hir.Never()
		}
		if sig.Tag == hir.TFunc && sig.FuncPur == hir.PurityImpure && env.CalledImpure != nil {
			*env.CalledImpure = true
		}
		args := make([]hir.Type, len(e.Args))
		for i, a := range e.Args {
			args[i] = InferExpr(s, env, a)
		}
		return s.CheckCall(sig, args, e.Span)
	}

	calleeType := InferExpr(s, env, e.Func)
	args := make([]hir.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = InferExpr(s, env, a)
	}

	if e.Func.Tag == hir.EIdent && e.Func.Origin.Kind == hir.KindFunc {
		if calleePurity, ok := funcPurity(env, e.Func.Origin.DefSpan); ok {
			if d := CheckPurity(env.CallerPurity, calleePurity, e.Span); d != nil {
				s.report(*d)
			}
			if calleePurity == hir.PurityImpure && env.CalledImpure != nil {
				*env.CalledImpure = true
			}
		}
	}

	return s.CheckCall(calleeType, args, e.Span)
}

func funcPurity(env Env, def span.Span) (hir.Purity, bool) {
	t, ok := env.FuncTypes[def]
	if !ok || t.Tag != hir.TFunc {
		return hir.PurityPure, false
	}
	return t.FuncPur, true
}

func inferStructLit(s *Solver, env Env, e *hir.Expr) hir.Type {
	var defSpan span.Span
	var shape *hir.StructShape
	for def, sh := range env.Structs {
		if sh.Name == e.CtorName {
			defSpan, shape = def, sh
			break
		}
	}
	if shape == nil {
		for _, f := range e.SFields {
			InferExpr(s, env, f.Value)
		}
		return hir.Never()
	}
	for _, f := range e.SFields {
		got := InferExpr(s, env, f.Value)
		for _, want := range shape.Fields {
			if want.Name == f.Name {
				s.SolveSupertype(want.Type, got, Ctx("struct literal field type"), f.Value.Span)
			}
		}
	}
	return hir.Static(defSpan)
}

func inferInfix(s *Solver, env Env, e *hir.Expr) hir.Type {
	left := InferExpr(s, env, e.Left)
	right := InferExpr(s, env, e.Right)
	switch e.Op {
	case "&&", "||":
		boolT := hir.Static(span.NewPolyName("Bool"))
		s.SolveSupertype(boolT, left, Ctx("both operands of a boolean operator must be Bool"), e.Left.Span)
		s.SolveSupertype(boolT, right, Ctx("both operands of a boolean operator must be Bool"), e.Right.Span)
		return boolT
	case "==", "!=":
		s.SolveSupertype(left, right, Ctx("`"+e.Op+"` requires same type on both sides"), e.Span)
		return hir.Static(span.NewPolyName("Bool"))
	case "<", "<=", ">", ">=":
		s.SolveSupertype(left, right, Ctx("comparison requires same type on both sides"), e.Span)
		return hir.Static(span.NewPolyName("Bool"))
	default:
		s.SolveSupertype(left, right, Ctx("arithmetic operator requires same type on both sides"), e.Span)
		return left
	}
}
