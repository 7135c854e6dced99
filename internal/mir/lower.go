package mir

import (
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// infixIntrinsics maps a still-surviving HIR infix operator to the
// intrinsic op bytecode lowering recognizes (spec.md §6 "Intrinsics are
// enumerated"). && and || are handled separately since they desugar to
// NIf, not a call.
var infixIntrinsics = map[string]string{
	"+":  "IntegerAdd",
	"-":  "IntegerSub",
	"*":  "IntegerMul",
	"/":  "IntegerDiv",
	"==": "IntegerEq",
	">":  "IntegerGt",
	"<":  "IntegerLt",
}

// Lower translates one HIR expression into MIR, marking is_tail along the
// positions spec.md §4.6 names as tail-preserving: a block's final value,
// both arms of an if, every match arm's body, and the right operand of
// && / || (see FuncBody below for the function-level entry point) - call
// arguments, field bases, let values, and if-conditions are never tail.
func Lower(e *hir.Expr, isTail bool, diags *[]span.Diagnostic) *Node {
	if e == nil || e.IsPoison() {
		s := span.None
		if e != nil {
			s = e.Span
		}
		return Never(s)
	}

	switch e.Tag {
	case hir.EIdent:
		return &Node{Tag: NIdent, Span: e.Span, Type: e.Type, IsTail: isTail, Name: e.Name, Origin: e.Origin}
	case hir.EConstantInt:
		return &Node{Tag: NConstInt, Span: e.Span, Type: e.Type, IsTail: isTail, IntValue: e.IntValue}
	case hir.EConstantBool:
		return &Node{Tag: NConstBool, Span: e.Span, Type: e.Type, IsTail: isTail, BoolValue: e.BoolValue}
	case hir.EConstantString:
		return &Node{Tag: NConstString, Span: e.Span, Type: e.Type, IsTail: isTail, StrValue: e.StrValue}
	case hir.ENever:
		return Never(e.Span)
	case hir.EIf:
		return &Node{
			Tag: NIf, Span: e.Span, Type: e.Type, IsTail: isTail,
			Cond: Lower(e.Cond, false, diags),
			Then: Lower(e.Then, isTail, diags),
			Else: Lower(e.Else, isTail, diags),
		}
	case hir.EBlock:
		return lowerBlock(e, isTail, diags)
	case hir.EField:
		return &Node{
			Tag: NField, Span: e.Span, Type: e.Type, IsTail: isTail,
			Base: Lower(e.Base, false, diags), Fields: append([]string{}, e.Fields...),
		}
	case hir.ECall:
		e.IsTail = isTail // mirrored onto the HIR node per its own doc comment, for passes that still read HIR after this lowering
		return &Node{
			Tag: NCall, Span: e.Span, Type: e.Type, IsTail: isTail,
			Func: Lower(e.Func, false, diags), Args: lowerAll(e.Args, diags),
			IsIntrinsic: e.IsIntrinsic, IntrinsicOp: e.IntrinsicOp,
		}
	case hir.EMatch:
		return lowerMatch(e, isTail, diags)
	case hir.ETuple:
		return &Node{Tag: NTuple, Span: e.Span, Type: e.Type, IsTail: isTail, Elems: lowerAll(e.Elems, diags)}
	case hir.EList:
		return &Node{Tag: NList, Span: e.Span, Type: e.Type, IsTail: isTail, Elems: lowerAll(e.Elems, diags)}
	case hir.EStructLit:
		fields := make([]StructLitField, len(e.SFields))
		for i, f := range e.SFields {
			fields[i] = StructLitField{Name: f.Name, Value: Lower(f.Value, false, diags)}
		}
		return &Node{Tag: NStructLit, Span: e.Span, Type: e.Type, IsTail: isTail, CtorName: e.CtorName, SFields: fields}
	case hir.EInfixOp:
		return lowerInfixOp(e, isTail, diags)
	default:
		return Never(e.Span)
	}
}

// FuncBody lowers a function's body as the tail position spec.md §4.6
// requires: "the last expression of a function body is lowered with
// is_tail = true".
func FuncBody(e *hir.Expr, diags *[]span.Diagnostic) *Node {
	return Lower(e, true, diags)
}

func lowerAll(es []*hir.Expr, diags *[]span.Diagnostic) []*Node {
	out := make([]*Node, len(es))
	for i, e := range es {
		out[i] = Lower(e, false, diags)
	}
	return out
}

func lowerBlock(e *hir.Expr, isTail bool, diags *[]span.Diagnostic) *Node {
	lets := make([]*Let, len(e.Lets))
	for i, l := range e.Lets {
		lets[i] = &Let{Name: l.Name, NameSpan: l.NameSpan, Value: Lower(l.Value, false, diags)}
	}
	asserts := make([]*Assert, len(e.Asserts))
	for i, a := range e.Asserts {
		asserts[i] = &Assert{Span: a.Span, Condition: Lower(a.Condition, false, diags)}
	}
	return &Node{
		Tag: NBlock, Span: e.Span, Type: e.Type, IsTail: isTail,
		Lets: lets, Asserts: asserts, Value: Lower(e.Value, isTail, diags),
	}
}

// lowerInfixOp desugars the two operator families that don't survive into
// MIR as their own node kind (spec.md §4.6 "Boolean lowering"):
// short-circuit &&/|| become If, everything else becomes an intrinsic
// call. The left operand of &&/|| becomes the if-condition and is never a
// tail position; the right operand becomes a whole if-branch and inherits
// isTail. The operands of an intrinsic call are arguments, never tail.
func lowerInfixOp(e *hir.Expr, isTail bool, diags *[]span.Diagnostic) *Node {
	switch e.Op {
	case "&&":
		return &Node{
			Tag: NIf, Span: e.Span, Type: e.Type, IsTail: isTail,
			Cond: Lower(e.Left, false, diags),
			Then: Lower(e.Right, isTail, diags),
			Else: &Node{Tag: NConstBool, Span: e.Span, Type: e.Type, IsTail: isTail, BoolValue: false},
		}
	case "||":
		return &Node{
			Tag: NIf, Span: e.Span, Type: e.Type, IsTail: isTail,
			Cond: Lower(e.Left, false, diags),
			Then: &Node{Tag: NConstBool, Span: e.Span, Type: e.Type, IsTail: isTail, BoolValue: true},
			Else: Lower(e.Right, isTail, diags),
		}
	default:
		op, ok := infixIntrinsics[e.Op]
		if !ok {
			return Never(e.Span)
		}
		return &Node{
			Tag: NCall, Span: e.Span, Type: e.Type, IsTail: isTail,
			IsIntrinsic: true, IntrinsicOp: op,
			Args: []*Node{Lower(e.Left, false, diags), Lower(e.Right, false, diags)},
		}
	}
}
