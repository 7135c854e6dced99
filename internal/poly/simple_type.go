// Package poly implements the poly/impl dispatch solver (spec.md §2
// component G, §4.4): for every `#[poly] fn f<G0..Gk>` with one or more
// `#[impl(f)]`s, builds a discrimination-tree state machine keyed by a
// coarse SimpleType shape of each generic parameter, then narrows a call
// site's generic bindings down to the impl(s) that actually unify.
//
// Grounded almost directly on
// original_source/crates/inter-mir/src/poly.rs (same PolySolver{impls,
// state_machine} split between a build phase and a query phase, same
// SimpleType coarsening, same recursive StateMachine::build).
package poly

import "github.com/sodigy-lang/sodigyc/internal/hir"
import "github.com/sodigy-lang/sodigyc/internal/span"

// SimpleTag discriminates the handful of coarse shapes the discrimination
// tree distinguishes between. It is deliberately much coarser than
// hir.TypeTag: false positives (a branch that looks like it could match
// but doesn't actually unify) are fine, because every candidate the state
// machine returns is re-verified with a real Solver before being trusted
// (spec.md §4.4 "false positives ... must be filtered by the subsequent
// unification check").
type SimpleTag int

const (
	STStatic SimpleTag = iota
	STParam
	STFunc
	STVar
)

// SimpleType is a comparable summary of an hir.Type, used as a
// discrimination-tree branch key. The original_source model keeps Tuple
// and Param (a generic-constructor application) as separate variants;
// this spec's hir.Type folds tuples into TParam (a tuple is just
// Param(ctor=syntheticTupleCtor, args=elemTypes)), so SimpleType folds
// them the same way here — Def/Constructor/Arity together already
// distinguish every case the teacher's Tuple{arity} used to.
type SimpleType struct {
	Tag         SimpleTag
	Def         span.Span // STStatic
	Constructor span.Span // STParam
	Arity       int       // STParam (len(Args)) / STFunc (len(Params))
}

// varType is the catch-all wildcard branch: it matches any SimpleType
// during a state-machine walk the same way hir.TVarTag/TGenericInstance
// do during real unification.
var varType = SimpleType{Tag: STVar}

// Of coarsens t into its SimpleType. Never is folded into Var: it unifies
// with anything, so treating it as a wildcard branch can only introduce
// (harmless) false positives, never a false negative.
func Of(t hir.Type) SimpleType {
	switch t.Tag {
	case hir.TStatic, hir.TGenericDef:
		return SimpleType{Tag: STStatic, Def: t.DefSpan}
	case hir.TParam:
		var ctor span.Span
		if t.Ctor != nil {
			ctor = t.Ctor.DefSpan
		}
		return SimpleType{Tag: STParam, Constructor: ctor, Arity: len(t.Args)}
	case hir.TFunc:
		return SimpleType{Tag: STFunc, Arity: len(t.Params)}
	default:
		return varType
	}
}
