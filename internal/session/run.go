package session

import (
	"sort"

	"github.com/sodigy-lang/sodigyc/internal/assoc"
	"github.com/sodigy-lang/sodigyc/internal/bytecode"
	"github.com/sodigy-lang/sodigyc/internal/hir"
	"github.com/sodigy-lang/sodigyc/internal/mir"
	"github.com/sodigy-lang/sodigyc/internal/poly"
	"github.com/sodigy-lang/sodigyc/internal/resolve"
	"github.com/sodigy-lang/sodigyc/internal/span"
	"github.com/sodigy-lang/sodigyc/internal/types"
)

// RegisterFunc adds f to Funcs and, when it carries a #[poly] attribute,
// seeds Polys with an empty impl list. Also seeds ModuleSymbols so name
// resolution can see it.
func (s *Session) RegisterFunc(f *hir.Func) {
	s.Funcs[f.NameSpan] = f
	s.ModuleSymbols[f.Name] = resolve.ModuleSymbol{Origin: hir.Local(hir.KindFunc, f.NameSpan), Def: f.NameSpan}
	if f.Attrs.IsPoly {
		s.Polys[f.NameSpan] = &hir.Poly{NameSpan: f.NameSpan, Name: f.Name, HasDefaultImpl: f.Body != nil}
	}
	if !f.Attrs.ImplOf.IsNone() {
		if p, ok := s.Polys[f.Attrs.ImplOf]; ok {
			p.Impls = append(p.Impls, f.NameSpan)
		}
	}
}

// RegisterLet adds l to Lets and seeds ModuleSymbols.
func (s *Session) RegisterLet(l *hir.Let) {
	s.Lets[l.NameSpan] = l
	s.ModuleSymbols[l.Name] = resolve.ModuleSymbol{Origin: hir.LocalLet(l.NameSpan, true), Def: l.NameSpan}
}

// RegisterStruct adds a struct shape and seeds ModuleSymbols.
func (s *Session) RegisterStruct(shape *hir.StructShape) {
	s.StructShapes[shape.NameSpan] = shape
	s.ModuleSymbols[shape.Name] = resolve.ModuleSymbol{Origin: hir.Local(hir.KindStruct, shape.NameSpan), Def: shape.NameSpan}
}

// RegisterEnum adds an enum shape and seeds ModuleSymbols, including one
// entry per variant.
func (s *Session) RegisterEnum(shape *hir.EnumShape) {
	s.EnumShapes[shape.NameSpan] = shape
	s.ModuleSymbols[shape.Name] = resolve.ModuleSymbol{Origin: hir.Local(hir.KindEnum, shape.NameSpan), Def: shape.NameSpan}
	for _, v := range shape.Variants {
		s.ModuleSymbols[shape.Name+"."+v.Name] = resolve.ModuleSymbol{Origin: hir.Local(hir.KindEnumVariant, v.NameSpan), Def: v.NameSpan}
	}
}

// ResolveNames runs name resolution (component D) over every registered
// func body and top-level let value, the first stage of spec.md §5's
// ordering guarantee.
func (s *Session) ResolveNames() {
	r := resolve.New(s.ModuleSymbols)
	for _, def := range s.sortedFuncSpans() {
		f := s.Funcs[def]
		if f.Body == nil {
			continue
		}
		fnScope := resolve.NewScope(nil, resolve.ScopeFuncParams)
		for i, p := range f.Params {
			f.Params[i].Type = p.Type
			if d := fnScope.Define(p.Name, hir.FuncParam(i, p.DefSpan), p.DefSpan); d != nil {
				s.reportError(*d)
			}
		}
		r.ResolveExpr(fnScope, f.Body)
	}
	for _, def := range s.sortedLetSpans() {
		l := s.Lets[def]
		r.ResolveExpr(resolve.NewScope(nil, resolve.ScopeBlock), l.Value)
	}
	s.reportAll(r.Diagnostics())
}

// AttachAssociatedItem wires one `impl Type.Item` declaration (component
// E): classifies the resolved receiver type's head against
// s.StructShapes/s.EnumShapes and attaches item, synthesizing and
// registering the poly skeleton assoc.Resolver builds for function
// items.
func (s *Session) AttachAssociatedItem(receiver hir.Type, item assoc.Item) {
	r := assoc.New(assoc.Tables{Structs: s.StructShapes, Enums: s.EnumShapes})
	head, structShape, enumShape := s.classifyReceiver(receiver)
	r.Attach(head, structShape, enumShape, item)
	s.reportAll(r.Diagnostics())
	for _, sp := range r.Synthesized {
		f := sp.Func
		p := sp.Poly
		s.Funcs[f.NameSpan] = &f
		s.Polys[p.NameSpan] = &p
		s.ModuleSymbols[f.Name] = resolve.ModuleSymbol{Origin: hir.Local(hir.KindFunc, f.NameSpan), Def: f.NameSpan}
	}
}

// classifyReceiver maps a resolved `impl Type.m` receiver type to the
// ReceiverHead assoc.Resolver.Attach needs, per spec.md §4.2's
// "destination is determined by the resolved head of the type path".
func (s *Session) classifyReceiver(t hir.Type) (assoc.ReceiverHead, *hir.StructShape, *hir.EnumShape) {
	switch t.Tag {
	case hir.TStatic:
		if sh, ok := s.StructShapes[t.DefSpan]; ok {
			return assoc.HeadStruct, sh, nil
		}
		if sh, ok := s.EnumShapes[t.DefSpan]; ok {
			return assoc.HeadEnum, nil, sh
		}
		return assoc.HeadWildcardOrGeneric, nil, nil
	case hir.TParam:
		return assoc.HeadTuple, nil, nil
	case hir.TFunc:
		return assoc.HeadFunc, nil, nil
	case hir.TNever:
		return assoc.HeadNever, nil, nil
	default:
		return assoc.HeadWildcardOrGeneric, nil, nil
	}
}

// InferTypes runs the type solver (component F) over every func/let in
// def_span order, filling in s.Types and every reachable hir.Expr's Type
// field, reporting purity-propagation diagnostics per body.
func (s *Session) InferTypes() {
	solver := types.NewSolver()
	env := types.Env{
		FuncTypes:  map[span.Span]hir.Type{},
		LetTypes:   map[span.Span]hir.Type{},
		ParamTypes: map[span.Span]hir.Type{},
		Structs:    s.StructShapes,
		Enums:      s.EnumShapes,
		Intrinsics: s.intrinsics,
	}
	for def, f := range s.Funcs {
		params := make([]hir.Type, len(f.Params))
		for i, p := range f.Params {
			env.ParamTypes[p.DefSpan] = p.Type
			params[i] = p.Type
		}
		env.FuncTypes[def] = hir.FuncType(params, f.Return, f.Purity)
	}

	for _, def := range s.sortedFuncSpans() {
		f := s.Funcs[def]
		if f.Body == nil {
			s.Types[def] = env.FuncTypes[def]
			continue
		}
		calledImpure := false
		bodyEnv := env
		bodyEnv.CallerPurity = f.Purity
		bodyEnv.CalledImpure = &calledImpure
		got := types.InferExpr(solver, bodyEnv, f.Body)
		solver.SolveSupertype(f.Return, got, types.Ctx("function body must match its declared return type"), f.Body.Span)
		if d := types.NoImpureCallWarning(f.Purity, calledImpure, f.NameSpan); d != nil {
			s.reportWarning(*d)
		}
		s.Types[def] = env.FuncTypes[def]
	}
	for _, def := range s.sortedLetSpans() {
		l := s.Lets[def]
		got := types.InferExpr(solver, env, l.Value)
		if l.TypeAnnot != nil {
			solver.SolveSupertype(*l.TypeAnnot, got, types.Ctx("let's declared type"), l.NameSpan)
			got = *l.TypeAnnot
		}
		env.LetTypes[def] = got
		s.Types[def] = got
	}
	s.reportAll(solver.Diagnostics())
}

// BuildPolys runs the poly solver's build phase (component G step 1-3)
// over every registered poly, populating s.PolySolvers.
func (s *Session) BuildPolys() {
	funcTypes := map[span.Span]poly.FuncType{}
	for def, f := range s.Funcs {
		params := make([]hir.Type, len(f.Params))
		for i, p := range f.Params {
			params[i] = p.Type
		}
		funcTypes[def] = poly.FuncType{Params: params, Return: f.Return}
	}

	solvers, diags := poly.InitPolySolvers(s.polyValues(), s.funcValues(), funcTypes)
	s.reportAll(diags)
	for def, solver := range solvers {
		solver.BuildStateMachine()
		s.PolySolvers[def] = solver
	}
}

// LowerToMIR runs component I/L (MIR lowering, with match re-expansion)
// over every func body and top-level let value, populating s.MIR; it
// lowers nothing once the session has any error, and leaves out of s.MIR
// a body whose own lowering reports one. spec.md §5: MIR lowering only runs
// once names/types/polys are settled.
func (s *Session) LowerToMIR() {
	if len(s.Errors) > 0 {
		return
	}
	for _, def := range s.sortedFuncSpans() {
		f := s.Funcs[def]
		if f.Body == nil {
			continue
		}
		var diags []span.Diagnostic
		node := mir.FuncBody(f.Body, &diags)
		s.reportAll(diags)
		if !hasError(diags) {
			s.MIR[def] = node
		}
	}
	for _, def := range s.sortedLetSpans() {
		l := s.Lets[def]
		var diags []span.Diagnostic
		node := mir.Lower(l.Value, false, &diags)
		s.reportAll(diags)
		if !hasError(diags) {
			s.MIR[def] = node
		}
	}
}

// LowerToBytecode runs component J over every successfully-lowered MIR
// body, populating s.Bytecode with a Resolve'd instruction stream
// (spec.md §5: bytecode is the last stage, and spec.md §8 scenario 3:
// "no bytecode emitted" when an earlier stage already reported an
// error).
func (s *Session) LowerToBytecode() {
	if len(s.Errors) > 0 {
		return
	}
	for def, node := range s.MIR {
		var paramSpans []span.Span
		if f, ok := s.Funcs[def]; ok {
			for _, p := range f.Params {
				paramSpans = append(paramSpans, p.DefSpan)
			}
		}
		code := bytecode.LowerFunc(node, paramSpans)
		s.Bytecode[def] = bytecode.Resolve(code)
	}
}

// Run executes the full pipeline in spec.md §5's fixed order: names,
// associated items are expected to have been attached by the caller
// already (AttachAssociatedItem is driven by the parser's own impl-block
// list, not discoverable from the entity tables alone), then types,
// polys, MIR, bytecode.
func (s *Session) Run() {
	s.log("session %s: resolving names (%d funcs, %d lets)", s.RunID, len(s.Funcs), len(s.Lets))
	s.ResolveNames()
	s.log("session %s: inferring types", s.RunID)
	s.InferTypes()
	s.log("session %s: building poly solvers (%d polys)", s.RunID, len(s.Polys))
	s.BuildPolys()
	if len(s.Errors) > 0 {
		s.log("session %s: %d error(s) reported, skipping MIR/bytecode lowering", s.RunID, len(s.Errors))
	}
	s.log("session %s: lowering to MIR", s.RunID)
	s.LowerToMIR()
	s.log("session %s: lowering to bytecode", s.RunID)
	s.LowerToBytecode()
}

func hasError(diags []span.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity() == span.SeverityError {
			return true
		}
	}
	return false
}

func (s *Session) polyValues() map[span.Span]hir.Poly {
	out := make(map[span.Span]hir.Poly, len(s.Polys))
	for def, p := range s.Polys {
		out[def] = *p
	}
	return out
}

func (s *Session) funcValues() map[span.Span]hir.Func {
	out := make(map[span.Span]hir.Func, len(s.Funcs))
	for def, f := range s.Funcs {
		out[def] = *f
	}
	return out
}

func (s *Session) sortedFuncSpans() []span.Span {
	out := make([]span.Span, 0, len(s.Funcs))
	for def := range s.Funcs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return spanLess(out[i], out[j]) })
	return out
}

func (s *Session) sortedLetSpans() []span.Span {
	out := make([]span.Span, 0, len(s.Lets))
	for def := range s.Lets {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return spanLess(out[i], out[j]) })
	return out
}

// spanLess gives a deterministic total order over def-spans for stable
// diagnostic/dump ordering (spec.md §5: "their relative order matches
// source order of the causing construct").
func spanLess(a, b span.Span) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	return a.Start < b.Start
}
