package bytecode

// Resolve strips a function's OpLabel markers and rewrites every local
// jump target (`PushCallStack`/`Goto`/`JumpIf`/`JumpIfInit` carrying a
// `LabelLocal`) to the absolute instruction offset the label used to mark,
// turning `Label::Static(u32)` (spec.md §3) into a plain index into the
// returned stream. `LabelGlobal` targets (a call to another function) are
// left untouched: Program.Encode writes each one as the ConstKey of the
// callee's def-site, the same key the callee's own body is stored under.
func Resolve(code []Instruction) []Instruction {
	positions := map[int]int{}
	out := make([]Instruction, 0, len(code))
	for _, instr := range code {
		if instr.Op == OpLabel {
			positions[instr.Label.ID] = len(out)
			continue
		}
		out = append(out, instr)
	}

	for i := range out {
		switch out[i].Op {
		case OpGoto, OpJumpIf, OpJumpIfInit, OpPushCallStack:
			if out[i].Label.Kind == LabelLocal {
				out[i].Label = Label{Kind: LabelLocal, ID: positions[out[i].Label.ID]}
			}
		}
	}
	return out
}
