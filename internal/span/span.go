// Package span implements the source-location and synthetic-origin identity
// used throughout the pipeline (spec.md §3 "Span").
package span

// PolyKind distinguishes the three flavors of synthetic poly span.
type PolyKind int

const (
	PolyName PolyKind = iota
	PolyParam
	PolyReturn
)

func (k PolyKind) String() string {
	switch k {
	case PolyName:
		return "Name"
	case PolyParam:
		return "Param"
	case PolyReturn:
		return "Return"
	default:
		return "Unknown"
	}
}

// Span is an immutable value identifying either a byte range in a file, a
// synthetic "poly" origin, or nothing at all. It doubles as the identity of
// defined entities throughout HIR/Inter-HIR/MIR (spec.md §3, §9).
type Span struct {
	// File-range form.
	File  string
	Start int
	End   int

	// Synthetic poly form (File == "" && !none selects this).
	PolyOwner string
	Kind      PolyKind
	ParamIdx  int

	none bool
}

// None is the empty span: no file range and no synthetic origin.
var None = Span{none: true}

// NewFile builds a file-range span.
func NewFile(file string, start, end int) Span {
	return Span{File: file, Start: start, End: end}
}

// NewPolyName builds the synthetic span naming a poly's own signature.
func NewPolyName(owner string) Span {
	return Span{PolyOwner: owner, Kind: PolyName}
}

// NewPolyParam builds the synthetic span for a poly's i-th parameter.
func NewPolyParam(owner string, idx int) Span {
	return Span{PolyOwner: owner, Kind: PolyParam, ParamIdx: idx}
}

// NewPolyReturn builds the synthetic span for a poly's return type.
func NewPolyReturn(owner string) Span {
	return Span{PolyOwner: owner, Kind: PolyReturn}
}

// IsNone reports whether this is the empty span.
func (s Span) IsNone() bool {
	return s.none
}

// IsFile reports whether this span identifies a byte range in a file.
func (s Span) IsFile() bool {
	return !s.none && s.File != ""
}

// IsPoly reports whether this span is a synthetic poly origin.
func (s Span) IsPoly() bool {
	return !s.none && s.File == "" && s.PolyOwner != ""
}

// SameFile reports whether two file-spans refer to the same file.
func (s Span) SameFile(other Span) bool {
	return s.IsFile() && other.IsFile() && s.File == other.File
}

// Merge returns the smallest span enclosing both a and b. Merging across
// files returns a; merging with a None/poly span returns the operand that
// is a file span, and if neither is, b (or a when b is None). Merge is
// associative within a
// single file (spec.md §8 P2).
func Merge(a, b Span) Span {
	if a.none {
		return b
	}
	if b.none {
		return a
	}
	if !a.IsFile() || !b.IsFile() || a.File != b.File {
		// Cannot merge across files or with a synthetic span: prefer the
		// earlier-looking operand deterministically.
		if a.IsFile() {
			return a
		}
		return b
	}

	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Span{File: a.File, Start: start, End: end}
}

// Len returns the byte length of a file span, or 0 for anything else.
func (s Span) Len() int {
	if !s.IsFile() || s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}
