package span

// Severity classifies a diagnostic per spec.md §6's stable index ranges:
// 0-4999 errors, 5000-7999 warnings, 8000-9997 lints, 9998 TODO, 9999 ICE.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityLint
	SeverityTODO
	SeverityICE
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityLint:
		return "lint"
	case SeverityTODO:
		return "todo"
	case SeverityICE:
		return "ice"
	default:
		return "unknown"
	}
}

// SeverityOf classifies a numeric diagnostic index into its band.
func SeverityOf(index int) Severity {
	switch {
	case index >= 0 && index < 5000:
		return SeverityError
	case index < 8000:
		return SeverityWarning
	case index < 9998:
		return SeverityLint
	case index == 9998:
		return SeverityTODO
	default:
		return SeverityICE
	}
}

// Note is an auxiliary annotation attached to a diagnostic, optionally
// pointing at a secondary span (e.g. "previous definition here").
type Note struct {
	Message string
	Span    Span // may be None
}

// Diagnostic is the structured error record produced by the core; a
// separate renderer (out of scope, spec.md §1) paints it for humans.
type Diagnostic struct {
	Index   int // stable numeric index, never reused (spec.md §6)
	Kind    string
	Message string
	Primary Span
	Aux     []Span
	Notes   []Note
}

func (d Diagnostic) Severity() Severity {
	return SeverityOf(d.Index)
}

// New builds a diagnostic with no auxiliary spans or notes.
func New(index int, kind, message string, primary Span) Diagnostic {
	return Diagnostic{Index: index, Kind: kind, Message: message, Primary: primary}
}

// WithAux returns a copy of d with an auxiliary span appended.
func (d Diagnostic) WithAux(s Span) Diagnostic {
	d.Aux = append(append([]Span{}, d.Aux...), s)
	return d
}

// WithNote returns a copy of d with a note appended.
func (d Diagnostic) WithNote(message string, s Span) Diagnostic {
	d.Notes = append(append([]Note{}, d.Notes...), Note{Message: message, Span: s})
	return d
}
