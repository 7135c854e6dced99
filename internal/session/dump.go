package session

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sodigy-lang/sodigyc/internal/config"
	"github.com/sodigy-lang/sodigyc/internal/span"
)

// dumpFunc is one function entry in a debug dump: just enough to eyeball
// a pipeline run without re-parsing source (spec.md §3
// `intermediate_dir`: "handle back to the intern store for debug
// rendering" — here, a flat YAML snapshot in place of a round trip
// through the interner, since every field below is already plain text or
// a span the renderer can print).
type dumpFunc struct {
	Name       string `yaml:"name"`
	Span       string `yaml:"span"`
	Purity     string `yaml:"purity"`
	Type       string `yaml:"type,omitempty"`
	HasMIR     bool   `yaml:"has_mir"`
	HasBytecode bool  `yaml:"has_bytecode"`
	Instructions int  `yaml:"instructions,omitempty"`
}

type dumpLet struct {
	Name string `yaml:"name"`
	Span string `yaml:"span"`
	Type string `yaml:"type,omitempty"`
}

type dumpDiagnostic struct {
	Index   int    `yaml:"index"`
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
	Span    string `yaml:"span"`
}

// Dump is the serializable snapshot DumpYAML renders.
type Dump struct {
	RunID    string           `yaml:"run_id"`
	Funcs    []dumpFunc       `yaml:"funcs"`
	Lets     []dumpLet        `yaml:"lets"`
	Polys    int              `yaml:"polys"`
	Errors   []dumpDiagnostic `yaml:"errors,omitempty"`
	Warnings []dumpDiagnostic `yaml:"warnings,omitempty"`
}

func spanString(s span.Span) string {
	if s.IsFile() {
		return fmt.Sprintf("%s:%d-%d", s.File, s.Start, s.End)
	}
	if s.IsPoly() {
		return fmt.Sprintf("poly(%s)/%s", s.PolyOwner, s.Kind)
	}
	return "<none>"
}

func diagString(d span.Diagnostic) dumpDiagnostic {
	return dumpDiagnostic{Index: d.Index, Kind: d.Kind, Message: d.Message, Span: spanString(d.Primary)}
}

// Snapshot builds the Dump struct without serializing it, so callers that
// want the structured form (tests, a future LSP) don't have to round-trip
// through YAML.
func (s *Session) Snapshot() Dump {
	runID := s.RunID.String()
	if config.IsTestMode {
		// a fresh uuid every run would make golden dumps impossible to diff.
		runID = "00000000-0000-0000-0000-000000000000"
	}
	d := Dump{RunID: runID, Polys: len(s.Polys)}

	for _, def := range s.sortedFuncSpans() {
		f := s.Funcs[def]
		entry := dumpFunc{
			Name:   f.Name,
			Span:   spanString(f.NameSpan),
			Purity: f.Purity.String(),
		}
		if t, ok := s.Types[def]; ok {
			entry.Type = t.String()
		}
		if _, ok := s.MIR[def]; ok {
			entry.HasMIR = true
		}
		if code, ok := s.Bytecode[def]; ok {
			entry.HasBytecode = true
			entry.Instructions = len(code)
		}
		d.Funcs = append(d.Funcs, entry)
	}

	for _, def := range s.sortedLetSpans() {
		l := s.Lets[def]
		entry := dumpLet{Name: l.Name, Span: spanString(l.NameSpan)}
		if t, ok := s.Types[def]; ok {
			entry.Type = t.String()
		}
		d.Lets = append(d.Lets, entry)
	}

	for _, e := range s.Errors {
		d.Errors = append(d.Errors, diagString(e))
	}
	for _, w := range s.Warnings {
		d.Warnings = append(d.Warnings, diagString(w))
	}

	return d
}

// DumpYAML renders the session's current state as YAML, the format the
// debug-dump surface (spec.md §2 component K's sibling, a structured
// rather than pretty-printed rendering) uses.
func (s *Session) DumpYAML() ([]byte, error) {
	return yaml.Marshal(s.Snapshot())
}
