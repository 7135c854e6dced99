// Package config carries the handful of process-wide toggles the core
// reads, trimmed from the teacher's internal/config (which also tracked
// source-file extensions and LSP mode — both parser/tooling concerns this
// module does not own).
package config

// IsTestMode normalizes output (e.g. the run id) for deterministic golden
// dumps, mirroring the teacher's config.IsTestMode; internal/session's
// Snapshot (and so DumpYAML) writes an all-zero run id while this is set.
var IsTestMode = false
