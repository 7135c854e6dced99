package bytecode

import (
	"fmt"

	"github.com/sodigy-lang/sodigyc/internal/span"
)

const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

func fnv1a64(s string) uint64 {
	h := fnvOffset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

// ConstKey hashes a def-site span into the stable u64 the bytecode file
// format uses to key `Register::Const(span)` references (spec.md §6:
// "keyed by a hash of (file, start, end), stable across runs given
// identical source").
func ConstKey(s span.Span) uint64 {
	return fnv1a64(fmt.Sprintf("%s|%d|%d", s.File, s.Start, s.End))
}
