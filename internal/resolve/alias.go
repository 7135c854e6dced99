package resolve

import "github.com/sodigy-lang/sodigyc/internal/span"

// AliasTable maps an alias name to the name it stands for, one hop at a
// time (spec.md §3 "Alias").
type AliasTable map[string]string

// ResolveAlias follows a chain of `use` aliases to its final target,
// reporting CyclicAlias if it revisits a name and
// AliasResolveRecursionLimitReached if the chain is implausibly long
// (guards against pathological but acyclic chains, same ceiling the
// teacher's resolver-adjacent passes use for recursive generic expansion).
func (r *Resolver) ResolveAlias(aliases AliasTable, name string, use span.Span) (string, bool) {
	seen := map[string]bool{name: true}
	cur := name
	for i := 0; i < maxAliasRecursion; i++ {
		next, ok := aliases[cur]
		if !ok {
			return cur, true
		}
		if seen[next] {
			r.report(errCyclicAlias(name, use))
			return "", false
		}
		seen[next] = true
		cur = next
	}
	r.report(errAliasRecursionLimit(name, use))
	return "", false
}
