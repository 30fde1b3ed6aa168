package db

import (
	"strconv"
	"strings"
)

// Rebind rewrites ? placeholders to the driver's native style. Queries are
// written once with ? and rebound at execution time, so the store layer
// stays driver-agnostic. Only postgres needs rewriting.
//
// The scan is byte-wise and does not parse string literals; none of the
// engine's queries embed ? inside a literal.
func Rebind(driver, query string) string {
	if driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
