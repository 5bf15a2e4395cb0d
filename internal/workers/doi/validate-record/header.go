package validaterecord

import (
	"fmt"
	"strings"
)

var columnsByLowerName = func() map[string]string {
	m := make(map[string]string, len(Columns))
	for _, c := range Columns {
		m[strings.ToLower(c)] = c
	}
	return m
}()

func canonicalColumn(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
	canon, ok := columnsByLowerName[name]
	return canon, ok
}

// CheckHeader compares a CSV header with the required columns. Matching is
// case-insensitive, ignores surrounding whitespace and column order. It
// returns one message per unrecognized, duplicated or missing column; an
// empty result means the header is acceptable.
func CheckHeader(header []string) []string {
	var problems []string
	seen := make(map[string]bool, len(Columns))

	for _, raw := range header {
		canon, ok := canonicalColumn(raw)
		if !ok {
			problems = append(problems, fmt.Sprintf("unrecognized column %q", raw))
			continue
		}
		if seen[canon] {
			problems = append(problems, fmt.Sprintf("duplicate column %q", canon))
			continue
		}
		seen[canon] = true
	}

	for _, column := range Columns {
		if !seen[column] {
			problems = append(problems, fmt.Sprintf("missing required column %q", column))
		}
	}

	return problems
}
