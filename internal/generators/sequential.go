package generators

import (
	"fmt"
	"strings"
)

// idSequence yields PREFIX000001, PREFIX000002, ... where PREFIX is the first
// three letters of the column name, upper-cased. It consumes no randomness.
func idSequence(column string, rows int) []any {
	prefix := idPrefix(column)
	out := make([]any, rows)
	for i := range out {
		out[i] = fmt.Sprintf("%s%06d", prefix, i+1)
	}
	return out
}

func idPrefix(column string) string {
	r := []rune(strings.ToUpper(column))
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}
