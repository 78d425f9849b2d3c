package utils

import "fmt"

func StringPtr(s string) *string {
	return &s
}

const columnPrefixFmt = "%s.%s"

// PrefixSliceOfStrings qualifies each column with a table alias, e.g. "d.id".
func PrefixSliceOfStrings(prefix string, input []string) []string {
	out := make([]string, len(input))
	for i, v := range input {
		out[i] = fmt.Sprintf(columnPrefixFmt, prefix, v)
	}
	return out
}
