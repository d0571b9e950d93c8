package catalog

import "strings"

type Product struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// FoldKey returns the comparison key for a product name. The result is
// always valid UTF-8, so it never contains the byte prefixSentinel.
func FoldKey(name string) string {
	return strings.ToLower(strings.ToValidUTF8(name, "\uFFFD"))
}
