// Package textutil holds small text helpers shared by search operations.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns s with Unicode case folding applied
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s, ignoring case.
// Leading and trailing whitespace in substr is dropped before matching, so a
// whitespace-only substr matches everything. Inner whitespace must match.
func ContainsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(substr))
}

// AnyContainsFold reports whether any of values contains substr, ignoring case
func AnyContainsFold(values []string, substr string) bool {
	for _, v := range values {
		if ContainsFold(v, substr) {
			return true
		}
	}
	return false
}
