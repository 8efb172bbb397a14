package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// Name collapses internal whitespace and trims the input, preserving case.
func Name(s string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}
