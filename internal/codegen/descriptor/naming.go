package descriptor

import (
	"regexp"
	"strings"
)

var invalidIdentRun = regexp.MustCompile(`[\W_]+`)

// Sanitize turns free text into a C identifier fragment: every run of
// non-word characters or underscores becomes one underscore, then the result
// is lower-cased. Sanitize is idempotent.
func Sanitize(s string) string {
	return strings.ToLower(invalidIdentRun.ReplaceAllString(s, "_"))
}
