package screenshot

import "regexp"

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// SanitizeFilename replaces every rune that is not a Unicode letter, a
// Unicode digit or an underscore with an underscore. The result has the same rune count as s and sanitizing it
// again is a no-op.
func SanitizeFilename(s string) string {
	return nonWord.ReplaceAllString(s, "_")
}
