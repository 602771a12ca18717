// Package sanitize strips markup from user-supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding Text unwraps.
const maxPasses = 8

// Text removes every HTML element from s, decodes the entities the policy
// escapes, and trims surrounding whitespace. Decoding can expose markup that
// arrived entity-encoded, so sanitize and decode repeat until the text stops
// changing. Text(Text(s)) == Text(s).
func Text(s string) string {
	if s == "" {
		return ""
	}
	for range maxPasses {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	// still unwrapping; keep the policy's escaped output
	return strings.TrimSpace(strict.Sanitize(s))
}

// Optional applies Text to a non-nil pointer. A value that sanitizes to the
// empty string becomes nil.
func Optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	if v == "" {
		return nil
	}
	return &v
}
