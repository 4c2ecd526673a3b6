package domain

import (
	"regexp"
	"strings"
)

// SystemSlugMax caps water system slugs.
const SystemSlugMax = 200

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of characters outside ASCII
// [a-z0-9] to a single hyphen and trims hyphens from both ends. Accented
// letters count as separators.
// The result is cut to at most max bytes; max <= 0 disables the cap.
func Slugify(s string, max int) string {
	s = strings.ToLower(s)
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if max > 0 && len(s) > max {
		s = s[:max]
	}
	return s
}
