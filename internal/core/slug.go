package core

import "strings"

// NormalizeEmail trims whitespace and lowercases so that lookups and
// inserts use the same key regardless of input casing. Idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Slugify lowercases s, collapses every run of non-alphanumeric bytes
// into a single hyphen and trims leading/trailing hyphens. Accented and
// other multi-byte characters count as non-alphanumeric.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
