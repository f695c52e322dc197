package taxonomy

import "strings"

// NormalizeToken folds a tag to its canonical alphanumeric form for
// alias matching: lowercase, everything outside [a-z0-9] stripped.
// Pure, total, idempotent. Original tags are kept elsewhere for display
// and order-sensitive resolution.
func NormalizeToken(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SlugifyToken builds a URL-safe slug: "&" becomes "and", runs of
// non-alphanumerics collapse to single hyphens, edges trimmed.
func SlugifyToken(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "&", "and")

	var b strings.Builder
	pendingHyphen := false
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return b.String()
}
