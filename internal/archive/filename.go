package archive

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Filename derives the archive filename for a piece of content. A titled
// file is "<sanitized title>_YYYYMMDD_HHMMSS.txt"; without a title the
// lowercased category is used as prefix instead. The derivation is
// deterministic given a fixed clock.
func Filename(title, category string, now time.Time) string {
	stamp := now.Format("20060102_150405")

	if title != "" {
		return sanitizeTitle(title) + "_" + stamp + ".txt"
	}

	prefix := ""
	if category != "" {
		prefix = strings.ToLower(category) + "_"
	}
	return fmt.Sprintf("%s%s.txt", prefix, stamp)
}

// sanitizeTitle keeps letters, digits, and Hangul; runs of whitespace
// collapse to a single underscore, everything else is dropped.
func sanitizeTitle(title string) string {
	var b strings.Builder
	space := false
	for _, r := range title {
		switch {
		case unicode.IsSpace(r):
			space = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', isHangul(r):
			if space && b.Len() > 0 {
				b.WriteByte('_')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isHangul(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}
