// src/security/validation/sanitizers.go
package validation

import (
	"strings"
	"unicode"
)

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// CleanText is what every free-text cell goes through before it is stored.
func CleanText(s string) string {
	return strings.TrimSpace(StripUnprintable(s))
}
