package chat

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	phoneMinDigits = 8
	phoneMaxDigits = 15
	nameMaxRunes   = 80
)

var (
	emailRE          = regexp.MustCompile(`(?i)^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	whitespaceRE     = regexp.MustCompile(`\s+`)
	nameDisallowedRE = regexp.MustCompile(`[^\p{L}\s'‐-]`)
)

// NormalizePhone canonicalizes a phone number to "+<digits>" international
// form. A leading "00" is treated as "+". Anything that does not end up
// with a plus prefix and 8-15 digits yields the empty string.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + cleaned[2:]
	}
	if !strings.HasPrefix(cleaned, "+") {
		return ""
	}
	digits := cleaned[1:]
	if len(digits) < phoneMinDigits || len(digits) > phoneMaxDigits {
		return ""
	}
	return "+" + digits
}

// IsValidEmail reports whether raw looks like local@domain.tld with a TLD of
// at least two characters. Syntactic check only.
func IsValidEmail(raw string) bool {
	return emailRE.MatchString(strings.TrimSpace(raw))
}

// NormalizeName strips everything outside letters, spaces, hyphens and
// apostrophes, collapses whitespace and trims. Names shorter than two
// characters after cleaning are rejected; longer than 80 are truncated.
func NormalizeName(raw string) string {
	cleaned := nameDisallowedRE.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(whitespaceRE.ReplaceAllString(cleaned, " "))
	runes := []rune(cleaned)
	if len(runes) < 2 {
		return ""
	}
	if len(runes) > nameMaxRunes {
		cleaned = strings.TrimSpace(string(runes[:nameMaxRunes]))
	}
	return cleaned
}

// ContainsCyrillic reports whether s carries at least one Cyrillic rune.
// Used for per-message reply language selection.
func ContainsCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
