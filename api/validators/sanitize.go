package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims input and cuts it to at most maxLen bytes without
// splitting a UTF-8 sequence.
func SanitizeString(input string, maxLen int) string {
	s := strings.TrimSpace(input)
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

// SanitizeCode trims an offer code taken from a URL; codes longer than maxLen
// are rejected rather than truncated so they cannot match a shorter code.
func SanitizeCode(input string, maxLen int) (string, bool) {
	code := strings.TrimSpace(input)
	if code == "" || (maxLen > 0 && len(code) > maxLen) {
		return "", false
	}
	return code, true
}
