package stringutils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Clean drops NUL, C0 control runes other than tab, newline and carriage
// return, DEL, C1 control runes and invalid UTF-8, then trims the result.
func Clean(s string) string {
	if utf8.ValidString(s) && !hasControlChars(s) {
		return strings.TrimSpace(s)
	}

	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if r == utf8.RuneError || isControl(r) {
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			builder.WriteRune(r)
		}
	}

	return strings.TrimSpace(builder.String())
}

func isControl(r rune) bool {
	switch {
	case r < 32:
		return r != '\t' && r != '\n' && r != '\r'
	case r == 127:
		return true
	default:
		return r >= 128 && r <= 159
	}
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if isControl(r) {
			return true
		}
	}
	return false
}
