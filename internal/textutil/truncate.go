package textutil

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most limit runes, appending "..." when it cuts.
// The ellipsis counts toward the limit. A non-positive limit returns "".
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}

// Excerpt returns the first limit runes of s without an ellipsis. It is used
// for diagnostic snippets of raw payloads.
func Excerpt(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// TruncateBytes shortens s to at most limit bytes without splitting a UTF-8
// sequence. A non-positive limit returns "".
func TruncateBytes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// CollapseWhitespace folds runs of whitespace, including newlines, into a
// single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
