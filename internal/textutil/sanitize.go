package textutil

import (
	"strings"

	unorm "golang.org/x/text/unicode/norm"
)

// fileNameReplacer maps every character that is illegal on at least one
// common filesystem to an underscore.
var fileNameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename with
// underscores. The name is NFC-normalized first so composed and decomposed
// titles produce the same artifact name. Surrounding whitespace is trimmed.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(unorm.NFC.String(name)))
}
