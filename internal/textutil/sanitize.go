package textutil

import "strings"

// fileNameReplacer maps characters that are unsafe in file names on the
// platforms editors run on.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName makes name safe to use as a single path segment. Path
// separators and asterisks become dashes, colons and other reserved
// characters are dropped, and surrounding whitespace is trimmed.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	// A leading dot would hide the file and collide with partial paths.
	return strings.TrimLeft(name, ".")
}
