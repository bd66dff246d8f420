package documents

import (
	"path"
	"regexp"
	"strings"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a source filename into a storage-safe base name: the
// extension is dropped, the rest lowercased, every run of non-alphanumeric
// characters becomes one hyphen and outer hyphens are trimmed. An empty
// result becomes "file".
func Slugify(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "/" || base == "." {
		base = ""
	}
	if ext := path.Ext(base); ext != base {
		base = strings.TrimSuffix(base, ext)
	}

	slug := nonAlphanumericRegex.ReplaceAllString(strings.ToLower(base), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "file"
	}
	return slug
}
