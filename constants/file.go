package constants

import "strings"

// Formats for the supported document types.
const (
	PDF  = "PDF"
	DOC  = "DOC"
	DOCX = "DOCX"
)

// AllowedExtensions holds the file extensions the sync walk picks up.
// Anything else is skipped silently.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its canonical format,
// or "" when the extension is not supported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "doc":
		return DOC
	case "docx":
		return DOCX
	default:
		return ""
	}
}
