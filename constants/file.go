package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for order documents.
// "txt" files are pre-extracted line dumps and skip the PDF converter.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsText reports whether the extension denotes an already extracted line dump.
func IsText(ext string) bool {
	return NormalizeExt(ext) == "txt"
}
