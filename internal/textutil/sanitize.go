// Package textutil provides filename sanitization for archive entries and
// download names.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer maps path separators and reserved characters to '_'.
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

// SanitizeFileName maps arbitrary text to an archive-safe token. The text is
// NFC normalized, reserved characters and control characters become '_'.
// Empty input yields "asset".
func SanitizeFileName(name string) string {
	if name == "" {
		name = "asset"
	}
	name = norm.NFC.String(name)
	name = fileNameReplacer.Replace(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
}

// DownloadName builds "<title>_v<version>.<ext>" using fallback when the
// title is blank and "1.00" when the version is.
func DownloadName(title, fallback, version, ext string) string {
	if strings.TrimSpace(title) == "" {
		title = fallback
	}
	if strings.TrimSpace(version) == "" {
		version = "1.00"
	}
	return SanitizeFileName(title) + "_v" + version + "." + ext
}
