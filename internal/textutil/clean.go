package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanName trims surrounding whitespace, applies NFC and drops control
// characters other than whitespace. Inner spacing and format characters such
// as ZWNJ are kept. The result is empty when nothing but whitespace remains.
func CleanName(value string) string {
	if value == "" {
		return ""
	}
	value = norm.NFC.String(value)
	value = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	return strings.TrimFunc(value, trimmable)
}

// trimmable matches whitespace and a stray byte order mark at either end.
func trimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a bare filename and
// guarantees the given extension. Returns fallback when nothing usable remains.
func SanitizeFileName(name, ext, fallback string) string {
	name = strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(name)))
	name = strings.Trim(name, ".")
	if name == "" {
		return fallback
	}
	if ext != "" && !strings.EqualFold(extOf(name), ext) {
		name += ext
	}
	return name
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
