package config

import (
	"strings"
	"unicode"
)

// CleanFileName makes name usable as a report entry on any platform: path
// separators, characters reserved on Windows and control characters are
// removed together with leading dots.
func CleanFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(`<>":/\|?*;`, sym) {
			return -1
		}
		return sym
	}, in), ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}
