package utils

import "strings"

// CleanToValidUTF8 strips invalid UTF-8 sequences from feed-sourced text.
func CleanToValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}
