package util

import (
	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKD normalization. Passwords that may contain Unicode
// are normalized before use so that the same input produces the same bundle
// across platforms with different input methods.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}
