package ca

import (
	"regexp"
	"strings"
)

var nonAlnumRunRE = regexp.MustCompile(`[^A-Za-z0-9]+`)

// DeriveFileName converts a certificate common name into a safe base file
// name. Each run of non-alphanumeric characters collapses to a single
// hyphen, except that hyphens already present in the run are kept, so
// "api.company.com" becomes "api-company-com" and "--weird--.test" becomes
// "weird--test" after leading/trailing hyphens are trimmed.
//
// The result may be empty when the common name contains no alphanumeric
// characters; callers must treat that as an invalid name.
func DeriveFileName(commonName string) string {
	s := nonAlnumRunRE.ReplaceAllStringFunc(commonName, func(run string) string {
		if n := strings.Count(run, "-"); n > 1 {
			return strings.Repeat("-", n)
		}
		return "-"
	})
	return strings.Trim(s, "-")
}
