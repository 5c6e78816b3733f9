// Package core defines core types.
package core

import "regexp"

// methodPattern is the charset shared by the wire method field and hook
// registry keys.
var methodPattern = regexp.MustCompile(`^[A-Z_]+$`)

// ValidMethod reports whether s is a legal method name: non-empty,
// uppercase letters and underscores only.
func ValidMethod(s string) bool {
	return methodPattern.MatchString(s)
}
