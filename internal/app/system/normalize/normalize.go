// Package normalize trims and canonicalizes user-supplied strings.
package normalize

import "strings"

// Email trims whitespace and lowercases.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims whitespace and collapses internal runs of spaces. Case is kept.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Lower trims whitespace and lowercases. Used for enum-like fields such as
// status, role and availability.
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// List trims each entry and drops empties.
func List(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
