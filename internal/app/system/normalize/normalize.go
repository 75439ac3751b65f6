// Package normalize provides small, consistent cleanups for user-supplied
// values before they are validated or stored.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Category trims and lowercases a recipe category or meal type.
func Category(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tags trims and lowercases tag names, dropping blanks and duplicates.
// Order of first appearance is kept.
func Tags(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// QueryParam trims a raw query parameter value and preserves case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
