// Package normalize provides canonical forms for values that arrive
// from forms, query strings, and imported records. Storing and
// comparing normalized values keeps lookups predictable.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-form query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// FilterParam trims a filter value and converts the "all" sentinel
// (any case) to empty, meaning no constraint. Used by the dashboard
// agent and status dropdowns.
func FilterParam(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
