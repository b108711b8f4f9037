// Package htmlsanitize cleans user-supplied HTML before storage or
// display. It wraps a bluemonday UGC policy extended with table
// attributes so rich notes (driver suggestions, footer HTML) can carry
// basic formatting without script injection.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy is built once; bluemonday policies are safe for concurrent use.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// Text formatting beyond the UGC defaults.
	p.AllowElements("u", "s", "sub", "sup", "mark")

	// Tables with structural attributes and styling hooks.
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th")
	p.AllowAttrs("style").OnElements("table", "tr", "td", "th")
	p.AllowStyles("width", "height", "text-align", "vertical-align").Globally()

	p.AllowImages()

	return p
}

// Sanitize returns s with unsafe HTML removed. Safe formatting tags,
// lists, tables, links, and images survive; scripts, event handlers,
// iframes, and javascript: URLs do not.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeToHTML sanitizes s and returns it as template.HTML so the
// template engine does not escape it a second time.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags. A string needs
// both '<' and '>' to count as markup; "5 < 10" is plain text.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}

// PlainTextToHTML escapes s and wraps it in a paragraph, converting
// newlines to <br>. Empty input stays empty.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay renders stored text for safe template output.
// Plain text is escaped and paragraph-wrapped; HTML is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
