package render

import (
	"html"
	"regexp"
	"strings"
)

var (
	markupTag = regexp.MustCompile(`<[^>]*>`)
	wsRun     = regexp.MustCompile(`\s+`)
)

// StripTags reduces a markup-bearing description to plain text: every tag
// becomes a single space, entities are decoded, non-breaking spaces count
// as spaces, whitespace runs collapse to one space and the result is
// trimmed.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	s = markupTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, " ", " ")
	s = wsRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
