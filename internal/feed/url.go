package feed

import (
	"regexp"
	"strings"
)

var (
	commaSpace = regexp.MustCompile(`\s*,\s*`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// SplitTags splits a comma-separated tag attribute into ordered terms.
// Terms are trimmed; empty terms are dropped.
func SplitTags(s string) []string {
	return splitTerms(s)
}

// SplitCategories splits a comma-separated category attribute into ordered
// terms. Whitespace around commas is normalized before splitting, so
// "food,  fun" and "food , fun" both yield the same two terms.
func SplitCategories(s string) []string {
	return splitTerms(commaSpace.ReplaceAllString(s, ","))
}

func splitTerms(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var terms []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		terms = append(terms, part)
	}
	return terms
}

// BuildURL appends one &tag=<term> pair per filter term to the base feed
// URL, all tag terms first, then all category terms. Internal whitespace in
// a term is joined with "+" to match what the feed endpoint expects.
func BuildURL(base string, tags, categories []string) string {
	var b strings.Builder
	b.WriteString(base)
	appendTerms(&b, tags)
	appendTerms(&b, categories)
	return b.String()
}

func appendTerms(b *strings.Builder, terms []string) {
	for _, term := range terms {
		term = spaceRun.ReplaceAllString(strings.TrimSpace(term), "+")
		if term == "" {
			continue
		}
		b.WriteString("&tag=")
		b.WriteString(term)
	}
}
