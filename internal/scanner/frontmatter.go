package scanner

import "strings"

type frontmatterRule struct {
	match   func(s, pattern string) bool
	pattern string
}

// frontmatterRules are matched against the lowercased file name.
var frontmatterRules = []frontmatterRule{
	{strings.HasPrefix, "00-"},
	{strings.HasPrefix, "00_"},
	{strings.Contains, "frontmatter"},
	{strings.HasPrefix, "cover."},
	{strings.HasPrefix, "toc."},
	{strings.Contains, "table-of-contents"},
	{strings.Contains, "table_of_contents"},
	{strings.HasPrefix, "title-page"},
	{strings.HasPrefix, "title_page"},
	{strings.HasPrefix, "copyright"},
	{strings.HasPrefix, "preface."},
	{strings.HasPrefix, "foreword."},
	{strings.HasPrefix, "acknowledgement"},
	{strings.HasPrefix, "dedication."},
	{strings.HasPrefix, "half-title"},
	{strings.HasPrefix, "half_title"},
}

// IsFrontmatter guesses from a file name whether the file holds front matter
// (cover, table of contents, preface, ...) rather than body content.
func IsFrontmatter(filename string) bool {
	lower := strings.ToLower(filename)
	for _, rule := range frontmatterRules {
		if rule.match(lower, rule.pattern) {
			return true
		}
	}
	return false
}
