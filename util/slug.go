// Package util provides shared utility functions.
package util

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun     = regexp.MustCompile(`\s+`)
	nonAlphanumHyphen = regexp.MustCompile(`[^a-z0-9-]`)
	multipleHyphens   = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a human-readable project name into a URL/repo-safe
// slug. It lowercases, replaces whitespace runs with hyphens, strips
// non-[a-z0-9-], collapses repeated hyphens, and trims leading and
// trailing hyphens.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonAlphanumHyphen.ReplaceAllString(s, "")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return s
}
