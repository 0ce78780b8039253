// Package matcher compiles user-supplied regex sources into a pattern set
// and applies that set to extracted text, producing the deduplicated
// capture list a Finding Record is built from.
package matcher

import (
	"fmt"
	"regexp"
)

// Compile builds one *regexp.Regexp per source pattern. When caseSensitive
// is false, every pattern is compiled with Go's inline case-insensitivity
// flag prefixed, rather than folding case at match time (spec.md §4.4:
// "pattern text is pre-prefixed with a case-insensitivity toggle when the
// global flag is off; otherwise compiled verbatim").
func Compile(sources []string, caseSensitive bool) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		pattern := src
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("matcher: compile %q: %w", src, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Match runs every pattern, in order, once against text. For each pattern
// that matches, the whole match (group 0) and every capture group of that
// single match are appended to the result, skipping any substring already
// present (first-appearance order is preserved; later duplicates, within
// or across patterns, are dropped). Non-participating optional groups
// contribute nothing. Patterns that don't match contribute nothing — this
// is not cumulative across all occurrences in the text, only the first
// match per pattern.
func Match(patterns []*regexp.Regexp, text string) []string {
	var findings []string
	seen := make(map[string]struct{})

	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		findings = append(findings, s)
	}

	for _, re := range patterns {
		groups := re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		for _, g := range groups {
			if g == "" {
				continue
			}
			add(g)
		}
	}
	return findings
}
