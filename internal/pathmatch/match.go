// Package pathmatch selects tree keys by glob pattern.
//
// Patterns use doublestar syntax: '*' matches any run of characters except
// '/', '?' a single character, '[...]' a character class, '{a,b}' an
// alternation and '**' any number of directories (including none). A leading
// '!' negates a pattern.
//
// Patterns are applied in order. A positive pattern appends the keys it
// matches (in key order, skipping keys already selected); a negated pattern
// removes the keys it matches from the selection so far. A negated pattern
// at the front therefore removes nothing.
package pathmatch

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match returns the keys selected by patterns, preserving selection order.
func Match(keys []string, patterns []string) ([]string, error) {
	var selected []string
	seen := make(map[string]bool)

	for _, raw := range patterns {
		pattern, negated := strings.CutPrefix(raw, "!")
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", raw)
		}

		if negated {
			selected = slices.DeleteFunc(selected, func(k string) bool {
				if doublestar.MatchUnvalidated(pattern, k) {
					delete(seen, k)
					return true
				}
				return false
			})
			continue
		}

		for _, k := range keys {
			if seen[k] {
				continue
			}
			if doublestar.MatchUnvalidated(pattern, k) {
				selected = append(selected, k)
				seen[k] = true
			}
		}
	}
	return selected, nil
}

// Validate reports the first invalid pattern in patterns.
func Validate(patterns []string) error {
	for _, raw := range patterns {
		if !doublestar.ValidatePattern(strings.TrimPrefix(raw, "!")) {
			return fmt.Errorf("invalid pattern %q", raw)
		}
	}
	return nil
}
