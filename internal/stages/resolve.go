package stages

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"
)

// dirOf returns the directory part of a tree key, "" for root-level keys.
func dirOf(key string) string {
	dir := path.Dir(key)
	if dir == "." {
		return ""
	}
	return dir
}

// resolveRelative joins name onto dir and normalizes the result to tree key
// form. A leading slash does not escape dir: "/x" under "post" is "post/x".
func resolveRelative(dir, name string) string {
	return filetree.CleanPath(path.Join(dir, name))
}

// joinPatterns prefixes every pattern with dir, keeping a leading '!'.
func joinPatterns(dir string, patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		neg := ""
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			neg, p = "!", rest
		}
		out = append(out, neg+resolveRelative(dir, p))
	}
	return out
}

// matchTree selects tree keys with pathmatch semantics.
func matchTree(tree *filetree.Tree, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	return pathmatch.Match(tree.Paths(), patterns)
}
