// Package filetree holds the in-memory file tree a build operates on.
//
// A Tree maps forward-slash pathnames to File records and remembers the order
// in which paths were added; that order is the iteration order seen by path
// matching, so stages behave deterministically across runs.
package filetree

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

// Tree is the mutable pathname -> File mapping for one build.
// It is not safe for concurrent mutation.
type Tree struct {
	files map[string]*File
	order []string
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{files: make(map[string]*File)}
}

// CleanPath normalizes p to the tree's key form: forward slashes,
// no leading "./" or "/", no "." or ".." segments where resolvable.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// Add inserts a new record. Adding a path that already exists is an error.
func (t *Tree) Add(p string, f *File) error {
	p = CleanPath(p)
	if p == "" {
		return fmt.Errorf("filetree: empty path")
	}
	if _, exists := t.files[p]; exists {
		return fmt.Errorf("filetree: duplicate path %q", p)
	}
	t.files[p] = f
	t.order = append(t.order, p)
	return nil
}

// Get returns the record for p.
func (t *Tree) Get(p string) (*File, bool) {
	f, ok := t.files[p]
	return f, ok
}

// Has reports whether p is present.
func (t *Tree) Has(p string) bool {
	_, ok := t.files[p]
	return ok
}

// Remove deletes p. Removing an absent path is a no-op.
func (t *Tree) Remove(p string) {
	if _, ok := t.files[p]; !ok {
		return
	}
	delete(t.files, p)
	if i := slices.Index(t.order, p); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
}

// Rename moves the record at from to to, keeping its position in the
// iteration order. The destination must not exist.
func (t *Tree) Rename(from, to string) error {
	to = CleanPath(to)
	f, ok := t.files[from]
	if !ok {
		return fmt.Errorf("filetree: rename of missing path %q", from)
	}
	if from == to {
		return nil
	}
	if _, exists := t.files[to]; exists {
		return fmt.Errorf("filetree: rename %q would overwrite %q", from, to)
	}
	delete(t.files, from)
	t.files[to] = f
	t.order[slices.Index(t.order, from)] = to
	return nil
}

// Paths returns all pathnames in insertion order.
func (t *Tree) Paths() []string {
	return slices.Clone(t.order)
}

// Len returns the number of records.
func (t *Tree) Len() int {
	return len(t.order)
}
