// Package source moves a file tree between disk and memory.
package source

import (
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Read loads every regular file below dir into a new tree. Keys are the
// slash-separated paths relative to dir, added in lexical walk order.
func Read(dir string) (*filetree.Tree, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "source directory unavailable").
			Fatal().
			WithContext("path", dir).
			Build()
	}
	if !info.IsDir() {
		return nil, ferrors.FileSystemError("source is not a directory").WithContext("path", dir).Build()
	}

	tree := filetree.New()
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		f := filetree.NewFile(raw)
		if fi, err := d.Info(); err == nil {
			f.Mode = fi.Mode().Perm()
		}
		return tree.Add(filepath.ToSlash(rel), f)
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read source tree").
			Fatal().
			WithContext("path", dir).
			Build()
	}
	return tree, nil
}

// Write stores every record of tree below dir and returns the number of files
// written. With clean set, dir is emptied first.
func Write(tree *filetree.Tree, dir string, clean bool) (int, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve destination").Fatal().Build()
	}
	if clean {
		if abs == filepath.Dir(abs) {
			return 0, ferrors.FileSystemError("refusing to clean filesystem root").WithContext("path", abs).Build()
		}
		if err := os.RemoveAll(abs); err != nil {
			return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "clean destination").
				Fatal().
				WithContext("path", abs).
				Build()
		}
	}

	written := 0
	for _, key := range tree.Paths() {
		f, _ := tree.Get(key)
		dest := filepath.Join(abs, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return written, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
				Fatal().
				WithContext("path", dest).
				Build()
		}
		mode := f.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(dest, f.Contents, mode); err != nil {
			return written, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write output file").
				Fatal().
				WithContext("path", dest).
				Build()
		}
		written++
	}
	return written, nil
}
