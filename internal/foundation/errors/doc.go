// Package errors provides the classified error primitives used across sitebuilder.
//
// Every failure the build can report falls into a small taxonomy:
//   - CategoryConfig: stage configuration is invalid, detected before any file is touched
//   - CategoryReference: a relative path named by a file could not be found in the tree
//   - CategoryValidation: interactive input was rejected (the scaffold command re-prompts)
//   - CategoryFileSystem: reading the source tree or writing output failed
//   - CategoryBuild: a render stage failed on a specific file
//
// Example usage:
//
//	err := errors.ReferenceError("missing embed").
//		WithContext("target", "post/index.html").
//		WithContext("from", "appends").
//		WithContext("embed", "post/fragment.html").
//		Build()
package errors
