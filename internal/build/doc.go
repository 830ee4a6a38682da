// Package build runs an ordered list of stages over an in-memory file tree.
//
// A build is one pass: the generator reads the source directory into a
// filetree.Tree, Run hands it to each stage in turn through a Context and the
// first failing stage aborts the pass. Nothing is written unless every stage
// succeeds. Run always returns a Report describing what happened.
package build
