// Package stages contains the file-tree transforms that make up a site build.
//
// Every stage implements build.Stage. Constructors validate their options so
// that configuration mistakes surface before any file is touched; Transform
// then mutates the tree held by the build context in place.
package stages
