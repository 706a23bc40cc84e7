package fixture

import (
	"io/fs"
)

const (
	// ExpectedSuffix is appended to the function name to form the baseline file name.
	ExpectedSuffix = ".txt"
	// ActualSuffix is appended to the function name to form the actual output file name.
	ActualSuffix = ".actual.txt"
)

// Options configures tree building.
type Options struct {
	// Exclude holds doublestar patterns, relative to the root, for
	// subdirectories that are left out of the tree entirely.
	Exclude []string

	// FS is the file system the root is read from. It must be rooted at the
	// fixture root. If nil, os.DirFS(root) is used.
	FS fs.FS

	// Name is the base name of the function under test. It determines the
	// expected (<name>.txt) and actual (<name>.actual.txt) file names.
	Name string

	// RootName overrides the name of the root node.
	// Defaults to the base name of the absolute root path.
	RootName string
}

// Option is a functional option for configuring Builder.
type Option func(*Options)

// WithName sets the base name of the function under test.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithExclude adds doublestar patterns for subdirectories to skip.
func WithExclude(patterns ...string) Option {
	return func(o *Options) {
		o.Exclude = append(o.Exclude, patterns...)
	}
}

// WithFS reads the fixture tree from fsys instead of the OS file system.
// The root argument of Build is then only used to report paths.
func WithFS(fsys fs.FS) Option {
	return func(o *Options) {
		o.FS = fsys
	}
}

// WithRootName sets the name of the root node.
func WithRootName(name string) Option {
	return func(o *Options) {
		o.RootName = name
	}
}

// ExpectedFileName returns the baseline file name for a function name.
func ExpectedFileName(name string) string {
	return name + ExpectedSuffix
}

// ActualFileName returns the actual output file name for a function name.
func ActualFileName(name string) string {
	return name + ActualSuffix
}
