package discover

import (
	"time"
)

// ScanOptions configures scanner behavior.
type ScanOptions struct {
	// Exclude holds doublestar patterns for fixture subdirectories, applied
	// to every root in addition to the attachment's own Exclude option.
	Exclude []string

	// ImportPath is the driver import path looked for in test files.
	// Defaults to DefaultImportPath.
	ImportPath string

	// MaxFileSize is the maximum file size in bytes to process.
	// Files larger than this are skipped.
	MaxFileSize int64

	// Patterns specifies doublestar patterns, relative to the scan root,
	// to filter test files. Empty means every *_test.go file is processed.
	Patterns []string

	// SkipDirs specifies directory names to skip during file discovery.
	// These are combined with DefaultSkipDirs.
	SkipDirs []string

	// Timeout is the maximum duration for the entire scan operation.
	// Zero or negative values use DefaultTimeout.
	Timeout time.Duration

	// Workers specifies the number of concurrent file parsers and tree builders.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int
}

// ScanOption is a functional option for configuring Scanner.
type ScanOption func(*ScanOptions)

// WithWorkers sets the number of concurrent workers.
// Negative values are ignored.
func WithWorkers(n int) ScanOption {
	return func(o *ScanOptions) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithTimeout sets the scan timeout duration.
// Negative values are ignored.
func WithTimeout(d time.Duration) ScanOption {
	return func(o *ScanOptions) {
		if d >= 0 {
			o.Timeout = d
		}
	}
}

// WithSkipDirs adds directory names to skip during file discovery.
func WithSkipDirs(names []string) ScanOption {
	return func(o *ScanOptions) {
		o.SkipDirs = names
	}
}

// WithExclude sets fixture exclude patterns applied to every root.
func WithExclude(patterns []string) ScanOption {
	return func(o *ScanOptions) {
		o.Exclude = patterns
	}
}

// WithImportPath sets the driver import path.
func WithImportPath(path string) ScanOption {
	return func(o *ScanOptions) {
		o.ImportPath = path
	}
}

// WithMaxFileSize sets the maximum file size to process.
func WithMaxFileSize(size int64) ScanOption {
	return func(o *ScanOptions) {
		if size >= 0 {
			o.MaxFileSize = size
		}
	}
}

// WithPatterns sets glob patterns to filter test files.
func WithPatterns(patterns []string) ScanOption {
	return func(o *ScanOptions) {
		o.Patterns = patterns
	}
}

func applyDefaults(opts *ScanOptions) {
	if opts.ImportPath == "" {
		opts.ImportPath = DefaultImportPath
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
}
