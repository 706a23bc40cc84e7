// Package discover finds the fixture roots a module attaches functions to and
// validates the fixture trees below them.
//
// Test files are parsed with tree-sitter, so discovery works on modules that
// do not currently compile.
package discover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/fnfixture/pkg/domain"
	"github.com/specvital/fnfixture/pkg/fixture"
)

const (
	// DefaultWorkers indicates that the scanner should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// DefaultTimeout is the default scan timeout duration.
	DefaultTimeout = 5 * time.Minute
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// DefaultMaxFileSize is the default maximum file size for scanning (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// DefaultSkipDirs contains directory names that are skipped by default during scanning.
// testdata is skipped because the go tool ignores it.
var DefaultSkipDirs = []string{
	".git",
	"node_modules",
	"testdata",
	"vendor",
}

// Scan phases.
const (
	PhaseBuild     = "build"
	PhaseDiscovery = "discovery"
	PhaseParse     = "parse"
)

var (
	// ErrScanCancelled is returned when scanning is cancelled via context.
	ErrScanCancelled = errors.New("scanner: scan cancelled")
	// ErrScanTimeout is returned when scanning exceeds the timeout duration.
	ErrScanTimeout = errors.New("scanner: scan timeout")
)

// Scanner discovers attachments below a module root and builds their fixture trees.
type Scanner struct {
	options *ScanOptions
}

// ScanResult contains the outcome of a scan operation.
type ScanResult struct {
	// Attachments holds every discovered attachment, sorted by file and line.
	Attachments []Attachment

	// Errors contains non-fatal errors encountered during scanning.
	Errors []ScanError

	// Reports holds one report per attachment, in attachment order.
	// Empty when only discovery ran.
	Reports []Report

	// RootPath is the scanned directory.
	RootPath string

	// Stats provides scan statistics.
	Stats ScanStats
}

// Report is the validation result for one attachment.
type Report struct {
	// Attachment is the validated attachment.
	Attachment Attachment

	// Err is set when no tree could be built: the attachment cannot be
	// resolved statically or the root or name is unusable.
	Err error

	// Suite is the fixture tree, set when Err is nil.
	Suite *domain.Suite
}

// Failed reports whether the attachment would fail under go test for
// structural reasons.
func (r Report) Failed() bool {
	return r.Err != nil || (r.Suite != nil && r.Suite.CountDiagnostics() > 0)
}

// ScanError represents an error that occurred during a specific phase of scanning.
type ScanError struct {
	// Err is the underlying error.
	Err error

	// Path is the file path where the error occurred (may be empty for non-file errors).
	Path string

	// Phase indicates which phase the error occurred in.
	// Values: "discovery", "parse", "build"
	Phase string
}

// Error implements the error interface.
func (e ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e ScanError) Unwrap() error {
	return e.Err
}

// ScanStats provides statistics about the scan operation.
type ScanStats struct {
	// Attachments is the number of discovered attachments.
	Attachments int

	// Cases is the total number of test cases across built trees.
	Cases int

	// Diagnostics is the total number of invalid fixture directories.
	Diagnostics int

	// Duration is the total scan duration.
	Duration time.Duration

	// FilesFailed is the number of files that failed to parse.
	FilesFailed int

	// FilesMatched is the number of files containing at least one attachment.
	FilesMatched int

	// FilesScanned is the total number of test files discovered.
	FilesScanned int
}

// NewScanner creates a new scanner with the given options.
func NewScanner(opts ...ScanOption) *Scanner {
	options := &ScanOptions{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	return &Scanner{options: options}
}

// Scan discovers attachments below root and validates each one.
func Scan(ctx context.Context, root string, opts ...ScanOption) (*ScanResult, error) {
	return NewScanner(opts...).Scan(ctx, root)
}

// Scan discovers attachments below root and validates each one.
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result, err := s.discover(ctx, root)
	if err != nil {
		return result, err
	}

	s.validate(ctx, result, nil)
	result.Stats.Duration = time.Since(startTime)

	return result, contextError(ctx)
}

// Discover finds attachments below root without building their trees.
func (s *Scanner) Discover(ctx context.Context, root string) (*ScanResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result, err := s.discover(ctx, root)
	if err != nil {
		return result, err
	}
	result.Stats.Duration = time.Since(startTime)

	return result, contextError(ctx)
}

// Validate builds the fixture tree of every attachment in result and fills
// result.Reports. done, if not nil, is called once per finished attachment
// from worker goroutines.
func (s *Scanner) Validate(ctx context.Context, result *ScanResult, done func()) error {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	s.validate(ctx, result, done)
	result.Stats.Duration += time.Since(startTime)

	return contextError(ctx)
}

func (s *Scanner) discover(ctx context.Context, root string) (*ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanner: %s is not a directory", root)
	}

	result := &ScanResult{
		Attachments: []Attachment{},
		Errors:      []ScanError{},
		RootPath:    root,
	}

	files, errs := s.discoverTestFiles(ctx, root)
	for _, err := range errs {
		result.Errors = append(result.Errors, ScanError{
			Err:   err,
			Phase: PhaseDiscovery,
		})
	}
	result.Stats.FilesScanned = len(files)

	attachments, scanErrors, matched := s.parseFilesParallel(ctx, root, files)
	result.Attachments = attachments
	result.Errors = append(result.Errors, scanErrors...)
	result.Stats.Attachments = len(attachments)
	result.Stats.FilesFailed = len(scanErrors)
	result.Stats.FilesMatched = matched

	return result, nil
}

// discoverTestFiles walks root to find Go test files.
// Returns paths relative to root.
func (s *Scanner) discoverTestFiles(ctx context.Context, root string) ([]string, []error) {
	skipSet := buildSkipSet(append(slices.Clone(DefaultSkipDirs), s.options.SkipDirs...))

	var (
		files []string
		errs  []error
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			errs = append(errs, fmt.Errorf("access error at %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() {
			if shouldSkipDir(path, root, skipSet) {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsTestFile(path) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("compute relative path for %s: %w", path, err))
			return nil
		}

		if len(s.options.Patterns) > 0 && !matchesAnyPattern(relPath, s.options.Patterns) {
			return nil
		}

		if s.options.MaxFileSize > 0 {
			info, err := d.Info()
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to get file info for %s: %w", path, err))
				return nil
			}
			if info.Size() > s.options.MaxFileSize {
				return nil
			}
		}

		files = append(files, relPath)
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		errs = append(errs, err)
	}

	return files, errs
}

func (s *Scanner) parseFilesParallel(ctx context.Context, root string, files []string) ([]Attachment, []ScanError, int) {
	sem := semaphore.NewWeighted(int64(s.workers()))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		mu          sync.Mutex
		attachments = make([]Attachment, 0)
		scanErrors  = make([]ScanError, 0)
		matched     int
	)

	for _, file := range files {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			found, err := s.parseFile(gCtx, root, file)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				scanErrors = append(scanErrors, ScanError{Err: err, Path: file, Phase: PhaseParse})
				return nil
			}
			if len(found) > 0 {
				matched++
				attachments = append(attachments, found...)
			}
			return nil
		})
	}

	_ = g.Wait()

	// Goroutines finish in arbitrary order.
	sort.Slice(attachments, func(i, j int) bool {
		if attachments[i].File != attachments[j].File {
			return attachments[i].File < attachments[j].File
		}
		return attachments[i].Line < attachments[j].Line
	})
	sort.Slice(scanErrors, func(i, j int) bool {
		return scanErrors[i].Path < scanErrors[j].Path
	})

	return attachments, scanErrors, matched
}

func (s *Scanner) parseFile(ctx context.Context, root, relPath string) ([]Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, err
	}

	return ParseFile(ctx, content, filepath.ToSlash(relPath), s.options.ImportPath)
}

func (s *Scanner) validate(ctx context.Context, result *ScanResult, done func()) {
	reports := make([]Report, len(result.Attachments))

	sem := semaphore.NewWeighted(int64(s.workers()))
	g, gCtx := errgroup.WithContext(ctx)

	for i, a := range result.Attachments {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				reports[i] = Report{Attachment: a, Err: err}
				return nil
			}
			defer sem.Release(1)

			reports[i] = s.buildReport(result.RootPath, a)
			if done != nil {
				done()
			}
			return nil
		})
	}

	_ = g.Wait()

	result.Reports = reports
	for _, r := range reports {
		if r.Err != nil {
			result.Errors = append(result.Errors, ScanError{
				Err:   r.Err,
				Path:  r.Attachment.File,
				Phase: PhaseBuild,
			})
			continue
		}
		result.Stats.Cases += r.Suite.CountCases()
		result.Stats.Diagnostics += r.Suite.CountDiagnostics()
	}
}

// buildReport builds the fixture tree of a single attachment.
// Each build is single-threaded.
func (s *Scanner) buildReport(root string, a Attachment) Report {
	report := Report{Attachment: a}

	if a.Problem != "" {
		report.Err = fmt.Errorf("%s: %s", a, a.Problem)
		return report
	}

	name := a.BaseName()
	if name == "" {
		report.Err = fmt.Errorf("%s: cannot derive a baseline name from %s", a, a.Func)
		return report
	}

	rootPath := a.RootPath()
	if !filepath.IsAbs(rootPath) {
		rootPath = filepath.Join(root, rootPath)
	}

	exclude := append(slices.Clone(s.options.Exclude), a.Exclude...)
	suite, err := fixture.Build(rootPath,
		fixture.WithName(name),
		fixture.WithExclude(exclude...),
	)
	if err != nil {
		report.Err = fmt.Errorf("%s: %w", a, err)
		return report
	}

	report.Suite = suite
	return report
}

func (s *Scanner) workers() int {
	workers := s.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return workers
}

func contextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrScanTimeout
		}
		if errors.Is(err, context.Canceled) {
			return ErrScanCancelled
		}
	}
	return nil
}

func buildSkipSet(names []string) map[string]bool {
	skipSet := make(map[string]bool, len(names))
	for _, n := range names {
		skipSet[n] = true
	}
	return skipSet
}

func shouldSkipDir(path, rootPath string, skipSet map[string]bool) bool {
	if path == rootPath {
		return false
	}

	// The go tool ignores directories starting with "." or "_".
	base := filepath.Base(path)
	return skipSet[base] || (strings.HasPrefix(base, ".") && base != ".") || strings.HasPrefix(base, "_")
}

func matchesAnyPattern(relPath string, patterns []string) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
