package golden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	// ErrNoBaseline is returned when the expected file does not exist yet.
	// The rendered payload has been written to the actual file for review.
	ErrNoBaseline = errors.New("golden: no expected value set")
	// ErrNothingToPromote is returned by Promote when no actual file exists.
	ErrNothingToPromote = errors.New("golden: no actual file to promote")
)

// MismatchError reports a payload that differs from its baseline.
type MismatchError struct {
	Actual       string
	ActualPath   string
	Expected     string
	ExpectedPath string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "golden: output does not match %s (written to %s)\n", e.ExpectedPath, e.ActualPath)
	fmt.Fprintf(&sb, "--- got ---\n%s\n--- want ---\n%s\n", e.Actual, e.Expected)
	if diff := e.Diff(); diff != "" {
		fmt.Fprintf(&sb, "--- diff ---\n%s", diff)
	}
	return sb.String()
}

// Diff returns a unified diff from the baseline to the actual payload.
func (e *MismatchError) Diff() string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(e.Expected),
		B:        difflib.SplitLines(e.Actual),
		FromFile: e.ExpectedPath,
		ToFile:   e.ActualPath,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// Compare checks payload against the baseline at expectedPath.
//
// If the baseline exists it must equal payload byte for byte; on mismatch the
// payload is written to actualPath and a *MismatchError is returned. If the
// baseline does not exist the payload is written to actualPath and
// ErrNoBaseline is returned.
func Compare(expectedPath, actualPath, payload string) error {
	expected, err := os.ReadFile(expectedPath)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeActual(actualPath, payload); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s\n--- got ---\n%s", ErrNoBaseline, actualPath, payload)
	}
	if err != nil {
		return fmt.Errorf("golden: reading expected from %s: %w", expectedPath, err)
	}

	if string(expected) == payload {
		return nil
	}

	if err := writeActual(actualPath, payload); err != nil {
		return err
	}
	return &MismatchError{
		Actual:       payload,
		ActualPath:   actualPath,
		Expected:     string(expected),
		ExpectedPath: expectedPath,
	}
}

// Promote moves a reviewed actual file into place as the new baseline.
func Promote(actualPath, expectedPath string) error {
	if _, err := os.Stat(actualPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNothingToPromote, actualPath)
		}
		return fmt.Errorf("golden: stat %s: %w", actualPath, err)
	}
	if err := os.Rename(actualPath, expectedPath); err != nil {
		return fmt.Errorf("golden: promote %s: %w", actualPath, err)
	}
	return nil
}

func writeActual(path, payload string) error {
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		return fmt.Errorf("golden: writing actual to %s: %w", path, err)
	}
	return nil
}
