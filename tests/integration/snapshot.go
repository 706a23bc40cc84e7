//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specvital/fnfixture/pkg/discover"
)

// Snapshot represents a golden snapshot for a module scan result.
type Snapshot struct {
	Attachments int            `json:"attachments"`
	Cases       int            `json:"cases"`
	Diagnostics int            `json:"diagnostics"`
	Module      string         `json:"module"`
	Roots       []SnapshotRoot `json:"roots"`
	Stats       SnapshotStats  `json:"stats"`
}

// SnapshotRoot summarizes the fixture tree of one attachment.
type SnapshotRoot struct {
	Cases       int    `json:"cases"`
	Diagnostics int    `json:"diagnostics"`
	Error       string `json:"error,omitempty"`
	File        string `json:"file"`
	Name        string `json:"name"`
	Root        string `json:"root"`
	Test        string `json:"test"`
}

// Key identifies a root independently of its line number.
func (r SnapshotRoot) Key() string {
	return r.File + "#" + r.Test + "#" + r.Root
}

// SnapshotStats contains scan statistics for comparison.
type SnapshotStats struct {
	FilesMatched int `json:"filesMatched"`
}

// SnapshotFromScanResult creates a Snapshot from a scan result.
func SnapshotFromScanResult(m Module, result *discover.ScanResult) *Snapshot {
	roots := make([]SnapshotRoot, 0, len(result.Reports))
	for _, r := range result.Reports {
		root := SnapshotRoot{
			File: r.Attachment.File,
			Name: r.Attachment.BaseName(),
			Root: r.Attachment.Root,
			Test: r.Attachment.Test,
		}
		if r.Err != nil {
			root.Error = r.Err.Error()
		} else {
			root.Cases = r.Suite.CountCases()
			root.Diagnostics = r.Suite.CountDiagnostics()
		}
		roots = append(roots, root)
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].Key() < roots[j].Key()
	})

	return &Snapshot{
		Attachments: result.Stats.Attachments,
		Cases:       result.Stats.Cases,
		Diagnostics: result.Stats.Diagnostics,
		Module:      m.Name,
		Roots:       roots,
		Stats: SnapshotStats{
			FilesMatched: result.Stats.FilesMatched,
		},
	}
}

// SaveSnapshot saves a snapshot to the golden directory.
func SaveSnapshot(snapshot *Snapshot) error {
	goldenDir, err := getGoldenDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(goldenDir, 0755); err != nil {
		return fmt.Errorf("create golden dir: %w", err)
	}

	path := filepath.Join(goldenDir, snapshotFilename(snapshot.Module))
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot loads a snapshot from the golden directory.
func LoadSnapshot(moduleName string) (*Snapshot, error) {
	goldenDir, err := getGoldenDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(goldenDir, snapshotFilename(moduleName))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s (run with -update to create)", path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// SnapshotDiff represents differences between expected and actual snapshots.
type SnapshotDiff struct {
	AttachmentCountDiff int
	CaseCountDiff       int
	ChangedRoots        []string
	DiagnosticCountDiff int
	ExtraRoots          []string
	MissingRoots        []string
}

// IsEmpty returns true if there are no differences.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.AttachmentCountDiff == 0 &&
		d.CaseCountDiff == 0 &&
		d.DiagnosticCountDiff == 0 &&
		len(d.ChangedRoots) == 0 &&
		len(d.MissingRoots) == 0 &&
		len(d.ExtraRoots) == 0
}

// String returns a human-readable diff summary.
func (d *SnapshotDiff) String() string {
	if d.IsEmpty() {
		return "no differences"
	}

	var sb strings.Builder

	if d.AttachmentCountDiff != 0 {
		fmt.Fprintf(&sb, "  attachment count: %+d\n", d.AttachmentCountDiff)
	}
	if d.CaseCountDiff != 0 {
		fmt.Fprintf(&sb, "  case count: %+d\n", d.CaseCountDiff)
	}
	if d.DiagnosticCountDiff != 0 {
		fmt.Fprintf(&sb, "  diagnostic count: %+d\n", d.DiagnosticCountDiff)
	}

	writeList(&sb, "changed roots", "~", d.ChangedRoots)
	writeList(&sb, "missing roots", "-", d.MissingRoots)
	writeList(&sb, "extra roots", "+", d.ExtraRoots)

	return sb.String()
}

func writeList(sb *strings.Builder, title, marker string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s (%d):\n", title, len(items))
	for i, item := range items {
		if i == 10 {
			fmt.Fprintf(sb, "    ... and %d more\n", len(items)-10)
			break
		}
		fmt.Fprintf(sb, "    %s %s\n", marker, item)
	}
}

// CompareSnapshots compares an expected snapshot with an actual scan result.
func CompareSnapshots(expected *Snapshot, actual *Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{
		AttachmentCountDiff: actual.Attachments - expected.Attachments,
		CaseCountDiff:       actual.Cases - expected.Cases,
		DiagnosticCountDiff: actual.Diagnostics - expected.Diagnostics,
	}

	expectedRoots := make(map[string]SnapshotRoot, len(expected.Roots))
	for _, r := range expected.Roots {
		expectedRoots[r.Key()] = r
	}

	actualRoots := make(map[string]SnapshotRoot, len(actual.Roots))
	for _, r := range actual.Roots {
		actualRoots[r.Key()] = r
	}

	for key, want := range expectedRoots {
		got, ok := actualRoots[key]
		switch {
		case !ok:
			diff.MissingRoots = append(diff.MissingRoots, key)
		case got != want:
			diff.ChangedRoots = append(diff.ChangedRoots, key)
		}
	}

	for key := range actualRoots {
		if _, ok := expectedRoots[key]; !ok {
			diff.ExtraRoots = append(diff.ExtraRoots, key)
		}
	}

	sort.Strings(diff.ChangedRoots)
	sort.Strings(diff.MissingRoots)
	sort.Strings(diff.ExtraRoots)

	return diff
}

func getGoldenDir() (string, error) {
	testDataDir, err := getTestDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(testDataDir, "golden"), nil
}

func snapshotFilename(moduleName string) string {
	return unsafePathChars.ReplaceAllString(moduleName, "_") + ".json"
}
