package fixture

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/specvital/fnfixture/pkg/domain"
)

// classification is the directory-local decision for one directory.
type classification struct {
	artifact domain.InputArtifact
	// artifactRel is the artifact path relative to the fixture root.
	artifactRel string
	diag        *domain.Diagnostic
	kind        domain.NodeKind
	subdirs     []entry
}

// readDir reads the immediate children of rel. A failing read of the
// directory itself is returned as an error; failures tied to individual
// entries are returned as error entries.
func (b *Builder) readDir(fsys fs.FS, rel string) ([]entry, error) {
	dirEntries, err := fs.ReadDir(fsys, rel)
	if err != nil && len(dirEntries) == 0 {
		return nil, err
	}

	entries := make([]entry, 0, len(dirEntries)+1)
	for _, d := range dirEntries {
		entries = append(entries, entry{dirEntry: d, rel: joinRel(rel, d.Name())})
	}
	if err != nil {
		entries = append(entries, entry{err: fmt.Errorf("failed to get entry in %s: %w", rel, err), rel: rel})
	}

	return sortEntries(entries), nil
}

// classify reads the children of the directory at rel and decides whether it
// is a group, a leaf or invalid.
func (b *Builder) classify(fsys fs.FS, rel string) classification {
	entries, err := b.readDir(fsys, rel)
	if err != nil {
		return invalid(b.display(rel), "failed to read fixture directory", err)
	}

	var (
		artifacts    []domain.InputArtifact
		artifactRels []string
		subdirs      []entry
		errs         []error
	)

	for _, e := range entries {
		if e.err != nil {
			subdirs = append(subdirs, e)
			errs = append(errs, e.err)
			continue
		}

		isDir, err := b.isDir(fsys, e)
		if err != nil {
			e.err = fmt.Errorf("bad file type of %s: %w", e.rel, err)
			subdirs = append(subdirs, e)
			errs = append(errs, e.err)
			continue
		}

		if isDir {
			if b.excluded(e.rel) {
				continue
			}
			subdirs = append(subdirs, e)
			continue
		}

		kind, ok := domain.ArtifactKindFor(e.name())
		if !ok {
			continue
		}
		artifacts = append(artifacts, domain.InputArtifact{Kind: kind, Path: b.display(e.rel)})
		artifactRels = append(artifactRels, e.rel)
	}

	switch {
	case len(artifacts) == 1 && len(subdirs) == 0:
		return classification{
			kind:        domain.KindLeaf,
			artifact:    artifacts[0],
			artifactRel: artifactRels[0],
		}
	case len(artifacts) == 0 && len(subdirs) > 0 && len(errs) == 0:
		return classification{
			kind:    domain.KindGroup,
			subdirs: subdirs,
		}
	default:
		return invalid(b.display(rel), shapeMessage(b.display(rel)), errors.Join(errs...))
	}
}

func (b *Builder) isDir(fsys fs.FS, e entry) (bool, error) {
	if e.dirEntry.Type()&fs.ModeSymlink == 0 {
		return e.dirEntry.IsDir(), nil
	}
	info, err := fs.Stat(fsys, e.rel)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (b *Builder) excluded(rel string) bool {
	for _, pattern := range b.options.Exclude {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func invalid(path, message string, err error) classification {
	return classification{
		kind: domain.KindInvalid,
		diag: &domain.Diagnostic{
			Err:     err,
			Message: message,
			Path:    path,
		},
	}
}

func shapeMessage(dir string) string {
	names := domain.ReservedInputs
	return fmt.Sprintf(
		"expected sub-directories or exactly one of %s, or %s in %s",
		strings.Join(names[:len(names)-1], ", "),
		names[len(names)-1],
		dir,
	)
}

func joinRel(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return path.Join(dir, name)
}
