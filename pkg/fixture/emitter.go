package fixture

import (
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/specvital/fnfixture/pkg/domain"
)

// leafNode emits the test case for a leaf directory at rel.
func (b *Builder) leafNode(fsys fs.FS, name, rel string, namespace []string, c classification) *domain.Node {
	dir := b.display(rel)
	artifactRel := c.artifactRel

	return &domain.Node{
		Case: &domain.TestCase{
			ActualPath:   filepath.Join(dir, ActualFileName(b.options.Name)),
			ExpectedPath: filepath.Join(dir, ExpectedFileName(b.options.Name)),
			Input:        c.artifact,
			Load: func() ([]byte, error) {
				return fs.ReadFile(fsys, artifactRel)
			},
			Name:      name,
			Namespace: slices.Clone(namespace),
		},
		Kind: domain.KindLeaf,
		Name: name,
		Path: dir,
	}
}
