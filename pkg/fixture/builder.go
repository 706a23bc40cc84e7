// Package fixture discovers golden-file fixtures below a root directory and
// builds the tree of test cases they describe.
//
// Every directory below the root is either a group (subdirectories only) or a
// leaf (exactly one of input.yaml, input.bin or input.txt). Directories that
// are neither become diagnostics in the tree instead of aborting the build,
// so a single run reports every structural problem.
package fixture

import (
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specvital/fnfixture/pkg/domain"
)

var (
	// ErrInvalidRoot is returned when the root does not exist or is not a directory.
	ErrInvalidRoot = errors.New("fixture: invalid root")
	// ErrInvalidName is returned when the function name cannot form file names.
	ErrInvalidName = errors.New("fixture: invalid name")
	// ErrReservedName is returned when the expected file name collides with a reserved input name.
	ErrReservedName = errors.New("fixture: reserved name")
)

// Builder turns a fixture directory into a domain.Suite.
// A Builder is stateless between builds; each Build is single-threaded.
type Builder struct {
	options *Options
	root    string
}

// NewBuilder creates a builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return &Builder{options: options}
}

// Build walks root and returns the fixture tree.
//
// Configuration problems (missing root, unusable name) are returned as
// errors and no tree is produced. Structural problems inside the tree are
// recorded as invalid nodes and never stop the walk.
func Build(root string, opts ...Option) (*domain.Suite, error) {
	return NewBuilder(opts...).Build(root)
}

// Build walks root and returns the fixture tree.
func (b *Builder) Build(root string) (*domain.Suite, error) {
	if err := ValidateName(b.options.Name); err != nil {
		return nil, err
	}

	fsys := b.options.FS
	if fsys == nil {
		fsys = os.DirFS(root)
	}

	info, err := fs.Stat(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	// Builders are reusable, so root-dependent state lives on a copy.
	bb := *b
	bb.root = root

	return &domain.Suite{
		Name:     b.options.Name,
		Root:     bb.buildRoot(fsys),
		RootPath: root,
	}, nil
}

// ValidateName checks that name can be used to derive baseline file names.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q must be a plain file name", ErrInvalidName, name)
	}
	if ExpectedFileName(name) == domain.InputText {
		return fmt.Errorf("%w: cannot use %q, as it conflicts with %s detection", ErrReservedName, name, domain.InputText)
	}
	return nil
}

func (b *Builder) buildRoot(fsys fs.FS) *domain.Node {
	name := b.rootName()
	c := b.classify(fsys, ".")

	switch c.kind {
	case domain.KindGroup:
		return &domain.Node{
			Children: b.children(fsys, c.subdirs, nil),
			Kind:     domain.KindGroup,
			Name:     name,
			Path:     b.root,
		}
	case domain.KindLeaf:
		if !token.IsIdentifier(name) {
			return invalidNode(name, b.root, identifierDiagnostic(b.root))
		}
		return b.leafNode(fsys, name, ".", nil, c)
	default:
		return invalidNode(name, b.root, c.diag)
	}
}

// children builds one node per subdirectory. Problems in one sibling are
// recorded on that sibling's node and never affect the others.
func (b *Builder) children(fsys fs.FS, subdirs []entry, namespace []string) []*domain.Node {
	nodes := make([]*domain.Node, 0, len(subdirs))
	for _, e := range subdirs {
		nodes = append(nodes, b.node(fsys, e, namespace))
	}
	return nodes
}

func (b *Builder) node(fsys fs.FS, e entry, namespace []string) *domain.Node {
	path := b.display(e.rel)
	name := e.name()
	if !token.IsIdentifier(name) {
		return invalidNode(name, path, identifierDiagnostic(path))
	}

	c := b.classify(fsys, e.rel)
	switch c.kind {
	case domain.KindGroup:
		return &domain.Node{
			Children: b.children(fsys, c.subdirs, extend(namespace, name)),
			Kind:     domain.KindGroup,
			Name:     name,
			Path:     path,
		}
	case domain.KindLeaf:
		return b.leafNode(fsys, name, e.rel, namespace, c)
	default:
		return invalidNode(name, path, c.diag)
	}
}

func (b *Builder) rootName() string {
	if b.options.RootName != "" {
		return b.options.RootName
	}
	root := b.root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Base(root)
}

// display converts a root-relative slash path into a path for reporting.
func (b *Builder) display(rel string) string {
	if rel == "." || rel == "" {
		return b.root
	}
	return filepath.Join(b.root, filepath.FromSlash(rel))
}

func invalidNode(name, path string, diag *domain.Diagnostic) *domain.Node {
	return &domain.Node{
		Diagnostic: diag,
		Kind:       domain.KindInvalid,
		Name:       name,
		Path:       path,
	}
}

func identifierDiagnostic(path string) *domain.Diagnostic {
	return &domain.Diagnostic{
		Message: fmt.Sprintf("failed to convert file name of %s into an identifier", path),
		Path:    path,
	}
}

func extend(namespace []string, name string) []string {
	return append(slices.Clip(namespace), name)
}
