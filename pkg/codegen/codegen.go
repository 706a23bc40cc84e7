// Package codegen renders a fixture tree as Go test source.
//
// The generated file holds one test function whose nested subtests mirror the
// fixture groups. Leaves call snapshot.Check; invalid directories become
// t.Fatal statements so the problem shows up in go test output.
package codegen

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"path/filepath"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/specvital/fnfixture/pkg/domain"
)

const (
	// DefaultPrefix is the test function prefix.
	DefaultPrefix = "Test"
	// DefaultImportPath is the import path of the driver package.
	DefaultImportPath = domain.DriverImportPath
)

var (
	// ErrInvalidConfig is returned when Config cannot produce valid source.
	ErrInvalidConfig = errors.New("codegen: invalid config")
	// ErrEmptySuite is returned for a suite without a root node.
	ErrEmptySuite = errors.New("codegen: empty suite")
)

//go:embed test.go.tmpl
var testTemplate string

var tmpl = template.Must(template.New("test").Parse(testTemplate))

// Config controls the generated source.
type Config struct {
	// Func is the Go expression for the function under test.
	// Defaults to the suite name.
	Func string

	// ImportPath of the snapshot package. Defaults to DefaultImportPath.
	ImportPath string

	// Package is the package clause of the generated file.
	Package string

	// Parallel marks every leaf with t.Parallel.
	Parallel bool

	// Plaintext passes snapshot.Plaintext() to every check.
	Plaintext bool

	// Prefix is prepended to the exported suite name to form the test
	// function name. Defaults to DefaultPrefix.
	Prefix string
}

type fileView struct {
	ImportPath string
	Package    string
	Root       []nodeView
	TestName   string
}

type nodeView struct {
	Actual   string
	Children []nodeView
	Expected string
	Func     string
	Input    string
	IsGroup  bool
	IsLeaf   bool
	Message  string
	Name     string
	Options  []string
	Parallel bool
}

// Generate renders suite as a gofmt-formatted Go test file.
func Generate(suite *domain.Suite, cfg Config) ([]byte, error) {
	if suite == nil || suite.Root == nil {
		return nil, ErrEmptySuite
	}

	cfg = withDefaults(cfg, suite)
	if err := validate(cfg); err != nil {
		return nil, err
	}

	view := fileView{
		ImportPath: cfg.ImportPath,
		Package:    cfg.Package,
		TestName:   cfg.Prefix + exported(suite.Name),
	}
	g := generator{cfg: cfg}
	if suite.Root.Kind == domain.KindGroup {
		view.Root = g.nodes(suite.Root.Children)
	} else {
		view.Root = []nodeView{g.node(suite.Root)}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("codegen: execute template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: format generated source: %w", err)
	}
	return src, nil
}

type generator struct {
	cfg Config
}

func (g generator) nodes(nodes []*domain.Node) []nodeView {
	views := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, g.node(n))
	}
	return views
}

func (g generator) node(n *domain.Node) nodeView {
	v := nodeView{Name: n.Name}

	switch n.Kind {
	case domain.KindGroup:
		v.IsGroup = true
		v.Children = g.nodes(n.Children)
	case domain.KindLeaf:
		v.IsLeaf = true
		v.Actual = filepath.ToSlash(n.Case.ActualPath)
		v.Expected = filepath.ToSlash(n.Case.ExpectedPath)
		v.Func = g.cfg.Func
		v.Input = filepath.ToSlash(n.Case.Input.Path)
		v.Options = g.options()
		v.Parallel = g.cfg.Parallel
	default:
		if n.Diagnostic != nil {
			v.Message = n.Diagnostic.Error()
		} else {
			v.Message = fmt.Sprintf("invalid fixture %s", n.Path)
		}
	}

	return v
}

// options returns the trailing option expressions of a snapshot.Check call.
func (g generator) options() []string {
	var opts []string
	if g.cfg.Plaintext {
		opts = append(opts, "snapshot.Plaintext()")
	}
	return opts
}

func withDefaults(cfg Config, suite *domain.Suite) Config {
	if cfg.Func == "" {
		cfg.Func = suite.Name
	}
	if cfg.ImportPath == "" {
		cfg.ImportPath = DefaultImportPath
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	return cfg
}

func validate(cfg Config) error {
	if !token.IsIdentifier(cfg.Package) {
		return fmt.Errorf("%w: package %q is not an identifier", ErrInvalidConfig, cfg.Package)
	}
	if cfg.Func == "" {
		return fmt.Errorf("%w: function expression is required", ErrInvalidConfig)
	}
	if !token.IsIdentifier(cfg.Prefix) {
		return fmt.Errorf("%w: prefix %q is not an identifier", ErrInvalidConfig, cfg.Prefix)
	}
	return nil
}

// exported upper-cases the first rune so the name reads as part of a test name.
func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
