// Package snapshot attaches a function under test to a directory of golden
// fixtures and runs every fixture as a subtest.
//
//	func TestParse(t *testing.T) {
//		snapshot.Run(t, "testdata/parse", parse)
//	}
//
// Each leaf directory below the root holds one input (input.yaml, input.bin
// or input.txt). The input is decoded into the function's parameter, the
// function is called and the rendered result is compared against
// <name>.txt in the same directory. When the baseline is missing or differs,
// the rendered result is written to <name>.actual.txt and the subtest fails.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specvital/fnfixture/pkg/domain"
	"github.com/specvital/fnfixture/pkg/fixture"
	"github.com/specvital/fnfixture/pkg/golden"
)

// Case identifies one fixture on disk. Generated tests pass it to Check.
type Case struct {
	// Actual is the path <name>.actual.txt is written to.
	Actual string
	// Expected is the baseline path.
	Expected string
	// Input is the path of the leaf's input artifact.
	Input string
}

// Run builds the fixture tree below root and runs one subtest per leaf,
// nested by group. Structural problems in the tree become failing subtests;
// an unusable root or function name fails t immediately.
func Run[T, R any](t *testing.T, root string, fn func(T) R, opts ...Option) {
	t.Helper()

	o := newOptions(opts)
	suite, err := build(root, fn, o)
	if err != nil {
		t.Fatal(err)
	}

	switch suite.Root.Kind {
	case domain.KindGroup:
		for _, child := range suite.Root.Children {
			attach(t, child, fn, o)
		}
	default:
		attach(t, suite.Root, fn, o)
	}
}

// Check runs a single fixture. It is the entry point of generated tests.
func Check[T, R any](t *testing.T, fn func(T) R, c Case, opts ...Option) {
	t.Helper()

	kind, ok := domain.ArtifactKindFor(filepath.Base(c.Input))
	if !ok {
		t.Fatalf("snapshot: %s is not one of %v", c.Input, domain.ReservedInputs)
	}

	tc := &domain.TestCase{
		ActualPath:   c.Actual,
		ExpectedPath: c.Expected,
		Input:        domain.InputArtifact{Kind: kind, Path: c.Input},
		Load: func() ([]byte, error) {
			return os.ReadFile(c.Input)
		},
		Name: filepath.Base(filepath.Dir(c.Input)),
	}
	if err := verify(fn, tc, newOptions(opts)); err != nil {
		t.Fatal(err)
	}
}

func build[T, R any](root string, fn func(T) R, o *Options) (*domain.Suite, error) {
	name := o.Name
	if name == "" {
		n, err := FuncName(fn)
		if err != nil {
			return nil, fmt.Errorf("%w (use snapshot.Name)", err)
		}
		name = n
	}

	return fixture.Build(root,
		fixture.WithName(name),
		fixture.WithExclude(o.Exclude...),
	)
}

func attach[T, R any](t *testing.T, n *domain.Node, fn func(T) R, o *Options) {
	t.Helper()

	t.Run(n.Name, func(t *testing.T) {
		switch n.Kind {
		case domain.KindGroup:
			for _, child := range n.Children {
				attach(t, child, fn, o)
			}
		case domain.KindLeaf:
			if o.Parallel {
				t.Parallel()
			}
			if err := verify(fn, n.Case, o); err != nil {
				t.Fatal(err)
			}
		default:
			t.Fatal(n.Diagnostic)
		}
	})
}

// verify loads and decodes the input, calls fn and compares the rendered
// result against the baseline.
func verify[T, R any](fn func(T) R, tc *domain.TestCase, o *Options) error {
	content, err := tc.Load()
	if err != nil {
		return fmt.Errorf("snapshot: reading %s: %w", tc.Input.Path, err)
	}

	input, err := decode[T](tc.Input.Kind, content)
	if err != nil {
		return err
	}

	var payload string
	if o.Plaintext {
		payload = golden.Display(fn(input))
	} else {
		payload = golden.Capture(func() any { return fn(input) }).Payload()
	}

	return golden.Compare(tc.ExpectedPath, tc.ActualPath, payload)
}
