package domain

import (
	"fmt"
	"strings"
)

// NodeKind classifies a directory in the fixture tree.
type NodeKind string

// Node kinds.
const (
	// KindGroup is a directory holding only subdirectories.
	KindGroup NodeKind = "group"
	// KindLeaf is a directory holding exactly one recognized input artifact.
	KindLeaf NodeKind = "leaf"
	// KindInvalid is a directory matching neither shape.
	KindInvalid NodeKind = "invalid"
)

// Diagnostic is a structural problem tied to a fixture directory.
// Diagnostics are never dropped: each one becomes an always-failing unit.
type Diagnostic struct {
	// Err is the underlying error, if any.
	Err error `json:"-"`
	// Message is the human-readable cause.
	Message string `json:"message"`
	// Path is the offending directory or entry.
	Path string `json:"path"`
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(d.Message)
	if d.Path != "" && !strings.Contains(d.Message, d.Path) {
		fmt.Fprintf(&sb, " in %q", d.Path)
	}
	if d.Err != nil {
		fmt.Fprintf(&sb, ": %v", d.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error {
	return d.Err
}

// TestCase is the unit emitted for one leaf directory.
type TestCase struct {
	// ActualPath is where a freshly rendered payload is written.
	ActualPath string `json:"actualPath"`
	// ExpectedPath is the recorded baseline.
	ExpectedPath string `json:"expectedPath"`
	// Input is the leaf's recorded input.
	Input InputArtifact `json:"input"`
	// Load supplies the artifact content.
	Load func() ([]byte, error) `json:"-"`
	// Name is the leaf directory name.
	Name string `json:"name"`
	// Namespace holds the names of the enclosing groups, outermost first.
	Namespace []string `json:"namespace,omitempty"`
}

// FullName returns the slash separated path of the case, matching go test -run syntax.
func (c *TestCase) FullName() string {
	if len(c.Namespace) == 0 {
		return c.Name
	}
	return strings.Join(c.Namespace, "/") + "/" + c.Name
}

// Node is a directory in the discovered fixture tree.
type Node struct {
	// Case is set for leaves.
	Case *TestCase `json:"case,omitempty"`
	// Children holds group members in sorted order.
	Children []*Node `json:"children,omitempty"`
	// Diagnostic is set for invalid nodes.
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
	// Kind is the classification of the directory.
	Kind NodeKind `json:"kind"`
	// Name is the directory name.
	Name string `json:"name"`
	// Path is the directory path.
	Path string `json:"path"`
}

// CountCases returns the number of test cases in this subtree.
func (n *Node) CountCases() int {
	switch n.Kind {
	case KindLeaf:
		return 1
	case KindGroup:
		count := 0
		for _, c := range n.Children {
			count += c.CountCases()
		}
		return count
	default:
		return 0
	}
}
