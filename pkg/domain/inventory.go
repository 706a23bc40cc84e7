package domain

// Suite is the result of one fixture tree build.
type Suite struct {
	// Name is the base function name the suite was built for.
	Name string `json:"name"`
	// Root is the node for the root directory.
	Root *Node `json:"root"`
	// RootPath is the root directory path.
	RootPath string `json:"rootPath"`
}

// Walk visits every node depth-first in sorted order.
// The visitor returns false to skip a node's children.
func (s *Suite) Walk(visit func(n *Node, depth int) bool) {
	if s.Root == nil {
		return
	}
	walk(s.Root, 0, visit)
}

func walk(n *Node, depth int, visit func(*Node, int) bool) {
	if !visit(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, visit)
	}
}

// CountCases returns the total number of test cases.
func (s *Suite) CountCases() int {
	if s.Root == nil {
		return 0
	}
	return s.Root.CountCases()
}

// CountDiagnostics returns the number of invalid nodes.
func (s *Suite) CountDiagnostics() int {
	return len(s.Diagnostics())
}

// Cases returns every test case in sorted order.
func (s *Suite) Cases() []*TestCase {
	var cases []*TestCase
	s.Walk(func(n *Node, _ int) bool {
		if n.Kind == KindLeaf {
			cases = append(cases, n.Case)
		}
		return true
	})
	return cases
}

// Diagnostics returns every structural problem found in the tree.
func (s *Suite) Diagnostics() []Diagnostic {
	var diags []Diagnostic
	s.Walk(func(n *Node, _ int) bool {
		if n.Kind == KindInvalid && n.Diagnostic != nil {
			diags = append(diags, *n.Diagnostic)
		}
		return true
	})
	return diags
}
