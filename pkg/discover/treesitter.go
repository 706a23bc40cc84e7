package discover

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/fnfixture/pkg/discover/tspool"
)

// Go grammar node types.
const (
	nodeBlankIdentifier          = "blank_identifier"
	nodeCallExpression           = "call_expression"
	nodeDot                      = "dot"
	nodeFuncLiteral              = "func_literal"
	nodeFunctionDeclaration      = "function_declaration"
	nodeIdentifier               = "identifier"
	nodeInterpretedStringLiteral = "interpreted_string_literal"
	nodeRawStringLiteral         = "raw_string_literal"
	nodeSelectorExpression       = "selector_expression"
)

// getNodeText returns the source text for the given AST node.
// Returns empty string if the node's byte range exceeds the source length.
func getNodeText(node *sitter.Node, source []byte) (result string) {
	start := node.StartByte()
	end := node.EndByte()
	sourceLen := uint32(len(source))

	if start > sourceLen || end > sourceLen {
		return ""
	}

	// Content can panic on slice bounds inside the binding.
	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

func walkTreeWithDepth(node *sitter.Node, visitor func(*sitter.Node) bool, depth int) {
	if depth > tspool.MaxTreeDepth {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTreeWithDepth(node.Child(i), visitor, depth+1)
	}
}

// walkTree recursively visits all nodes in the AST.
// The visitor function returns false to stop traversing into children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	walkTreeWithDepth(node, visitor, 0)
}

// namedChildren returns the named children of node, skipping punctuation and comments.
func namedChildren(node *sitter.Node) []*sitter.Node {
	var children []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// stringLiteral returns the value of a string literal node.
func stringLiteral(node *sitter.Node, source []byte) (string, bool) {
	switch node.Type() {
	case nodeInterpretedStringLiteral, nodeRawStringLiteral:
		return trimQuotes(getNodeText(node, source)), true
	default:
		return "", false
	}
}

func trimQuotes(s string) string {
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	// Fallback for invalid literals, e.g. from incomplete code.
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
