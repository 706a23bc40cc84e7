package discover

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/fnfixture/pkg/discover/tspool"
	"github.com/specvital/fnfixture/pkg/domain"
)

const importQuery = `(import_spec path: (_) @path) @spec`

// DefaultImportPath is the driver import path looked for in test files.
const DefaultImportPath = domain.DriverImportPath

// Driver function and option names.
const (
	funcRun         = "Run"
	optionExclude   = "Exclude"
	optionName      = "Name"
	optionParallel  = "Parallel"
	optionPlaintext = "Plaintext"
)

// Attachment is one call that attaches a function to a fixture root.
type Attachment struct {
	// Exclude holds literal patterns passed with the Exclude option.
	Exclude []string `json:"exclude,omitempty"`
	// File is the test file, relative to the scan root.
	File string `json:"file"`
	// Func is the source text of the function argument.
	Func string `json:"func"`
	// FuncLiteral reports whether the function argument is a function literal.
	FuncLiteral bool `json:"funcLiteral,omitempty"`
	// Line is the 1-based line of the call.
	Line int `json:"line"`
	// Name is the value of the Name option, if given.
	Name string `json:"name,omitempty"`
	// Parallel reports whether the Parallel option is given.
	Parallel bool `json:"parallel,omitempty"`
	// Plaintext reports whether the Plaintext option is given.
	Plaintext bool `json:"plaintext,omitempty"`
	// Problem explains why the attachment cannot be resolved statically.
	Problem string `json:"problem,omitempty"`
	// Root is the fixture root as written, relative to the test file's directory.
	Root string `json:"root"`
	// Test is the enclosing function name.
	Test string `json:"test"`
}

// RootPath returns the fixture root relative to the scan root.
func (a Attachment) RootPath() string {
	if filepath.IsAbs(a.Root) {
		return a.Root
	}
	return filepath.Join(filepath.Dir(a.File), filepath.FromSlash(a.Root))
}

// BaseName returns the name baselines are stored under. It is the Name option
// when given, otherwise the last identifier of the function argument.
// Function literals have no base name.
func (a Attachment) BaseName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.FuncLiteral {
		return ""
	}
	name := a.Func
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// String implements fmt.Stringer.
func (a Attachment) String() string {
	return fmt.Sprintf("%s:%d %s(%s)", a.File, a.Line, a.Test, a.Root)
}

// driverAlias describes how a file refers to the driver package.
type driverAlias struct {
	dot  bool
	name string
}

func (d driverAlias) matches(fn *sitter.Node, source []byte, member string) bool {
	switch fn.Type() {
	case nodeSelectorExpression:
		if d.name == "" {
			return false
		}
		operand := fn.ChildByFieldName("operand")
		field := fn.ChildByFieldName("field")
		return operand != nil && field != nil &&
			operand.Type() == nodeIdentifier &&
			getNodeText(operand, source) == d.name &&
			getNodeText(field, source) == member
	case nodeIdentifier:
		return d.dot && getNodeText(fn, source) == member
	default:
		return false
	}
}

// member returns the driver member a call refers to, or "".
func (d driverAlias) member(fn *sitter.Node, source []byte) string {
	for _, m := range []string{optionExclude, optionName, optionParallel, optionPlaintext} {
		if d.matches(fn, source, m) {
			return m
		}
	}
	return ""
}

// ParseFile extracts attachments from Go test source.
func ParseFile(ctx context.Context, source []byte, filename string, importPath string) ([]Attachment, error) {
	tree, err := tspool.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("attachment parser: failed to parse %s: %w", filename, err)
	}
	defer tree.Close()
	root := tree.RootNode()

	alias, ok, err := resolveAlias(root, source, importPath)
	if err != nil {
		return nil, fmt.Errorf("attachment parser: %s: %w", filename, err)
	}
	if !ok {
		return nil, nil
	}

	var attachments []Attachment
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != nodeFunctionDeclaration {
			continue
		}
		body := child.ChildByFieldName("body")
		if body == nil {
			continue
		}
		test := ""
		if nameNode := child.ChildByFieldName("name"); nameNode != nil {
			test = getNodeText(nameNode, source)
		}
		attachments = append(attachments, extractAttachments(body, source, filename, test, alias)...)
	}

	return attachments, nil
}

// resolveAlias finds the import of the driver package.
func resolveAlias(root *sitter.Node, source []byte, importPath string) (driverAlias, bool, error) {
	results, err := tspool.QueryWithCache(root, importQuery)
	if err != nil {
		return driverAlias{}, false, err
	}

	for _, r := range results {
		pathNode, spec := r.Captures["path"], r.Captures["spec"]
		if pathNode == nil || spec == nil {
			continue
		}
		if p, _ := stringLiteral(pathNode, source); p != importPath {
			continue
		}

		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			return driverAlias{name: path.Base(importPath)}, true, nil
		}
		switch nameNode.Type() {
		case nodeDot:
			return driverAlias{dot: true}, true, nil
		case nodeBlankIdentifier:
			continue
		default:
			return driverAlias{name: getNodeText(nameNode, source)}, true, nil
		}
	}

	return driverAlias{}, false, nil
}

func extractAttachments(body *sitter.Node, source []byte, filename, test string, alias driverAlias) []Attachment {
	var attachments []Attachment

	walkTree(body, func(node *sitter.Node) bool {
		if node.Type() != nodeCallExpression {
			return true
		}

		fn := node.ChildByFieldName("function")
		if fn == nil || !alias.matches(fn, source, funcRun) {
			return true
		}

		args := node.ChildByFieldName("arguments")
		if args == nil {
			return true
		}

		a := Attachment{
			File: filename,
			Line: int(node.StartPoint().Row) + 1,
			Test: test,
		}
		parseArguments(&a, namedChildren(args), source, alias)
		attachments = append(attachments, a)

		return false
	})

	return attachments
}

func parseArguments(a *Attachment, args []*sitter.Node, source []byte, alias driverAlias) {
	if len(args) < 3 {
		a.Problem = fmt.Sprintf("expected at least 3 arguments, got %d", len(args))
		return
	}

	root, ok := stringLiteral(args[1], source)
	if !ok {
		a.Problem = fmt.Sprintf("root %s is not a string literal", getNodeText(args[1], source))
	}
	a.Root = root

	a.Func = getNodeText(args[2], source)
	a.FuncLiteral = args[2].Type() == nodeFuncLiteral

	for _, opt := range args[3:] {
		if opt.Type() != nodeCallExpression {
			continue
		}
		fn := opt.ChildByFieldName("function")
		optArgs := opt.ChildByFieldName("arguments")
		if fn == nil || optArgs == nil {
			continue
		}

		switch alias.member(fn, source) {
		case optionExclude:
			for _, arg := range namedChildren(optArgs) {
				if pattern, ok := stringLiteral(arg, source); ok {
					a.Exclude = append(a.Exclude, pattern)
				}
			}
		case optionName:
			if values := namedChildren(optArgs); len(values) == 1 {
				a.Name, _ = stringLiteral(values[0], source)
			}
		case optionParallel:
			a.Parallel = true
		case optionPlaintext:
			a.Plaintext = true
		}
	}

	if a.Problem == "" && a.FuncLiteral && a.Name == "" {
		a.Problem = "function literal requires a Name option"
	}
}

// IsTestFile reports whether path names a Go test file.
func IsTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}
