package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/specvital/fnfixture/pkg/domain"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
	headColor = color.New(color.FgCyan, color.Bold)
)

// printTree writes the fixture tree with one node per line.
func printTree(w io.Writer, suite *domain.Suite) {
	suite.Walk(func(n *domain.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		switch n.Kind {
		case domain.KindGroup:
			fmt.Fprintf(w, "%s%s/\n", indent, n.Name)
		case domain.KindLeaf:
			fmt.Fprintf(w, "%s%s %s\n", indent, okColor.Sprint(n.Name), dimColor.Sprintf("(%s)", filepath.Base(n.Case.Input.Path)))
		default:
			fmt.Fprintf(w, "%s%s %s\n", indent, failColor.Sprint(n.Name), failColor.Sprint("invalid"))
		}
		return true
	})
}

// printDiagnostics writes one line per structural problem.
func printDiagnostics(w io.Writer, diags []domain.Diagnostic, indent string) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s %s\n", indent, failColor.Sprint("error:"), d.Error())
	}
}

// baselineState describes the files next to a case's input.
type baselineState struct {
	expected bool
	actual   bool
}

func statBaselines(tc *domain.TestCase) (baselineState, error) {
	var state baselineState
	var err error
	if state.expected, err = exists(tc.ExpectedPath); err != nil {
		return state, err
	}
	if state.actual, err = exists(tc.ActualPath); err != nil {
		return state, err
	}
	return state, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
