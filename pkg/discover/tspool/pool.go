// Package tspool provides tree-sitter parsers for Go sources.
//
// Parsers are created fresh for every parse. Reusing a parser after a
// cancelled ParseCtx leaves its cancel flag set, so later parses fail with
// "operation limit was hit".
//
// Thread-safety: Parsers returned by Get are NOT safe for concurrent use.
// Each goroutine must Get its own parser or use the Parse helper.
package tspool

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// MaxTreeDepth is the maximum recursion depth when walking AST trees.
const MaxTreeDepth = 1000

var (
	goLang   *sitter.Language
	langOnce sync.Once
)

// Language returns the tree-sitter Go grammar.
func Language() *sitter.Language {
	langOnce.Do(func() {
		goLang = golang.GetLanguage()
	})
	return goLang
}

// Get returns a Go parser.
// The returned parser is NOT safe for concurrent use.
// Caller MUST call parser.Close() when done to free resources.
func Get() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(Language())
	return parser
}

// Parse parses Go source using a fresh parser.
// Caller MUST call tree.Close() to free resources.
func Parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	parser := Get()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse go source failed: %w", err)
	}

	return tree, nil
}
