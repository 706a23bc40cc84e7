package tspool_test

import (
	"context"
	"sync"
	"testing"

	"github.com/specvital/fnfixture/pkg/discover/tspool"
)

const importQuery = `(import_spec path: (_) @path) @spec`

func TestParse_RaceFree(t *testing.T) {
	t.Parallel()

	const goroutines = 50
	source := []byte("package p\n\nconst x = 1\n")

	var wg sync.WaitGroup
	wg.Add(goroutines)

	errCh := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			tree, err := tspool.Parse(context.Background(), source)
			if err != nil {
				errCh <- err
				return
			}
			defer tree.Close()
		}()
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("Parse failed: %v", err)
	}
}

func TestParse_ValidOutput(t *testing.T) {
	t.Parallel()

	tree, err := tspool.Parse(context.Background(), []byte("package main\nfunc main() {}"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		t.Fatal("Root node is nil")
	}
	if root.Type() != "source_file" {
		t.Errorf("root type = %q, want source_file", root.Type())
	}
	if root.ChildCount() == 0 {
		t.Error("Expected children in parsed tree")
	}
}

func TestLanguage_Stable(t *testing.T) {
	t.Parallel()

	if tspool.Language() == nil {
		t.Fatal("Language returned nil")
	}
	if tspool.Language() != tspool.Language() {
		t.Error("Language should return the same grammar instance")
	}
}

func TestQueryWithCache(t *testing.T) {
	source := []byte("package p\n\nimport (\n\t\"testing\"\n\tsnap \"example.com/snapshot\"\n)\n")

	tree, err := tspool.Parse(context.Background(), source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	for i := 0; i < 2; i++ {
		results, err := tspool.QueryWithCache(tree.RootNode(), importQuery)
		if err != nil {
			t.Fatalf("QueryWithCache failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("got %d matches, want 2", len(results))
		}
		if got := results[1].Captures["path"].Content(source); got != `"example.com/snapshot"` {
			t.Errorf("path capture = %s", got)
		}
	}
}

func TestQueryWithCache_InvalidQuery(t *testing.T) {
	tree, err := tspool.Parse(context.Background(), []byte("package p"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	if _, err := tspool.QueryWithCache(tree.RootNode(), "(not_a_node"); err == nil {
		t.Error("expected error for malformed query")
	}
}

func TestClearQueryCache(t *testing.T) {
	tree, err := tspool.Parse(context.Background(), []byte("package p\nimport \"fmt\"\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	if _, err := tspool.QueryWithCache(tree.RootNode(), importQuery); err != nil {
		t.Fatalf("QueryWithCache failed: %v", err)
	}

	tspool.ClearQueryCache()

	results, err := tspool.QueryWithCache(tree.RootNode(), importQuery)
	if err != nil {
		t.Fatalf("QueryWithCache after clear failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d matches, want 1", len(results))
	}
}
