//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/specvital/fnfixture/pkg/discover"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/scan.go <path>\n")
		os.Exit(1)
	}

	path := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := discover.Scan(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan error: %v\n", err)
		os.Exit(1)
	}

	output := map[string]interface{}{
		"filesScanned": result.Stats.FilesScanned,
		"filesMatched": result.Stats.FilesMatched,
		"attachments":  result.Stats.Attachments,
		"caseCount":    result.Stats.Cases,
		"diagnostics":  result.Stats.Diagnostics,
		"duration":     result.Stats.Duration.String(),
		"roots":        rootsByFile(result),
	}
	json.NewEncoder(os.Stdout).Encode(output)
}

func rootsByFile(result *discover.ScanResult) map[string][]string {
	roots := make(map[string][]string)
	for _, a := range result.Attachments {
		roots[a.File] = append(roots[a.File], a.Root)
	}
	return roots
}
