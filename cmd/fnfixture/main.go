// Package main is the entry point for the fnfixture CLI.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/specvital/fnfixture/internal/cli"
)

// Version information, injected at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	root := cli.NewRootCmd(Version + " (" + Commit + ")")
	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
