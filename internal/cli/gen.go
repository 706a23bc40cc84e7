package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/specvital/fnfixture/pkg/codegen"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		name   string
		cfg    codegen.Config
		output string
	)

	cmd := &cobra.Command{
		Use:   "gen <root>",
		Short: "Generate a Go test file mirroring the fixture tree",
		Long: `gen writes a test function with one subtest per fixture directory. Leaves
call snapshot.Check with their paths spelled out; invalid directories become
subtests that always fail. Paths are relative to the root as given, so run gen
from the package directory.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := a.build(args[0], name)
			if err != nil {
				return err
			}

			src, err := codegen.Generate(suite, cfg)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(src)
				return err
			}
			if err := os.WriteFile(output, src, 0o644); err != nil {
				return fmt.Errorf("gen: write %s: %w", output, err)
			}
			a.logger.Info("test file generated", "path", output, "cases", suite.CountCases())
			return nil
		},
	}

	addNameFlag(cmd, &name)
	flags := cmd.Flags()
	flags.StringVarP(&cfg.Package, "package", "p", "", "package clause of the generated file")
	flags.StringVar(&cfg.Func, "func", "", "Go expression for the function under test (default: the name)")
	flags.StringVar(&cfg.ImportPath, "import-path", codegen.DefaultImportPath, "import path of the snapshot package")
	flags.StringVar(&cfg.Prefix, "prefix", codegen.DefaultPrefix, "prefix of the generated test function")
	flags.BoolVar(&cfg.Parallel, "parallel", false, "mark every case with t.Parallel")
	flags.BoolVar(&cfg.Plaintext, "plaintext", false, "render results with fmt.Sprint and let panics fail the test")
	flags.StringVarP(&output, "output", "o", "", "file to write (default: stdout)")
	_ = cmd.MarkFlagRequired("package")
	return cmd
}
