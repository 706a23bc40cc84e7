package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		name    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:          "list <root>",
		Short:        "Print the fixture tree below a root directory",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := a.build(args[0], name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(suite)
			}

			printTree(out, suite)
			fmt.Fprintf(out, "\n%s, %s\n",
				plural(suite.CountCases(), "case"),
				plural(suite.CountDiagnostics(), "invalid directory"))
			return nil
		},
	}

	addNameFlag(cmd, &name)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the tree as JSON")
	return cmd
}
