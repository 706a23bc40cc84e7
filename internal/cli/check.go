package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		name   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check <root>",
		Short: "Report structural problems and missing baselines",
		Long: `check builds the fixture tree and reports every directory that is neither a
group nor a leaf. Leaves without a baseline and leaves with an unreviewed
actual file are listed as warnings, or as failures with --strict.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := a.build(args[0], name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			diags := suite.Diagnostics()
			printDiagnostics(out, diags, "")

			var missing, pending int
			for _, tc := range suite.Cases() {
				state, err := statBaselines(tc)
				if err != nil {
					return err
				}
				if !state.expected {
					missing++
					fmt.Fprintf(out, "%s %s has no baseline %s\n", warnColor.Sprint("warning:"), tc.FullName(), tc.ExpectedPath)
				}
				if state.actual {
					pending++
					fmt.Fprintf(out, "%s %s has an unreviewed %s\n", warnColor.Sprint("warning:"), tc.FullName(), tc.ActualPath)
				}
			}

			fmt.Fprintf(out, "%s, %s, %s, %s\n",
				plural(suite.CountCases(), "case"),
				plural(len(diags), "invalid directory"),
				plural(missing, "missing baseline"),
				plural(pending, "pending actual file"))

			problems := len(diags)
			if strict {
				problems += missing + pending
			}
			if problems > 0 {
				return fmt.Errorf("check failed: %s", plural(problems, "problem"))
			}

			okColor.Fprintln(out, "ok")
			return nil
		},
	}

	addNameFlag(cmd, &name)
	cmd.Flags().BoolVar(&strict, "strict", false, "treat missing baselines and pending actual files as failures")
	return cmd
}
