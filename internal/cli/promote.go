package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specvital/fnfixture/pkg/golden"
)

func newPromoteCmd(a *app) *cobra.Command {
	var (
		name   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:          "promote <root>",
		Short:        "Accept reviewed actual files as the new baselines",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := a.build(args[0], name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			promoted := 0
			for _, tc := range suite.Cases() {
				if dryRun {
					ok, err := exists(tc.ActualPath)
					if err != nil {
						return err
					}
					if ok {
						promoted++
						fmt.Fprintf(out, "would promote %s\n", tc.FullName())
					}
					continue
				}

				err := golden.Promote(tc.ActualPath, tc.ExpectedPath)
				if errors.Is(err, golden.ErrNothingToPromote) {
					continue
				}
				if err != nil {
					return err
				}
				promoted++
				a.logger.Debug("baseline promoted", "case", tc.FullName(), "path", tc.ExpectedPath)
				fmt.Fprintf(out, "%s %s\n", okColor.Sprint("promoted"), tc.FullName())
			}

			if promoted == 0 {
				warnColor.Fprintln(out, "nothing to promote")
				return nil
			}
			fmt.Fprintln(out, plural(promoted, "baseline"))
			return nil
		},
	}

	addNameFlag(cmd, &name)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be promoted without renaming files")
	return cmd
}
