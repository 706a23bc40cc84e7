// Package cli implements the fnfixture commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/specvital/fnfixture/internal/config"
	"github.com/specvital/fnfixture/pkg/domain"
	"github.com/specvital/fnfixture/pkg/fixture"
)

// app carries state shared by every command of one invocation.
type app struct {
	cfg       config.Config
	configDir string
	logger    *slog.Logger
	lookupEnv func(string) (string, bool)
	verbose   bool
}

// NewRootCmd creates the fnfixture command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(version, os.LookupEnv)
}

func newRootCmd(version string, lookupEnv func(string) (string, bool)) *cobra.Command {
	a := &app{
		cfg:       config.Default(),
		configDir: ".",
		logger:    slog.New(slog.DiscardHandler),
		lookupEnv: lookupEnv,
	}

	root := &cobra.Command{
		Use:   "fnfixture",
		Short: "Golden-file fixture trees for Go tests",
		Long: `fnfixture inspects directory-driven golden-file test suites.

Each directory below a fixture root is either a group of subdirectories or a
leaf holding exactly one of input.yaml, input.bin or input.txt. Leaves become
test cases whose output is compared against <name>.txt.`,
		Version:           version,
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", ".", "directory holding "+config.FileName+" and "+config.EnvFileName)
	flags.StringSlice(config.FlagExclude, nil, "doublestar patterns of fixture directories to skip")
	flags.Bool(config.FlagNoColor, false, "disable colored output")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newListCmd(a),
		newCheckCmd(a),
		newScanCmd(a),
		newGenCmd(a),
		newPromoteCmd(a),
	)
	return root
}

// setup resolves configuration and logging before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.configDir, a.lookupEnv)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.NoColor {
		color.NoColor = true
	}

	a.logger.Debug("configuration loaded",
		"dir", a.configDir,
		"exclude", cfg.Exclude,
		"workers", cfg.Workers,
		"timeout", cfg.Timeout,
	)
	return nil
}

// build builds the fixture tree at root with the configured exclusions.
func (a *app) build(root, name string) (*domain.Suite, error) {
	suite, err := fixture.Build(root,
		fixture.WithName(name),
		fixture.WithExclude(a.cfg.Exclude...),
	)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("fixture tree built",
		"root", root,
		"name", name,
		"cases", suite.CountCases(),
		"diagnostics", suite.CountDiagnostics(),
	)
	return suite, nil
}

// addNameFlag registers the required --name flag naming the baseline files.
func addNameFlag(cmd *cobra.Command, name *string) {
	cmd.Flags().StringVarP(name, "name", "n", "", "base name of the function under test (baselines are <name>.txt)")
	_ = cmd.MarkFlagRequired("name")
}

func plural(n int, word string) string {
	switch {
	case n == 1:
		return fmt.Sprintf("%d %s", n, word)
	case strings.HasSuffix(word, "y"):
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(word, "y"))
	default:
		return fmt.Sprintf("%d %ss", n, word)
	}
}
