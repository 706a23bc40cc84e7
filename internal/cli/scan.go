package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/specvital/fnfixture/internal/config"
	"github.com/specvital/fnfixture/pkg/discover"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		importPath string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Validate every fixture root attached in a module's tests",
		Long: `scan parses every *_test.go file below dir (default: the working directory),
finds snapshot.Run calls and builds the fixture tree of each attached root.
It fails when an attachment cannot be resolved or a tree has invalid
directories.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			scanner := discover.NewScanner(
				discover.WithExclude(a.cfg.Exclude),
				discover.WithImportPath(importPath),
				discover.WithPatterns(a.cfg.Patterns),
				discover.WithSkipDirs(a.cfg.SkipDirs),
				discover.WithTimeout(a.cfg.Timeout),
				discover.WithWorkers(a.cfg.Workers),
			)

			result, err := scanner.Discover(cmd.Context(), dir)
			if err != nil {
				return err
			}
			a.logger.Debug("attachments discovered",
				"dir", dir,
				"files", result.Stats.FilesScanned,
				"attachments", result.Stats.Attachments,
			)

			var (
				bar  *progressbar.ProgressBar
				done func()
			)
			if n := len(result.Attachments); n > 0 && !quiet {
				bar = newProgressBar(cmd.ErrOrStderr(), n)
				done = func() { _ = bar.Add(1) }
			}
			err = scanner.Validate(cmd.Context(), result, done)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			failed := printScanReport(cmd.OutOrStdout(), result)
			if failed > 0 {
				return fmt.Errorf("scan failed: %s", plural(failed, "problem"))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSlice(config.FlagPattern, nil, "doublestar patterns of test files to parse")
	flags.StringSlice(config.FlagSkipDir, nil, "directory names not to descend into")
	flags.Duration(config.FlagTimeout, config.DefaultTimeout, "maximum duration of the scan")
	flags.Int(config.FlagWorkers, config.DefaultWorkers, "concurrent workers (0: GOMAXPROCS)")
	flags.StringVar(&importPath, "import-path", discover.DefaultImportPath, "import path of the snapshot package")
	flags.BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func newProgressBar(w io.Writer, count int) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription(headColor.Sprint("Building fixture trees")),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// printScanReport writes one line per attachment followed by its problems
// and returns the number of failures.
func printScanReport(w io.Writer, result *discover.ScanResult) int {
	failed := 0
	for _, r := range result.Reports {
		a := r.Attachment
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s %s:%d %s\n", failColor.Sprint("FAIL"), a.File, a.Line, a.Test)
			fmt.Fprintf(w, "     %s %v\n", failColor.Sprint("error:"), r.Err)
		case r.Failed():
			failed++
			fmt.Fprintf(w, "%s %s:%d %s %s\n", failColor.Sprint("FAIL"), a.File, a.Line, a.Test, dimColor.Sprint(a.Root))
			printDiagnostics(w, r.Suite.Diagnostics(), "     ")
		default:
			fmt.Fprintf(w, "%s   %s:%d %s %s %s\n", okColor.Sprint("ok"), a.File, a.Line, a.Test,
				dimColor.Sprint(a.Root), dimColor.Sprintf("(%s)", plural(r.Suite.CountCases(), "case")))
		}
	}

	for _, e := range result.Errors {
		if e.Phase == discover.PhaseBuild {
			continue
		}
		failed++
		fmt.Fprintf(w, "%s %v\n", warnColor.Sprint("error:"), e)
	}

	stats := result.Stats
	if len(result.Reports) == 0 {
		warnColor.Fprintln(w, "no fixture roots found")
	}
	fmt.Fprintf(w, "\n%s in %s, %s, %s, %s\n",
		plural(stats.Attachments, "attachment"),
		plural(stats.FilesMatched, "file"),
		plural(stats.Cases, "case"),
		plural(stats.Diagnostics, "invalid directory"),
		stats.Duration.Round(time.Millisecond))
	return failed
}
