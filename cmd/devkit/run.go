// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"devkit-cli/internal/config"
	"devkit-cli/internal/graph"
	"devkit-cli/internal/history"
	"devkit-cli/internal/task"
)

var (
	runParallel        bool
	runVariant         string
	runPackages        []string
	runContinueOnError bool
	runVars            []string

	runCmd = &cobra.Command{
		Use:   "run <command>",
		Short: "Run a declared command across the workspace",
		Long: `Run a dev.toml command in every package that declares it (or only the
packages given with --package), executing cross-package dependencies
first. With --parallel, independent commands run concurrently in waves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWorkspace()
			if err != nil {
				return err
			}

			report := graph.Validate(cfg)
			printWarnings(cmd, report.Warnings)
			if !report.IsValid() {
				printErrors(cmd, report.Errors)
				return &ExitError{Code: 1, Err: fmt.Errorf("dependency graph is invalid")}
			}

			vars, err := parseVars(runVars)
			if err != nil {
				return err
			}

			results, err := task.NewExecutor(cfg).Run(cmd.Context(), args[0], task.Options{
				Parallel:        runParallel,
				Variant:         runVariant,
				Packages:        runPackages,
				ContinueOnError: runContinueOnError,
				Vars:            vars,
			})
			if err != nil {
				return err
			}
			if len(results) == 0 {
				cmd.Printf("no package declares %q\n", args[0])
				return nil
			}

			recordHistory(cfg, results)
			printResults(cmd, results)
			if task.AnyFailed(results) {
				return &ExitError{Code: 1, Err: fmt.Errorf("%s failed", args[0])}
			}
			return nil
		},
	}
)

func init() {
	runCmd.Flags().BoolVarP(&runParallel, "parallel", "j", false, "run independent commands concurrently")
	runCmd.Flags().StringVar(&runVariant, "variant", "", "select a named command variant")
	runCmd.Flags().StringSliceVarP(&runPackages, "package", "p", nil, "restrict to the named packages")
	runCmd.Flags().BoolVar(&runContinueOnError, "continue-on-error", false, "run dependents even when a dependency fails")
	runCmd.Flags().StringArrayVar(&runVars, "var", nil, "set a template variable (name=value)")
}

// parseVars turns --var name=value flags into a map.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", pair)
		}
		vars[name] = value
	}
	return vars, nil
}

// printResults writes one line per task in execution order.
func printResults(cmd *cobra.Command, results []task.Result) {
	cmd.Println()
	for _, r := range results {
		switch r.Outcome {
		case task.OutcomeSucceeded:
			cmd.Printf("%s %s\n", SuccessStyle.Render("✓"), r.Node)
		case task.OutcomeSkipped:
			cmd.Printf("%s %s %s\n", WarningStyle.Render("-"), r.Node,
				SubtitleStyle.Render(fmt.Sprintf("(skipped: %s failed)", r.SkippedBecause)))
		default:
			detail := fmt.Sprintf("(exit %d)", r.ExitCode)
			if r.Err != nil {
				detail = "(" + r.Err.Error() + ")"
			}
			cmd.Printf("%s %s %s\n", ErrorStyle.Render("✗"), r.Node, SubtitleStyle.Render(detail))
		}
	}
}

func printErrors(cmd *cobra.Command, errors []string) {
	for _, msg := range errors {
		cmd.PrintErrln(ErrorStyle.Render("error: ") + msg)
	}
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, msg := range warnings {
		cmd.PrintErrln(WarningStyle.Render("warning: ") + msg)
	}
}

// recordHistory appends the executed (not skipped) tasks to the history
// database. History is best-effort; failures only log.
func recordHistory(cfg *config.Config, results []task.Result) {
	store, err := history.Open(cfg.RepoRoot)
	if err != nil {
		log.Debug("history unavailable", "err", err)
		return
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now()
	for _, r := range results {
		if r.Outcome == task.OutcomeSkipped {
			continue
		}
		entry := history.Entry{
			Command:   r.Command,
			Package:   r.Package,
			Variant:   runVariant,
			ExitCode:  r.ExitCode,
			StartedAt: now,
		}
		if err := store.Record(ctx, entry); err != nil {
			log.Debug("history record failed", "err", err)
			return
		}
	}
}
