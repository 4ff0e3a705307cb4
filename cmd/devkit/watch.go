// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"devkit-cli/internal/graph"
	"devkit-cli/internal/task"
	"devkit-cli/internal/watch"
)

var (
	watchPatterns []string
	watchIgnore   []string

	watchCmd = &cobra.Command{
		Use:   "watch <command>",
		Short: "Re-run a command when matching files change",
		Long: `Run a dev.toml command, then re-run it whenever files under the
repository change. Changes arriving in quick succession coalesce into a
single re-run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWorkspace()
			if err != nil {
				return err
			}

			report := graph.Validate(cfg)
			if !report.IsValid() {
				printErrors(cmd, report.Errors)
				return &ExitError{Code: 1, Err: fmt.Errorf("dependency graph is invalid")}
			}

			command := args[0]
			runOnce := func(ctx context.Context) {
				results, err := task.NewExecutor(cfg).Run(ctx, command, task.Options{})
				if err != nil {
					cmd.PrintErrln(ErrorStyle.Render("error: ") + err.Error())
					return
				}
				printResults(cmd, results)
			}

			runOnce(cmd.Context())
			cmd.Println(SubtitleStyle.Render("watching for changes, ctrl-c to stop"))

			watcher, err := watch.New(watch.Config{
				Root:     cfg.RepoRoot,
				Patterns: watchPatterns,
				Ignore:   watchIgnore,
				OnChange: func(ctx context.Context, changed []string) error {
					cmd.Println(SubtitleStyle.Render(fmt.Sprintf("%d file(s) changed", len(changed))))
					runOnce(ctx)
					return nil
				},
			})
			if err != nil {
				return err
			}
			return watcher.Run(cmd.Context())
		},
	}
)

func init() {
	watchCmd.Flags().StringSliceVar(&watchPatterns, "pattern", nil, "glob patterns that trigger a re-run (default: all files)")
	watchCmd.Flags().StringSliceVar(&watchIgnore, "ignore", nil, "additional glob patterns to ignore")
}
