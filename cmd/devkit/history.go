// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devkit-cli/internal/history"
)

var (
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show recently executed commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadWorkspace()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.RepoRoot)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("no commands recorded yet")
				return nil
			}

			for _, e := range entries {
				status := SuccessStyle.Render("✓")
				if !e.Succeeded() {
					status = ErrorStyle.Render(fmt.Sprintf("✗ %d", e.ExitCode))
				}
				name := e.Command
				if e.Package != "" {
					name = e.Package + ":" + e.Command
				}
				if e.Variant != "" {
					name += "@" + e.Variant
				}
				cmd.Printf("%s  %s  %s\n",
					SubtitleStyle.Render(e.StartedAt.Format("2006-01-02 15:04:05")),
					CmdStyle.Render(name), status)
			}
			return nil
		},
	}
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
}
