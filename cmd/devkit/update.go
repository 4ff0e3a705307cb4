// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devkit-cli/internal/update"
)

var (
	updateForce bool

	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Check whether a newer devkit release is available",
		Long: `Query the GitHub Releases API for the latest devkit version. The result
is cached under .dev/ for a day; --force bypasses the cache.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadWorkspace()
			if err != nil {
				return err
			}

			checker := update.NewChecker(cfg.RepoRoot)
			if updateForce {
				if err := checker.Refresh(); err != nil {
					return err
				}
			}

			result, err := checker.Check(cmd.Context(), Version)
			if err != nil {
				return err
			}

			if result.Outdated() {
				cmd.Printf("%s %s is available (running %s)\n",
					WarningStyle.Render("update:"), result.LatestVersion, result.CurrentVersion)
				cmd.Println(SubtitleStyle.Render(result.URL))
				return nil
			}
			cmd.Println(SuccessStyle.Render("✓") + fmt.Sprintf(" devkit is up to date (%s)", getVersionString()))
			return nil
		},
	}
)

func init() {
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "ignore the cached check result")
}
