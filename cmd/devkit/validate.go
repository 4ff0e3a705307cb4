// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devkit-cli/internal/graph"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the dependency graph for unresolved references and cycles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadWorkspace()
		if err != nil {
			return err
		}

		report := graph.Validate(cfg)
		printWarnings(cmd, report.Warnings)
		if !report.IsValid() {
			printErrors(cmd, report.Errors)
			return &ExitError{Code: 1, Err: fmt.Errorf("found %d error(s)", len(report.Errors))}
		}

		cmd.Println(SuccessStyle.Render("✓") + fmt.Sprintf(" %d package(s), dependency graph is valid", len(cfg.Packages)))
		return nil
	},
}
