// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	_ "embed"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed docs/usage.md
var usageDoc string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the devkit guide",
	RunE: func(cmd *cobra.Command, _ []string) error {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return err
		}
		out, err := renderer.Render(usageDoc)
		if err != nil {
			return err
		}
		cmd.Print(out)
		return nil
	},
}
