// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"devkit-cli/internal/catalog"
	"devkit-cli/internal/config"
	"devkit-cli/internal/discovery"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every discovered and declared command",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadWorkspace()
		if err != nil {
			return err
		}

		engine := discovery.NewEngine(discovery.DefaultProviders()...)
		commands := engine.Discover(discovery.Context{
			RepoRoot: cfg.RepoRoot,
			Config:   cfg,
			Quiet:    !verbose,
		})

		printDiscovered(cmd, commands)
		printDeclared(cmd, cfg)
		return nil
	},
}

// printDiscovered groups ecosystem commands by category, in the fixed
// category order.
func printDiscovered(cmd *cobra.Command, commands []catalog.Command) {
	byCategory := make(map[catalog.Category][]catalog.Command)
	for _, c := range commands {
		byCategory[c.Category] = append(byCategory[c.Category], c)
	}

	for _, category := range catalog.CategoryOrder {
		group := byCategory[category]
		if len(group) == 0 {
			continue
		}
		cmd.Println(TitleStyle.Render(category.Label()))
		for _, c := range group {
			line := "  " + CmdStyle.Render(c.Label)
			if scope := c.Scope.Label(); scope != "global" {
				line += SubtitleStyle.Render(" (" + scope + ")")
			}
			if c.Description != "" {
				line += "  " + SubtitleStyle.Render(c.Description)
			}
			cmd.Println(line)
		}
		cmd.Println()
	}
}

// printDeclared lists each package's dev.toml commands.
func printDeclared(cmd *cobra.Command, cfg *config.Config) {
	names := cfg.PackageNames()
	if len(names) == 0 {
		return
	}

	cmd.Println(TitleStyle.Render("Declared commands"))
	for _, name := range names {
		pkg := cfg.Packages[name]
		if len(pkg.Commands) == 0 {
			continue
		}
		cmd.Printf("  %s: %s\n",
			CmdStyle.Render(name),
			SubtitleStyle.Render(strings.Join(pkg.CommandNames(), ", ")))
	}
}
