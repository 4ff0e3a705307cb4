// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for devkit.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"devkit-cli/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging.
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "devkit",
		Short: "A workspace command runner with cross-package dependencies",
		Long: TitleStyle.Render("devkit") + SubtitleStyle.Render(" - a workspace command runner") + `

devkit discovers runnable commands across the ecosystems in your
repository (package.json scripts, Makefile targets, executable scripts,
compose services) and runs the commands declared in each package's
dev.toml, resolving cross-package dependencies in topological order.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'devkit init' to create .dev/config.toml
  2. Declare commands in each package's dev.toml
  3. Run them with: devkit run <command>

` + SubtitleStyle.Render("Examples:") + `
  devkit list               Show every discovered command
  devkit run build          Run 'build' across all packages
  devkit run test -j        Run 'test' with parallel waves
  devkit validate           Check the dependency graph
  devkit watch test         Re-run 'test' when files change`,
	}
)

func init() {
	cobra.OnInitialize(configureLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(docsCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func configureLogging() {
	log.SetReportTimestamp(false)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// loadWorkspace locates the repository root from the working directory and
// loads the full configuration.
func loadWorkspace() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := config.FindRepoRoot(wd)
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}
