// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"devkit-cli/internal/config"
)

var (
	initName string

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create .dev/config.toml in the current directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}

			path := config.GlobalConfigPath(wd)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			name := initName
			if name == "" {
				name = filepath.Base(wd)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			content := fmt.Sprintf(`[project]
name = %q

[workspaces]
packages = ["packages/*"]
exclude = []

# [services]
# postgres = 5432

# [vars]
# env = "staging"
`, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return err
			}
			cmd.Println(SuccessStyle.Render("✓") + " created " + CmdStyle.Render(path))

			pkgPath := filepath.Join(wd, config.PackageConfigName)
			if _, err := os.Stat(pkgPath); err != nil {
				example := `[cmd]
build = "make build"

[cmd.deploy]
default = "./deploy.sh {env}"
deps = ["otherpkg:build"]
staging = "./deploy.sh --staging"
`
				if err := os.WriteFile(pkgPath, []byte(example), 0o644); err != nil {
					return err
				}
				cmd.Println(SuccessStyle.Render("✓") + " created " + CmdStyle.Render(pkgPath))
			}

			cmd.Println(SubtitleStyle.Render("declare commands in each package's dev.toml"))
			return nil
		},
	}
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "project name (default: directory name)")
}
