// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "devkit"
	// ConfigDirName is the repository-local configuration directory.
	ConfigDirName = ".dev"
	// GlobalConfigName is the global configuration file inside ConfigDirName.
	GlobalConfigName = "config.toml"
)

type (
	// GlobalConfig is the repository-wide configuration from
	// .dev/config.toml. The core trusts this data once loaded.
	GlobalConfig struct {
		Project    ProjectConfig     `mapstructure:"project"`
		Workspaces WorkspacesConfig  `mapstructure:"workspaces"`
		Services   map[string]int    `mapstructure:"services"`
		Vars       map[string]string `mapstructure:"vars"`
	}

	// ProjectConfig names the project.
	ProjectConfig struct {
		Name string `mapstructure:"name"`
	}

	// WorkspacesConfig controls package discovery.
	WorkspacesConfig struct {
		// Packages are doublestar glob patterns for package directories,
		// relative to the repository root.
		Packages []string `mapstructure:"packages"`
		// Exclude lists package directory names to skip.
		Exclude []string `mapstructure:"exclude"`
	}
)

// GlobalConfigPath returns the path of the global config file under root.
func GlobalConfigPath(root string) string {
	return filepath.Join(root, ConfigDirName, GlobalConfigName)
}

// loadGlobal reads .dev/config.toml through viper. A missing file yields
// the defaults; a malformed file is an error.
func loadGlobal(root string) (GlobalConfig, error) {
	v := viper.New()
	v.SetConfigFile(GlobalConfigPath(root))
	v.SetConfigType("toml")

	v.SetDefault("project.name", "my-project")
	v.SetDefault("workspaces.packages", []string{"packages/*"})
	v.SetDefault("workspaces.exclude", []string{})

	if err := v.ReadInConfig(); err != nil {
		// The services and vars tables may legitimately be absent, and so
		// may the whole file. Anything else (unreadable, bad TOML) is fatal.
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return GlobalConfig{}, fmt.Errorf("load %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg GlobalConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return GlobalConfig{}, fmt.Errorf("decode %s: %w", v.ConfigFileUsed(), err)
	}
	if cfg.Vars == nil {
		cfg.Vars = make(map[string]string)
	}
	if cfg.Services == nil {
		cfg.Services = make(map[string]int)
	}
	return cfg, nil
}
