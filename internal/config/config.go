// SPDX-License-Identifier: MPL-2.0

// Package config loads the distributed devkit configuration: the global
// .dev/config.toml and every package's dev.toml, resolved through the
// workspace glob patterns. The result is the per-package command registry
// the graph builder and task executor operate on.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrRepoRootNotFound indicates no repository root could be located from
// the working directory.
var ErrRepoRootNotFound = errors.New(
	"repository root not found: not inside a git repository and no .dev/config.toml in any parent directory")

// Config is the combined configuration: global settings plus every
// discovered package's command table. Read-only after Load.
type Config struct {
	// RepoRoot is the absolute repository root.
	RepoRoot string
	// Global is the repository-wide configuration.
	Global GlobalConfig
	// Packages maps package name to its configuration.
	Packages map[string]*Package
}

// Load reads the global config under root and discovers packages through
// the workspace glob patterns.
func Load(root string) (*Config, error) {
	global, err := loadGlobal(root)
	if err != nil {
		return nil, err
	}

	packages, err := discoverPackages(root, global)
	if err != nil {
		return nil, err
	}

	return &Config{RepoRoot: root, Global: global, Packages: packages}, nil
}

// FindRepoRoot walks up from dir looking for a .git directory or a
// .dev/config.toml file, whichever appears first.
func FindRepoRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for current := abs; ; {
		if isDir(filepath.Join(current, ".git")) || isFile(GlobalConfigPath(current)) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrRepoRootNotFound
		}
		current = parent
	}
}

// discoverPackages expands the workspace patterns into package directories
// and loads each one's dev.toml.
func discoverPackages(root string, global GlobalConfig) (map[string]*Package, error) {
	packages := make(map[string]*Package)

	for _, pattern := range global.Workspaces.Packages {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("workspace pattern %q: %w", pattern, err)
		}

		// FilepathGlob output order is filesystem-dependent; sort so
		// repeated loads agree on which duplicate wins.
		sort.Strings(matches)

		for _, dir := range matches {
			if !isDir(dir) {
				continue
			}
			if excluded(global.Workspaces.Exclude, filepath.Base(dir)) {
				continue
			}

			pkg, err := loadPackage(dir)
			if err != nil {
				return nil, err
			}
			packages[pkg.Name] = pkg
		}
	}

	return packages, nil
}

// PackagesWithCommand returns every package defining the named command,
// sorted by package name for deterministic execution order.
func (c *Config) PackagesWithCommand(cmdName string) []*Package {
	var pkgs []*Package
	for _, pkg := range c.Packages {
		if _, ok := pkg.Commands[cmdName]; ok {
			pkgs = append(pkgs, pkg)
		}
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs
}

// Command looks up a single package command.
func (c *Config) Command(pkgName, cmdName string) (CommandEntry, bool) {
	pkg, ok := c.Packages[pkgName]
	if !ok {
		return CommandEntry{}, false
	}
	entry, ok := pkg.Commands[cmdName]
	return entry, ok
}

// PackageNames returns all package names, sorted.
func (c *Config) PackageNames() []string {
	names := make([]string, 0, len(c.Packages))
	for name := range c.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func excluded(exclude []string, dirName string) bool {
	for _, name := range exclude {
		if name == dirName {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
