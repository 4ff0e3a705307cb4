// SPDX-License-Identifier: MPL-2.0

// Package discovery finds runnable commands across the ecosystems present
// in a repository. Each ecosystem has a provider that inspects on-disk
// manifests (package.json scripts, Makefile targets, executable scripts,
// compose services) and reports catalog commands; the engine aggregates
// providers in registration order and caches the combined list for its
// lifetime.
package discovery

import (
	"path/filepath"

	"devkit-cli/internal/catalog"
	"devkit-cli/internal/config"
)

// Context is the read-only environment a discovery pass runs in.
type Context struct {
	// RepoRoot is the absolute repository root.
	RepoRoot string
	// Config is the loaded configuration; providers use it to reach the
	// workspace packages.
	Config *config.Config
	// Quiet suppresses provider-failure notices.
	Quiet bool
}

// Packages returns the workspace packages in name order, or nil when no
// configuration was loaded.
func (c Context) Packages() []*config.Package {
	if c.Config == nil {
		return nil
	}
	pkgs := make([]*config.Package, 0, len(c.Config.Packages))
	for _, name := range c.Config.PackageNames() {
		pkgs = append(pkgs, c.Config.Packages[name])
	}
	return pkgs
}

// RelDir converts an absolute directory into the repo-relative form used
// in execution descriptors. The repository root itself becomes "".
func (c Context) RelDir(dir string) string {
	rel, err := filepath.Rel(c.RepoRoot, dir)
	if err != nil || rel == "." {
		return ""
	}
	return rel
}

// Provider is one ecosystem detector. Implementations are stateless:
// Discover must be a pure function of on-disk state with stable (sorted)
// ordering, and must not shell out.
type Provider interface {
	// Name identifies the provider and prefixes its command ids.
	Name() string
	// Available is a fast existence check deciding whether Discover is
	// worth calling at all.
	Available(ctx Context) bool
	// Discover inspects manifests and returns the provider's commands.
	Discover(ctx Context) ([]catalog.Command, error)
}
