// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"

	"devkit-cli/internal/catalog"
)

// NpmProvider surfaces the scripts of every package.json in the workspace:
// the repository root's scripts get workspace scope, each package's get
// package scope. The run command matches the package manager the lockfile
// implies.
type NpmProvider struct{}

// Name implements Provider.
func (NpmProvider) Name() string { return "npm" }

// Available implements Provider.
func (NpmProvider) Available(ctx Context) bool {
	if isFile(filepath.Join(ctx.RepoRoot, "package.json")) {
		return true
	}
	for _, pkg := range ctx.Packages() {
		if isFile(filepath.Join(pkg.Path, "package.json")) {
			return true
		}
	}
	return false
}

// Discover implements Provider.
func (p NpmProvider) Discover(ctx Context) ([]catalog.Command, error) {
	var commands []catalog.Command

	rootCmds, err := p.scriptsIn(ctx, ctx.RepoRoot, "workspace", catalog.WorkspaceScope())
	if err != nil {
		return nil, err
	}
	commands = append(commands, rootCmds...)

	for _, pkg := range ctx.Packages() {
		pkgCmds, err := p.scriptsIn(ctx, pkg.Path, pkg.Name, catalog.PackageScope(pkg.Name))
		if err != nil {
			return nil, err
		}
		commands = append(commands, pkgCmds...)
	}

	return commands, nil
}

// scriptsIn reads dir's package.json scripts, sorted by script name. A
// missing manifest yields nothing; a malformed one is an error.
func (p NpmProvider) scriptsIn(ctx Context, dir, idScope string, scope catalog.Scope) ([]catalog.Command, error) {
	manifest := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(manifest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("malformed %s", manifest)
	}

	scripts := gjson.GetBytes(data, "scripts")
	if !scripts.IsObject() {
		return nil, nil
	}

	runner := packageManager(dir)
	var commands []catalog.Command
	scripts.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		commands = append(commands,
			catalog.NewCommand(fmt.Sprintf("npm.%s.%s", idScope, name), name, catalog.Categorize(name)).
				WithDescription(value.String()).
				WithSource("package.json").
				WithScope(scope).
				WithExec(runner, []string{"run", name}, ctx.RelDir(dir)))
		return true
	})

	sort.Slice(commands, func(i, j int) bool { return commands[i].Label < commands[j].Label })
	return commands, nil
}

// packageManager picks the run command from the lockfile present in dir.
func packageManager(dir string) string {
	switch {
	case isFile(filepath.Join(dir, "pnpm-lock.yaml")):
		return "pnpm"
	case isFile(filepath.Join(dir, "yarn.lock")):
		return "yarn"
	case isFile(filepath.Join(dir, "bun.lockb")):
		return "bun"
	default:
		return "npm"
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
