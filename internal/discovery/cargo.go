// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"devkit-cli/internal/catalog"
)

// cargoCommands is the fixed set of cargo subcommands offered wherever a
// Cargo.toml exists. Descriptions mirror cargo's own help text.
var cargoCommands = []struct {
	name     string
	desc     string
	category catalog.Category
	args     []string
}{
	{name: "build", desc: "Compile the current package", category: catalog.CategoryBuild, args: []string{"build"}},
	{name: "build-release", desc: "Compile with optimizations", category: catalog.CategoryBuild, args: []string{"build", "--release"}},
	{name: "test", desc: "Run the tests", category: catalog.CategoryTest, args: []string{"test"}},
	{name: "check", desc: "Analyze the package without building", category: catalog.CategoryQuality, args: []string{"check"}},
	{name: "clippy", desc: "Run the clippy lints", category: catalog.CategoryQuality, args: []string{"clippy"}},
	{name: "fmt", desc: "Format the sources", category: catalog.CategoryQuality, args: []string{"fmt"}},
	{name: "doc", desc: "Build the documentation", category: catalog.CategoryDev, args: []string{"doc"}},
	{name: "update", desc: "Update dependencies in Cargo.lock", category: catalog.CategoryDependencies, args: []string{"update"}},
}

// CargoProvider offers the standard cargo commands for the workspace root
// and for every package carrying its own Cargo.toml.
type CargoProvider struct{}

// Name implements Provider.
func (CargoProvider) Name() string { return "cargo" }

// Available implements Provider.
func (CargoProvider) Available(ctx Context) bool {
	if isFile(filepath.Join(ctx.RepoRoot, "Cargo.toml")) {
		return true
	}
	for _, pkg := range ctx.Packages() {
		if isFile(filepath.Join(pkg.Path, "Cargo.toml")) {
			return true
		}
	}
	return false
}

// Discover implements Provider.
func (p CargoProvider) Discover(ctx Context) ([]catalog.Command, error) {
	var commands []catalog.Command

	rootManifest := filepath.Join(ctx.RepoRoot, "Cargo.toml")
	if isFile(rootManifest) {
		if err := checkCargoManifest(rootManifest); err != nil {
			return nil, err
		}
		commands = append(commands, p.commandsFor(ctx, ctx.RepoRoot, "workspace", catalog.WorkspaceScope())...)
	}

	for _, pkg := range ctx.Packages() {
		manifest := filepath.Join(pkg.Path, "Cargo.toml")
		if !isFile(manifest) {
			continue
		}
		if err := checkCargoManifest(manifest); err != nil {
			return nil, err
		}
		commands = append(commands, p.commandsFor(ctx, pkg.Path, pkg.Name, catalog.PackageScope(pkg.Name))...)
	}

	return commands, nil
}

func (CargoProvider) commandsFor(ctx Context, dir, idScope string, scope catalog.Scope) []catalog.Command {
	commands := make([]catalog.Command, 0, len(cargoCommands))
	for _, c := range cargoCommands {
		commands = append(commands,
			catalog.NewCommand(fmt.Sprintf("cargo.%s.%s", idScope, c.name), c.name, c.category).
				WithDescription(c.desc).
				WithSource("Cargo.toml").
				WithScope(scope).
				WithExec("cargo", c.args, ctx.RelDir(dir)))
	}
	return commands
}

// checkCargoManifest parses the manifest just enough to reject garbage, so
// a broken Cargo.toml skips the provider instead of advertising commands
// cargo would refuse to run.
func checkCargoManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var manifest map[string]any
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("malformed %s: %w", path, err)
	}
	return nil
}
