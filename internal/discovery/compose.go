// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"devkit-cli/internal/catalog"
)

// composeFileNames are the compose file names checked at the repository
// root, in lookup order.
var composeFileNames = []string{
	"compose.yaml", "compose.yml", "docker-compose.yaml", "docker-compose.yml",
}

// ComposeProvider surfaces the services of the repository's compose file:
// workspace-wide up/down plus one up command per service.
type ComposeProvider struct{}

// Name implements Provider.
func (ComposeProvider) Name() string { return "compose" }

// Available implements Provider.
func (ComposeProvider) Available(ctx Context) bool {
	return findComposeFile(ctx.RepoRoot) != ""
}

// Discover implements Provider.
func (ComposeProvider) Discover(ctx Context) ([]catalog.Command, error) {
	path := findComposeFile(ctx.RepoRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var compose struct {
		Services map[string]any `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &compose); err != nil {
		return nil, fmt.Errorf("malformed %s: %w", path, err)
	}

	source := filepath.Base(path)
	commands := []catalog.Command{
		catalog.NewCommand("compose.up", "up", catalog.CategoryServices).
			WithDescription("Start all services in the background").
			WithSource(source).
			WithScope(catalog.WorkspaceScope()).
			WithExec("docker", []string{"compose", "up", "-d"}, ""),
		catalog.NewCommand("compose.down", "down", catalog.CategoryServices).
			WithDescription("Stop all services").
			WithSource(source).
			WithScope(catalog.WorkspaceScope()).
			WithExec("docker", []string{"compose", "down"}, ""),
		catalog.NewCommand("compose.logs", "logs", catalog.CategoryServices).
			WithDescription("Follow service logs").
			WithSource(source).
			WithScope(catalog.WorkspaceScope()).
			WithExec("docker", []string{"compose", "logs", "-f"}, ""),
		catalog.NewCommand("compose.ps", "ps", catalog.CategoryServices).
			WithDescription("List running services").
			WithSource(source).
			WithScope(catalog.WorkspaceScope()).
			WithExec("docker", []string{"compose", "ps"}, ""),
	}

	services := make([]string, 0, len(compose.Services))
	for name := range compose.Services {
		services = append(services, name)
	}
	sort.Strings(services)

	for _, name := range services {
		commands = append(commands,
			catalog.NewCommand("compose.up."+name, "up "+name, catalog.CategoryServices).
				WithDescription("Start the "+name+" service").
				WithSource(source).
				WithScope(catalog.GlobalScope()).
				WithExec("docker", []string{"compose", "up", "-d", name}, ""))
	}
	return commands, nil
}

func findComposeFile(root string) string {
	for _, name := range composeFileNames {
		path := filepath.Join(root, name)
		if isFile(path) {
			return path
		}
	}
	return ""
}
