// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"testing"

	"devkit-cli/internal/catalog"
)

func TestCargoProviderOffersStandardCommands(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRepoFile(t, root, "Cargo.toml", "[workspace]\nmembers = [\"crates/*\"]\n")

	provider := CargoProvider{}
	ctx := Context{RepoRoot: root}
	if !provider.Available(ctx) {
		t.Fatal("provider must be available")
	}

	commands, err := provider.Discover(ctx)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(commands) != len(cargoCommands) {
		t.Fatalf("got %d commands, want %d", len(commands), len(cargoCommands))
	}

	byID := make(map[string]catalog.Command, len(commands))
	for _, c := range commands {
		byID[c.ID] = c
		if c.Scope.Kind() != catalog.ScopeWorkspace {
			t.Errorf("%s scope = %v", c.ID, c.Scope)
		}
	}

	build := byID["cargo.workspace.build"]
	if build.Exec.Program != "cargo" || len(build.Exec.Args) != 1 || build.Exec.Args[0] != "build" {
		t.Errorf("build exec = %+v", build.Exec)
	}
	if byID["cargo.workspace.test"].Category != catalog.CategoryTest {
		t.Errorf("test category = %s", byID["cargo.workspace.test"].Category)
	}
}

func TestCargoProviderRejectsMalformedManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRepoFile(t, root, "Cargo.toml", "[workspace\n")

	if _, err := (CargoProvider{}).Discover(Context{RepoRoot: root}); err == nil {
		t.Error("expected an error for malformed Cargo.toml")
	}
}
