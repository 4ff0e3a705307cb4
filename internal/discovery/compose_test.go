// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"testing"

	"devkit-cli/internal/catalog"
)

func TestComposeProviderListsServices(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRepoFile(t, root, "docker-compose.yml", `
services:
  redis:
    image: redis:7
  postgres:
    image: postgres:16
    ports:
      - "5432:5432"
`)

	provider := ComposeProvider{}
	ctx := Context{RepoRoot: root}
	if !provider.Available(ctx) {
		t.Fatal("provider must be available")
	}

	commands, err := provider.Discover(ctx)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"compose.up", "compose.down", "compose.logs", "compose.ps", "compose.up.postgres", "compose.up.redis"}
	if len(commands) != len(want) {
		t.Fatalf("got %d commands: %+v", len(commands), commands)
	}
	for i, id := range want {
		if commands[i].ID != id {
			t.Errorf("commands[%d] = %q, want %q", i, commands[i].ID, id)
		}
		if commands[i].Category != catalog.CategoryServices {
			t.Errorf("%s category = %s", id, commands[i].Category)
		}
	}

	up := commands[4]
	if up.Exec.Program != "docker" || up.Exec.Args[len(up.Exec.Args)-1] != "postgres" {
		t.Errorf("exec = %+v", up.Exec)
	}
}

func TestComposeProviderRejectsMalformedFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRepoFile(t, root, "compose.yaml", "services: [not: a: map\n")

	if _, err := (ComposeProvider{}).Discover(Context{RepoRoot: root}); err == nil {
		t.Error("expected an error for malformed compose file")
	}
}

func TestComposeProviderUnavailableWithoutFile(t *testing.T) {
	t.Parallel()

	if (ComposeProvider{}).Available(Context{RepoRoot: t.TempDir()}) {
		t.Error("provider must not be available without a compose file")
	}
}
