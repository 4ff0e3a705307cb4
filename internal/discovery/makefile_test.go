// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"devkit-cli/internal/catalog"
)

func writeRepoFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMakeProviderParsesTargetsWithDescriptions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRepoFile(t, root, "Makefile", `.PHONY: build

# Build the project
build:
	cargo build

# First line.
# Second line.
test: build
	cargo test

VERSION = 1.0
_internal:
	@true

$(GENERATED):
	@true

pattern-%.o:
	@true
`)

	provider := MakeProvider{}
	ctx := Context{RepoRoot: root}
	if !provider.Available(ctx) {
		t.Fatal("provider must be available")
	}

	commands, err := provider.Discover(ctx)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	byLabel := make(map[string]catalog.Command, len(commands))
	for _, c := range commands {
		byLabel[c.Label] = c
	}

	// .PHONY, _internal, variable targets and pattern rules are excluded.
	if len(commands) != 2 {
		t.Fatalf("got %d commands: %v", len(commands), byLabel)
	}

	build := byLabel["build"]
	if build.Description != "Build the project" {
		t.Errorf("build description = %q", build.Description)
	}
	if build.Exec.Program != "make" || len(build.Exec.Args) != 1 || build.Exec.Args[0] != "build" {
		t.Errorf("build exec = %+v", build.Exec)
	}
	if got := byLabel["test"].Description; got != "First line. Second line." {
		t.Errorf("test description = %q", got)
	}
}

func TestMakeProviderBlankLineResetsComments(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRepoFile(t, root, "Makefile", `# Orphaned comment.

deploy:
	./deploy.sh
`)

	commands, err := MakeProvider{}.Discover(Context{RepoRoot: root})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(commands) != 1 || commands[0].Description != "" {
		t.Errorf("commands = %+v, want deploy with no description", commands)
	}
}

func TestMakeProviderSortsAndDeduplicatesTargets(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRepoFile(t, root, "Makefile", `zeta:
	@true
alpha:
	@true
# Re-declared; the first occurrence wins.
zeta: alpha
	@true
`)

	commands, err := MakeProvider{}.Discover(Context{RepoRoot: root})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(commands) != 2 || commands[0].Label != "alpha" || commands[1].Label != "zeta" {
		t.Errorf("commands = %+v", commands)
	}
	if commands[1].Description != "" {
		t.Errorf("duplicate target must keep the first occurrence, got %q", commands[1].Description)
	}
}

func TestTargetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{line: "build:", want: "build", ok: true},
		{line: "test: build", want: "test", ok: true},
		{line: "\tbuild:", ok: false},
		{line: "  build:", ok: false},
		{line: ".PHONY: build", ok: false},
		{line: "_helper:", ok: false},
		{line: "VAR = value:", ok: false},
		{line: "$(TARGET):", ok: false},
		{line: "${TARGET}:", ok: false},
		{line: "%.o: %.c", ok: false},
		{line: "plain line", ok: false},
	}

	for _, tt := range tests {
		got, ok := targetName(tt.line)
		if ok != tt.ok || got != tt.want {
			t.Errorf("targetName(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}
