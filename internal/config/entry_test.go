// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"slices"
	"testing"
)

func TestSimpleEntry(t *testing.T) {
	t.Parallel()

	e := SimpleEntry("make build")
	if !e.IsSimple() {
		t.Error("expected simple entry")
	}
	if got := e.Default(); got != "make build" {
		t.Errorf("Default() = %q", got)
	}
	// Simple entries answer every variant with the same string.
	if got := e.Variant("watch"); got != "make build" {
		t.Errorf("Variant() = %q", got)
	}
	if deps := e.Deps(); len(deps) != 0 {
		t.Errorf("Deps() = %v, want empty", deps)
	}
}

func TestFullEntryVariantFallback(t *testing.T) {
	t.Parallel()

	e := FullEntry("cargo build", []string{"web"}, map[string]string{
		"release": "cargo build --release",
	})

	tests := []struct {
		name    string
		variant string
		want    string
	}{
		{name: "declared variant", variant: "release", want: "cargo build --release"},
		{name: "unknown variant falls back to default", variant: "watch", want: "cargo build"},
		{name: "empty name falls back to default", variant: "", want: "cargo build"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := e.Variant(tt.variant); got != tt.want {
				t.Errorf("Variant(%q) = %q, want %q", tt.variant, got, tt.want)
			}
		})
	}

	if deps := e.Deps(); !slices.Equal(deps, []string{"web"}) {
		t.Errorf("Deps() = %v", deps)
	}
}

func TestFullEntryIsDefensivelyCopied(t *testing.T) {
	t.Parallel()

	deps := []string{"web"}
	e := FullEntry("x", deps, nil)
	deps[0] = "mutated"
	if e.Deps()[0] != "web" {
		t.Error("FullEntry must copy its deps argument")
	}

	got := e.Deps()
	got[0] = "mutated"
	if e.Deps()[0] != "web" {
		t.Error("Deps must return a copy")
	}
}

func TestDecodeEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     any
		wantErr bool
		check   func(t *testing.T, e CommandEntry)
	}{
		{
			name: "string becomes simple",
			raw:  "npm run build",
			check: func(t *testing.T, e CommandEntry) {
				if !e.IsSimple() || e.Default() != "npm run build" {
					t.Errorf("unexpected entry: %+v", e)
				}
			},
		},
		{
			name: "table becomes full with variants",
			raw: map[string]any{
				"default": "cargo build",
				"deps":    []any{"web", "shared:build"},
				"release": "cargo build --release",
			},
			check: func(t *testing.T, e CommandEntry) {
				if e.IsSimple() {
					t.Error("expected full entry")
				}
				if got := e.Variant("release"); got != "cargo build --release" {
					t.Errorf("Variant(release) = %q", got)
				}
				if deps := e.Deps(); !slices.Equal(deps, []string{"web", "shared:build"}) {
					t.Errorf("Deps() = %v", deps)
				}
			},
		},
		{
			name:    "table without default is rejected",
			raw:     map[string]any{"release": "cargo build --release"},
			wantErr: true,
		},
		{
			name:    "non-string deps are rejected",
			raw:     map[string]any{"default": "x", "deps": []any{42}},
			wantErr: true,
		},
		{
			name:    "deps must be an array",
			raw:     map[string]any{"default": "x", "deps": "web"},
			wantErr: true,
		},
		{
			name:    "unsupported value type is rejected",
			raw:     42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := decodeEntry("build", tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidCommandEntry) {
					t.Errorf("expected ErrInvalidCommandEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, e)
		})
	}
}
