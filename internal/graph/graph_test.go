// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"slices"
	"testing"

	"devkit-cli/internal/config"
)

// pkgSet builds a package map from name -> command table.
func pkgSet(pkgs map[string]map[string]config.CommandEntry) map[string]*config.Package {
	out := make(map[string]*config.Package, len(pkgs))
	for name, commands := range pkgs {
		out[name] = &config.Package{
			Path:     "/" + name,
			DirName:  name,
			Name:     name,
			Commands: commands,
		}
	}
	return out
}

func TestNormalizeRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		ref            string
		referencingCmd string
		want           NodeID
	}{
		{name: "qualified passes through", ref: "web:build", referencingCmd: "deploy", want: "web:build"},
		{name: "bare package expands to same command", ref: "web", referencingCmd: "build", want: "web:build"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeRef(tt.ref, tt.referencingCmd); got != tt.want {
				t.Errorf("NormalizeRef(%q, %q) = %q, want %q", tt.ref, tt.referencingCmd, got, tt.want)
			}
		})
	}
}

func TestNodeIDSplit(t *testing.T) {
	t.Parallel()

	pkg, cmd, ok := NodeID("web:build").Split()
	if !ok || pkg != "web" || cmd != "build" {
		t.Errorf("Split() = %q, %q, %v", pkg, cmd, ok)
	}

	for _, bad := range []NodeID{"web", ":build", "web:", ""} {
		if _, _, ok := bad.Split(); ok {
			t.Errorf("Split(%q) should fail", bad)
		}
	}
}

func TestBuildNormalizesEdges(t *testing.T) {
	t.Parallel()

	g := Build(pkgSet(map[string]map[string]config.CommandEntry{
		"api": {
			"build": config.FullEntry("cargo build", []string{"web", "shared:generate"}, nil),
		},
		"web": {
			"build": config.SimpleEntry("npm run build"),
		},
		"shared": {
			"generate": config.SimpleEntry("protoc"),
		},
	}))

	deps := g.Deps("api:build")
	want := []NodeID{"web:build", "shared:generate"}
	if !slices.Equal(deps, want) {
		t.Errorf("Deps(api:build) = %v, want %v", deps, want)
	}

	nodes := g.Nodes()
	wantNodes := []NodeID{"api:build", "shared:generate", "web:build"}
	if !slices.Equal(nodes, wantNodes) {
		t.Errorf("Nodes() = %v, want %v", nodes, wantNodes)
	}
}

func TestOrderChain(t *testing.T) {
	t.Parallel()

	// a:build -> b:build -> c:build (a depends on b, b on c).
	g := Build(pkgSet(map[string]map[string]config.CommandEntry{
		"a": {"build": config.FullEntry("x", []string{"b"}, nil)},
		"b": {"build": config.FullEntry("x", []string{"c"}, nil)},
		"c": {"build": config.SimpleEntry("x")},
	}))

	order := g.Order("a:build", nil)
	want := []NodeID{"c:build", "b:build", "a:build"}
	if !slices.Equal(order, want) {
		t.Errorf("Order = %v, want %v", order, want)
	}
}

func TestOrderDiamondVisitsEachNodeOnce(t *testing.T) {
	t.Parallel()

	// top depends on left and right, both depend on base.
	g := Build(pkgSet(map[string]map[string]config.CommandEntry{
		"top":   {"build": config.FullEntry("x", []string{"left", "right"}, nil)},
		"left":  {"build": config.FullEntry("x", []string{"base"}, nil)},
		"right": {"build": config.FullEntry("x", []string{"base"}, nil)},
		"base":  {"build": config.SimpleEntry("x")},
	}))

	order := g.Order("top:build", nil)
	want := []NodeID{"base:build", "left:build", "right:build", "top:build"}
	if !slices.Equal(order, want) {
		t.Errorf("Order = %v, want %v", order, want)
	}
}

func TestOrderSharedSeenSkipsExecutedNodes(t *testing.T) {
	t.Parallel()

	g := Build(pkgSet(map[string]map[string]config.CommandEntry{
		"a": {"build": config.FullEntry("x", []string{"shared"}, nil)},
		"b": {"build": config.FullEntry("x", []string{"shared"}, nil)},
		"shared": {
			"build": config.SimpleEntry("x"),
		},
	}))

	seen := make(map[NodeID]bool)
	first := g.Order("a:build", seen)
	second := g.Order("b:build", seen)

	if !slices.Equal(first, []NodeID{"shared:build", "a:build"}) {
		t.Errorf("first = %v", first)
	}
	// shared:build already ran in the same pass; it must not reappear.
	if !slices.Equal(second, []NodeID{"b:build"}) {
		t.Errorf("second = %v", second)
	}
}

func TestOrderSkipsUndefinedDeps(t *testing.T) {
	t.Parallel()

	g := Build(pkgSet(map[string]map[string]config.CommandEntry{
		"a": {"build": config.FullEntry("x", []string{"ghost"}, nil)},
	}))

	order := g.Order("a:build", nil)
	if !slices.Equal(order, []NodeID{"a:build"}) {
		t.Errorf("Order = %v", order)
	}
}
