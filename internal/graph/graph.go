// SPDX-License-Identifier: MPL-2.0

// Package graph builds the cross-package command dependency graph and
// validates it: every dependency reference must resolve to a defined
// command and the graph must be acyclic. It also provides the post-order
// dependency expansion the task executor schedules from.
package graph

import (
	"sort"
	"strings"

	"devkit-cli/internal/config"
)

type (
	// NodeID identifies one graph node as "package:command".
	NodeID string

	// Graph is the directed dependency graph over package commands. An
	// edge from A to B means A depends on B: B must complete before A.
	// Read-only after Build.
	Graph struct {
		// adjacency maps each node to its normalized dependencies.
		adjacency map[NodeID][]NodeID
		// nodes tracks all declared nodes in sorted order for
		// deterministic traversal and reporting.
		nodes []NodeID
		// defined marks nodes that have a backing CommandEntry, as
		// opposed to nodes that only appear as edge targets.
		defined map[NodeID]bool
	}
)

// MakeNodeID builds a NodeID from its parts.
func MakeNodeID(pkg, cmd string) NodeID {
	return NodeID(pkg + ":" + cmd)
}

// Split returns the package and command parts of the id. ok is false when
// the id is not of the form "package:command".
func (id NodeID) Split() (pkg, cmd string, ok bool) {
	pkg, cmd, ok = strings.Cut(string(id), ":")
	if !ok || pkg == "" || cmd == "" {
		return "", "", false
	}
	return pkg, cmd, true
}

// NormalizeRef expands a declared dependency reference into a NodeID.
// Qualified "pkg:cmd" references pass through; a bare "pkg" is shorthand
// for "pkg:<referencing command's own name>".
func NormalizeRef(ref, referencingCmd string) NodeID {
	if strings.Contains(ref, ":") {
		return NodeID(ref)
	}
	return MakeNodeID(ref, referencingCmd)
}

// Build constructs the graph from every (package, command, entry) triple
// in the configuration. References are normalized but not checked here;
// Validate reports unresolvable edges and cycles.
func Build(packages map[string]*config.Package) *Graph {
	g := &Graph{
		adjacency: make(map[NodeID][]NodeID),
		defined:   make(map[NodeID]bool),
	}

	pkgNames := make([]string, 0, len(packages))
	for name := range packages {
		pkgNames = append(pkgNames, name)
	}
	sort.Strings(pkgNames)

	for _, pkgName := range pkgNames {
		pkg := packages[pkgName]
		for _, cmdName := range pkg.CommandNames() {
			node := MakeNodeID(pkgName, cmdName)
			g.nodes = append(g.nodes, node)
			g.defined[node] = true

			entry := pkg.Commands[cmdName]
			for _, ref := range entry.Deps() {
				g.adjacency[node] = append(g.adjacency[node], NormalizeRef(ref, cmdName))
			}
		}
	}

	return g
}

// Nodes returns all defined nodes in sorted order.
func (g *Graph) Nodes() []NodeID {
	return append([]NodeID(nil), g.nodes...)
}

// Deps returns the normalized dependencies of a node.
func (g *Graph) Deps(node NodeID) []NodeID {
	return append([]NodeID(nil), g.adjacency[node]...)
}

// Defined reports whether the node has a backing command entry.
func (g *Graph) Defined(node NodeID) bool {
	return g.defined[node]
}

// Order returns the node's dependency closure in execution order:
// dependencies strictly before dependents, the node itself last. Nodes
// already present in seen are skipped and recorded only once; callers
// share one seen map across multiple roots to avoid re-running nodes.
// Order assumes the graph has been validated: undefined targets are
// skipped and cycles would loop, so callers must not expand nodes that
// Validate flagged.
func (g *Graph) Order(root NodeID, seen map[NodeID]bool) []NodeID {
	if seen == nil {
		seen = make(map[NodeID]bool)
	}

	var order []NodeID

	// Post-order DFS with an explicit stack. A frame is revisited once
	// its dependencies are done, at which point the node itself is
	// appended.
	type frame struct {
		node NodeID
		next int
	}
	stack := []frame{{node: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if seen[top.node] && top.next == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		deps := g.adjacency[top.node]
		if top.next < len(deps) {
			dep := deps[top.next]
			top.next++
			if !seen[dep] && g.defined[dep] {
				stack = append(stack, frame{node: dep})
			}
			continue
		}

		if !seen[top.node] {
			seen[top.node] = true
			order = append(order, top.node)
		}
		stack = stack[:len(stack)-1]
	}

	return order
}

// String renders a node id for error messages.
func (id NodeID) String() string { return string(id) }

// FormatCycle renders a cycle path the way validation errors report it:
// "a:build -> b:build -> a:build".
func FormatCycle(cycle []NodeID) string {
	parts := make([]string, len(cycle))
	for i, node := range cycle {
		parts[i] = string(node)
	}
	return strings.Join(parts, " -> ")
}
