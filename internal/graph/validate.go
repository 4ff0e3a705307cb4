// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"fmt"
	"sort"
	"strings"

	"devkit-cli/internal/config"
)

type (
	// Report collects validation findings. Errors block execution of the
	// affected subgraph; warnings never block anything.
	Report struct {
		Errors   []string
		Warnings []string
	}

	// Cycle is one dependency cycle in traversal order. The first node is
	// repeated at the end, so "a -> b -> a" has three elements.
	Cycle []NodeID
)

// IsValid reports whether the configuration can be executed at all.
func (r *Report) IsValid() bool { return len(r.Errors) == 0 }

// AddError appends a blocking finding.
func (r *Report) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning appends a non-blocking finding.
func (r *Report) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the whole configuration in one pass and returns every
// finding at once; it never stops at the first error.
func Validate(cfg *config.Config) *Report {
	g := Build(cfg.Packages)
	report := &Report{}

	g.checkReferences(report)
	for _, cycle := range g.Cycles() {
		report.AddError("dependency cycle detected: %s", FormatCycle(cycle))
	}

	checkServicePorts(cfg.Global.Services, report)
	if len(cfg.Packages) == 0 {
		report.AddWarning(
			"no packages found; check the workspace patterns in %s",
			config.GlobalConfigPath(cfg.RepoRoot))
	}

	return report
}

// Unresolved returns, per node, the normalized dependencies that have no
// backing command entry. Nodes with fully resolvable edges are absent.
func (g *Graph) Unresolved() map[NodeID][]NodeID {
	unresolved := make(map[NodeID][]NodeID)
	for _, node := range g.nodes {
		for _, dep := range g.adjacency[node] {
			if !g.defined[dep] {
				unresolved[node] = append(unresolved[node], dep)
			}
		}
	}
	return unresolved
}

// checkReferences reports every edge whose target has no backing command
// entry, naming the referencing node and the unresolved reference.
func (g *Graph) checkReferences(report *Report) {
	unresolved := g.Unresolved()
	for _, node := range g.nodes {
		for _, dep := range unresolved[node] {
			if _, _, ok := dep.Split(); !ok {
				report.AddError(
					"invalid dependency %q in %s: references must be \"package:command\" or \"package\"",
					dep, node)
				continue
			}
			report.AddError("invalid dependency %q in %s: no such command", dep, node)
		}
	}
}

// Cycles finds every distinct dependency cycle using an iterative
// depth-first search over the adjacency map. Each cycle is returned once,
// as the ordered sub-path from the repeated node back to itself.
func (g *Graph) Cycles() []Cycle {
	const (
		white = iota // unvisited
		gray         // on the active path
		black        // fully explored
	)

	color := make(map[NodeID]int, len(g.nodes))
	var cycles []Cycle
	reported := make(map[string]bool)

	type frame struct {
		node NodeID
		next int
	}

	for _, start := range g.nodes {
		if color[start] != white {
			continue
		}

		stack := []frame{{node: start}}
		path := []NodeID{start}
		color[start] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.adjacency[top.node]

			if top.next >= len(deps) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}

			dep := deps[top.next]
			top.next++

			switch color[dep] {
			case gray:
				// dep is on the active path: the cycle is the sub-path
				// from its first occurrence back to itself.
				for i, node := range path {
					if node == dep {
						cycle := append(Cycle{}, path[i:]...)
						cycle = append(cycle, dep)
						if key := cycleKey(cycle); !reported[key] {
							reported[key] = true
							cycles = append(cycles, cycle)
						}
						break
					}
				}
			case white:
				color[dep] = gray
				stack = append(stack, frame{node: dep})
				path = append(path, dep)
			}
		}
	}

	return cycles
}

// cycleKey canonicalizes a cycle so the same loop discovered from
// different entry points is reported only once. The closing duplicate is
// dropped and the remaining ring is rotated to start at its smallest node.
func cycleKey(cycle Cycle) string {
	ring := cycle[:len(cycle)-1]
	minIdx := 0
	for i := range ring {
		if ring[i] < ring[minIdx] {
			minIdx = i
		}
	}

	parts := make([]string, 0, len(ring))
	for i := range ring {
		parts = append(parts, string(ring[(minIdx+i)%len(ring)]))
	}
	return strings.Join(parts, "|")
}

// checkServicePorts warns when two services bind the same host port.
func checkServicePorts(services map[string]int, report *Report) {
	byPort := make(map[int][]string)
	for name, port := range services {
		byPort[port] = append(byPort[port], name)
	}

	ports := make([]int, 0, len(byPort))
	for port := range byPort {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	for _, port := range ports {
		names := byPort[port]
		if len(names) < 2 {
			continue
		}
		sort.Strings(names)
		report.AddWarning("port %d is bound by multiple services: %s", port, strings.Join(names, ", "))
	}
}
