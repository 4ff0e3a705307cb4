// SPDX-License-Identifier: MPL-2.0

// Package task turns validated command graphs into running processes. The
// executor expands each requested node into dependency-first order, resolves
// variants and {name} templates, and runs the plan either sequentially or
// in parallel waves of nodes whose dependencies have all completed.
package task

import "devkit-cli/internal/graph"

// Outcome classifies how a single node ended up.
type Outcome string

const (
	// OutcomeSucceeded means the process ran and exited zero.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means the process exited non-zero, could not be
	// spawned, or its command template could not be resolved.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means the node never ran because a dependency failed.
	OutcomeSkipped Outcome = "skipped"
)

// Result is the recorded outcome of one node in an execution plan.
type Result struct {
	// Node is the executed graph node.
	Node graph.NodeID
	// Package and Command split the node for presentation.
	Package string
	Command string
	// Outcome tells whether the node succeeded, failed, or was skipped.
	Outcome Outcome
	// ExitCode is the process exit status; -1 when nothing was spawned.
	ExitCode int
	// SkippedBecause names the failed node behind a skip. Transitive
	// skips point at the original failure, not the intermediate skip.
	SkippedBecause graph.NodeID
	// Output and ErrOutput hold captured streams when output capture
	// was in effect.
	Output    string
	ErrOutput string
	// Err carries a non-process failure: unresolved template variables,
	// a spawn error, or a graph problem blocking the node.
	Err error
}

// Options tunes one executor run.
type Options struct {
	// Parallel executes independent nodes concurrently, wave by wave.
	Parallel bool
	// Variant selects a named command variant; commands without that
	// variant fall back to their default.
	Variant string
	// Packages restricts execution to the named packages. Empty means
	// every package defining the command.
	Packages []string
	// CaptureOutput keeps process output in the results instead of
	// writing it through to the executor's stdout.
	CaptureOutput bool
	// ContinueOnError runs dependents even when a dependency failed.
	ContinueOnError bool
	// Vars overrides the configured template variables.
	Vars map[string]string
}

// AnyFailed reports whether any result failed. Skips do not count: they
// are consequences of the failure already reported.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}
