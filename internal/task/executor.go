// SPDX-License-Identifier: MPL-2.0

package task

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"mvdan.cc/sh/v3/shell"

	"devkit-cli/internal/config"
	"devkit-cli/internal/graph"
)

// Executor runs command graphs against a loaded configuration.
type Executor struct {
	cfg    *config.Config
	graph  *graph.Graph
	runner Runner
	logger *log.Logger
	stdout io.Writer
	env    map[string]string
}

// NewExecutor builds an executor over cfg with the real process runner.
func NewExecutor(cfg *config.Config) *Executor {
	return &Executor{
		cfg:    cfg,
		graph:  graph.Build(cfg.Packages),
		runner: ExecRunner{},
		logger: log.Default(),
		stdout: os.Stdout,
		env:    EnvironMap(os.Environ()),
	}
}

// WithRunner swaps the process runner. Tests use this to fake execution.
func (e *Executor) WithRunner(r Runner) *Executor {
	e.runner = r
	return e
}

// WithLogger swaps the logger.
func (e *Executor) WithLogger(logger *log.Logger) *Executor {
	e.logger = logger
	return e
}

// WithStdout redirects flushed parallel output.
func (e *Executor) WithStdout(w io.Writer) *Executor {
	e.stdout = w
	return e
}

// WithEnviron replaces the environment consulted for template variables.
func (e *Executor) WithEnviron(environ []string) *Executor {
	e.env = EnvironMap(environ)
	return e
}

// Run executes command across every package that defines it (or the
// packages named in opts), dependencies first. The returned results follow
// execution order and always cover the full plan: failures produce failed
// results and turn not-yet-run dependents into skips instead of aborting.
// An empty candidate set returns no results and no error.
func (e *Executor) Run(ctx context.Context, command string, opts Options) ([]Result, error) {
	candidates := e.candidates(command, opts.Packages)
	if len(candidates) == 0 {
		return nil, nil
	}

	blocked := e.blockedReasons()

	// Blocked nodes are pre-marked as visited so plan expansion never
	// walks into a cycle, and pre-failed so dependents skip past them.
	seen := make(map[graph.NodeID]bool, len(blocked))
	status := make(map[graph.NodeID]Outcome)
	cause := make(map[graph.NodeID]graph.NodeID)
	for node := range blocked {
		seen[node] = true
		status[node] = OutcomeFailed
	}

	var results []Result
	var plan []graph.NodeID
	for _, pkg := range candidates {
		root := graph.MakeNodeID(pkg.Name, command)
		if reason, ok := blocked[root]; ok {
			e.logger.Error("cannot execute", "node", root, "err", reason)
			results = append(results, Result{
				Node:     root,
				Package:  pkg.Name,
				Command:  command,
				Outcome:  OutcomeFailed,
				ExitCode: -1,
				Err:      reason,
			})
			continue
		}
		plan = append(plan, e.graph.Order(root, seen)...)
	}

	if opts.Parallel {
		results = append(results, e.runParallel(ctx, plan, opts, status, cause)...)
	} else {
		results = append(results, e.runSequential(ctx, plan, opts, status, cause)...)
	}
	return results, nil
}

// candidates resolves the packages defining command, optionally narrowed
// to an explicit package list. Order is deterministic (sorted by name).
func (e *Executor) candidates(command string, only []string) []*config.Package {
	pkgs := e.cfg.PackagesWithCommand(command)
	if len(only) == 0 {
		return pkgs
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}
	filtered := pkgs[:0]
	for _, pkg := range pkgs {
		if wanted[pkg.Name] {
			filtered = append(filtered, pkg)
		}
	}
	return filtered
}

// blockedReasons maps every node caught in a cycle or referencing an
// undefined command to the error explaining why it cannot run. Nodes
// outside those subgraphs stay runnable.
func (e *Executor) blockedReasons() map[graph.NodeID]error {
	blocked := make(map[graph.NodeID]error)
	for _, cycle := range e.graph.Cycles() {
		err := fmt.Errorf("dependency cycle: %s", graph.FormatCycle(cycle))
		for _, node := range cycle {
			if _, ok := blocked[node]; !ok {
				blocked[node] = err
			}
		}
	}
	for node, deps := range e.graph.Unresolved() {
		if _, ok := blocked[node]; ok {
			continue
		}
		refs := make([]string, len(deps))
		for i, dep := range deps {
			refs[i] = dep.String()
		}
		blocked[node] = fmt.Errorf("unresolved dependencies: %s", strings.Join(refs, ", "))
	}
	return blocked
}

// runSequential walks the plan in order, skipping nodes whose dependency
// chain already failed.
func (e *Executor) runSequential(
	ctx context.Context,
	plan []graph.NodeID,
	opts Options,
	status map[graph.NodeID]Outcome,
	cause map[graph.NodeID]graph.NodeID,
) []Result {
	results := make([]Result, 0, len(plan))
	for _, node := range plan {
		if failed, ok := e.failedDependency(node, status, cause); ok && !opts.ContinueOnError {
			results = append(results, e.recordSkip(node, failed, status, cause))
			continue
		}
		result := e.execute(ctx, node, opts, opts.CaptureOutput)
		status[node] = result.Outcome
		results = append(results, result)
	}
	return results
}

// runParallel executes the plan in waves: each wave holds every pending
// node whose dependencies have completed, run concurrently. Captured
// output is flushed wave by wave so streams never interleave.
func (e *Executor) runParallel(
	ctx context.Context,
	plan []graph.NodeID,
	opts Options,
	status map[graph.NodeID]Outcome,
	cause map[graph.NodeID]graph.NodeID,
) []Result {
	results := make([]Result, 0, len(plan))
	pending := plan

	for len(pending) > 0 {
		var wave, rest []graph.NodeID
		for _, node := range pending {
			switch {
			case e.skipNow(node, opts, status, cause, &results):
			case e.depsCompleted(node, opts, status):
				wave = append(wave, node)
			default:
				rest = append(rest, node)
			}
		}
		if len(wave) == 0 {
			// Only reachable if the plan contains a cycle, which the
			// blocked-node pass already prevents.
			for _, node := range rest {
				results = append(results, e.recordSkip(node, node, status, cause))
			}
			break
		}

		waveResults := make([]Result, len(wave))
		group, groupCtx := errgroup.WithContext(ctx)
		for i, node := range wave {
			group.Go(func() error {
				waveResults[i] = e.execute(groupCtx, node, opts, true)
				return nil
			})
		}
		// Workers never return errors; failures live in the results.
		_ = group.Wait()

		for i, node := range wave {
			result := waveResults[i]
			status[node] = result.Outcome
			if !opts.CaptureOutput {
				e.flush(result)
			}
			results = append(results, result)
		}
		pending = rest
	}

	return results
}

// skipNow records a skip for node if a dependency already failed. Returns
// false when the node is still eligible to run.
func (e *Executor) skipNow(
	node graph.NodeID,
	opts Options,
	status map[graph.NodeID]Outcome,
	cause map[graph.NodeID]graph.NodeID,
	results *[]Result,
) bool {
	if opts.ContinueOnError {
		return false
	}
	failed, ok := e.failedDependency(node, status, cause)
	if !ok {
		return false
	}
	*results = append(*results, e.recordSkip(node, failed, status, cause))
	return true
}

// depsCompleted reports whether every dependency of node has an outcome.
// Under ContinueOnError any outcome counts; otherwise they must all have
// succeeded (failures are handled by the skip pass first).
func (e *Executor) depsCompleted(node graph.NodeID, opts Options, status map[graph.NodeID]Outcome) bool {
	for _, dep := range e.graph.Deps(node) {
		if !e.graph.Defined(dep) {
			continue
		}
		outcome, done := status[dep]
		if !done {
			return false
		}
		if outcome != OutcomeSucceeded && !opts.ContinueOnError {
			return false
		}
	}
	return true
}

// failedDependency finds the failed node responsible for node not being
// runnable: a directly failed dependency, or the original failure behind
// a skipped dependency.
func (e *Executor) failedDependency(
	node graph.NodeID,
	status map[graph.NodeID]Outcome,
	cause map[graph.NodeID]graph.NodeID,
) (graph.NodeID, bool) {
	for _, dep := range e.graph.Deps(node) {
		switch status[dep] {
		case OutcomeFailed:
			return dep, true
		case OutcomeSkipped:
			if origin, ok := cause[dep]; ok {
				return origin, true
			}
			return dep, true
		}
	}
	return "", false
}

func (e *Executor) recordSkip(
	node, failed graph.NodeID,
	status map[graph.NodeID]Outcome,
	cause map[graph.NodeID]graph.NodeID,
) Result {
	status[node] = OutcomeSkipped
	cause[node] = failed
	pkg, cmd, _ := node.Split()
	e.logger.Warn("skipping", "node", node, "dueTo", failed)
	return Result{
		Node:           node,
		Package:        pkg,
		Command:        cmd,
		Outcome:        OutcomeSkipped,
		ExitCode:       -1,
		SkippedBecause: failed,
	}
}

// execute resolves and runs a single node. Template and spawn failures
// become failed results rather than errors so the plan keeps going.
func (e *Executor) execute(ctx context.Context, node graph.NodeID, opts Options, capture bool) Result {
	pkgName, cmdName, _ := node.Split()
	result := Result{Node: node, Package: pkgName, Command: cmdName, ExitCode: -1}

	pkg, ok := e.cfg.Packages[pkgName]
	if !ok {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("package %q not found", pkgName)
		return result
	}
	entry := pkg.Commands[cmdName]

	resolved, err := ResolveTemplate(entry.Variant(opts.Variant), e.mergedVars(opts.Vars), e.env)
	if err != nil {
		e.logger.Error("cannot resolve command", "node", node, "err", err)
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	argv, err := shell.Fields(resolved, nil)
	if err != nil || len(argv) == 0 {
		if err == nil {
			err = fmt.Errorf("command %q resolves to nothing", resolved)
		}
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("splitting %q: %w", resolved, err)
		return result
	}

	e.logger.Debug("executing", "node", node, "cmd", resolved, "dir", pkg.Path)
	proc := e.runner.Run(ctx, ProcessSpec{
		Program: argv[0],
		Args:    argv[1:],
		Dir:     pkg.Path,
		Capture: capture,
	})

	result.ExitCode = proc.ExitCode
	result.Output = proc.Output
	result.ErrOutput = proc.ErrOutput
	result.Err = proc.Err
	if proc.Succeeded() {
		result.Outcome = OutcomeSucceeded
	} else {
		result.Outcome = OutcomeFailed
		e.logger.Error("command failed", "node", node, "exitCode", proc.ExitCode)
	}
	return result
}

// mergedVars layers per-run overrides on top of the configured variables.
func (e *Executor) mergedVars(overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(e.cfg.Global.Vars)+len(overrides))
	for name, value := range e.cfg.Global.Vars {
		merged[name] = value
	}
	for name, value := range overrides {
		merged[name] = value
	}
	return merged
}

// flush writes a wave-captured result's output to the executor's stdout.
func (e *Executor) flush(result Result) {
	if result.Output != "" {
		fmt.Fprint(e.stdout, result.Output)
	}
	if result.ErrOutput != "" {
		fmt.Fprint(e.stdout, result.ErrOutput)
	}
}
