// SPDX-License-Identifier: MPL-2.0

package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

type (
	// ProcessSpec describes one process to spawn: the resolved program,
	// its arguments, the working directory, and extra environment
	// variables appended to the inherited environment.
	ProcessSpec struct {
		Program string
		Args    []string
		Dir     string
		Env     map[string]string
		// Capture redirects stdout/stderr into the ProcessResult instead
		// of inheriting the parent's streams.
		Capture bool
	}

	// ProcessResult is the outcome of one spawned process.
	ProcessResult struct {
		// ExitCode is the process exit status; -1 when the process could
		// not be started or was killed by a signal before exiting.
		ExitCode int
		// Output holds combined captured stdout, empty unless Capture.
		Output string
		// ErrOutput holds captured stderr, empty unless Capture.
		ErrOutput string
		// Err reports a spawn failure (program not found, bad working
		// directory). A non-zero exit is not an Err.
		Err error
	}

	// Runner is the process execution primitive the executor is abstract
	// over. Implementations run the spec to completion synchronously.
	Runner interface {
		Run(ctx context.Context, spec ProcessSpec) ProcessResult
	}

	// ExecRunner runs processes with os/exec, inheriting the parent's
	// standard streams unless the spec asks for capture. Cancellation is
	// delivered by the context's normal signal plumbing; a child killed
	// mid-run surfaces as a non-zero exit.
	ExecRunner struct{}
)

// Succeeded reports whether the process started and exited zero.
func (r ProcessResult) Succeeded() bool { return r.Err == nil && r.ExitCode == 0 }

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, spec ProcessSpec) ProcessResult {
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = spec.Dir

	cmd.Env = os.Environ()
	for key, value := range spec.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	var stdout, stderr bytes.Buffer
	if spec.Capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	result := ProcessResult{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	switch {
	case err == nil:
		result.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Err = fmt.Errorf("spawn %s: %w", spec.Program, err)
		}
	}

	return result
}
