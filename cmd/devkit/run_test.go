// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"devkit-cli/internal/task"
)

func TestParseVars(t *testing.T) {
	t.Parallel()

	vars, err := parseVars([]string{"app=web", "env=staging", "empty="})
	if err != nil {
		t.Fatalf("parseVars: %v", err)
	}
	if vars["app"] != "web" || vars["env"] != "staging" || vars["empty"] != "" {
		t.Errorf("vars = %v", vars)
	}

	if _, err := parseVars([]string{"novalue"}); err == nil {
		t.Error("expected error for flag without '='")
	}
	if _, err := parseVars([]string{"=x"}); err == nil {
		t.Error("expected error for empty name")
	}
	if vars, err := parseVars(nil); err != nil || vars != nil {
		t.Errorf("parseVars(nil) = %v, %v", vars, err)
	}
}

func TestPrintResults(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)

	printResults(c, []task.Result{
		{Node: "web:build", Outcome: task.OutcomeSucceeded},
		{Node: "api:build", Outcome: task.OutcomeFailed, ExitCode: 2},
		{Node: "app:deploy", Outcome: task.OutcomeSkipped, SkippedBecause: "api:build"},
	})

	text := out.String()
	for _, want := range []string{"web:build", "exit 2", "skipped: api:build failed"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestGetVersionString(t *testing.T) {
	if got := getVersionString(); !strings.Contains(got, "dev") {
		t.Errorf("default version = %q", got)
	}
}
