// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"

	"devkit-cli/internal/catalog"
)

// stubProvider is a scripted provider for engine tests.
type stubProvider struct {
	name      string
	available bool
	err       error
	commands  []catalog.Command
	calls     int
}

func (p *stubProvider) Name() string            { return p.name }
func (p *stubProvider) Available(Context) bool  { return p.available }
func (p *stubProvider) Discover(Context) ([]catalog.Command, error) {
	p.calls++
	return p.commands, p.err
}

func cmd(id string) catalog.Command {
	return catalog.NewCommand(id, id, catalog.CategoryOther)
}

func testEngine(providers ...Provider) *Engine {
	return NewEngine(providers...).WithLogger(log.New(&bytes.Buffer{}))
}

func TestEngineAggregatesInProviderOrder(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "first", available: true, commands: []catalog.Command{cmd("b"), cmd("a")}}
	second := &stubProvider{name: "second", available: true, commands: []catalog.Command{cmd("z")}}

	got := testEngine(first, second).Discover(Context{})
	want := []string{"b", "a", "z"}
	if len(got) != len(want) {
		t.Fatalf("got %d commands, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestEngineCacheIsStableUntilRefresh(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub", available: true, commands: []catalog.Command{cmd("a")}}
	engine := testEngine(provider)

	first := engine.Discover(Context{})
	second := engine.Discover(Context{})
	if provider.calls != 1 {
		t.Errorf("provider ran %d times, want 1", provider.calls)
	}
	if len(first) != len(second) {
		t.Fatalf("cached list changed length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("cached list differs at %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}

	engine.Refresh()
	engine.Discover(Context{})
	if provider.calls != 2 {
		t.Errorf("provider ran %d times after refresh, want 2", provider.calls)
	}
}

func TestEngineSkipsUnavailableProviders(t *testing.T) {
	t.Parallel()

	skipped := &stubProvider{name: "skipped", available: false, commands: []catalog.Command{cmd("x")}}
	active := &stubProvider{name: "active", available: true, commands: []catalog.Command{cmd("y")}}

	got := testEngine(skipped, active).Discover(Context{})
	if skipped.calls != 0 {
		t.Error("unavailable provider must not be asked to discover")
	}
	if len(got) != 1 || got[0].ID != "y" {
		t.Errorf("got %v", got)
	}
}

func TestEngineFailingProviderCannotSuppressOthers(t *testing.T) {
	t.Parallel()

	broken := &stubProvider{name: "broken", available: true, err: errors.New("malformed manifest")}
	healthy := &stubProvider{name: "healthy", available: true, commands: []catalog.Command{cmd("ok")}}

	got := testEngine(broken, healthy).Discover(Context{})
	if len(got) != 1 || got[0].ID != "ok" {
		t.Errorf("got %v, want the healthy provider's command", got)
	}
}

func TestContextRelDir(t *testing.T) {
	t.Parallel()

	ctx := Context{RepoRoot: "/repo"}
	if got := ctx.RelDir("/repo"); got != "" {
		t.Errorf("RelDir(root) = %q, want empty", got)
	}
	if got := ctx.RelDir("/repo/packages/web"); got != "packages/web" {
		t.Errorf("RelDir = %q", got)
	}
}
