// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"github.com/charmbracelet/log"

	"devkit-cli/internal/catalog"
)

// Engine aggregates providers and caches the combined command list. The
// cache lives until Refresh; repeated Discover calls return the identical
// list without touching the filesystem again.
type Engine struct {
	providers []Provider
	cache     []catalog.Command
	logger    *log.Logger
}

// NewEngine builds an engine over the given providers, kept in order.
func NewEngine(providers ...Provider) *Engine {
	return &Engine{providers: providers, logger: log.Default()}
}

// DefaultProviders is the standard provider set, in presentation order.
func DefaultProviders() []Provider {
	return []Provider{
		NpmProvider{},
		CargoProvider{},
		MakeProvider{},
		ScriptProvider{},
		ComposeProvider{},
	}
}

// WithLogger swaps the logger.
func (e *Engine) WithLogger(logger *log.Logger) *Engine {
	e.logger = logger
	return e
}

// Discover returns every command the available providers find, in
// provider registration order. The result is cached; callers must treat
// it as read-only.
func (e *Engine) Discover(ctx Context) []catalog.Command {
	if e.cache != nil {
		return e.cache
	}

	commands := []catalog.Command{}
	for _, provider := range e.providers {
		if !provider.Available(ctx) {
			continue
		}
		found, err := provider.Discover(ctx)
		if err != nil {
			// One broken ecosystem must not suppress the others.
			if !ctx.Quiet {
				e.logger.Debug("provider failed", "provider", provider.Name(), "err", err)
			}
			continue
		}
		commands = append(commands, found...)
	}

	e.cache = commands
	return e.cache
}

// Refresh drops the cache so the next Discover re-reads the filesystem.
func (e *Engine) Refresh() {
	e.cache = nil
}
