// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidCommandEntry indicates a [cmd] value in dev.toml that is
// neither a command string nor a table with a "default" key.
var ErrInvalidCommandEntry = errors.New("invalid command entry")

// InvalidCommandEntryError carries the command name and the reason a
// dev.toml entry could not be decoded.
type InvalidCommandEntryError struct {
	Command string
	Reason  string
}

func (e *InvalidCommandEntryError) Error() string {
	return fmt.Sprintf("command %q: %s", e.Command, e.Reason)
}

func (e *InvalidCommandEntryError) Unwrap() error { return ErrInvalidCommandEntry }

// CommandEntry is one declared command: either a bare command string or a
// full entry with a default command, dependencies, and named variants.
// Entries are immutable after decoding.
type CommandEntry struct {
	simple     bool
	defaultCmd string
	deps       []string
	variants   map[string]string
}

// SimpleEntry builds an entry holding a single command string.
func SimpleEntry(cmd string) CommandEntry {
	return CommandEntry{simple: true, defaultCmd: cmd}
}

// FullEntry builds an entry with a default command, dependency references,
// and variant commands. The arguments are copied.
func FullEntry(defaultCmd string, deps []string, variants map[string]string) CommandEntry {
	e := CommandEntry{defaultCmd: defaultCmd}
	if len(deps) > 0 {
		e.deps = append([]string(nil), deps...)
	}
	if len(variants) > 0 {
		e.variants = make(map[string]string, len(variants))
		for name, cmd := range variants {
			e.variants[name] = cmd
		}
	}
	return e
}

// IsSimple reports whether the entry was declared as a bare string.
func (e CommandEntry) IsSimple() bool { return e.simple }

// Default returns the default command string.
func (e CommandEntry) Default() string { return e.defaultCmd }

// Variant returns the command string for the named variant, falling back
// to the default when the variant is unknown or the name is empty.
func (e CommandEntry) Variant(name string) string {
	if cmd, ok := e.variants[name]; ok {
		return cmd
	}
	return e.defaultCmd
}

// Deps returns a copy of the dependency references.
func (e CommandEntry) Deps() []string {
	if len(e.deps) == 0 {
		return nil
	}
	return append([]string(nil), e.deps...)
}

// VariantNames returns the declared variant names, sorted.
func (e CommandEntry) VariantNames() []string {
	names := make([]string, 0, len(e.variants))
	for name := range e.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeEntry turns a raw [cmd] value from dev.toml into a CommandEntry.
// Strings become simple entries. Tables need a "default" key; "deps" must
// be an array of strings, and every other string-valued key is a variant.
func decodeEntry(name string, raw any) (CommandEntry, error) {
	switch value := raw.(type) {
	case string:
		return SimpleEntry(value), nil

	case map[string]any:
		defaultRaw, ok := value["default"]
		if !ok {
			return CommandEntry{}, &InvalidCommandEntryError{
				Command: name, Reason: `table entries need a "default" command`}
		}
		defaultCmd, ok := defaultRaw.(string)
		if !ok {
			return CommandEntry{}, &InvalidCommandEntryError{
				Command: name, Reason: `"default" must be a string`}
		}

		var deps []string
		if depsRaw, ok := value["deps"]; ok {
			list, ok := depsRaw.([]any)
			if !ok {
				return CommandEntry{}, &InvalidCommandEntryError{
					Command: name, Reason: `"deps" must be an array of strings`}
			}
			for _, item := range list {
				dep, ok := item.(string)
				if !ok {
					return CommandEntry{}, &InvalidCommandEntryError{
						Command: name, Reason: fmt.Sprintf("dependency %v is not a string", item)}
				}
				deps = append(deps, dep)
			}
		}

		variants := make(map[string]string)
		for key, variantRaw := range value {
			if key == "default" || key == "deps" {
				continue
			}
			cmd, ok := variantRaw.(string)
			if !ok {
				return CommandEntry{}, &InvalidCommandEntryError{
					Command: name, Reason: fmt.Sprintf("variant %q must be a string", key)}
			}
			variants[key] = cmd
		}

		return FullEntry(defaultCmd, deps, variants), nil

	default:
		return CommandEntry{}, &InvalidCommandEntryError{
			Command: name, Reason: fmt.Sprintf("unsupported value of type %T", raw)}
	}
}
