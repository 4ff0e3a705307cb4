// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingVariables is the sentinel error wrapped by MissingVariablesError.
var ErrMissingVariables = errors.New("missing template variables")

// placeholderRe matches {name} placeholders in command templates.
var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// MissingVariablesError is returned when a template references variables
// that are defined neither in the variable table nor in the environment.
// Names holds every unresolved placeholder, in order of first appearance.
type MissingVariablesError struct {
	Names []string
}

// Error implements the error interface.
func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf(
		"missing template variables: %s (set them in .dev/config.toml [vars], via --var, or in the environment)",
		strings.Join(e.Names, ", "))
}

// Unwrap returns ErrMissingVariables so callers can use errors.Is.
func (e *MissingVariablesError) Unwrap() error { return ErrMissingVariables }

// ResolveTemplate substitutes every {name} placeholder in template,
// consulting vars first and env second. If any placeholder stays
// unresolved the template fails as a whole: no partial substitution is
// returned and the error names every missing variable at once.
func ResolveTemplate(template string, vars, env map[string]string) (string, error) {
	var missing []string
	seen := make(map[string]bool)

	resolved := placeholderRe.ReplaceAllStringFunc(template, func(placeholder string) string {
		name := placeholder[1 : len(placeholder)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		if value, ok := env[name]; ok {
			return value
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return placeholder
	})

	if len(missing) > 0 {
		return "", &MissingVariablesError{Names: missing}
	}
	return resolved, nil
}

// ExtractVariableNames lists the placeholder names in template, in order
// of first appearance, so callers can prompt for values before resolving.
func ExtractVariableNames(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if name := match[1]; !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// EnvironMap converts os.Environ-style "KEY=value" pairs into a map for
// template resolution.
func EnvironMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, pair := range environ {
		if key, value, ok := strings.Cut(pair, "="); ok {
			env[key] = value
		}
	}
	return env
}
