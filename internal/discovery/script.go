// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"devkit-cli/internal/catalog"
)

// scriptDirs are the conventional script locations, relative to the
// repository root.
var scriptDirs = []string{"bin", "scripts", ".dev/scripts", "tools"}

const (
	scriptDescMinLen = 10
	scriptDescMaxLen = 100
	// scriptDescScanLines bounds how far into a script the description
	// search reads.
	scriptDescScanLines = 30
)

// ScriptProvider surfaces executable, non-dot-prefixed files under the
// conventional script directories. The description is the first comment
// line that is not the shebang and is between 10 and 100 characters long.
// Files matched by the repository's .gitignore are excluded.
type ScriptProvider struct{}

// Name implements Provider.
func (ScriptProvider) Name() string { return "script" }

// Available implements Provider.
func (ScriptProvider) Available(ctx Context) bool {
	for _, dir := range scriptDirs {
		if info, err := os.Stat(filepath.Join(ctx.RepoRoot, dir)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// Discover implements Provider.
func (p ScriptProvider) Discover(ctx Context) ([]catalog.Command, error) {
	ignore := loadIgnorePatterns(ctx.RepoRoot)

	var commands []catalog.Command
	for _, dir := range scriptDirs {
		abs := filepath.Join(ctx.RepoRoot, dir)
		entries, err := os.ReadDir(abs)
		if err != nil {
			continue
		}

		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(abs, name)
			rel := filepath.ToSlash(filepath.Join(dir, name))
			if !isScript(path, name) || ignored(ignore, rel) {
				continue
			}

			label := strings.TrimSuffix(name, filepath.Ext(name))
			commands = append(commands,
				catalog.NewCommand(fmt.Sprintf("script.%s", rel), label, catalog.Categorize(label)).
					WithDescription(scriptDescription(path)).
					WithSource(rel).
					WithScope(catalog.WorkspaceScope()).
					WithExec("./"+rel, nil, ""))
		}
	}
	return commands, nil
}

// isScript keeps regular, executable, non-dot-prefixed files.
func isScript(path, name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// scriptDescription finds the first qualifying comment line.
func scriptDescription(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for line := 0; scanner.Scan() && line < scriptDescScanLines; line++ {
		text := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(text, "#!") || !strings.HasPrefix(text, "#") {
			continue
		}
		desc := strings.TrimSpace(strings.TrimLeft(text, "#"))
		if len(desc) >= scriptDescMinLen && len(desc) <= scriptDescMaxLen {
			return desc
		}
	}
	return ""
}

// loadIgnorePatterns reads the root .gitignore into doublestar patterns.
// Negations and anchored complexities are ignored; this only needs to keep
// generated or vendored scripts out of the catalog.
func loadIgnorePatterns(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		line = strings.TrimPrefix(line, "/")
		if strings.HasSuffix(line, "/") {
			// Directory pattern: everything beneath it.
			patterns = append(patterns, strings.TrimSuffix(line, "/")+"/**")
			continue
		}
		patterns = append(patterns, line)
		if !strings.Contains(line, "/") {
			// Bare names match at any depth, like git does.
			patterns = append(patterns, "**/"+line)
		}
	}
	return patterns
}

func ignored(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
