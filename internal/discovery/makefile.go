// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"devkit-cli/internal/catalog"
)

// makefileNames are the file names checked for build targets, in lookup
// order.
var makefileNames = []string{"Makefile", "makefile", "GNUmakefile"}

// MakeProvider surfaces the targets of the repository's Makefile and of
// per-package Makefiles.
//
// A target is a non-indented line with a ':' before any '=', whose name
// does not start with '.' or '_' and contains no variable reference
// ('$(' or '${'). Contiguous '#' comment lines immediately above a target
// become its description; a blank line resets them.
type MakeProvider struct{}

// Name implements Provider.
func (MakeProvider) Name() string { return "make" }

// Available implements Provider.
func (MakeProvider) Available(ctx Context) bool {
	if findMakefile(ctx.RepoRoot) != "" {
		return true
	}
	for _, pkg := range ctx.Packages() {
		if findMakefile(pkg.Path) != "" {
			return true
		}
	}
	return false
}

// Discover implements Provider.
func (p MakeProvider) Discover(ctx Context) ([]catalog.Command, error) {
	var commands []catalog.Command

	if path := findMakefile(ctx.RepoRoot); path != "" {
		found, err := p.targetsIn(ctx, path, "workspace", catalog.WorkspaceScope())
		if err != nil {
			return nil, err
		}
		commands = append(commands, found...)
	}

	for _, pkg := range ctx.Packages() {
		path := findMakefile(pkg.Path)
		if path == "" {
			continue
		}
		found, err := p.targetsIn(ctx, path, pkg.Name, catalog.PackageScope(pkg.Name))
		if err != nil {
			return nil, err
		}
		commands = append(commands, found...)
	}

	return commands, nil
}

// targetsIn parses one Makefile into commands, sorted by target name.
// Duplicate target lines keep the first occurrence.
func (p MakeProvider) targetsIn(ctx Context, path, idScope string, scope catalog.Scope) ([]catalog.Command, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dir := filepath.Dir(path)
	source := filepath.Base(path)
	seen := make(map[string]bool)
	var commands []catalog.Command
	var comments []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.TrimSpace(line) == "":
			comments = nil
			continue
		case strings.HasPrefix(line, "#"):
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(line, "#")))
			continue
		}

		name, ok := targetName(line)
		if !ok || seen[name] {
			comments = nil
			continue
		}
		seen[name] = true

		commands = append(commands,
			catalog.NewCommand(fmt.Sprintf("make.%s.%s", idScope, name), name, catalog.Categorize(name)).
				WithDescription(strings.Join(comments, " ")).
				WithSource(source).
				WithScope(scope).
				WithExec("make", []string{name}, ctx.RelDir(dir)))
		comments = nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(commands, func(i, j int) bool { return commands[i].Label < commands[j].Label })
	return commands, nil
}

// targetName extracts the target from a rule line, or reports the line is
// not a target definition.
func targetName(line string) (string, bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return "", false
	}

	colon := strings.Index(line, ":")
	if colon <= 0 {
		return "", false
	}
	if eq := strings.Index(line, "="); eq >= 0 && eq < colon {
		return "", false
	}

	name := strings.TrimSpace(line[:colon])
	switch {
	case name == "",
		strings.HasPrefix(name, "."),
		strings.HasPrefix(name, "_"),
		strings.Contains(name, "$("),
		strings.Contains(name, "${"),
		strings.ContainsAny(name, "% \t"):
		return "", false
	}
	return name, true
}

func findMakefile(dir string) string {
	for _, name := range makefileNames {
		path := filepath.Join(dir, name)
		if isFile(path) {
			return path
		}
	}
	return ""
}
