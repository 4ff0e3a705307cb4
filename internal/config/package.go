// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
)

// PackageConfigName is the per-package command manifest file name.
const PackageConfigName = "dev.toml"

// Package is one workspace package: its location, resolved name, and the
// commands its dev.toml declares.
type Package struct {
	// Path is the absolute package directory.
	Path string
	// DirName is the base name of the package directory.
	DirName string
	// Name is the package name, inferred from Cargo.toml or package.json
	// when present, otherwise the directory name.
	Name string
	// Commands maps command name to its entry.
	Commands map[string]CommandEntry
}

// CommandNames returns the package's command names, sorted.
func (p *Package) CommandNames() []string {
	names := make([]string, 0, len(p.Commands))
	for name := range p.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// packageTOML mirrors the dev.toml layout. Command values stay untyped
// because an entry is either a string or a table.
type packageTOML struct {
	Cmd map[string]any `toml:"cmd"`
}

// loadPackage reads dir's dev.toml and decodes every command entry.
func loadPackage(dir string) (*Package, error) {
	data, err := os.ReadFile(filepath.Join(dir, PackageConfigName))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Join(dir, PackageConfigName), err)
	}

	var decoded packageTOML
	if err := toml.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(dir, PackageConfigName), err)
	}

	dirName := filepath.Base(dir)
	pkg := &Package{
		Path:     dir,
		DirName:  dirName,
		Name:     inferPackageName(dir, dirName),
		Commands: make(map[string]CommandEntry, len(decoded.Cmd)),
	}

	for name, raw := range decoded.Cmd {
		entry, err := decodeEntry(name, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Join(dir, PackageConfigName), err)
		}
		pkg.Commands[name] = entry
	}

	return pkg, nil
}

// inferPackageName prefers the manifest name over the directory name:
// Cargo.toml first, then package.json.
func inferPackageName(dir, dirName string) string {
	if name := nameFromCargoToml(filepath.Join(dir, "Cargo.toml")); name != "" {
		return name
	}
	if name := nameFromPackageJSON(filepath.Join(dir, "package.json")); name != "" {
		return name
	}
	return dirName
}

func nameFromCargoToml(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var manifest struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return ""
	}
	return manifest.Package.Name
}

func nameFromPackageJSON(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	name := gjson.GetBytes(data, "name").String()
	// Scoped names like "@acme/web" collapse to the bare package name.
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
