// SPDX-License-Identifier: MPL-2.0

// Package catalog defines the shared data model for discovered commands:
// the command record itself, its category, its scope, and the data-only
// execution descriptor interpreted by the task executor.
package catalog

import (
	"errors"
	"fmt"
)

// Category constants for grouping discovered commands.
const (
	CategoryBuild        Category = "build"
	CategoryTest         Category = "test"
	CategoryQuality      Category = "quality"
	CategoryServices     Category = "services"
	CategoryDatabase     Category = "database"
	CategoryDev          Category = "dev"
	CategoryDeploy       Category = "deploy"
	CategoryGit          Category = "git"
	CategoryDependencies Category = "dependencies"
	CategoryScripts      Category = "scripts"
	CategoryOther        Category = "other"
)

// ScopeKind constants.
const (
	ScopeWorkspace ScopeKind = "workspace"
	ScopePackage   ScopeKind = "package"
	ScopeGlobal    ScopeKind = "global"
)

// ErrInvalidCategory is the sentinel error wrapped by InvalidCategoryError.
var ErrInvalidCategory = errors.New("invalid category")

type (
	// Category groups discovered commands for presentation.
	Category string

	// InvalidCategoryError is returned when a Category value is not one of
	// the defined constants. It wraps ErrInvalidCategory for errors.Is().
	InvalidCategoryError struct {
		Value Category
	}

	// ScopeKind distinguishes the three scope variants.
	ScopeKind string

	// Scope describes where a command applies: the whole workspace, one
	// package, or nowhere in particular (global tools and services).
	Scope struct {
		kind ScopeKind
		pkg  string
	}

	// ExecSpec is the data-only execution descriptor attached to a
	// discovered command. The executor interprets it uniformly; nothing in
	// the catalog captures closures or ambient state, so commands stay
	// inspectable without being run.
	ExecSpec struct {
		// Program is the executable to spawn.
		Program string
		// Args are the arguments passed to Program.
		Args []string
		// Dir is the working directory, relative to the repository root.
		// Empty means the repository root itself.
		Dir string
	}

	// Command is one discovered, runnable command. Immutable once
	// constructed; build it with NewCommand and the With* methods.
	Command struct {
		// ID is unique within one discovery pass (e.g. "npm.web.build").
		ID string
		// Label is the display name.
		Label string
		// Description explains what the command does.
		Description string
		// Source names the file the command was discovered in
		// (e.g. "package.json", "Makefile").
		Source string
		// Category groups the command for presentation.
		Category Category
		// Scope says where the command applies.
		Scope Scope
		// Exec describes how to run the command.
		Exec ExecSpec
	}
)

// Error implements the error interface.
func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category %q", string(e.Value))
}

// Unwrap returns ErrInvalidCategory so callers can use errors.Is.
func (e *InvalidCategoryError) Unwrap() error { return ErrInvalidCategory }

// IsValid returns whether the Category is one of the defined constants.
func (c Category) IsValid() (bool, []error) {
	switch c {
	case CategoryBuild, CategoryTest, CategoryQuality, CategoryServices,
		CategoryDatabase, CategoryDev, CategoryDeploy, CategoryGit,
		CategoryDependencies, CategoryScripts, CategoryOther:
		return true, nil
	}
	return false, []error{&InvalidCategoryError{Value: c}}
}

// Label returns the human-readable category name.
func (c Category) Label() string {
	switch c {
	case CategoryBuild:
		return "Build"
	case CategoryTest:
		return "Test"
	case CategoryQuality:
		return "Quality"
	case CategoryServices:
		return "Services"
	case CategoryDatabase:
		return "Database"
	case CategoryDev:
		return "Development"
	case CategoryDeploy:
		return "Deploy"
	case CategoryGit:
		return "Git"
	case CategoryDependencies:
		return "Dependencies"
	case CategoryScripts:
		return "Scripts"
	default:
		return "Other"
	}
}

// CategoryOrder is the fixed presentation order for grouped command lists.
var CategoryOrder = []Category{
	CategoryDev, CategoryBuild, CategoryTest, CategoryQuality,
	CategoryServices, CategoryDatabase, CategoryDeploy, CategoryGit,
	CategoryDependencies, CategoryScripts, CategoryOther,
}

// WorkspaceScope returns the scope covering the entire workspace.
func WorkspaceScope() Scope { return Scope{kind: ScopeWorkspace} }

// PackageScope returns the scope tied to one named package.
func PackageScope(name string) Scope { return Scope{kind: ScopePackage, pkg: name} }

// GlobalScope returns the scope for commands not tied to any package.
func GlobalScope() Scope { return Scope{kind: ScopeGlobal} }

// Kind returns the scope variant.
func (s Scope) Kind() ScopeKind { return s.kind }

// Package returns the package name for package scopes, "" otherwise.
func (s Scope) Package() string { return s.pkg }

// Label returns a short display string for the scope.
func (s Scope) Label() string {
	switch s.kind {
	case ScopeWorkspace:
		return "workspace"
	case ScopePackage:
		return s.pkg
	default:
		return "global"
	}
}

// NewCommand creates a Command with the required fields set. Optional
// fields are filled in with the With* methods, which return copies.
func NewCommand(id, label string, category Category) Command {
	return Command{
		ID:       id,
		Label:    label,
		Category: category,
		Scope:    GlobalScope(),
	}
}

// WithDescription returns a copy with the description set.
func (c Command) WithDescription(desc string) Command {
	c.Description = desc
	return c
}

// WithSource returns a copy with the source file set.
func (c Command) WithSource(source string) Command {
	c.Source = source
	return c
}

// WithScope returns a copy with the scope set.
func (c Command) WithScope(scope Scope) Command {
	c.Scope = scope
	return c
}

// WithExec returns a copy with the execution descriptor set.
func (c Command) WithExec(program string, args []string, dir string) Command {
	c.Exec = ExecSpec{Program: program, Args: args, Dir: dir}
	return c
}
