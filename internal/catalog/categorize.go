// SPDX-License-Identifier: MPL-2.0

package catalog

import "strings"

// categoryKeywords maps substrings of command names to categories, in
// match-priority order. The first matching keyword wins.
var categoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"build", CategoryBuild},
	{"compile", CategoryBuild},
	{"test", CategoryTest},
	{"lint", CategoryQuality},
	{"eslint", CategoryQuality},
	{"format", CategoryQuality},
	{"prettier", CategoryQuality},
	{"typecheck", CategoryQuality},
	{"check", CategoryQuality},
	{"deploy", CategoryDeploy},
	{"release", CategoryDeploy},
	{"publish", CategoryDeploy},
	{"migrate", CategoryDatabase},
	{"seed", CategoryDatabase},
	{"dev", CategoryDev},
	{"start", CategoryDev},
	{"serve", CategoryDev},
	{"watch", CategoryDev},
	{"install", CategoryDependencies},
	{"upgrade", CategoryDependencies},
	{"update", CategoryDependencies},
}

// Categorize guesses a Category from a command or script name. Names with
// no recognizable keyword fall into CategoryScripts, the catch-all for
// user-defined entries.
func Categorize(name string) Category {
	lower := strings.ToLower(name)
	for _, kw := range categoryKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.category
		}
	}
	return CategoryScripts
}
