package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/kmmelissat/analisis-al-instante-api"

type layerRule struct {
	sourcePrefix string
	forbidden    []string
	hint         string
}

func internalPkgs(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, modulePath+"/internal/"+n)
	}
	return out
}

var outerLayers = []string{"api", "app", "config", "middleware", "service", "registry"}

// Rules apply to production files. Order matters: the first matching
// sourcePrefix wins.
var architectureRules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden: append(internalPkgs("dataset", "distribution", "aggregate", "series", "hierarchy", "sequential", "chart"),
			append(internalPkgs(outerLayers...), modulePath+"/cmd", modulePath+"/pkg/cli")...),
		hint: "domain may only import domain",
	},
	{
		sourcePrefix: modulePath + "/internal/distribution",
		forbidden:    append(internalPkgs("domain", "dataset", "aggregate", "chart"), internalPkgs(outerLayers...)...),
		hint:         "distribution is pure numeric code",
	},
	{
		sourcePrefix: modulePath + "/internal/dataset",
		forbidden:    append(internalPkgs("aggregate", "series", "hierarchy", "sequential", "chart"), internalPkgs(outerLayers...)...),
		hint:         "dataset may import domain and distribution",
	},
	{
		sourcePrefix: modulePath + "/internal/aggregate",
		forbidden:    append(internalPkgs("series", "hierarchy", "sequential", "chart"), internalPkgs(outerLayers...)...),
		hint:         "aggregate sits below the chart families",
	},
	{
		sourcePrefix: modulePath + "/internal/series",
		forbidden:    append(internalPkgs("chart"), internalPkgs(outerLayers...)...),
		hint:         "chart families must not import the dispatcher",
	},
	{
		sourcePrefix: modulePath + "/internal/hierarchy",
		forbidden:    append(internalPkgs("chart"), internalPkgs(outerLayers...)...),
		hint:         "chart families must not import the dispatcher",
	},
	{
		sourcePrefix: modulePath + "/internal/sequential",
		forbidden:    append(internalPkgs("chart"), internalPkgs(outerLayers...)...),
		hint:         "chart families must not import the dispatcher",
	},
	{
		sourcePrefix: modulePath + "/internal/chart",
		forbidden:    internalPkgs(outerLayers...),
		hint:         "chart is a pure engine with no transport or storage",
	},
	{
		sourcePrefix: modulePath + "/internal/registry",
		forbidden:    internalPkgs("chart", "service", "api", "app", "config", "middleware"),
		hint:         "registry should depend on dataset and domain",
	},
	{
		sourcePrefix: modulePath + "/internal/service",
		forbidden:    append(internalPkgs("api", "app", "config", "middleware", "registry", "chart"), modulePath+"/cmd", modulePath+"/pkg/cli"),
		hint:         "service depends on interfaces, not concrete stores or engines",
	},
	{
		sourcePrefix: modulePath + "/internal/middleware",
		forbidden:    internalPkgs("domain", "dataset", "chart", "registry", "service", "api", "app"),
		hint:         "middleware is transport-only",
	},
	{
		sourcePrefix: modulePath + "/internal/api",
		forbidden:    append(internalPkgs("app", "config"), modulePath+"/cmd", modulePath+"/pkg/cli"),
		hint:         "api should depend on service/domain/api packages",
	},
	{
		sourcePrefix: modulePath + "/internal/testutil",
		forbidden:    internalPkgs("chart", "registry", "service", "api", "app"),
		hint:         "testutil is imported by service tests and must stay below them",
	},
}

// Test files may reach sideways for fixtures but never outward.
var testRules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/service",
		forbidden:    append(internalPkgs("api", "app"), modulePath+"/cmd", modulePath+"/pkg/cli"),
		hint:         "service tests may use concrete stores but not transport",
	},
	{
		sourcePrefix: modulePath + "/internal/api",
		forbidden:    append(internalPkgs("app"), modulePath+"/cmd", modulePath+"/pkg/cli"),
		hint:         "api tests build their own handler",
	},
	{
		sourcePrefix: modulePath + "/internal/chart",
		forbidden:    internalPkgs("service", "api", "app"),
		hint:         "engine tests exercise the engine directly",
	},
}

// importViolations checks every internal file of the requested kind (test or
// production) against rules and returns sorted violation messages.
func importViolations(t *testing.T, rules []layerRule, tests bool) []string {
	t.Helper()

	files, err := collectGoFiles(internalRootDir())
	require.NoError(t, err)

	violations := make([]string, 0)
	for _, file := range files {
		if isTestFile(file) != tests {
			continue
		}
		sourcePkg := packageImportPath(file)
		rule, ok := findRule(rules, sourcePkg)
		if !ok {
			continue
		}
		kind := ""
		if tests {
			kind = "test "
		}
		for _, importPath := range parseImports(t, file) {
			if !strings.HasPrefix(importPath, modulePath+"/") {
				continue
			}
			if matchingForbiddenPrefix(importPath, rule.forbidden) == "" {
				continue
			}
			violations = append(violations, "governance: "+kind+sourcePkg+" imports "+importPath+
				" via "+relToRepoRoot(file)+"; allowed direction: "+rule.hint)
		}
	}
	sort.Strings(violations)
	return violations
}

func collectGoFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func repoRootDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func internalRootDir() string {
	return filepath.Join(repoRootDir(), "internal")
}

func findRule(rules []layerRule, sourcePkg string) (layerRule, bool) {
	for _, rule := range rules {
		if hasPathPrefix(sourcePkg, rule.sourcePrefix) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func matchingForbiddenPrefix(importPath string, forbidden []string) string {
	for _, prefix := range forbidden {
		if hasPathPrefix(importPath, prefix) {
			return prefix
		}
	}
	return ""
}

func hasPathPrefix(value string, prefix string) bool {
	return value == prefix || strings.HasPrefix(value, prefix+"/")
}

func packageImportPath(file string) string {
	path := filepath.ToSlash(filepath.Dir(file))
	idx := strings.Index(path, "/internal/")
	if idx >= 0 {
		return modulePath + path[idx:]
	}
	return modulePath + "/" + path
}

func isTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

func parseImports(t *testing.T, file string) []string {
	t.Helper()

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
	require.NoErrorf(t, err, "parse imports for %s", file)

	imports := make([]string, 0, len(parsed.Imports))
	for _, imp := range parsed.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, "\""))
	}
	return imports
}

func relToRepoRoot(path string) string {
	rel, err := filepath.Rel(repoRootDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
