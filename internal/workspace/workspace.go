// Package workspace implements workspace discovery (spec §4.G): merging
// explicit manifest-declared members with a bounded auto-scan, the same way
// the teacher's build-artifact detector reads Cargo.toml/package.json to
// learn a project's shape.
package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/chiselmap/pkg/pathutil"
)

// ManifestKind classifies a member's build system.
type ManifestKind string

const (
	ManifestCargo   ManifestKind = "cargo"
	ManifestNpm     ManifestKind = "npm"
	ManifestGo      ManifestKind = "go"
	ManifestPython  ManifestKind = "python"
	ManifestUnknown ManifestKind = "unknown"
)

// Member is one discovered workspace member.
type Member struct {
	RelPath string
	Name    string
	Kind    ManifestKind
	Depth   int
}

var memberManifestNames = []string{"Cargo.toml", "package.json", "go.mod", "pyproject.toml"}

var defaultAutoScanDepth = 3

var heavyDenyDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "target": true,
	"dist": true, "build": true, ".cache": true, "__pycache__": true,
}

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// Discover implements spec §4.G: merge explicit-manifest members with the
// bounded auto-scan, dedupe by relative path, sort by depth then path.
func Discover(root string, includeGlobs, excludeGlobs []string, scanDepth int) ([]Member, error) {
	if scanDepth <= 0 {
		scanDepth = defaultAutoScanDepth
	}

	seen := make(map[string]bool)
	var members []Member

	for _, m := range explicitMembers(root) {
		if !seen[m.RelPath] {
			seen[m.RelPath] = true
			members = append(members, m)
		}
	}
	for _, m := range autoScanMembers(root, scanDepth) {
		if !seen[m.RelPath] {
			seen[m.RelPath] = true
			members = append(members, m)
		}
	}

	members = applyGlobFilters(members, includeGlobs, excludeGlobs)

	sort.Slice(members, func(i, j int) bool {
		if members[i].Depth != members[j].Depth {
			return members[i].Depth < members[j].Depth
		}
		return members[i].RelPath < members[j].RelPath
	})
	return members, nil
}

// explicitMembers reads the root Cargo.toml workspace.members and the root
// package.json workspaces field, resolving globs relative to root.
func explicitMembers(root string) []Member {
	var out []Member

	if data, err := os.ReadFile(filepath.Join(root, "Cargo.toml")); err == nil {
		var cargo cargoManifest
		if toml.Unmarshal(data, &cargo) == nil {
			for _, pattern := range cargo.Workspace.Members {
				out = append(out, resolveGlobMember(root, pattern)...)
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg map[string]interface{}
		if json.Unmarshal(data, &pkg) == nil {
			for _, pattern := range npmWorkspacePatterns(pkg) {
				out = append(out, resolveGlobMember(root, pattern)...)
			}
		}
	}
	return out
}

func npmWorkspacePatterns(pkg map[string]interface{}) []string {
	switch v := pkg["workspaces"].(type) {
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]interface{}:
		if packages, ok := v["packages"].([]interface{}); ok {
			var out []string
			for _, item := range packages {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return nil
}

func resolveGlobMember(root, pattern string) []Member {
	var out []Member
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil
	}
	for _, rel := range matches {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		if !hasManifest(abs) {
			continue
		}
		out = append(out, memberFor(root, rel, abs))
	}
	return out
}

func hasManifest(dir string) bool {
	for _, name := range memberManifestNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// autoScanMembers walks root (skipping heavy directories) up to maxDepth,
// treating any directory containing a manifest as a member. The root itself
// is never a member.
func autoScanMembers(root string, maxDepth int) []Member {
	var out []Member
	var walk func(dir, rel string, depth int)
	walk = func(dir, rel string, depth int) {
		if depth > maxDepth {
			return
		}
		items, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, it := range items {
			if !it.IsDir() || heavyDenyDirs[it.Name()] {
				continue
			}
			childRel := it.Name()
			if rel != "" {
				childRel = rel + "/" + it.Name()
			}
			childAbs := filepath.Join(dir, it.Name())
			if hasManifest(childAbs) {
				out = append(out, memberFor(root, childRel, childAbs))
			}
			walk(childAbs, childRel, depth+1)
		}
	}
	walk(root, "", 1)
	return out
}

func memberFor(root, rel, abs string) Member {
	kind := ManifestUnknown
	name := filepath.Base(abs)

	if data, err := os.ReadFile(filepath.Join(abs, "Cargo.toml")); err == nil {
		kind = ManifestCargo
		var c cargoManifest
		if toml.Unmarshal(data, &c) == nil && c.Package.Name != "" {
			name = c.Package.Name
		}
	} else if data, err := os.ReadFile(filepath.Join(abs, "package.json")); err == nil {
		kind = ManifestNpm
		var pkg map[string]interface{}
		if json.Unmarshal(data, &pkg) == nil {
			if n, ok := pkg["name"].(string); ok && n != "" {
				name = n
			}
		}
	} else if _, err := os.Stat(filepath.Join(abs, "go.mod")); err == nil {
		kind = ManifestGo
		if data, err := os.ReadFile(filepath.Join(abs, "go.mod")); err == nil {
			if n := goModuleName(data); n != "" {
				name = n
			}
		}
	} else if _, err := os.Stat(filepath.Join(abs, "pyproject.toml")); err == nil {
		kind = ManifestPython
	}

	return Member{
		RelPath: pathutil.ToSlash(rel),
		Name:    name,
		Kind:    kind,
		Depth:   pathutil.Depth(rel) + 1,
	}
}

func goModuleName(modData []byte) string {
	for _, line := range strings.Split(string(modData), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module "))
		}
	}
	return ""
}

func applyGlobFilters(members []Member, include, exclude []string) []Member {
	if len(include) == 0 && len(exclude) == 0 {
		return members
	}
	var out []Member
	for _, m := range members {
		if len(include) > 0 && !matchesAny(include, m.RelPath) {
			continue
		}
		if matchesAny(exclude, m.RelPath) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesAny(globs []string, relPath string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, relPath); ok {
			return true
		}
	}
	return false
}
