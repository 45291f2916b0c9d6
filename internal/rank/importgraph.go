package rank

import (
	"path"
	"regexp"
	"strings"

	"github.com/standardbeagle/chiselmap/internal/driver"
)

// importPathPattern pulls the quoted or bare module path out of an
// import/use statement's raw text across the supported grammars
// (`import "x"`, `import x from "x"`, `use crate::x;`, `#include <x>`, …).
var importPathPattern = regexp.MustCompile(`"([^"]+)"|'([^']+)'|<([^>]+)>`)

// BuildImportGraph constructs a best-effort ImportGraph (spec §4.F, §9)
// over the given repo-relative paths: for each file, run its driver's
// import query, extract the raw path-like payload, and resolve it against
// the known file set by suffix match. Unresolvable imports (external
// packages, stdlib) are simply dropped — only in-degree among files that
// are actually present matters to the ranker.
func BuildImportGraph(reg *driver.Registry, root string, relPaths []string, readSource func(relPath string) ([]byte, error)) ImportGraph {
	graph := make(ImportGraph, len(relPaths))
	index := buildSuffixIndex(relPaths)

	for _, rel := range relPaths {
		d := reg.DriverFor(rel)
		if d == nil {
			continue
		}
		source, err := readSource(rel)
		if err != nil {
			continue
		}
		tree, tables, err := driver.Parse(d, rel, source)
		if err != nil || tree == nil || tables.Imports == nil {
			continue
		}
		rootNode := tree.RootNode()
		if rootNode == nil {
			tree.Close()
			continue
		}
		var targets []string
		for _, m := range driver.RunQuery(tables.Imports, rootNode, source) {
			node, ok := m.Find("import")
			if !ok {
				continue
			}
			text := string(source[node.StartByte():node.EndByte()])
			if resolved := resolveImport(rel, text, index); resolved != "" {
				targets = append(targets, resolved)
			}
		}
		tree.Close()
		if len(targets) > 0 {
			graph[rel] = targets
		}
	}
	return graph
}

// buildSuffixIndex maps every path suffix (dir1/dir2/file.ext, dir2/file.ext,
// file.ext, file-without-ext) to its full repo-relative path, so a partial
// import specifier like "utils/helpers" or "./helpers" can resolve.
func buildSuffixIndex(relPaths []string) map[string]string {
	index := make(map[string]string, len(relPaths)*2)
	for _, rel := range relPaths {
		clean := path.Clean(rel)
		parts := strings.Split(clean, "/")
		for i := range parts {
			suffix := strings.Join(parts[i:], "/")
			index[suffix] = clean
			index[strings.TrimSuffix(suffix, path.Ext(suffix))] = clean
		}
	}
	return index
}

func resolveImport(fromRel, rawText string, index map[string]string) string {
	spec := extractPathLike(rawText)
	if spec == "" {
		return ""
	}
	spec = strings.TrimPrefix(spec, "./")
	spec = strings.TrimPrefix(spec, "../")
	spec = strings.ReplaceAll(spec, "::", "/")
	spec = strings.ReplaceAll(spec, ".", "/")
	spec = strings.Trim(spec, "/")
	if spec == "" {
		return ""
	}
	if target, ok := index[spec]; ok && target != fromRel {
		return target
	}
	return ""
}

func extractPathLike(text string) string {
	m := importPathPattern.FindStringSubmatch(text)
	if m == nil {
		fields := strings.Fields(text)
		if len(fields) > 1 {
			return fields[len(fields)-1]
		}
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
