package slice

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// cargoSubsetTables is the top-level Cargo.toml tables spec §4.H keeps;
// everything else (profile overrides, metadata blobs, lint tables, …)
// is dropped during manifest-subset compaction.
var cargoSubsetTables = []string{
	"package", "lib", "bin", "workspace",
	"dependencies", "dev-dependencies", "build-dependencies", "features",
}

// npmSubsetKeys is the analogous key subset for package.json.
var npmSubsetKeys = []string{
	"name", "version", "private", "workspaces",
	"dependencies", "devDependencies", "peerDependencies",
	"scripts", "main", "module", "type", "exports",
}

func isCargoManifest(relPath string) bool {
	return filepath.Base(relPath) == "Cargo.toml"
}

func isNpmManifest(relPath string) bool {
	return filepath.Base(relPath) == "package.json"
}

// compactCargoManifest keeps only cargoSubsetTables from a Cargo.toml's
// content, re-serializing the subset.
func compactCargoManifest(content []byte) string {
	var doc map[string]interface{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return string(content)
	}
	subset := make(map[string]interface{}, len(cargoSubsetTables))
	for _, key := range cargoSubsetTables {
		if v, ok := doc[key]; ok {
			subset[key] = v
		}
	}
	out, err := toml.Marshal(subset)
	if err != nil {
		return string(content)
	}
	return string(out)
}

// compactNpmManifest keeps only npmSubsetKeys from a package.json's content.
func compactNpmManifest(content []byte) string {
	var doc map[string]interface{}
	if err := json.Unmarshal(content, &doc); err != nil {
		return string(content)
	}
	subset := make(map[string]interface{}, len(npmSubsetKeys))
	for _, key := range npmSubsetKeys {
		if v, ok := doc[key]; ok {
			subset[key] = v
		}
	}
	out, err := json.MarshalIndent(subset, "", "  ")
	if err != nil {
		return string(content)
	}
	return string(out)
}

var hashCommentExts = map[string]bool{
	".py": true, ".rb": true, ".sh": true, ".bash": true, ".yaml": true,
	".yml": true, ".toml": true, ".pl": true, ".r": true,
}

// truncateUnsupported implements spec §4.H's "unsupported code-like
// files" rule: cap at min(50 lines, 2048 bytes), a language-appropriate
// header, and an ellipsis trailer if truncation actually occurred.
func truncateUnsupported(relPath string, content []byte) string {
	const maxLines = 50
	const maxBytes = 2048

	ext := strings.ToLower(filepath.Ext(relPath))
	header := "/* ... */"
	if hashCommentExts[ext] {
		header = "# ..."
	}

	lines := strings.Split(string(content), "\n")
	truncatedByLines := len(lines) > maxLines
	if truncatedByLines {
		lines = lines[:maxLines]
	}
	text := strings.Join(lines, "\n")

	truncatedByBytes := false
	if len(text) > maxBytes {
		text = text[:maxBytes]
		truncatedByBytes = true
	}

	if truncatedByLines || truncatedByBytes {
		return header + "\n" + text + "\n" + header
	}
	return text
}
