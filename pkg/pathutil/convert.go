// Package pathutil converts between absolute and repo-relative paths.
//
// chiselmap walks the filesystem with absolute paths internally but every
// user- and model-facing surface (slice XML, repo maps, checkpoint records)
// uses repo-relative, forward-slash paths. This package is the conversion
// boundary between the two.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to one relative to rootDir, always
// using forward slashes. Falls back to the cleaned absolute path if the
// conversion fails or the path lies outside rootDir.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return ToSlash(absPath)
	}

	cleanAbs := filepath.Clean(absPath)
	cleanRoot := filepath.Clean(rootDir)

	rel, err := filepath.Rel(cleanRoot, cleanAbs)
	if err != nil {
		return ToSlash(cleanAbs)
	}
	if strings.HasPrefix(rel, "..") {
		return ToSlash(cleanAbs)
	}
	return ToSlash(rel)
}

// ToSlash normalizes path separators to forward slashes, per the File entry
// invariant in the data model: repo-relative paths are always slash-normalized.
func ToSlash(path string) string {
	return filepath.ToSlash(path)
}

// Depth counts path separators, used by workspace member discovery and the
// ranker's depth-penalty rule. Operates on the slash-normalized form so the
// result is platform independent.
func Depth(relPath string) int {
	slash := strings.Trim(ToSlash(relPath), "/")
	if slash == "" || slash == "." {
		return 0
	}
	return strings.Count(slash, "/")
}
