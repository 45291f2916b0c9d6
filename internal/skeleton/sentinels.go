// Package skeleton implements the skeletonizer (spec §4.C) and the
// universal regex fallback for unsupported languages (spec §4.D).
package skeleton

import "strings"

const (
	// BinarySentinel is returned verbatim for any input containing a null
	// byte (spec §4.C precondition, §8 property 4).
	BinarySentinel = "/* BINARY_FILE — skipped */\n"

	// MinifiedSentinel is returned verbatim when one of the first five
	// non-empty lines exceeds the minified-line threshold (§8 property 5).
	MinifiedSentinel = "/* MINIFIED_OR_GENERATED — skipped */\n"

	minifiedLineThreshold = 2000
	minifiedScanLines     = 5
)

// knownTextExtensions are formats the slicer truncates rather than
// skeletonizes when no language driver matches (spec §4.C: "known text
// format (documentation, config, data)").
var knownTextExtensions = map[string]bool{
	".md": true, ".markdown": true, ".txt": true, ".rst": true,
	".yaml": true, ".yml": true, ".json": true, ".toml": true,
	".ini": true, ".cfg": true, ".conf": true, ".xml": true,
	".csv": true, ".tsv": true, ".env": true, ".properties": true,
	".lock": true,
}

// IsKnownTextFormat reports whether ext (lowercase, with leading dot)
// belongs to the closed "documentation, config, data" vocabulary that
// the slicer truncates instead of skeletonizing.
func IsKnownTextFormat(ext string) bool {
	return knownTextExtensions[strings.ToLower(ext)]
}

// containsNullByte implements the binary-content precondition.
func containsNullByte(source []byte) bool {
	for _, b := range source {
		if b == 0 {
			return true
		}
	}
	return false
}

// looksMinifiedOrGenerated implements the minified-line precondition: any
// of the first five non-empty lines exceeds 2000 characters.
func looksMinifiedOrGenerated(source []byte) bool {
	lines := strings.Split(string(source), "\n")
	seen := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) > minifiedLineThreshold {
			return true
		}
		seen++
		if seen >= minifiedScanLines {
			break
		}
	}
	return false
}
