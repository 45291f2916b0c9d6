package skeleton

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/chiselmap/internal/driver"
)

// Status classifies how Skeletonize handled a file, so the slicer (§4.H)
// knows whether to embed the returned text or fall back to truncation.
type Status int

const (
	StatusOK Status = iota
	StatusUnsupported
)

// Result is what Skeletonize returns: the text plus how it got there.
type Result struct {
	Text   string
	Status Status
}

// Skeletonize implements spec §4.C: given a file path and its source text,
// produce a syntax-aware, body-pruned, comment/import-collapsed rendering,
// or a sentinel/unsupported signal per the documented preconditions.
func Skeletonize(reg *driver.Registry, path string, source []byte) Result {
	if containsNullByte(source) {
		return Result{Text: BinarySentinel, Status: StatusOK}
	}
	if looksMinifiedOrGenerated(source) {
		return Result{Text: MinifiedSentinel, Status: StatusOK}
	}

	d := reg.DriverFor(path)
	if d == nil {
		ext := strings.ToLower(filepath.Ext(path))
		if IsKnownTextFormat(ext) {
			return Result{Status: StatusUnsupported}
		}
		if LooksLikeCode(source) {
			return Result{Text: UniversalFallback(source), Status: StatusOK}
		}
		return Result{Status: StatusUnsupported}
	}

	tree, tables, err := driver.Parse(d, path, source)
	if err != nil || tree == nil {
		return Result{Status: StatusUnsupported}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return Result{Status: StatusUnsupported}
	}

	ranges := pruneRangesFor(d, tables, root, source)
	ranges = resolveOverlaps(ranges)
	pruned := applyRanges(source, ranges)

	text := cleanup(string(pruned), d.BodyStyle() == driver.BodyStyleIndent)
	return Result{Text: text, Status: StatusOK}
}

// Symbols returns the declared symbols (spec §4.B skeleton-symbols query)
// for path, used by the semantic toolkit (§4.E) and by Skeletonize's
// idempotence/identifier-preservation guarantees (§8 properties 1-2).
func Symbols(reg *driver.Registry, path string, source []byte) []driver.Symbol {
	d := reg.DriverFor(path)
	if d == nil {
		return nil
	}
	tree, tables, err := driver.Parse(d, path, source)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil {
		return nil
	}
	return symbolsFor(d, tables, root, source)
}
