package skeleton

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/chiselmap/internal/driver"
)

// pruneRangesFor runs tables.Prune over root and turns every @body capture
// into a driver.PruneRange, choosing the replacement text per the driver's
// BodyStyle (spec §4.B).
func pruneRangesFor(d driver.Driver, tables *driver.QueryTables, root *tree_sitter.Node, source []byte) []driver.PruneRange {
	if d.BodyStyle() == driver.BodyStyleNone || tables == nil {
		return nil
	}
	matches := driver.RunQuery(tables.Prune, root, source)
	ranges := make([]driver.PruneRange, 0, len(matches))
	for _, m := range matches {
		body, ok := m.Find("body")
		if !ok {
			continue
		}
		start := int(body.StartByte())
		end := int(body.EndByte())
		if start >= end {
			continue
		}
		ranges = append(ranges, driver.PruneRange{
			Start:       start,
			End:         end,
			Replacement: replacementFor(d.BodyStyle(), source, start),
		})
	}
	return ranges
}

func replacementFor(style driver.BodyStyle, source []byte, bodyStart int) string {
	if style == driver.BodyStyleBrace {
		return driver.BraceBodyReplacement
	}
	// Indentation-sensitive: emit "<indent>...\n" using the whitespace
	// prefix of the line the body's opening byte sits on.
	lineStart := bodyStart
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	indentEnd := lineStart
	for indentEnd < len(source) && (source[indentEnd] == ' ' || source[indentEnd] == '\t') {
		indentEnd++
	}
	indent := string(source[lineStart:indentEnd])
	// The line scanned below is the same line as above (the one holding
	// the body's first byte), so bodyIndent always equals indent; the
	// header line's indentation is never read separately.
	bodyIndent := indent
	if bodyStart < len(source) {
		bi := bodyStart
		for bi > 0 && source[bi-1] != '\n' {
			bi--
		}
		end := bi
		for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
			end++
		}
		if end > bi {
			bodyIndent = string(source[bi:end])
		}
	}
	return bodyIndent + "...\n"
}

// symbolsFor runs tables.Skeleton over root and returns every declared
// symbol in file order (spec §3 Symbol, §5 ordering invariant).
func symbolsFor(d driver.Driver, tables *driver.QueryTables, root *tree_sitter.Node, source []byte) []driver.Symbol {
	if tables == nil {
		return nil
	}
	matches := driver.RunQuery(tables.Skeleton, root, source)
	out := make([]driver.Symbol, 0, len(matches))
	for _, m := range matches {
		kind, node, ok := m.Primary()
		if !ok {
			continue
		}
		nameNode, ok := m.Find(kind + ".name")
		var name string
		if ok {
			name = string(source[nameNode.StartByte():nameNode.EndByte()])
		}
		if name == "" {
			continue
		}
		sym := driver.Symbol{
			Name:      name,
			Kind:      driver.SymbolKind(kind),
			StartLine: int(node.StartPosition().Row),
			EndLine:   int(node.EndPosition().Row),
			StartByte: int(node.StartByte()),
			EndByte:   int(node.EndByte()),
			Exported:  d.IsExported(name, driver.SymbolKind(kind)),
		}
		if d.Name() == "Rust" {
			// Rust items are public only with a leading visibility_modifier
			// child (`pub`, `pub(crate)`, ...).
			first := node.Child(0)
			sym.Exported = first != nil && first.Kind() == "visibility_modifier"
		}
		if sigBearing(driver.SymbolKind(kind)) {
			sym.HasSig = true
			sym.Signature = firstLine(source, int(node.StartByte()), int(node.EndByte()))
		}
		out = append(out, sym)
	}
	return out
}

// sigBearing decides which kinds carry a first-line signature: kinds whose
// declaration has a non-trivial header distinct from a bare name (spec §3:
// "signature is present iff the driver marks the kind as signature-bearing").
func sigBearing(kind driver.SymbolKind) bool {
	switch kind {
	case driver.KindConst, driver.KindVariable, driver.KindType:
		return false
	default:
		return true
	}
}

func firstLine(source []byte, start, end int) string {
	if start >= len(source) {
		return ""
	}
	if end > len(source) {
		end = len(source)
	}
	slice := source[start:end]
	for i, b := range slice {
		if b == '\n' {
			return string(slice[:i])
		}
	}
	return string(slice)
}
