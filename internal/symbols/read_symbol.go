package symbols

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/chiselmap/internal/driver"
	"github.com/standardbeagle/chiselmap/internal/skeleton"
)

const maxSymbolLines = 500
const maxCandidates = 30

// ReadSymbolResult is what ReadSymbol returns: either the found declaration
// or a list of near-miss candidates to help the caller retry.
type ReadSymbolResult struct {
	Found      bool
	Text       string
	Candidates []string
}

// ReadSymbol implements spec §4.E's read_symbol tool: parse path, collect
// named declaration candidates (plus Rust impl blocks), prefer an exact
// match then a case-insensitive one, and return the declaration's source
// slice prefixed by a one-line header naming kind, name, file, and the
// 1-based line range.
func ReadSymbol(reg *driver.Registry, path string, source []byte, name string) ReadSymbolResult {
	d := reg.DriverFor(path)
	if d == nil || !fastContains(source, name) {
		return ReadSymbolResult{Found: false}
	}

	candidates := skeleton.Symbols(reg, path, source)
	if d.Name() == "Rust" {
		candidates = append(candidates, rustImplSymbols(d, path, source)...)
	}

	var exact, ci []driver.Symbol
	lowerName := strings.ToLower(name)
	for _, c := range candidates {
		if c.Name == name {
			exact = append(exact, c)
		} else if strings.ToLower(c.Name) == lowerName {
			ci = append(ci, c)
		}
	}

	var chosen *driver.Symbol
	switch {
	case len(exact) > 0:
		chosen = &exact[0]
	case len(ci) > 0:
		chosen = &ci[0]
	}

	if chosen == nil {
		return ReadSymbolResult{Found: false, Candidates: candidateNames(candidates, name)}
	}
	return ReadSymbolResult{Found: true, Text: renderSymbol(path, source, *chosen)}
}

// rustImplSymbols resolves `impl Foo` / `impl Trait for Foo` blocks, which
// the ordinary skeleton-symbols query does not cover (spec §4.E).
func rustImplSymbols(d driver.Driver, path string, source []byte) []driver.Symbol {
	tree, _, err := driver.Parse(d, path, source)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil {
		return nil
	}
	lang, _ := d.Language(path)
	if lang == nil {
		return nil
	}
	q := driver.RustImplQuery(lang)
	matches := driver.RunQuery(q, root, source)

	out := make([]driver.Symbol, 0, len(matches))
	for _, m := range matches {
		_, node, ok := m.Primary()
		if !ok {
			continue
		}
		nameNode, ok := m.Find("impl.name")
		if !ok {
			continue
		}
		out = append(out, driver.Symbol{
			Name:      string(source[nameNode.StartByte():nameNode.EndByte()]),
			Kind:      driver.KindImpl,
			StartLine: int(node.StartPosition().Row),
			EndLine:   int(node.EndPosition().Row),
			StartByte: int(node.StartByte()),
			EndByte:   int(node.EndByte()),
			Exported:  true,
		})
	}
	return out
}

func candidateNames(candidates []driver.Symbol, target string) []string {
	type scored struct {
		name string
		dist float32
	}
	var scoredList []scored
	for _, c := range candidates {
		sim, err := edlib.StringsSimilarity(target, c.Name, edlib.Levenshtein)
		if err != nil {
			continue
		}
		scoredList = append(scoredList, scored{name: c.Name, dist: sim})
	}
	sort.Slice(scoredList, func(i, j int) bool { return scoredList[i].dist > scoredList[j].dist })

	seen := make(map[string]bool)
	var out []string
	for _, s := range scoredList {
		if seen[s.name] {
			continue
		}
		seen[s.name] = true
		out = append(out, s.name)
		if len(out) >= maxCandidates {
			break
		}
	}
	return out
}

func renderSymbol(path string, source []byte, sym driver.Symbol) string {
	header := fmt.Sprintf("// %s %s  %s:%d-%d\n", sym.Kind, sym.Name, path, sym.StartLine+1, sym.EndLine+1)
	body := string(source[sym.StartByte:sym.EndByte])
	lines := strings.Split(body, "\n")
	truncated := false
	if len(lines) > maxSymbolLines {
		lines = lines[:maxSymbolLines]
		truncated = true
	}
	out := header + strings.Join(lines, "\n")
	if truncated {
		out += "\n// ... (truncated, symbol exceeds 500 lines)\n"
	}
	return out
}
