// Package checkpoint implements the symbol checkpoint store (spec §4.J):
// point-in-time snapshots of a single symbol's source, saved under
// {output_dir}/checkpoints/{namespace}/{tag__symbol__ms}.json.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/chiselmap/internal/driver"
	"github.com/standardbeagle/chiselmap/internal/symbols"
)

// LiveTag is the magic second tag Compare recognizes: instead of loading
// a saved record, it re-extracts the symbol's current on-disk text.
const LiveTag = "__live__"

const defaultNamespace = "default"

// Record is one persisted checkpoint.
type Record struct {
	Symbol       string `json:"symbol"`
	Tag          string `json:"tag"`
	Namespace    string `json:"namespace"`
	Kind         string `json:"kind"`
	SourcePath   string `json:"source_path"`
	CapturedAtMs int64  `json:"captured_at_ms"`
	Content      string `json:"content"`
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

func sanitize(name string) string {
	s := unsafeNameChars.ReplaceAllString(name, "_")
	if s == "" {
		s = "symbol"
	}
	return s
}

// namespaceDir resolves the on-disk directory for a namespace, defaulting
// when the caller passes an empty string.
func namespaceDir(outputDir, namespace string) string {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return filepath.Join(outputDir, "checkpoints", namespace)
}

// fileName builds the deterministic "tag__symbol__ms.json" filename spec
// §4.J names, with a short content-independent hash appended to the
// sanitized symbol segment so two differently-named-but-colliding
// symbols (after sanitization) never clobber each other.
func fileName(tag, symbol string, nowMs int64) string {
	hash := xxhash.Sum64String(symbol)
	safeSymbol := fmt.Sprintf("%s_%08x", sanitize(symbol), uint32(hash))
	return fmt.Sprintf("%s__%s__%d.json", sanitize(tag), safeSymbol, nowMs)
}

// Save extracts symbolName from source via the read_symbol logic (spec
// §4.E) and writes a new checkpoint record atomically.
func Save(reg *driver.Registry, outputDir, sourcePath string, source []byte, symbolName, tag, namespace string, nowMs int64) (string, error) {
	res := symbols.ReadSymbol(reg, sourcePath, source, symbolName)
	if !res.Found {
		return "", fmt.Errorf("checkpoint: symbol %q not found in %s", symbolName, sourcePath)
	}

	dir := namespaceDir(outputDir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("checkpoint: creating namespace dir: %w", err)
	}

	rec := Record{
		Symbol:       symbolName,
		Tag:          tag,
		Namespace:    namespace,
		SourcePath:   sourcePath,
		CapturedAtMs: nowMs,
		Content:      res.Text,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}

	name := fileName(tag, symbolName, nowMs)
	finalPath := filepath.Join(dir, name)
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("checkpoint: writing: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("checkpoint: renaming: %w", err)
	}
	return finalPath, nil
}

// parseTag recovers the sanitized tag segment from a checkpoint filename,
// splitting on the first "__" separator written by fileName.
func parseTag(base string) string {
	parts := strings.SplitN(strings.TrimSuffix(base, ".json"), "__", 2)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func namespacesToScan(outputDir, namespace string) ([]string, error) {
	root := filepath.Join(outputDir, "checkpoints")
	if namespace != "" {
		return []string{namespace}, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// List scans one namespace (or all, when empty), groups checkpoints by
// tag, and renders a Markdown listing. Malformed checkpoint files are
// skipped, never fatal (spec §7).
func List(outputDir, namespace string) (string, error) {
	namespaces, err := namespacesToScan(outputDir, namespace)
	if err != nil {
		return "", err
	}

	type grouped struct {
		namespace string
		tag       string
		symbol    string
		ms        int64
	}
	var all []grouped

	for _, ns := range namespaces {
		dir := namespaceDir(outputDir, ns)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			var rec Record
			if json.Unmarshal(data, &rec) != nil {
				continue
			}
			all = append(all, grouped{namespace: ns, tag: rec.Tag, symbol: rec.Symbol, ms: rec.CapturedAtMs})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].tag != all[j].tag {
			return all[i].tag < all[j].tag
		}
		return all[i].symbol < all[j].symbol
	})

	var b strings.Builder
	b.WriteString("# Checkpoints\n\n")
	currentTag := ""
	for _, g := range all {
		if g.tag != currentTag {
			fmt.Fprintf(&b, "\n## %s\n\n", g.tag)
			currentTag = g.tag
		}
		fmt.Fprintf(&b, "- %s (namespace %s, captured %s)\n", g.symbol, g.namespace, strconv.FormatInt(g.ms, 10))
	}
	return b.String(), nil
}

// DeleteFilters narrows which checkpoints Delete removes. Empty filters
// with a namespace set purges that namespace's entire directory.
type DeleteFilters struct {
	Tag    string
	Symbol string
}

// Delete removes checkpoints matching filters within namespace (or every
// namespace when empty). Empty filters and empty namespace together is
// a no-op guard against an accidental full wipe; pass an explicit
// namespace to purge everything in it.
func Delete(outputDir string, filters DeleteFilters, namespace string) (int, error) {
	if filters.Tag == "" && filters.Symbol == "" && namespace == "" {
		return 0, nil
	}
	if filters.Tag == "" && filters.Symbol == "" && namespace != "" {
		dir := namespaceDir(outputDir, namespace)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return 0, nil
			}
			return 0, err
		}
		count := len(entries)
		if err := os.RemoveAll(dir); err != nil {
			return 0, err
		}
		return count, nil
	}

	namespaces, err := namespacesToScan(outputDir, namespace)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, ns := range namespaces {
		dir := namespaceDir(outputDir, ns)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			var rec Record
			if json.Unmarshal(data, &rec) != nil {
				continue
			}
			if filters.Tag != "" && rec.Tag != filters.Tag {
				continue
			}
			if filters.Symbol != "" && rec.Symbol != filters.Symbol {
				continue
			}
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func loadLatestByTag(outputDir, namespace, symbol, tag string) (*Record, error) {
	namespaces, err := namespacesToScan(outputDir, namespace)
	if err != nil {
		return nil, err
	}
	var best *Record
	for _, ns := range namespaces {
		dir := namespaceDir(outputDir, ns)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			// Filenames carry sanitize(tag); the record's Tag is checked
			// exactly below.
			if parseTag(e.Name()) != parseTag(sanitize(tag)) {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			var rec Record
			if json.Unmarshal(data, &rec) != nil {
				continue
			}
			if rec.Symbol != symbol || rec.Tag != tag {
				continue
			}
			if best == nil || rec.CapturedAtMs > best.CapturedAtMs {
				r := rec
				best = &r
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("checkpoint: no record for symbol %q tag %q", symbol, tag)
	}
	return best, nil
}

func fence(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".rs":
		return "rust"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".java":
		return "java"
	case ".cs":
		return "csharp"
	case ".cpp", ".cc", ".hpp", ".h":
		return "cpp"
	case ".php":
		return "php"
	default:
		return "go"
	}
}

// Compare loads (or live-extracts) two tagged versions of symbol and
// renders them as two fenced code blocks. tagA or tagB equal to LiveTag
// means "the current on-disk version" instead of a saved record — for
// that side, reg/livePath/liveSource must be supplied.
func Compare(reg *driver.Registry, outputDir, namespace, symbolName, tagA, tagB, livePath string, liveSource []byte) (string, error) {
	contentA, pathA, err := resolveSide(reg, outputDir, namespace, symbolName, tagA, livePath, liveSource)
	if err != nil {
		return "", err
	}
	contentB, pathB, err := resolveSide(reg, outputDir, namespace, symbolName, tagB, livePath, liveSource)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s vs %s\n\n", symbolName, tagA, tagB)
	fmt.Fprintf(&b, "## %s\n```%s\n%s\n```\n\n", tagA, fence(pathA), contentA)
	fmt.Fprintf(&b, "## %s\n```%s\n%s\n```\n", tagB, fence(pathB), contentB)
	return b.String(), nil
}

func resolveSide(reg *driver.Registry, outputDir, namespace, symbolName, tag, livePath string, liveSource []byte) (content, path string, err error) {
	if tag == LiveTag {
		res := symbols.ReadSymbol(reg, livePath, liveSource, symbolName)
		if !res.Found {
			return "", "", fmt.Errorf("checkpoint: live symbol %q not found", symbolName)
		}
		return res.Text, livePath, nil
	}
	rec, err := loadLatestByTag(outputDir, namespace, symbolName, tag)
	if err != nil {
		return "", "", err
	}
	return rec.Content, rec.SourcePath, nil
}
