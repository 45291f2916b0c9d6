package symbols

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/chiselmap/internal/driver"
	"github.com/standardbeagle/chiselmap/internal/walkfs"
)

// Usage is one identifier hit, classified and rendered with a two-line
// context window.
type Usage struct {
	RelPath   string
	Line      int // 1-based
	Category  string
	Context   []string // up to two lines, the hit line plus one neighbor
}

// FindUsages implements spec §4.E's find_usages tool: walk target_dir once,
// for each eligible file prune comment/string subtrees, collect identifier
// hits matching name, classify each by its ancestor shape, and return them
// grouped and sorted.
func FindUsages(ctx context.Context, reg *driver.Registry, targetDir, name string) map[string][]Usage {
	entries, _ := walkfs.Walk(targetDir, walkfs.Options{})

	grouped := make(map[string][]Usage)
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return grouped
		default:
		}
		d := reg.DriverFor(e.AbsPath)
		if d == nil {
			continue
		}
		source, err := walkfs.ReadFile(e.AbsPath, 0)
		if err != nil || !fastContains(source, name) {
			continue
		}
		tree, _, err := driver.Parse(d, e.AbsPath, source)
		if err != nil || tree == nil {
			continue
		}
		root := tree.RootNode()
		if root == nil {
			tree.Close()
			continue
		}
		hits := findIdentifiers(root, source, name)
		lines := strings.Split(string(source), "\n")
		for _, h := range hits {
			cat := classify(h.Node)
			u := Usage{
				RelPath:  e.RelPath,
				Line:     h.StartLine + 1,
				Category: cat,
				Context:  contextWindow(lines, h.StartLine),
			}
			grouped[cat] = append(grouped[cat], u)
		}
		tree.Close()
	}

	for cat := range grouped {
		sort.Slice(grouped[cat], func(i, j int) bool {
			if grouped[cat][i].RelPath != grouped[cat][j].RelPath {
				return grouped[cat][i].RelPath < grouped[cat][j].RelPath
			}
			return grouped[cat][i].Line < grouped[cat][j].Line
		})
	}
	return grouped
}

func contextWindow(lines []string, lineIdx int) []string {
	out := []string{lines[lineIdx]}
	if lineIdx+1 < len(lines) {
		out = append(out, lines[lineIdx+1])
	}
	return out
}

// RenderUsages formats grouped usages as the Markdown-ish text the RPC
// dispatcher ships back in a tool reply.
func RenderUsages(grouped map[string][]Usage) string {
	order := []string{"Calls", "Type Refs", "Field Inits", "Other"}
	var b strings.Builder
	total := 0
	for _, cat := range order {
		us := grouped[cat]
		if len(us) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s (%d)\n", cat, len(us))
		for _, u := range us {
			fmt.Fprintf(&b, "%s:%d\n", u.RelPath, u.Line)
			for _, l := range u.Context {
				fmt.Fprintf(&b, "    %s\n", l)
			}
		}
		total += len(us)
	}
	if total == 0 {
		return "no usages found\n"
	}
	return b.String()
}
