package symbols

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/chiselmap/internal/driver"
)

const checklistMaxFiles = 50
const checklistMaxChars = 8000

// languageFamilyRank orders files by language family for propagation
// checklists: interface-definition languages first, then systems languages,
// then scripting, then everything else (spec §4.E).
var languageFamilyRank = map[string]int{
	"TypeScript": 0,
	"Go":         1, "Rust": 1, "C#": 1, "C++": 1, "Java": 1,
	"JavaScript": 2, "Python": 2, "PHP": 2,
}

func familyRank(driverName string) int {
	if r, ok := languageFamilyRank[driverName]; ok {
		return r
	}
	return 3
}

// PropagationChecklist implements spec §4.E's propagation_checklist tool:
// the same usage search as find_usages, aggregated per file and grouped by
// language family, rendered as a capped Markdown checklist.
func PropagationChecklist(ctx context.Context, reg *driver.Registry, targetDir, name string) string {
	grouped := FindUsages(ctx, reg, targetDir, name)

	type fileHits struct {
		relPath string
		driver  string
		lines   []int
	}
	byFile := make(map[string]*fileHits)
	var order []string
	for _, usages := range grouped {
		for _, u := range usages {
			fh, ok := byFile[u.RelPath]
			if !ok {
				fh = &fileHits{relPath: u.RelPath}
				byFile[u.RelPath] = fh
				order = append(order, u.RelPath)
			}
			fh.lines = append(fh.lines, u.Line)
		}
	}
	for _, rel := range order {
		d := reg.DriverFor(rel)
		if d != nil {
			byFile[rel].driver = d.Name()
		}
		sort.Ints(byFile[rel].lines)
	}

	sort.Slice(order, func(i, j int) bool {
		fi, fj := byFile[order[i]], byFile[order[j]]
		ri, rj := familyRank(fi.driver), familyRank(fj.driver)
		if ri != rj {
			return ri < rj
		}
		return fi.relPath < fj.relPath
	})

	if len(order) > checklistMaxFiles {
		order = order[:checklistMaxFiles]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Propagation checklist: %s\n\n", name)
	for _, rel := range order {
		fh := byFile[rel]
		lineStrs := make([]string, len(fh.lines))
		for i, l := range fh.lines {
			lineStrs[i] = fmt.Sprintf("%d", l)
		}
		fmt.Fprintf(&b, "- [ ] %s (lines %s)\n", rel, strings.Join(lineStrs, ", "))
	}

	return truncateUTF8Safe(b.String(), checklistMaxChars)
}
