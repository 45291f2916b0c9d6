package skeleton

import (
	"regexp"
	"strings"
)

const maxFallbackLines = 600

var fallbackKeywordRe = regexp.MustCompile(
	`^\s*(public\s+|private\s+|protected\s+|static\s+)*(function|class|def|func|struct|interface|enum)\b`)
var fallbackTodoRe = regexp.MustCompile(`(?i)(TODO|FIXME)`)

// LooksLikeCode is a cheap heuristic distinguishing source-shaped text from
// prose: it looks for at least one line matching the fallback's structural
// vocabulary within the first 200 lines.
func LooksLikeCode(source []byte) bool {
	lines := strings.Split(string(source), "\n")
	limit := len(lines)
	if limit > 200 {
		limit = 200
	}
	for i := 0; i < limit; i++ {
		if fallbackKeywordRe.MatchString(lines[i]) {
			return true
		}
	}
	return false
}

// UniversalFallback implements spec §4.D: a regex pass over unsupported-
// language source that keeps lines beginning with a closed vocabulary of
// definition keywords, plus TODO/FIXME lines, collapsing gaps to "...".
func UniversalFallback(source []byte) string {
	lines := strings.Split(string(source), "\n")

	var kept []string
	gapOpen := false
	for _, l := range lines {
		if fallbackKeywordRe.MatchString(l) || fallbackTodoRe.MatchString(l) {
			kept = append(kept, l)
			gapOpen = false
		} else if !gapOpen {
			kept = append(kept, "...")
			gapOpen = true
		}
		if len(kept) >= maxFallbackLines {
			break
		}
	}

	if len(kept) == 0 || allGaps(kept) {
		return truncatedHeader(lines)
	}
	if len(kept) > maxFallbackLines {
		kept = kept[:maxFallbackLines]
	}
	return strings.Join(kept, "\n") + "\n"
}

func allGaps(lines []string) bool {
	for _, l := range lines {
		if l != "..." {
			return false
		}
	}
	return true
}

func truncatedHeader(lines []string) string {
	n := 50
	if n > len(lines) {
		n = len(lines)
	}
	var b strings.Builder
	b.WriteString("// TRUNCATED — no structural lines found\n")
	for i := 0; i < n; i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	if len(lines) > n {
		b.WriteString("...\n")
	}
	return b.String()
}
