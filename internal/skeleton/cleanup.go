package skeleton

import (
	"fmt"
	"regexp"
	"strings"
)

// cleanup runs the textual cleanup pipeline in the exact order spec §4.C
// requires: trailing whitespace, comment stripping, docstring stripping
// (indent-sensitive languages only), import collapse, left-trim (brace
// languages only), then blank-run collapse.
func cleanup(text string, indentSensitive bool) string {
	hadTrailingNewline := strings.HasSuffix(text, "\n")

	lines := strings.Split(text, "\n")
	lines = stripTrailingHorizontalWhitespace(lines)
	lines = stripComments(lines)
	if indentSensitive {
		lines = stripModuleDocstring(lines)
	}
	lines = collapseImports(lines)
	if !indentSensitive {
		lines = leftTrim(lines)
	}
	lines = collapseBlankRuns(lines)

	out := strings.Join(lines, "\n")
	if hadTrailingNewline && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if !hadTrailingNewline {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

func stripTrailingHorizontalWhitespace(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimRight(l, " \t\r")
	}
	return out
}

var shebangRe = regexp.MustCompile(`^#!`)

// preservedComment reports comments that never get stripped, even inside a would-be
// block comment, since they are the pipeline's own output or an explicit
// developer flag that must survive compaction.
func preservedComment(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "todo") ||
		strings.Contains(lower, "fixme") ||
		strings.Contains(text, "/* ... */") ||
		strings.Contains(text, "TRUNCATED")
}

// stripComments removes whole-line comments ("//" or "#" prefixed, after
// trimming) and C-style block comments, except ones matching
// preservedComment, and except shebang lines.
func stripComments(lines []string) []string {
	out := make([]string, 0, len(lines))
	inBlock := false
	blockStart := -1
	var blockBuf []string

	flushBlock := func() {
		joined := strings.Join(blockBuf, "\n")
		if preservedComment(joined) {
			out = append(out, blockBuf...)
		}
		blockBuf = nil
	}

	for i, l := range lines {
		if i == 0 && shebangRe.MatchString(l) {
			out = append(out, l)
			continue
		}
		trimmed := strings.TrimSpace(l)

		if inBlock {
			blockBuf = append(blockBuf, l)
			if idx := strings.Index(l, "*/"); idx >= 0 {
				inBlock = false
				flushBlock()
				blockStart = -1
			}
			continue
		}

		if strings.HasPrefix(trimmed, "/*") && !strings.Contains(l, "*/") {
			inBlock = true
			blockStart = i
			blockBuf = []string{l}
			continue
		}
		if strings.HasPrefix(trimmed, "/*") && strings.Contains(l, "*/") {
			if preservedComment(l) {
				out = append(out, l)
			}
			continue
		}
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			if preservedComment(l) {
				out = append(out, l)
			}
			continue
		}
		out = append(out, l)
	}
	if inBlock {
		// Unterminated block comment: keep what we buffered verbatim
		// rather than silently losing source text (never drop content on
		// a malformed comment, per §7's "never fatal" recovery policy).
		_ = blockStart
		out = append(out, blockBuf...)
	}
	return out
}

var tripleQuoteRe = regexp.MustCompile(`^\s*("""|''')`)

// stripModuleDocstring removes the module-level triple-quoted docstring of
// an indent-sensitive-language file, preserving a leading shebang.
func stripModuleDocstring(lines []string) []string {
	start := 0
	if len(lines) > 0 && shebangRe.MatchString(lines[0]) {
		start = 1
	}
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) || !tripleQuoteRe.MatchString(lines[start]) {
		return lines
	}
	quote := tripleQuoteRe.FindStringSubmatch(lines[start])[1]
	// Single-line docstring: """doc""" on one line.
	rest := strings.TrimSpace(lines[start])
	if strings.HasPrefix(rest, quote) && strings.HasSuffix(rest, quote) && len(rest) >= 2*len(quote) {
		if len(rest) > len(quote) {
			out := append([]string{}, lines[:start]...)
			out = append(out, lines[start+1:]...)
			return out
		}
	}
	end := start
	for end = start + 1; end < len(lines); end++ {
		if strings.Contains(lines[end], quote) {
			break
		}
	}
	if end >= len(lines) {
		return lines // unterminated, leave as-is
	}
	out := append([]string{}, lines[:start]...)
	out = append(out, lines[end+1:]...)
	return out
}

var importKeywords = []string{"use ", "import ", "from ", "using "}

// collapseImports removes every import-vocabulary line (and bracketed
// `import ( ... )` groups), replacing them with a single count marker at
// the top of the file, after an optional shebang.
func collapseImports(lines []string) []string {
	out := make([]string, 0, len(lines))
	removed := 0
	shebang := ""
	start := 0
	if len(lines) > 0 && shebangRe.MatchString(lines[0]) {
		shebang = lines[0]
		start = 1
	}

	i := start
	for i < len(lines) {
		l := lines[i]
		trimmed := strings.TrimSpace(l)

		if isImportLine(trimmed) {
			removed++
			i++
			continue
		}
		if strings.HasPrefix(trimmed, "import (") || strings.HasPrefix(trimmed, "import(") {
			removed++
			i++
			for i < len(lines) && !strings.Contains(lines[i], ")") {
				removed++
				i++
			}
			if i < len(lines) {
				removed++
				i++
			}
			continue
		}
		out = append(out, l)
		i++
	}

	var result []string
	if shebang != "" {
		result = append(result, shebang)
	}
	if removed > 0 {
		result = append(result, fmt.Sprintf("// ... (%d imports)", removed))
	}
	result = append(result, out...)
	return result
}

func isImportLine(trimmed string) bool {
	for _, kw := range importKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return true
		}
	}
	return false
}

func leftTrim(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimLeft(l, " \t")
	}
	return out
}

func collapseBlankRuns(lines []string) []string {
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return out
}
