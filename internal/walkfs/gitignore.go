package walkfs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// gitignoreParser parses one repo's .gitignore into a fast matcher, used by
// Walk to honor ignore-file conventions (spec §4.E precondition).
type gitignoreParser struct {
	patterns []gitignorePattern

	regexCache sync.Map
}

type gitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	patternType patternType
	compiled    *regexp.Regexp
	prefix      string
	suffix      string
}

type patternType int

const (
	patternExact patternType = iota
	patternPrefix
	patternSuffix
	patternWildcard
	patternComplex
)

func newGitignoreParser() *gitignoreParser {
	return &gitignoreParser{}
}

// loadGitignore reads rootPath/.gitignore, silently doing nothing if absent.
func (gp *gitignoreParser) loadGitignore(rootPath string) error {
	f, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.patterns = append(gp.patterns, gp.parsePattern(line))
	}
	return scanner.Err()
}

func (gp *gitignoreParser) parsePattern(line string) gitignorePattern {
	p := gitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}
	p.Pattern = line
	p.patternType, p.prefix, p.suffix, p.compiled = gp.analyzePattern(line)
	return p
}

func (gp *gitignoreParser) analyzePattern(pattern string) (patternType, string, string, *regexp.Regexp) {
	if !strings.ContainsAny(pattern, "*?[") {
		return patternExact, pattern, pattern, nil
	}
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "?") && !strings.Contains(pattern, "[") {
		if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
			return patternSuffix, "", pattern[1:], nil
		}
		if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
			return patternPrefix, pattern[:len(pattern)-1], "", nil
		}
	}
	regexPattern := globToRegex(pattern)
	if cached, ok := gp.regexCache.Load(regexPattern); ok {
		return patternComplex, "", "", cached.(*regexp.Regexp)
	}
	compiled, err := regexp.Compile(regexPattern)
	if err != nil {
		return patternWildcard, "", "", nil
	}
	gp.regexCache.Store(regexPattern, compiled)
	return patternComplex, "", "", compiled
}

func globToRegex(pattern string) string {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `.*`)
	regex = strings.ReplaceAll(regex, `\?`, `.`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	return "^" + regex + "$"
}

// shouldIgnore reports whether the slash-normalized relative path is ignored,
// applying negation in pattern-declaration order (last match wins).
func (gp *gitignoreParser) shouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	ignored := false
	for _, p := range gp.patterns {
		if gp.matchesPattern(p, path, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (gp *gitignoreParser) matchesPattern(p gitignorePattern, path string, isDir bool) bool {
	if p.Directory {
		if isDir {
			if gp.fastMatch(p, path) {
				return true
			}
			if strings.HasSuffix(p.Pattern, "/**") {
				base := strings.TrimSuffix(p.Pattern, "/**")
				if path == base || strings.HasPrefix(path, base+"/") {
					return true
				}
			}
			return false
		}
		return strings.HasPrefix(path, p.Pattern+"/") || gp.fastMatch(p, path)
	}

	if p.Absolute {
		return gp.fastMatch(p, path)
	}

	if gp.fastMatch(p, path) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := range parts {
		if gp.fastMatch(p, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func (gp *gitignoreParser) fastMatch(p gitignorePattern, path string) bool {
	switch p.patternType {
	case patternExact:
		return p.Pattern == path
	case patternPrefix:
		return strings.HasPrefix(path, p.prefix)
	case patternSuffix:
		return strings.HasSuffix(path, p.suffix)
	case patternComplex:
		return p.compiled != nil && p.compiled.MatchString(path)
	case patternWildcard:
		matched, _ := filepath.Match(p.Pattern, path)
		return matched
	default:
		return p.Pattern == path
	}
}
