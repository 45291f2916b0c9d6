package driver

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// compiledLang lazily compiles a tree-sitter language + its query tables
// exactly once; every Driver.Language call after the first returns the same
// cached *tree_sitter.Language and *QueryTables, matching the "constructed
// once, never mutated" invariant for drivers in spec §3.
type compiledLang struct {
	once    sync.Once
	lang    *tree_sitter.Language
	tables  *QueryTables
	loadFn  func() (*tree_sitter.Language, *QueryTables)
}

func newCompiledLang(loadFn func() (*tree_sitter.Language, *QueryTables)) *compiledLang {
	return &compiledLang{loadFn: loadFn}
}

func (c *compiledLang) get() (*tree_sitter.Language, *QueryTables) {
	c.once.Do(func() {
		c.lang, c.tables = c.loadFn()
	})
	return c.lang, c.tables
}

// mustQuery compiles src against lang, returning nil on failure rather than
// panicking. The compilation error is neither returned nor logged; the
// affected query table is simply absent (nil).
func mustQuery(lang *tree_sitter.Language, src string) *tree_sitter.Query {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	q, err := tree_sitter.NewQuery(lang, src)
	if err != nil || q == nil {
		return nil
	}
	return q
}

// baseDriver implements the path-matching portion of Driver; concrete
// language drivers embed it and supply Language().
type baseDriver struct {
	name       string
	exts       []string
	handlesFn  func(path string) bool
	exportedFn func(name string, kind SymbolKind) bool
	bodyStyle  BodyStyle
}

func (b *baseDriver) Name() string         { return b.name }
func (b *baseDriver) Extensions() []string { return b.exts }
func (b *baseDriver) BodyStyle() BodyStyle { return b.bodyStyle }

func (b *baseDriver) Handles(path string) bool {
	if b.handlesFn == nil {
		return false
	}
	return b.handlesFn(path)
}

func (b *baseDriver) IsExported(name string, kind SymbolKind) bool {
	if b.exportedFn == nil {
		return true
	}
	return b.exportedFn(name, kind)
}

// exportedByUpperCase implements the Go-style convention: first rune
// uppercase means exported.
func exportedByUpperCase(name string, _ SymbolKind) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// exportedByLeadingUnderscore implements the Python-style convention: no
// leading underscore means public.
func exportedByLeadingUnderscore(name string, _ SymbolKind) bool {
	return !strings.HasPrefix(name, "_")
}

// BraceBodyReplacement is the literal placeholder for brace-language
// function/method bodies (spec §4.B).
const BraceBodyReplacement = "{ /* ... */ }"
