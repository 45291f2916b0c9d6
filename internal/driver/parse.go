package driver

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parse drives d's grammar over source and returns the resulting tree. A
// fresh *tree_sitter.Parser is created per call: trees are never shared
// across requests (spec §9 "syntax tree ownership"), so pooling parsers
// would only save the one-time SetLanguage cost, not worth the added
// bookkeeping at this scale.
func Parse(d Driver, path string, source []byte) (*tree_sitter.Tree, *QueryTables, error) {
	lang, tables := d.Language(path)
	if lang == nil {
		return nil, nil, fmt.Errorf("driver %s: no grammar available for %s", d.Name(), path)
	}
	p := tree_sitter.NewParser()
	defer p.Close()
	if err := p.SetLanguage(lang); err != nil {
		return nil, nil, fmt.Errorf("driver %s: set language: %w", d.Name(), err)
	}
	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, nil, fmt.Errorf("driver %s: parse failed for %s", d.Name(), path)
	}
	return tree, tables, nil
}
