package driver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func newPythonDriver() Driver {
	cl := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
		tables := &QueryTables{
			Skeleton: mustQuery(lang, `
				(function_definition name: (identifier) @function.name) @function
				(class_definition name: (identifier) @class.name) @class
			`),
			Prune: mustQuery(lang, `
				(function_definition body: (block) @body)
			`),
			Imports: mustQuery(lang, `
				[(import_statement) (import_from_statement)] @import
			`),
			Exports:   nil,
			CallSites: mustQuery(lang, `(call function: (_) @callee) @call`),
		}
		return lang, tables
	})

	return &singleVariantDriver{
		baseDriver: baseDriver{
			name:       "Python",
			exts:       []string{".py", ".pyi"},
			exportedFn: exportedByLeadingUnderscore,
			bodyStyle:  BodyStyleIndent,
		},
		lang: cl,
	}
}
