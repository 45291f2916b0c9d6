package driver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

func newPHPDriver() Driver {
	cl := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
		tables := &QueryTables{
			Skeleton: mustQuery(lang, `
				(function_definition name: (name) @function.name) @function
				(method_declaration name: (name) @method.name) @method
				(class_declaration name: (name) @class.name) @class
				(interface_declaration name: (name) @interface.name) @interface
			`),
			Prune: mustQuery(lang, `
				(function_definition body: (compound_statement) @body)
				(method_declaration body: (compound_statement) @body)
			`),
			Imports:   mustQuery(lang, `(namespace_use_declaration) @import`),
			Exports:   nil,
			CallSites: mustQuery(lang, `(function_call_expression function: (_) @callee) @call`),
		}
		return lang, tables
	})

	return &singleVariantDriver{
		baseDriver: baseDriver{
			name: "PHP",
			exts: []string{".php"},
			// Every declaration counts as exported, class members
			// included; `public`/`protected`/`private` are not inspected.
			exportedFn: func(_ string, _ SymbolKind) bool { return true },
		},
		lang: cl,
	}
}
