package driver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

func newJavaDriver() Driver {
	cl := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_java.Language())
		tables := &QueryTables{
			Skeleton: mustQuery(lang, `
				(method_declaration name: (identifier) @method.name) @method
				(class_declaration name: (identifier) @class.name) @class
				(interface_declaration name: (identifier) @interface.name) @interface
				(enum_declaration name: (identifier) @enum.name) @enum
			`),
			Prune: mustQuery(lang, `
				(method_declaration body: (block) @body)
				(constructor_declaration body: (constructor_body) @body)
			`),
			Imports:   mustQuery(lang, `(import_declaration) @import`),
			Exports:   nil,
			CallSites: mustQuery(lang, `(method_invocation name: (identifier) @callee) @call`),
		}
		return lang, tables
	})

	return &singleVariantDriver{
		baseDriver: baseDriver{
			name: "Java",
			exts: []string{".java"},
			exportedFn: func(_ string, _ SymbolKind) bool {
				return true // every declaration counts as exported; modifiers are not inspected
			},
		},
		lang: cl,
	}
}
