package driver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

func newCSharpDriver() Driver {
	cl := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_csharp.Language())
		tables := &QueryTables{
			Skeleton: mustQuery(lang, `
				(method_declaration name: (identifier) @method.name) @method
				(class_declaration name: (identifier) @class.name) @class
				(interface_declaration name: (identifier) @interface.name) @interface
				(struct_declaration name: (identifier) @struct.name) @struct
				(enum_declaration name: (identifier) @enum.name) @enum
			`),
			Prune: mustQuery(lang, `
				(method_declaration body: (block) @body)
				(constructor_declaration body: (block) @body)
			`),
			Imports:   mustQuery(lang, `(using_directive) @import`),
			Exports:   nil,
			CallSites: mustQuery(lang, `(invocation_expression function: (_) @callee) @call`),
		}
		return lang, tables
	})

	return &singleVariantDriver{
		baseDriver: baseDriver{
			name: "C#",
			exts: []string{".cs"},
			// Every declaration counts as exported; the `public` modifier
			// is not inspected.
			exportedFn: func(_ string, _ SymbolKind) bool { return true },
		},
		lang: cl,
	}
}
