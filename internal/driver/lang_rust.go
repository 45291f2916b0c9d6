package driver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

func newRustDriver() Driver {
	cl := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_rust.Language())
		tables := &QueryTables{
			Skeleton: mustQuery(lang, `
				(function_item name: (identifier) @function.name) @function
				(struct_item name: (type_identifier) @struct.name) @struct
				(enum_item name: (type_identifier) @enum.name) @enum
				(trait_item name: (type_identifier) @trait.name) @trait
				(const_item name: (identifier) @const.name) @const
			`),
			Prune: mustQuery(lang, `
				(function_item body: (block) @body)
			`),
			Imports:   mustQuery(lang, `(use_declaration) @import`),
			Exports:   nil,
			CallSites: mustQuery(lang, `(call_expression function: (_) @callee) @call`),
		}
		return lang, tables
	})

	return &singleVariantDriver{
		baseDriver: baseDriver{
			name:       "Rust",
			exts:       []string{".rs"},
			exportedFn: func(_ string, _ SymbolKind) bool { return true }, // `pub` is checked on the node in skeleton's symbolsFor
		},
		lang: cl,
	}
}

// RustImplQuery returns the Rust-only "implementation blocks" query used by
// read_symbol (spec §4.E) to resolve `impl Foo` / `impl Trait for Foo`
// blocks, which the ordinary skeleton-symbols query does not cover.
func RustImplQuery(lang *tree_sitter.Language) *tree_sitter.Query {
	return mustQuery(lang, `
		(impl_item type: (type_identifier) @impl.name) @impl
		(impl_item trait: (type_identifier) @impl.trait type: (type_identifier) @impl.name) @impl
	`)
}
