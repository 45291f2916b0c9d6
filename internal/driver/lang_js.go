package driver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

func newJavaScriptDriver() Driver {
	cl := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_javascript.Language())
		tables := &QueryTables{
			Skeleton: mustQuery(lang, `
				(function_declaration name: (identifier) @function.name) @function
				(generator_function_declaration name: (identifier) @function.name) @function
				(variable_declarator
					name: (identifier) @function.name
					value: [(arrow_function) (function_expression) (generator_function)]) @function
				(method_definition name: (property_identifier) @method.name) @method
				(class_declaration name: (identifier) @class.name) @class
			`),
			Prune: mustQuery(lang, `
				(function_declaration body: (statement_block) @body)
				(generator_function_declaration body: (statement_block) @body)
				(function_expression body: (statement_block) @body)
				(generator_function body: (statement_block) @body)
				(arrow_function body: (statement_block) @body)
				(method_definition body: (statement_block) @body)
			`),
			Imports: mustQuery(lang, `(import_statement) @import`),
			Exports: mustQuery(lang, `(export_statement declaration: (_) @export)`),
			CallSites: mustQuery(lang, `(call_expression function: (_) @callee) @call`),
		}
		return lang, tables
	})

	return &singleVariantDriver{
		baseDriver: baseDriver{
			name:       "JavaScript",
			exts:       []string{".js", ".jsx", ".mjs", ".cjs"},
			exportedFn: func(name string, _ SymbolKind) bool { return true }, // every declaration counts as exported; export_statement is not consulted
		},
		lang: cl,
	}
}
