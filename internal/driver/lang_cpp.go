package driver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

func newCppDriver() Driver {
	cl := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
		tables := &QueryTables{
			Skeleton: mustQuery(lang, `
				(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
				(function_definition declarator: (function_declarator declarator: (field_identifier) @method.name)) @method
				(class_specifier name: (type_identifier) @class.name) @class
				(struct_specifier name: (type_identifier) @struct.name) @struct
				(enum_specifier name: (type_identifier) @enum.name) @enum
			`),
			Prune: mustQuery(lang, `
				(function_definition body: (compound_statement) @body)
			`),
			Imports:   mustQuery(lang, `(preproc_include) @import`),
			Exports:   nil,
			CallSites: mustQuery(lang, `(call_expression function: (_) @callee) @call`),
		}
		return lang, tables
	})

	return &singleVariantDriver{
		baseDriver: baseDriver{
			name:       "C++",
			exts:       []string{".cpp", ".cc", ".cxx", ".h", ".hpp"},
			exportedFn: func(_ string, _ SymbolKind) bool { return true },
		},
		lang: cl,
	}
}
