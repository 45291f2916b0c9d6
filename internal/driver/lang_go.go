package driver

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

func newGoDriver() Driver {
	cl := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_go.Language())
		tables := &QueryTables{
			Skeleton: mustQuery(lang, `
				(function_declaration name: (identifier) @function.name) @function
				(method_declaration name: (field_identifier) @method.name) @method
				(type_spec name: (type_identifier) @struct.name type: (struct_type)) @struct
				(type_spec name: (type_identifier) @interface.name type: (interface_type)) @interface
				(type_spec name: (type_identifier) @type.name) @type
				(const_spec name: (identifier) @const.name) @const
			`),
			Prune: mustQuery(lang, `
				(function_declaration body: (block) @body)
				(method_declaration body: (block) @body)
				(func_literal body: (block) @body)
			`),
			Imports: mustQuery(lang, `(import_declaration) @import`),
			Exports: nil,
			CallSites: mustQuery(lang, `(call_expression function: (_) @callee) @call`),
		}
		return lang, tables
	})

	return &singleVariantDriver{
		baseDriver: baseDriver{
			name:       "Go",
			exts:       []string{".go"},
			exportedFn: exportedByUpperCase,
		},
		lang: cl,
	}
}

// singleVariantDriver is a Driver with exactly one grammar variant,
// covering every language except TypeScript (which must choose between the
// plain and the markup-embedded TSX grammar per spec §4.B).
type singleVariantDriver struct {
	baseDriver
	lang *compiledLang
}

func (d *singleVariantDriver) Language(_ string) (*tree_sitter.Language, *QueryTables) {
	return d.lang.get()
}
