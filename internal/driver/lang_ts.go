package driver

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

const tsQueries = `
	(function_declaration name: (identifier) @function.name) @function
	(variable_declarator
		name: (identifier) @function.name
		value: [(arrow_function) (function_expression)]) @function
	(method_definition name: (property_identifier) @method.name) @method
	(class_declaration name: (type_identifier) @class.name) @class
	(interface_declaration name: (type_identifier) @interface.name) @interface
	(enum_declaration name: (identifier) @enum.name) @enum
	(type_alias_declaration name: (type_identifier) @type.name) @type
`

const tsPrune = `
	(function_declaration body: (statement_block) @body)
	(function_expression body: (statement_block) @body)
	(arrow_function body: (statement_block) @body)
	(method_definition body: (statement_block) @body)
`

// newTypeScriptDriver demonstrates the spec's "grammar_for(path)" contract:
// .tsx files parse with the markup-embedded grammar, everything else with
// the plain one, but both variants share the same query source text.
func newTypeScriptDriver() Driver {
	plain := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		return lang, buildTSTables(lang)
	})
	tsx := newCompiledLang(func() (*tree_sitter.Language, *QueryTables) {
		lang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		return lang, buildTSTables(lang)
	})

	return &tsVariantDriver{
		baseDriver: baseDriver{
			name: "TypeScript",
			exts: []string{".ts", ".tsx", ".mts", ".cts"},
			handlesFn: func(path string) bool {
				// Declaration-only files (.d.ts) have no executable bodies:
				// the prune query legitimately yields zero ranges for them,
				// which is already correct behavior, so no special casing
				// beyond recognizing the extension is needed here.
				return strings.HasSuffix(path, ".d.ts")
			},
			exportedFn: func(name string, _ SymbolKind) bool { return true },
		},
		plain: plain,
		tsx:   tsx,
	}
}

func buildTSTables(lang *tree_sitter.Language) *QueryTables {
	return &QueryTables{
		Skeleton:  mustQuery(lang, tsQueries),
		Prune:     mustQuery(lang, tsPrune),
		Imports:   mustQuery(lang, `(import_statement) @import`),
		Exports:   mustQuery(lang, `(export_statement declaration: (_) @export)`),
		CallSites: mustQuery(lang, `(call_expression function: (_) @callee) @call`),
	}
}

type tsVariantDriver struct {
	baseDriver
	plain *compiledLang
	tsx   *compiledLang
}

func (d *tsVariantDriver) Language(path string) (*tree_sitter.Language, *QueryTables) {
	if strings.HasSuffix(strings.ToLower(path), ".tsx") {
		return d.tsx.get()
	}
	return d.plain.get()
}
