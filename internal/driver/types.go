// Package driver implements the grammar registry (spec §4.A) and the
// per-language drivers (spec §4.B): the process-wide, read-only mapping from
// a file path to the tree-sitter grammar and query tables used to
// skeletonize it.
package driver

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// SymbolKind is the closed set of declaration kinds a driver can emit.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindClass     SymbolKind = "class"
	KindStruct    SymbolKind = "struct"
	KindEnum      SymbolKind = "enum"
	KindTrait     SymbolKind = "trait"
	KindInterface SymbolKind = "interface"
	KindConst     SymbolKind = "const"
	KindType      SymbolKind = "type"
	KindService   SymbolKind = "service"
	KindMessage   SymbolKind = "message"
	KindRPC       SymbolKind = "rpc"
	KindImpl      SymbolKind = "impl"
	KindVariable  SymbolKind = "variable"
)

// Symbol is a named declaration found by a skeleton-symbols query.
//
// Invariant: StartLine <= EndLine (0-indexed); Signature is present iff the
// driver marks Kind as signature-bearing.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	StartLine  int
	EndLine    int
	StartByte  int
	EndByte    int
	Signature  string
	Exported   bool
	HasSig     bool
}

// PruneRange is a byte interval the skeletonizer replaces wholesale.
//
// Invariant: Start < End. Ranges never overlap after sorting; when two would
// overlap, the later-starting (inner) one wins — see skeleton's
// resolveOverlaps.
type PruneRange struct {
	Start       int
	End         int
	Replacement string
}

// Import is one raw import/use statement's textual payload.
type Import struct {
	Text      string
	StartByte int
	EndByte   int
}

// Export is a publicly-visible declaration name, per the driver's own
// visibility convention (see Driver.IsExported).
type Export struct {
	Name string
	Kind SymbolKind
}

// CallSite is an outgoing or incoming call expression, used by the semantic
// toolkit's call_hierarchy and find_usages tools.
type CallSite struct {
	CalleeName string
	StartByte  int
	EndByte    int
	StartLine  int
}

// Driver is the per-language bundle of grammar handle and query tables.
// Implementations are process-wide singletons, constructed once by
// builtins (via NewRegistry/Default) and never mutated afterward.
type Driver interface {
	// Name is the display name, e.g. "Go", "TypeScript".
	Name() string

	// Extensions lists the recognized file extensions, lowercase, with
	// leading dot (".go", ".tsx").
	Extensions() []string

	// Handles is a filename-based override predicate, used for cases the
	// extension table cannot express (e.g. declaration-only files).
	Handles(path string) bool

	// Language selects a grammar variant for path (e.g. TSX vs plain TS)
	// and returns the compiled tree-sitter language plus the capture
	// tables compiled against that specific variant.
	Language(path string) (*tree_sitter.Language, *QueryTables)

	// IsExported reports whether name is publicly visible per this
	// language's convention (visibility keyword, leading case, explicit
	// marker — see spec §4.B).
	IsExported(name string, kind SymbolKind) bool

	// BodyStyle says how this language's function/method bodies are
	// delimited, which decides the prune-range replacement text.
	BodyStyle() BodyStyle
}

// BodyStyle distinguishes brace-delimited bodies (replaced with the literal
// "{ /* ... */ }") from indentation-sensitive ones (replaced with
// "<indent>...\n") and languages with no executable bodies at all
// (interface-definition files, which emit no prune ranges).
type BodyStyle int

const (
	BodyStyleBrace BodyStyle = iota
	BodyStyleIndent
	BodyStyleNone
)

// QueryTables holds the five (four explicit, one implicit) query sets a
// driver exposes for one grammar variant.
type QueryTables struct {
	Skeleton  *tree_sitter.Query // skeleton symbols
	Prune     *tree_sitter.Query // body prune ranges
	Imports   *tree_sitter.Query // import/use statements
	Exports   *tree_sitter.Query // exported declaration names (optional, may be nil)
	CallSites *tree_sitter.Query // call expressions (implicit 5th table)
}
