// Package symbols implements the semantic tool suite (spec §4.E):
// read_symbol, find_usages, call_hierarchy, repo_map, propagation_checklist.
// read_symbol works on one file; the other four walk a directory once
// through the shared skeleton/driver pipeline, and every file they analyse
// must match a driver. The name-based tools also run a fast substring
// prefilter on the target name; repo_map filters by its own search terms.
package symbols

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/chiselmap/internal/driver"
)

// identifierKinds is the closed set of leaf node kinds find_usages (and
// propagation_checklist through it) compares against the target name.
var identifierKinds = map[string]bool{
	"identifier":         true,
	"type_identifier":    true,
	"field_identifier":   true,
	"property_identifier": true,
	"shorthand_property_identifier": true,
	"shorthand_property_identifier_pattern": true,
}

// isPrunedSubtree reports node kinds whose entire subtree is pruned before
// identifier scanning, so usages never fire inside comments or literals.
func isPrunedSubtree(kind string) bool {
	if strings.Contains(kind, "comment") {
		return true
	}
	switch kind {
	case "string", "string_literal", "interpreted_string_literal",
		"raw_string_literal", "template_string", "template_literal",
		"heredoc_body", "regex", "regex_pattern", "char_literal":
		return true
	}
	return false
}

// callAncestorKinds classify an identifier hit as an outgoing/incoming call
// when one of its ancestors (within the walk-up bound) has one of these
// kinds.
var callAncestorKinds = map[string]bool{
	"call_expression": true, "call": true,
	"method_invocation": true, "invocation_expression": true,
}

var typeRefAncestorKinds = map[string]bool{
	"type_identifier": true, "generic_type": true, "type_arguments": true,
	"implements_clause": true, "extends_clause": true, "type_annotation": true,
}

const maxAncestorWalk = 8

// identHit is one identifier leaf matching a target name.
type identHit struct {
	Node      tree_sitter.Node
	StartLine int
}

// findIdentifiers walks root depth-first, pruning comment/string subtrees,
// and collects every identifier-kind leaf whose text equals target.
func findIdentifiers(root *tree_sitter.Node, source []byte, target string) []identHit {
	var out []identHit
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if isPrunedSubtree(kind) {
			return
		}
		if identifierKinds[kind] {
			text := string(source[n.StartByte():n.EndByte()])
			if text == target {
				out = append(out, identHit{Node: *n, StartLine: int(n.StartPosition().Row)})
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

// classify walks up to maxAncestorWalk ancestors from hit, returning one of
// "Calls", "Type Refs", "Field Inits", "Other" (spec §4.E find_usages).
func classify(hit tree_sitter.Node) string {
	n := hit
	for i := 0; i < maxAncestorWalk; i++ {
		parent := n.Parent()
		if parent == nil {
			break
		}
		kind := parent.Kind()
		if callAncestorKinds[kind] {
			return "Calls"
		}
		if typeRefAncestorKinds[kind] {
			return "Type Refs"
		}
		if strings.Contains(kind, "field_initializer") || strings.Contains(kind, "struct_field") ||
			strings.Contains(kind, "property_assignment") {
			return "Field Inits"
		}
		n = *parent
	}
	if hit.Kind() == "type_identifier" {
		return "Type Refs"
	}
	return "Other"
}

// fastContains is the cheap substring prefilter every tool runs before
// parsing a candidate file.
func fastContains(source []byte, name string) bool {
	return strings.Contains(string(source), name)
}

// eligibleDriver resolves path to a driver, or nil if the file is not
// eligible for semantic tooling.
func eligibleDriver(reg *driver.Registry, path string) driver.Driver {
	return reg.DriverFor(path)
}
