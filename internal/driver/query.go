package driver

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Capture is one named capture inside a query match.
type Capture struct {
	Name string
	Node tree_sitter.Node
}

// Match is one query match: every capture it produced, in query order.
type Match struct {
	Captures []Capture
}

// RunQuery executes q against root and returns every match with captures
// resolved to their names, so callers never touch the raw cursor API.
// Returns nil if q is nil (the query failed to compile for this driver).
func RunQuery(q *tree_sitter.Query, root *tree_sitter.Node, source []byte) []Match {
	if q == nil {
		return nil
	}
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	names := q.CaptureNames()
	iter := qc.Matches(q, root, source)

	var out []Match
	for {
		m := iter.Next()
		if m == nil {
			break
		}
		match := Match{Captures: make([]Capture, 0, len(m.Captures))}
		for _, c := range m.Captures {
			name := ""
			if int(c.Index) < len(names) {
				name = names[c.Index]
			}
			match.Captures = append(match.Captures, Capture{Name: name, Node: c.Node})
		}
		out = append(out, match)
	}
	return out
}

// Find returns the first capture in m whose name equals want, or false.
func (m Match) Find(want string) (tree_sitter.Node, bool) {
	for _, c := range m.Captures {
		if c.Name == want {
			return c.Node, true
		}
	}
	var zero tree_sitter.Node
	return zero, false
}

// Primary returns the first capture whose name does not contain a dot
// suffix (e.g. ".name"), i.e. the main node the match is "about".
func (m Match) Primary() (string, tree_sitter.Node, bool) {
	for _, c := range m.Captures {
		if !containsDot(c.Name) {
			return c.Name, c.Node, true
		}
	}
	var zero tree_sitter.Node
	return "", zero, false
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}
