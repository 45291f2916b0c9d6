package symbols

import (
	"sort"
	"strings"

	"github.com/standardbeagle/chiselmap/internal/driver"
	"github.com/standardbeagle/chiselmap/internal/skeleton"
	"github.com/standardbeagle/chiselmap/internal/walkfs"
)

// callDenylist is the language-agnostic standard-library/runtime method
// vocabulary suppressed from outgoing-call results, so every call hierarchy
// isn't dominated by append/len/println-shaped noise.
var callDenylist = map[string]bool{
	"append": true, "len": true, "cap": true, "make": true, "new": true,
	"copy": true, "delete": true, "panic": true, "recover": true, "close": true,
	"print": true, "println": true, "Println": true, "Printf": true, "Sprintf": true,
	"Sprint": true, "Error": true, "String": true, "Errorf": true, "Fatal": true,
	"Fatalf": true, "Fatalln": true, "Wrap": true, "Wrapf": true,
	"push": true, "pop": true, "shift": true, "unshift": true, "slice": true,
	"splice": true, "map": true, "filter": true, "reduce": true, "forEach": true,
	"join": true, "split": true, "concat": true, "includes": true, "indexOf": true,
	"toString": true, "valueOf": true, "hasOwnProperty": true,
	"console.log": true, "console.error": true, "console.warn": true,
	"str": true, "repr": true, "format": true, "join_str": true,
	"print_str": true, "isinstance": true, "getattr": true, "setattr": true,
	"range": true, "enumerate": true, "zip": true, "sorted": true,
	"super": true, "self": true, "__init__": true, "__str__": true, "__repr__": true,
	"to_string": true, "to_owned": true, "clone": true, "unwrap": true,
	"unwrap_or": true, "expect": true, "iter": true, "collect": true,
	"into_iter": true, "as_ref": true, "as_str": true, "println!": true,
	"format!": true, "vec!": true, "Box::new": true, "Some": true, "None": true,
	"Ok": true, "Err": true,
	"equals": true, "hashCode": true, "getClass": true,
	"System.out.println": true, "printStackTrace": true,
	"malloc": true, "free": true, "memcpy": true, "strlen": true, "strcpy": true,
	"printf": true, "scanf": true, "sizeof": true,
	"echo": true, "var_dump": true, "print_r": true, "implode": true, "explode": true,
	"array_map": true, "array_filter": true, "array_merge": true,
}

// CallHierarchyResult is what CallHierarchy returns.
type CallHierarchyResult struct {
	Definition driver.Symbol
	DefPath    string
	Outgoing   []string
	Incoming   []CallSiteRef
	Truncated  bool
}

// CallSiteRef is one inbound call to the target, resolved to its enclosing
// function when possible.
type CallSiteRef struct {
	RelPath   string
	Line      int // 1-based
	Enclosing string
}

const maxInboundHits = 30

// CallHierarchy implements spec §4.E's call_hierarchy tool: locate the
// definition, extract its outgoing calls, then scan target_dir for inbound
// call sites targeting name.
func CallHierarchy(reg *driver.Registry, targetDir, defPath string, source []byte, name string) (CallHierarchyResult, bool) {
	res := ReadSymbol(reg, defPath, source, name)
	if !res.Found {
		return CallHierarchyResult{}, false
	}

	d := reg.DriverFor(defPath)
	symbols := skeleton.Symbols(reg, defPath, source)
	var def driver.Symbol
	found := false
	for _, s := range symbols {
		if s.Name == name {
			def = s
			found = true
			break
		}
	}
	if !found {
		return CallHierarchyResult{}, false
	}

	out := CallHierarchyResult{Definition: def, DefPath: defPath}
	out.Outgoing = outgoingCalls(d, defPath, source, def)
	out.Incoming, out.Truncated = incomingCalls(reg, targetDir, name)
	return out, true
}

func outgoingCalls(d driver.Driver, path string, source []byte, def driver.Symbol) []string {
	tree, tables, err := driver.Parse(d, path, source)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil || tables == nil || tables.CallSites == nil {
		return nil
	}
	matches := driver.RunQuery(tables.CallSites, root, source)

	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		callee, ok := m.Find("callee")
		if !ok {
			continue
		}
		start := int(callee.StartByte())
		if start < def.StartByte || start >= def.EndByte {
			continue
		}
		name := trailingIdentifier(string(source[callee.StartByte():callee.EndByte()]))
		if name == "" || callDenylist[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// trailingIdentifier handles attribute-call forms (obj.Method, a::b::c) by
// taking the final dotted/double-colon segment.
func trailingIdentifier(callee string) string {
	callee = strings.TrimSpace(callee)
	if i := strings.LastIndex(callee, "::"); i >= 0 {
		callee = callee[i+2:]
	}
	if i := strings.LastIndex(callee, "."); i >= 0 {
		callee = callee[i+1:]
	}
	return callee
}

func incomingCalls(reg *driver.Registry, targetDir, name string) ([]CallSiteRef, bool) {
	entries, _ := walkfs.Walk(targetDir, walkfs.Options{})

	var out []CallSiteRef
	truncated := false
	for _, e := range entries {
		if len(out) >= maxInboundHits {
			truncated = true
			break
		}
		d := reg.DriverFor(e.AbsPath)
		if d == nil {
			continue
		}
		source, err := walkfs.ReadFile(e.AbsPath, 0)
		if err != nil || !fastContains(source, name) {
			continue
		}
		tree, tables, err := driver.Parse(d, e.AbsPath, source)
		if err != nil || tree == nil {
			continue
		}
		root := tree.RootNode()
		if root == nil || tables == nil || tables.CallSites == nil {
			tree.Close()
			continue
		}
		fileSymbols := skeleton.Symbols(reg, e.AbsPath, source)
		matches := driver.RunQuery(tables.CallSites, root, source)
		for _, m := range matches {
			callee, ok := m.Find("callee")
			if !ok {
				continue
			}
			calleeName := trailingIdentifier(string(source[callee.StartByte():callee.EndByte()]))
			if calleeName != name {
				continue
			}
			line := int(callee.StartPosition().Row)
			out = append(out, CallSiteRef{
				RelPath:   e.RelPath,
				Line:      line + 1,
				Enclosing: enclosingFunction(fileSymbols, line),
			})
			if len(out) >= maxInboundHits {
				truncated = true
				break
			}
		}
		tree.Close()
		if truncated {
			break
		}
	}
	return out, truncated
}

// enclosingFunction selects the skeleton symbol with minimum start-line
// distance among those containing line (spec §4.E call_hierarchy).
func enclosingFunction(symbols []driver.Symbol, line int) string {
	best := ""
	bestDist := -1
	for _, s := range symbols {
		if line < s.StartLine || line > s.EndLine {
			continue
		}
		dist := line - s.StartLine
		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = s.Name
		}
	}
	if best == "" {
		return "(top level)"
	}
	return best
}
