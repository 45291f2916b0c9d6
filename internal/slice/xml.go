package slice

import (
	"fmt"
	"strings"
)

// crunch implements spec §6's CDATA pre-crunch: strip trailing horizontal
// whitespace per line, collapse runs of blank lines to one.
func crunch(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}

	var out []string
	blank := false
	for _, l := range lines {
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

// RenderXML emits the bit-exact slice document (spec §6): an XML 1.0
// declaration, an optional repository_map element, then one file element
// per packed entry, each wrapping its crunched content in CDATA.
func RenderXML(result Result) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<context>\n")

	if result.RepoMap != "" {
		b.WriteString("  <repository_map><![CDATA[")
		b.WriteString(escapeCDATA(crunch(result.RepoMap)))
		b.WriteString("]]></repository_map>\n")
	}

	for _, f := range result.Files {
		fmt.Fprintf(&b, "  <file path=%q><![CDATA[", f.RelPath)
		b.WriteString(escapeCDATA(crunch(f.Content)))
		b.WriteString("]]></file>\n")
	}

	b.WriteString("</context>\n")
	return b.String()
}

// escapeCDATA splits any literal "]]>" sequence so it can't terminate the
// CDATA section early; this is the one character sequence CDATA cannot
// contain verbatim.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}
