package graph

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DOTOptions configures DOT serialization.
type DOTOptions struct {
	// Detailed includes version and metadata in node labels.
	// When false, only the package name (and version) is shown.
	Detailed bool
}

// ToDOT converts the graph to Graphviz DOT format. The manifest root is
// drawn as a folder-shaped node; everything else is a rounded box
// labeled name==version.
func ToDOT(g *Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *Node, opts DOTOptions) []string {
	if n.IsRoot() {
		return []string{`label="requirements"`, "shape=folder", "fillcolor=lightgrey"}
	}

	label := n.ID
	if n.Version != "" {
		label = n.ID + "==" + n.Version
	}
	if opts.Detailed {
		var extra []string
		for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
			extra = append(extra, fmt.Sprintf("%s: %s", k, n.Meta[k]))
		}
		if len(extra) > 0 {
			label += "\n" + strings.Join(extra, "\n")
		}
	}
	return []string{fmt.Sprintf("label=%q", label)}
}
