// Package viz exports attack trees as Graphviz DOT text. Actual image
// rendering is left to the consumer (dot, a browser library, etc.); this
// package only produces the textual graph description.
package viz

import (
	"fmt"
	"strings"

	"canopy/pkg/domain"
)

// DOT renders the specification as a directed graph in DOT notation.
// Node shapes distinguish the kinds: AND gates are boxes, OR gates
// ellipses, leaves notes. Leaf labels carry prob/impact when set.
func DOT(s *domain.Specification) string {
	var b strings.Builder
	b.WriteString("digraph attacktree {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [fontsize=10];\n")

	for _, n := range s.Nodes() {
		fmt.Fprintf(&b, "  %s [label=%s, shape=%s];\n", quote(n.ID), quote(nodeLabel(n)), shape(n.Kind))
	}
	for _, n := range s.Nodes() {
		for _, child := range n.Children {
			fmt.Fprintf(&b, "  %s -> %s;\n", quote(n.ID), quote(child))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func shape(k domain.Kind) string {
	switch k {
	case domain.KindAnd:
		return "box"
	case domain.KindOr:
		return "ellipse"
	case domain.KindLeaf:
		return "note"
	default:
		return "diamond"
	}
}

func nodeLabel(n *domain.Node) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if n.Kind != domain.KindLeaf {
		return fmt.Sprintf("%s\n[%s]", label, n.Kind)
	}
	parts := []string{label}
	if n.Prob != nil {
		parts = append(parts, fmt.Sprintf("p=%.3f", *n.Prob))
	}
	if n.Impact != nil {
		parts = append(parts, fmt.Sprintf("impact=%.2f", *n.Impact))
	}
	return strings.Join(parts, "\n")
}

// quote escapes a string for use as a DOT identifier or label.
func quote(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
