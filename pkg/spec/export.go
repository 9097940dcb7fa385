package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"canopy/pkg/domain"
)

// exportDoc mirrors the external YAML document shape: the root node is
// inlined at the top level and every other node is an entry in the nodes
// sequence.
type exportDoc struct {
	ID       string   `yaml:"id"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Children []string `yaml:"children"`
	Nodes    []any    `yaml:"nodes"`
}

// leafEntry always carries prob and impact, emitting nulls for unset
// values so a re-imported document preserves "not yet specified".
type leafEntry struct {
	ID     string   `yaml:"id"`
	Label  string   `yaml:"label"`
	Type   string   `yaml:"type"`
	Prob   *float64 `yaml:"prob"`
	Impact *float64 `yaml:"impact"`
}

type innerEntry struct {
	ID       string   `yaml:"id"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Children []string `yaml:"children"`
}

// leafDoc is the top-level shape for the degenerate single-leaf tree.
type leafDoc struct {
	ID     string   `yaml:"id"`
	Label  string   `yaml:"label"`
	Type   string   `yaml:"type"`
	Prob   *float64 `yaml:"prob"`
	Impact *float64 `yaml:"impact"`
	Nodes  []any    `yaml:"nodes"`
}

// Export serializes a Specification back to the YAML document notation it
// was parsed from. Re-parsing the output yields an equivalent
// specification: same root, same node ids, same kinds, children and leaf
// values, in the same order.
func Export(s *domain.Specification) ([]byte, error) {
	root, ok := s.Node(s.Root)
	if !ok {
		return nil, domain.Specf("root node %q is missing from the mapping", s.Root)
	}

	entries := []any{}
	for _, n := range s.Nodes() {
		if n.ID == s.Root {
			continue
		}
		if n.Kind == domain.KindLeaf {
			entries = append(entries, leafEntry{
				ID:     n.ID,
				Label:  n.Label,
				Type:   string(n.Kind),
				Prob:   n.Prob,
				Impact: n.Impact,
			})
			continue
		}
		entries = append(entries, innerEntry{
			ID:       n.ID,
			Label:    n.Label,
			Type:     string(n.Kind),
			Children: n.Children,
		})
	}

	var doc any
	if root.Kind == domain.KindLeaf {
		doc = leafDoc{
			ID:     root.ID,
			Label:  root.Label,
			Type:   string(root.Kind),
			Prob:   root.Prob,
			Impact: root.Impact,
			Nodes:  entries,
		}
	} else {
		doc = exportDoc{
			ID:       root.ID,
			Label:    root.Label,
			Type:     string(root.Kind),
			Children: root.Children,
			Nodes:    entries,
		}
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal spec: %w", err)
	}
	return out, nil
}
