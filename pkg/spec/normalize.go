// Package spec builds validated domain.Specifications from the generic
// values produced by pkg/decode, and serializes them back out. It owns the
// structural rules: required root id, kind-dependent defaulting, duplicate
// merging and closed-world child references.
package spec

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"canopy/pkg/decode"
	"canopy/pkg/domain"
)

// rawNode is the loosely-typed shape of a single node entry. Weak decoding
// absorbs the per-format quirks: XML delivers numbers as strings, YAML
// delivers whole floats as ints, and a lone child may arrive unwrapped.
type rawNode struct {
	ID       string   `mapstructure:"id"`
	Label    string   `mapstructure:"label"`
	Type     string   `mapstructure:"type"`
	Children []any    `mapstructure:"children"`
	Prob     *float64 `mapstructure:"prob"`
	Impact   *float64 `mapstructure:"impact"`
	Nodes    any      `mapstructure:"nodes"`
}

// Normalize converts a generic decoded value into a Specification,
// failing with *domain.SpecError on any structural violation. No partial
// specification is ever returned.
func Normalize(v any) (*domain.Specification, error) {
	top, ok := v.(map[string]any)
	if !ok {
		return nil, domain.Specf("spec must be a mapping at top level")
	}

	raw, err := decodeRaw(top)
	if err != nil {
		return nil, err
	}
	if raw.ID == "" {
		return nil, domain.Specf("spec is missing a root id")
	}

	s := domain.NewSpecification(raw.ID)
	s.Add(buildNode(raw))

	for i, entry := range decode.AsSequence(raw.Nodes) {
		em, ok := entry.(map[string]any)
		if !ok {
			return nil, domain.Specf("node entry %d is not a mapping", i)
		}
		rn, err := decodeRaw(em)
		if err != nil {
			return nil, err
		}
		if rn.ID == "" {
			return nil, domain.Specf("node entry %d is missing an id", i)
		}
		if err := merge(s, buildNode(rn)); err != nil {
			return nil, err
		}
	}

	// Closed-world child references: every child of every internal node
	// must exist in the mapping. First violation wins.
	for _, n := range s.Nodes() {
		if n.Kind == domain.KindLeaf {
			continue
		}
		for _, child := range n.Children {
			if _, ok := s.Node(child); !ok {
				return nil, domain.Specf("node %q references unknown child %q", n.ID, child)
			}
		}
	}

	return s, nil
}

// decodeRaw weakly decodes a generic mapping into rawNode. Empty-string
// prob/impact values (an XML artifact for self-closing tags) are treated
// as absent rather than zero.
func decodeRaw(m map[string]any) (*rawNode, error) {
	cleaned := make(map[string]any, len(m))
	for k, v := range m {
		if k == "prob" || k == "impact" {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
		}
		cleaned[k] = v
	}

	var raw rawNode
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(cleaned); err != nil {
		return nil, domain.Specf("node %v: %v", m["id"], err)
	}
	return &raw, nil
}

// buildNode applies kind-dependent defaulting: leaves get empty children
// and keep prob/impact; internal nodes keep children (mappings coerced to
// their id field) and have prob/impact forced unset.
func buildNode(raw *rawNode) *domain.Node {
	n := &domain.Node{
		ID:    raw.ID,
		Label: raw.Label,
		Kind:  domain.ParseKind(raw.Type),
	}
	if n.Kind == domain.KindLeaf {
		n.Prob = raw.Prob
		n.Impact = raw.Impact
		return n
	}
	n.Children = childIDs(raw.Children)
	return n
}

func childIDs(entries []any) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		switch c := e.(type) {
		case string:
			out = append(out, c)
		case map[string]any:
			if id, ok := c["id"].(string); ok {
				out = append(out, id)
			}
		default:
			out = append(out, fmt.Sprint(c))
		}
	}
	return out
}

// merge inserts a node or folds a duplicate declaration into the existing
// one: non-nil scalar fields win, non-empty children replace empty ones.
// A kind conflict is fatal.
func merge(s *domain.Specification, n *domain.Node) error {
	existing, ok := s.Node(n.ID)
	if !ok {
		s.Add(n)
		return nil
	}
	if existing.Kind != n.Kind {
		return domain.Specf("duplicate node id %q with conflicting kinds %q and %q", n.ID, existing.Kind, n.Kind)
	}
	if n.Prob != nil {
		existing.Prob = n.Prob
	}
	if n.Impact != nil {
		existing.Impact = n.Impact
	}
	if n.Label != "" {
		existing.Label = n.Label
	}
	if len(n.Children) > 0 {
		existing.Children = n.Children
	}
	return nil
}
