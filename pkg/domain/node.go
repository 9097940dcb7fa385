package domain

import "strings"

// Kind classifies how a node combines its children.
type Kind string

// Node kinds. Input is case-insensitive; the normalizer stores the
// uppercase form.
const (
	// KindAnd succeeds only if every child succeeds.
	KindAnd Kind = "AND"
	// KindOr succeeds if at least one child succeeds.
	KindOr Kind = "OR"
	// KindLeaf is an atomic attack step carrying probability and impact.
	KindLeaf Kind = "LEAF"
)

// ParseKind normalizes a raw kind string to its canonical uppercase form.
// It does not reject unknown kinds; evaluation reports those as
// InvalidNodeError so an incomplete spec can still be loaded and edited.
func ParseKind(raw string) Kind {
	return Kind(strings.ToUpper(strings.TrimSpace(raw)))
}

// Valid reports whether the kind is one of the closed set.
func (k Kind) Valid() bool {
	switch k {
	case KindAnd, KindOr, KindLeaf:
		return true
	}
	return false
}

// Node is a single vertex of an attack tree.
//
// Children is meaningful only for AND/OR nodes; Prob and Impact only for
// leaves. A nil Prob/Impact means "not yet specified" and is distinct
// from zero.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Kind     Kind     `json:"type" yaml:"type"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
	Prob     *float64 `json:"prob,omitempty" yaml:"prob,omitempty"`
	Impact   *float64 `json:"impact,omitempty" yaml:"impact,omitempty"`
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = append([]string(nil), n.Children...)
	}
	if n.Prob != nil {
		p := *n.Prob
		c.Prob = &p
	}
	if n.Impact != nil {
		v := *n.Impact
		c.Impact = &v
	}
	return &c
}
