package domain

import "encoding/json"

// Specification is a fully normalized attack tree: a root id plus an
// id-to-node mapping. Insertion order is preserved so that evaluation and
// re-export are deterministic regardless of source format.
//
// A Specification is logically immutable once built. The two sanctioned
// mutation points (leaf edits and committed sensitivity runs) operate on
// whole leaves; callers must discard any cached results afterwards.
type Specification struct {
	Root string

	nodes map[string]*Node
	order []string
}

// NewSpecification creates an empty specification for the given root id.
// The root node itself must still be added.
func NewSpecification(rootID string) *Specification {
	return &Specification{
		Root:  rootID,
		nodes: make(map[string]*Node),
	}
}

// Add inserts a node, preserving insertion order. Adding an id twice
// replaces the node in place without changing its position.
func (s *Specification) Add(n *Node) {
	if _, exists := s.nodes[n.ID]; !exists {
		s.order = append(s.order, n.ID)
	}
	s.nodes[n.ID] = n
}

// Node returns the node for the given id.
func (s *Specification) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (s *Specification) Len() int { return len(s.order) }

// IDs returns the node ids in insertion order.
func (s *Specification) IDs() []string {
	return append([]string(nil), s.order...)
}

// Nodes returns the nodes in insertion order.
func (s *Specification) Nodes() []*Node {
	out := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id])
	}
	return out
}

// Leaves returns the LEAF nodes in insertion order.
func (s *Specification) Leaves() []*Node {
	var out []*Node
	for _, id := range s.order {
		if n := s.nodes[id]; n.Kind == KindLeaf {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy. Sensitivity previews evaluate against a clone
// so the caller's specification is never touched.
func (s *Specification) Clone() *Specification {
	c := NewSpecification(s.Root)
	for _, id := range s.order {
		c.Add(s.nodes[id].Clone())
	}
	return c
}

// specJSON is the wire form used by the session stores. Nodes are held in
// a slice so insertion order survives the round trip.
type specJSON struct {
	Root  string  `json:"root"`
	Nodes []*Node `json:"nodes"`
}

// MarshalJSON implements json.Marshaler.
func (s *Specification) MarshalJSON() ([]byte, error) {
	return json.Marshal(specJSON{Root: s.Root, Nodes: s.Nodes()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Specification) UnmarshalJSON(data []byte) error {
	var w specJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Root = w.Root
	s.nodes = make(map[string]*Node, len(w.Nodes))
	s.order = s.order[:0]
	for _, n := range w.Nodes {
		s.Add(n)
	}
	return nil
}
