// Package analysis implements the pure computations over a normalized
// attack tree: top-event probability, expected loss, ranked contributors
// and the what-if sensitivity transform. Nothing here mutates its input
// unless the operation name says so (Commit).
package analysis

import (
	"sort"

	"canopy/pkg/domain"
)

// DefaultMaxDepth bounds evaluation recursion. A well-formed tree never
// gets near this; a malformed or adversarial graph trips a CycleError
// instead of exhausting the stack.
const DefaultMaxDepth = 1000

// Option configures an evaluation.
type Option func(*config)

type config struct {
	maxDepth int
}

// WithMaxDepth overrides the recursion depth bound.
func WithMaxDepth(d int) Option {
	return func(c *config) {
		c.maxDepth = d
	}
}

func newConfig(opts []Option) config {
	c := config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Probability computes the top event's probability by depth-first
// AND/OR combination. Leaves return their own probability
// (MissingValueError when unset); AND nodes multiply child probabilities
// (vacuously 1.0 with no children); OR nodes apply the independent-event
// union formula 1 - prod(1 - p) (0.0 with no children). Unknown kinds fail
// with InvalidNodeError, revisiting a node on the current path with
// CycleError. The specification is never mutated, so evaluating the same
// unmutated input twice yields identical results.
func Probability(s *domain.Specification, opts ...Option) (float64, error) {
	e := evaluator{
		spec:   s,
		onPath: make(map[string]bool),
		config: newConfig(opts),
	}
	return e.prob(s.Root, 0)
}

type evaluator struct {
	spec   *domain.Specification
	onPath map[string]bool
	config config
}

func (e *evaluator) prob(id string, depth int) (float64, error) {
	if depth > e.config.maxDepth || e.onPath[id] {
		return 0, &domain.CycleError{NodeID: id}
	}
	n, ok := e.spec.Node(id)
	if !ok {
		return 0, domain.Specf("node %q is missing from the mapping", id)
	}

	switch n.Kind {
	case domain.KindLeaf:
		if n.Prob == nil {
			return 0, &domain.MissingValueError{NodeID: id, Field: "prob"}
		}
		return *n.Prob, nil

	case domain.KindAnd:
		e.onPath[id] = true
		defer delete(e.onPath, id)
		result := 1.0
		for _, child := range n.Children {
			p, err := e.prob(child, depth+1)
			if err != nil {
				return 0, err
			}
			result *= p
		}
		return result, nil

	case domain.KindOr:
		e.onPath[id] = true
		defer delete(e.onPath, id)
		pNot := 1.0
		for _, child := range n.Children {
			p, err := e.prob(child, depth+1)
			if err != nil {
				return 0, err
			}
			pNot *= 1.0 - p
		}
		return 1.0 - pNot, nil

	default:
		return 0, &domain.InvalidNodeError{NodeID: id, Kind: n.Kind}
	}
}

// ExpectedLoss sums probability x impact over every leaf in the mapping,
// reachable from the root or not. It fails with MissingValueError naming
// the first leaf (in insertion order) lacking either field.
func ExpectedLoss(s *domain.Specification) (float64, error) {
	total := 0.0
	for _, n := range s.Leaves() {
		if n.Prob == nil {
			return 0, &domain.MissingValueError{NodeID: n.ID, Field: "prob"}
		}
		if n.Impact == nil {
			return 0, &domain.MissingValueError{NodeID: n.ID, Field: "impact"}
		}
		total += *n.Prob * *n.Impact
	}
	return total, nil
}

// Contributor is one leaf's share of the expected loss.
type Contributor struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TopContributors ranks leaves by probability x impact, descending, and
// returns the first k. Leaves missing either field are skipped, not
// errors. Ties keep the original insertion order (stable sort).
func TopContributors(s *domain.Specification, k int) []Contributor {
	var all []Contributor
	for _, n := range s.Leaves() {
		if n.Prob == nil || n.Impact == nil {
			continue
		}
		all = append(all, Contributor{
			ID:    n.ID,
			Label: n.Label,
			Value: *n.Prob * *n.Impact,
		})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Value > all[j].Value
	})
	if k >= 0 && len(all) > k {
		all = all[:k]
	}
	return all
}
