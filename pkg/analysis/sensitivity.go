package analysis

import "canopy/pkg/domain"

// Result holds the recomputed headline figures of a sensitivity run.
type Result struct {
	Probability  float64 `json:"probability"`
	ExpectedLoss float64 `json:"expected_loss"`
}

// Preview scales one leaf's probability by multiplier on a deep copy of
// the specification and recomputes top-event probability and expected
// loss. The caller's specification is left untouched and the copy is
// discarded. Fails with NotFoundError if leafID is absent or not a leaf,
// and MissingValueError if the leaf's probability is unset.
func Preview(s *domain.Specification, leafID string, multiplier float64, opts ...Option) (Result, error) {
	if _, err := scaledProb(s, leafID, multiplier); err != nil {
		return Result{}, err
	}

	clone := s.Clone()
	p, _ := scaledProb(clone, leafID, multiplier)
	leaf, _ := clone.Node(leafID)
	leaf.Prob = &p

	prob, err := Probability(clone, opts...)
	if err != nil {
		return Result{}, err
	}
	loss, err := ExpectedLoss(clone)
	if err != nil {
		return Result{}, err
	}
	return Result{Probability: prob, ExpectedLoss: loss}, nil
}

// Commit writes the scaled probability into the caller's specification in
// place and returns it. Any previously computed results are stale after a
// commit and must be discarded.
func Commit(s *domain.Specification, leafID string, multiplier float64) (*domain.Specification, error) {
	p, err := scaledProb(s, leafID, multiplier)
	if err != nil {
		return nil, err
	}
	leaf, _ := s.Node(leafID)
	leaf.Prob = &p
	return s, nil
}

// scaledProb validates the target and returns base*multiplier clamped to
// [0,1]. The upper clamp is the physical bound of a probability; the lower
// clamp guards zero or negative multipliers from producing a negative
// "probability" that would silently poison later evaluation.
func scaledProb(s *domain.Specification, leafID string, multiplier float64) (float64, error) {
	leaf, ok := s.Node(leafID)
	if !ok || leaf.Kind != domain.KindLeaf {
		return 0, &domain.NotFoundError{NodeID: leafID}
	}
	if leaf.Prob == nil {
		return 0, &domain.MissingValueError{NodeID: leafID, Field: "prob"}
	}
	p := *leaf.Prob * multiplier
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p, nil
}
