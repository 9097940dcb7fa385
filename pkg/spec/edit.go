package spec

import (
	"fmt"

	"canopy/pkg/domain"
)

// LeafEdit carries replacement values for one leaf. A nil field clears the
// stored value back to "not yet specified".
type LeafEdit struct {
	ID     string
	Prob   *float64
	Impact *float64
}

// ApplyEdits writes leaf edits into the specification in place. Each field
// is validated independently: a probability outside [0,1] or a negative
// impact is rejected with a descriptive error while every other field,
// including the sibling field of the same leaf, is still applied. The
// returned slice holds one error per rejected field; an empty slice means
// everything was applied.
//
// Any results computed before the call are stale afterwards.
func ApplyEdits(s *domain.Specification, edits []LeafEdit) []error {
	var errs []error
	for _, e := range edits {
		n, ok := s.Node(e.ID)
		if !ok || n.Kind != domain.KindLeaf {
			errs = append(errs, &domain.NotFoundError{NodeID: e.ID})
			continue
		}

		if e.Prob != nil && (*e.Prob < 0 || *e.Prob > 1) {
			errs = append(errs, fmt.Errorf("probability for %q must be between 0 and 1", e.ID))
		} else {
			n.Prob = e.Prob
		}

		if e.Impact != nil && *e.Impact < 0 {
			errs = append(errs, fmt.Errorf("impact for %q must be non-negative", e.ID))
		} else {
			n.Impact = e.Impact
		}
	}
	return errs
}
