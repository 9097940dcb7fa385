package spec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/domain"
	"canopy/pkg/spec"
)

func ptr(v float64) *float64 { return &v }

func editSpec(t *testing.T) *domain.Specification {
	return parse(t, `
id: r
type: OR
children: [a, b]
nodes:
  - {id: a, label: A, type: LEAF, prob: 0.2, impact: 10}
  - {id: b, label: B, type: LEAF, prob: 0.3, impact: 20}
`, "yaml")
}

func TestApplyEdits_AllValid(t *testing.T) {
	s := editSpec(t)

	errs := spec.ApplyEdits(s, []spec.LeafEdit{
		{ID: "a", Prob: ptr(0.5), Impact: ptr(40)},
		{ID: "b", Prob: ptr(0.9), Impact: ptr(5)},
	})
	assert.Empty(t, errs)

	a, _ := s.Node("a")
	assert.Equal(t, 0.5, *a.Prob)
	assert.Equal(t, 40.0, *a.Impact)
}

func TestApplyEdits_PartialApplication(t *testing.T) {
	s := editSpec(t)

	errs := spec.ApplyEdits(s, []spec.LeafEdit{
		{ID: "a", Prob: ptr(1.5), Impact: ptr(40)}, // prob out of range
		{ID: "b", Prob: ptr(0.9), Impact: ptr(-1)}, // impact negative
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), `"a"`)
	assert.Contains(t, errs[1].Error(), `"b"`)

	// Rejected fields keep their old values; sibling fields still apply.
	a, _ := s.Node("a")
	assert.Equal(t, 0.2, *a.Prob, "invalid probability must not be applied")
	assert.Equal(t, 40.0, *a.Impact, "valid sibling field still applies")

	b, _ := s.Node("b")
	assert.Equal(t, 0.9, *b.Prob)
	assert.Equal(t, 20.0, *b.Impact)
}

func TestApplyEdits_NilClearsValue(t *testing.T) {
	s := editSpec(t)

	errs := spec.ApplyEdits(s, []spec.LeafEdit{{ID: "a"}})
	assert.Empty(t, errs)

	a, _ := s.Node("a")
	assert.Nil(t, a.Prob)
	assert.Nil(t, a.Impact)
}

func TestApplyEdits_UnknownOrNonLeaf(t *testing.T) {
	s := editSpec(t)

	errs := spec.ApplyEdits(s, []spec.LeafEdit{
		{ID: "ghost", Prob: ptr(0.1)},
		{ID: "r", Prob: ptr(0.1)},
		{ID: "a", Prob: ptr(0.7)},
	})
	require.Len(t, errs, 2)

	var nferr *domain.NotFoundError
	assert.ErrorAs(t, errs[0], &nferr)
	assert.ErrorAs(t, errs[1], &nferr)

	a, _ := s.Node("a")
	assert.Equal(t, 0.7, *a.Prob, "edits after a rejected one still apply")
}
