package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/analysis"
	"canopy/pkg/domain"
)

func sensSpec() *domain.Specification {
	return build("top",
		gate("top", domain.KindOr, "a", "b"),
		leaf("a", "A", ptr(0.2), ptr(10)),
		leaf("b", "B", ptr(0.5), ptr(4)),
	)
}

func TestPreview_ScalesWithoutMutating(t *testing.T) {
	s := sensSpec()

	res, err := analysis.Preview(s, "a", 2)
	require.NoError(t, err)

	// a scales to 0.4: p = 1 - 0.6*0.5 = 0.7, loss = 0.4*10 + 0.5*4 = 6
	assert.InDelta(t, 0.7, res.Probability, 1e-9)
	assert.InDelta(t, 6.0, res.ExpectedLoss, 1e-9)

	a, _ := s.Node("a")
	assert.Equal(t, 0.2, *a.Prob, "preview must not touch the original")
}

func TestPreview_TargetValidation(t *testing.T) {
	s := sensSpec()

	_, err := analysis.Preview(s, "ghost", 2)
	var nferr *domain.NotFoundError
	require.ErrorAs(t, err, &nferr)

	_, err = analysis.Preview(s, "top", 2)
	require.ErrorAs(t, err, &nferr, "internal nodes are not sensitivity targets")
}

func TestPreview_MissingBaseProbability(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a"),
		leaf("a", "A", nil, ptr(10)),
	)

	_, err := analysis.Preview(s, "a", 2)
	var merr *domain.MissingValueError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "a", merr.NodeID)
}

func TestCommit_WritesInPlace(t *testing.T) {
	s := sensSpec()

	out, err := analysis.Commit(s, "a", 2)
	require.NoError(t, err)
	assert.Same(t, s, out)

	a, _ := s.Node("a")
	assert.InDelta(t, 0.4, *a.Prob, 1e-9)
}

func TestCommit_ClampsUpper(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a"),
		leaf("a", "A", ptr(0.5), ptr(10)),
	)

	_, err := analysis.Commit(s, "a", 2)
	require.NoError(t, err)
	a, _ := s.Node("a")
	assert.Equal(t, 1.0, *a.Prob, "0.5 x 2 clamps to exactly 1.0")

	s2 := build("top",
		gate("top", domain.KindOr, "a"),
		leaf("a", "A", ptr(0.5), ptr(10)),
	)
	_, err = analysis.Commit(s2, "a", 3)
	require.NoError(t, err)
	a2, _ := s2.Node("a")
	assert.Equal(t, 1.0, *a2.Prob, "0.5 x 3 clamps to 1.0, not 1.5")
}

func TestCommit_ClampsLower(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a"),
		leaf("a", "A", ptr(0.5), ptr(10)),
	)

	_, err := analysis.Commit(s, "a", -2)
	require.NoError(t, err)
	a, _ := s.Node("a")
	assert.Equal(t, 0.0, *a.Prob, "negative multipliers clamp to 0, never below")
}

func TestPreview_ZeroMultiplier(t *testing.T) {
	s := sensSpec()

	res, err := analysis.Preview(s, "a", 0)
	require.NoError(t, err)
	// a drops to 0: p = 1 - 1*0.5 = 0.5, loss = 0 + 2
	assert.InDelta(t, 0.5, res.Probability, 1e-9)
	assert.InDelta(t, 2.0, res.ExpectedLoss, 1e-9)
}
