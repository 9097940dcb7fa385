package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/analysis"
	"canopy/pkg/domain"
)

func ptr(v float64) *float64 { return &v }

func leaf(id, label string, prob, impact *float64) *domain.Node {
	return &domain.Node{ID: id, Label: label, Kind: domain.KindLeaf, Prob: prob, Impact: impact}
}

func gate(id string, kind domain.Kind, children ...string) *domain.Node {
	return &domain.Node{ID: id, Kind: kind, Children: children}
}

func build(root string, nodes ...*domain.Node) *domain.Specification {
	s := domain.NewSpecification(root)
	for _, n := range nodes {
		s.Add(n)
	}
	return s
}

func TestProbability_And(t *testing.T) {
	s := build("top",
		gate("top", domain.KindAnd, "a", "b"),
		leaf("a", "A", ptr(0.5), ptr(10)),
		leaf("b", "B", ptr(0.2), ptr(5)),
	)

	p, err := analysis.Probability(s)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, p, 1e-9)
}

func TestProbability_Or(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a", "b"),
		leaf("a", "A", ptr(0.3), ptr(7)),
		leaf("b", "B", ptr(0.6), ptr(2)),
	)

	p, err := analysis.Probability(s)
	require.NoError(t, err)
	// 1 - (1-0.3)*(1-0.6) = 0.72
	assert.InDelta(t, 0.72, p, 1e-9)
}

func TestProbability_Nested(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "and1", "c"),
		gate("and1", domain.KindAnd, "a", "b"),
		leaf("a", "A", ptr(0.5), nil),
		leaf("b", "B", ptr(0.4), nil),
		leaf("c", "C", ptr(0.1), nil),
	)

	p, err := analysis.Probability(s)
	require.NoError(t, err)
	// and1 = 0.2; top = 1 - 0.8*0.9 = 0.28
	assert.InDelta(t, 0.28, p, 1e-9)
}

func TestProbability_EmptyChildren(t *testing.T) {
	andSpec := build("top", gate("top", domain.KindAnd))
	p, err := analysis.Probability(andSpec)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p, "empty AND is a vacuous product")

	orSpec := build("top", gate("top", domain.KindOr))
	p, err = analysis.Probability(orSpec)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p, "empty OR cannot occur")
}

func TestProbability_MissingLeafValue(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a"),
		leaf("a", "A", nil, ptr(5)),
	)

	_, err := analysis.Probability(s)
	var merr *domain.MissingValueError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "a", merr.NodeID)
}

func TestProbability_UnknownKind(t *testing.T) {
	s := build("top", &domain.Node{ID: "top", Kind: domain.Kind("XOR")})

	_, err := analysis.Probability(s)
	var ierr *domain.InvalidNodeError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "top", ierr.NodeID)
}

func TestProbability_CycleDetected(t *testing.T) {
	s := build("a",
		gate("a", domain.KindAnd, "b"),
		gate("b", domain.KindOr, "a"),
	)

	_, err := analysis.Probability(s)
	var cerr *domain.CycleError
	require.ErrorAs(t, err, &cerr)
}

func TestProbability_SelfReference(t *testing.T) {
	s := build("a", gate("a", domain.KindOr, "a"))

	_, err := analysis.Probability(s)
	var cerr *domain.CycleError
	require.ErrorAs(t, err, &cerr)
}

func TestProbability_DepthBound(t *testing.T) {
	// A legitimate chain deeper than the configured bound still fails
	// fast rather than recursing away.
	s := domain.NewSpecification("n0")
	s.Add(gate("n0", domain.KindAnd, "n1"))
	s.Add(gate("n1", domain.KindAnd, "n2"))
	s.Add(gate("n2", domain.KindAnd, "n3"))
	s.Add(leaf("n3", "L", ptr(0.5), nil))

	_, err := analysis.Probability(s, analysis.WithMaxDepth(2))
	var cerr *domain.CycleError
	require.ErrorAs(t, err, &cerr)

	p, err := analysis.Probability(s, analysis.WithMaxDepth(3))
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)
}

func TestProbability_Idempotent(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a", "b"),
		leaf("a", "A", ptr(0.37), ptr(11)),
		leaf("b", "B", ptr(0.61), ptr(3)),
	)

	p1, err := analysis.Probability(s)
	require.NoError(t, err)
	p2, err := analysis.Probability(s)
	require.NoError(t, err)
	assert.Equal(t, p1, p2, "same unmutated spec must evaluate bit-identically")
}

func TestExpectedLoss(t *testing.T) {
	s := build("top",
		gate("top", domain.KindAnd, "a", "b"),
		leaf("a", "A", ptr(0.5), ptr(10)),
		leaf("b", "B", ptr(0.2), ptr(5)),
	)

	total, err := analysis.ExpectedLoss(s)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, total, 1e-9)
}

func TestExpectedLoss_CountsUnreachableLeaves(t *testing.T) {
	// Expected loss aggregates over every leaf in the mapping, whether or
	// not the root reaches it.
	s := build("top",
		gate("top", domain.KindOr, "a"),
		leaf("a", "A", ptr(0.5), ptr(10)),
		leaf("orphan", "O", ptr(0.1), ptr(100)),
	)

	total, err := analysis.ExpectedLoss(s)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, total, 1e-9)
}

func TestExpectedLoss_MissingField(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a", "b"),
		leaf("a", "A", ptr(0.5), nil),
		leaf("b", "B", nil, ptr(5)),
	)

	_, err := analysis.ExpectedLoss(s)
	var merr *domain.MissingValueError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "a", merr.NodeID, "first incomplete leaf in insertion order is reported")
	assert.Equal(t, "impact", merr.Field)
}

func TestTopContributors(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a", "b", "c"),
		leaf("a", "A", ptr(0.1), ptr(5)), // 0.5
		leaf("b", "B", ptr(0.4), ptr(2)), // 0.8
		leaf("c", "C", ptr(0.2), ptr(4)), // 0.8
	)

	top := analysis.TopContributors(s, 2)
	require.Len(t, top, 2)
	assert.GreaterOrEqual(t, top[0].Value, top[1].Value)
	// b and c tie at 0.8; insertion order breaks the tie.
	assert.Equal(t, "b", top[0].ID)
	assert.Equal(t, "c", top[1].ID)
}

func TestTopContributors_SkipsIncompleteLeaves(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a", "b"),
		leaf("a", "A", ptr(0.5), nil),
		leaf("b", "B", ptr(0.2), ptr(5)),
	)

	top := analysis.TopContributors(s, 3)
	require.Len(t, top, 1)
	assert.Equal(t, "b", top[0].ID)
	assert.InDelta(t, 1.0, top[0].Value, 1e-9)
}

func TestTopContributors_KLargerThanLeaves(t *testing.T) {
	s := build("top",
		gate("top", domain.KindOr, "a"),
		leaf("a", "A", ptr(0.5), ptr(2)),
	)

	top := analysis.TopContributors(s, 10)
	assert.Len(t, top, 1)
}
