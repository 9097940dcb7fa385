package canopy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy"
	"canopy/pkg/domain"
)

const demoDoc = `
id: breach
label: Customer data breach
type: OR
children: [phishing, exploit]
nodes:
  - {id: phishing, label: Phishing campaign, type: LEAF, prob: 0.3, impact: 50000}
  - {id: exploit, label: Unpatched CVE exploited, type: LEAF, prob: 0.6, impact: 120000}
`

func TestParseAndAnalyze(t *testing.T) {
	s, err := canopy.Parse([]byte(demoDoc), "yaml")
	require.NoError(t, err)

	report, err := canopy.Analyze(s)
	require.NoError(t, err)

	assert.InDelta(t, 0.72, report.Probability, 1e-9)
	assert.InDelta(t, 0.3*50000+0.6*120000, report.ExpectedLoss, 1e-6)
	require.Len(t, report.TopContributors, 2)
	assert.Equal(t, "exploit", report.TopContributors[0].ID)
}

func TestAnalyze_TopN(t *testing.T) {
	s, err := canopy.Parse([]byte(demoDoc), "yaml")
	require.NoError(t, err)

	report, err := canopy.Analyze(s, canopy.WithTopN(1))
	require.NoError(t, err)
	assert.Len(t, report.TopContributors, 1)
}

func TestWhatIf_LeavesOriginalUntouched(t *testing.T) {
	s, err := canopy.Parse([]byte(demoDoc), "yaml")
	require.NoError(t, err)

	res, err := canopy.WhatIf(s, "phishing", 2)
	require.NoError(t, err)
	// phishing scales to 0.6: p = 1 - 0.4*0.4 = 0.84
	assert.InDelta(t, 0.84, res.Probability, 1e-9)

	phishing, _ := s.Node("phishing")
	assert.Equal(t, 0.3, *phishing.Prob)
}

func TestParse_PropagatesTypedErrors(t *testing.T) {
	_, err := canopy.Parse([]byte("id: ["), "yaml")
	var ferr *domain.FormatError
	assert.ErrorAs(t, err, &ferr)

	_, err = canopy.Parse([]byte(`{"label": "no id"}`), "json")
	var serr *domain.SpecError
	assert.ErrorAs(t, err, &serr)
}
