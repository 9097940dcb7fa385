package canopy

import (
	"canopy/pkg/analysis"
	"canopy/pkg/decode"
	"canopy/pkg/domain"
	"canopy/pkg/spec"
)

// Version is the library version, reported by the CLI and the MCP server.
const Version = "0.3.0"

// DefaultTopN is how many ranked contributors Analyze returns unless
// overridden with WithTopN.
const DefaultTopN = 3

// Parse decodes a raw attack tree document in the given format (yaml,
// json or xml) and normalizes it into a validated Specification. Errors
// are *domain.FormatError for unreadable documents and *domain.SpecError
// for structural violations; no partial specification is ever returned.
func Parse(data []byte, format string) (*domain.Specification, error) {
	v, err := decode.Decode(data, format)
	if err != nil {
		return nil, err
	}
	return spec.Normalize(v)
}

// Report bundles the three headline results of a full analysis.
type Report struct {
	Probability     float64                `json:"probability"`
	ExpectedLoss    float64                `json:"expected_loss"`
	TopContributors []analysis.Contributor `json:"top_contributors"`
}

// Option configures Analyze and WhatIf.
type Option func(*config)

type config struct {
	topN     int
	evalOpts []analysis.Option
}

// WithTopN sets how many ranked contributors the report carries.
func WithTopN(k int) Option {
	return func(c *config) {
		c.topN = k
	}
}

// WithMaxDepth bounds evaluation recursion depth.
func WithMaxDepth(d int) Option {
	return func(c *config) {
		c.evalOpts = append(c.evalOpts, analysis.WithMaxDepth(d))
	}
}

func newConfig(opts []Option) config {
	c := config{topN: DefaultTopN}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Analyze evaluates top-event probability, expected loss and ranked
// contributors over the specification. It fails if any leaf a computation
// needs is missing a value; callers that want the operations individually
// catchable (an incomplete spec is a displayable state, not a crash) use
// pkg/analysis directly.
func Analyze(s *domain.Specification, opts ...Option) (*Report, error) {
	c := newConfig(opts)

	p, err := analysis.Probability(s, c.evalOpts...)
	if err != nil {
		return nil, err
	}
	loss, err := analysis.ExpectedLoss(s)
	if err != nil {
		return nil, err
	}
	return &Report{
		Probability:     p,
		ExpectedLoss:    loss,
		TopContributors: analysis.TopContributors(s, c.topN),
	}, nil
}

// WhatIf previews a sensitivity run: one leaf's probability scaled by
// multiplier (clamped to [0,1]) on a copy of the specification. The
// original is untouched.
func WhatIf(s *domain.Specification, leafID string, multiplier float64, opts ...Option) (analysis.Result, error) {
	c := newConfig(opts)
	return analysis.Preview(s, leafID, multiplier, c.evalOpts...)
}
