/*
Package canopy analyzes attack trees: hierarchical risk models whose
leaves carry an attack-step probability and an impact cost, and whose
internal nodes combine children with AND/OR boolean-probability
semantics.

The library parses a tree specification from YAML, JSON or XML into a
validated, normalized node graph; evaluates top-event probability,
expected monetary loss and ranked leaf contributions; and runs "what-if"
sensitivity transforms that scale one leaf's probability and recompute
the results without mutating the original.

Quick start:

	s, err := canopy.Parse(data, "yaml")
	if err != nil {
		// *domain.FormatError or *domain.SpecError
	}

	report, err := canopy.Analyze(s)
	if err == nil {
		fmt.Println(report.Probability, report.ExpectedLoss)
	}

	preview, err := canopy.WhatIf(s, "phishing", 0.5)

The core is pure and holds no global state: every operation takes the
caller's Specification explicitly, and concurrent use of distinct
Specifications needs no coordination. Per-session persistence, HTTP and
MCP surfaces live under pkg/adapters and internal/adapters.
*/
package canopy
