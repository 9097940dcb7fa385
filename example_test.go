package canopy_test

import (
	"fmt"
	"log"

	"canopy"
)

// ExampleAnalyze demonstrates parsing a YAML attack tree and computing
// its headline figures.
func ExampleAnalyze() {
	doc := []byte(`
id: breach
label: Data breach
type: OR
children: [phish, sqli]
nodes:
  - {id: phish, label: Phishing, type: LEAF, prob: 0.3, impact: 10000}
  - {id: sqli, label: SQL injection, type: LEAF, prob: 0.6, impact: 5000}
`)

	s, err := canopy.Parse(doc, "yaml")
	if err != nil {
		log.Fatal(err)
	}

	report, err := canopy.Analyze(s, canopy.WithTopN(1))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("probability: %.2f\n", report.Probability)
	fmt.Printf("expected loss: %.0f\n", report.ExpectedLoss)
	fmt.Printf("top contributor: %s\n", report.TopContributors[0].Label)
	// Output:
	// probability: 0.72
	// expected loss: 6000
	// top contributor: Phishing
}

// ExampleWhatIf previews halving one leaf's probability without touching
// the original tree.
func ExampleWhatIf() {
	doc := []byte(`{"id": "top", "type": "OR", "children": ["a"],
		"nodes": [{"id": "a", "type": "LEAF", "prob": 0.5, "impact": 100}]}`)

	s, err := canopy.Parse(doc, "json")
	if err != nil {
		log.Fatal(err)
	}

	result, err := canopy.WhatIf(s, "a", 0.5)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("scaled probability: %.2f\n", result.Probability)
	fmt.Printf("scaled loss: %.0f\n", result.ExpectedLoss)
	// Output:
	// scaled probability: 0.25
	// scaled loss: 25
}
