// Package report turns analysis results into a human-readable markdown
// document for the CLI.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"canopy/pkg/analysis"
	"canopy/pkg/domain"
)

// Markdown builds the analysis report for a specification. Evaluation
// failures (incomplete leaves, unknown kinds, cycles) are a displayable
// state, not an error: the report says the results are unavailable and
// why, and still lists the leaves so the reader can see what to fill in.
func Markdown(s *domain.Specification, topN int) string {
	var b strings.Builder

	root, _ := s.Node(s.Root)
	title := s.Root
	if root != nil && root.Label != "" {
		title = root.Label
	}
	fmt.Fprintf(&b, "# Attack Tree: %s\n\n", title)

	p, perr := analysis.Probability(s)
	loss, lerr := analysis.ExpectedLoss(s)

	b.WriteString("## Results\n\n")
	if perr == nil {
		fmt.Fprintf(&b, "- Top event probability: **%s**\n", pct(p))
	} else {
		fmt.Fprintf(&b, "- Top event probability: _unavailable_ (%v)\n", perr)
	}
	if lerr == nil {
		fmt.Fprintf(&b, "- Expected loss: **%s**\n", money(loss))
	} else {
		fmt.Fprintf(&b, "- Expected loss: _unavailable_ (%v)\n", lerr)
	}
	b.WriteString("\n")

	if top := analysis.TopContributors(s, topN); len(top) > 0 {
		fmt.Fprintf(&b, "## Top %d contributors\n\n", len(top))
		b.WriteString("| # | Leaf | Contribution |\n|---|------|--------------|\n")
		for i, c := range top {
			label := c.Label
			if label == "" {
				label = c.ID
			}
			fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, label, money(c.Value))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Leaves\n\n")
	b.WriteString("| Leaf | Probability | Impact |\n|------|-------------|--------|\n")
	for _, n := range s.Leaves() {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", label, optProb(n.Prob), optMoney(n.Impact))
	}

	return b.String()
}

// Sensitivity appends a what-if section comparing base and scaled runs.
func Sensitivity(leafID string, multiplier float64, base, scaled analysis.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## What-if: %s x %g\n\n", leafID, multiplier)
	b.WriteString("| Metric | Base | Scaled |\n|--------|------|--------|\n")
	fmt.Fprintf(&b, "| Top event probability | %s | %s |\n", pct(base.Probability), pct(scaled.Probability))
	fmt.Fprintf(&b, "| Expected loss | %s | %s |\n", money(base.ExpectedLoss), money(scaled.ExpectedLoss))
	return b.String()
}

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

func pct(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func optProb(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *p)
}

func optMoney(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return money(*v)
}
