package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"canopy/internal/demo"
	"canopy/internal/report"
	"canopy/pkg/analysis"
	"canopy/pkg/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Evaluate an attack tree and print the analysis report",
	Long: `Computes top event probability, expected loss and the top contributing
attack steps, and prints them as a rendered report. Trees with missing
leaf values still produce a report marking those results unavailable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveInput(cmd, args)
		if err != nil {
			return err
		}

		topN, _ := cmd.Flags().GetInt("top")
		md := report.Markdown(s, topN)

		if whatIf, _ := cmd.Flags().GetString("what-if"); whatIf != "" {
			leaf, mult, err := parseWhatIf(whatIf)
			if err != nil {
				return err
			}
			base, err := analysis.Preview(s, leaf, 1.0)
			if err != nil {
				return fmt.Errorf("baseline: %w", err)
			}
			scaled, err := analysis.Preview(s, leaf, mult)
			if err != nil {
				return fmt.Errorf("what-if: %w", err)
			}
			md += "\n" + report.Sensitivity(leaf, mult, base, scaled)
		}

		fmt.Print(render(cmd, md))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Int("top", 3, "How many contributors to rank")
	analyzeCmd.Flags().String("what-if", "", "Scale one leaf's probability, e.g. --what-if phish-staff=0.5")
	analyzeCmd.Flags().String("demo", "", "Analyze an embedded demo scenario instead of a file ("+strings.Join(demo.Names(), ", ")+")")
	analyzeCmd.Flags().Bool("raw", false, "Print plain markdown without terminal rendering")
}

func resolveInput(cmd *cobra.Command, args []string) (*domain.Specification, error) {
	if scenario, _ := cmd.Flags().GetString("demo"); scenario != "" {
		return demo.Load(scenario)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("either a file argument or --demo is required")
	}
	return loadSpec(cmd, args[0])
}

func parseWhatIf(arg string) (string, float64, error) {
	leaf, raw, ok := strings.Cut(arg, "=")
	if !ok || leaf == "" {
		return "", 0, fmt.Errorf("--what-if wants leaf=multiplier, got %q", arg)
	}
	mult, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("--what-if multiplier %q is not a number", raw)
	}
	return leaf, mult, nil
}

// render runs the markdown through glamour when stdout is a terminal,
// and passes it through untouched for pipes and --raw.
func render(cmd *cobra.Command, md string) string {
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		return md
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}
	out, err := report.NewRenderer()(md)
	if err != nil {
		return md
	}
	return out
}
