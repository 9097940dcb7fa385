package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"canopy/pkg/viz"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the attack tree as a Graphviz diagram",
	Long: `Outputs the tree in DOT format for rendering with Graphviz, for
example: canopy graph tree.yaml | dot -Tsvg -o tree.svg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSpec(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Print(viz.DOT(s))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
