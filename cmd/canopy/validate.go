package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check an attack tree document for structural problems",
	Long: `Parses and normalizes the document, reporting the first structural
violation: missing root, unknown child references, conflicting duplicate
declarations or malformed syntax. A valid document prints a summary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSpec(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s is valid: %d nodes, %d leaves, root %q\n",
			args[0], s.Len(), len(s.Leaves()), s.Root)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
