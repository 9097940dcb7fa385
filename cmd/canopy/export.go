package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"canopy/pkg/spec"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Convert an attack tree document to canonical YAML",
	Long: `Parses the document in any supported format and writes the normalized
tree back out as YAML, to stdout or to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSpec(cmd, args[0])
		if err != nil {
			return err
		}

		data, err := spec.Export(s)
		if err != nil {
			return err
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			return os.WriteFile(out, data, 0o644)
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", "", "Write to a file instead of stdout")
}
