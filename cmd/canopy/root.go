package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"canopy"
	"canopy/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy quantifies attack trees",
	Long: `Canopy loads attack trees from YAML, JSON or XML, computes top event
probability and expected loss, and answers what-if questions about
individual attack steps.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("format", "", "Input format: yaml, json or xml (default: from file extension)")
}

// loadSpec reads and parses the tree at path. The format comes from the
// --format flag, falling back to the file extension.
func loadSpec(cmd *cobra.Command, path string) (*domain.Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	if format == "" {
		format = "yaml"
	}

	return canopy.Parse(data, format)
}
