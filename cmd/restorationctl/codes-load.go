package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bcgov/restoration-tracker/pkg/codes"
	"github.com/bcgov/restoration-tracker/pkg/config"
	"github.com/bcgov/restoration-tracker/pkg/db"
)

// codesLoadCmd represents the codes load command
var codesLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load code table values from a YAML file",
	Long: `Load funding sources, investment action categories, regions,
treatment types and the IUCN classification hierarchy from a YAML file.

Values that already exist are left in place, so the same file can be
loaded more than once.

Example:
  restorationctl codes load codes.yml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := loadCodesFile(args[0])
		if err != nil {
			return err
		}

		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	},
}

func init() {
	codesCmd.AddCommand(codesLoadCmd)
}

// parseCodesFile reads and validates a codes file without touching the database.
func parseCodesFile(filename string) (*codes.Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open codes file: %w", err)
	}
	defer func() { _ = file.Close() }()

	doc, err := codes.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return doc, nil
}

func loadCodesFile(filename string) (*codes.Result, error) {
	doc, err := parseCodesFile(filename)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	conn, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
	if err != nil {
		return nil, err
	}

	result, err := codes.NewLoader(codes.NewGormStore(conn)).Load(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to load codes: %w", err)
	}
	return result, nil
}
