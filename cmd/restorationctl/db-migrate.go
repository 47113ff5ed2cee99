package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bcgov/restoration-tracker/pkg/config"
	"github.com/bcgov/restoration-tracker/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations, including the seed
data for the code tables. The migrations are embedded in the binary; use
--migrations-dir to run them from disk instead.

Example:
  restorationctl db migrate
  restorationctl db migrate --migrations-dir db/migrations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := migrator(cmd)
		if err != nil {
			return err
		}
		version, err := m.Up()
		if err != nil {
			return err
		}
		fmt.Printf("Migrated to version: %d\n", version)
		return nil
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  restorationctl db down      # Rollback 1 migration
  restorationctl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}
		m, err := migrator(cmd)
		if err != nil {
			return err
		}
		version, err := m.Down(steps)
		if err != nil {
			return err
		}
		fmt.Printf("Rolled back to version: %d\n", version)
		return nil
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := migrator(cmd)
		if err != nil {
			return err
		}
		version, dirty, ok, err := m.Status()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No migrations applied")
			return nil
		}
		fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func migrator(cmd *cobra.Command) (db.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return db.Migrator{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	dir, _ := cmd.Flags().GetString("migrations-dir")
	return db.Migrator{URL: cfg.DatabaseURL, Dir: dir}, nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return steps, nil
}
