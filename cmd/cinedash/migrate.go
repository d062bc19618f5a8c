package main

import (
	"fmt"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/app"
	"github.com/spf13/cobra"
)

// migrateCmd manages the sqlite client storage schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the sqlite client storage schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := app.LoadConfig()

		db, err := app.OpenSQLite(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := db.ApplyMigrations(); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}

		return printVersion(cmd, db)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.OpenSQLite(app.LoadConfig())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		return printVersion(cmd, db)
	},
}

type versioner interface {
	MigrationVersion() (uint, bool, error)
}

func printVersion(cmd *cobra.Command, db versioner) error {
	version, dirty, err := db.MigrationVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if dirty {
		cmd.Printf("schema version %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("schema version %d\n", version)
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}
