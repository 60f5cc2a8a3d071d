package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillvault/skillvault-service/internal/migrations"
)

const migrationDialect = "postgres"

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQLDB(cmd, func(a *app, db *sql.DB) error {
			return migrations.Up(cmd.Context(), db, migrationDialect, a.logger)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQLDB(cmd, func(a *app, db *sql.DB) error {
			return migrations.Down(cmd.Context(), db, migrationDialect, a.logger)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQLDB(cmd, func(a *app, db *sql.DB) error {
			version, err := migrations.Version(cmd.Context(), db, migrationDialect, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func withSQLDB(cmd *cobra.Command, fn func(a *app, db *sql.DB) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return fn(a, sqlDB)
}
