package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/staybook/staybook-api/internal/config"
	"github.com/staybook/staybook-api/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(database *sqlx.DB, driver string) error {
					err := db.RunMigrations(database.DB, driver)
					if err != nil {
						return err
					}
					return printVersion(cmd, database, driver)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(database *sqlx.DB, driver string) error {
					err := db.MigrateDown(database.DB, driver)
					if err != nil {
						return err
					}
					return printVersion(cmd, database, driver)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(database *sqlx.DB, driver string) error {
					return printVersion(cmd, database, driver)
				})
			},
		},
	)

	return cmd
}

func withDB(fn func(database *sqlx.DB, driver string) error) error {
	driver, connection := config.LoadDatabase()

	database, err := db.Init(driver, connection)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		_ = db.Close(database)
	}()

	return fn(database, driver)
}

func printVersion(cmd *cobra.Command, database *sqlx.DB, driver string) error {
	version, err := db.MigrationVersion(database.DB, driver)
	if err != nil {
		return err
	}
	cmd.Printf("schema version: %d (%s)\n", version, driver)
	return nil
}
