package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfmconsole/cfm/internal/db"
)

func MigrateCmd(flags *globalFlags) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.RunMigrations(cmd.Context(), conn.DB, flags.driver); err != nil {
				return err
			}
			return printVersion(cmd, flags)
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.MigrateDown(cmd.Context(), conn.DB, flags.driver); err != nil {
				return err
			}
			return printVersion(cmd, flags)
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd, flags)
		},
	})

	return migrate
}

func printVersion(cmd *cobra.Command, flags *globalFlags) error {
	conn, err := flags.open(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	version, err := db.Version(cmd.Context(), conn.DB, flags.driver)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
	return nil
}
