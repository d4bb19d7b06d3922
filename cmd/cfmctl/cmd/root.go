package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cfmconsole/cfm/internal/db"
)

type globalFlags struct {
	driver     string
	connection string
}

// Root builds the cfmctl command tree. Database flags default to
// DB_DRIVER and DB_CONNECTION from the environment or a .env file.
func Root() *cobra.Command {
	_ = godotenv.Load()

	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "cfmctl",
		Short:        "Administration tools for the file management console",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.driver, "db-driver", envOr("DB_DRIVER", db.DriverSQLite), "database driver (sqlite or pgx)")
	root.PersistentFlags().StringVar(&flags.connection, "db", envOr("DB_CONNECTION", "./data/cfm.db"), "database connection string")

	root.AddCommand(MigrateCmd(flags))
	root.AddCommand(UserCmd(flags))
	return root
}

func (f *globalFlags) open(ctx context.Context) (*sqlx.DB, error) {
	conn, err := db.Init(ctx, f.driver, f.connection)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
