package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Simplici0/shutterquote/internal/db"
	"github.com/Simplici0/shutterquote/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Manage the SQL schema",
	Long:      `Run, roll back, or report the embedded schema migrations. Defaults to up.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	action := "up"
	if len(args) == 1 {
		action = args[0]
	}

	database, driver, logger, err := openSQL(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()
	defer logger.Sync()

	dialect := db.Dialect(driver)
	switch action {
	case "up":
		err = migrations.Up(cmd.Context(), database, dialect)
	case "down":
		err = migrations.Down(cmd.Context(), database, dialect)
	}
	if err != nil {
		return err
	}

	version, err := migrations.Version(cmd.Context(), database, dialect)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, driver)
	return nil
}
