package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Simplici0/shutterquote/internal/seed"
)

var seedDefaultCells bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert default settings and, optionally, default cells",
	Long: `Insert the default coefficient row if it is missing. With
--default-cells every cell without a stored price is stored at its
structural default. Existing rows are never changed.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&seedDefaultCells, "default-cells", false, "store default prices for every empty cell")
}

func runSeed(cmd *cobra.Command, args []string) error {
	database, driver, logger, err := openSQL(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()
	defer logger.Sync()

	stats, err := seed.Run(cmd.Context(), database, driver, seed.Options{DefaultCells: seedDefaultCells})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seed complete: %d rows inserted\n", stats.Inserts)
	return nil
}
