package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var setCellCmd = &cobra.Command{
	Use:   "set-cell <product> <width-index> <height-index> <price>",
	Short: "Store one base price",
	Long: `Store the base price of one table cell. Indices are zero-based
positions in the product's width and height ranges (see "shutterctl table").`,
	Args: cobra.ExactArgs(4),
	RunE: runSetCell,
}

func init() {
	rootCmd.AddCommand(setCellCmd)
}

func runSetCell(cmd *cobra.Command, args []string) error {
	family, err := parseFamily(args[0])
	if err != nil {
		return err
	}
	wIdx, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("width index must be an integer: %w", err)
	}
	hIdx, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("height index must be an integer: %w", err)
	}
	price, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("price must be an integer: %w", err)
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.svc.SaveCell(cmd.Context(), family, wIdx, hIdx, price); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [%s / %s] = %s\n",
		family.DisplayName(),
		family.WidthRanges().Label(wIdx),
		family.HeightRanges().Label(hIdx),
		won(price))
	return nil
}
