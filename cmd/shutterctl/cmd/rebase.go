package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Simplici0/shutterquote/internal/pricebook"
)

var rebaseAmount int64

var rebaseCmd = &cobra.Command{
	Use:   "rebase",
	Short: "Fold a wood-tier addition into the garage base prices",
	Long: `Add round(amount / woodMultiplier) to garage base prices so every wood
price rises by about amount, then reset the stored global addition to 0.

Without --amount the stored global addition is used. REBASE_SCOPE selects
whether only stored cells (persisted) or every cell (full) is written.
A failure part way leaves the cells already written rebased.`,
	Args: cobra.NoArgs,
	RunE: runRebase,
}

func init() {
	rootCmd.AddCommand(rebaseCmd)
	rebaseCmd.Flags().Int64Var(&rebaseAmount, "amount", 0, "wood-tier amount; defaults to the stored global addition")
}

func runRebase(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	var res pricebook.RebaseResult
	if cmd.Flags().Changed("amount") {
		coeffs := e.svc.LoadCoefficients(cmd.Context())
		res, err = e.svc.ApplyGlobalAddition(cmd.Context(), rebaseAmount, coeffs.Garage.WoodMultiplier)
	} else {
		res, err = e.svc.ApplyPendingGlobalAddition(cmd.Context())
	}

	out := cmd.OutOrStdout()
	if err != nil {
		var rebaseErr *pricebook.RebaseError
		if errors.As(err, &rebaseErr) {
			fmt.Fprintf(out, "rebase stopped: %d of %d cells written and kept\n", rebaseErr.Applied, rebaseErr.Total)
		}
		return err
	}
	if res.Skipped {
		fmt.Fprintf(out, "nothing to rebase (amount %s, delta %s)\n", won(res.Amount), won(res.DeltaToBase))
		return nil
	}
	fmt.Fprintf(out, "rebased %d %s cells by %s (amount %s / multiplier %g)\n",
		res.CellsUpdated, res.Scope, won(res.DeltaToBase), won(res.Amount), res.WoodMultiplier)
	return nil
}
