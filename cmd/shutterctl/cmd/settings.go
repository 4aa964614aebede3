package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Simplici0/shutterquote/internal/pricing"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change price coefficients",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current coefficients",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more coefficients",
	Long: `Change coefficients. Only the flags given are written; the rest keep
their stored values. An invalid value rejects the whole change.

--global-addition only queues an amount; run "shutterctl rebase" to fold it
into the garage base prices.`,
	Args: cobra.NoArgs,
	RunE: runSettingsSet,
}

var (
	setC2             int64
	setC3             int64
	setWoodMultiplier float64
	setDark           int64
	setPremium        int64
	setGlobalAddition int64
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	f := settingsSetCmd.Flags()
	f.Int64Var(&setC2, "c2", 0, "sheet C-2 addition")
	f.Int64Var(&setC3, "c3", 0, "sheet C-3 addition")
	f.Float64Var(&setWoodMultiplier, "wood-multiplier", 0, "garage wood multiplier (> 0)")
	f.Int64Var(&setDark, "dark", 0, "garage dark addition on top of wood")
	f.Int64Var(&setPremium, "premium", 0, "garage premium addition on top of wood")
	f.Int64Var(&setGlobalAddition, "global-addition", 0, "garage wood-tier amount queued for rebase")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	printCoefficients(cmd.OutOrStdout(), e.svc.LoadCoefficients(cmd.Context()))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	patch := settingsPatchFromFlags(cmd)
	if patch.IsEmpty() {
		return fmt.Errorf("no coefficient flags given")
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	current := e.svc.LoadCoefficients(cmd.Context())
	next, err := e.svc.SaveCoefficients(cmd.Context(), current, patch)
	if err != nil {
		return err
	}
	printCoefficients(cmd.OutOrStdout(), next)
	return nil
}

func settingsPatchFromFlags(cmd *cobra.Command) pricing.CoefficientsPatch {
	flags := cmd.Flags()
	var patch pricing.CoefficientsPatch
	if flags.Changed("c2") {
		patch.C2Addition = &setC2
	}
	if flags.Changed("c3") {
		patch.C3Addition = &setC3
	}
	if flags.Changed("wood-multiplier") {
		patch.WoodMultiplier = &setWoodMultiplier
	}
	if flags.Changed("dark") {
		patch.DarkAddition = &setDark
	}
	if flags.Changed("premium") {
		patch.PremiumAddition = &setPremium
	}
	if flags.Changed("global-addition") {
		patch.GlobalAddition = &setGlobalAddition
	}
	return patch
}

func printCoefficients(w io.Writer, c pricing.Coefficients) {
	fmt.Fprintln(w, pricing.FamilySheet.DisplayName())
	fmt.Fprintf(w, "  C-2 추가금      %s\n", won(c.Sheet.C2Addition))
	fmt.Fprintf(w, "  C-3 추가금      %s\n", won(c.Sheet.C3Addition))
	fmt.Fprintln(w, pricing.FamilyGarage.DisplayName())
	fmt.Fprintf(w, "  우드 배율       %g\n", c.Garage.WoodMultiplier)
	fmt.Fprintf(w, "  다크 추가금     %s\n", won(c.Garage.DarkAddition))
	fmt.Fprintf(w, "  프리미엄 추가금 %s\n", won(c.Garage.PremiumAddition))
	fmt.Fprintf(w, "  일괄 추가금     %s\n", won(c.Garage.GlobalAddition))
}
