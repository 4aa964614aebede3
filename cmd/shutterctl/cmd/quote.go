package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var quoteVariant string

var quoteCmd = &cobra.Command{
	Use:   "quote <product> <width-mm> <height-mm>",
	Short: "Price one shutter",
	Long: `Price one shutter from the current table and coefficients.

A size outside every range prints "가격 없음" and exits successfully.`,
	Args: cobra.ExactArgs(3),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().StringVar(&quoteVariant, "variant", "", "variant (C-1/C-2/C-3 or base/wood/dark/premium); defaults to the tier-0 variant")
}

func runQuote(cmd *cobra.Command, args []string) error {
	family, err := parseFamily(args[0])
	if err != nil {
		return err
	}
	width, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("width must be numeric: %w", err)
	}
	height, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("height must be numeric: %w", err)
	}
	variant := quoteVariant
	if variant == "" {
		variant = family.DefaultVariant()
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	q, err := e.svc.Quote(cmd.Context(), family, width, height, variant)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s  %gx%gmm\n", family.DisplayName(), variant, width, height)
	if !q.Found {
		fmt.Fprintln(out, "가격 없음")
		return nil
	}
	fmt.Fprintf(out, "  폭 %s / 높이 %s\n", q.WidthLabel, q.HeightLabel)
	fmt.Fprintf(out, "  %s\n", won(*q.Price))
	return nil
}
