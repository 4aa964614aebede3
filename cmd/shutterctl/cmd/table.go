package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var tableVariant string

var tableCmd = &cobra.Command{
	Use:   "table <product>",
	Short: "Print a product's price table",
	Long: `Print every cell of a product's price table for one variant.

Rows are width ranges, columns are height ranges.`,
	Args: cobra.ExactArgs(1),
	RunE: runTable,
}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.Flags().StringVar(&tableVariant, "variant", "", "variant to render; defaults to the tier-0 variant")
}

func runTable(cmd *cobra.Command, args []string) error {
	family, err := parseFamily(args[0])
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	view, err := e.svc.Table(cmd.Context(), family, tableVariant)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", family.DisplayName(), view.Variant)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "폭 \\ 높이\t%s\t\n", strings.Join(view.HeightLabels, "\t"))
	for w, label := range view.WidthLabels {
		cells := make([]string, len(view.Prices[w]))
		for h, p := range view.Prices[w] {
			cells[h] = humanize.Comma(p)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", label, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
