package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/shutterquote/internal/pricing"
)

var (
	exportOut     string
	exportProduct string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write price tables to an XLSX workbook",
	Long: `Write every variant table to an XLSX workbook, one sheet per product
and variant.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "price-tables.xlsx", "output file")
	exportCmd.Flags().StringVar(&exportProduct, "product", "", "limit the export to one product")
}

func runExport(cmd *cobra.Command, args []string) error {
	var families []pricing.Family
	if exportProduct != "" {
		family, err := parseFamily(exportProduct)
		if err != nil {
			return err
		}
		families = append(families, family)
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOut, err)
	}
	if err := e.svc.ExportWorkbook(cmd.Context(), f, families...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", exportOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", exportOut)
	return nil
}
