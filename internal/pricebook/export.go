package pricebook

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/shutterquote/internal/pricing"
)

const cornerHeader = "폭 \\ 높이"

// ExportWorkbook writes every variant table of the given families as an
// XLSX workbook, one worksheet per family and variant. Snapshots are loaded
// once per family.
func (s *Service) ExportWorkbook(ctx context.Context, w io.Writer, families ...pricing.Family) error {
	if len(families) == 0 {
		families = pricing.Families
	}
	coeffs := s.LoadCoefficients(ctx)

	var views []TableView
	for _, family := range families {
		matrix := s.LoadTable(ctx, family)
		for _, variant := range family.Variants() {
			view, err := BuildTable(family, variant, matrix, coeffs)
			if err != nil {
				return err
			}
			views = append(views, view)
		}
	}
	return WriteWorkbook(w, views...)
}

// WriteWorkbook renders table views as XLSX: width labels down column A,
// height labels across row 1.
func WriteWorkbook(w io.Writer, views ...TableView) error {
	if len(views) == 0 {
		return fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	priceStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return fmt.Errorf("create price style: %w", err)
	}

	for i, view := range views {
		name := SheetName(view)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeTableSheet(f, name, view, headerStyle, priceStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SheetName is the worksheet name used for a view.
func SheetName(view TableView) string {
	return string(view.Family) + " " + view.Variant
}

func writeTableSheet(f *excelize.File, sheet string, view TableView, headerStyle, priceStyle int) error {
	if err := f.SetCellValue(sheet, "A1", cornerHeader); err != nil {
		return err
	}
	for h, label := range view.HeightLabels {
		cell, err := excelize.CoordinatesToCellName(h+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
	}

	for wIdx, label := range view.WidthLabels {
		row := wIdx + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
		for h := range view.HeightLabels {
			cell, err := excelize.CoordinatesToCellName(h+2, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, view.Prices.At(wIdx, h)); err != nil {
				return err
			}
		}
	}

	lastCol := len(view.HeightLabels) + 1
	lastRow := len(view.WidthLabels) + 1
	topRight, _ := excelize.CoordinatesToCellName(lastCol, 1)
	bottomLeft, _ := excelize.CoordinatesToCellName(1, lastRow)
	bottomRight, _ := excelize.CoordinatesToCellName(lastCol, lastRow)

	if err := f.SetCellStyle(sheet, "A1", topRight, headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A2", bottomLeft, headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B2", bottomRight, priceStyle); err != nil {
		return fmt.Errorf("style prices on %q: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "A", 14)
}
