package pricebook

import (
	"context"

	"github.com/Simplici0/shutterquote/internal/pricing"
)

// TableView is a family's full price table for one variant.
type TableView struct {
	Family       pricing.Family       `json:"product"`
	Variant      string               `json:"variant"`
	WidthLabels  []string             `json:"widthLabels"`
	HeightLabels []string             `json:"heightLabels"`
	BasePrices   pricing.Matrix       `json:"basePrices"`
	Prices       pricing.Matrix       `json:"prices"`
	Coefficients pricing.Coefficients `json:"coefficients"`
}

// Table loads fresh snapshots and renders every cell for variant. An empty
// variant selects the family's tier-0 variant.
func (s *Service) Table(ctx context.Context, family pricing.Family, variant string) (TableView, error) {
	return BuildTable(family, variant, s.LoadTable(ctx, family), s.LoadCoefficients(ctx))
}

// BuildTable renders a table view from already loaded snapshots.
func BuildTable(family pricing.Family, variant string, matrix pricing.Matrix, coeffs pricing.Coefficients) (TableView, error) {
	if variant == "" {
		variant = family.DefaultVariant()
	}

	prices := make(pricing.Matrix, len(matrix))
	for w, row := range matrix {
		prices[w] = make([]int64, len(row))
		for h, base := range row {
			p, err := pricing.CellPrice(family, base, variant, coeffs)
			if err != nil {
				return TableView{}, err
			}
			prices[w][h] = p
		}
	}

	return TableView{
		Family:       family,
		Variant:      variant,
		WidthLabels:  family.WidthRanges().Labels(),
		HeightLabels: family.HeightRanges().Labels(),
		BasePrices:   matrix,
		Prices:       prices,
		Coefficients: coeffs,
	}, nil
}
