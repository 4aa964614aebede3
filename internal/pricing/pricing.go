package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/shutterquote/internal/ranges"
)

var (
	// ErrUnknownFamily is returned when a product family name is not recognised.
	ErrUnknownFamily = errors.New("unknown product family")
	// ErrUnknownVariant is returned when a variant name does not belong to the family.
	ErrUnknownVariant = errors.New("unknown variant")
)

// Family identifies a product line with its own range tables and price matrix.
type Family string

const (
	FamilySheet  Family = "sheet_shutter"
	FamilyGarage Family = "garage_shutter"
)

// Families lists every product family in display order.
var Families = []Family{FamilySheet, FamilyGarage}

// ParseFamily validates a product family name.
func ParseFamily(raw string) (Family, error) {
	switch f := Family(raw); f {
	case FamilySheet, FamilyGarage:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFamily, raw)
}

// DisplayName returns the Korean product name shown on quotes.
func (f Family) DisplayName() string {
	switch f {
	case FamilySheet:
		return "시트셔터"
	case FamilyGarage:
		return "차고셔터"
	}
	return string(f)
}

// WidthRanges returns the width buckets of the family.
func (f Family) WidthRanges() ranges.Sequence {
	if f == FamilyGarage {
		return ranges.GarageWidth
	}
	return ranges.SheetWidth
}

// HeightRanges returns the height buckets of the family.
func (f Family) HeightRanges() ranges.Sequence {
	if f == FamilyGarage {
		return ranges.GarageHeight
	}
	return ranges.SheetHeight
}

// Locate buckets a width and height. ok is false when either dimension is
// outside the family's ranges.
func (f Family) Locate(width, height float64) (wIdx, hIdx int, ok bool) {
	wIdx, wok := ranges.IndexOf(f.WidthRanges(), width)
	hIdx, hok := ranges.IndexOf(f.HeightRanges(), height)
	if !wok || !hok {
		return -1, -1, false
	}
	return wIdx, hIdx, true
}

// SheetVariant is the C-type finish of a sheet shutter.
type SheetVariant string

const (
	SheetC1 SheetVariant = "C-1"
	SheetC2 SheetVariant = "C-2"
	SheetC3 SheetVariant = "C-3"
)

// SheetVariants lists the sheet variants in tier order.
var SheetVariants = []SheetVariant{SheetC1, SheetC2, SheetC3}

// ParseSheetVariant validates a sheet variant name.
func ParseSheetVariant(raw string) (SheetVariant, error) {
	switch v := SheetVariant(raw); v {
	case SheetC1, SheetC2, SheetC3:
		return v, nil
	}
	return "", fmt.Errorf("%w: sheet variant %q", ErrUnknownVariant, raw)
}

// GarageVariant is the panel tier of a garage shutter.
type GarageVariant string

const (
	GarageBase    GarageVariant = "base"
	GarageWood    GarageVariant = "wood"
	GarageDark    GarageVariant = "dark"
	GaragePremium GarageVariant = "premium"
)

// GarageVariants lists the garage variants in tier order.
var GarageVariants = []GarageVariant{GarageBase, GarageWood, GarageDark, GaragePremium}

// ParseGarageVariant validates a garage variant name.
func ParseGarageVariant(raw string) (GarageVariant, error) {
	switch v := GarageVariant(raw); v {
	case GarageBase, GarageWood, GarageDark, GaragePremium:
		return v, nil
	}
	return "", fmt.Errorf("%w: garage variant %q", ErrUnknownVariant, raw)
}

// Variants returns the variant names valid for the family.
func (f Family) Variants() []string {
	if f == FamilyGarage {
		out := make([]string, len(GarageVariants))
		for i, v := range GarageVariants {
			out[i] = string(v)
		}
		return out
	}
	out := make([]string, len(SheetVariants))
	for i, v := range SheetVariants {
		out[i] = string(v)
	}
	return out
}

// DefaultVariant returns the tier-0 variant of the family.
func (f Family) DefaultVariant() string {
	if f == FamilyGarage {
		return string(GarageBase)
	}
	return string(SheetC1)
}

// PriceSheet computes a sheet-shutter price. ok is false when the dimensions
// fall outside every range or the variant is unknown.
func PriceSheet(width, height float64, variant SheetVariant, matrix Matrix, coeffs SheetCoefficients) (int64, bool) {
	wIdx, hIdx, ok := FamilySheet.Locate(width, height)
	if !ok {
		return 0, false
	}
	return SheetDisplayPrice(matrix.At(wIdx, hIdx), variant, coeffs)
}

// SheetDisplayPrice applies the sheet variant addition to a known base price.
func SheetDisplayPrice(base int64, variant SheetVariant, coeffs SheetCoefficients) (int64, bool) {
	switch variant {
	case SheetC1:
		return base, true
	case SheetC2:
		return base + coeffs.C2Addition, true
	case SheetC3:
		return base + coeffs.C3Addition, true
	}
	return 0, false
}

// PriceGarage computes a garage-shutter price. ok is false when the
// dimensions fall outside the 0..6000 x 0..2700 coverage or the variant is
// unknown.
func PriceGarage(width, height float64, variant GarageVariant, matrix Matrix, settings GarageSettings) (int64, bool) {
	wIdx, hIdx, ok := FamilyGarage.Locate(width, height)
	if !ok {
		return 0, false
	}
	return DisplayPrice(matrix.At(wIdx, hIdx), variant, settings)
}

// DisplayPrice applies the garage variant to a known base price. Dark and
// premium are added on top of the wood price, not the base.
func DisplayPrice(base int64, variant GarageVariant, settings GarageSettings) (int64, bool) {
	if variant == GarageBase {
		return base, true
	}
	wood := WoodPrice(base, settings.WoodMultiplier)
	switch variant {
	case GarageWood:
		return wood, true
	case GarageDark:
		return wood + settings.DarkAddition, true
	case GaragePremium:
		return wood + settings.PremiumAddition, true
	}
	return 0, false
}

// WoodPrice returns round(base * multiplier), rounding half away from zero.
func WoodPrice(base int64, multiplier float64) int64 {
	return decimal.NewFromInt(base).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(0).
		IntPart()
}

// Price dispatches on family and parses the variant name. It is the entry
// point for outer surfaces that carry the variant as a string.
func Price(family Family, width, height float64, variant string, matrix Matrix, coeffs Coefficients) (int64, bool, error) {
	switch family {
	case FamilySheet:
		v, err := ParseSheetVariant(variant)
		if err != nil {
			return 0, false, err
		}
		price, ok := PriceSheet(width, height, v, matrix, coeffs.Sheet)
		return price, ok, nil
	case FamilyGarage:
		v, err := ParseGarageVariant(variant)
		if err != nil {
			return 0, false, err
		}
		price, ok := PriceGarage(width, height, v, matrix, coeffs.Garage)
		return price, ok, nil
	}
	return 0, false, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
}

// CellPrice returns the display price of one matrix cell for the variant.
func CellPrice(family Family, base int64, variant string, coeffs Coefficients) (int64, error) {
	switch family {
	case FamilySheet:
		v, err := ParseSheetVariant(variant)
		if err != nil {
			return 0, err
		}
		price, _ := SheetDisplayPrice(base, v, coeffs.Sheet)
		return price, nil
	case FamilyGarage:
		v, err := ParseGarageVariant(variant)
		if err != nil {
			return 0, err
		}
		price, _ := DisplayPrice(base, v, coeffs.Garage)
		return price, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
}
