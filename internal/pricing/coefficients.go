package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidCoefficient is returned when a coefficient value is rejected.
var ErrInvalidCoefficient = errors.New("invalid coefficient")

const (
	DefaultC2Addition      int64   = 180000
	DefaultC3Addition      int64   = 450000
	DefaultWoodMultiplier  float64 = 1.25
	DefaultDarkAddition    int64   = 187000
	DefaultPremiumAddition int64   = 440000
)

// SheetCoefficients are the flat additions for the C-2 and C-3 tiers, shared
// by every cell of the sheet matrix.
type SheetCoefficients struct {
	C2Addition int64 `json:"c2Addition"`
	C3Addition int64 `json:"c3Addition"`
}

// GarageSettings drive the garage variant algebra. GlobalAddition is not a
// standing modifier: it is an amount queued for the bulk rebase.
type GarageSettings struct {
	WoodMultiplier  float64 `json:"woodMultiplier"`
	DarkAddition    int64   `json:"darkAddition"`
	PremiumAddition int64   `json:"premiumAddition"`
	GlobalAddition  int64   `json:"globalAddition"`
}

// Coefficients is the singleton settings aggregate.
type Coefficients struct {
	Sheet  SheetCoefficients `json:"sheet"`
	Garage GarageSettings    `json:"garage"`
}

// DefaultCoefficients returns the values used when nothing is stored.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Sheet: SheetCoefficients{
			C2Addition: DefaultC2Addition,
			C3Addition: DefaultC3Addition,
		},
		Garage: GarageSettings{
			WoodMultiplier:  DefaultWoodMultiplier,
			DarkAddition:    DefaultDarkAddition,
			PremiumAddition: DefaultPremiumAddition,
		},
	}
}

// CoefficientsPatch is a partial coefficient update. Nil fields are left untouched.
type CoefficientsPatch struct {
	C2Addition      *int64   `json:"c2Addition,omitempty"`
	C3Addition      *int64   `json:"c3Addition,omitempty"`
	WoodMultiplier  *float64 `json:"woodMultiplier,omitempty"`
	DarkAddition    *int64   `json:"darkAddition,omitempty"`
	PremiumAddition *int64   `json:"premiumAddition,omitempty"`
	GlobalAddition  *int64   `json:"globalAddition,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CoefficientsPatch) IsEmpty() bool {
	return p.C2Addition == nil && p.C3Addition == nil && p.WoodMultiplier == nil &&
		p.DarkAddition == nil && p.PremiumAddition == nil && p.GlobalAddition == nil
}

// Validate checks every field the patch sets.
func (p CoefficientsPatch) Validate() error {
	if p.WoodMultiplier != nil {
		if err := ValidateWoodMultiplier(*p.WoodMultiplier); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns c with the patch applied. The patch is applied entirely or
// not at all: on a validation error c is returned unchanged.
func (c Coefficients) Apply(p CoefficientsPatch) (Coefficients, error) {
	if err := p.Validate(); err != nil {
		return c, err
	}
	out := c
	if p.C2Addition != nil {
		out.Sheet.C2Addition = *p.C2Addition
	}
	if p.C3Addition != nil {
		out.Sheet.C3Addition = *p.C3Addition
	}
	if p.WoodMultiplier != nil {
		out.Garage.WoodMultiplier = *p.WoodMultiplier
	}
	if p.DarkAddition != nil {
		out.Garage.DarkAddition = *p.DarkAddition
	}
	if p.PremiumAddition != nil {
		out.Garage.PremiumAddition = *p.PremiumAddition
	}
	if p.GlobalAddition != nil {
		out.Garage.GlobalAddition = *p.GlobalAddition
	}
	return out, nil
}

// ValidateWoodMultiplier rejects non-positive and non-finite multipliers.
func ValidateWoodMultiplier(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: wood multiplier must be finite", ErrInvalidCoefficient)
	}
	if v <= 0 {
		return fmt.Errorf("%w: wood multiplier must be greater than 0, got %v", ErrInvalidCoefficient, v)
	}
	return nil
}

// RebaseDelta converts a flat wood-tier addition into the amount added to
// each base cell: round(amount / woodMultiplier), half away from zero.
func RebaseDelta(amount int64, woodMultiplier float64) (int64, error) {
	if err := ValidateWoodMultiplier(woodMultiplier); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, nil
	}
	return decimal.NewFromInt(amount).
		Div(decimal.NewFromFloat(woodMultiplier)).
		Round(0).
		IntPart(), nil
}
