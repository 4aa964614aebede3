package pricebook

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/shutterquote/internal/pricing"
)

// RebaseScope selects the cells a bulk rebase writes.
type RebaseScope string

const (
	// ScopePersisted visits only cells with a stored price. Defaulted cells
	// keep their structural default.
	ScopePersisted RebaseScope = "persisted"
	// ScopeFull visits every cell of the resolved matrix and stores the
	// shifted value, so defaulted cells become stored cells.
	ScopeFull RebaseScope = "full"
)

// ParseRebaseScope validates a scope name.
func ParseRebaseScope(raw string) (RebaseScope, error) {
	switch s := RebaseScope(raw); s {
	case ScopePersisted, ScopeFull:
		return s, nil
	}
	return "", fmt.Errorf("unknown rebase scope %q", raw)
}

// RebaseResult describes a completed bulk rebase.
type RebaseResult struct {
	Amount         int64       `json:"amount"`
	WoodMultiplier float64     `json:"woodMultiplier"`
	DeltaToBase    int64       `json:"deltaToBase"`
	Scope          RebaseScope `json:"scope"`
	CellsUpdated   int         `json:"cellsUpdated"`
	// Skipped is true when the amount or its rounded delta was zero.
	Skipped bool `json:"skipped"`
}

// RebaseError reports a bulk rebase that stopped part way. Cells written
// before the failure stay rebased.
type RebaseError struct {
	Applied int
	Total   int
	Err     error
}

func (e *RebaseError) Error() string {
	return fmt.Sprintf("global addition rebase stopped after %d of %d cells: %v", e.Applied, e.Total, e.Err)
}

func (e *RebaseError) Unwrap() error {
	return e.Err
}

// ApplyGlobalAddition folds a flat wood-tier addition into the stored garage
// base prices: every visited cell gains round(amount / woodMultiplier). The
// stored globalAddition is reset to 0 afterwards.
//
// The batch is best effort. The first write failure stops it and is
// returned as a *RebaseError; earlier writes are not rolled back and
// globalAddition keeps its value.
func (s *Service) ApplyGlobalAddition(ctx context.Context, amount int64, woodMultiplier float64) (RebaseResult, error) {
	res := RebaseResult{Amount: amount, WoodMultiplier: woodMultiplier, Scope: s.scope}

	delta, err := pricing.RebaseDelta(amount, woodMultiplier)
	if err != nil {
		return res, err
	}
	res.DeltaToBase = delta
	if amount == 0 || delta == 0 {
		res.Skipped = true
		s.logger.Info("global addition rebase skipped",
			zap.Int64("amount", amount),
			zap.Float64("wood_multiplier", woodMultiplier))
		return res, nil
	}

	cells, err := s.rebaseTargets(ctx)
	if err != nil {
		return res, err
	}

	for i, c := range cells {
		if err := s.store.UpsertCell(ctx, pricing.FamilyGarage, c.WidthIndex, c.HeightIndex, c.Price+delta); err != nil {
			s.logger.Error("global addition rebase interrupted",
				zap.Int("applied", i),
				zap.Int("total", len(cells)),
				zap.Error(err))
			return res, &RebaseError{Applied: i, Total: len(cells), Err: err}
		}
		res.CellsUpdated++
	}

	zero := int64(0)
	if err := s.store.WriteCoefficients(ctx, pricing.CoefficientsPatch{GlobalAddition: &zero}); err != nil {
		s.logger.Error("cells rebased but global addition was not cleared",
			zap.Int("cells_updated", res.CellsUpdated),
			zap.Error(err))
		return res, fmt.Errorf("clear global addition: %w", err)
	}

	s.logger.Info("global addition rebased into garage table",
		zap.Int64("amount", amount),
		zap.Int64("delta_to_base", delta),
		zap.String("scope", string(s.scope)),
		zap.Int("cells_updated", res.CellsUpdated))
	return res, nil
}

// ApplyPendingGlobalAddition rebases the stored globalAddition using the
// stored wood multiplier.
func (s *Service) ApplyPendingGlobalAddition(ctx context.Context) (RebaseResult, error) {
	coeffs := s.LoadCoefficients(ctx)
	return s.ApplyGlobalAddition(ctx, coeffs.Garage.GlobalAddition, coeffs.Garage.WoodMultiplier)
}

// rebaseTargets reads the cells to shift. Unlike LoadTable, a read error is
// returned: rebasing defaults after a failed read would overwrite stored prices.
func (s *Service) rebaseTargets(ctx context.Context) ([]pricing.Cell, error) {
	stored, err := s.store.ReadCells(ctx, pricing.FamilyGarage)
	if err != nil {
		return nil, fmt.Errorf("read garage cells for rebase: %w", err)
	}
	if s.scope != ScopeFull {
		return stored, nil
	}

	matrix := pricing.ResolveMatrix(pricing.FamilyGarage, stored)
	cells := make([]pricing.Cell, 0, len(matrix)*len(matrix[0]))
	for w, row := range matrix {
		for h, price := range row {
			cells = append(cells, pricing.Cell{WidthIndex: w, HeightIndex: h, Price: price})
		}
	}
	return cells, nil
}
