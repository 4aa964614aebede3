// Package pricebook loads and edits the stored price tables and coefficients.
//
// Reads never fail: a store error is logged and the structural defaults are
// returned so the calculator stays usable. Writes surface their errors. The
// service holds no locks; callers serialise admin writes.
package pricebook

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/shutterquote/internal/pricing"
	"github.com/Simplici0/shutterquote/internal/store"
)

// ErrCellOutOfRange is returned when a cell index lies outside the family's matrix.
var ErrCellOutOfRange = errors.New("cell index out of range")

// Store is the table-store collaborator.
type Store interface {
	ReadCells(ctx context.Context, family pricing.Family) ([]pricing.Cell, error)
	UpsertCell(ctx context.Context, family pricing.Family, wIdx, hIdx int, price int64) error
	ReadCoefficients(ctx context.Context) (pricing.CoefficientsPatch, error)
	WriteCoefficients(ctx context.Context, patch pricing.CoefficientsPatch) error
}

// Service is the price-book facade used by the HTTP server and the CLI.
type Service struct {
	store  Store
	logger *zap.Logger
	scope  RebaseScope
}

// Option configures a Service.
type Option func(*Service)

// WithRebaseScope selects which cells the bulk rebase visits.
func WithRebaseScope(scope RebaseScope) Option {
	return func(s *Service) { s.scope = scope }
}

// New returns a Service over st.
func New(st Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: st, logger: logger, scope: ScopePersisted}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RebaseScope reports the configured rebase scope.
func (s *Service) RebaseScope() RebaseScope {
	return s.scope
}

// LoadTable returns the family's base matrix: stored cells over structural
// defaults. On a read error it logs and returns the default matrix.
func (s *Service) LoadTable(ctx context.Context, family pricing.Family) pricing.Matrix {
	cells, err := s.store.ReadCells(ctx, family)
	if err != nil {
		s.logger.Warn("read price table failed, using defaults",
			zap.String("family", string(family)),
			zap.Error(err))
		return pricing.DefaultMatrix(family)
	}
	return pricing.ResolveMatrix(family, cells)
}

// LoadCoefficients returns the stored coefficients over defaults. A missing
// row, a read error, or an invalid stored multiplier yields the default for
// the affected values; errors are logged.
func (s *Service) LoadCoefficients(ctx context.Context) pricing.Coefficients {
	defaults := pricing.DefaultCoefficients()

	stored, err := s.store.ReadCoefficients(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("read coefficients failed, using defaults", zap.Error(err))
		}
		return defaults
	}

	if stored.WoodMultiplier != nil {
		if err := pricing.ValidateWoodMultiplier(*stored.WoodMultiplier); err != nil {
			s.logger.Warn("ignoring stored wood multiplier",
				zap.Float64("stored", *stored.WoodMultiplier),
				zap.Error(err))
			stored.WoodMultiplier = nil
		}
	}

	coeffs, err := defaults.Apply(stored)
	if err != nil {
		s.logger.Warn("stored coefficients rejected, using defaults", zap.Error(err))
		return defaults
	}
	return coeffs
}

// SaveCell stores one base price.
func (s *Service) SaveCell(ctx context.Context, family pricing.Family, wIdx, hIdx int, price int64) error {
	if !family.InBounds(wIdx, hIdx) {
		widths, heights := family.Dimensions()
		return fmt.Errorf("%w: %s[%d][%d] (matrix is %dx%d)", ErrCellOutOfRange, family, wIdx, hIdx, widths, heights)
	}
	if err := s.store.UpsertCell(ctx, family, wIdx, hIdx, price); err != nil {
		return fmt.Errorf("save cell: %w", err)
	}
	s.logger.Info("price cell saved",
		zap.String("family", string(family)),
		zap.Int("width_index", wIdx),
		zap.Int("height_index", hIdx),
		zap.Int64("price", price))
	return nil
}

// SaveCoefficients validates patch against current and persists it. On any
// error current is returned unchanged; a validation error wraps
// pricing.ErrInvalidCoefficient and nothing is written.
func (s *Service) SaveCoefficients(ctx context.Context, current pricing.Coefficients, patch pricing.CoefficientsPatch) (pricing.Coefficients, error) {
	next, err := current.Apply(patch)
	if err != nil {
		return current, err
	}
	if patch.IsEmpty() {
		return current, nil
	}
	if err := s.store.WriteCoefficients(ctx, patch); err != nil {
		return current, fmt.Errorf("save coefficients: %w", err)
	}
	s.logger.Info("coefficients saved", zap.Any("coefficients", next))
	return next, nil
}

// Quote is a priced request.
type Quote struct {
	Family      pricing.Family `json:"product"`
	Variant     string         `json:"variant"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Found       bool           `json:"found"`
	Price       *int64         `json:"price"`
	WidthIndex  *int           `json:"widthIndex"`
	HeightIndex *int           `json:"heightIndex"`
	WidthLabel  string         `json:"widthLabel,omitempty"`
	HeightLabel string         `json:"heightLabel,omitempty"`
}

// Quote loads fresh table and coefficient snapshots and prices one request.
// Out-of-range dimensions produce a Quote with Found=false, not an error.
func (s *Service) Quote(ctx context.Context, family pricing.Family, width, height float64, variant string) (Quote, error) {
	q := Quote{Family: family, Variant: variant, Width: width, Height: height}

	matrix := s.LoadTable(ctx, family)
	coeffs := s.LoadCoefficients(ctx)

	price, ok, err := pricing.Price(family, width, height, variant, matrix, coeffs)
	if err != nil {
		return q, err
	}
	if !ok {
		return q, nil
	}

	wIdx, hIdx, _ := family.Locate(width, height)
	q.Found = true
	q.Price = &price
	q.WidthIndex = &wIdx
	q.HeightIndex = &hIdx
	q.WidthLabel = family.WidthRanges().Label(wIdx)
	q.HeightLabel = family.HeightRanges().Label(hIdx)
	return q, nil
}
