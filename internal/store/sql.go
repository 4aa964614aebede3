package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/shutterquote/internal/db"
	"github.com/Simplici0/shutterquote/internal/pricing"
)

// SQLStore keeps unit_prices and app_settings in SQLite or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore wraps an open database. driver is db.DriverSQLite or db.DriverPostgres.
func NewSQLStore(database *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: database, driver: driver}
}

func (s *SQLStore) q(query string) string {
	return db.Rebind(s.driver, query)
}

// ReadCells returns the stored cells of a family ordered by width then height.
func (s *SQLStore) ReadCells(ctx context.Context, family pricing.Family) ([]pricing.Cell, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT width_index, height_index, c1_price
		FROM unit_prices
		WHERE product_type = ?
		ORDER BY width_index, height_index
	`), string(family))
	if err != nil {
		return nil, fmt.Errorf("query unit prices: %w", err)
	}
	defer rows.Close()

	cells := make([]pricing.Cell, 0)
	for rows.Next() {
		var c pricing.Cell
		if err := rows.Scan(&c.WidthIndex, &c.HeightIndex, &c.Price); err != nil {
			return nil, fmt.Errorf("scan unit price: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unit prices: %w", err)
	}

	return cells, nil
}

// UpsertCell writes one base price; an existing row for the key is replaced.
func (s *SQLStore) UpsertCell(ctx context.Context, family pricing.Family, wIdx, hIdx int, price int64) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO unit_prices (product_type, width_index, height_index, c1_price, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (product_type, width_index, height_index) DO UPDATE SET
			c1_price = excluded.c1_price,
			updated_at = CURRENT_TIMESTAMP
	`), string(family), wIdx, hIdx, price)
	if err != nil {
		return fmt.Errorf("upsert unit price %s[%d][%d]: %w", family, wIdx, hIdx, err)
	}
	return nil
}

// ReadCoefficients returns the stored settings. NULL columns come back as nil
// fields; ErrNotFound means the singleton row does not exist.
func (s *SQLStore) ReadCoefficients(ctx context.Context) (pricing.CoefficientsPatch, error) {
	var (
		c2, c3, dark, premium, global sql.NullInt64
		wood                          sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT c2_addition, c3_addition, wood_multiplier, dark_addition, premium_addition, global_addition
		FROM app_settings
		WHERE id = ?
	`), settingsID).Scan(&c2, &c3, &wood, &dark, &premium, &global)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.CoefficientsPatch{}, ErrNotFound
		}
		return pricing.CoefficientsPatch{}, fmt.Errorf("query app_settings: %w", err)
	}

	return pricing.CoefficientsPatch{
		C2Addition:      nullInt(c2),
		C3Addition:      nullInt(c3),
		WoodMultiplier:  nullFloat(wood),
		DarkAddition:    nullInt(dark),
		PremiumAddition: nullInt(premium),
		GlobalAddition:  nullInt(global),
	}, nil
}

// WriteCoefficients upserts the fields set in patch, creating the singleton
// row when needed. An empty patch is a no-op.
func (s *SQLStore) WriteCoefficients(ctx context.Context, patch pricing.CoefficientsPatch) error {
	cols, args := patchColumns(patch)
	if len(cols) == 0 {
		return nil
	}

	placeholders := make([]string, len(cols))
	updates := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = "?"
		updates[i] = col + " = excluded." + col
	}

	query := fmt.Sprintf(`
		INSERT INTO app_settings (id, %s, updated_at)
		VALUES (?, %s, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			%s,
			updated_at = CURRENT_TIMESTAMP
	`, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ",\n\t\t\t"))

	if _, err := s.db.ExecContext(ctx, s.q(query), append([]any{settingsID}, args...)...); err != nil {
		return fmt.Errorf("upsert app_settings: %w", err)
	}
	return nil
}

func patchColumns(p pricing.CoefficientsPatch) ([]string, []any) {
	var (
		cols []string
		args []any
	)
	add := func(col string, v any) {
		cols = append(cols, col)
		args = append(args, v)
	}
	if p.C2Addition != nil {
		add("c2_addition", *p.C2Addition)
	}
	if p.C3Addition != nil {
		add("c3_addition", *p.C3Addition)
	}
	if p.WoodMultiplier != nil {
		add("wood_multiplier", *p.WoodMultiplier)
	}
	if p.DarkAddition != nil {
		add("dark_addition", *p.DarkAddition)
	}
	if p.PremiumAddition != nil {
		add("premium_addition", *p.PremiumAddition)
	}
	if p.GlobalAddition != nil {
		add("global_addition", *p.GlobalAddition)
	}
	return cols, args
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
