package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/shutterquote/internal/db"
	"github.com/Simplici0/shutterquote/internal/pricing"
)

// Options selects what the startup seed writes.
type Options struct {
	// DefaultCells stores the structural default price for every cell that
	// has no stored value, for both product families.
	DefaultCells bool
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in one transaction. It is idempotent: rows
// that already exist are never modified.
func Run(ctx context.Context, database *sql.DB, driver string, opts Options) (Stats, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureSettings(ctx, tx, driver, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if opts.DefaultCells {
		for _, family := range pricing.Families {
			if err := ensureDefaultCells(ctx, tx, driver, family, &stats); err != nil {
				_ = tx.Rollback()
				return Stats{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, driver string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM app_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check app settings existence: %w", err)
	}
	if exists {
		return nil
	}

	d := pricing.DefaultCoefficients()
	if _, err := tx.ExecContext(ctx, db.Rebind(driver, `
		INSERT INTO app_settings (
			id,
			c2_addition,
			c3_addition,
			wood_multiplier,
			dark_addition,
			premium_addition,
			global_addition
		)
		VALUES (1, ?, ?, ?, ?, ?, ?)
	`),
		d.Sheet.C2Addition,
		d.Sheet.C3Addition,
		d.Garage.WoodMultiplier,
		d.Garage.DarkAddition,
		d.Garage.PremiumAddition,
		d.Garage.GlobalAddition,
	); err != nil {
		return fmt.Errorf("insert app settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureDefaultCells(ctx context.Context, tx *sql.Tx, driver string, family pricing.Family, stats *Stats) error {
	insert := db.Rebind(driver, `
		INSERT INTO unit_prices (product_type, width_index, height_index, c1_price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (product_type, width_index, height_index) DO NOTHING
	`)

	widths, heights := family.Dimensions()
	for w := 0; w < widths; w++ {
		for h := 0; h < heights; h++ {
			res, err := tx.ExecContext(ctx, insert, string(family), w, h, pricing.DefaultPrice(w, h))
			if err != nil {
				return fmt.Errorf("insert default cell %s[%d][%d]: %w", family, w, h, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("insert default cell %s[%d][%d]: %w", family, w, h, err)
			}
			stats.Inserts += int(affected)
		}
	}
	return nil
}
