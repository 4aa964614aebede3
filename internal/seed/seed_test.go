package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Simplici0/shutterquote/internal/db"
	"github.com/Simplici0/shutterquote/internal/migrations"
)

func newSeedTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, db.Options{
		Driver: db.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "seed-test.db"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(ctx, database, db.Dialect(db.DriverSQLite)); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	database := newSeedTestDB(t)

	for i := 0; i < 5; i++ {
		stats, err := Run(context.Background(), database, db.DriverSQLite, Options{})
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		want := 0
		if i == 0 {
			want = 1
		}
		if stats.Inserts != want {
			t.Fatalf("iteration %d: expected %d inserts, got %d", i, want, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM app_settings WHERE id = 1`, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM unit_prices`, 0)

	var c2, c3, dark, premium, global int64
	var wood float64
	if err := database.QueryRow(`
		SELECT c2_addition, c3_addition, wood_multiplier, dark_addition, premium_addition, global_addition
		FROM app_settings WHERE id = 1
	`).Scan(&c2, &c3, &wood, &dark, &premium, &global); err != nil {
		t.Fatalf("query settings: %v", err)
	}
	if c2 != 180000 || c3 != 450000 || wood != 1.25 || dark != 187000 || premium != 440000 || global != 0 {
		t.Fatalf("unexpected seeded settings: %d %d %v %d %d %d", c2, c3, wood, dark, premium, global)
	}
}

func TestRunDefaultCellsFillsOnlyMissingCells(t *testing.T) {
	database := newSeedTestDB(t)

	if _, err := database.Exec(`
		INSERT INTO unit_prices (product_type, width_index, height_index, c1_price)
		VALUES ('garage_shutter', 0, 0, 123)
	`); err != nil {
		t.Fatalf("insert existing cell: %v", err)
	}

	stats, err := Run(context.Background(), database, db.DriverSQLite, Options{DefaultCells: true})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	// settings row + 20*11 sheet cells + 7*3 garage cells - 1 existing cell
	if want := 1 + 220 + 21 - 1; stats.Inserts != want {
		t.Fatalf("inserts = %d, want %d", stats.Inserts, want)
	}

	assertCount(t, database, `SELECT COUNT(*) FROM unit_prices WHERE product_type = 'sheet_shutter'`, 220)
	assertCount(t, database, `SELECT COUNT(*) FROM unit_prices WHERE product_type = 'garage_shutter'`, 21)

	var kept int64
	if err := database.QueryRow(`
		SELECT c1_price FROM unit_prices
		WHERE product_type = 'garage_shutter' AND width_index = 0 AND height_index = 0
	`).Scan(&kept); err != nil {
		t.Fatalf("query kept cell: %v", err)
	}
	if kept != 123 {
		t.Fatalf("existing cell overwritten: %d", kept)
	}

	again, err := Run(context.Background(), database, db.DriverSQLite, Options{DefaultCells: true})
	if err != nil {
		t.Fatalf("second seed run: %v", err)
	}
	if again.Inserts != 0 {
		t.Fatalf("second run inserted %d rows", again.Inserts)
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, expected int) {
	t.Helper()

	var count int
	if err := database.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
