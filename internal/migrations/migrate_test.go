package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Simplici0/shutterquote/internal/db"
)

func TestUpAndDown(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, db.Options{
		Driver: db.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "migrate.db"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := Up(ctx, database, "sqlite3"); err != nil {
		t.Fatalf("Up: %v", err)
	}
	version, err := Version(ctx, database, "sqlite3")
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != 2 {
		t.Fatalf("version = %d, want 2", version)
	}

	if _, err := database.Exec(`INSERT INTO app_settings (id, c2_addition) VALUES (2, 1)`); err == nil {
		t.Fatalf("app_settings should only accept id = 1")
	}

	if err := Down(ctx, database, "sqlite3"); err != nil {
		t.Fatalf("Down: %v", err)
	}
	if _, err := database.Exec(`SELECT 1 FROM app_settings`); err == nil {
		t.Fatalf("app_settings should be dropped after Down")
	}
}
