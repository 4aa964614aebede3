package config

import (
	"strings"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("REBASE_SCOPE", "")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.StoreBackend != BackendSQLite || cfg.DBPath != "./dev.db" || cfg.Port != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RebaseScope != "persisted" {
		t.Fatalf("RebaseScope = %q, want persisted", cfg.RebaseScope)
	}
	if !cfg.IsDev() || !cfg.ShouldMigrate() {
		t.Fatalf("default environment should be development")
	}
}

func TestParse_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Parse()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestParse_RejectsUnknownBackendAndScope(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("REBASE_SCOPE", "everything")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for unknown rebase scope")
	}
}

func TestShouldMigrate_Production(t *testing.T) {
	cfg := Config{AppEnv: "production"}
	if cfg.ShouldMigrate() {
		t.Fatalf("production should not migrate unless AUTO_MIGRATE is set")
	}
	cfg.AutoMigrate = true
	if !cfg.ShouldMigrate() {
		t.Fatalf("AUTO_MIGRATE should force migrations")
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{StoreBackend: BackendPostgres, DatabaseURL: "postgres://x", DBPath: "./dev.db"}
	if cfg.DSN() != "postgres://x" {
		t.Fatalf("DSN = %q", cfg.DSN())
	}
	cfg.StoreBackend = BackendSQLite
	if cfg.DSN() != "./dev.db" {
		t.Fatalf("DSN = %q", cfg.DSN())
	}
}
