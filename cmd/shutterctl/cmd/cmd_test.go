package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func setupEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "cli-test.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REBASE_SCOPE", "persisted")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("shutterctl %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// Flag state survives between Execute calls, so the admin flow runs as one
// ordered test.
func TestAdminWorkflow(t *testing.T) {
	setupEnv(t)

	mustRun(t, "set-cell", "garage_shutter", "0", "0", "600000")

	out := mustRun(t, "quote", "garage_shutter", "1500", "2000", "--variant", "wood")
	if !strings.Contains(out, "750,000원") {
		t.Fatalf("quote output missing wood price:\n%s", out)
	}

	out = mustRun(t, "settings", "set", "--global-addition", "50000")
	if !strings.Contains(out, "50,000원") {
		t.Fatalf("settings output missing global addition:\n%s", out)
	}

	out = mustRun(t, "rebase")
	if !strings.Contains(out, "rebased 1 persisted cells by 40,000원") {
		t.Fatalf("unexpected rebase output:\n%s", out)
	}

	out = mustRun(t, "quote", "garage_shutter", "1500", "2000", "--variant", "wood")
	if !strings.Contains(out, "800,000원") {
		t.Fatalf("quote after rebase:\n%s", out)
	}

	out = mustRun(t, "settings", "show")
	if !strings.Contains(out, "일괄 추가금     0원") {
		t.Fatalf("global addition not cleared:\n%s", out)
	}

	out = mustRun(t, "rebase", "--amount", "0")
	if !strings.Contains(out, "nothing to rebase") {
		t.Fatalf("zero amount should be skipped:\n%s", out)
	}
}

func TestQuoteOutOfRange(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "quote", "sheet_shutter", "500", "1000", "--variant", "C-1")
	if !strings.Contains(out, "가격 없음") {
		t.Fatalf("expected no-price output:\n%s", out)
	}
}

func TestQuoteRejectsUnknownProduct(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "quote", "door", "1000", "1000", "--variant", "C-1"); err == nil {
		t.Fatalf("expected error for unknown product")
	}
}

func TestSetCellOutOfRange(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "set-cell", "garage_shutter", "7", "0", "1"); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestTablePrintsLabels(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "table", "sheet_shutter", "--variant", "C-3")
	for _, want := range []string{"10000 이상", "6000 이상", "C-3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestExportWritesWorkbook(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "out.xlsx")

	mustRun(t, "export", "--out", path, "--product", "garage_shutter")

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	if got := len(f.GetSheetList()); got != 4 {
		t.Fatalf("sheets = %d, want 4", got)
	}
}

func TestMigrateAndSeed(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "migrate", "status")
	if !strings.Contains(out, "schema version 0") {
		t.Fatalf("fresh database should be at version 0:\n%s", out)
	}

	out = mustRun(t, "migrate")
	if !strings.Contains(out, "schema version 2") {
		t.Fatalf("unexpected migrate output:\n%s", out)
	}

	out = mustRun(t, "seed")
	if !strings.Contains(out, "1 rows inserted") {
		t.Fatalf("unexpected seed output:\n%s", out)
	}
	out = mustRun(t, "seed")
	if !strings.Contains(out, "0 rows inserted") {
		t.Fatalf("second seed should be a no-op:\n%s", out)
	}

	if _, err := run(t, "migrate", "sideways"); err == nil {
		t.Fatalf("expected error for unknown migrate action")
	}
}

func TestMigrateRefusesRedisBackend(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORE_BACKEND", "redis")

	if _, err := run(t, "migrate", "status"); err == nil {
		t.Fatalf("expected error for redis backend")
	}
}
