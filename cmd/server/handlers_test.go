package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Simplici0/shutterquote/internal/config"
	"github.com/Simplici0/shutterquote/internal/pricebook"
	"github.com/Simplici0/shutterquote/internal/pricing"
	"github.com/Simplici0/shutterquote/internal/store"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	cfg := config.Config{
		AppEnv:       "development",
		StoreBackend: config.BackendSQLite,
		DBPath:       filepath.Join(t.TempDir(), "server-test.db"),
		RebaseScope:  string(pricebook.ScopePersisted),
	}
	backend, err := store.Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	return newServer(pricebook.New(backend, zap.NewNop()), zap.NewNop())
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestServer(t).routes(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestQuoteUsesStoredCellAndVariant(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()

	rec := doRequest(t, h, http.MethodPut, "/api/products/garage_shutter/cells/1/1", `{"price": 600000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save cell: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	for variant, want := range map[string]int64{
		"base":    600000,
		"wood":    750000,
		"dark":    937000,
		"premium": 1190000,
	} {
		rec = doRequest(t, h, http.MethodGet, "/api/quote?product=garage_shutter&width=2400&height=2300&variant="+variant, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", variant, rec.Code)
		}
		var q pricebook.Quote
		decodeBody(t, rec, &q)
		if !q.Found || q.Price == nil || *q.Price != want {
			t.Fatalf("%s: unexpected quote %+v", variant, q)
		}
	}
}

func TestQuoteDefaultsVariantAndReportsNotFound(t *testing.T) {
	h := newTestServer(t).routes()

	rec := doRequest(t, h, http.MethodGet, "/api/quote?product=sheet_shutter&width=1000&height=1000", "")
	var q pricebook.Quote
	decodeBody(t, rec, &q)
	if q.Variant != "C-1" || !q.Found || *q.Price != pricing.DefaultPrice(1, 0) {
		t.Fatalf("unexpected default quote: %+v", q)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/quote?product=sheet_shutter&width=500&height=1000", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for out-of-range size, got %d", rec.Code)
	}
	q = pricebook.Quote{}
	decodeBody(t, rec, &q)
	if q.Found || q.Price != nil {
		t.Fatalf("expected not found, got %+v", q)
	}
}

func TestQuoteRejectsBadInput(t *testing.T) {
	h := newTestServer(t).routes()

	for _, target := range []string{
		"/api/quote?product=door&width=1000&height=1000",
		"/api/quote?product=sheet_shutter&width=abc&height=1000",
		"/api/quote?product=sheet_shutter&width=1000",
		"/api/quote?product=sheet_shutter&width=1000&height=1000&variant=wood",
	} {
		if rec := doRequest(t, h, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestRangesOmitOpenEndedMax(t *testing.T) {
	rec := doRequest(t, newTestServer(t).routes(), http.MethodGet, "/api/ranges/sheet_shutter", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp rangesResponse
	decodeBody(t, rec, &resp)
	if len(resp.Widths) != pricing.FamilySheet.WidthRanges().Len() {
		t.Fatalf("widths = %d", len(resp.Widths))
	}
	if last := resp.Widths[len(resp.Widths)-1]; last.Max != nil {
		t.Fatalf("open-ended bucket has max %v", *last.Max)
	}
	if first := resp.Widths[0]; first.Max == nil || *first.Max != 999 {
		t.Fatalf("first bucket max = %v", first.Max)
	}

	if rec := doRequest(t, newTestServer(t).routes(), http.MethodGet, "/api/ranges/door", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown product: expected 404, got %d", rec.Code)
	}
}

func TestSaveCellValidation(t *testing.T) {
	h := newTestServer(t).routes()

	cases := []struct {
		target string
		body   string
		want   int
	}{
		{"/api/products/garage_shutter/cells/7/0", `{"price": 1}`, http.StatusBadRequest},
		{"/api/products/garage_shutter/cells/x/0", `{"price": 1}`, http.StatusBadRequest},
		{"/api/products/garage_shutter/cells/0/0", `{}`, http.StatusBadRequest},
		{"/api/products/garage_shutter/cells/0/0", `{"price": "1"}`, http.StatusBadRequest},
		{"/api/products/door/cells/0/0", `{"price": 1}`, http.StatusNotFound},
		{"/api/products/sheet_shutter/cells/19/10", `{"price": -1}`, http.StatusOK},
	}
	for _, tc := range cases {
		if rec := doRequest(t, h, http.MethodPut, tc.target, tc.body); rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d: %s", tc.target, tc.body, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestAdminWriteConflict(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()

	srv.adminMu.Lock()
	rec := doRequest(t, h, http.MethodPut, "/api/products/sheet_shutter/cells/0/0", `{"price": 1}`)
	srv.adminMu.Unlock()

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while another write holds the lock, got %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodPut, "/api/products/sheet_shutter/cells/0/0", `{"price": 1}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after unlock, got %d", rec.Code)
	}
}

func TestSettingsPatch(t *testing.T) {
	h := newTestServer(t).routes()

	rec := doRequest(t, h, http.MethodPatch, "/api/settings", `{"woodMultiplier": 0, "darkAddition": 1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero multiplier, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPatch, "/api/settings", `{"colour": "red"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPatch, "/api/settings", `{"c2Addition": 200000, "woodMultiplier": 1.3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/api/settings", "")
	var got pricing.Coefficients
	decodeBody(t, rec, &got)
	if got.Sheet.C2Addition != 200000 || got.Garage.WoodMultiplier != 1.3 {
		t.Fatalf("settings not persisted: %+v", got)
	}
	if got.Garage.DarkAddition != pricing.DefaultDarkAddition {
		t.Fatalf("rejected patch leaked: %+v", got)
	}
}

func TestRebasePendingGlobalAddition(t *testing.T) {
	h := newTestServer(t).routes()

	doRequest(t, h, http.MethodPut, "/api/products/garage_shutter/cells/0/0", `{"price": 600000}`)
	doRequest(t, h, http.MethodPatch, "/api/settings", `{"globalAddition": 50000}`)

	rec := doRequest(t, h, http.MethodPost, "/api/garage/rebase", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res pricebook.RebaseResult
	decodeBody(t, rec, &res)
	if res.DeltaToBase != 40000 || res.CellsUpdated != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/quote?product=garage_shutter&width=1500&height=2000&variant=wood", "")
	var q pricebook.Quote
	decodeBody(t, rec, &q)
	if q.Price == nil || *q.Price != 800000 {
		t.Fatalf("wood price after rebase = %v, want 800000", q.Price)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/settings", "")
	var settings pricing.Coefficients
	decodeBody(t, rec, &settings)
	if settings.Garage.GlobalAddition != 0 {
		t.Fatalf("global addition = %d, want 0", settings.Garage.GlobalAddition)
	}
}

func TestRebaseExplicitAmount(t *testing.T) {
	h := newTestServer(t).routes()
	doRequest(t, h, http.MethodPut, "/api/products/garage_shutter/cells/0/0", `{"price": 600000}`)

	rec := doRequest(t, h, http.MethodPost, "/api/garage/rebase", `{"amount": 25000}`)
	var res pricebook.RebaseResult
	decodeBody(t, rec, &res)
	if rec.Code != http.StatusOK || res.DeltaToBase != 20000 {
		t.Fatalf("unexpected response %d %+v", rec.Code, res)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/garage/rebase", `{"amount": 0}`)
	res = pricebook.RebaseResult{}
	decodeBody(t, rec, &res)
	if !res.Skipped {
		t.Fatalf("zero amount should be skipped: %+v", res)
	}
}

func TestTableAndExport(t *testing.T) {
	h := newTestServer(t).routes()

	rec := doRequest(t, h, http.MethodGet, "/api/products/sheet_shutter/table?variant=C-2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("table: expected 200, got %d", rec.Code)
	}
	var view pricebook.TableView
	decodeBody(t, rec, &view)
	if view.Prices.At(0, 0) != pricing.DefaultPrice(0, 0)+pricing.DefaultC2Addition {
		t.Fatalf("C-2 price = %d", view.Prices.At(0, 0))
	}

	if rec := doRequest(t, h, http.MethodGet, "/api/products/sheet_shutter/table?variant=premium", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("foreign variant: expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/products/garage_shutter/table.xlsx?variant=dark", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content type = %q", ct)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "garage_shutter dark" {
		t.Fatalf("sheets = %v", sheets)
	}
}
