package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/shutterquote/internal/pricebook"
	"github.com/Simplici0/shutterquote/internal/pricing"
	"github.com/Simplici0/shutterquote/internal/ranges"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type server struct {
	svc    *pricebook.Service
	logger *zap.Logger
	// adminMu serialises table and settings writes. A second writer gets 409
	// instead of waiting.
	adminMu sync.Mutex
}

func newServer(svc *pricebook.Service, logger *zap.Logger) *server {
	return &server{svc: svc, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/ranges/{product}", s.handleRanges)
		r.Get("/quote", s.handleQuote)
		r.Get("/products/{product}/table", s.handleTable)
		r.Get("/products/{product}/table.xlsx", s.handleTableXLSX)
		r.Put("/products/{product}/cells/{w}/{h}", s.handleSaveCell)
		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handlePatchSettings)
		r.Post("/garage/rebase", s.handleRebase)
	})
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type rangeView struct {
	Min   float64  `json:"min"`
	Max   *float64 `json:"max"`
	Label string   `json:"label"`
}

type rangesResponse struct {
	Product  pricing.Family `json:"product"`
	Name     string         `json:"name"`
	Variants []string       `json:"variants"`
	Widths   []rangeView    `json:"widths"`
	Heights  []rangeView    `json:"heights"`
}

func newRangeViews(seq ranges.Sequence) []rangeView {
	out := make([]rangeView, len(seq))
	for i, rg := range seq {
		out[i] = rangeView{Min: rg.Min, Label: rg.Label}
		if !math.IsInf(rg.Max, 1) {
			top := rg.Max
			out[i].Max = &top
		}
	}
	return out
}

func (s *server) handleRanges(w http.ResponseWriter, r *http.Request) {
	family, ok := s.productParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rangesResponse{
		Product:  family,
		Name:     family.DisplayName(),
		Variants: family.Variants(),
		Widths:   newRangeViews(family.WidthRanges()),
		Heights:  newRangeViews(family.HeightRanges()),
	})
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	family, err := pricing.ParseFamily(q.Get("product"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	width, err := parseDimension(q.Get("width"), "width")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := parseDimension(q.Get("height"), "height")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	variant := q.Get("variant")
	if variant == "" {
		variant = family.DefaultVariant()
	}

	quote, err := s.svc.Quote(r.Context(), family, width, height, variant)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *server) handleTable(w http.ResponseWriter, r *http.Request) {
	family, ok := s.productParam(w, r)
	if !ok {
		return
	}
	view, err := s.svc.Table(r.Context(), family, r.URL.Query().Get("variant"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleTableXLSX(w http.ResponseWriter, r *http.Request) {
	family, ok := s.productParam(w, r)
	if !ok {
		return
	}
	view, err := s.svc.Table(r.Context(), family, r.URL.Query().Get("variant"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s.xlsx"`, view.Family, view.Variant))
	if err := pricebook.WriteWorkbook(w, view); err != nil {
		s.logger.Error("write xlsx export", zap.Error(err))
	}
}

type saveCellRequest struct {
	Price *int64 `json:"price"`
}

func (s *server) handleSaveCell(w http.ResponseWriter, r *http.Request) {
	family, ok := s.productParam(w, r)
	if !ok {
		return
	}
	wIdx, err := strconv.Atoi(chi.URLParam(r, "w"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "width index must be an integer")
		return
	}
	hIdx, err := strconv.Atoi(chi.URLParam(r, "h"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "height index must be an integer")
		return
	}

	var req saveCellRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, "price is required")
		return
	}

	if !s.adminMu.TryLock() {
		writeError(w, http.StatusConflict, "another admin write is in progress")
		return
	}
	defer s.adminMu.Unlock()

	if err := s.svc.SaveCell(r.Context(), family, wIdx, hIdx, *req.Price); err != nil {
		if errors.Is(err, pricebook.ErrCellOutOfRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("save cell failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save price")
		return
	}
	writeJSON(w, http.StatusOK, pricing.Cell{WidthIndex: wIdx, HeightIndex: hIdx, Price: *req.Price})
}

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.LoadCoefficients(r.Context()))
}

func (s *server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch pricing.CoefficientsPatch
	if err := decodeJSON(r, &patch, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.adminMu.TryLock() {
		writeError(w, http.StatusConflict, "another admin write is in progress")
		return
	}
	defer s.adminMu.Unlock()

	current := s.svc.LoadCoefficients(r.Context())
	next, err := s.svc.SaveCoefficients(r.Context(), current, patch)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidCoefficient) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("save settings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, next)
}

type rebaseRequest struct {
	// Amount defaults to the stored globalAddition.
	Amount *int64 `json:"amount"`
}

type rebaseErrorResponse struct {
	Error   string `json:"error"`
	Applied int    `json:"applied"`
	Total   int    `json:"total"`
}

func (s *server) handleRebase(w http.ResponseWriter, r *http.Request) {
	var req rebaseRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.adminMu.TryLock() {
		writeError(w, http.StatusConflict, "another admin write is in progress")
		return
	}
	defer s.adminMu.Unlock()

	var (
		res pricebook.RebaseResult
		err error
	)
	if req.Amount == nil {
		res, err = s.svc.ApplyPendingGlobalAddition(r.Context())
	} else {
		coeffs := s.svc.LoadCoefficients(r.Context())
		res, err = s.svc.ApplyGlobalAddition(r.Context(), *req.Amount, coeffs.Garage.WoodMultiplier)
	}
	if err != nil {
		var rebaseErr *pricebook.RebaseError
		switch {
		case errors.As(err, &rebaseErr):
			writeJSON(w, http.StatusInternalServerError, rebaseErrorResponse{
				Error:   "rebase interrupted; applied cells were kept",
				Applied: rebaseErr.Applied,
				Total:   rebaseErr.Total,
			})
		case errors.Is(err, pricing.ErrInvalidCoefficient):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("rebase failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "rebase failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) productParam(w http.ResponseWriter, r *http.Request) (pricing.Family, bool) {
	family, err := pricing.ParseFamily(chi.URLParam(r, "product"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return family, true
}

func parseDimension(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be a number of millimetres", field)
	}
	return value, nil
}

// decodeJSON decodes a request body, rejecting unknown fields. allowEmpty
// accepts a missing body as the zero value.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
