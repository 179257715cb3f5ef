package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/WessleyAI/wessley-autocost/engine/advisor"
	"github.com/WessleyAI/wessley-autocost/engine/assess"
	"github.com/WessleyAI/wessley-autocost/engine/extract"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/quota"
	"github.com/WessleyAI/wessley-autocost/pkg/mid"
)

type server struct {
	router   *extract.Router
	assessor *assess.Assessor
	analyzer advisor.Analyzer
	quota    quota.Tracker
	// publish announces extracted listings; nil when no bus is configured.
	publish func(context.Context, listing.Record) error
	log     *slog.Logger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/estimate", s.handleEstimate)
	mux.HandleFunc("POST /api/verdict", s.handleVerdict)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/quota", s.handleQuota)
	return mux
}

func (s *server) handler(cfg Config) http.Handler {
	return mid.Chain(s.routes(),
		mid.Recover(s.log),
		mid.RequestID(),
		mid.Logger(s.log),
		mid.CORS(cfg.CORSOrigin),
		mid.RateLimit(cfg.RateLimitRPS, int(cfg.RateLimitRPS)*2),
		mid.MaxBytes(maxBodyBytes),
		mid.OTel("autocost-api"),
	)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var ve *listing.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	writeJSON(w, http.StatusBadRequest, body)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ExtractRequest is the JSON body for POST /api/extract.
type ExtractRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

func (s *server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		writeError(w, http.StatusBadRequest, "html is required")
		return
	}
	doc, err := extract.ParseHTML(strings.NewReader(req.HTML))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unparseable html")
		return
	}
	rec, err := s.router.Extract(doc, req.URL)
	if errors.Is(err, extract.ErrNotFound) {
		writeError(w, http.StatusUnprocessableEntity, "no vehicle listing found")
		return
	}
	if err != nil {
		s.log.Error("extract failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if s.publish != nil {
		if err := s.publish(r.Context(), rec); err != nil {
			s.log.Warn("publish extracted listing failed", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var rec listing.Record
	if !decode(w, r, &rec) {
		return
	}
	rep, err := s.assessor.Assess(rec)
	if err != nil {
		writeValidation(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	var rec listing.Record
	if !decode(w, r, &rec) {
		return
	}
	writeJSON(w, http.StatusOK, s.assessor.Verdict(rec))
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var rec listing.Record
	if !decode(w, r, &rec) {
		return
	}
	if strings.TrimSpace(rec.Make) == "" {
		writeValidation(w, listing.NewValidationError("make", rec.Make, listing.ErrMissingMake))
		return
	}
	out, err := s.analyzer.Analyze(r.Context(), rec)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, advisor.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, "daily analysis quota exceeded")
	case errors.Is(err, advisor.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "analysis service returned an invalid answer")
	case errors.Is(err, advisor.ErrUnavailable), errors.Is(err, advisor.ErrMissingCredential):
		writeError(w, http.StatusServiceUnavailable, "analysis service unavailable")
	default:
		s.log.Error("analyze failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *server) handleQuota(w http.ResponseWriter, r *http.Request) {
	remaining, err := s.quota.Remaining(r.Context())
	if err != nil {
		s.log.Error("quota read failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "quota store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remaining": remaining})
}
