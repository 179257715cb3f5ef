package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-autocost/engine/advisor"
	"github.com/WessleyAI/wessley-autocost/engine/assess"
	"github.com/WessleyAI/wessley-autocost/engine/bus"
	"github.com/WessleyAI/wessley-autocost/engine/extract"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/quota"
	"github.com/WessleyAI/wessley-autocost/pkg/mid"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixedNow() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) }

type stubAnalyzer struct {
	out advisor.Analysis
	err error
}

func (s stubAnalyzer) Analyze(context.Context, listing.Record) (advisor.Analysis, error) {
	return s.out, s.err
}

func newTestServer(a advisor.Analyzer, q quota.Tracker) *server {
	if q == nil {
		q = quota.NewMemory(3, fixedNow)
	}
	return &server{
		router:   extract.DefaultRouter(quietLog, fixedNow),
		assessor: assess.New(nil, fixedNow),
		analyzer: a,
		quota:    q,
		log:      quietLog,
	}
}

func testConfig() Config {
	return Config{CORSOrigin: "*", RateLimitRPS: 1000}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

const clioJSON = `{"make":"Renault","model":"Clio","year":2019,"price":12500,"fuel":"Diesel","mileage":85000,"title":"Renault Clio 5 dCi"}`

const lbcPage = `<html><head><script type="application/ld+json">{"@type":"Vehicle","name":"Renault Clio","brand":{"name":"Renault"},
"model":"Clio","productionDate":"2019","offers":{"price":12500},"fuelType":"Diesel","mileageFromOdometer":"85000"}</script></head><body></body></html>`

func extractBody(url, html string) string {
	b, _ := json.Marshal(ExtractRequest{URL: url, HTML: html})
	return string(b)
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/health", nil)
	handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

// --- extract ---

func TestExtractEndpoint(t *testing.T) {
	h := newTestServer(stubAnalyzer{}, nil).routes()
	rec := do(t, h, "POST", "/api/extract", extractBody("https://www.leboncoin.fr/ad/voitures/1", lbcPage))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var got listing.Record
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Make != "Renault" || got.Year != 2019 || got.Price != 12500 || got.Mileage != 85000 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestExtractEndpoint_Errors(t *testing.T) {
	h := newTestServer(stubAnalyzer{}, nil).routes()
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", "not json", http.StatusBadRequest},
		{"missing html", `{"url":"https://example.com"}`, http.StatusBadRequest},
		{"no listing", extractBody("https://example.com", "<h1>Maison à vendre</h1>"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, "POST", "/api/extract", tt.body); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

// --- estimate & verdict ---

func TestEstimateEndpoint(t *testing.T) {
	h := newTestServer(stubAnalyzer{}, nil).routes()
	rec := do(t, h, "POST", "/api/estimate", clioJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var got assess.Report
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Estimate.MatchedID != "renault_clio_5" || got.Estimate.Maintenance.Average <= 0 {
		t.Fatalf("unexpected estimate: %+v", got.Estimate)
	}
	if got.Verdict.Status == "" {
		t.Fatal("missing verdict")
	}
}

func TestEstimateEndpoint_Validation(t *testing.T) {
	h := newTestServer(stubAnalyzer{}, nil).routes()
	rec := do(t, h, "POST", "/api/estimate", `{"make":"Renault","year":2019,"mileage":-3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorBody
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Field != "mileage" {
		t.Fatalf("expected mileage field error, got %+v", body)
	}
}

func TestVerdictEndpoint(t *testing.T) {
	h := newTestServer(stubAnalyzer{}, nil).routes()
	rec := do(t, h, "POST", "/api/verdict", `{"make":"Renault","model":"Twingo","year":2023,"price":11000,"mileage":45000,"title":"Renault Twingo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		Status string `json:"status"`
	}
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Status != "good" {
		t.Fatalf("expected good deal, got %q", got.Status)
	}

	rec = do(t, h, "POST", "/api/verdict", `{"make":"Renault","year":2023}`)
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Status != "unknown" {
		t.Fatalf("expected unknown without price, got %q", got.Status)
	}
}

// --- analyze & quota ---

func TestAnalyzeEndpoint_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"quota", advisor.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"unavailable", advisor.ErrUnavailable, http.StatusServiceUnavailable},
		{"credential", advisor.ErrMissingCredential, http.StatusServiceUnavailable},
		{"malformed", advisor.ErrMalformedResponse, http.StatusBadGateway},
		{"other", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(stubAnalyzer{out: advisor.Analysis{DealQuality: advisor.DealFair}, err: tt.err}, nil).routes()
			if rec := do(t, h, "POST", "/api/analyze", clioJSON); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAnalyzeEndpoint_MissingMake(t *testing.T) {
	h := newTestServer(stubAnalyzer{}, nil).routes()
	if rec := do(t, h, "POST", "/api/analyze", `{"model":"Clio"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeThroughGateConsumesQuota(t *testing.T) {
	q := quota.NewMemory(1, fixedNow)
	gate := &advisor.Gate{Quota: q, Analyzer: stubAnalyzer{out: advisor.Analysis{DealQuality: advisor.DealGood}}, Log: quietLog}
	h := newTestServer(gate, q).routes()

	if rec := do(t, h, "GET", "/api/quota", ""); !strings.Contains(rec.Body.String(), `"remaining":1`) {
		t.Fatalf("unexpected quota body: %s", rec.Body)
	}
	if rec := do(t, h, "POST", "/api/analyze", clioJSON); rec.Code != http.StatusOK {
		t.Fatalf("first analyze: %d", rec.Code)
	}
	if rec := do(t, h, "POST", "/api/analyze", clioJSON); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second analyze: expected 429, got %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/quota", ""); !strings.Contains(rec.Body.String(), `"remaining":0`) {
		t.Fatalf("unexpected quota body: %s", rec.Body)
	}
}

// --- full chain ---

func TestHandlerChain(t *testing.T) {
	h := newTestServer(stubAnalyzer{}, nil).handler(testConfig())

	rec := do(t, h, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(mid.RequestIDHeader) == "" {
		t.Fatal("missing request id header")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}

	big := extractBody("https://example.com", "<h1>"+strings.Repeat("a", maxBodyBytes)+"</h1>")
	if rec := do(t, h, "POST", "/api/extract", big); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}

	if rec := do(t, h, "GET", "/api/estimate", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestExtractPublishesToBus(t *testing.T) {
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})

	got := make(chan listing.Record, 1)
	sub, err := bus.SubscribeExtracted(nc, func(_ context.Context, rec listing.Record) { got <- rec })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()
	nc.Flush()

	s := newTestServer(stubAnalyzer{}, nil)
	s.publish = func(ctx context.Context, rec listing.Record) error { return bus.PublishExtracted(ctx, nc, rec) }
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/extract", bytes.NewBufferString(extractBody("https://example.com/a", "<h1>Dacia Sandero 2021</h1>")))
	s.routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	select {
	case r := <-got:
		if r.Make != "Dacia" || r.Model != "Sandero" || r.Year != 2021 {
			t.Fatalf("unexpected published record: %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for published listing")
	}
}

// --- config ---

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.CORSOrigin != "*" {
		t.Fatalf("expected default CORS *, got %s", cfg.CORSOrigin)
	}
	if cfg.DailyQuota != quota.DefaultDailyLimit {
		t.Fatalf("expected default quota %d, got %d", quota.DefaultDailyLimit, cfg.DailyQuota)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DAILY_QUOTA", "25")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("LOG_LEVEL", "debug")
	cfg := loadConfig()
	if cfg.DailyQuota != 25 || cfg.RateLimitRPS != 2.5 || cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	t.Setenv("DAILY_QUOTA", "-4")
	t.Setenv("LOG_LEVEL", "loud")
	cfg = loadConfig()
	if cfg.DailyQuota != quota.DefaultDailyLimit || cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("invalid values should fall back: %+v", cfg)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TEST_ENV_VAR_XYZ", "custom")
	if v := envOr("TEST_ENV_VAR_XYZ", "default"); v != "custom" {
		t.Fatalf("expected custom, got %s", v)
	}
	if v := envOr("NONEXISTENT_VAR_ABC", "fallback"); v != "fallback" {
		t.Fatalf("expected fallback, got %s", v)
	}
}
