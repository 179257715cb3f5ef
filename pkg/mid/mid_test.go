package mid

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

// --- request IDs ---

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated", "", false},
		{"kept", "req-42", true},
		{"oversized replaced", strings.Repeat("x", 200), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFrom(r.Context())
			}))
			req := httptest.NewRequest("GET", "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if tt.keep {
				if seen != tt.incoming {
					t.Fatalf("id = %q, want %q", seen, tt.incoming)
				}
			} else if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("expected a UUID, got %q", seen)
			}
			if got := rec.Header().Get(RequestIDHeader); got != seen {
				t.Fatalf("response header %q != context id %q", got, seen)
			}
		})
	}

	if id := RequestIDFrom(httptest.NewRequest("GET", "/", nil).Context()); id != "" {
		t.Fatalf("bare context id = %q", id)
	}
}

func TestLogger_IncludesRequestID(t *testing.T) {
	var buf strings.Builder
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}), RequestID(), Logger(log))

	req := httptest.NewRequest("POST", "/api/estimate", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "status=201") || !strings.Contains(out, "request_id=req-42") {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestCORS_ExposesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	CORS("*")(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != RequestIDHeader {
		t.Fatalf("expose headers = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader) {
		t.Fatalf("allow headers = %q", rec.Header().Get("Access-Control-Allow-Headers"))
	}
}

// --- limits ---

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	h := RateLimit(0.001, 2)(http.HandlerFunc(ok))

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		codes[i] = rec.Code
		if i == 2 && rec.Header().Get("Retry-After") == "" {
			t.Fatal("missing Retry-After")
		}
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestMaxBytes(t *testing.T) {
	h := MaxBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		body string
		want int
	}{
		{"0123456789", http.StatusRequestEntityTooLarge},
		{"small", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/", strings.NewReader(tt.body)))
		if rec.Code != tt.want {
			t.Errorf("body %q: code = %d, want %d", tt.body, rec.Code, tt.want)
		}
	}
}
