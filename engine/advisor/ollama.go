package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/pkg/resilience"
)

// OllamaConfig configures an OllamaAnalyzer.
type OllamaConfig struct {
	BaseURL string // e.g. http://localhost:11434
	Model   string // e.g. llama3.1
	Timeout time.Duration
	// RatePerSec and Burst bound outgoing generate calls.
	RatePerSec float64
	Burst      int
	Retry      resilience.RetryOpts
	Breaker    resilience.BreakerOpts
	Client     *http.Client
	Logger     *slog.Logger
}

// OllamaAnalyzer implements Analyzer with Ollama's /api/generate endpoint in
// JSON mode.
type OllamaAnalyzer struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryOpts
	breaker *resilience.Breaker
	log     *slog.Logger
}

// NewOllamaAnalyzer creates an analyzer. Missing options get defaults; an
// empty BaseURL or Model is reported by Analyze as ErrMissingCredential.
func NewOllamaAnalyzer(cfg OllamaConfig) *OllamaAnalyzer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = resilience.DefaultRetry
	}
	if cfg.Breaker.FailThreshold <= 0 {
		cfg.Breaker = resilience.DefaultBreakerOpts
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	// Only outages count against the breaker; bad answers do not.
	cfg.Breaker.IsFailure = func(err error) bool { return errors.Is(err, ErrUnavailable) }
	log := cfg.Logger
	cfg.Breaker.OnStateChange = func(from, to resilience.State) {
		log.Warn("ollama circuit", "from", from.String(), "to", to.String())
	}
	return &OllamaAnalyzer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  cfg.Client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		retry:   cfg.Retry,
		breaker: resilience.NewBreaker(cfg.Breaker),
		log:     cfg.Logger,
	}
}

type generateReq struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Format  string         `json:"format"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResp struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Analyze asks the model for an analysis of rec.
func (a *OllamaAnalyzer) Analyze(ctx context.Context, rec listing.Record) (Analysis, error) {
	if a.baseURL == "" || a.model == "" {
		return Analysis{}, ErrMissingCredential
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return Analysis{}, fmt.Errorf("%w: rate limit: %v", ErrUnavailable, err)
	}

	start := time.Now()
	prompt := buildPrompt(rec)
	var raw string
	err := a.breaker.Call(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, a.retry, func(ctx context.Context) error {
			var err error
			raw, err = a.generate(ctx, prompt)
			return err
		})
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		a.log.Warn("analysis failed", "make", rec.Make, "model", rec.Model, "error", err)
		return Analysis{}, err
	}

	var out Analysis
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := out.check(); err != nil {
		return Analysis{}, err
	}
	a.log.Info("analysis complete",
		"make", rec.Make,
		"model", rec.Model,
		"deal", out.DealQuality,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// generate performs one /api/generate call. Errors that a retry cannot fix
// are marked permanent.
func (a *OllamaAnalyzer) generate(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(generateReq{
		Model:   a.model,
		Prompt:  prompt,
		Format:  "json",
		Stream:  false,
		Options: map[string]any{"temperature": 0.2},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", resilience.Permanent(fmt.Errorf("%w: %v", ErrMissingCredential, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", resilience.Permanent(fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err()))
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", resilience.Permanent(ErrQuotaExceeded)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return "", resilience.Permanent(fmt.Errorf("%w: status %d", ErrMissingCredential, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", resilience.Permanent(fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	var gr generateResp
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", resilience.Permanent(fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err))
	}
	if gr.Error != "" {
		return "", resilience.Permanent(fmt.Errorf("%w: %s", ErrMalformedResponse, gr.Error))
	}
	if strings.TrimSpace(gr.Response) == "" {
		return "", resilience.Permanent(fmt.Errorf("%w: empty response", ErrMalformedResponse))
	}
	return gr.Response, nil
}
