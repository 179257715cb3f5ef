// Package main implements the autocost API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-autocost/engine/advisor"
	"github.com/WessleyAI/wessley-autocost/engine/assess"
	"github.com/WessleyAI/wessley-autocost/engine/bus"
	"github.com/WessleyAI/wessley-autocost/engine/extract"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/quota"
	"github.com/WessleyAI/wessley-autocost/engine/refdata"
)

const maxBodyBytes = 2 << 20

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	CORSOrigin   string
	NATSURL      string
	QuotaBucket  string
	DailyQuota   int
	OllamaURL    string
	OllamaModel  string
	Neo4jURL     string
	Neo4jUser    string
	Neo4jPass    string
	RateLimitRPS float64
	LogLevel     slog.Level
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8080"),
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
		NATSURL:      envOr("NATS_URL", ""),
		QuotaBucket:  envOr("QUOTA_BUCKET", quota.DefaultBucket),
		DailyQuota:   envInt("DAILY_QUOTA", quota.DefaultDailyLimit),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:  envOr("OLLAMA_MODEL", "llama3.1"),
		Neo4jURL:     envOr("NEO4J_URL", ""),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		RateLimitRPS: envFloat("RATE_LIMIT_RPS", 20),
		LogLevel:     parseLevel(envOr("LOG_LEVEL", "info")),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := refdata.LoadOrDefault(ctx, refdata.Neo4jConfig{URL: cfg.Neo4jURL, User: cfg.Neo4jUser, Pass: cfg.Neo4jPass}, logger)

	// --- Quota store and listing bus ---
	var tracker quota.Tracker = quota.NewMemory(cfg.DailyQuota, nil)
	var publish func(context.Context, listing.Record) error
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("autocost-api"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()

		js, err := nc.JetStream()
		if err != nil {
			return fmt.Errorf("jetstream: %w", err)
		}
		kv, err := quota.NewKV(js, quota.KVConfig{Bucket: cfg.QuotaBucket, Limit: cfg.DailyQuota})
		if err != nil {
			return err
		}
		tracker = kv
		publish = func(ctx context.Context, rec listing.Record) error {
			return bus.PublishExtracted(ctx, nc, rec)
		}
	}

	analyzer := advisor.NewOllamaAnalyzer(advisor.OllamaConfig{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaModel,
		Logger:  logger,
	})

	s := &server{
		router:   extract.DefaultRouter(logger, nil),
		assessor: assess.New(catalog, nil),
		analyzer: &advisor.Gate{Quota: tracker, Analyzer: analyzer, Log: logger},
		quota:    tracker,
		publish:  publish,
		log:      logger,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.handler(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "catalog_size", catalog.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
