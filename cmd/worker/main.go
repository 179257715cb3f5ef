// Command worker answers listing estimate requests on NATS and logs an
// assessment for every extracted listing announced on the bus.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-autocost/engine/assess"
	"github.com/WessleyAI/wessley-autocost/engine/bus"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/refdata"
)

// Config holds all environment-based configuration.
type Config struct {
	NATSURL   string
	Queue     string
	Neo4jURL  string
	Neo4jUser string
	Neo4jPass string
	LogLevel  string
}

func loadConfig() Config {
	return Config{
		NATSURL:   envOr("NATS_URL", nats.DefaultURL),
		Queue:     envOr("WORKER_QUEUE", "autocost-workers"),
		Neo4jURL:  envOr("NEO4J_URL", ""),
		Neo4jUser: envOr("NEO4J_USER", "neo4j"),
		Neo4jPass: envOr("NEO4J_PASS", "password"),
		LogLevel:  envOr("LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := refdata.LoadOrDefault(ctx, refdata.Neo4jConfig{URL: cfg.Neo4jURL, User: cfg.Neo4jUser, Pass: cfg.Neo4jPass}, logger)

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("autocost-worker"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	w := &worker{assessor: assess.New(catalog, nil), log: logger}
	if _, err := w.subscribe(nc, cfg.Queue); err != nil {
		return err
	}
	logger.Info("worker started", "nats", cfg.NATSURL, "queue", cfg.Queue, "catalog_size", catalog.Len())

	<-ctx.Done()
	logger.Info("shutdown signal received")
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan struct{})
	nc.SetClosedHandler(func(*nats.Conn) { close(done) })
	if err := nc.Drain(); err != nil {
		return err
	}
	select {
	case <-done:
	case <-drainCtx.Done():
	}
	return nil
}

type worker struct {
	assessor *assess.Assessor
	log      *slog.Logger
}

func (w *worker) subscribe(nc *nats.Conn, queue string) ([]*nats.Subscription, error) {
	est, err := bus.ServeEstimates(nc, queue, w.assess)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", bus.SubjectEstimate, err)
	}
	ext, err := bus.SubscribeExtracted(nc, w.handleExtracted)
	if err != nil {
		est.Unsubscribe()
		return nil, fmt.Errorf("subscribe %s: %w", bus.SubjectExtracted, err)
	}
	return []*nats.Subscription{est, ext}, nil
}

func (w *worker) assess(_ context.Context, rec listing.Record) (assess.Report, error) {
	start := time.Now()
	rep, err := w.assessor.Assess(rec)
	if err != nil {
		w.log.Warn("estimate rejected", "make", rec.Make, "model", rec.Model, "err", err)
		return assess.Report{}, err
	}
	w.log.Debug("estimate served",
		"make", rec.Make,
		"model", rec.Model,
		"matched", rep.Estimate.MatchedID,
		"duration", time.Since(start),
	)
	return rep, nil
}

func (w *worker) handleExtracted(ctx context.Context, rec listing.Record) {
	rep, err := w.assess(ctx, rec)
	if err != nil {
		return
	}
	w.log.Info("listing assessed",
		"make", rec.Make,
		"model", rec.Model,
		"year", rec.Year,
		"segment", rep.Estimate.Segment,
		"maintenance", rep.Estimate.Maintenance.Average,
		"insurance", rep.Estimate.Insurance.Average,
		"reliability", rep.Estimate.ReliabilityScore,
		"verdict", rep.Verdict.Status,
	)
}
