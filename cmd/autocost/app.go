package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/WessleyAI/wessley-autocost/engine/assess"
	"github.com/WessleyAI/wessley-autocost/engine/extract"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// newApp builds the CLI. A nil clock uses time.Now.
func newApp(out io.Writer, now func() time.Time) *cli.App {
	if now == nil {
		now = time.Now
	}
	return &cli.App{
		Name:    "autocost",
		Usage:   "Used-car listing extraction and cost-of-ownership estimation",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   formatTable,
				Usage:   "Output format (table, json)",
				EnvVars: []string{"AUTOCOST_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			switch c.String("format") {
			case formatJSON, formatTable:
			default:
				return fmt.Errorf("unknown format %q (want table or json)", c.String("format"))
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(c.String("log-level")))); err != nil {
				level = slog.LevelWarn
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			extractCommand(now),
			estimateCommand(now),
			verdictCommand(now),
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "file",
			Usage: "Path to a saved listing page (HTML)",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "Origin URL of the saved page; selects the site parser",
		},
	}
}

func recordFlags() []cli.Flag {
	return append(sourceFlags(),
		&cli.StringFlag{Name: "make", Usage: "Manufacturer (when no --file)"},
		&cli.StringFlag{Name: "model", Value: listing.UnknownModel, Usage: "Model name"},
		&cli.IntFlag{Name: "year", Usage: "Model year (defaults to the current year)"},
		&cli.Float64Flag{Name: "price", Usage: "Asking price in euros"},
		&cli.StringFlag{Name: "fuel", Value: listing.UnknownFuel, Usage: "Fuel label (diesel, essence, hybride, electrique...)"},
		&cli.IntFlag{Name: "mileage", Usage: "Odometer reading in km"},
		&cli.StringFlag{Name: "title", Usage: "Ad title (defaults to make and model)"},
	)
}

// =============================================================================
// EXTRACT COMMAND
// =============================================================================

func extractCommand(now func() time.Time) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Extract the listing record from a saved ad page",
		Flags: sourceFlags(),
		Action: func(c *cli.Context) error {
			if c.String("file") == "" {
				return errors.New("--file is required")
			}
			rec, err := extractFile(c.String("file"), c.String("url"), now)
			if err != nil {
				return err
			}
			return render(c, rec, writeRecordTable)
		},
	}
}

// =============================================================================
// ESTIMATE COMMAND
// =============================================================================

func estimateCommand(now func() time.Time) *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Estimate yearly running costs and rate the asking price",
		Flags: recordFlags(),
		Action: func(c *cli.Context) error {
			rec, err := recordFrom(c, now)
			if err != nil {
				return err
			}
			rep, err := assess.New(nil, now).Assess(rec)
			if err != nil {
				return err
			}
			return render(c, rep, func(w io.Writer, rep assess.Report) error {
				return writeReportTable(w, rec, rep)
			})
		},
	}
}

// =============================================================================
// VERDICT COMMAND
// =============================================================================

func verdictCommand(now func() time.Time) *cli.Command {
	return &cli.Command{
		Name:  "verdict",
		Usage: "Rate the asking price against a depreciation model",
		Flags: recordFlags(),
		Action: func(c *cli.Context) error {
			rec, err := recordFrom(c, now)
			if err != nil {
				return err
			}
			return render(c, assess.New(nil, now).Verdict(rec), writeVerdictTable)
		},
	}
}

// recordFrom extracts the record from --file or builds it from flags.
func recordFrom(c *cli.Context, now func() time.Time) (listing.Record, error) {
	if path := c.String("file"); path != "" {
		return extractFile(path, c.String("url"), now)
	}
	if strings.TrimSpace(c.String("make")) == "" {
		return listing.Record{}, errors.New("either --file or --make is required")
	}
	rec := listing.Record{
		Make:    c.String("make"),
		Model:   c.String("model"),
		Year:    c.Int("year"),
		Price:   c.Float64("price"),
		Fuel:    c.String("fuel"),
		Mileage: c.Int("mileage"),
		Title:   c.String("title"),
	}
	if rec.Year == 0 {
		rec.Year = now().Year()
	}
	if rec.Title == "" {
		rec.Title = strings.TrimSpace(rec.Make + " " + rec.Model)
	}
	return rec, nil
}

func extractFile(path, originURL string, now func() time.Time) (listing.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return listing.Record{}, err
	}
	defer f.Close()

	doc, err := extract.ParseHTML(f)
	if err != nil {
		return listing.Record{}, err
	}
	rec, err := extract.DefaultRouter(slog.Default(), now).Extract(doc, originURL)
	if err != nil {
		return listing.Record{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}
