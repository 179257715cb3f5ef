package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/WessleyAI/wessley-autocost/engine/assess"
	"github.com/WessleyAI/wessley-autocost/engine/listing"
	"github.com/WessleyAI/wessley-autocost/engine/verdict"
)

func render[T any](c *cli.Context, v T, table func(io.Writer, T) error) error {
	w := c.App.Writer
	if c.String("format") == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return table(w, v)
}

func euros(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(0) + " EUR"
}

func eurosInt(v int) string { return euros(float64(v)) }

func writeRecordTable(w io.Writer, rec listing.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Title\t%s\n", rec.Title)
	fmt.Fprintf(tw, "Make\t%s\n", rec.Make)
	fmt.Fprintf(tw, "Model\t%s\n", rec.Model)
	fmt.Fprintf(tw, "Year\t%d\n", rec.Year)
	fmt.Fprintf(tw, "Price\t%s\n", euros(rec.Price))
	fmt.Fprintf(tw, "Fuel\t%s\n", rec.Fuel)
	fmt.Fprintf(tw, "Mileage\t%d km\n", rec.Mileage)
	if rec.ImageURL != "" {
		fmt.Fprintf(tw, "Image\t%s\n", rec.ImageURL)
	}
	return tw.Flush()
}

func writeReportTable(w io.Writer, rec listing.Record, rep assess.Report) error {
	est := rep.Estimate
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%d, %d km)\n", rec.Title, rec.Year, rec.Mileage)
	fmt.Fprintf(tw, "Segment\t%s\n", est.Segment)
	if est.MatchedID != "" {
		fmt.Fprintf(tw, "Reference\t%s\n", est.MatchedID)
	}
	fmt.Fprintf(tw, "\nMaintenance / year\t%s\t(%s - %s, %s)\n",
		eurosInt(est.Maintenance.Average), eurosInt(est.Maintenance.Min), eurosInt(est.Maintenance.Max), est.Maintenance.Level)
	for _, item := range est.Maintenance.Breakdown {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", item.Category, eurosInt(item.Cost), item.Frequency)
	}
	fmt.Fprintf(tw, "Insurance / year\t%s\t(%s - %s, %s)\n",
		eurosInt(est.Insurance.Average), eurosInt(est.Insurance.Min), eurosInt(est.Insurance.Max), est.Insurance.Level)
	fmt.Fprintf(tw, "Fuel\t%s %s\t%s / month\n",
		decimal.NewFromFloat(est.Fuel.Consumption).StringFixed(1), est.Fuel.Unit, eurosInt(est.Fuel.MonthlyCost))
	fmt.Fprintf(tw, "Reliability\t%s / 10\n", decimal.NewFromFloat(est.ReliabilityScore).StringFixed(1))
	for _, issue := range est.CommonIssues {
		fmt.Fprintf(tw, "  - %s\n", issue)
	}
	if est.Advice != "" {
		fmt.Fprintf(tw, "Advice\t%s\n", est.Advice)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return writeVerdictTable(w, rep.Verdict)
}

func writeVerdictTable(w io.Writer, v verdict.DealVerdict) error {
	line := "Verdict: " + v.Label
	if v.PriceGapPercent != nil {
		gap := decimal.NewFromFloat(*v.PriceGapPercent).StringFixed(1)
		if !strings.HasPrefix(gap, "-") {
			gap = "+" + gap
		}
		line += fmt.Sprintf(" (%s%% vs theoretical %s)", gap, eurosInt(v.TheoreticalPrice))
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
