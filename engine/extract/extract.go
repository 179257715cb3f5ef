// Package extract turns a vehicle classified-ad HTML document into a
// normalized listing.Record. Site-specific strategies are tried in order and
// a generic heading-based strategy closes the list.
package extract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

// ErrNotFound means no listing could be extracted from the document.
var ErrNotFound = errors.New("listing not found")

// Strategy parses listings from one kind of source.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "leboncoin", "generic").
	Name() string
	// CanHandle reports whether the strategy owns documents from originURL.
	CanHandle(originURL string) bool
	// Parse extracts a record or returns ErrNotFound. It must not modify doc.
	Parse(doc *goquery.Document) (listing.Record, error)
}

// Router selects the first strategy able to handle a URL.
type Router struct {
	strategies []Strategy
	log        *slog.Logger
}

// NewRouter creates a router over strategies in priority order. A strategy
// whose CanHandle always returns true must come last.
func NewRouter(log *slog.Logger, strategies ...Strategy) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{strategies: strategies, log: log}
}

// DefaultRouter returns the leboncoin strategy followed by the generic one.
func DefaultRouter(log *slog.Logger, now func() time.Time) *Router {
	return NewRouter(log, NewLeBonCoin(now), NewGeneric(now))
}

// Extract runs the first strategy that can handle originURL. Its outcome is
// final: a strategy that owns the URL but finds nothing yields ErrNotFound
// without falling through to the next one.
func (r *Router) Extract(doc *goquery.Document, originURL string) (listing.Record, error) {
	if doc == nil {
		return listing.Record{}, ErrNotFound
	}
	for _, s := range r.strategies {
		if !s.CanHandle(originURL) {
			continue
		}
		rec, err := parseSafely(s, doc)
		r.log.Debug("listing extraction",
			"strategy", s.Name(),
			"url", originURL,
			"found", err == nil,
		)
		return rec, err
	}
	return listing.Record{}, ErrNotFound
}

// parseSafely converts strategy failures, panics included, into ErrNotFound.
func parseSafely(s Strategy, doc *goquery.Document) (rec listing.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec = listing.Record{}
			err = fmt.Errorf("%w: %s parser panicked: %v", ErrNotFound, s.Name(), p)
		}
	}()

	rec, err = s.Parse(doc)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, ErrNotFound):
		return listing.Record{}, err
	default:
		return listing.Record{}, fmt.Errorf("%w: %s: %v", ErrNotFound, s.Name(), err)
	}
}

// ParseHTML builds a document from raw HTML.
func ParseHTML(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}
	return doc, nil
}
