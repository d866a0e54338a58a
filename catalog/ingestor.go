// Package catalog fetches, caches, and merges orbital element catalogs.
// Retrieval is tiered: a fresh in-memory entry, then the network, then a
// stale entry of any age, then a small built-in fallback set, so callers
// always receive usable data.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/orbit-tracker/internal/logging"
	"github.com/signalsfoundry/orbit-tracker/timectrl"
	"github.com/signalsfoundry/orbit-tracker/tle"
)

const (
	// FetchTimeout bounds a single catalog download.
	FetchTimeout = 30 * time.Second

	// MinRecords is the smallest accepted yield from a download. A body
	// that parses to fewer records is treated as invalid even when the
	// HTTP call succeeded.
	MinRecords = 10

	// maxBodyBytes caps the response body read. Full public catalogs run
	// a few megabytes; anything past this is not an element catalog.
	maxBodyBytes = 32 << 20
)

// FetchMetrics receives catalog fetch outcomes. The observability
// Collector satisfies this; a nil recorder disables recording.
type FetchMetrics interface {
	ObserveFetch(source, outcome string, seconds float64)
	SetRecordCount(source string, n int)
}

// Ingestor downloads raw catalog text and parses it into element records.
type Ingestor struct {
	client  *http.Client
	clock   timectrl.Clock
	log     logging.Logger
	metrics FetchMetrics
}

// NewIngestor constructs an Ingestor. Nil arguments select defaults: a
// client with the standard fetch timeout, the system clock, a noop logger.
func NewIngestor(client *http.Client, clock timectrl.Clock, log logging.Logger, metrics FetchMetrics) *Ingestor {
	if client == nil {
		client = &http.Client{Timeout: FetchTimeout}
	}
	if clock == nil {
		clock = timectrl.SystemClock{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Ingestor{client: client, clock: clock, log: log, metrics: metrics}
}

// Fetch downloads and parses the catalog at sourceURL. It returns a
// *FetchError for transport or status failures and a *ValidationError when
// the body parses to fewer than MinRecords records. On success the result
// is stamped with the current acquisition time.
func (in *Ingestor) Fetch(ctx context.Context, sourceURL string) (Cached, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	ctx, span := otel.Tracer("catalog").Start(ctx, "catalog.Fetch")
	span.SetAttributes(attribute.String("catalog.source", sourceURL))
	defer span.End()

	start := time.Now()
	cached, err := in.fetch(ctx, sourceURL)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		in.record(sourceURL, outcomeFor(err), elapsed)
		in.log.Warn(ctx, "catalog fetch failed",
			logging.String("source", sourceURL),
			logging.String("error", err.Error()))
		return Cached{}, err
	}

	span.SetAttributes(attribute.Int("catalog.records", len(cached.Records)))
	in.record(sourceURL, "ok", elapsed)
	if in.metrics != nil {
		in.metrics.SetRecordCount(sourceURL, len(cached.Records))
	}
	in.log.Info(ctx, "catalog fetched",
		logging.String("source", sourceURL),
		logging.Int("records", len(cached.Records)))
	return cached, nil
}

func (in *Ingestor) fetch(ctx context.Context, sourceURL string) (Cached, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return Cached{}, &FetchError{URL: sourceURL, Err: err}
	}

	resp, err := in.client.Do(req)
	if err != nil {
		return Cached{}, &FetchError{URL: sourceURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Cached{}, &FetchError{URL: sourceURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Cached{}, &FetchError{URL: sourceURL, Err: fmt.Errorf("read body: %w", err)}
	}

	records := tle.Parse(string(body))
	if len(records) < MinRecords {
		return Cached{}, &ValidationError{URL: sourceURL, Count: len(records)}
	}

	return Cached{
		Records:    records,
		AcquiredAt: in.clock.Now(),
		Source:     sourceURL,
	}, nil
}

func (in *Ingestor) record(source, outcome string, seconds float64) {
	if in.metrics != nil {
		in.metrics.ObserveFetch(source, outcome, seconds)
	}
}

func outcomeFor(err error) string {
	switch err.(type) {
	case *ValidationError:
		return "invalid"
	default:
		return "error"
	}
}
