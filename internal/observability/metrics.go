package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the tracker's Prometheus metrics: catalog ingestion
// outcomes and the per-tick population gauges.
type Collector struct {
	gatherer prometheus.Gatherer

	CatalogFetches       *prometheus.CounterVec
	CatalogFetchDuration *prometheus.HistogramVec
	CatalogRecords       *prometheus.GaugeVec

	TrackedObjects      prometheus.Gauge
	VisibleObjects      prometheus.Gauge
	TickDuration        prometheus.Histogram
	PropagationFailures prometheus.Counter
}

// NewCollector registers tracker metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil. Registration is
// idempotent: an already-registered collector of the same shape is reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fetches_total",
		Help: "Catalog fetch attempts, labeled by source URL and outcome (ok, invalid, error).",
	}, []string{"source", "outcome"})
	fetches, err := registerCounterVec(reg, fetches, "catalog_fetches_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_fetch_duration_seconds",
		Help:    "Catalog fetch latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"source"})
	durations, err = registerHistogramVec(reg, durations, "catalog_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "catalog_records",
		Help: "Element records in the most recently accepted catalog, per source.",
	}, []string{"source"})
	records, err = registerGaugeVec(reg, records, "catalog_records")
	if err != nil {
		return nil, err
	}

	tracked, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracked_objects",
		Help: "Objects tracked by the update cycle.",
	}), "tracked_objects")
	if err != nil {
		return nil, err
	}
	visible, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "visible_objects",
		Help: "Objects above the observer's horizon at the last tick.",
	}), "visible_objects")
	if err != nil {
		return nil, err
	}

	tick := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tick_duration_seconds",
		Help:    "Update cycle duration in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})
	tick, err = registerHistogram(reg, tick, "tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "propagation_failures_total",
		Help: "Per-object propagation failures across all ticks.",
	})
	failures, err = registerCounter(reg, failures, "propagation_failures_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:             gatherer,
		CatalogFetches:       fetches,
		CatalogFetchDuration: durations,
		CatalogRecords:       records,
		TrackedObjects:       tracked,
		VisibleObjects:       visible,
		TickDuration:         tick,
		PropagationFailures:  failures,
	}, nil
}

// ObserveFetch satisfies the catalog.FetchMetrics interface.
func (c *Collector) ObserveFetch(source, outcome string, seconds float64) {
	if c == nil {
		return
	}
	if c.CatalogFetches != nil {
		c.CatalogFetches.WithLabelValues(source, outcome).Inc()
	}
	if c.CatalogFetchDuration != nil {
		c.CatalogFetchDuration.WithLabelValues(source).Observe(seconds)
	}
}

// SetRecordCount satisfies the catalog.FetchMetrics interface.
func (c *Collector) SetRecordCount(source string, n int) {
	if c == nil || c.CatalogRecords == nil {
		return
	}
	c.CatalogRecords.WithLabelValues(source).Set(float64(n))
}

// ObserveTick records the outcome of one update cycle.
func (c *Collector) ObserveTick(d time.Duration, tracked, visible, failed int) {
	if c == nil {
		return
	}
	if c.TickDuration != nil {
		c.TickDuration.Observe(d.Seconds())
	}
	if c.TrackedObjects != nil {
		c.TrackedObjects.Set(float64(tracked))
	}
	if c.VisibleObjects != nil {
		c.VisibleObjects.Set(float64(visible))
	}
	if c.PropagationFailures != nil && failed > 0 {
		c.PropagationFailures.Add(float64(failed))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
