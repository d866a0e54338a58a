package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s%v not gathered", name, labels)
	return 0
}

func TestNewCollector_RegistersAgainstProvidedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.ObserveTick(2*time.Millisecond, 120, 7, 0)
	if got := gaugeValue(t, reg, "tracked_objects"); got != 120 {
		t.Errorf("tracked_objects = %v, want 120", got)
	}
	if got := gaugeValue(t, reg, "visible_objects"); got != 7 {
		t.Errorf("visible_objects = %v, want 7", got)
	}
}

func TestNewCollector_IdempotentRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}

	// Both collectors must feed the same registered series.
	first.ObserveFetch("src", "ok", 0.1)
	second.ObserveFetch("src", "ok", 0.2)
	got := counterValue(t, reg, "catalog_fetches_total", map[string]string{"source": "src", "outcome": "ok"})
	if got != 2 {
		t.Errorf("catalog_fetches_total = %v, want 2", got)
	}
}

func TestCollector_FetchOutcomesLabelled(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}

	c.ObserveFetch("a", "ok", 0.05)
	c.ObserveFetch("a", "error", 1.2)
	c.ObserveFetch("b", "invalid", 0.3)

	if got := counterValue(t, reg, "catalog_fetches_total", map[string]string{"source": "a", "outcome": "ok"}); got != 1 {
		t.Errorf("a/ok = %v", got)
	}
	if got := counterValue(t, reg, "catalog_fetches_total", map[string]string{"source": "a", "outcome": "error"}); got != 1 {
		t.Errorf("a/error = %v", got)
	}
	if got := counterValue(t, reg, "catalog_fetches_total", map[string]string{"source": "b", "outcome": "invalid"}); got != 1 {
		t.Errorf("b/invalid = %v", got)
	}
}

func TestCollector_PropagationFailuresAccumulate(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}

	c.ObserveTick(time.Millisecond, 10, 0, 2)
	c.ObserveTick(time.Millisecond, 10, 0, 0)
	c.ObserveTick(time.Millisecond, 10, 0, 3)

	if got := counterValue(t, reg, "propagation_failures_total", nil); got != 5 {
		t.Errorf("propagation_failures_total = %v, want 5", got)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.ObserveFetch("src", "ok", 0.1)
	c.SetRecordCount("src", 5)
	c.ObserveTick(time.Millisecond, 1, 1, 1)
}

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	c.SetRecordCount("src", 42)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "catalog_records") {
		t.Error("exposition missing catalog_records")
	}
}
