package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, want map[string]string) bool {
	got := map[string]string{}
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveHTTP("/expenses/category", "GET", 200, 10*time.Millisecond)
	m.ObserveHTTP("/expenses/category", "GET", 200, 20*time.Millisecond)
	m.ObserveHTTP("/expenses/category", "GET", 500, time.Millisecond)
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.Ingested("amqp", "inserted")
	m.Suspicious()
	m.RateLimited()
	m.ObserveQuery(time.Millisecond, errors.New("boom"))

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"inventory_http_requests_total", map[string]string{"code": "200"}, 2},
		{"inventory_http_requests_total", map[string]string{"code": "500"}, 1},
		{"inventory_cache_lookups_total", map[string]string{"result": "hit"}, 1},
		{"inventory_cache_lookups_total", map[string]string{"result": "miss"}, 2},
		{"inventory_ingest_records_total", map[string]string{"source": "amqp", "result": "inserted"}, 1},
		{"inventory_security_suspicious_requests_total", nil, 1},
		{"inventory_http_rate_limited_total", nil, 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, m, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("/", "GET", 200, time.Millisecond)
	m.ObserveQuery(time.Millisecond, nil)
	m.CacheHit()
	m.CacheMiss()
	m.Ingested("sheets", "duplicate")
	m.Suspicious()
	m.RateLimited()
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveQuery(2*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	for _, want := range []string{"inventory_expenses_query_duration_seconds_count{outcome=\"ok\"} 1", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
