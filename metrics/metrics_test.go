package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giygas/nginx-status/stats"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedSource stats.Counters

func (f fixedSource) Counters() stats.Counters {
	return stats.Counters(f)
}

func TestStubStatusCollector(t *testing.T) {
	collector := NewStubStatusCollector(fixedSource{
		Active:   3,
		Accepts:  10,
		Handled:  10,
		Requests: 42,
		Reading:  1,
		Writing:  1,
		Waiting:  1,
	})

	expected := `
# HELP nginx_connections_active Active client connections
# TYPE nginx_connections_active gauge
nginx_connections_active 3
# HELP nginx_connections_accepted Accepted client connections
# TYPE nginx_connections_accepted counter
nginx_connections_accepted 10
# HELP nginx_http_requests_total Total http requests
# TYPE nginx_http_requests_total counter
nginx_http_requests_total 42
`

	err := testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"nginx_connections_active", "nginx_connections_accepted", "nginx_http_requests_total")
	if err != nil {
		t.Error(err)
	}

	if n := testutil.CollectAndCount(collector); n != 7 {
		t.Errorf("expected 7 metrics, got %d", n)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "/status", "200"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))

	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "/status", "200"))
	if after-before != 1 {
		t.Errorf("expected request counter to grow by 1, got %v", after-before)
	}

	if v := testutil.ToFloat64(HTTPRequestInFlight); v != 0 {
		t.Errorf("expected no in-flight requests after completion, got %v", v)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(stats.NewStaticSource())

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "nginx_connections_waiting" {
			found = true
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 1 {
				t.Errorf("expected static waiting 1, got %v", v)
			}
		}
	}
	if !found {
		t.Error("stub status metrics missing from registry")
	}

	// a second registry must not conflict with the first one
	_ = NewRegistry(stats.NewStaticSource())
}
