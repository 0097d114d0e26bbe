package metrics

import (
	"github.com/giygas/nginx-status/interfaces"
	"github.com/prometheus/client_golang/prometheus"
)

// StubStatusCollector exports the counters shown by the status location
type StubStatusCollector struct {
	source interfaces.CounterSource

	active   *prometheus.Desc
	accepted *prometheus.Desc
	handled  *prometheus.Desc
	reading  *prometheus.Desc
	writing  *prometheus.Desc
	waiting  *prometheus.Desc
	requests *prometheus.Desc
}

// NewStubStatusCollector creates a collector reading source on every scrape
func NewStubStatusCollector(source interfaces.CounterSource) *StubStatusCollector {
	return &StubStatusCollector{
		source:   source,
		active:   prometheus.NewDesc("nginx_connections_active", "Active client connections", nil, nil),
		accepted: prometheus.NewDesc("nginx_connections_accepted", "Accepted client connections", nil, nil),
		handled:  prometheus.NewDesc("nginx_connections_handled", "Handled client connections", nil, nil),
		reading:  prometheus.NewDesc("nginx_connections_reading", "Connections where the request is being read", nil, nil),
		writing:  prometheus.NewDesc("nginx_connections_writing", "Connections where the response is being written", nil, nil),
		waiting:  prometheus.NewDesc("nginx_connections_waiting", "Idle client connections", nil, nil),
		requests: prometheus.NewDesc("nginx_http_requests_total", "Total http requests", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *StubStatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.accepted
	ch <- c.handled
	ch <- c.reading
	ch <- c.writing
	ch <- c.waiting
	ch <- c.requests
}

// Collect implements prometheus.Collector
func (c *StubStatusCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Counters()

	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(s.Active))
	ch <- prometheus.MustNewConstMetric(c.accepted, prometheus.CounterValue, float64(s.Accepts))
	ch <- prometheus.MustNewConstMetric(c.handled, prometheus.CounterValue, float64(s.Handled))
	ch <- prometheus.MustNewConstMetric(c.reading, prometheus.GaugeValue, float64(s.Reading))
	ch <- prometheus.MustNewConstMetric(c.writing, prometheus.GaugeValue, float64(s.Writing))
	ch <- prometheus.MustNewConstMetric(c.waiting, prometheus.GaugeValue, float64(s.Waiting))
	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(s.Requests))
}
