// ABOUTME: Prometheus instrumentation for backend clients
// ABOUTME: Wraps any Client to count calls and observe their latency
package backend

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes counters/histograms for backend round trips.
type Metrics struct {
	callsTotal  *prometheus.CounterVec
	callLatency *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealdesk",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total backend client calls by outcome",
		}, []string{"op", "table", "outcome"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dealdesk",
			Subsystem: "backend",
			Name:      "call_latency_seconds",
			Help:      "Latency of backend client calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "table"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency)
	return m
}

// Observe records one call. outcome is "ok", "rejected" or "error".
func (m *Metrics) Observe(op, table, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(op, table, outcome).Inc()
	m.callLatency.WithLabelValues(op, table).Observe(elapsed.Seconds())
}

type instrumented struct {
	next    Client
	metrics *Metrics
}

// Instrument wraps next so every call is recorded in m. A nil m returns next.
func Instrument(next Client, m *Metrics) Client {
	if m == nil {
		return next
	}
	return &instrumented{next: next, metrics: m}
}

func (c *instrumented) FetchRecords(ctx context.Context, table string, params Params) (*Response, error) {
	start := time.Now()
	resp, err := c.next.FetchRecords(ctx, table, params)
	c.metrics.Observe("fetch", table, outcome(resp, err), time.Since(start))
	return resp, err
}

func (c *instrumented) GetRecordByID(ctx context.Context, table string, id int, params Params) (*Response, error) {
	start := time.Now()
	resp, err := c.next.GetRecordByID(ctx, table, id, params)
	c.metrics.Observe("get", table, outcome(resp, err), time.Since(start))
	return resp, err
}

func (c *instrumented) CreateRecord(ctx context.Context, table string, params Params) (*Response, error) {
	start := time.Now()
	resp, err := c.next.CreateRecord(ctx, table, params)
	c.metrics.Observe("create", table, outcome(resp, err), time.Since(start))
	return resp, err
}

func (c *instrumented) UpdateRecord(ctx context.Context, table string, params Params) (*Response, error) {
	start := time.Now()
	resp, err := c.next.UpdateRecord(ctx, table, params)
	c.metrics.Observe("update", table, outcome(resp, err), time.Since(start))
	return resp, err
}

func (c *instrumented) DeleteRecord(ctx context.Context, table string, params Params) (*Response, error) {
	start := time.Now()
	resp, err := c.next.DeleteRecord(ctx, table, params)
	c.metrics.Observe("delete", table, outcome(resp, err), time.Since(start))
	return resp, err
}

func outcome(resp *Response, err error) string {
	switch {
	case err != nil:
		return "error"
	case resp == nil || !resp.Success:
		return "rejected"
	default:
		return "ok"
	}
}
