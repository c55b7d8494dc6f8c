package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus collectors the service exports. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpErrors       *prometheus.CounterVec
	ticketOperations *prometheus.CounterVec
	slaActive        *prometheus.GaugeVec
	slaBreached      *prometheus.GaugeVec
	slaLastSweep     prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "support_desk_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "support_desk_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
		httpErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "support_desk_http_errors_total",
				Help: "HTTP requests answered with an error envelope",
			},
			[]string{"method", "path", "code"},
		),
		ticketOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "support_desk_ticket_operations_total",
				Help: "Ticket service operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		slaActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "support_desk_sla_active_tickets",
				Help: "Open and in-progress tickets per priority at the last SLA sweep",
			},
			[]string{"priority"},
		),
		slaBreached: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "support_desk_sla_breached_tickets",
				Help: "Active tickets past their SLA allowance at the last SLA sweep",
			},
			[]string{"priority"},
		),
		slaLastSweep: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "support_desk_sla_last_sweep_timestamp_seconds",
				Help: "Unix time of the last completed SLA sweep",
			},
		),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(method, path, code).Inc()
}

// RecordTicketOperation counts a service operation. err decides the outcome label.
func (m *Metrics) RecordTicketOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ticketOperations.WithLabelValues(operation, outcome).Inc()
}

// SetSLASnapshot replaces the SLA gauges with the counts of one sweep.
func (m *Metrics) SetSLASnapshot(active, breached map[string]int, at time.Time) {
	if m == nil {
		return
	}
	m.slaActive.Reset()
	m.slaBreached.Reset()
	for priority, n := range active {
		m.slaActive.WithLabelValues(priority).Set(float64(n))
	}
	for priority, n := range breached {
		m.slaBreached.WithLabelValues(priority).Set(float64(n))
	}
	m.slaLastSweep.Set(float64(at.Unix()))
}
