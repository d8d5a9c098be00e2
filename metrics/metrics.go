package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LoginAttemptsTotal *prometheus.CounterVec
	AuthzDenialsTotal  *prometheus.CounterVec

	SearchDuration     prometheus.Histogram
	SearchResultsTotal prometheus.Histogram

	AttachmentUploadsTotal *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors plus the
// service metrics, and registers them all.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kb_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		AuthzDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_authz_denials_total",
				Help: "Requests refused by the role guard",
			},
			[]string{"reason"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kb_search_duration_seconds",
				Help:    "Article search latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		SearchResultsTotal: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kb_search_matches",
				Help:    "Number of matching articles per search",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		AttachmentUploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kb_attachment_uploads_total",
				Help: "Attachment upload requests by status",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginAttemptsTotal,
		m.AuthzDenialsTotal,
		m.SearchDuration,
		m.SearchResultsTotal,
		m.AttachmentUploadsTotal,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Login outcomes.
const (
	LoginSuccess  = "success"
	LoginInvalid  = "invalid_credentials"
	LoginDisabled = "disabled"
	LoginError    = "error"
)

func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Denied(reason string) {
	if m == nil {
		return
	}
	m.AuthzDenialsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveSearch(d time.Duration, matches int) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(d.Seconds())
	m.SearchResultsTotal.Observe(float64(matches))
}

func (m *Metrics) AttachmentUpload(status string) {
	if m == nil {
		return
	}
	m.AttachmentUploadsTotal.WithLabelValues(status).Inc()
}
