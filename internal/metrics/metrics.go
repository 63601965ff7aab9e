// Package metrics exposes Prometheus collectors for the booking services.
// A nil *Metrics is valid and records nothing, so callers never branch on
// whether metrics are enabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	bookingsCreated   *prometheus.CounterVec
	bookingsCancelled *prometheus.CounterVec
	capacityRejected  *prometheus.CounterVec
	reconcileSkipped  *prometheus.CounterVec
	reconcileFailed   *prometheus.CounterVec
	mailEnqueued      *prometheus.CounterVec
	activeSessions    prometheus.Gauge
}

func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "seatsnag_http_requests_total",
			Help:        "HTTP requests by route, method and status.",
			ConstLabels: labels,
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "seatsnag_http_request_duration_seconds",
			Help:        "HTTP request latency by route and method.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"route", "method"}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "seatsnag_bookings_created_total",
			Help:        "Bookings written to the ledger.",
			ConstLabels: labels,
		}, []string{"location_id"}),
		bookingsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "seatsnag_bookings_cancelled_total",
			Help:        "Bookings removed from the ledger.",
			ConstLabels: labels,
		}, []string{"location_id"}),
		capacityRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "seatsnag_capacity_rejections_total",
			Help:        "Direct bookings refused because the day was full.",
			ConstLabels: labels,
		}, []string{"location_id"}),
		reconcileSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "seatsnag_reconcile_skipped_days_total",
			Help:        "Selected days skipped at commit because they filled up.",
			ConstLabels: labels,
		}, []string{"location_id"}),
		reconcileFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "seatsnag_reconcile_failures_total",
			Help:        "Selection commits abandoned part way through.",
			ConstLabels: labels,
		}, []string{"location_id"}),
		mailEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "seatsnag_mail_enqueued_total",
			Help:        "Mail documents handed to the queue, by outcome.",
			ConstLabels: labels,
		}, []string{"backend", "outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "seatsnag_active_sessions",
			Help:        "Booking sessions currently held in memory.",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.bookingsCreated,
		m.bookingsCancelled,
		m.capacityRejected,
		m.reconcileSkipped,
		m.reconcileFailed,
		m.mailEnqueued,
		m.activeSessions,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterRoutes mounts the scrape endpoint on path.
func (m *Metrics) RegisterRoutes(router *httprouter.Router, path string) {
	router.Handler(http.MethodGet, path, m.Handler())
}

func (m *Metrics) BookingCreated(locationID string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(locationID).Inc()
}

func (m *Metrics) BookingCancelled(locationID string) {
	if m == nil {
		return
	}
	m.bookingsCancelled.WithLabelValues(locationID).Inc()
}

func (m *Metrics) CapacityRejected(locationID string) {
	if m == nil {
		return
	}
	m.capacityRejected.WithLabelValues(locationID).Inc()
}

func (m *Metrics) ReconcileSkipped(locationID string, days int) {
	if m == nil || days == 0 {
		return
	}
	m.reconcileSkipped.WithLabelValues(locationID).Add(float64(days))
}

func (m *Metrics) ReconcileFailed(locationID string) {
	if m == nil {
		return
	}
	m.reconcileFailed.WithLabelValues(locationID).Inc()
}

func (m *Metrics) MailEnqueued(backend string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mailEnqueued.WithLabelValues(backend, outcome).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *Metrics) observeRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
