package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/lms-notify/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the notifier.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	dispatchTotal   *prometheus.CounterVec
	deliveryTotal   *prometheus.CounterVec
	scheduledTotal  *prometheus.CounterVec
	fanoutSize      *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	dispatchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatches_total",
		Help: "Total notification fan-outs by kind",
	}, []string{"kind"})

	deliveryTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_deliveries_total",
		Help: "Per-channel delivery attempts by settled outcome",
	}, []string{"kind", "channel", "outcome"})

	scheduledTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_scheduled_total",
		Help: "Deadline notification tasks registered with the scheduler",
	}, []string{"kind"})

	fanoutSize := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_fanout_recipients",
		Help:    "Recipient set size per fan-out",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, dispatchTotal, deliveryTotal, scheduledTotal, fanoutSize, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		dispatchTotal:   dispatchTotal,
		deliveryTotal:   deliveryTotal,
		scheduledTotal:  scheduledTotal,
		fanoutSize:      fanoutSize,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveDispatch records one completed fan-out.
func (m *MetricsService) ObserveDispatch(kind models.NotificationKind, recipients int) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(string(kind)).Inc()
	m.fanoutSize.WithLabelValues(string(kind)).Observe(float64(recipients))
}

// ObserveDelivery records one settled channel attempt.
func (m *MetricsService) ObserveDelivery(kind models.NotificationKind, channel string, outcome models.ChannelOutcome) {
	if m == nil {
		return
	}
	m.deliveryTotal.WithLabelValues(string(kind), channel, string(outcome)).Inc()
}

// ObserveScheduled records a task registered with the scheduler.
func (m *MetricsService) ObserveScheduled(kind models.NotificationKind) {
	if m == nil {
		return
	}
	m.scheduledTotal.WithLabelValues(string(kind)).Inc()
}
