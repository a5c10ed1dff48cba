package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

// MetricsService owns the Prometheus registry and keeps running totals for
// the JSON stats endpoint. A nil *MetricsService is a valid no-op.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	fetchErrors      *prometheus.CounterVec
	assemblyDuration *prometheus.HistogramVec
	notifications    *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	fetchCount           uint64
	fetchErrorCount      uint64
	fetchDurationTotal   uint64
	documentCount        uint64
	sentCount            uint64
	failedCount          uint64
}

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

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_fetch_duration_seconds",
		Help:    "Duration of record store reads by entity",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity"})

	fetchErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_fetch_errors_total",
		Help: "Failed record store reads by entity",
	}, []string{"entity"})

	assemblyDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_assembly_duration_seconds",
		Help:    "End-to-end assembly time by document kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Notification dispatch outcomes",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, fetchDuration, fetchErrors, assemblyDuration, notifications, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		fetchDuration:    fetchDuration,
		fetchErrors:      fetchErrors,
		assemblyDuration: assemblyDuration,
		notifications:    notifications,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveFetch records one gateway read.
func (m *MetricsService) ObserveFetch(entity string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(entity).Observe(duration.Seconds())
	atomic.AddUint64(&m.fetchCount, 1)
	atomic.AddUint64(&m.fetchDurationTotal, uint64(duration.Nanoseconds()))
	if err != nil {
		m.fetchErrors.WithLabelValues(entity).Inc()
		atomic.AddUint64(&m.fetchErrorCount, 1)
	}
}

// ObserveAssembly records the time taken to build one document.
func (m *MetricsService) ObserveAssembly(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.assemblyDuration.WithLabelValues(kind).Observe(duration.Seconds())
	atomic.AddUint64(&m.documentCount, 1)
}

// RecordDispatch adds per-recipient outcomes of one notification batch.
func (m *MetricsService) RecordDispatch(result models.DispatchResult, skipped int) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues("sent").Add(float64(result.Sent))
	m.notifications.WithLabelValues("failed").Add(float64(result.Failed))
	m.notifications.WithLabelValues("skipped").Add(float64(skipped))
	atomic.AddUint64(&m.sentCount, uint64(result.Sent))
	atomic.AddUint64(&m.failedCount, uint64(result.Failed))
}

func (m *MetricsService) Snapshot() models.ServiceStats {
	if m == nil {
		return models.ServiceStats{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	fetches := atomic.LoadUint64(&m.fetchCount)
	fetchDuration := atomic.LoadUint64(&m.fetchDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	var avgFetchMs float64
	if fetches > 0 {
		avgFetchMs = float64(fetchDuration) / float64(fetches) / float64(time.Millisecond)
	}

	return models.ServiceStats{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		FetchesTotal:             fetches,
		FetchErrorsTotal:         atomic.LoadUint64(&m.fetchErrorCount),
		AverageFetchDurationMs:   avgFetchMs,
		DocumentsAssembled:       atomic.LoadUint64(&m.documentCount),
		NotificationsSent:        atomic.LoadUint64(&m.sentCount),
		NotificationsFailed:      atomic.LoadUint64(&m.failedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
