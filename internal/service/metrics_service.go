package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the planner.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runsTotal       prometheus.Counter
	examsPlaced     prometheus.Counter
	coursesUnplaced prometheus.Counter
	seatingsBuilt   prometheus.Counter
	studentsSeated  prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the planner's Prometheus collectors.
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

	runsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total number of completed schedule runs",
	})

	examsPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_exams_placed_total",
		Help: "Total exams placed across schedule runs",
	})

	coursesUnplaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_courses_unplaced_total",
		Help: "Total courses schedule runs could not place",
	})

	seatingsBuilt := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seating_charts_built_total",
		Help: "Total seat charts generated",
	})

	studentsSeated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seating_students_seated_total",
		Help: "Total students placed on seat charts",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, runsTotal, examsPlaced,
		coursesUnplaced, seatingsBuilt, studentsSeated, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runsTotal:       runsTotal,
		examsPlaced:     examsPlaced,
		coursesUnplaced: coursesUnplaced,
		seatingsBuilt:   seatingsBuilt,
		studentsSeated:  studentsSeated,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveHTTPRequest records per-request latency and volume.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveScheduleRun records the outcome of one schedule run.
func (m *MetricsService) ObserveScheduleRun(placed, unplaced int) {
	if m == nil {
		return
	}
	m.runsTotal.Inc()
	m.examsPlaced.Add(float64(placed))
	m.coursesUnplaced.Add(float64(unplaced))
}

// ObserveSeatingBuilt records one generated seat chart.
func (m *MetricsService) ObserveSeatingBuilt(seated int) {
	if m == nil {
		return
	}
	m.seatingsBuilt.Inc()
	m.studentsSeated.Add(float64(seated))
}

// ObserveCacheHit counts one schedule cache hit.
func (m *MetricsService) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// ObserveCacheMiss counts one schedule cache miss.
func (m *MetricsService) ObserveCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}
