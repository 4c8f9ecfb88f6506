package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the gateway.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	geofenceChecks  *prometheus.CounterVec
	sessionOutcomes *prometheus.CounterVec
	snapshotBytes   prometheus.Histogram
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

	geofenceChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geofence_checks_total",
		Help: "Geofence verification outcomes by result",
	}, []string{"result"})

	sessionOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verification_sessions_total",
		Help: "Verification sessions by terminal stage",
	}, []string{"stage"})

	snapshotBytes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_size_bytes",
		Help:    "Size of captured snapshots",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	registry.MustRegister(requestDuration, requestTotal, geofenceChecks, sessionOutcomes, snapshotBytes)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		geofenceChecks:  geofenceChecks,
		sessionOutcomes: sessionOutcomes,
		snapshotBytes:   snapshotBytes,
	}
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveGeofence records a geofence outcome ("verified" or the reject reason).
func (s *MetricsService) ObserveGeofence(result string) {
	s.geofenceChecks.WithLabelValues(result).Inc()
}

// ObserveSession records a session reaching a terminal stage.
func (s *MetricsService) ObserveSession(stage models.SessionStage) {
	s.sessionOutcomes.WithLabelValues(string(stage)).Inc()
}

// ObserveSnapshot records the encoded size of a captured frame.
func (s *MetricsService) ObserveSnapshot(sizeBytes int) {
	s.snapshotBytes.Observe(float64(sizeBytes))
}
