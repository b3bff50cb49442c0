package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	NotificationsCreated prometheus.Counter
	PushSendFailures     prometheus.Counter
}

var instance *Metrics

// Get returns the singleton metrics instance, registering collectors on first use
func Get() *Metrics {
	if instance == nil {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "mompick_http_requests_total",
				Help: "Total HTTP requests by method, path and status",
			}, []string{"method", "path", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "mompick_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path", "status"}),
			CacheHitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "mompick_cache_hits_total",
				Help: "Cache hits by cache name",
			}, []string{"cache"}),
			CacheMissesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "mompick_cache_misses_total",
				Help: "Cache misses by cache name",
			}, []string{"cache"}),
			NotificationsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mompick_notifications_created_total",
				Help: "In-app notification rows created",
			}),
			PushSendFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "mompick_push_send_failures_total",
				Help: "FCM push deliveries that failed",
			}),
		}
	}
	return instance
}

// RecordCacheHit increments the hit counter for a named cache
func RecordCacheHit(cacheName string) {
	Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordCacheMiss increments the miss counter for a named cache
func RecordCacheMiss(cacheName string) {
	Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
}
