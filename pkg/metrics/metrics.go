package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Pipeline metrics
	MessagesReceived prometheus.Counter
	MessagesRejected *prometheus.CounterVec
	AlertsRecorded   *prometheus.CounterVec
	PipelineLatency  prometheus.Histogram
	AlertsPerMinute  prometheus.Gauge
	UptimeSeconds    prometheus.GaugeFunc

	// Registry metrics
	RegistryLookups *prometheus.CounterVec
	RegistryLatency *prometheus.HistogramVec

	// Notification metrics
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics against reg.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)
	startedAt := time.Now()

	return &Metrics{
		MessagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_received_total",
			Help:      "Total number of inbound device messages received",
		}),
		MessagesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_rejected_total",
			Help:      "Total number of inbound messages rejected before verification",
		}, []string{"reason"}),
		AlertsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "alerts_recorded_total",
			Help:      "Total number of alerts persisted, by authorization outcome",
		}, []string{"authorized"}),
		PipelineLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent processing one inbound message end to end",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		AlertsPerMinute: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "alerts_per_minute",
			Help:      "Alerts recorded during the last minute window",
		}),
		UptimeSeconds: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "uptime_seconds",
			Help:      "Seconds since process start",
		}, func() float64 {
			return time.Since(startedAt).Seconds()
		}),
		RegistryLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registry_lookups_total",
			Help:      "Total number of registry lookups, by entity and result",
		}, []string{"entity", "result"}),
		RegistryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registry_lookup_duration_seconds",
			Help:      "Duration of registry lookups",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"entity"}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_sent_total",
			Help:      "Total number of recipient notifications dispatched",
		}, []string{"channel"}),
		NotificationsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_failed_total",
			Help:      "Total number of recipient notifications that failed",
		}, []string{"channel"}),
		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}
