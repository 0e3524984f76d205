package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Attachment storage metrics
	AttachmentsStored   prometheus.Counter
	AttachmentsServed   prometheus.Counter
	AttachmentBytes     prometheus.Counter
	AttachmentsOrphaned prometheus.Counter
	StorageFailures     *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		AttachmentsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_stored_total",
			Help:      "Total number of attachment blobs written",
		}),
		AttachmentsServed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_served_total",
			Help:      "Total number of attachment downloads served",
		}),
		AttachmentBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_bytes_written_total",
			Help:      "Total attachment payload bytes written to the blob area",
		}),
		AttachmentsOrphaned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_orphaned_total",
			Help:      "Blobs stored whose record insert subsequently failed",
		}),
		StorageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_failures_total",
			Help:      "Total number of blob storage failures",
		}, []string{"operation"}),
	}
}
