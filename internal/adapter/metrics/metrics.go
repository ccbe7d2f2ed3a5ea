package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OfficeMetrics holds all Prometheus metrics for the marina office service.
type OfficeMetrics struct {
	InterestsCreated   prometheus.Counter
	RepliesComposed    *prometheus.CounterVec
	AcceptanceAttempts *prometheus.CounterVec
	ReconcileLinks     prometheus.Counter
	ReconcileFailures  prometheus.Counter
	NotificationsSent  *prometheus.CounterVec
}

// NewOfficeMetrics initializes and registers the Prometheus metrics.
func NewOfficeMetrics() *OfficeMetrics {
	return &OfficeMetrics{
		InterestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "marina_office",
			Subsystem: "intake",
			Name:      "interests_created_total",
			Help:      "Total number of berth interests created.",
		}),
		RepliesComposed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marina_office",
			Subsystem: "offers",
			Name:      "replies_composed_total",
			Help:      "Total number of replies composed, by kind.",
		}, []string{"kind"}), // kind: message, offer
		AcceptanceAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marina_office",
			Subsystem: "acceptance",
			Name:      "attempts_total",
			Help:      "Total number of acceptance attempts, by outcome.",
		}, []string{"outcome"}), // outcome: committed, conflict, error
		ReconcileLinks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "marina_office",
			Subsystem: "reconcile",
			Name:      "links_total",
			Help:      "Total number of new occupant links made by reconciliation.",
		}),
		ReconcileFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "marina_office",
			Subsystem: "reconcile",
			Name:      "failures_total",
			Help:      "Total number of reconciliation link writes that failed.",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marina_office",
			Subsystem: "notify",
			Name:      "sms_total",
			Help:      "Total number of SMS dispatch attempts, by status.",
		}, []string{"status"}), // status: sent, failed, skipped
	}
}
