package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "membertracker"

var (
	// PaymentsRecorded counts committed payments by method
	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_recorded_total",
		Help:      "Payments committed, by payment method.",
	}, []string{"method"})

	// DeliveriesTotal counts terminal delivery outcomes
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Message deliveries that reached a terminal status, by channel and status.",
	}, []string{"channel", "status"})

	// EmailAttempts counts individual SMTP attempts including retries
	EmailAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_attempts_total",
		Help:      "Email send attempts, by result.",
	}, []string{"result"})

	// DispatchQueueDepth reports jobs waiting for a dispatch worker
	DispatchQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dispatch_queue_depth",
		Help:      "Dispatch jobs waiting for a worker.",
	})

	// SchedulerRuns counts scheduled job executions
	SchedulerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_runs_total",
		Help:      "Scheduled job runs, by job and result.",
	}, []string{"job", "result"})

	// MissedCounterUpdates counts members whose missed counter was incremented
	MissedCounterUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "missed_counter_increments_total",
		Help:      "Members whose consecutive missed counter was incremented.",
	})
)

// Result maps an error to a result label
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
