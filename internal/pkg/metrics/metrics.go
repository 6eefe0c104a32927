package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LeaveMetrics holds all Prometheus metrics for the leave service.
type LeaveMetrics struct {
	MutationsTotal   *prometheus.CounterVec
	MutationDuration *prometheus.HistogramVec
	ProvisionedTotal *prometheus.CounterVec
	OverdrawnRecords prometheus.Counter
}

// NewLeaveMetrics initializes the metrics and registers them with reg.
func NewLeaveMetrics(reg prometheus.Registerer) *LeaveMetrics {
	factory := promauto.With(reg)
	return &LeaveMetrics{
		MutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leave",
			Subsystem: "service",
			Name:      "mutations_total",
			Help:      "Total number of leave mutations by operation and outcome.",
		}, []string{"operation", "outcome"}), // outcome: done, rejected, not_found, error
		MutationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leave",
			Subsystem: "service",
			Name:      "mutation_duration_seconds",
			Help:      "Duration of leave mutations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ProvisionedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leave",
			Subsystem: "provisioner",
			Name:      "records_total",
			Help:      "Leave records handled by provisioning runs by result.",
		}, []string{"result"}), // result: created, skipped
		OverdrawnRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "leave",
			Subsystem: "service",
			Name:      "overdraft_mutations_total",
			Help:      "Mutations that left a leave record with a negative remaining balance.",
		}),
	}
}

// ObserveMutation records the outcome and duration of one operation. Safe on
// a nil receiver.
func (m *LeaveMetrics) ObserveMutation(operation, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(operation, outcome).Inc()
	m.MutationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveProvisioning adds a provisioning run's counts. Safe on a nil receiver.
func (m *LeaveMetrics) ObserveProvisioning(created, skipped int) {
	if m == nil {
		return
	}
	m.ProvisionedTotal.WithLabelValues("created").Add(float64(created))
	m.ProvisionedTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveOverdraft counts a mutation that ended in overdraft. Safe on a nil receiver.
func (m *LeaveMetrics) ObserveOverdraft() {
	if m == nil {
		return
	}
	m.OverdrawnRecords.Inc()
}
