package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "foodbridge"

// Result label values.
const (
	ResultSuccess = "success"
	ResultReplay  = "replay"
	ResultFailure = "failure"
)

// Recorder exposes domain counters of the allocation engine and notifications.
type Recorder struct {
	allocations  *prometheus.CounterVec
	servings     prometheus.Counter
	decisions    *prometheus.CounterVec
	notifyFailed *prometheus.CounterVec
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRecorder registers the domain counters on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	allocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_total",
		Help:      "Allocation runs by result.",
	}, []string{"result"})
	servings := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocated_servings_total",
		Help:      "Servings consumed by committed allocations.",
	})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donation_decisions_total",
		Help:      "Organization accept and reject decisions by result.",
	}, []string{"decision", "result"})
	notifyFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Notifications that could not be delivered.",
	}, []string{"kind"})
	reg.MustRegister(allocations, servings, decisions, notifyFailed)
	return &Recorder{
		allocations:  allocations,
		servings:     servings,
		decisions:    decisions,
		notifyFailed: notifyFailed,
	}
}

// Allocation counts an allocation run. Servings are only added for fresh allocations.
func (r *Recorder) Allocation(result string, servings int) {
	if r == nil || r.allocations == nil {
		return
	}
	r.allocations.WithLabelValues(normalizeLabel(result)).Inc()
	if result == ResultSuccess && servings > 0 {
		r.servings.Add(float64(servings))
	}
}

// Decision counts an accept or reject decision.
func (r *Recorder) Decision(decision, result string) {
	if r == nil || r.decisions == nil {
		return
	}
	r.decisions.WithLabelValues(normalizeLabel(decision), normalizeLabel(result)).Inc()
}

// NotificationFailed counts a notification that could not be sent.
func (r *Recorder) NotificationFailed(kind string) {
	if r == nil || r.notifyFailed == nil {
		return
	}
	r.notifyFailed.WithLabelValues(normalizeLabel(kind)).Inc()
}
