package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides a process wide registry and the collectors registered on it.
var Module = fx.Provide(
	NewRegistry,
	func(reg *prometheus.Registry) prometheus.Gatherer { return reg },
	func(reg *prometheus.Registry) *Recorder { return NewRecorder(reg) },
	func(reg *prometheus.Registry) *CronJobMetrics { return NewCronJobMetrics(reg) },
)
