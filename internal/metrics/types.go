package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	BookingsConfirmed  prometheus.Counter
	BookingConflicts   prometheus.Counter
	BookingsCancelled  prometheus.Counter
	ResultsRecorded    prometheus.Counter
	OverrideToggles    *prometheus.CounterVec
	ReconcileDuration  prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
