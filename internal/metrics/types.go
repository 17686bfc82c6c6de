package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service implements Metrics on top of Prometheus collectors.
type Service struct {
	QueueJoins         prometheus.Counter
	QueueLeaves        prometheus.Counter
	IdleEvictions      prometheus.Counter
	QueueSize          prometheus.Gauge
	MatchesFormed      prometheus.Counter
	MatchesCancelled   prometheus.Counter
	MatchesReported    prometheus.Counter
	CheckIns           prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
