package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncQueueJoins()
	IncQueueLeaves()
	IncIdleEvictions()
	SetQueueSize(size int)
	IncMatchesFormed()
	IncMatchesCancelled()
	IncMatchesReported()
	IncCheckIns()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
