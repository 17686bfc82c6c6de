package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		QueueJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_queue_joins_total",
			Help: "The total number of successful queue admissions.",
		}),
		QueueLeaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_queue_leaves_total",
			Help: "The total number of voluntary queue withdrawals.",
		}),
		IdleEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_queue_idle_evictions_total",
			Help: "The total number of players evicted from the queue for idling.",
		}),
		QueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tenman_queue_size",
			Help: "The current number of players waiting in the queue.",
		}),
		MatchesFormed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_matches_formed_total",
			Help: "The total number of matches formed from a full queue.",
		}),
		MatchesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_matches_cancelled_total",
			Help: "The total number of matches cancelled at the check-in deadline.",
		}),
		MatchesReported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_matches_reported_total",
			Help: "The total number of match results reported.",
		}),
		CheckIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_check_ins_total",
			Help: "The total number of player check-ins.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenman_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tenman_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.QueueJoins,
		s.QueueLeaves,
		s.IdleEvictions,
		s.QueueSize,
		s.MatchesFormed,
		s.MatchesCancelled,
		s.MatchesReported,
		s.CheckIns,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncQueueJoins() { s.QueueJoins.Inc() }

func (s *Service) IncQueueLeaves() { s.QueueLeaves.Inc() }

func (s *Service) IncIdleEvictions() { s.IdleEvictions.Inc() }

func (s *Service) SetQueueSize(size int) { s.QueueSize.Set(float64(size)) }

func (s *Service) IncMatchesFormed() { s.MatchesFormed.Inc() }

func (s *Service) IncMatchesCancelled() { s.MatchesCancelled.Inc() }

func (s *Service) IncMatchesReported() { s.MatchesReported.Inc() }

func (s *Service) IncCheckIns() { s.CheckIns.Inc() }

func (s *Service) IncSlackNotifSent() { s.SlackNotifSent.Inc() }

func (s *Service) IncSlackNotifFailed() { s.SlackNotifFailed.Inc() }

func (s *Service) SetStartupTime(duration float64) { s.StartupTimeSeconds.Set(duration) }
