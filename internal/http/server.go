package http

import (
	"net/http"

	"github.com/tenman-bot/tenman/internal/config"
	"github.com/tenman-bot/tenman/internal/engine"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
)

func NewServer(eng engine.Engine, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notif notifier.Notifier) *Server {
	server := &Server{
		Engine:         eng,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notif,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Slack routes additionally verify the request signature.
	slackAuth := verifySlackSignature(s.Cfg.Slack.SigningSecret)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/queue", Chain(s.QueueHandler(), paramsMiddleware))
	s.Router.Handle("/bans", Chain(s.BansHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/queue", Chain(s.QueueCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/report", Chain(s.ReportCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/timeout", Chain(s.TimeoutCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/untimeout", Chain(s.UntimeoutCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/forcematch", Chain(s.ForceMatchCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/resetstats", Chain(s.ResetStatsCommandHandler(), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/interactive", Chain(s.InteractiveHandler(), paramsMiddleware, slackAuth))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
