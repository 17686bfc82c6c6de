package http

import (
	"net/http"

	"github.com/tenman-bot/tenman/internal/config"
	"github.com/tenman-bot/tenman/internal/engine"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
)

type Server struct {
	Engine         engine.Engine
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
}
