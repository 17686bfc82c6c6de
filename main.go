package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/config"
	"github.com/tenman-bot/tenman/internal/database"
	"github.com/tenman-bot/tenman/internal/engine"
	server "github.com/tenman-bot/tenman/internal/http"
	"github.com/tenman-bot/tenman/internal/match"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier/slack"
	"github.com/tenman-bot/tenman/internal/pubsub"
	"github.com/tenman-bot/tenman/internal/queue"
	"github.com/tenman-bot/tenman/internal/rank"
	"github.com/tenman-bot/tenman/internal/scheduler"
	"github.com/tenman-bot/tenman/internal/settings"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	banStore, err := bans.New(db)
	if err != nil {
		log.Fatalf("Failed to load ban store: %s", err)
	}
	rankStore, err := rank.New(db)
	if err != nil {
		log.Fatalf("Failed to load rank store: %s", err)
	}
	settingsStore := settings.New(db)

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	sched := scheduler.New()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, cfg.Queue.Capacity, metricsSvc)
	events := pubsub.New(cfg.ProjectID)

	// The queue and the lifecycle reference each other: a full pool starts a
	// match, a cancelled match refills the pool.
	queueMgr := queue.New(cfg.Queue, banStore, sched, notifier, metricsSvc)
	lifecycle := match.New(
		match.Config{CheckInWindow: cfg.Queue.CheckInWindow, CountdownTick: cfg.Queue.CountdownTick},
		rankStore, sched, notifier, metricsSvc, events, queueMgr,
	)
	queueMgr.SetMatchStarter(lifecycle)

	eng := engine.New(cfg, queueMgr, lifecycle, banStore, rankStore, settingsStore, notifier)
	if err := eng.Reconcile(); err != nil {
		// The bot works without the status message; commands still function.
		log.Error("Failed to reconcile queue status message", "error", err)
	}

	s := server.NewServer(
		eng,
		metricsSvc,
		metricsHandler,
		cfg,
		notifier,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
