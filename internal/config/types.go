package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	Turso     TursoConfig
	Queue     QueueConfig
	ProjectID string
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
	// AdminUserIDs may run timeout/untimeout/resetstats.
	AdminUserIDs []string
	// OwnerUserID is the only identity allowed to force a match.
	OwnerUserID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// QueueConfig carries the pool tunables. The defaults match the production
// ruleset: ten players, idle warning after 25 minutes, eviction after 30,
// five minute check-in window with one-minute countdown ticks.
type QueueConfig struct {
	Capacity      int
	IdleWarning   time.Duration
	IdleEviction  time.Duration
	CheckInWindow time.Duration
	CountdownTick time.Duration
}
