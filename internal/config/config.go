package config

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
			AdminUserIDs:  splitList(getEnv("SLACK_ADMIN_USER_IDS")),
			OwnerUserID:   getEnv("SLACK_OWNER_USER_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		Queue:     DefaultQueueConfig(),
		ProjectID: getEnv("GCP_PROJECT"),
	}
	return cfg
}

// DefaultQueueConfig returns the production pool tunables.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Capacity:      10,
		IdleWarning:   25 * time.Minute,
		IdleEviction:  30 * time.Minute,
		CheckInWindow: 5 * time.Minute,
		CountdownTick: 1 * time.Minute,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
