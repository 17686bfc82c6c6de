package notifier

import (
	"time"

	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/rank"
)

// MessageRef points at a previously sent message so it can be edited or
// deleted later.
type MessageRef struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"timestamp"`
}

// Notifier defines a high-level interface for the chat transport. This
// decouples the engine from the specific provider (e.g., Slack). All calls
// may fail; failures on non-critical sends are the caller's to swallow and
// log, never a match-fatal error.
type Notifier interface {
	// Queue status message in the main channel.
	PublishQueueStatus(players []player.Player) (MessageRef, error)
	UpdateQueueStatus(ref MessageRef, players []player.Player) error
	DeleteMessage(ref MessageRef) error

	// Direct notifications.
	SendDirectMessage(userID, text string) error
	SendCountdown(userID string, remaining time.Duration) (MessageRef, error)
	UpdateCountdown(ref MessageRef, remaining time.Duration) error

	// Scoped match channel, visible only to the ten participants.
	CreateMatchChannel(name string, members []player.Player) (string, error)
	ArchiveMatchChannel(channelID string) error
	PublishTeams(channelID string, teamA, teamB []player.Player) error
	PublishCheckInStatus(channelID string, checkedIn, waiting []player.Player) error
	PublishMatchReady(channelID string) error
	PublishCancellation(channelID string) error
	PublishResult(channelID string, winners, losers []player.Player) error

	// Identity resolution.
	ResolvePlayer(userID string) (player.Player, error)
	// ChannelMembers returns the resolved, non-bot members of a channel.
	ChannelMembers(channelID string) ([]player.Player, error)

	// Formatting for slash command responses.
	FormatLeaderboardResponse(stats []rank.PlayerStats) (any, error)
	FormatQueueResponse(players []player.Player) (any, error)
}
