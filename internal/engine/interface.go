package engine

import (
	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/match"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/rank"
)

// Engine is the command surface of the bot. It orchestrates the queue, the
// match lifecycle, bans and rank bookkeeping, and keeps the published
// queue-status message in sync with the pool.
type Engine interface {
	// Join admits a player into the waiting pool and returns the new size.
	Join(userID string) (int, error)
	// Leave withdraws a player; it reports whether they were in the pool.
	Leave(userID string) bool
	// QueueStatus returns the pool in insertion order.
	QueueStatus() []player.Player

	// CheckIn confirms readiness for the match in progress.
	CheckIn(userID string) error
	// Report records the result of the active match. Leaders only.
	Report(userID string, winner match.Team) error
	// CurrentMatch returns a snapshot of the match in progress, if any.
	CurrentMatch() (match.View, bool)

	// Timeout bars a player for days+hours+minutes. Admins only.
	Timeout(actorID, targetID string, days, hours, minutes int) error
	// Untimeout lifts an active ban. Admins only.
	Untimeout(actorID, targetID string) error
	// Bans lists the active bans.
	Bans() []bans.Ban

	// ForceMatch forms a match from the members of a channel, bypassing the
	// queue. Owner only.
	ForceMatch(actorID, channelID string) error

	// Leaderboard returns up to limit players ordered by score.
	Leaderboard(limit int) []rank.PlayerStats
	// ResetStats zeroes every player's record. Admins only.
	ResetStats(actorID string) error

	// Reconcile replaces any stale queue-status message left over from a
	// previous process with a fresh one. Called once at startup.
	Reconcile() error
}
