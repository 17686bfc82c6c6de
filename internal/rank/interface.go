package rank

import "github.com/tenman-bot/tenman/internal/player"

// RankStore keeps per-player win/loss counters and derives the rank score
// (wins minus losses) used for team balancing and the leaderboard.
type RankStore interface {
	// Record applies a match result in a single logical update: every winner
	// gains a win, every loser a loss. The update is never partially applied.
	Record(winners, losers []player.Player) error
	// Score returns wins minus losses; unknown players score zero.
	Score(playerID string) int
	// Scores returns scores for a set of players in one call.
	Scores(playerIDs []string) map[string]int
	// Leaderboard returns players ordered by score descending, ties broken by
	// the order in which they first entered the table, truncated to limit.
	Leaderboard(limit int) []PlayerStats
	// ResetAll clears the table.
	ResetAll() error
}
