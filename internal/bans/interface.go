package bans

import "time"

// BanStore tracks temporary admission bans. Entries whose expiry has passed
// are treated as absent and purged lazily on the next lookup.
type BanStore interface {
	// Ban bars a player for the given duration, overwriting any existing ban.
	// Fails with ErrInvalidDuration unless the duration is positive.
	Ban(playerID string, duration time.Duration) error
	// Unban removes an existing ban. Fails with ErrNotBanned if none exists.
	Unban(playerID string) error
	// IsBanned reports whether the player is currently barred from the queue.
	IsBanned(playerID string) bool
	// List returns the active bans.
	List() []Ban
}
