package bans

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

var (
	// ErrInvalidDuration is returned when a ban duration is not positive.
	ErrInvalidDuration = errors.New("ban duration must be positive")
	// ErrNotBanned is returned when unbanning a player with no active ban.
	ErrNotBanned = errors.New("player is not banned")
)

// Ban is an active admission ban.
type Ban struct {
	PlayerID  string    `json:"player_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// store keeps the ban table in memory as the source of truth and rewrites
// the persisted table after every mutation.
type store struct {
	db   *sql.DB
	mu   sync.Mutex
	bans map[string]time.Time
	now  func() time.Time
}
