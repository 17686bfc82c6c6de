package queue

import (
	"errors"
	"sync"

	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/config"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/scheduler"
)

var (
	// ErrBanned is returned when a banned player tries to join.
	ErrBanned = errors.New("player is banned from the queue")
	// ErrAlreadyQueued is returned when a player is already in the pool.
	ErrAlreadyQueued = errors.New("player is already in the queue")
	// ErrQueueFull is returned when the pool is at capacity but could not be
	// drained because a match is already in progress.
	ErrQueueFull = errors.New("queue is full while a match is in progress")
)

// MatchStarter hands a full pool to the match lifecycle. A failed Create
// leaves no match behind and the pool is restored.
type MatchStarter interface {
	Create(players []player.Player) error
}

// entry is a single pool slot. The two idle timer handles are cancelled
// together whenever the entry leaves the pool for any reason.
type entry struct {
	player player.Player
	warn   scheduler.Handle
	evict  scheduler.Handle
}

// Manager owns the waiting pool. All mutation happens under a single mutex
// held across the whole admit-and-maybe-trigger sequence; the pool-full
// trigger itself runs after the mutex is released, on an already-drained
// snapshot, so no observer ever sees more than a full pool.
type Manager struct {
	mu      sync.Mutex
	cfg     config.QueueConfig
	entries []*entry

	bans    bans.BanStore
	sched   scheduler.Scheduler
	notif   notifier.Notifier
	metrics metrics.Metrics
	starter MatchStarter
}
