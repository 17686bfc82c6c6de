package match

import (
	"errors"
	"sync"
	"time"

	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/pubsub"
	"github.com/tenman-bot/tenman/internal/rank"
	"github.com/tenman-bot/tenman/internal/scheduler"
)

// State is the lifecycle phase of a match.
type State string

const (
	// StateForming only exists inside Create; it is never observable.
	StateForming State = "FORMING"
	// StateCheckingIn waits for all ten players to confirm readiness.
	StateCheckingIn State = "CHECKING_IN"
	// StateActive is a fully confirmed match awaiting a result report.
	StateActive State = "ACTIVE"
	// StateCancelled is terminal: the check-in deadline passed incomplete.
	StateCancelled State = "CANCELLED"
	// StateReported is terminal: a leader reported the result.
	StateReported State = "REPORTED"
)

// Team names the two sides of a match.
type Team string

const (
	TeamA Team = "team1"
	TeamB Team = "team2"
)

var (
	// ErrMatchInProgress is returned by Create while a match is pending.
	ErrMatchInProgress = errors.New("a match is already in progress")
	// ErrMatchNotFound is returned when no reportable match exists.
	ErrMatchNotFound = errors.New("no active match found")
	// ErrNotInMatch is returned for players outside the match, and for
	// reports from anyone but a team leader.
	ErrNotInMatch = errors.New("player is not part of the match")
	// ErrAlreadyCheckedIn is returned on a repeated check-in.
	ErrAlreadyCheckedIn = errors.New("player has already checked in")
	// ErrNotAllCheckedIn is returned when reporting before check-in completes.
	ErrNotAllCheckedIn = errors.New("match is not active: not all players checked in")
)

// countdown tracks one player's direct countdown notification and the
// repeating tick that edits its remaining-time text.
type countdown struct {
	handle    scheduler.Handle
	ref       notifier.MessageRef
	remaining time.Duration
}

// Match is one active match. Roster preserves the original pool order; the
// teams hold the rank-sorted alternating split.
type Match struct {
	ID        string
	Roster    []player.Player
	TeamA     []player.Player
	TeamB     []player.Player
	LeaderA   player.Player
	LeaderB   player.Player
	CheckedIn map[string]bool
	ChannelID string
	State     State

	deadline   scheduler.Handle
	countdowns map[string]*countdown
}

// View is a read-only snapshot of the current match for callers outside the
// lifecycle.
type View struct {
	ID        string
	State     State
	TeamA     []player.Player
	TeamB     []player.Player
	LeaderA   player.Player
	LeaderB   player.Player
	CheckedIn []player.Player
	Waiting   []player.Player
}

// Requeuer returns cancelled participants to the waiting pool. Admit never
// fails; TryFormMatch re-attempts formation for a pool stuck at capacity.
type Requeuer interface {
	Admit(p player.Player) int
	TryFormMatch()
}

// Config carries the check-in tunables.
type Config struct {
	CheckInWindow time.Duration
	CountdownTick time.Duration
}

// Lifecycle governs the single match in progress. Every transition runs
// under one mutex and terminal states are set before any transport call, so
// a racing timer or second report observes the final state, never a partial
// one.
type Lifecycle struct {
	mu      sync.Mutex
	current *Match

	cfg     Config
	rank    rank.RankStore
	sched   scheduler.Scheduler
	notif   notifier.Notifier
	metrics metrics.Metrics
	events  pubsub.PubSubClient
	requeue Requeuer
}
