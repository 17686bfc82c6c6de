package engine

import (
	"errors"
	"sync"

	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/config"
	"github.com/tenman-bot/tenman/internal/match"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/queue"
	"github.com/tenman-bot/tenman/internal/rank"
	"github.com/tenman-bot/tenman/internal/settings"
)

var (
	// ErrPermissionDenied is returned when a non-admin invokes an admin
	// command.
	ErrPermissionDenied = errors.New("you are not allowed to use this command")
	// ErrNotAuthorized is returned when anyone but the owner forces a match.
	ErrNotAuthorized = errors.New("only the owner can force a match")
	// ErrInsufficientPlayers is returned when a forced match cannot find
	// enough eligible players in the channel.
	ErrInsufficientPlayers = errors.New("not enough eligible players in the channel")
)

// service is the concrete Engine. The components it composes are all safe
// for concurrent use; msgMu only guards the read-modify-write of the
// queue-status message pointer.
type service struct {
	cfg      config.Config
	queue    *queue.Manager
	match    *match.Lifecycle
	bans     bans.BanStore
	rank     rank.RankStore
	settings settings.Store
	notif    notifier.Notifier

	msgMu sync.Mutex
}
