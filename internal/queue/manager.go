package queue

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/config"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/scheduler"
)

// New creates a queue Manager. The match starter is wired afterwards via
// SetMatchStarter because the lifecycle and the queue reference each other.
func New(cfg config.QueueConfig, banStore bans.BanStore, sched scheduler.Scheduler, notif notifier.Notifier, metricsSvc metrics.Metrics) *Manager {
	return &Manager{
		cfg:     cfg,
		bans:    banStore,
		sched:   sched,
		notif:   notif,
		metrics: metricsSvc,
	}
}

// SetMatchStarter wires the lifecycle that receives a full pool.
func (m *Manager) SetMatchStarter(starter MatchStarter) {
	m.starter = starter
}

// Join admits a player into the pool and returns the new pool size. The join
// that fills the pool synchronously drains it into a new match before
// returning.
func (m *Manager) Join(p player.Player) (int, error) {
	if m.bans.IsBanned(p.ID) {
		return 0, fmt.Errorf("%w: %s", ErrBanned, p.ID)
	}

	m.mu.Lock()
	if m.indexLocked(p.ID) >= 0 {
		m.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrAlreadyQueued, p.ID)
	}
	if len(m.entries) >= m.cfg.Capacity {
		// The pool can only sit at capacity when a previous drain was refused
		// because a match was in progress.
		m.mu.Unlock()
		return 0, ErrQueueFull
	}
	m.admitLocked(p)
	size := len(m.entries)
	snapshot := m.drainIfFullLocked()
	m.mu.Unlock()

	m.metrics.IncQueueJoins()
	m.metrics.SetQueueSize(size)
	log.Info("Player joined queue", "playerID", p.ID, "size", size)

	if snapshot != nil {
		m.startMatch(snapshot)
	}
	return size, nil
}

// Leave withdraws a player. It is an idempotent no-op when the player is not
// in the pool; the boolean reports whether an entry was removed.
func (m *Manager) Leave(playerID string) bool {
	m.mu.Lock()
	removed := m.removeLocked(playerID)
	size := len(m.entries)
	m.mu.Unlock()

	if removed {
		m.metrics.IncQueueLeaves()
		m.metrics.SetQueueSize(size)
		log.Info("Player left queue", "playerID", playerID, "size", size)
	}
	return removed
}

// Admit is the admission path used by cancellation recovery. It never fails:
// banned or already-present players are skipped silently. Like Join, the
// admission that fills the pool triggers match formation.
func (m *Manager) Admit(p player.Player) int {
	if m.bans.IsBanned(p.ID) {
		log.Warn("Skipping re-admission of banned player", "playerID", p.ID)
		return m.Size()
	}

	m.mu.Lock()
	if m.indexLocked(p.ID) < 0 && len(m.entries) < m.cfg.Capacity {
		m.admitLocked(p)
		log.Info("Player re-admitted to queue", "playerID", p.ID, "size", len(m.entries))
	}
	size := len(m.entries)
	snapshot := m.drainIfFullLocked()
	m.mu.Unlock()

	m.metrics.SetQueueSize(size)
	if snapshot != nil {
		m.startMatch(snapshot)
	}
	return size
}

// TryFormMatch re-attempts formation for a pool stuck at capacity. The
// lifecycle calls this when a match reaches a terminal state.
func (m *Manager) TryFormMatch() {
	m.mu.Lock()
	snapshot := m.drainIfFullLocked()
	m.mu.Unlock()
	if snapshot != nil {
		m.startMatch(snapshot)
	}
}

// View returns the pool's players in insertion order.
func (m *Manager) View() []player.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := make([]player.Player, len(m.entries))
	for i, e := range m.entries {
		players[i] = e.player
	}
	return players
}

// Size returns the current pool size.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// admitLocked appends an entry and starts its two-stage idle timer. There is
// no activity-based reset; the timer is fixed from the moment of admission.
func (m *Manager) admitLocked(p player.Player) {
	e := &entry{player: p}
	e.warn = m.sched.Schedule("queue-idle-warning:"+p.ID, m.cfg.IdleWarning, func() {
		m.idleWarn(p)
	})
	e.evict = m.sched.Schedule("queue-idle-eviction:"+p.ID, m.cfg.IdleEviction, func() {
		m.idleEvict(p)
	})
	m.entries = append(m.entries, e)
}

func (m *Manager) indexLocked(playerID string) int {
	for i, e := range m.entries {
		if e.player.ID == playerID {
			return i
		}
	}
	return -1
}

// removeLocked drops an entry and cancels both of its idle timers.
func (m *Manager) removeLocked(playerID string) bool {
	i := m.indexLocked(playerID)
	if i < 0 {
		return false
	}
	e := m.entries[i]
	m.sched.Cancel(e.warn)
	m.sched.Cancel(e.evict)
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return true
}

// drainIfFullLocked snapshots and clears a full pool, cancelling every idle
// timer. It returns nil when the pool is below capacity or no starter is
// wired.
func (m *Manager) drainIfFullLocked() []player.Player {
	if m.starter == nil || len(m.entries) < m.cfg.Capacity {
		return nil
	}
	snapshot := make([]player.Player, len(m.entries))
	for i, e := range m.entries {
		snapshot[i] = e.player
		m.sched.Cancel(e.warn)
		m.sched.Cancel(e.evict)
	}
	m.entries = nil
	return snapshot
}

// startMatch hands a drained snapshot to the lifecycle. When formation fails
// (a match already in progress, or no match channel could be created) the
// snapshot is restored with fresh idle timers; a pool stuck at capacity
// re-fires formation once the running match ends.
func (m *Manager) startMatch(snapshot []player.Player) {
	log.Info("Queue reached capacity, forming match", "players", len(snapshot))
	if err := m.starter.Create(snapshot); err != nil {
		log.Warn("Match formation refused, restoring pool", "error", err)
		m.mu.Lock()
		for _, p := range snapshot {
			if m.indexLocked(p.ID) < 0 {
				m.admitLocked(p)
			}
		}
		size := len(m.entries)
		m.mu.Unlock()
		m.metrics.SetQueueSize(size)
		return
	}
	m.metrics.SetQueueSize(0)
}

// idleWarn fires 5 minutes before eviction. The callback re-checks presence
// because cancellation can race dispatch.
func (m *Manager) idleWarn(p player.Player) {
	m.mu.Lock()
	present := m.indexLocked(p.ID) >= 0
	m.mu.Unlock()
	if !present {
		return
	}
	warnIn := m.cfg.IdleEviction - m.cfg.IdleWarning
	if err := m.notif.SendDirectMessage(p.ID, fmt.Sprintf("You have been in the queue a while — you will be removed in %s unless a match starts.", warnIn)); err != nil {
		log.Error("Failed to send idle warning", "error", err, "playerID", p.ID)
	}
}

// idleEvict removes the entry if it is still present at fire time.
func (m *Manager) idleEvict(p player.Player) {
	m.mu.Lock()
	removed := m.removeLocked(p.ID)
	size := len(m.entries)
	m.mu.Unlock()
	if !removed {
		return
	}
	m.metrics.IncIdleEvictions()
	m.metrics.SetQueueSize(size)
	log.Info("Player evicted from queue for idling", "playerID", p.ID, "size", size)
	if err := m.notif.SendDirectMessage(p.ID, fmt.Sprintf("You were removed from the queue after %s of inactivity.", m.cfg.IdleEviction)); err != nil {
		log.Error("Failed to send eviction notice", "error", err, "playerID", p.ID)
	}
}
