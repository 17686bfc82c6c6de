package match

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/pubsub"
	"github.com/tenman-bot/tenman/internal/rank"
	"github.com/tenman-bot/tenman/internal/scheduler"
)

// New creates a match Lifecycle.
func New(cfg Config, rankStore rank.RankStore, sched scheduler.Scheduler, notif notifier.Notifier, metricsSvc metrics.Metrics, events pubsub.PubSubClient, requeue Requeuer) *Lifecycle {
	return &Lifecycle{
		cfg:     cfg,
		rank:    rankStore,
		sched:   sched,
		notif:   notif,
		metrics: metricsSvc,
		events:  events,
		requeue: requeue,
	}
}

// Create forms a match from a drained pool snapshot: players are stably
// sorted descending by rank score (ties keep pool insertion order), split by
// alternating assignment into two teams of five, and moved into check-in
// with a deadline timer and per-player countdown notifications.
func (l *Lifecycle) Create(players []player.Player) error {
	m := &Match{
		ID:         uuid.New().String(),
		Roster:     players,
		CheckedIn:  make(map[string]bool, len(players)),
		State:      StateForming,
		countdowns: make(map[string]*countdown, len(players)),
	}

	scores := l.rank.Scores(player.IDs(players))
	sorted := make([]player.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scores[sorted[i].ID] > scores[sorted[j].ID]
	})

	for i, p := range sorted {
		if i%2 == 0 {
			m.TeamA = append(m.TeamA, p)
		} else {
			m.TeamB = append(m.TeamB, p)
		}
		m.CheckedIn[p.ID] = false
	}
	m.LeaderA = m.TeamA[0]
	m.LeaderB = m.TeamB[0]

	l.mu.Lock()
	if l.current != nil {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMatchInProgress, l.currentID())
	}
	m.State = StateCheckingIn
	l.current = m
	l.mu.Unlock()

	log.Info("Match formed", "matchID", m.ID, "leaderA", m.LeaderA.ID, "leaderB", m.LeaderB.ID)

	channelID, err := l.notif.CreateMatchChannel("match-"+m.ID[:8], players)
	if err != nil {
		// Without the channel there is no check-in surface; free the slot
		// and let the caller restore its pool.
		log.Error("Failed to create match channel, aborting match", "error", err, "matchID", m.ID)
		l.mu.Lock()
		l.current = nil
		l.mu.Unlock()
		return fmt.Errorf("failed to create match channel: %w", err)
	}

	l.mu.Lock()
	m.ChannelID = channelID
	matchID := m.ID
	l.mu.Unlock()

	if err := l.notif.PublishTeams(channelID, m.TeamA, m.TeamB); err != nil {
		log.Error("Failed to publish team assignments", "error", err, "matchID", matchID)
	}

	for _, p := range players {
		l.startCountdown(matchID, p)
	}

	l.mu.Lock()
	if l.current != nil && l.current.ID == matchID {
		l.current.deadline = l.sched.Schedule("match-checkin-deadline", l.cfg.CheckInWindow, func() {
			l.onDeadline(matchID)
		})
	}
	event := m.eventLocked("")
	l.mu.Unlock()

	l.metrics.IncMatchesFormed()
	l.publishEvent(pubsub.EventMatchFormed, event)
	return nil
}

// CheckIn confirms a player's readiness. The deadline timer and each
// countdown never revert a check-in; once true, always true.
func (l *Lifecycle) CheckIn(playerID string) error {
	l.mu.Lock()
	m := l.current
	if m == nil {
		l.mu.Unlock()
		return ErrNotInMatch
	}
	checked, ok := m.CheckedIn[playerID]
	if !ok {
		l.mu.Unlock()
		return ErrNotInMatch
	}
	if checked {
		l.mu.Unlock()
		return ErrAlreadyCheckedIn
	}

	m.CheckedIn[playerID] = true
	if cd := m.countdowns[playerID]; cd != nil {
		l.sched.Cancel(cd.handle)
		delete(m.countdowns, playerID)
	}

	all := true
	for _, done := range m.CheckedIn {
		if !done {
			all = false
			break
		}
	}
	if all {
		m.State = StateActive
		l.sched.Cancel(m.deadline)
		for id, cd := range m.countdowns {
			l.sched.Cancel(cd.handle)
			delete(m.countdowns, id)
		}
	}
	checkedIn, waiting := m.partitionLocked()
	channelID := m.ChannelID
	l.mu.Unlock()

	l.metrics.IncCheckIns()
	log.Info("Player checked in", "playerID", playerID, "checkedIn", len(checkedIn), "waiting", len(waiting))

	if err := l.notif.PublishCheckInStatus(channelID, checkedIn, waiting); err != nil {
		log.Error("Failed to publish check-in status", "error", err, "playerID", playerID)
	}
	if all {
		log.Info("All players checked in, match is live")
		if err := l.notif.PublishMatchReady(channelID); err != nil {
			log.Error("Failed to publish match-ready notice", "error", err)
		}
	}
	return nil
}

// Report records the result. Only a team leader may report, only an Active
// match is reportable, and the terminal state is set before any transport
// call so a racing second report always observes ErrMatchNotFound.
func (l *Lifecycle) Report(reporterID string, winner Team) error {
	l.mu.Lock()
	m := l.current
	if m == nil {
		l.mu.Unlock()
		return ErrMatchNotFound
	}
	if reporterID != m.LeaderA.ID && reporterID != m.LeaderB.ID {
		l.mu.Unlock()
		return ErrNotInMatch
	}
	if m.State != StateActive {
		l.mu.Unlock()
		return ErrNotAllCheckedIn
	}

	m.State = StateReported
	l.current = nil
	winners, losers := m.TeamA, m.TeamB
	if winner == TeamB {
		winners, losers = m.TeamB, m.TeamA
	}
	channelID := m.ChannelID
	event := m.eventLocked(string(winner))
	l.mu.Unlock()

	log.Info("Match reported", "matchID", m.ID, "winner", winner, "reporter", reporterID)

	recordErr := l.rank.Record(winners, losers)
	if recordErr != nil {
		// The in-memory counters are already applied; only the durable copy
		// lags. Surface the failure to the reporter without unwinding state.
		log.Error("Failed to persist match result", "error", recordErr, "matchID", m.ID)
	}

	if err := l.notif.PublishResult(channelID, winners, losers); err != nil {
		log.Error("Failed to publish match result", "error", err, "matchID", m.ID)
	}
	if err := l.notif.ArchiveMatchChannel(channelID); err != nil {
		log.Error("Failed to archive match channel", "error", err, "matchID", m.ID)
	}

	l.metrics.IncMatchesReported()
	l.publishEvent(pubsub.EventMatchReported, event)
	l.requeue.TryFormMatch()
	return recordErr
}

// Current returns a snapshot of the match in progress, if any.
func (l *Lifecycle) Current() (View, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.current
	if m == nil {
		return View{}, false
	}
	checkedIn, waiting := m.partitionLocked()
	return View{
		ID:        m.ID,
		State:     m.State,
		TeamA:     m.TeamA,
		TeamB:     m.TeamB,
		LeaderA:   m.LeaderA,
		LeaderB:   m.LeaderB,
		CheckedIn: checkedIn,
		Waiting:   waiting,
	}, true
}

// onDeadline fires when the check-in window closes. A completed match has
// already moved to Active (or beyond), in which case this is a no-op.
func (l *Lifecycle) onDeadline(matchID string) {
	l.mu.Lock()
	m := l.current
	if m == nil || m.ID != matchID || m.State != StateCheckingIn {
		l.mu.Unlock()
		log.Debug("Check-in deadline fired against a settled match", "matchID", matchID)
		return
	}

	m.State = StateCancelled
	l.current = nil
	for id, cd := range m.countdowns {
		l.sched.Cancel(cd.handle)
		delete(m.countdowns, id)
	}
	checkedIn, _ := m.partitionLocked()
	channelID := m.ChannelID
	roster := m.Roster
	event := m.eventLocked("")
	l.mu.Unlock()

	log.Info("Check-in deadline passed, cancelling match", "matchID", matchID, "checkedIn", len(checkedIn))

	if err := l.notif.PublishCancellation(channelID); err != nil {
		log.Error("Failed to publish cancellation notice", "error", err, "matchID", matchID)
	}

	// The entire original roster returns to the pool, including players who
	// had already checked in.
	for _, p := range roster {
		l.requeue.Admit(p)
	}

	if err := l.notif.ArchiveMatchChannel(channelID); err != nil {
		log.Error("Failed to archive match channel", "error", err, "matchID", matchID)
	}

	l.metrics.IncMatchesCancelled()
	l.publishEvent(pubsub.EventMatchCancelled, event)
}

// startCountdown sends a player their direct countdown notification and
// schedules the minute tick that edits its remaining-time text. The tick
// self-cancels when the player checks in, the window is exhausted, or the
// match settles.
func (l *Lifecycle) startCountdown(matchID string, p player.Player) {
	ref, err := l.notif.SendCountdown(p.ID, l.cfg.CheckInWindow)
	if err != nil {
		// Losing one direct notification never fails the match.
		log.Error("Failed to send countdown notification", "error", err, "playerID", p.ID)
	}

	l.mu.Lock()
	m := l.current
	if m == nil || m.ID != matchID || m.State != StateCheckingIn || m.CheckedIn[p.ID] {
		l.mu.Unlock()
		return
	}
	cd := &countdown{ref: ref, remaining: l.cfg.CheckInWindow}
	m.countdowns[p.ID] = cd
	cd.handle = l.sched.ScheduleRepeating("match-countdown:"+p.ID, l.cfg.CountdownTick, func() {
		l.onCountdownTick(matchID, p.ID)
	})
	l.mu.Unlock()
}

func (l *Lifecycle) onCountdownTick(matchID, playerID string) {
	l.mu.Lock()
	m := l.current
	if m == nil || m.ID != matchID || m.State != StateCheckingIn {
		l.mu.Unlock()
		return
	}
	cd := m.countdowns[playerID]
	if cd == nil {
		l.mu.Unlock()
		return
	}
	cd.remaining -= l.cfg.CountdownTick
	remaining := cd.remaining
	ref := cd.ref
	if remaining <= 0 {
		l.sched.Cancel(cd.handle)
		delete(m.countdowns, playerID)
	}
	l.mu.Unlock()

	if remaining > 0 {
		if err := l.notif.UpdateCountdown(ref, remaining); err != nil {
			log.Error("Failed to update countdown", "error", err, "playerID", playerID)
		}
	}
}

// partitionLocked splits the roster into checked-in and waiting players,
// preserving roster order.
func (m *Match) partitionLocked() (checkedIn, waiting []player.Player) {
	for _, p := range m.Roster {
		if m.CheckedIn[p.ID] {
			checkedIn = append(checkedIn, p)
		} else {
			waiting = append(waiting, p)
		}
	}
	return checkedIn, waiting
}

func (l *Lifecycle) currentID() string {
	if l.current == nil {
		return ""
	}
	return l.current.ID
}

// eventLocked builds the publishable snapshot of the match. Callers hold the
// lifecycle mutex; the returned event shares no mutable state with the match,
// so it can be published after the lock is released while check-ins keep
// mutating the live match.
func (m *Match) eventLocked(winner string) pubsub.MatchEvent {
	checked := 0
	for _, done := range m.CheckedIn {
		if done {
			checked++
		}
	}
	return pubsub.MatchEvent{
		MatchID:   m.ID,
		TeamA:     player.IDs(m.TeamA),
		TeamB:     player.IDs(m.TeamB),
		Winner:    winner,
		CheckedIn: checked,
	}
}

func (l *Lifecycle) publishEvent(topic pubsub.EventType, event pubsub.MatchEvent) {
	if err := l.events.SendMessage(topic, event); err != nil {
		log.Error("Failed to publish lifecycle event", "error", err, "topic", topic)
	}
}
