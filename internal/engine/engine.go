package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/config"
	"github.com/tenman-bot/tenman/internal/match"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/queue"
	"github.com/tenman-bot/tenman/internal/rank"
	"github.com/tenman-bot/tenman/internal/settings"
)

// New creates the Engine.
func New(cfg config.Config, queueMgr *queue.Manager, lifecycle *match.Lifecycle, banStore bans.BanStore, rankStore rank.RankStore, settingsStore settings.Store, notif notifier.Notifier) Engine {
	return &service{
		cfg:      cfg,
		queue:    queueMgr,
		match:    lifecycle,
		bans:     banStore,
		rank:     rankStore,
		settings: settingsStore,
		notif:    notif,
	}
}

func (s *service) Join(userID string) (int, error) {
	p, err := s.notif.ResolvePlayer(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve player %s: %w", userID, err)
	}
	size, err := s.queue.Join(p)
	if err != nil {
		return 0, err
	}
	s.refreshQueueMessage()
	return size, nil
}

func (s *service) Leave(userID string) bool {
	removed := s.queue.Leave(userID)
	if removed {
		s.refreshQueueMessage()
	}
	return removed
}

func (s *service) QueueStatus() []player.Player {
	return s.queue.View()
}

func (s *service) CheckIn(userID string) error {
	return s.match.CheckIn(userID)
}

func (s *service) Report(userID string, winner match.Team) error {
	err := s.match.Report(userID, winner)
	// A report frees the match slot; a pool stuck at capacity may have
	// drained into a new match, so the status message needs a refresh.
	s.refreshQueueMessage()
	return err
}

func (s *service) CurrentMatch() (match.View, bool) {
	return s.match.Current()
}

func (s *service) Timeout(actorID, targetID string, days, hours, minutes int) error {
	if !s.isAdmin(actorID) {
		return ErrPermissionDenied
	}
	duration := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute
	if err := s.bans.Ban(targetID, duration); err != nil {
		return err
	}
	log.Info("Player timed out", "targetID", targetID, "actorID", actorID, "duration", duration)

	// A banned player cannot wait in the pool.
	if s.queue.Leave(targetID) {
		s.refreshQueueMessage()
	}
	if err := s.notif.SendDirectMessage(targetID, fmt.Sprintf("You have been timed out from the queue for %s.", duration)); err != nil {
		log.Error("Failed to notify timed-out player", "error", err, "targetID", targetID)
	}
	return nil
}

func (s *service) Untimeout(actorID, targetID string) error {
	if !s.isAdmin(actorID) {
		return ErrPermissionDenied
	}
	if err := s.bans.Unban(targetID); err != nil {
		return err
	}
	log.Info("Player timeout lifted", "targetID", targetID, "actorID", actorID)
	return nil
}

func (s *service) Bans() []bans.Ban {
	return s.bans.List()
}

func (s *service) ForceMatch(actorID, channelID string) error {
	if actorID != s.cfg.Slack.OwnerUserID {
		return ErrNotAuthorized
	}
	members, err := s.notif.ChannelMembers(channelID)
	if err != nil {
		return fmt.Errorf("failed to list channel members: %w", err)
	}

	eligible := make([]player.Player, 0, len(members))
	for _, p := range members {
		if s.bans.IsBanned(p.ID) {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) < s.cfg.Queue.Capacity {
		return fmt.Errorf("%w: need %d, found %d", ErrInsufficientPlayers, s.cfg.Queue.Capacity, len(eligible))
	}

	forced := eligible[:s.cfg.Queue.Capacity]
	log.Info("Forcing match from channel members", "channelID", channelID, "eligible", len(eligible))
	if err := s.match.Create(forced); err != nil {
		return err
	}

	// A player cannot wait in the pool and play at the same time; withdraw
	// any forced participant who was queued.
	removed := false
	for _, p := range forced {
		if s.queue.Leave(p.ID) {
			removed = true
		}
	}
	if removed {
		s.refreshQueueMessage()
	}
	return nil
}

func (s *service) Leaderboard(limit int) []rank.PlayerStats {
	return s.rank.Leaderboard(limit)
}

func (s *service) ResetStats(actorID string) error {
	if !s.isAdmin(actorID) {
		return ErrPermissionDenied
	}
	log.Warn("Resetting all player stats", "actorID", actorID)
	return s.rank.ResetAll()
}

// Reconcile deletes the queue-status message a previous process left behind
// and publishes a fresh one reflecting the (empty) pool.
func (s *service) Reconcile() error {
	s.msgMu.Lock()
	defer s.msgMu.Unlock()

	if raw, ok := s.settings.Get(settings.KeyQueueMessageRef); ok {
		var stale notifier.MessageRef
		if err := json.Unmarshal([]byte(raw), &stale); err != nil {
			log.Error("Discarding unreadable queue message pointer", "error", err)
		} else if err := s.notif.DeleteMessage(stale); err != nil {
			// The message may already be gone; a fresh one replaces it anyway.
			log.Warn("Failed to delete stale queue message", "error", err)
		}
	}
	return s.publishQueueMessageLocked()
}

// refreshQueueMessage keeps the published pool status current. A failed edit
// falls back to publishing a replacement.
func (s *service) refreshQueueMessage() {
	s.msgMu.Lock()
	defer s.msgMu.Unlock()

	players := s.queue.View()
	if raw, ok := s.settings.Get(settings.KeyQueueMessageRef); ok {
		var ref notifier.MessageRef
		if err := json.Unmarshal([]byte(raw), &ref); err == nil {
			if err := s.notif.UpdateQueueStatus(ref, players); err == nil {
				return
			}
			log.Warn("Failed to update queue message, publishing a new one", "ref", ref)
		}
	}
	if err := s.publishQueueMessageLocked(); err != nil {
		log.Error("Failed to publish queue message", "error", err)
	}
}

func (s *service) publishQueueMessageLocked() error {
	ref, err := s.notif.PublishQueueStatus(s.queue.View())
	if err != nil {
		return fmt.Errorf("failed to publish queue status: %w", err)
	}
	raw, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("failed to encode queue message pointer: %w", err)
	}
	if err := s.settings.Set(settings.KeyQueueMessageRef, string(raw)); err != nil {
		return fmt.Errorf("failed to store queue message pointer: %w", err)
	}
	return nil
}

func (s *service) isAdmin(userID string) bool {
	if userID == s.cfg.Slack.OwnerUserID {
		return true
	}
	for _, id := range s.cfg.Slack.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
