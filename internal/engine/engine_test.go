package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/config"
	"github.com/tenman-bot/tenman/internal/match"
	"github.com/tenman-bot/tenman/internal/metrics"
	"github.com/tenman-bot/tenman/internal/notifier"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/pubsub"
	"github.com/tenman-bot/tenman/internal/queue"
	"github.com/tenman-bot/tenman/internal/rank"
	"github.com/tenman-bot/tenman/internal/scheduler"
	"github.com/tenman-bot/tenman/internal/settings"
)

const (
	adminID = "U-ADMIN"
	ownerID = "U-OWNER"
)

// engineFixture wires a real queue and lifecycle over mock stores, the way
// the process composes them at startup.
type engineFixture struct {
	engine   Engine
	queue    *queue.Manager
	bans     *bans.MockStore
	rank     *rank.MockStore
	settings *settings.MockStore
	notif    *notifier.MockNotifier
	sched    *scheduler.MockScheduler
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		bans:     bans.NewMock(),
		rank:     rank.NewMock(),
		settings: settings.NewMock(),
		notif:    notifier.NewMock(),
		sched:    scheduler.NewMock(),
	}
	cfg := config.Config{
		Slack: config.SlackConfig{
			ChannelID:    "C-main",
			AdminUserIDs: []string{adminID},
			OwnerUserID:  ownerID,
		},
		Queue: config.DefaultQueueConfig(),
	}
	metricsSvc := metrics.NewMock()
	f.queue = queue.New(cfg.Queue, f.bans, f.sched, f.notif, metricsSvc)
	lifecycle := match.New(
		match.Config{CheckInWindow: cfg.Queue.CheckInWindow, CountdownTick: cfg.Queue.CountdownTick},
		f.rank, f.sched, f.notif, metricsSvc, pubsub.NewMock(), f.queue,
	)
	f.queue.SetMatchStarter(lifecycle)
	f.engine = New(cfg, f.queue, lifecycle, f.bans, f.rank, f.settings, f.notif)
	return f
}

func userIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("U%d", i+1)
	}
	return ids
}

func TestJoinAndLeave(t *testing.T) {
	t.Run("join admits the player and publishes the pool", func(t *testing.T) {
		f := newEngineFixture(t)

		size, err := f.engine.Join("U1")

		require.NoError(t, err)
		assert.Equal(t, 1, size)
		assert.Equal(t, []string{"U1"}, player.IDs(f.engine.QueueStatus()))
		// First refresh has no message to edit, so it publishes one and
		// stores the pointer.
		require.Len(t, f.notif.PublishQueueStatusCalls, 1)
		_, ok := f.settings.Get(settings.KeyQueueMessageRef)
		assert.True(t, ok)
	})

	t.Run("subsequent refreshes edit the stored message", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Join("U1")
		require.NoError(t, err)

		_, err = f.engine.Join("U2")

		require.NoError(t, err)
		assert.Len(t, f.notif.PublishQueueStatusCalls, 1)
		require.Len(t, f.notif.UpdateQueueStatusCalls, 1)
		assert.Equal(t, []string{"U1", "U2"}, player.IDs(f.notif.UpdateQueueStatusCalls[0]))
	})

	t.Run("a failed edit publishes a replacement message", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Join("U1")
		require.NoError(t, err)
		f.notif.UpdateQueueStatusFunc = func(ref notifier.MessageRef, players []player.Player) error {
			return fmt.Errorf("message_not_found")
		}

		_, err = f.engine.Join("U2")

		require.NoError(t, err)
		assert.Len(t, f.notif.PublishQueueStatusCalls, 2)
	})

	t.Run("banned players cannot join", func(t *testing.T) {
		f := newEngineFixture(t)
		f.bans.IsBannedFunc = func(playerID string) bool { return playerID == "U1" }

		_, err := f.engine.Join("U1")

		assert.ErrorIs(t, err, queue.ErrBanned)
		assert.Empty(t, f.notif.PublishQueueStatusCalls)
	})

	t.Run("leave withdraws the player and refreshes", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Join("U1")
		require.NoError(t, err)

		assert.True(t, f.engine.Leave("U1"))
		assert.Empty(t, f.engine.QueueStatus())
		require.Len(t, f.notif.UpdateQueueStatusCalls, 1)
		assert.Empty(t, f.notif.UpdateQueueStatusCalls[0])
	})

	t.Run("leaving while absent is a quiet no-op", func(t *testing.T) {
		f := newEngineFixture(t)

		assert.False(t, f.engine.Leave("U1"))
		assert.Empty(t, f.notif.PublishQueueStatusCalls)
	})

	t.Run("the tenth join forms a match", func(t *testing.T) {
		f := newEngineFixture(t)

		for _, id := range userIDs(10) {
			_, err := f.engine.Join(id)
			require.NoError(t, err)
		}

		assert.Empty(t, f.engine.QueueStatus())
		view, ok := f.engine.CurrentMatch()
		require.True(t, ok)
		assert.Equal(t, match.StateCheckingIn, view.State)
		assert.Len(t, f.notif.CreateMatchChannelCalls, 1)
	})
}

func TestMatchCommands(t *testing.T) {
	fillAndCheckIn := func(t *testing.T, f *engineFixture) {
		t.Helper()
		for _, id := range userIDs(10) {
			_, err := f.engine.Join(id)
			require.NoError(t, err)
		}
		for _, id := range userIDs(10) {
			require.NoError(t, f.engine.CheckIn(id))
		}
	}

	t.Run("check-in flows through to the lifecycle", func(t *testing.T) {
		f := newEngineFixture(t)

		assert.ErrorIs(t, f.engine.CheckIn("U1"), match.ErrNotInMatch)
	})

	t.Run("report records the result and clears the match", func(t *testing.T) {
		f := newEngineFixture(t)
		fillAndCheckIn(t, f)
		view, ok := f.engine.CurrentMatch()
		require.True(t, ok)

		require.NoError(t, f.engine.Report(view.LeaderA.ID, match.TeamA))

		_, ok = f.engine.CurrentMatch()
		assert.False(t, ok)
		assert.Len(t, f.rank.RecordCalls, 1)
	})
}

func TestTimeout(t *testing.T) {
	t.Run("requires an admin", func(t *testing.T) {
		f := newEngineFixture(t)

		err := f.engine.Timeout("U-RANDO", "U1", 0, 1, 0)

		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Empty(t, f.bans.BanCalls)
	})

	t.Run("combines days, hours and minutes", func(t *testing.T) {
		f := newEngineFixture(t)

		require.NoError(t, f.engine.Timeout(adminID, "U1", 1, 2, 30))

		require.Len(t, f.bans.BanCalls, 1)
		assert.Equal(t, "U1", f.bans.BanCalls[0].PlayerID)
		assert.Equal(t, 26*time.Hour+30*time.Minute, f.bans.BanCalls[0].Duration)
		require.Len(t, f.notif.DirectMessageCalls, 1)
		assert.Equal(t, "U1", f.notif.DirectMessageCalls[0].UserID)
	})

	t.Run("the owner counts as an admin", func(t *testing.T) {
		f := newEngineFixture(t)

		require.NoError(t, f.engine.Timeout(ownerID, "U1", 0, 0, 10))
		assert.Len(t, f.bans.BanCalls, 1)
	})

	t.Run("removes the target from the pool", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Join("U1")
		require.NoError(t, err)

		require.NoError(t, f.engine.Timeout(adminID, "U1", 0, 0, 10))

		assert.Empty(t, f.engine.QueueStatus())
	})

	t.Run("a non-positive duration is rejected by the store", func(t *testing.T) {
		f := newEngineFixture(t)
		f.bans.BanFunc = func(playerID string, duration time.Duration) error {
			if duration <= 0 {
				return bans.ErrInvalidDuration
			}
			return nil
		}

		err := f.engine.Timeout(adminID, "U1", 0, 0, 0)

		assert.ErrorIs(t, err, bans.ErrInvalidDuration)
		assert.Empty(t, f.notif.DirectMessageCalls)
	})
}

func TestUntimeout(t *testing.T) {
	t.Run("requires an admin", func(t *testing.T) {
		f := newEngineFixture(t)

		assert.ErrorIs(t, f.engine.Untimeout("U-RANDO", "U1"), ErrPermissionDenied)
	})

	t.Run("lifts the ban", func(t *testing.T) {
		f := newEngineFixture(t)

		require.NoError(t, f.engine.Untimeout(adminID, "U1"))
		assert.Equal(t, []string{"U1"}, f.bans.UnbanCalls)
	})

	t.Run("surfaces an absent ban", func(t *testing.T) {
		f := newEngineFixture(t)
		f.bans.UnbanFunc = func(playerID string) error { return bans.ErrNotBanned }

		assert.ErrorIs(t, f.engine.Untimeout(adminID, "U1"), bans.ErrNotBanned)
	})
}

func TestForceMatch(t *testing.T) {
	members := func(n int) []player.Player {
		out := make([]player.Player, n)
		for i, id := range userIDs(n) {
			out[i] = player.Player{ID: id, Name: id}
		}
		return out
	}

	t.Run("only the owner may force a match", func(t *testing.T) {
		f := newEngineFixture(t)

		assert.ErrorIs(t, f.engine.ForceMatch(adminID, "C-main"), ErrNotAuthorized)
	})

	t.Run("forms a match from the first ten eligible members", func(t *testing.T) {
		f := newEngineFixture(t)
		f.notif.ChannelMembersFunc = func(channelID string) ([]player.Player, error) {
			return members(12), nil
		}

		require.NoError(t, f.engine.ForceMatch(ownerID, "C-main"))

		view, ok := f.engine.CurrentMatch()
		require.True(t, ok)
		assert.Equal(t, match.StateCheckingIn, view.State)
		assert.Len(t, append(view.TeamA, view.TeamB...), 10)
	})

	t.Run("queued participants are withdrawn from the pool", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.Join("U1")
		require.NoError(t, err)
		f.notif.ChannelMembersFunc = func(channelID string) ([]player.Player, error) {
			return members(10), nil
		}

		require.NoError(t, f.engine.ForceMatch(ownerID, "C-main"))

		view, ok := f.engine.CurrentMatch()
		require.True(t, ok)
		assert.Contains(t, player.IDs(append(view.TeamA, view.TeamB...)), "U1")
		assert.Empty(t, f.engine.QueueStatus(), "a player cannot wait in the pool while playing")
	})

	t.Run("a failed channel creation surfaces without starting a match", func(t *testing.T) {
		f := newEngineFixture(t)
		f.notif.ChannelMembersFunc = func(channelID string) ([]player.Player, error) {
			return members(10), nil
		}
		f.notif.CreateMatchChannelFunc = func(name string, users []player.Player) (string, error) {
			return "", errors.New("slack is down")
		}

		err := f.engine.ForceMatch(ownerID, "C-main")

		require.Error(t, err)
		_, ok := f.engine.CurrentMatch()
		assert.False(t, ok)
		assert.Empty(t, f.engine.QueueStatus())
	})

	t.Run("banned members are not eligible", func(t *testing.T) {
		f := newEngineFixture(t)
		f.notif.ChannelMembersFunc = func(channelID string) ([]player.Player, error) {
			return members(10), nil
		}
		f.bans.IsBannedFunc = func(playerID string) bool { return playerID == "U1" }

		err := f.engine.ForceMatch(ownerID, "C-main")

		assert.ErrorIs(t, err, ErrInsufficientPlayers)
	})

	t.Run("refuses while a match is in progress", func(t *testing.T) {
		f := newEngineFixture(t)
		f.notif.ChannelMembersFunc = func(channelID string) ([]player.Player, error) {
			return members(10), nil
		}
		require.NoError(t, f.engine.ForceMatch(ownerID, "C-main"))

		assert.ErrorIs(t, f.engine.ForceMatch(ownerID, "C-main"), match.ErrMatchInProgress)
	})
}

func TestResetStats(t *testing.T) {
	t.Run("requires an admin", func(t *testing.T) {
		f := newEngineFixture(t)

		assert.ErrorIs(t, f.engine.ResetStats("U-RANDO"), ErrPermissionDenied)
		assert.Zero(t, f.rank.ResetAllCalls)
	})

	t.Run("clears the table", func(t *testing.T) {
		f := newEngineFixture(t)

		require.NoError(t, f.engine.ResetStats(adminID))
		assert.Equal(t, 1, f.rank.ResetAllCalls)
	})
}

func TestReconcile(t *testing.T) {
	t.Run("publishes a fresh message when none was stored", func(t *testing.T) {
		f := newEngineFixture(t)

		require.NoError(t, f.engine.Reconcile())

		assert.Empty(t, f.notif.DeleteMessageCalls)
		require.Len(t, f.notif.PublishQueueStatusCalls, 1)
		_, ok := f.settings.Get(settings.KeyQueueMessageRef)
		assert.True(t, ok)
	})

	t.Run("deletes the stale message left by a previous process", func(t *testing.T) {
		f := newEngineFixture(t)
		stale := notifier.MessageRef{Channel: "C-main", Timestamp: "42.1"}
		raw, err := json.Marshal(stale)
		require.NoError(t, err)
		f.settings.Seed(settings.KeyQueueMessageRef, string(raw))

		require.NoError(t, f.engine.Reconcile())

		require.Len(t, f.notif.DeleteMessageCalls, 1)
		assert.Equal(t, stale, f.notif.DeleteMessageCalls[0])
		assert.Len(t, f.notif.PublishQueueStatusCalls, 1)
	})

	t.Run("an unreadable pointer is discarded, not fatal", func(t *testing.T) {
		f := newEngineFixture(t)
		f.settings.Seed(settings.KeyQueueMessageRef, "not-json")

		require.NoError(t, f.engine.Reconcile())

		assert.Empty(t, f.notif.DeleteMessageCalls)
		assert.Len(t, f.notif.PublishQueueStatusCalls, 1)
	})
}
