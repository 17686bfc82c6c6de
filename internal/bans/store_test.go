package bans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenman-bot/tenman/internal/database"
)

func newTestStore(t *testing.T) (*store, func(time.Time)) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	s, err := New(db)
	require.NoError(t, err)

	now := time.Now()
	st := s.(*store)
	st.now = func() time.Time { return now }
	return st, func(tm time.Time) { now = tm }
}

func TestBanStore(t *testing.T) {
	t.Run("rejects non-positive durations", func(t *testing.T) {
		s, _ := newTestStore(t)
		assert.ErrorIs(t, s.Ban("U1", 0), ErrInvalidDuration)
		assert.ErrorIs(t, s.Ban("U1", -time.Minute), ErrInvalidDuration)
		assert.False(t, s.IsBanned("U1"))
	})

	t.Run("ban bars the player until expiry", func(t *testing.T) {
		s, advance := newTestStore(t)
		require.NoError(t, s.Ban("U1", time.Hour))
		assert.True(t, s.IsBanned("U1"))
		assert.False(t, s.IsBanned("U2"), "other players are unaffected")

		advance(time.Now().Add(2 * time.Hour))
		assert.False(t, s.IsBanned("U1"), "expired ban should read as absent")
		assert.Empty(t, s.List(), "expired ban should have been purged")
	})

	t.Run("re-ban overwrites the expiry", func(t *testing.T) {
		s, advance := newTestStore(t)
		require.NoError(t, s.Ban("U1", time.Minute))
		require.NoError(t, s.Ban("U1", 24*time.Hour))

		advance(time.Now().Add(time.Hour))
		assert.True(t, s.IsBanned("U1"), "the longer ban should still hold")
	})

	t.Run("unban requires an existing ban", func(t *testing.T) {
		s, _ := newTestStore(t)
		assert.ErrorIs(t, s.Unban("U1"), ErrNotBanned)

		require.NoError(t, s.Ban("U1", time.Hour))
		require.NoError(t, s.Unban("U1"))
		assert.False(t, s.IsBanned("U1"))
		assert.ErrorIs(t, s.Unban("U1"), ErrNotBanned)
	})

	t.Run("bans survive a reload from the database", func(t *testing.T) {
		db, teardown, err := database.InitDB(":memory:", "", "")
		require.NoError(t, err)
		t.Cleanup(teardown)

		first, err := New(db)
		require.NoError(t, err)
		require.NoError(t, first.Ban("U1", time.Hour))

		second, err := New(db)
		require.NoError(t, err)
		assert.True(t, second.IsBanned("U1"))
	})
}
