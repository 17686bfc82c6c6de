package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenman-bot/tenman/internal/database"
)

func TestSettingsStore(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	s := New(db)

	_, ok := s.Get(KeyQueueMessageRef)
	assert.False(t, ok, "missing key reads as absent")

	require.NoError(t, s.Set(KeyQueueMessageRef, "C123/167000.100"))
	value, ok := s.Get(KeyQueueMessageRef)
	require.True(t, ok)
	assert.Equal(t, "C123/167000.100", value)

	require.NoError(t, s.Set(KeyQueueMessageRef, "C123/167000.200"))
	value, _ = s.Get(KeyQueueMessageRef)
	assert.Equal(t, "C123/167000.200", value, "set overwrites")

	require.NoError(t, s.Delete(KeyQueueMessageRef))
	_, ok = s.Get(KeyQueueMessageRef)
	assert.False(t, ok)
	require.NoError(t, s.Delete(KeyQueueMessageRef), "deleting an absent key is a no-op")
}
