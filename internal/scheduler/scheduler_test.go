package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerScheduler_Schedule(t *testing.T) {
	t.Run("fires once after the delay", func(t *testing.T) {
		s := New()
		fired := make(chan struct{})
		s.Schedule("test", 5*time.Millisecond, func() { close(fired) })

		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("timer did not fire")
		}
	})

	t.Run("cancelled timer never fires", func(t *testing.T) {
		s := New()
		var fired atomic.Bool
		h := s.Schedule("test", 10*time.Millisecond, func() { fired.Store(true) })
		s.Cancel(h)

		time.Sleep(30 * time.Millisecond)
		assert.False(t, fired.Load(), "cancelled timer should not fire")
	})

	t.Run("cancel is idempotent and nil-safe", func(t *testing.T) {
		s := New()
		h := s.Schedule("test", time.Hour, func() {})
		s.Cancel(h)
		s.Cancel(h)
		s.Cancel(nil)
	})
}

func TestTimerScheduler_ScheduleRepeating(t *testing.T) {
	s := New()
	var ticks atomic.Int32
	h := s.ScheduleRepeating("tick", 5*time.Millisecond, func() { ticks.Add(1) })

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond,
		"repeating timer should tick repeatedly")

	s.Cancel(h)
	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	// One tick may already be in flight when Cancel lands.
	assert.LessOrEqual(t, ticks.Load(), after+1, "ticks should stop after cancel")
}

func TestMockScheduler(t *testing.T) {
	s := NewMock()
	var fired int
	h := s.Schedule("warn", time.Minute, func() { fired++ })
	s.Schedule("evict", time.Hour, func() { fired += 10 })

	s.FireByName("warn")
	assert.Equal(t, 1, fired)

	// Firing a one-shot twice is a no-op.
	s.FireByName("warn")
	assert.Equal(t, 1, fired)

	s.Cancel(h)
	require.Len(t, s.Live(), 1)
	assert.Equal(t, "evict", s.Live()[0].TimerName)
}
