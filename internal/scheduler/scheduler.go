package scheduler

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var _ Scheduler = (*TimerScheduler)(nil)

// TimerScheduler is the production Scheduler implementation on top of the
// runtime timer wheel.
type TimerScheduler struct{}

// New creates a new TimerScheduler.
func New() *TimerScheduler {
	return &TimerScheduler{}
}

type timerHandle struct {
	name string
	mu   sync.Mutex
	stop func()
	done bool
}

func (h *timerHandle) Name() string { return h.name }

func (h *timerHandle) cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return
	}
	h.done = true
	h.stop()
}

// markFired flags a one-shot handle so a later Cancel is a no-op. It returns
// false when the handle was cancelled before the callback ran.
func (h *timerHandle) markFired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return false
	}
	h.done = true
	return true
}

func (s *TimerScheduler) Schedule(name string, after time.Duration, fn func()) Handle {
	h := &timerHandle{name: name}
	timer := time.AfterFunc(after, func() {
		if !h.markFired() {
			return
		}
		log.Debug("Timer fired", "timer", name)
		fn()
	})
	h.stop = func() { timer.Stop() }
	log.Debug("Timer scheduled", "timer", name, "after", after)
	return h
}

func (s *TimerScheduler) ScheduleRepeating(name string, every time.Duration, fn func()) Handle {
	ticker := time.NewTicker(every)
	quit := make(chan struct{})
	h := &timerHandle{name: name}
	h.stop = func() {
		ticker.Stop()
		close(quit)
	}
	go func() {
		for {
			select {
			case <-ticker.C:
				log.Debug("Repeating timer tick", "timer", name)
				fn()
			case <-quit:
				return
			}
		}
	}()
	log.Debug("Repeating timer scheduled", "timer", name, "every", every)
	return h
}

func (s *TimerScheduler) Cancel(h Handle) {
	if h == nil {
		return
	}
	th, ok := h.(*timerHandle)
	if !ok {
		return
	}
	th.cancel()
	log.Debug("Timer cancelled", "timer", th.name)
}
