package scheduler

import (
	"sync"
	"time"
)

var _ Scheduler = (*MockScheduler)(nil)

// MockTimer is a timer captured by the MockScheduler. Tests fire it by hand
// instead of waiting for the wall clock.
type MockTimer struct {
	TimerName string
	After     time.Duration
	Repeating bool
	Fn        func()
	Cancelled bool
}

func (t *MockTimer) Name() string { return t.TimerName }

// MockScheduler is a Scheduler implementation for testing. Timers never fire
// on their own; tests drive them with Fire/FireByName.
type MockScheduler struct {
	mu     sync.Mutex
	Timers []*MockTimer
}

// NewMock creates a new mock scheduler.
func NewMock() *MockScheduler {
	return &MockScheduler{}
}

func (s *MockScheduler) Schedule(name string, after time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &MockTimer{TimerName: name, After: after, Fn: fn}
	s.Timers = append(s.Timers, t)
	return t
}

func (s *MockScheduler) ScheduleRepeating(name string, every time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &MockTimer{TimerName: name, After: every, Repeating: true, Fn: fn}
	s.Timers = append(s.Timers, t)
	return t
}

func (s *MockScheduler) Cancel(h Handle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := h.(*MockTimer); ok {
		t.Cancelled = true
	}
}

// Fire runs a captured timer's callback if it has not been cancelled.
// One-shot timers are marked cancelled afterwards so a double Fire is a no-op.
func (s *MockScheduler) Fire(t *MockTimer) {
	s.mu.Lock()
	if t.Cancelled {
		s.mu.Unlock()
		return
	}
	if !t.Repeating {
		t.Cancelled = true
	}
	fn := t.Fn
	s.mu.Unlock()
	fn()
}

// FireByName fires every live timer whose name matches.
func (s *MockScheduler) FireByName(name string) {
	for _, t := range s.snapshot() {
		if t.TimerName == name {
			s.Fire(t)
		}
	}
}

// Live returns the timers that have not been cancelled.
func (s *MockScheduler) Live() []*MockTimer {
	var live []*MockTimer
	for _, t := range s.snapshot() {
		s.mu.Lock()
		cancelled := t.Cancelled
		s.mu.Unlock()
		if !cancelled {
			live = append(live, t)
		}
	}
	return live
}

func (s *MockScheduler) snapshot() []*MockTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*MockTimer, len(s.Timers))
	copy(out, s.Timers)
	return out
}
