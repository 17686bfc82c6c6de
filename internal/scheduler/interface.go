package scheduler

import "time"

// Handle identifies a scheduled callback so it can be cancelled.
type Handle interface {
	// Name returns the name the timer was scheduled under.
	Name() string
}

// Scheduler issues cancellable, named timers. Every component that schedules
// a callback owns the returned handle and must cancel it when the condition
// it represents becomes moot; callbacks themselves re-validate state at fire
// time because cancellation can race with dispatch.
type Scheduler interface {
	// Schedule runs fn once after the given delay.
	Schedule(name string, after time.Duration, fn func()) Handle
	// ScheduleRepeating runs fn every interval until cancelled.
	ScheduleRepeating(name string, every time.Duration, fn func()) Handle
	// Cancel stops a timer. It is safe to call with a nil handle and safe to
	// call more than once.
	Cancel(h Handle)
}
