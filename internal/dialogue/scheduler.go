package dialogue

import "time"

// CancelFunc cancels a scheduled callback. Safe to call after the callback
// fired; it is a no-op then.
type CancelFunc func()

// Scheduler schedules cancellable delayed callbacks. It is the controller's
// only waiting primitive: the settle delay after speech, the backoff after a
// recognition error and the drain delay before teardown all go through it,
// never a blocking sleep.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

type clockScheduler struct{}

// NewScheduler returns a Scheduler backed by real timers.
func NewScheduler() Scheduler { return clockScheduler{} }

func (clockScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
