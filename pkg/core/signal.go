package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// Signal is a one-shot cooperative cancellation flag.
// It is set once and never cleared; every wait in a worker goes through Sleep
// so that shutdown latency does not depend on phase length.
type Signal struct {
	once sync.Once
	set  atomic.Bool
	done chan struct{}
}

// NewSignal creates an unset signal
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Set raises the signal. Safe to call any number of times.
func (s *Signal) Set() {
	s.once.Do(func() {
		s.set.Store(true)
		close(s.done)
	})
}

// IsSet reports whether the signal has been raised
func (s *Signal) IsSet() bool {
	return s.set.Load()
}

// Done returns a channel closed when the signal is raised
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Sleep waits for d or until the signal is raised, whichever comes first.
// It returns false if the signal was raised.
func (s *Signal) Sleep(d time.Duration) bool {
	if d <= 0 {
		return !s.IsSet()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return !s.IsSet()
	case <-s.done:
		return false
	}
}

// Hold waits for d in increments of at most tick, re-checking the signal and
// the optional stop channel between increments. It returns false if it was
// interrupted before d elapsed.
func (s *Signal) Hold(d, tick time.Duration, stop <-chan struct{}) bool {
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		if remaining > tick {
			remaining = tick
		}

		timer := time.NewTimer(remaining)
		select {
		case <-timer.C:
		case <-s.done:
			timer.Stop()
			return false
		case <-stop:
			timer.Stop()
			return false
		}

		if s.IsSet() {
			return false
		}
	}
}
