package core

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

var (
	// ErrLockNotHeld is returned when releasing a lock nobody holds
	ErrLockNotHeld = errors.New("intersection lock is not held")

	// ErrLockNotOwner is returned when a goroutine releases a lock held by another
	ErrLockNotOwner = errors.New("intersection lock is held by another goroutine")
)

// Lock is the exclusive intersection lock: at most one direction holds
// right-of-way while it is held. Acquisition never blocks indefinitely.
type Lock struct {
	slot  chan struct{}
	owner atomic.Int64
}

// NewLock creates an unheld lock
func NewLock() *Lock {
	return &Lock{slot: make(chan struct{}, 1)}
}

// TryAcquire attempts to take the lock within timeout. It gives up early when
// cancel is closed. A nil cancel channel never fires.
func (l *Lock) TryAcquire(timeout time.Duration, cancel <-chan struct{}) bool {
	select {
	case l.slot <- struct{}{}:
		l.owner.Store(goid.Get())
		return true
	default:
	}

	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.slot <- struct{}{}:
		l.owner.Store(goid.Get())
		return true
	case <-timer.C:
		return false
	case <-cancel:
		return false
	}
}

// Acquire waits for the lock until it is taken or cancel is closed
func (l *Lock) Acquire(cancel <-chan struct{}) bool {
	select {
	case l.slot <- struct{}{}:
		l.owner.Store(goid.Get())
		return true
	case <-cancel:
		return false
	}
}

// Release gives the lock back. Only the goroutine that acquired it may release it.
func (l *Lock) Release() error {
	owner := l.owner.Load()
	if owner == 0 {
		return ErrLockNotHeld
	}
	if owner != goid.Get() {
		return ErrLockNotOwner
	}

	l.owner.Store(0)
	<-l.slot
	return nil
}

// Held reports whether the lock is currently held
func (l *Lock) Held() bool {
	return len(l.slot) == 1
}

// Owner returns the goroutine id of the holder, or 0.
// It is recorded just after the slot is taken, so another goroutine may
// briefly see 0 while Held is already true.
func (l *Lock) Owner() int64 {
	return l.owner.Load()
}
