package trafficsim

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// envelope is one mailbox entry: an event, or a flush barrier
type envelope struct {
	event   Event
	barrier chan struct{}
}

// mailbox decouples the workers from the observers. Workers post events
// without blocking; a single dispatcher goroutine delivers them in FIFO order,
// so observers never run on a worker goroutine and never run concurrently.
type mailbox struct {
	observers *ObserverManager

	mutex  sync.Mutex
	queue  []envelope
	closed bool

	wake       chan struct{}
	done       chan struct{}
	dispatcher atomic.Int64
	delivered  atomic.Uint64
}

func newMailbox(observers *ObserverManager) *mailbox {
	m := &mailbox{
		observers: observers,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go m.loop()
	return m
}

// post enqueues an event. It returns false once the mailbox is closed.
func (m *mailbox) post(event Event) bool {
	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		return false
	}
	m.queue = append(m.queue, envelope{event: event})
	m.mutex.Unlock()

	m.signal()
	return true
}

// flush waits until every event posted before the call has been delivered.
// It returns immediately on the dispatcher goroutine and after close.
func (m *mailbox) flush() {
	if m.dispatcher.Load() == goid.Get() {
		return
	}

	barrier := make(chan struct{})
	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		return
	}
	m.queue = append(m.queue, envelope{barrier: barrier})
	m.mutex.Unlock()

	m.signal()
	<-barrier
}

// close delivers what is queued and stops the dispatcher
func (m *mailbox) close() {
	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		return
	}
	m.closed = true
	m.mutex.Unlock()

	m.signal()
	if m.dispatcher.Load() != goid.Get() {
		<-m.done
	}
}

// pending returns the number of queued entries
func (m *mailbox) pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.queue)
}

func (m *mailbox) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox) loop() {
	m.dispatcher.Store(goid.Get())
	defer close(m.done)

	for {
		m.mutex.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.mutex.Unlock()
			<-m.wake
			m.mutex.Lock()
		}
		if len(m.queue) == 0 && m.closed {
			m.mutex.Unlock()
			return
		}
		batch := m.queue
		m.queue = nil
		m.mutex.Unlock()

		for _, env := range batch {
			if env.barrier != nil {
				close(env.barrier)
				continue
			}
			m.observers.Notify(env.event)
			m.delivered.Add(1)
		}
	}
}
