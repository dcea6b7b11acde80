package trafficsim

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anggasct/trafficsim/pkg/core"
)

// settings are the values that can change while a run is in progress.
// Workers read them at the top of every iteration.
type settings struct {
	green atomic.Int64
	spawn atomic.Int64
}

func (s *settings) greenDuration() time.Duration {
	return time.Duration(s.green.Load())
}

func (s *settings) spawnInterval() time.Duration {
	return time.Duration(s.spawn.Load())
}

// runContext is everything one run shares between its workers. It is built
// by Start and dropped when the run's workers have exited.
type runContext struct {
	id       string
	config   Config
	settings *settings
	signal   *core.Signal
	lock     *core.Lock
	queues   *core.QueueStore
	lights   *Intersection
	mailbox  *mailbox
	logger   *slog.Logger
	workers  sync.WaitGroup

	// lanes orders queue mutations with their notifications, per direction
	lanes [core.NumDirections]sync.Mutex
}

func newRunContext(id string, config Config, live *settings, mb *mailbox) *runContext {
	return &runContext{
		id:       id,
		config:   config,
		settings: live,
		signal:   core.NewSignal(),
		lock:     core.NewLock(),
		queues:   core.NewQueueStore(),
		lights:   NewIntersection(),
		mailbox:  mb,
		logger:   config.logger().With("run_id", id),
	}
}

func (rc *runContext) post(kind EventKind, direction Direction) Event {
	event := core.NewEvent(rc.id, kind, direction)
	rc.mailbox.post(event)
	return event
}

// postRun reports a run lifecycle event
func (rc *runContext) postRun(kind EventKind) Event {
	event := core.NewRunEvent(rc.id, kind)
	rc.mailbox.post(event)
	return event
}

// setLight applies a light transition and reports it
func (rc *runContext) setLight(direction Direction, state LightState) {
	if err := rc.lights.Transition(direction, state); err != nil {
		rc.logger.Error("light transition rejected", "direction", direction, "error", err)
		return
	}
	rc.logger.Debug("light changed", "direction", direction, "state", state)
	rc.mailbox.post(core.NewEvent(rc.id, EventLightChanged, direction).WithState(state))
}

// forceRed resets every light and reports each direction
func (rc *runContext) forceRed() {
	rc.lights.ForceRed()
	for _, d := range core.Rotation {
		rc.mailbox.post(core.NewEvent(rc.id, EventLightChanged, d).WithState(Red))
	}
}

func (rc *runContext) queueChanged(direction Direction, count int) {
	rc.mailbox.post(core.NewEvent(rc.id, EventQueueChanged, direction).WithCount(count))
}

// arrive adds cars to a queue and reports the arrival and the new count.
// Observers see the counts of one direction in the order they were produced.
func (rc *runContext) arrive(direction Direction, n int) (int, error) {
	if !direction.Valid() {
		return 0, core.ErrInvalidDirection
	}
	lane := &rc.lanes[direction]
	lane.Lock()
	defer lane.Unlock()

	count, err := rc.queues.Add(direction, n)
	if err != nil {
		return count, err
	}
	rc.mailbox.post(core.NewEvent(rc.id, EventArrival, direction).WithCount(n))
	rc.queueChanged(direction, count)
	return count, nil
}

// pass removes one car from a non-empty queue and reports it
func (rc *runContext) pass(direction Direction) (int, bool) {
	if !direction.Valid() {
		return 0, false
	}
	lane := &rc.lanes[direction]
	lane.Lock()
	defer lane.Unlock()

	count, ok := rc.queues.TryDecrement(direction)
	if !ok {
		return count, false
	}
	rc.queueChanged(direction, count)
	rc.post(core.CarPassing, direction)
	return count, true
}

// wait blocks for d in poll-sized increments; false means the run was
// cancelled or stop was closed
func (rc *runContext) wait(d time.Duration, stop <-chan struct{}) bool {
	return rc.signal.Hold(d, rc.config.PollInterval, stop)
}
