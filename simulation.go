package trafficsim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anggasct/trafficsim/pkg/core"
)

// Simulation owns the observer boundary and at most one run at a time.
//
// Commands (Start, Stop, SetSpawnInterval, SetGreenDuration) are safe for
// concurrent use, including from inside an observer callback.
type Simulation struct {
	config    Config
	logger    *slog.Logger
	observers *ObserverManager
	mailbox   *mailbox
	settings  settings

	// lifecycle serializes Start, Stop and Close
	lifecycle sync.Mutex

	mutex   sync.RWMutex
	run     *runContext
	lastRun *runContext
	closed  bool
}

// New creates a simulation from a validated configuration.
// The caller must Close it to release the dispatcher goroutine.
func New(config Config) (*Simulation, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		config:    config,
		logger:    config.logger(),
		observers: NewObserverManager(),
	}
	s.observers.onPanic = func(err error) {
		s.logger.Error("observer failed", "error", err)
	}
	s.settings.green.Store(int64(config.GreenDuration))
	s.settings.spawn.Store(int64(config.SpawnInterval))
	s.mailbox = newMailbox(s.observers)

	return s, nil
}

// AddObserver registers an observer for every later notification
func (s *Simulation) AddObserver(observer Observer) {
	s.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (s *Simulation) RemoveObserver(observer Observer) {
	s.observers.RemoveObserver(observer)
}

// Start resets the intersection and queues and launches the scheduler and
// spawner. It fails if a run is already in progress.
func (s *Simulation) Start(greenDuration, spawnInterval time.Duration) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mutex.RLock()
	closed, running := s.closed, s.run != nil
	s.mutex.RUnlock()

	if closed {
		return NewClosedError("Start")
	}
	if running {
		return NewAlreadyRunningError("Start")
	}
	if err := s.config.Limits.CheckGreen(greenDuration); err != nil {
		return err
	}
	if err := s.config.Limits.CheckSpawn(spawnInterval); err != nil {
		return err
	}

	s.settings.green.Store(int64(greenDuration))
	s.settings.spawn.Store(int64(spawnInterval))

	rc := newRunContext(uuid.New().String(), s.config, &s.settings, s.mailbox)

	s.mutex.Lock()
	s.run = rc
	s.lastRun = rc
	s.mutex.Unlock()

	rc.logger.Info("simulation started",
		"green", greenDuration,
		"spawn_interval", spawnInterval,
	)
	rc.postRun(core.SimulationStarted)

	rc.workers.Add(1)
	go newScheduler(rc).run()

	if !s.config.SpawnerDisabled {
		seed := s.config.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rc.workers.Add(1)
		go newSpawner(rc, seed).run()
	}

	return nil
}

// Stop raises the cancellation signal and waits for the run's workers.
// Every light is RED and reported before Stop returns. Calling Stop without a
// run in progress is a no-op.
func (s *Simulation) Stop() error {
	s.lifecycle.Lock()
	if rc := s.detach(); rc != nil {
		s.halt(rc)
	}
	s.lifecycle.Unlock()

	s.mailbox.flush()
	return nil
}

// halt cancels a detached run and joins its workers
func (s *Simulation) halt(rc *runContext) {
	started := time.Now()
	rc.signal.Set()
	rc.workers.Wait()
	rc.postRun(core.SimulationStopped)
	rc.logger.Info("simulation stopped", "shutdown", time.Since(started))
}

func (s *Simulation) detach() *runContext {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	rc := s.run
	s.run = nil
	return rc
}

// Run starts a run and blocks until ctx is done, then stops it.
// This is the headless mode: no command boundary, just the core loop.
func (s *Simulation) Run(ctx context.Context, greenDuration, spawnInterval time.Duration) error {
	if err := s.Start(greenDuration, spawnInterval); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Close stops any run, delivers pending notifications and releases the dispatcher
func (s *Simulation) Close() error {
	s.lifecycle.Lock()
	s.mutex.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mutex.Unlock()
	if rc := s.detach(); rc != nil {
		s.halt(rc)
	}
	s.lifecycle.Unlock()

	if !alreadyClosed {
		s.mailbox.close()
	}
	return nil
}

// SetSpawnInterval changes the spawn interval; the spawner picks it up on its next iteration
func (s *Simulation) SetSpawnInterval(interval time.Duration) error {
	if err := s.config.Limits.CheckSpawn(interval); err != nil {
		return err
	}
	s.settings.spawn.Store(int64(interval))
	s.logger.Debug("spawn interval updated", "spawn_interval", interval)
	return nil
}

// SetGreenDuration changes the green time; the scheduler picks it up on its next phase
func (s *Simulation) SetGreenDuration(green time.Duration) error {
	if err := s.config.Limits.CheckGreen(green); err != nil {
		return err
	}
	s.settings.green.Store(int64(green))
	s.logger.Debug("green duration updated", "green", green)
	return nil
}

// GreenDuration returns the configured green time
func (s *Simulation) GreenDuration() time.Duration {
	return s.settings.greenDuration()
}

// SpawnInterval returns the configured spawn interval
func (s *Simulation) SpawnInterval() time.Duration {
	return s.settings.spawnInterval()
}

// Config returns the configuration the simulation was built with
func (s *Simulation) Config() Config {
	return s.config
}

// Running reports whether a run is in progress
func (s *Simulation) Running() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.run != nil
}

// RunID returns the id of the current or last run
func (s *Simulation) RunID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.lastRun == nil {
		return ""
	}
	return s.lastRun.id
}

// LightStates returns a snapshot of every light
func (s *Simulation) LightStates() map[Direction]LightState {
	s.mutex.RLock()
	rc := s.lastRun
	s.mutex.RUnlock()

	if rc == nil {
		return NewIntersection().Snapshot()
	}
	return rc.lights.Snapshot()
}

// QueueCounts returns a possibly stale snapshot of every queue
func (s *Simulation) QueueCounts() map[Direction]int {
	s.mutex.RLock()
	rc := s.lastRun
	s.mutex.RUnlock()

	if rc == nil {
		return core.NewQueueStore().Snapshot()
	}
	return rc.queues.Snapshot()
}

// Flush waits until every notification raised so far has been delivered
func (s *Simulation) Flush() {
	s.mailbox.flush()
}

// PendingNotifications returns the number of undelivered notifications
func (s *Simulation) PendingNotifications() int {
	return s.mailbox.pending()
}
