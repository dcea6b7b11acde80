package trafficsim

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingObserver keeps every notification it receives, in delivery order
type recordingObserver struct {
	BaseObserver
	mutex  sync.Mutex
	events []Event
	errors []error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{}
}

func (o *recordingObserver) record(e Event) {
	e.Timestamp = time.Now()
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) OnLightChanged(direction Direction, state LightState) {
	o.record(Event{Kind: EventLightChanged, Direction: direction, State: state})
}

func (o *recordingObserver) OnQueueChanged(direction Direction, count int) {
	o.record(Event{Kind: EventQueueChanged, Direction: direction, Count: count})
}

func (o *recordingObserver) OnCarPassing(direction Direction) {
	o.record(Event{Kind: EventCarPassing, Direction: direction})
}

func (o *recordingObserver) OnArrival(direction Direction, added int) {
	o.record(Event{Kind: EventArrival, Direction: direction, Count: added})
}

func (o *recordingObserver) OnPhaseSkipped(direction Direction, consecutive int) {
	o.record(Event{Kind: EventPhaseSkipped, Direction: direction, Count: consecutive})
}

func (o *recordingObserver) OnSimulationStarted(runID string) {
	o.record(Event{Kind: EventSimulationStarted, RunID: runID})
}

func (o *recordingObserver) OnSimulationStopped(runID string) {
	o.record(Event{Kind: EventSimulationStopped, RunID: runID})
}

func (o *recordingObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errors = append(o.errors, err)
}

func (o *recordingObserver) Events() []Event {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	result := make([]Event, len(o.events))
	copy(result, o.events)
	return result
}

func (o *recordingObserver) Filter(kind EventKind) []Event {
	var result []Event
	for _, e := range o.Events() {
		if e.Kind == kind {
			result = append(result, e)
		}
	}
	return result
}

func (o *recordingObserver) Count(kind EventKind) int {
	return len(o.Filter(kind))
}

func (o *recordingObserver) Errors() []error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return append([]error(nil), o.errors...)
}

func (o *recordingObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.events = nil
	o.errors = nil
}

// fastConfig scales the stock timing down to milliseconds
func fastConfig() Config {
	c := DefaultConfig()
	c.GreenDuration = 150 * time.Millisecond
	c.YellowDuration = 50 * time.Millisecond
	c.SpawnInterval = 40 * time.Millisecond
	c.PassInterval = 20 * time.Millisecond
	c.IdlePoll = 10 * time.Millisecond
	c.PollInterval = 5 * time.Millisecond
	c.LockTimeout = 50 * time.Millisecond
	c.PhaseGap = 10 * time.Millisecond
	c.JitterMin = -10 * time.Millisecond
	c.JitterMax = 20 * time.Millisecond
	c.MinSpawnDelay = 5 * time.Millisecond
	c.Seed = 42
	c.Limits = Limits{}
	return c
}

// newTestRun builds a run context outside of a Simulation, so workers can be
// driven step by step. The mailbox is closed when the test ends.
func newTestRun(t *testing.T, config Config) (*runContext, *recordingObserver) {
	t.Helper()
	require.NoError(t, config.Validate())

	recorder := newRecordingObserver()
	manager := NewObserverManager()
	manager.AddObserver(recorder)
	mb := newMailbox(manager)
	t.Cleanup(mb.close)

	live := &settings{}
	live.green.Store(int64(config.GreenDuration))
	live.spawn.Store(int64(config.SpawnInterval))

	return newRunContext("test-run", config, live, mb), recorder
}

func lightSequence(events []Event) []LightState {
	var result []LightState
	for _, e := range events {
		if e.Kind == EventLightChanged {
			result = append(result, e.State)
		}
	}
	return result
}

// phaseTiming is how long one served direction stayed GREEN and then YELLOW
type phaseTiming struct {
	direction Direction
	green     time.Duration
	yellow    time.Duration
}

// phaseTimings pairs delivered light changes into completed phases
func phaseTimings(events []Event) []phaseTiming {
	var result []phaseTiming
	greenAt := map[Direction]time.Time{}
	yellowAt := map[Direction]time.Time{}

	for _, e := range events {
		if e.Kind != EventLightChanged {
			continue
		}
		switch e.State {
		case Green:
			greenAt[e.Direction] = e.Timestamp
		case Yellow:
			yellowAt[e.Direction] = e.Timestamp
		case Red:
			g, gok := greenAt[e.Direction]
			y, yok := yellowAt[e.Direction]
			if gok && yok {
				result = append(result, phaseTiming{
					direction: e.Direction,
					green:     y.Sub(g),
					yellow:    e.Timestamp.Sub(y),
				})
			}
			delete(greenAt, e.Direction)
			delete(yellowAt, e.Direction)
		}
	}
	return result
}
