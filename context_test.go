package trafficsim

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/trafficsim/pkg/core"
)

// queueCounts returns the delivered OnQueueChanged counts of one direction
func queueCounts(recorder *recordingObserver, direction Direction) []int {
	var counts []int
	for _, e := range recorder.Filter(EventQueueChanged) {
		if e.Direction == direction {
			counts = append(counts, e.Count)
		}
	}
	return counts
}

func TestRunContext_QueueNotificationsFollowStore(t *testing.T) {
	rc, recorder := newTestRun(t, fastConfig())

	const cars = 500
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < cars; i++ {
			_, err := rc.arrive(North, 1)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for passed := 0; passed < cars; {
			if _, ok := rc.pass(North); ok {
				passed++
			}
		}
	}()
	wg.Wait()
	rc.mailbox.flush()

	counts := queueCounts(recorder, North)
	require.Len(t, counts, 2*cars)

	previous := 0
	for i, c := range counts {
		step := c - previous
		require.True(t, step == 1 || step == -1, "notification %d jumps from %d to %d", i, previous, c)
		previous = c
	}
	assert.Equal(t, rc.queues.Count(North), counts[len(counts)-1])
	assert.Equal(t, 0, rc.queues.Count(North))
}

func TestRunContext_SpawnerAndPasserAgreeOnLastCount(t *testing.T) {
	config := fastConfig()
	config.PassInterval = time.Millisecond
	config.IdlePoll = time.Millisecond
	config.ArrivalWeights = ArrivalWeights{0, 1, 0}
	rc, recorder := newTestRun(t, config)

	s := newSpawner(rc, 9)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 400; i++ {
			s.spawnOnce()
		}
	}()

	newPasser(rc, North).run(200*time.Millisecond, make(chan struct{}))
	<-done
	rc.mailbox.flush()

	for _, d := range Rotation {
		counts := queueCounts(recorder, d)
		if len(counts) == 0 {
			assert.Equal(t, 0, rc.queues.Count(d))
			continue
		}
		assert.Equal(t, rc.queues.Count(d), counts[len(counts)-1], "direction %s", d)
	}
}

func TestRunContext_InvalidDirection(t *testing.T) {
	rc, recorder := newTestRun(t, fastConfig())

	_, err := rc.arrive(Direction(7), 1)
	assert.Error(t, err)

	_, ok := rc.pass(Direction(7))
	assert.False(t, ok)

	rc.mailbox.flush()
	assert.Empty(t, recorder.Events())
}

func TestRunContext_LifecycleEventsHaveNoDirection(t *testing.T) {
	rc, recorder := newTestRun(t, fastConfig())

	started := rc.postRun(EventSimulationStarted)
	stopped := rc.postRun(EventSimulationStopped)
	rc.mailbox.flush()

	for _, e := range []Event{started, stopped} {
		assert.Equal(t, core.NoDirection, e.Direction)
		assert.False(t, e.Direction.Valid())
		assert.Equal(t, "test-run", e.RunID)
	}
	assert.Equal(t, 1, recorder.Count(EventSimulationStarted))
	assert.Equal(t, 1, recorder.Count(EventSimulationStopped))
}
