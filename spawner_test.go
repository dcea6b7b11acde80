package trafficsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/trafficsim/pkg/core"
)

func TestSpawner_SameSeedSameArrivals(t *testing.T) {
	rcA, _ := newTestRun(t, fastConfig())
	rcB, _ := newTestRun(t, fastConfig())

	a := newSpawner(rcA, 7)
	b := newSpawner(rcB, 7)

	for i := 0; i < 50; i++ {
		require.Equal(t, a.spawnOnce(), b.spawnOnce(), "draw %d", i)
	}
	assert.Equal(t, rcA.queues.Snapshot(), rcB.queues.Snapshot())
}

func TestSpawner_ArrivalThenQueueChanged(t *testing.T) {
	rc, recorder := newTestRun(t, fastConfig())
	s := newSpawner(rc, 3)

	var draw core.Draw
	for draw.Count == 0 {
		draw = s.spawnOnce()
	}
	rc.mailbox.flush()

	events := recorder.Events()
	require.Len(t, events, 2)

	assert.Equal(t, EventArrival, events[0].Kind)
	assert.Equal(t, draw.Direction, events[0].Direction)
	assert.Equal(t, draw.Count, events[0].Count)

	assert.Equal(t, EventQueueChanged, events[1].Kind)
	assert.Equal(t, draw.Direction, events[1].Direction)
	assert.Equal(t, rc.queues.Count(draw.Direction), events[1].Count)
}

func TestSpawner_ZeroDrawsAreSilent(t *testing.T) {
	config := fastConfig()
	config.ArrivalWeights = ArrivalWeights{1, 0, 0}
	rc, recorder := newTestRun(t, config)
	s := newSpawner(rc, 1)

	for i := 0; i < 20; i++ {
		assert.Equal(t, 0, s.spawnOnce().Count)
	}
	rc.mailbox.flush()

	assert.Equal(t, 0, rc.queues.Total())
	assert.Empty(t, recorder.Events())
}

func TestSpawner_RunExitsOnSignal(t *testing.T) {
	config := fastConfig()
	config.JitterMin = 0
	config.JitterMax = 0
	rc, _ := newTestRun(t, config)
	rc.settings.spawn.Store(int64(time.Hour))

	rc.workers.Add(1)
	go newSpawner(rc, 11).run()

	time.Sleep(20 * time.Millisecond)
	started := time.Now()
	rc.signal.Set()
	rc.workers.Wait()

	assert.Less(t, time.Since(started), 100*time.Millisecond)
}

func TestSpawner_ReadsLiveInterval(t *testing.T) {
	config := fastConfig()
	config.JitterMin = 0
	config.JitterMax = 0
	config.MinSpawnDelay = time.Millisecond
	config.ArrivalWeights = ArrivalWeights{0, 1, 0}
	rc, _ := newTestRun(t, config)
	rc.settings.spawn.Store(int64(5 * time.Millisecond))

	rc.workers.Add(1)
	go newSpawner(rc, 5).run()
	defer func() {
		rc.signal.Set()
		rc.workers.Wait()
	}()

	assert.Eventually(t, func() bool {
		return rc.queues.Total() >= 10
	}, time.Second, 5*time.Millisecond)
}

func TestSpawner_FloorBoundsRate(t *testing.T) {
	config := fastConfig()
	config.JitterMin = -400 * time.Millisecond
	config.JitterMax = 0
	config.MinSpawnDelay = 20 * time.Millisecond
	config.ArrivalWeights = ArrivalWeights{0, 1, 0}
	rc, _ := newTestRun(t, config)
	rc.settings.spawn.Store(int64(time.Millisecond))

	rc.workers.Add(1)
	go newSpawner(rc, 13).run()

	time.Sleep(200 * time.Millisecond)
	rc.signal.Set()
	rc.workers.Wait()

	total := rc.queues.Total()
	assert.Greater(t, total, 0)
	assert.LessOrEqual(t, total, 15, "one arrival per floor interval at most")
}

func TestSpawner_RecordedArrivals(t *testing.T) {
	rc, recorder := newTestRun(t, fastConfig())
	s := newSpawner(rc, 42)

	for i := 0; i < 20; i++ {
		s.spawnOnce()
	}
	rc.mailbox.flush()

	var arrivals []core.Draw
	for _, e := range recorder.Filter(EventArrival) {
		arrivals = append(arrivals, core.Draw{Direction: e.Direction, Count: e.Count})
	}
	assert.Equal(t, []core.Draw{
		{Direction: South, Count: 2}, {Direction: South, Count: 1}, {Direction: East, Count: 2},
		{Direction: North, Count: 2}, {Direction: North, Count: 1}, {Direction: West, Count: 1},
		{Direction: South, Count: 1}, {Direction: North, Count: 1}, {Direction: North, Count: 1},
		{Direction: West, Count: 1}, {Direction: West, Count: 1}, {Direction: South, Count: 1},
	}, arrivals)

	assert.Equal(t, map[Direction]int{North: 5, East: 2, South: 5, West: 3}, rc.queues.Snapshot())
}
