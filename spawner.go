package trafficsim

import (
	"github.com/anggasct/trafficsim/pkg/core"
)

// spawner injects randomized arrivals into the queue store.
// It never touches the intersection lock.
type spawner struct {
	rc      *runContext
	sampler *core.ArrivalSampler
}

func newSpawner(rc *runContext, seed uint64) *spawner {
	return &spawner{
		rc:      rc,
		sampler: core.NewArrivalSampler(seed, rc.config.ArrivalWeights),
	}
}

func (s *spawner) run() {
	defer s.rc.workers.Done()

	for !s.rc.signal.IsSet() {
		s.spawnOnce()

		delay := s.sampler.Delay(
			s.rc.settings.spawnInterval(),
			s.rc.config.JitterMin,
			s.rc.config.JitterMax,
			s.rc.config.MinSpawnDelay,
		)
		if !s.rc.signal.Sleep(delay) {
			return
		}
	}
}

// spawnOnce performs one draw and returns it
func (s *spawner) spawnOnce() core.Draw {
	draw := s.sampler.Next()
	if draw.Count == 0 {
		return draw
	}

	if _, err := s.rc.arrive(draw.Direction, draw.Count); err != nil {
		s.rc.logger.Error("failed to add arrivals", "direction", draw.Direction, "error", err)
	}
	return draw
}
