package trafficsim

import (
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
)

// scheduler rotates right-of-way among the four directions.
//
// Each rotation step tries the intersection lock for the direction under the
// cursor. A timeout is not an error: the direction loses its turn and the
// cursor moves on. When Config.MaxConsecutiveSkips is set, a direction that
// has lost that many turns in a row waits for the lock instead.
type scheduler struct {
	rc     *runContext
	cursor int
	skips  [core.NumDirections]int
}

func newScheduler(rc *runContext) *scheduler {
	return &scheduler{rc: rc}
}

func (s *scheduler) run() {
	defer s.rc.workers.Done()
	defer s.rc.forceRed()

	for !s.rc.signal.IsSet() {
		if !s.step() {
			continue
		}
		if !s.rc.signal.Sleep(s.rc.config.PhaseGap) {
			return
		}
	}
}

// step runs one rotation step and reports whether a phase was served
func (s *scheduler) step() bool {
	direction := core.Rotation[s.cursor%core.NumDirections]
	s.cursor = (s.cursor + 1) % core.NumDirections

	if !s.acquire(direction) {
		if s.rc.signal.IsSet() {
			return false
		}
		s.skips[direction]++
		s.rc.logger.Warn("lock timeout, skipping direction",
			"direction", direction,
			"consecutive", s.skips[direction],
		)
		s.rc.mailbox.post(core.NewEvent(s.rc.id, EventPhaseSkipped, direction).WithCount(s.skips[direction]))
		return false
	}

	s.skips[direction] = 0
	s.phase(direction)
	return true
}

func (s *scheduler) acquire(direction Direction) bool {
	cancel := s.rc.signal.Done()

	limit := s.rc.config.MaxConsecutiveSkips
	if limit > 0 && s.skips[direction] >= limit {
		s.rc.logger.Warn("skip limit reached, waiting for lock", "direction", direction, "skips", s.skips[direction])
		return s.rc.lock.Acquire(cancel)
	}

	return s.rc.lock.TryAcquire(s.rc.config.LockTimeout, cancel)
}

// phase drives GREEN -> YELLOW -> RED for a direction whose lock is held.
// The passer is joined before YELLOW and the lock is released on every path.
func (s *scheduler) phase(direction Direction) {
	defer func() {
		if err := s.rc.lock.Release(); err != nil {
			s.rc.logger.Error("failed to release intersection lock", "direction", direction, "error", err)
		}
	}()

	green := s.rc.settings.greenDuration()
	s.rc.logger.Debug("phase started", "direction", direction, "green", green)

	s.rc.setLight(direction, Green)

	phaseEnd := make(chan struct{})
	var passers sync.WaitGroup
	passers.Add(1)
	go func() {
		defer passers.Done()
		newPasser(s.rc, direction).run(green, phaseEnd)
	}()

	s.rc.wait(green, nil)
	close(phaseEnd)
	passers.Wait()

	s.rc.setLight(direction, Yellow)
	s.rc.wait(s.rc.config.YellowDuration, nil)
	s.rc.setLight(direction, Red)
}
