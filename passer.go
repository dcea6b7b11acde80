package trafficsim

import (
	"time"
)

// passer drains one direction's queue while that direction is GREEN.
// The scheduler starts at most one at a time and joins it before YELLOW.
type passer struct {
	rc        *runContext
	direction Direction
	passed    int
}

func newPasser(rc *runContext, direction Direction) *passer {
	return &passer{rc: rc, direction: direction}
}

// run drains until green has elapsed, phaseEnd is closed or the run is cancelled.
// It returns the number of cars that passed.
func (p *passer) run(green time.Duration, phaseEnd <-chan struct{}) int {
	deadline := time.Now().Add(green)

	for !p.rc.signal.IsSet() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		select {
		case <-phaseEnd:
			return p.passed
		default:
		}

		if _, ok := p.rc.pass(p.direction); !ok {
			if !p.rc.wait(min(p.rc.config.IdlePoll, remaining), phaseEnd) {
				break
			}
			continue
		}
		p.passed++

		if !p.rc.wait(p.rc.config.PassInterval, phaseEnd) {
			break
		}
	}

	return p.passed
}
