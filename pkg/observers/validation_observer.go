package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
)

// ValidationObserver checks the safety properties of a run on the live
// notification stream:
//   - at most one direction holds GREEN or YELLOW
//   - lights follow RED -> GREEN -> YELLOW -> RED (forced RED excepted)
//   - queue counts are never negative
//   - cars only pass while their direction is GREEN
//   - without skips, GREEN follows the rotation order
//   - nothing but the RED reset happens after a run stopped
type ValidationObserver struct {
	lights      map[core.Direction]core.LightState
	lastGreen   *core.Direction
	skipped     bool
	stopped     bool
	violations  []string
	transitions int
	mutex       sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		lights:     make(map[core.Direction]core.LightState),
		violations: make([]string, 0),
	}
}

// addViolation adds a violation; the caller holds the mutex
func (o *ValidationObserver) addViolation(format string, args ...any) {
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

// OnLightChanged validates light transitions and mutual exclusion
func (o *ValidationObserver) OnLightChanged(direction core.Direction, state core.LightState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.transitions++
	from := o.lights[direction]

	if o.stopped && state != core.Red {
		o.addViolation("%s turned %s after the run stopped", direction, state)
	}

	if !core.CanTransition(from, state) {
		o.addViolation("invalid transition for %s: %s -> %s", direction, from, state)
	}

	if state.HasRightOfWay() {
		for other, s := range o.lights {
			if other != direction && s.HasRightOfWay() {
				o.addViolation("%s turned %s while %s is %s", direction, state, other, s)
			}
		}
	}

	if state == core.Green {
		if o.lastGreen != nil && !o.skipped {
			expected := core.Rotation[(int(*o.lastGreen)+1)%core.NumDirections]
			if direction != expected {
				o.addViolation("rotation broken: %s turned GREEN after %s, expected %s", direction, *o.lastGreen, expected)
			}
		}
		d := direction
		o.lastGreen = &d
		o.skipped = false
	}

	o.lights[direction] = state
}

// OnQueueChanged validates that counts stay non-negative
func (o *ValidationObserver) OnQueueChanged(direction core.Direction, count int) {
	if count >= 0 {
		return
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.addViolation("queue %s went negative: %d", direction, count)
}

// OnCarPassing validates that cars only pass on GREEN
func (o *ValidationObserver) OnCarPassing(direction core.Direction) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.stopped {
		o.addViolation("car passed %s after the run stopped", direction)
	}
	if state := o.lights[direction]; state != core.Green {
		o.addViolation("car passed %s while its light was %s", direction, state)
	}
}

// OnArrival implements the optional observer method
func (o *ValidationObserver) OnArrival(direction core.Direction, added int) {}

// OnPhaseSkipped relaxes the rotation check until the next GREEN
func (o *ValidationObserver) OnPhaseSkipped(direction core.Direction, consecutive int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.skipped = true
}

// OnSimulationStarted resets the light table for a new run
func (o *ValidationObserver) OnSimulationStarted(runID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.lights = make(map[core.Direction]core.LightState)
	o.lastGreen = nil
	o.skipped = false
	o.stopped = false
}

// OnSimulationStopped checks the forced RED reset
func (o *ValidationObserver) OnSimulationStopped(runID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	for d, s := range o.lights {
		if s != core.Red {
			o.addViolation("%s was %s when the run stopped", d, s)
		}
	}
	o.stopped = true
}

// OnError records errors as violations
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.addViolation("error occurred: %v", err)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// TransitionCount returns the number of light changes seen
func (o *ValidationObserver) TransitionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.transitions
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.lights = make(map[core.Direction]core.LightState)
	o.lastGreen = nil
	o.skipped = false
	o.stopped = false
	o.violations = make([]string, 0)
	o.transitions = 0
}
