package trafficsim

import (
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
)

// Intersection is the light table: one LightState per direction.
// The intersection lock is what keeps right-of-way exclusive; Transition
// additionally refuses a change that would break the cycle or give a second
// direction right-of-way, so a scheduling bug surfaces as an error instead of
// an unsafe light.
type Intersection struct {
	states [core.NumDirections]LightState
	mutex  sync.RWMutex
}

// NewIntersection creates a light table with every direction RED
func NewIntersection() *Intersection {
	return &Intersection{}
}

// State returns the light of one direction
func (i *Intersection) State(direction Direction) LightState {
	i.mutex.RLock()
	defer i.mutex.RUnlock()
	if !direction.Valid() {
		return Red
	}
	return i.states[direction]
}

// Transition moves one direction's light to the next state
func (i *Intersection) Transition(direction Direction, to LightState) error {
	if !direction.Valid() {
		return NewConfigurationError("Intersection", "invalid direction "+direction.String())
	}

	i.mutex.Lock()
	defer i.mutex.Unlock()

	from := i.states[direction]
	if !core.CanTransition(from, to) {
		return NewTransitionNotAllowedError(direction, from, to)
	}

	if to.HasRightOfWay() {
		for _, other := range core.Rotation {
			if other != direction && i.states[other].HasRightOfWay() {
				return NewRightOfWayConflictError(direction, other, from, to)
			}
		}
	}

	i.states[direction] = to
	return nil
}

// ForceRed sets every direction to RED
func (i *Intersection) ForceRed() {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	for idx := range i.states {
		i.states[idx] = Red
	}
}

// Active returns the direction holding right-of-way, if any
func (i *Intersection) Active() (Direction, bool) {
	i.mutex.RLock()
	defer i.mutex.RUnlock()
	for _, d := range core.Rotation {
		if i.states[d].HasRightOfWay() {
			return d, true
		}
	}
	return 0, false
}

// Snapshot returns a copy of every light
func (i *Intersection) Snapshot() map[Direction]LightState {
	i.mutex.RLock()
	defer i.mutex.RUnlock()
	result := make(map[Direction]LightState, core.NumDirections)
	for _, d := range core.Rotation {
		result[d] = i.states[d]
	}
	return result
}
