// Package core provides the leaf types shared by the traffic simulation:
// directions, light states, notification events and the concurrency
// primitives the workers coordinate through.
package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidDirection is returned when a value outside North..West is used
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrNegativeCount is returned when a queue count would be negative
	ErrNegativeCount = errors.New("negative queue count")
)

// Direction is one of the four intersection approaches
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// NoDirection marks events that concern the whole run rather than one approach
const NoDirection Direction = -1

// NumDirections is the size of the rotation
const NumDirections = 4

// Rotation is the fixed order in which directions receive right-of-way
var Rotation = [NumDirections]Direction{North, East, South, West}

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	case NoDirection:
		return "none"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the four approaches
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

// ParseDirection converts a direction name into a Direction
func ParseDirection(name string) (Direction, error) {
	for _, d := range Rotation {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, name)
}

// LightState is the colour shown by one direction's signal
type LightState int

const (
	Red LightState = iota
	Green
	Yellow
)

// String returns the upper-case colour name
func (s LightState) String() string {
	switch s {
	case Red:
		return "RED"
	case Green:
		return "GREEN"
	case Yellow:
		return "YELLOW"
	default:
		return fmt.Sprintf("LightState(%d)", int(s))
	}
}

// HasRightOfWay reports whether the state grants right-of-way
func (s LightState) HasRightOfWay() bool {
	return s == Green || s == Yellow
}

// CanTransition reports whether from -> to is on the RED -> GREEN -> YELLOW -> RED path.
// A forced reset to RED is always allowed.
func CanTransition(from, to LightState) bool {
	switch to {
	case Red:
		return true
	case Green:
		return from == Red
	case Yellow:
		return from == Green
	default:
		return false
	}
}

// EventKind identifies a notification
type EventKind int

const (
	// LightChanged is fired on every light transition
	LightChanged EventKind = iota
	// QueueChanged is fired on every increment or decrement
	QueueChanged
	// CarPassing is fired when a queued car is drained
	CarPassing
	// Arrival is fired when the spawner adds cars
	Arrival
	// PhaseSkipped is fired when the lock could not be acquired in time
	PhaseSkipped
	// SimulationStarted is fired once per run, before any other run event
	SimulationStarted
	// SimulationStopped is fired once per run, after the forced RED reset
	SimulationStopped
)

// String returns the event kind name
func (k EventKind) String() string {
	switch k {
	case LightChanged:
		return "light_changed"
	case QueueChanged:
		return "queue_changed"
	case CarPassing:
		return "car_passing"
	case Arrival:
		return "arrival"
	case PhaseSkipped:
		return "phase_skipped"
	case SimulationStarted:
		return "simulation_started"
	case SimulationStopped:
		return "simulation_stopped"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a single state-change notification.
// Count carries the new queue count for QueueChanged, the number of added
// cars for Arrival and the consecutive skip count for PhaseSkipped.
type Event struct {
	ID        string
	RunID     string
	Kind      EventKind
	Direction Direction
	State     LightState
	Count     int
	Timestamp time.Time
}

// NewEvent creates a new event of the given kind for a run
func NewEvent(runID string, kind EventKind, direction Direction) Event {
	return Event{
		ID:        uuid.New().String(),
		RunID:     runID,
		Kind:      kind,
		Direction: direction,
		Timestamp: time.Now(),
	}
}

// NewRunEvent creates a run lifecycle event, which has no direction
func NewRunEvent(runID string, kind EventKind) Event {
	return NewEvent(runID, kind, NoDirection)
}

// WithState sets the light state of the event and returns it
func (e Event) WithState(state LightState) Event {
	e.State = state
	return e
}

// WithCount sets the count of the event and returns it
func (e Event) WithCount(count int) Event {
	e.Count = count
	return e
}
