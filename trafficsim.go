// Package trafficsim simulates a four-way intersection in which one direction
// at a time holds right-of-way (GREEN -> YELLOW -> RED) while cars arrive in
// per-direction queues and drain while their direction is GREEN.
//
// A Simulation runs three kinds of workers for each run: a scheduler that
// rotates the intersection lock among North, East, South and West, a spawner
// that injects randomized arrivals, and at most one passer that drains the
// queue of the direction currently holding the lock. Rendering and logging
// live behind the Observer boundary.
package trafficsim

import (
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/observers"
)

// Core types
type (
	// Direction is one of the four intersection approaches
	Direction = core.Direction

	// LightState is the colour shown by one direction's signal
	LightState = core.LightState

	// Event is a single state-change notification
	Event = core.Event

	// EventKind identifies a notification
	EventKind = core.EventKind

	// QueueStore holds the number of waiting cars per direction
	QueueStore = core.QueueStore

	// ArrivalWeights are the relative weights of 0, 1 and 2 arriving cars
	ArrivalWeights = core.ArrivalWeights
)

// Re-export observer types
type (
	// LoggingObserver writes every notification to a structured logger
	LoggingObserver = observers.LoggingObserver

	// LogLevel represents the logging level
	LogLevel = observers.LogLevel

	// MetricsObserver collects counters about a run
	MetricsObserver = observers.MetricsObserver

	// ValidationObserver checks the safety properties of a run
	ValidationObserver = observers.ValidationObserver
)

// Re-export constants
const (
	North = core.North
	East  = core.East
	South = core.South
	West  = core.West

	Red    = core.Red
	Green  = core.Green
	Yellow = core.Yellow

	EventLightChanged      = core.LightChanged
	EventQueueChanged      = core.QueueChanged
	EventCarPassing        = core.CarPassing
	EventArrival           = core.Arrival
	EventPhaseSkipped      = core.PhaseSkipped
	EventSimulationStarted = core.SimulationStarted
	EventSimulationStopped = core.SimulationStopped

	// LogError logs only errors
	LogError = observers.LogError

	// LogWarning logs errors and warnings
	LogWarning = observers.LogWarning

	// LogInfo logs errors, warnings, and info
	LogInfo = observers.LogInfo

	// LogDebug logs errors, warnings, info, and debug
	LogDebug = observers.LogDebug
)

// Rotation is the fixed order in which directions receive right-of-way
var Rotation = core.Rotation

// Re-export core functions
var (
	// ParseDirection converts a direction name into a Direction
	ParseDirection = core.ParseDirection

	// CanTransition reports whether a light may move from one state to another
	CanTransition = core.CanTransition

	// DefaultArrivalWeights is 40% nothing, 45% one car, 15% two cars
	DefaultArrivalWeights = core.DefaultArrivalWeights
)

// Re-export observer constructors
var (
	// NewLoggingObserver creates a logging observer writing to slog.Default at info level
	NewLoggingObserver = observers.NewDefaultLoggingObserver

	// NewCustomLoggingObserver creates a logging observer with custom settings
	NewCustomLoggingObserver = observers.NewLoggingObserver

	// NewMetricsObserver creates a new metrics observer
	NewMetricsObserver = observers.NewMetricsObserver

	// NewValidationObserver creates a new validation observer
	NewValidationObserver = observers.NewValidationObserver
)
