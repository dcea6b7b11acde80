// Package observers provides observers for monitoring a traffic simulation
package observers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and warnings
	LogWarning
	// LogInfo logs errors, warnings, and info
	LogInfo
	// LogDebug logs errors, warnings, info, and debug
	LogDebug
)

// SlogLevel maps the level onto the slog level scale
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogError:
		return slog.LevelError
	case LogWarning:
		return slog.LevelWarn
	case LogDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// LoggingObserver writes every notification to a structured logger.
// Light changes, starts and stops are logged at info, skips at warning, and
// queue traffic at debug.
type LoggingObserver struct {
	level  LogLevel
	prefix string
	logger *slog.Logger
	mutex  sync.RWMutex
}

// NewLoggingObserver creates a new logging observer writing to slog.Default
func NewLoggingObserver(level LogLevel, prefix string) *LoggingObserver {
	return &LoggingObserver{
		level:  level,
		prefix: prefix,
		logger: slog.Default(),
	}
}

// SetLogger sets the destination logger
func (o *LoggingObserver) SetLogger(logger *slog.Logger) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.logger = logger
}

// log logs a message at the specified level
func (o *LoggingObserver) log(level LogLevel, msg string, args ...any) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if level > o.level || o.logger == nil {
		return
	}
	if o.prefix != "" {
		args = append(args, "source", o.prefix)
	}
	o.logger.Log(context.Background(), level.SlogLevel(), msg, args...)
}

// OnLightChanged logs light transitions
func (o *LoggingObserver) OnLightChanged(direction core.Direction, state core.LightState) {
	o.log(LogInfo, "light changed", "direction", direction.String(), "state", state.String())
}

// OnQueueChanged logs queue counts
func (o *LoggingObserver) OnQueueChanged(direction core.Direction, count int) {
	o.log(LogDebug, "queue changed", "direction", direction.String(), "count", count)
}

// OnCarPassing logs drained cars
func (o *LoggingObserver) OnCarPassing(direction core.Direction) {
	o.log(LogDebug, "car passing", "direction", direction.String())
}

// OnArrival logs arrivals
func (o *LoggingObserver) OnArrival(direction core.Direction, added int) {
	o.log(LogDebug, "cars arrived", "direction", direction.String(), "added", added)
}

// OnPhaseSkipped logs lock timeouts
func (o *LoggingObserver) OnPhaseSkipped(direction core.Direction, consecutive int) {
	o.log(LogWarning, "phase skipped", "direction", direction.String(), "consecutive", consecutive)
}

// OnSimulationStarted logs the start of a run
func (o *LoggingObserver) OnSimulationStarted(runID string) {
	o.log(LogInfo, "simulation started", "run_id", runID)
}

// OnSimulationStopped logs the end of a run
func (o *LoggingObserver) OnSimulationStopped(runID string) {
	o.log(LogInfo, "simulation stopped", "run_id", runID)
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.log(LogError, "observer error", "error", err)
}
