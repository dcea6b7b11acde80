package trafficsim

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the simulation
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Simulation is already running
	ErrCodeAlreadyRunning
	// Simulation has been closed
	ErrCodeClosed
	// Light transition is not on the RED -> GREEN -> YELLOW -> RED path
	ErrCodeTransitionNotAllowed
	// Another direction already holds right-of-way
	ErrCodeRightOfWayConflict
	// Configuration or command argument is invalid
	ErrCodeInvalidConfiguration
)

// ConfigurationError represents invalid configuration or command arguments
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// SimulationError represents lifecycle misuse of a simulation
type SimulationError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation error during %s: %s", e.Operation, e.Message)
}

// NewAlreadyRunningError creates an error for a second Start
func NewAlreadyRunningError(operation string) *SimulationError {
	return &SimulationError{
		Code:      ErrCodeAlreadyRunning,
		Operation: operation,
		Message:   "simulation is already running",
	}
}

// NewClosedError creates an error for use after Close
func NewClosedError(operation string) *SimulationError {
	return &SimulationError{
		Code:      ErrCodeClosed,
		Operation: operation,
		Message:   "simulation is closed",
	}
}

// TransitionError represents an illegal light change
type TransitionError struct {
	Code      ErrorCode
	Direction Direction
	From      LightState
	To        LightState
	Reason    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition error [%s %s->%s]: %s", e.Direction, e.From, e.To, e.Reason)
}

// NewTransitionNotAllowedError creates an error for a transition off the light cycle
func NewTransitionNotAllowedError(direction Direction, from, to LightState) *TransitionError {
	return &TransitionError{
		Code:      ErrCodeTransitionNotAllowed,
		Direction: direction,
		From:      from,
		To:        to,
		Reason:    "transition not allowed",
	}
}

// NewRightOfWayConflictError creates an error for a second direction claiming right-of-way
func NewRightOfWayConflictError(direction, holder Direction, from, to LightState) *TransitionError {
	return &TransitionError{
		Code:      ErrCodeRightOfWayConflict,
		Direction: direction,
		From:      from,
		To:        to,
		Reason:    fmt.Sprintf("%s already holds right-of-way", holder),
	}
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsSimulationError checks if an error is a SimulationError
func IsSimulationError(err error) bool {
	var target *SimulationError
	return errors.As(err, &target)
}

// IsTransitionError checks if an error is a TransitionError
func IsTransitionError(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var simErr *SimulationError
	var transErr *TransitionError
	var cfgErr *ConfigurationError

	switch {
	case errors.As(err, &simErr):
		return simErr.Code
	case errors.As(err, &transErr):
		return transErr.Code
	case errors.As(err, &cfgErr):
		return ErrCodeInvalidConfiguration
	default:
		return ErrCodeNone
	}
}
