package trafficsim

import (
	"fmt"
	"sync"
)

// Observer receives state-change notifications from a simulation.
// Calls are made from a single dispatcher goroutine, one at a time, in the
// order the changes happened.
type Observer interface {
	// Required methods

	// OnLightChanged is called on every RED/GREEN/YELLOW transition
	OnLightChanged(direction Direction, state LightState)

	// OnQueueChanged is called on every increment or decrement of a queue
	OnQueueChanged(direction Direction, count int)

	// OnCarPassing is called when a car is drained from a queue
	OnCarPassing(direction Direction)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnArrival is called when the spawner adds cars to a queue
	OnArrival(direction Direction, added int)

	// OnPhaseSkipped is called when a direction loses its turn to a lock timeout
	OnPhaseSkipped(direction Direction, consecutive int)

	// OnSimulationStarted is called once per run before any other run notification
	OnSimulationStarted(runID string)

	// OnSimulationStopped is called once per run after the forced RED reset
	OnSimulationStopped(runID string)

	// OnError is called when an observer fails
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnLightChanged implements the required Observer method
func (o *BaseObserver) OnLightChanged(direction Direction, state LightState) {}

// OnQueueChanged implements the required Observer method
func (o *BaseObserver) OnQueueChanged(direction Direction, count int) {}

// OnCarPassing implements the required Observer method
func (o *BaseObserver) OnCarPassing(direction Direction) {}

// OnArrival implements the optional ExtendedObserver method
func (o *BaseObserver) OnArrival(direction Direction, added int) {}

// OnPhaseSkipped implements the optional ExtendedObserver method
func (o *BaseObserver) OnPhaseSkipped(direction Direction, consecutive int) {}

// OnSimulationStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnSimulationStarted(runID string) {}

// OnSimulationStopped implements the optional ExtendedObserver method
func (o *BaseObserver) OnSimulationStopped(runID string) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
	onPanic   func(err error)
	mutex     sync.RWMutex
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

// Notify delivers one event to every observer.
// A panicking observer is reported through OnError and does not stop delivery.
func (om *ObserverManager) Notify(event Event) {
	om.mutex.RLock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	om.mutex.RUnlock()

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("observer panic in %s: %v", event.Kind, r)
					if om.onPanic != nil {
						om.onPanic(err)
					}
					if extObs, ok := observer.(ExtendedObserver); ok {
						func() {
							defer func() { recover() }()
							extObs.OnError(err)
						}()
					}
				}
			}()
			deliver(observer, event)
		}()
	}
}

func deliver(observer Observer, event Event) {
	switch event.Kind {
	case EventLightChanged:
		observer.OnLightChanged(event.Direction, event.State)
	case EventQueueChanged:
		observer.OnQueueChanged(event.Direction, event.Count)
	case EventCarPassing:
		observer.OnCarPassing(event.Direction)
	}

	extObs, ok := observer.(ExtendedObserver)
	if !ok {
		return
	}

	switch event.Kind {
	case EventArrival:
		extObs.OnArrival(event.Direction, event.Count)
	case EventPhaseSkipped:
		extObs.OnPhaseSkipped(event.Direction, event.Count)
	case EventSimulationStarted:
		extObs.OnSimulationStarted(event.RunID)
	case EventSimulationStopped:
		extObs.OnSimulationStopped(event.RunID)
	}
}
