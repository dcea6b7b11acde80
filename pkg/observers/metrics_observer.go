package observers

import (
	"sync"
	"time"

	"github.com/anggasct/trafficsim/pkg/core"
)

// MetricsObserver collects counters about a run
type MetricsObserver struct {
	arrivals   map[core.Direction]int
	passes     map[core.Direction]int
	greens     map[core.Direction]int
	skips      map[core.Direction]int
	greenTime  map[core.Direction]time.Duration
	greenSince map[core.Direction]time.Time
	lastCount  map[core.Direction]int
	maxCount   map[core.Direction]int
	sequence   []core.Direction
	errorCount int
	runs       int
	mutex      sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	o := &MetricsObserver{}
	o.reset()
	return o
}

// OnLightChanged records green phases and time spent green
func (o *MetricsObserver) OnLightChanged(direction core.Direction, state core.LightState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	switch state {
	case core.Green:
		o.greens[direction]++
		o.greenSince[direction] = time.Now()
		o.sequence = append(o.sequence, direction)
	default:
		if since, ok := o.greenSince[direction]; ok {
			o.greenTime[direction] += time.Since(since)
			delete(o.greenSince, direction)
		}
	}
}

// OnQueueChanged records the latest and the largest queue count
func (o *MetricsObserver) OnQueueChanged(direction core.Direction, count int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.lastCount[direction] = count
	if count > o.maxCount[direction] {
		o.maxCount[direction] = count
	}
}

// OnCarPassing counts drained cars
func (o *MetricsObserver) OnCarPassing(direction core.Direction) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.passes[direction]++
}

// OnArrival counts arriving cars
func (o *MetricsObserver) OnArrival(direction core.Direction, added int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.arrivals[direction] += added
}

// OnPhaseSkipped counts lock timeouts
func (o *MetricsObserver) OnPhaseSkipped(direction core.Direction, consecutive int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.skips[direction]++
}

// OnSimulationStarted counts runs
func (o *MetricsObserver) OnSimulationStarted(runID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.runs++
}

// OnSimulationStopped implements the optional observer method
func (o *MetricsObserver) OnSimulationStopped(runID string) {}

// OnError records error metrics
func (o *MetricsObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errorCount++
}

func copyCounts(src map[core.Direction]int) map[core.Direction]int {
	result := make(map[core.Direction]int, len(src))
	for k, v := range src {
		result[k] = v
	}
	return result
}

// GetArrivals returns the number of arrived cars per direction
func (o *MetricsObserver) GetArrivals() map[core.Direction]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return copyCounts(o.arrivals)
}

// GetPasses returns the number of drained cars per direction
func (o *MetricsObserver) GetPasses() map[core.Direction]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return copyCounts(o.passes)
}

// GetGreenCounts returns the number of green phases per direction
func (o *MetricsObserver) GetGreenCounts() map[core.Direction]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return copyCounts(o.greens)
}

// GetSkips returns the number of skipped turns per direction
func (o *MetricsObserver) GetSkips() map[core.Direction]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return copyCounts(o.skips)
}

// GetMaxQueue returns the largest observed queue per direction
func (o *MetricsObserver) GetMaxQueue() map[core.Direction]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return copyCounts(o.maxCount)
}

// GetQueues returns the last observed queue per direction
func (o *MetricsObserver) GetQueues() map[core.Direction]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return copyCounts(o.lastCount)
}

// GetGreenTime returns the time each direction spent GREEN in completed phases
func (o *MetricsObserver) GetGreenTime() map[core.Direction]time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[core.Direction]time.Duration, len(o.greenTime))
	for k, v := range o.greenTime {
		result[k] = v
	}
	return result
}

// GetGreenSequence returns the directions in the order they turned GREEN
func (o *MetricsObserver) GetGreenSequence() []core.Direction {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]core.Direction, len(o.sequence))
	copy(result, o.sequence)
	return result
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}

// GetRuns returns the number of started runs
func (o *MetricsObserver) GetRuns() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.runs
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.reset()
}

func (o *MetricsObserver) reset() {
	o.arrivals = make(map[core.Direction]int)
	o.passes = make(map[core.Direction]int)
	o.greens = make(map[core.Direction]int)
	o.skips = make(map[core.Direction]int)
	o.greenTime = make(map[core.Direction]time.Duration)
	o.greenSince = make(map[core.Direction]time.Time)
	o.lastCount = make(map[core.Direction]int)
	o.maxCount = make(map[core.Direction]int)
	o.sequence = nil
	o.errorCount = 0
	o.runs = 0
}
