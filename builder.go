package trafficsim

import (
	"log/slog"
	"time"
)

// SimulationBuilder provides a fluent interface for building simulations
type SimulationBuilder struct {
	config    Config
	observers []Observer
}

// NewSimulationBuilder creates a builder starting from DefaultConfig
func NewSimulationBuilder() *SimulationBuilder {
	return &SimulationBuilder{config: DefaultConfig()}
}

// FromConfig replaces the whole configuration
func (b *SimulationBuilder) FromConfig(config Config) *SimulationBuilder {
	b.config = config
	return b
}

// GreenDuration sets the initial green time
func (b *SimulationBuilder) GreenDuration(d time.Duration) *SimulationBuilder {
	b.config.GreenDuration = d
	return b
}

// YellowDuration sets the fixed yellow time
func (b *SimulationBuilder) YellowDuration(d time.Duration) *SimulationBuilder {
	b.config.YellowDuration = d
	return b
}

// SpawnInterval sets the initial spawn interval
func (b *SimulationBuilder) SpawnInterval(d time.Duration) *SimulationBuilder {
	b.config.SpawnInterval = d
	return b
}

// PassInterval sets how long one car takes to clear the intersection
func (b *SimulationBuilder) PassInterval(d time.Duration) *SimulationBuilder {
	b.config.PassInterval = d
	return b
}

// Polling sets the phase polling granularity and the idle queue re-check interval
func (b *SimulationBuilder) Polling(poll, idle time.Duration) *SimulationBuilder {
	b.config.PollInterval = poll
	b.config.IdlePoll = idle
	return b
}

// LockTimeout sets how long the scheduler waits for the lock before skipping
func (b *SimulationBuilder) LockTimeout(d time.Duration) *SimulationBuilder {
	b.config.LockTimeout = d
	return b
}

// PhaseGap sets the pause between rotation steps
func (b *SimulationBuilder) PhaseGap(d time.Duration) *SimulationBuilder {
	b.config.PhaseGap = d
	return b
}

// Jitter sets the spawn jitter range and the minimum spawn delay
func (b *SimulationBuilder) Jitter(lo, hi, floor time.Duration) *SimulationBuilder {
	b.config.JitterMin = lo
	b.config.JitterMax = hi
	b.config.MinSpawnDelay = floor
	return b
}

// ArrivalWeights sets the weights of 0, 1 and 2 arriving cars
func (b *SimulationBuilder) ArrivalWeights(w ArrivalWeights) *SimulationBuilder {
	b.config.ArrivalWeights = w
	return b
}

// Seed fixes the spawner seed
func (b *SimulationBuilder) Seed(seed uint64) *SimulationBuilder {
	b.config.Seed = seed
	return b
}

// MaxConsecutiveSkips bounds how often a direction may lose its turn in a row
func (b *SimulationBuilder) MaxConsecutiveSkips(n int) *SimulationBuilder {
	b.config.MaxConsecutiveSkips = n
	return b
}

// WithoutSpawner disables arrivals
func (b *SimulationBuilder) WithoutSpawner() *SimulationBuilder {
	b.config.SpawnerDisabled = true
	return b
}

// Limits sets the command argument bounds
func (b *SimulationBuilder) Limits(l Limits) *SimulationBuilder {
	b.config.Limits = l
	return b
}

// Unbounded removes every command argument bound
func (b *SimulationBuilder) Unbounded() *SimulationBuilder {
	b.config.Limits = Limits{}
	return b
}

// Logger sets the structured logger
func (b *SimulationBuilder) Logger(logger *slog.Logger) *SimulationBuilder {
	b.config.Logger = logger
	return b
}

// Observer registers an observer on the built simulation
func (b *SimulationBuilder) Observer(observer Observer) *SimulationBuilder {
	b.observers = append(b.observers, observer)
	return b
}

// Config returns the configuration built so far
func (b *SimulationBuilder) Config() Config {
	return b.config
}

// Build validates the configuration and creates the simulation
func (b *SimulationBuilder) Build() (*Simulation, error) {
	sim, err := New(b.config)
	if err != nil {
		return nil, err
	}
	for _, o := range b.observers {
		sim.AddObserver(o)
	}
	return sim, nil
}
