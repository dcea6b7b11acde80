package trafficsim

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxPollInterval bounds the granularity of every cancellable wait
const MaxPollInterval = 250 * time.Millisecond

// Limits bounds the values accepted by the Start, SetGreenDuration and
// SetSpawnInterval commands. A zero bound is not enforced.
type Limits struct {
	GreenMin time.Duration `yaml:"green_min"`
	GreenMax time.Duration `yaml:"green_max"`
	SpawnMin time.Duration `yaml:"spawn_min"`
	SpawnMax time.Duration `yaml:"spawn_max"`
}

// Config holds the timing and policy parameters of a simulation
type Config struct {
	GreenDuration  time.Duration `yaml:"green_duration"`  // initial green time, reconfigurable
	YellowDuration time.Duration `yaml:"yellow_duration"` // fixed
	SpawnInterval  time.Duration `yaml:"spawn_interval"`  // initial spawn interval, reconfigurable
	PassInterval   time.Duration `yaml:"pass_interval"`   // time for one car to clear the intersection
	IdlePoll       time.Duration `yaml:"idle_poll"`       // passer re-check interval on an empty queue
	PollInterval   time.Duration `yaml:"poll_interval"`   // signal polling granularity while holding a phase
	LockTimeout    time.Duration `yaml:"lock_timeout"`
	PhaseGap       time.Duration `yaml:"phase_gap"` // pause between rotation steps
	JitterMin      time.Duration `yaml:"jitter_min"`
	JitterMax      time.Duration `yaml:"jitter_max"`
	MinSpawnDelay  time.Duration `yaml:"min_spawn_delay"`

	ArrivalWeights ArrivalWeights `yaml:"arrival_weights"`

	// MaxConsecutiveSkips makes the scheduler wait for the lock once a
	// direction has been skipped that many times in a row. Zero keeps the
	// plain skip-on-timeout policy.
	MaxConsecutiveSkips int `yaml:"max_consecutive_skips"`

	// DisplayCap is the largest queue count shown before a "+" suffix
	DisplayCap int `yaml:"display_cap"`

	// Seed for the spawner. Zero picks a time-based seed per run.
	Seed uint64 `yaml:"seed"`

	// SpawnerDisabled runs the light rotation without arrivals
	SpawnerDisabled bool `yaml:"spawner_disabled"`

	Limits Limits `yaml:"limits"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the stock intersection timing
func DefaultConfig() Config {
	return Config{
		GreenDuration:  4 * time.Second,
		YellowDuration: 1 * time.Second,
		SpawnInterval:  2 * time.Second,
		PassInterval:   600 * time.Millisecond,
		IdlePoll:       250 * time.Millisecond,
		PollInterval:   100 * time.Millisecond,
		LockTimeout:    1 * time.Second,
		PhaseGap:       200 * time.Millisecond,
		JitterMin:      -400 * time.Millisecond,
		JitterMax:      800 * time.Millisecond,
		MinSpawnDelay:  200 * time.Millisecond,
		ArrivalWeights: DefaultArrivalWeights,
		DisplayCap:     20,
		Limits: Limits{
			GreenMin: 2 * time.Second,
			GreenMax: 10 * time.Second,
			SpawnMin: 500 * time.Millisecond,
			SpawnMax: 5 * time.Second,
		},
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value time.Duration
	}{
		{"green_duration", c.GreenDuration},
		{"yellow_duration", c.YellowDuration},
		{"spawn_interval", c.SpawnInterval},
		{"pass_interval", c.PassInterval},
		{"idle_poll", c.IdlePoll},
		{"poll_interval", c.PollInterval},
		{"lock_timeout", c.LockTimeout},
		{"min_spawn_delay", c.MinSpawnDelay},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return NewConfigurationError("Config", fmt.Sprintf("%s must be > 0, got %s", p.name, p.value))
		}
	}

	if c.PollInterval > MaxPollInterval {
		return NewConfigurationError("Config", fmt.Sprintf("poll_interval must be <= %s, got %s", MaxPollInterval, c.PollInterval))
	}
	if c.IdlePoll > MaxPollInterval {
		return NewConfigurationError("Config", fmt.Sprintf("idle_poll must be <= %s, got %s", MaxPollInterval, c.IdlePoll))
	}
	if c.PhaseGap < 0 {
		return NewConfigurationError("Config", "phase_gap must not be negative")
	}
	if c.JitterMin > c.JitterMax {
		return NewConfigurationError("Config", fmt.Sprintf("jitter_min %s is greater than jitter_max %s", c.JitterMin, c.JitterMax))
	}
	if err := c.ArrivalWeights.Validate(); err != nil {
		return NewConfigurationError("Config", err.Error())
	}
	if c.MaxConsecutiveSkips < 0 {
		return NewConfigurationError("Config", "max_consecutive_skips must not be negative")
	}
	if c.DisplayCap < 0 {
		return NewConfigurationError("Config", "display_cap must not be negative")
	}

	if err := c.Limits.CheckGreen(c.GreenDuration); err != nil {
		return err
	}
	return c.Limits.CheckSpawn(c.SpawnInterval)
}

// CheckGreen validates a green duration command argument
func (l Limits) CheckGreen(d time.Duration) error {
	return checkRange("GreenDuration", d, l.GreenMin, l.GreenMax)
}

// CheckSpawn validates a spawn interval command argument
func (l Limits) CheckSpawn(d time.Duration) error {
	return checkRange("SpawnInterval", d, l.SpawnMin, l.SpawnMax)
}

func checkRange(component string, d, lo, hi time.Duration) error {
	if d <= 0 {
		return NewConfigurationError(component, fmt.Sprintf("must be > 0, got %s", d))
	}
	if lo > 0 && d < lo {
		return NewConfigurationError(component, fmt.Sprintf("%s is below the minimum %s", d, lo))
	}
	if hi > 0 && d > hi {
		return NewConfigurationError(component, fmt.Sprintf("%s is above the maximum %s", d, hi))
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseConfig reads a YAML document over DefaultConfig and validates the result
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadConfig reads and parses a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}
