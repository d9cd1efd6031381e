package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	NumFloors        = 10
	NumElevators     = 2
	Capacity         = 8
	StepInterval     = 100 * time.Millisecond
	DoorOpenDuration = 3 * time.Second
	MaxSpeed         = 1.0 // floors per second
	Acceleration     = 2.0 // floors per second squared
	StoppingDistance = 0.01
	ApproachDistance = 1.0
	DefaultPolicy    = "look"
	DefaultDataset   = "sample"
	ArrivalRate      = 0.2 // passengers per second for the random feed
	MsgRepetitions   = 1
	MsgInterval      = 10 * time.Millisecond
	FeedBuffer       = 64
)

var ErrInvalidConfig = errors.New("invalid config")

// Policies lists the scheduling policy names accepted by Validate.
var Policies = []string{"fcfs", "sstf", "look", "scan", "load_balance", "adaptive"}

// Config is the run configuration supplied by the control surface.
type Config struct {
	Floors           int           `yaml:"floors"`
	Elevators        int           `yaml:"elevators"`
	Capacity         int           `yaml:"capacity"`
	InitialFloors    []int         `yaml:"initialFloors"`
	Spread           bool          `yaml:"spread"`
	Policy           string        `yaml:"policy"`
	Step             time.Duration `yaml:"step"`
	SpeedMultiplier  float64       `yaml:"speedMultiplier"`
	MaxSpeed         float64       `yaml:"maxSpeed"`
	Acceleration     float64       `yaml:"acceleration"`
	StoppingDistance float64       `yaml:"stoppingDistance"`
	ApproachDistance float64       `yaml:"approachDistance"`
	DoorOpen         time.Duration `yaml:"doorOpen"`
	Patience         time.Duration `yaml:"patience"`
	Dataset          string        `yaml:"dataset"`
	Seed             int64         `yaml:"seed"`
	ArrivalRate      float64       `yaml:"arrivalRate"`
	RenderAddr       string        `yaml:"renderAddr"`
	LogFile          string        `yaml:"logFile"`
	Debug            bool          `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Floors:           NumFloors,
		Elevators:        NumElevators,
		Capacity:         Capacity,
		Policy:           DefaultPolicy,
		Step:             StepInterval,
		SpeedMultiplier:  1,
		MaxSpeed:         MaxSpeed,
		Acceleration:     Acceleration,
		StoppingDistance: StoppingDistance,
		ApproachDistance: ApproachDistance,
		DoorOpen:         DoorOpenDuration,
		Dataset:          DefaultDataset,
		Seed:             1,
		ArrivalRate:      ArrivalRate,
	}
}

// Load reads a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.Policy = strings.ToLower(cfg.Policy)
	return cfg, nil
}

// Validate rejects configurations that must not start a run.
func (cfg Config) Validate() error {
	switch {
	case !slices.Contains(Policies, strings.ToLower(cfg.Policy)):
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, cfg.Policy)
	case cfg.Floors <= 0:
		return fmt.Errorf("%w: floors must be positive, got %d", ErrInvalidConfig, cfg.Floors)
	case cfg.Elevators <= 0:
		return fmt.Errorf("%w: elevators must be positive, got %d", ErrInvalidConfig, cfg.Elevators)
	case cfg.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, cfg.Capacity)
	case cfg.Step <= 0:
		return fmt.Errorf("%w: step must be positive, got %v", ErrInvalidConfig, cfg.Step)
	case cfg.SpeedMultiplier <= 0:
		return fmt.Errorf("%w: speed multiplier must be positive, got %v", ErrInvalidConfig, cfg.SpeedMultiplier)
	case cfg.MaxSpeed <= 0 || cfg.Acceleration <= 0:
		return fmt.Errorf("%w: max speed and acceleration must be positive", ErrInvalidConfig)
	case cfg.StoppingDistance < 0 || cfg.StoppingDistance >= 1:
		return fmt.Errorf("%w: stopping distance must be in [0,1), got %v", ErrInvalidConfig, cfg.StoppingDistance)
	case cfg.ApproachDistance < 0:
		return fmt.Errorf("%w: approach distance must not be negative", ErrInvalidConfig)
	case cfg.DoorOpen < 0 || cfg.Patience < 0:
		return fmt.Errorf("%w: door and patience durations must not be negative", ErrInvalidConfig)
	case len(cfg.InitialFloors) > cfg.Elevators:
		return fmt.Errorf("%w: %d initial floors for %d elevators", ErrInvalidConfig, len(cfg.InitialFloors), cfg.Elevators)
	}
	for _, floor := range cfg.InitialFloors {
		if floor < 1 || floor > cfg.Floors {
			return fmt.Errorf("%w: initial floor %d outside [1,%d]", ErrInvalidConfig, floor, cfg.Floors)
		}
	}
	return nil
}

// StepMs is the base simulation increment before the speed multiplier.
func (cfg Config) StepMs() float64 {
	return float64(cfg.Step) / float64(time.Millisecond)
}

func (cfg Config) DoorOpenMs() float64 {
	return float64(cfg.DoorOpen) / float64(time.Millisecond)
}

func (cfg Config) PatienceMs() float64 {
	return float64(cfg.Patience) / float64(time.Millisecond)
}

// InitialFloor returns the starting floor of an elevator. Unlisted elevators
// start at floor 1, or spaced evenly from floor 1 upward when Spread is set.
func (cfg Config) InitialFloor(elevatorID int) int {
	if elevatorID < len(cfg.InitialFloors) {
		return cfg.InitialFloors[elevatorID]
	}
	if cfg.Spread && cfg.Elevators > 0 {
		return 1 + elevatorID*(cfg.Floors-1)/cfg.Elevators
	}
	return 1
}
