// Package dataset supplies passenger arrivals to a run.
package dataset

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"elevsim/src/config"
	"elevsim/src/types"
)

var ErrInvalidDataset = errors.New("invalid dataset")

// Schedule yields the requests arriving in the simulated interval [from, to), in ms.
type Schedule interface {
	Due(from, to float64) []types.Request
}

type Arrival struct {
	At          time.Duration `yaml:"at"`
	Origin      int           `yaml:"origin"`
	Destination int           `yaml:"destination"`
}

func (a Arrival) Request() types.Request {
	return types.Request{Origin: a.Origin, Destination: a.Destination}
}

func (a Arrival) atMs() float64 {
	return float64(a.At) / float64(time.Millisecond)
}

// Sample is a fixed list of arrivals, ordered by time.
type Sample struct {
	Arrivals []Arrival `yaml:"arrivals"`
}

// Open returns the schedule named by cfg.Dataset: the built-in sample, a
// seeded random stream, or a YAML file. "live" and "" have no schedule.
func Open(cfg config.Config) (Schedule, error) {
	switch cfg.Dataset {
	case "", "live":
		return nil, nil
	case "sample":
		return Builtin(cfg.Floors), nil
	case "random":
		r, err := NewRandom(cfg.Seed, cfg.Floors, cfg.ArrivalRate)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	sample, err := Load(cfg.Dataset, cfg.Floors)
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// Load reads a YAML sample and checks every arrival against the building.
func Load(path string, numFloors int) (Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sample{}, fmt.Errorf("read dataset: %w", err)
	}
	var sample Sample
	if err := yaml.Unmarshal(data, &sample); err != nil {
		return Sample{}, fmt.Errorf("%w: decode %s: %w", ErrInvalidDataset, path, err)
	}
	for i, a := range sample.Arrivals {
		switch {
		case a.At < 0:
			return Sample{}, fmt.Errorf("%w: arrival %d at negative time %v", ErrInvalidDataset, i, a.At)
		case a.Origin < 1 || a.Origin > numFloors || a.Destination < 1 || a.Destination > numFloors:
			return Sample{}, fmt.Errorf("%w: arrival %d %d->%d outside [1,%d]", ErrInvalidDataset, i, a.Origin, a.Destination, numFloors)
		case a.Origin == a.Destination:
			return Sample{}, fmt.Errorf("%w: arrival %d stays on floor %d", ErrInvalidDataset, i, a.Origin)
		}
	}
	slices.SortStableFunc(sample.Arrivals, func(a, b Arrival) int { return cmp.Compare(a.At, b.At) })
	return sample, nil
}

// Builtin is a morning-rush sample: a lobby burst going up, then traffic
// between upper floors and back down.
func Builtin(numFloors int) Sample {
	if numFloors < 2 {
		return Sample{}
	}
	top := numFloors
	mid := max(top/2, 1)
	floor := func(f int) int { return min(max(f, 1), top) }

	raw := []Arrival{
		{At: 0, Origin: 1, Destination: top},
		{At: 500 * time.Millisecond, Origin: 1, Destination: mid + 1},
		{At: 1 * time.Second, Origin: 1, Destination: floor(3)},
		{At: 2 * time.Second, Origin: floor(3), Destination: floor(7)},
		{At: 2 * time.Second, Origin: top, Destination: 1},
		{At: 4 * time.Second, Origin: mid, Destination: 1},
		{At: 6 * time.Second, Origin: floor(7), Destination: floor(2)},
		{At: 9 * time.Second, Origin: 1, Destination: top - 1},
		{At: 12 * time.Second, Origin: top - 1, Destination: mid},
		{At: 15 * time.Second, Origin: floor(2), Destination: top},
	}
	var sample Sample
	for _, a := range raw {
		if a.Origin != a.Destination {
			sample.Arrivals = append(sample.Arrivals, a)
		}
	}
	return sample
}

func (s Sample) Due(from, to float64) []types.Request {
	var due []types.Request
	for _, a := range s.Arrivals {
		at := a.atMs()
		if at >= to {
			break
		}
		if at >= from {
			due = append(due, a.Request())
		}
	}
	return due
}
