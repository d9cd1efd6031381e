package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"elevsim/src/types"
)

// Random generates Poisson arrivals between uniformly chosen floors.
// The same seed always yields the same arrivals. A Random is not safe for
// concurrent use; drive it either through Due or through Feed.
type Random struct {
	rng       *rand.Rand
	numFloors int
	rate      float64 // arrivals per second
	nextAt    float64 // ms
	next      types.Request
}

func NewRandom(seed int64, numFloors int, rate float64) (*Random, error) {
	if numFloors < 2 {
		return nil, fmt.Errorf("%w: random arrivals need at least 2 floors, got %d", ErrInvalidDataset, numFloors)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: arrival rate must be positive, got %v", ErrInvalidDataset, rate)
	}
	r := &Random{
		rng:       rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		numFloors: numFloors,
		rate:      rate,
	}
	r.advance()
	return r, nil
}

// advance draws the next arrival.
func (r *Random) advance() {
	r.nextAt += r.interval()
	origin := 1 + r.rng.IntN(r.numFloors)
	destination := 1 + r.rng.IntN(r.numFloors-1)
	if destination >= origin {
		destination++
	}
	r.next = types.Request{Origin: origin, Destination: destination}
}

// interval is an exponentially distributed gap in ms.
func (r *Random) interval() float64 {
	return r.rng.ExpFloat64() / r.rate * 1000
}

// Due consumes the arrivals up to to. Windows must not go back in time;
// arrivals before from are skipped.
func (r *Random) Due(from, to float64) []types.Request {
	var due []types.Request
	for r.nextAt < to {
		if r.nextAt >= from {
			due = append(due, r.next)
		}
		r.advance()
	}
	return due
}

// Feed pushes arrivals into out in wall-clock time, compressed by speed,
// until ctx is done. It closes out on return.
func (r *Random) Feed(ctx context.Context, out chan<- types.Request, speed float64) {
	defer close(out)
	last := 0.0
	for {
		wait := time.Duration((r.nextAt - last) / speed * float64(time.Millisecond))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		select {
		case <-ctx.Done():
			return
		case out <- r.next:
			slog.Debug("Fed arrival", "origin", r.next.Origin, "destination", r.next.Destination)
		}
		last = r.nextAt
		r.advance()
	}
}
