package dispatcher

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"elevsim/src/config"
	"elevsim/src/types"
)

// Policy picks the next target floor of one elevator.
// Implementations must be pure functions of their arguments.
type Policy interface {
	Name() string
	NextTarget(elevator types.Elevator, state types.AppState) (floor int, ok bool)
}

// New returns the policy registered under name.
func New(name string, cfg config.Config) (Policy, error) {
	timing := TimingFrom(cfg)
	switch strings.ToLower(name) {
	case "fcfs":
		return FCFS{}, nil
	case "sstf":
		return SSTF{}, nil
	case "look":
		return Look{Timing: timing}, nil
	case "scan":
		return Scan{}, nil
	case "load_balance":
		return LoadBalance{}, nil
	case "adaptive":
		return Adaptive{}, nil
	}
	return nil, fmt.Errorf("%w: unknown policy %q", config.ErrInvalidConfig, name)
}

// TimingFrom derives cost-estimate durations from the motion settings.
func TimingFrom(cfg config.Config) Timing {
	travel := time.Duration(float64(time.Second) / cfg.MaxSpeed)
	return Timing{TravelDuration: travel, DoorOpenDuration: cfg.DoorOpen}
}

// waitingPassengers returns waiting passengers in registration order.
func waitingPassengers(state types.AppState) []types.Passenger {
	var waiting []types.Passenger
	for _, p := range state.Passengers {
		if p.Status == types.Waiting {
			waiting = append(waiting, p)
		}
	}
	slices.SortFunc(waiting, func(a, b types.Passenger) int { return cmp.Compare(a.ID, b.ID) })
	return waiting
}

// hallCalls groups waiting passengers into calls, oldest first.
func hallCalls(state types.AppState) []Call {
	var calls []Call
	seen := map[Call]bool{}
	for _, p := range waitingPassengers(state) {
		key := Call{Floor: p.Origin, Dir: p.Direction}
		if seen[key] {
			continue
		}
		seen[key] = true
		key.FirstID = p.ID
		calls = append(calls, key)
	}
	return calls
}

// claimedFloors returns the targets of every elevator except the one asking.
func claimedFloors(state types.AppState, exceptID int) map[int]bool {
	claimed := map[int]bool{}
	for _, e := range state.Elevators {
		if e.ID != exceptID && e.TargetFloor != types.NoTarget {
			claimed[e.TargetFloor] = true
		}
	}
	return claimed
}

// unclaimedOrigins lists the floors of waiting passengers that no other
// elevator targets, oldest first.
func unclaimedOrigins(state types.AppState, exceptID int) []int {
	claimed := claimedFloors(state, exceptID)
	var origins []int
	for _, p := range waitingPassengers(state) {
		if !claimed[p.Origin] && !slices.Contains(origins, p.Origin) {
			origins = append(origins, p.Origin)
		}
	}
	return origins
}

func distance(e types.Elevator, floor int) float64 {
	return math.Abs(e.Position() - float64(floor))
}

// nearestFloor picks the closest candidate, ties broken by the lower floor.
func nearestFloor(e types.Elevator, candidates []int) (int, bool) {
	best, found := 0, false
	for _, floor := range candidates {
		if !found || distance(e, floor) < distance(e, best) ||
			(distance(e, floor) == distance(e, best) && floor < best) {
			best, found = floor, true
		}
	}
	return best, found
}

// onboardDestinations lists destinations of passengers on board, in boarding order.
func onboardDestinations(e types.Elevator, state types.AppState) []int {
	var destinations []int
	for _, id := range e.Passengers {
		if p := state.Passenger(id); p != nil {
			destinations = append(destinations, p.Destination)
		}
	}
	return destinations
}
