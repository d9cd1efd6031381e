package dispatcher

import (
	"elevsim/src/types"
)

// FCFS serves requests in registration order. An elevator carries its
// passengers to completion before it claims the next request, and the oldest
// unclaimed request goes to the nearest free elevator.
type FCFS struct{}

func (FCFS) Name() string { return "fcfs" }

func (FCFS) NextTarget(e types.Elevator, state types.AppState) (int, bool) {
	if destinations := onboardDestinations(e, state); len(destinations) > 0 {
		return destinations[0], true
	}
	if e.TargetFloor != types.NoTarget {
		return e.TargetFloor, true
	}
	if !e.IsIdle() {
		return 0, false
	}

	claimed := claimedFloors(state, e.ID)
	taken := map[int]bool{}
	for _, p := range waitingPassengers(state) {
		if claimed[p.Origin] {
			continue
		}
		assignee, ok := nearestFree(state, p.Origin, taken)
		if !ok {
			return 0, false
		}
		if assignee == e.ID {
			return p.Origin, true
		}
		taken[assignee] = true
		claimed[p.Origin] = true
	}
	return 0, false
}

// nearestFree returns the free elevator closest to floor, ties broken by the lower id.
func nearestFree(state types.AppState, floor int, taken map[int]bool) (int, bool) {
	assignee, found := 0, false
	var best float64
	for _, e := range state.Elevators {
		if taken[e.ID] || !e.IsIdle() {
			continue
		}
		d := distance(e, floor)
		if !found || d < best || (d == best && e.ID < assignee) {
			assignee, best, found = e.ID, d, true
		}
	}
	return assignee, found
}
