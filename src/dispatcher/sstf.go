package dispatcher

import (
	"cmp"
	"slices"

	"elevsim/src/types"
)

// SSTF serves the closest request first. Free elevators are matched to
// unclaimed request floors by global shortest distance, so the assignment
// does not depend on elevator id order.
type SSTF struct{}

func (SSTF) Name() string { return "sstf" }

func (SSTF) NextTarget(e types.Elevator, state types.AppState) (int, bool) {
	origins := unclaimedOrigins(state, e.ID)

	if !e.IsIdle() {
		candidates := onboardDestinations(e, state)
		if e.TargetFloor != types.NoTarget {
			candidates = append(candidates, e.TargetFloor)
		}
		if !e.IsFull() {
			candidates = append(candidates, origins...)
		}
		return nearestFloor(e, candidates)
	}
	return matchFree(e.ID, state, origins)
}

type match struct {
	elevatorID int
	floor      int
	distance   float64
}

// matchFree greedily pairs free elevators with floors, shortest distance first.
// Ties go to the lower floor, then the lower elevator id.
func matchFree(elevatorID int, state types.AppState, floors []int) (int, bool) {
	var pairs []match
	for _, e := range state.Elevators {
		if !e.IsIdle() {
			continue
		}
		for _, floor := range floors {
			pairs = append(pairs, match{elevatorID: e.ID, floor: floor, distance: distance(e, floor)})
		}
	}
	slices.SortFunc(pairs, func(a, b match) int {
		return cmp.Or(
			cmp.Compare(a.distance, b.distance),
			cmp.Compare(a.floor, b.floor),
			cmp.Compare(a.elevatorID, b.elevatorID),
		)
	})

	usedElevators := map[int]bool{}
	usedFloors := map[int]bool{}
	for _, pair := range pairs {
		if usedElevators[pair.elevatorID] || usedFloors[pair.floor] {
			continue
		}
		if pair.elevatorID == elevatorID {
			return pair.floor, true
		}
		usedElevators[pair.elevatorID] = true
		usedFloors[pair.floor] = true
	}
	return 0, false
}
