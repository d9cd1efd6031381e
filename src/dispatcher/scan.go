package dispatcher

import "elevsim/src/types"

// Scan runs every elevator to the end floor of its direction before it turns,
// stopping for rider destinations and waiting passengers on the way. Idle
// elevators are matched to requests by distance, as in SSTF.
type Scan struct{}

func (Scan) Name() string { return "scan" }

func (Scan) NextTarget(e types.Elevator, state types.AppState) (int, bool) {
	origins := unclaimedOrigins(state, e.ID)
	if e.IsIdle() {
		return matchFree(e.ID, state, origins)
	}

	stops := onboardDestinations(e, state)
	if e.TargetFloor != types.NoTarget {
		stops = append(stops, e.TargetFloor)
	}
	if !e.IsFull() {
		stops = append(stops, origins...)
	}
	if len(stops) == 0 {
		return 0, false
	}

	dir := e.Direction
	if dir == types.DirStopped {
		nearest, _ := nearestFloor(e, stops)
		if nearest == e.Floor {
			return nearest, true
		}
		dir = types.DirectionBetween(e.Floor, nearest)
	}
	if floor, ok := nextStopAhead(e, stops, dir); ok {
		return floor, true
	}
	if end := endFloor(state.NumFloors(), dir); e.IsMoving() || e.Floor != end {
		return end, true
	}
	return nextStopAhead(e, stops, -dir)
}

// nextStopAhead is the closest stop in dir. The current floor counts while
// the elevator stands still.
func nextStopAhead(e types.Elevator, stops []int, dir types.Direction) (int, bool) {
	best, found := 0, false
	for _, floor := range stops {
		ahead := (float64(floor) - e.Position()) * float64(dir)
		if ahead < 0 || (ahead == 0 && e.IsMoving()) {
			continue
		}
		if !found || distance(e, floor) < distance(e, best) {
			best, found = floor, true
		}
	}
	return best, found
}

func endFloor(numFloors int, dir types.Direction) int {
	if dir == types.DirDown {
		return 1
	}
	return numFloors
}
