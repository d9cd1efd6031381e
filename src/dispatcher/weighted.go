package dispatcher

import (
	"math"

	"elevsim/src/types"
)

const (
	loadPenalty   = 20.0 // floors added for a full car
	riderPenalty  = 2.0  // floors added per rider
	historyCredit = 0.5  // floors credited per past request at a floor
)

// floorCost rates an elevator for a request floor. Lower is better.
type floorCost func(e types.Elevator, floor int) float64

// LoadBalance sends each request to the elevator with the lowest distance
// plus a penalty growing with its load, so lightly loaded cars take the work.
type LoadBalance struct{}

func (LoadBalance) Name() string { return "load_balance" }

func (LoadBalance) NextTarget(e types.Elevator, state types.AppState) (int, bool) {
	owed := owedFloors(e, state, func(c types.Elevator, floor int) float64 {
		return distance(c, floor) + loadPenalty*float64(c.PassengerCount)/float64(max(c.Capacity, 1))
	})
	return nearestFloor(e, owed)
}

// Adaptive learns from the requests seen so far. Floors with many past
// requests are served first, and an idle elevator parks at the busiest one.
type Adaptive struct{}

func (Adaptive) Name() string { return "adaptive" }

func (Adaptive) NextTarget(e types.Elevator, state types.AppState) (int, bool) {
	history := requestHistory(state)
	owed := owedFloors(e, state, func(c types.Elevator, floor int) float64 {
		return distance(c, floor) + riderPenalty*float64(c.PassengerCount)
	})

	best, found := 0, false
	var bestScore float64
	for _, floor := range owed {
		score := distance(e, floor) - historyCredit*float64(history[floor])
		if !found || score < bestScore || (score == bestScore && floor < best) {
			best, bestScore, found = floor, score, true
		}
	}
	if found || !e.IsIdle() {
		return best, found
	}

	busiest := busiestFloor(history)
	if busiest == 0 || busiest == e.Floor || occupied(state, busiest, e.ID) {
		return 0, false
	}
	return busiest, true
}

// owedFloors lists the floors an elevator must visit: its riders'
// destinations, its target, and the unclaimed request floors where it is the
// cheapest elevator. A moving elevator only owes floors it can still stop at.
func owedFloors(e types.Elevator, state types.AppState, cost floorCost) []int {
	owed := onboardDestinations(e, state)
	if !e.IsFull() {
		for _, floor := range unclaimedOrigins(state, e.ID) {
			if cheapestFor(state, floor, cost) == e.ID {
				owed = append(owed, floor)
			}
		}
	}
	if !e.IsMoving() {
		if e.TargetFloor != types.NoTarget {
			owed = append(owed, e.TargetFloor)
		}
		return owed
	}

	onTheWay := []int{e.TargetFloor}
	for _, floor := range owed {
		if between(float64(floor), e.Position(), float64(e.TargetFloor)) {
			onTheWay = append(onTheWay, floor)
		}
	}
	return onTheWay
}

// cheapestFor returns the non-full elevator with the lowest cost for floor,
// ties to the lower id.
func cheapestFor(state types.AppState, floor int, cost floorCost) int {
	assignee, lowest := types.NoElevator, math.Inf(1)
	for _, e := range state.Elevators {
		if e.IsFull() {
			continue
		}
		if c := cost(e, floor); c < lowest {
			assignee, lowest = e.ID, c
		}
	}
	return assignee
}

// requestHistory counts every registered passenger by origin floor.
func requestHistory(state types.AppState) map[int]int {
	history := map[int]int{}
	for _, p := range state.Passengers {
		history[p.Origin]++
	}
	return history
}

// busiestFloor is the origin with the most requests, ties to the lower floor.
// It is 0 without history.
func busiestFloor(history map[int]int) int {
	busiest := 0
	for floor, count := range history {
		if busiest == 0 || count > history[busiest] || (count == history[busiest] && floor < busiest) {
			busiest = floor
		}
	}
	return busiest
}

// occupied reports another elevator standing at or heading for floor.
func occupied(state types.AppState, floor, exceptID int) bool {
	for _, e := range state.Elevators {
		if e.ID == exceptID {
			continue
		}
		if e.TargetFloor == floor || (e.Floor == floor && !e.IsMoving()) {
			return true
		}
	}
	return false
}

// between reports x strictly between a and b.
func between(x, a, b float64) bool {
	return (a < x && x < b) || (b < x && x < a)
}
