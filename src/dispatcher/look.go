package dispatcher

import (
	"log/slog"
	"math"

	"elevsim/src/types"
)

// Look keeps each elevator sweeping in its direction while it has stops
// ahead and reverses only when none remain. A hall call goes to the elevator
// that passes it soonest without reversing, else to the nearest idle one.
type Look struct {
	Timing Timing
}

func (Look) Name() string { return "look" }

func (l Look) NextTarget(e types.Elevator, state types.AppState) (int, bool) {
	assigned := l.AssignCalls(state)
	plan := planFor(e, state, assigned[e.ID])
	if !hasOrders(plan.Orders) {
		return 0, false
	}

	if plan.Behaviour == Moving {
		if floor, ok := firstStopAhead(plan); ok {
			return floor, true
		}
		return e.TargetFloor, e.TargetFloor != types.NoTarget
	}

	pair := chooseDirection(plan)
	switch pair.Behaviour {
	case DoorOpen:
		return e.Floor, true
	case Moving:
		plan.Dir = pair.Dir
		plan.Floor += int(pair.Dir)
		return firstStopAhead(plan)
	}
	return 0, false
}

// AssignCalls maps elevator ids to the hall calls they serve, oldest call first.
//   - a call at a floor some elevator already targets stays with that elevator
//   - otherwise the busy elevator that reaches it soonest without turning around takes it
//   - failing that, the nearest idle elevator, ties to the lower id
//   - full elevators take no new calls
func (l Look) AssignCalls(state types.AppState) map[int][]Call {
	assigned := map[int][]Call{}
	for _, call := range hallCalls(state) {
		assignee, ok := targetedBy(state, call.Floor)
		if !ok {
			assignee, ok = l.passingElevator(state, assigned, call)
		}
		if !ok {
			assignee, ok = nearestFree(state, call.Floor, nil)
		}
		if !ok {
			continue
		}
		assigned[assignee] = append(assigned[assignee], call)
	}
	return assigned
}

// passingElevator returns the busy elevator whose current sweep serves call
// soonest without reversing.
func (l Look) passingElevator(state types.AppState, assigned map[int][]Call, call Call) (int, bool) {
	assignee, soonest := types.NoElevator, Unreachable
	for _, e := range state.Elevators {
		if e.IsIdle() || e.IsFull() {
			continue
		}
		eta, reversed := sweepTo(planFor(e, state, assigned[e.ID]), call, l.Timing)
		if reversed || eta >= soonest {
			continue
		}
		assignee, soonest = e.ID, eta
	}
	if assignee == types.NoElevator {
		return 0, false
	}
	slog.Debug("Call on the way", "floor", call.Floor, "dir", call.Dir, "elevator", assignee, "eta", soonest)
	return assignee, true
}

func targetedBy(state types.AppState, floor int) (int, bool) {
	for _, e := range state.Elevators {
		if e.TargetFloor == floor && !e.IsFull() {
			return e.ID, true
		}
	}
	return 0, false
}

// planFor builds the sweep of an elevator: its position, its direction and
// the stops owed to passengers on board, its current target and its calls.
func planFor(e types.Elevator, state types.AppState, calls []Call) sweep {
	plan := sweep{
		Floor:     e.Floor,
		Dir:       e.Direction,
		Behaviour: Idle,
		Orders:    newOrders(state.NumFloors()),
	}
	switch {
	case e.DoorOpen:
		plan.Behaviour = DoorOpen
	case e.IsMoving():
		plan.Behaviour = Moving
		plan.Floor = lastFloorBehind(e)
	}

	for _, floor := range onboardDestinations(e, state) {
		plan.Orders[floor][BT_Cab] = true
	}
	if e.TargetFloor != types.NoTarget && !(e.DoorOpen && e.TargetFloor == e.Floor) {
		plan.Orders[e.TargetFloor][BT_Cab] = true
	}
	for _, call := range calls {
		plan.Orders[call.Floor][hallButton(call.Dir)] = true
	}
	return plan
}

// lastFloorBehind is the floor a moving elevator most recently left or passed.
func lastFloorBehind(e types.Elevator) int {
	if e.Direction == types.DirDown {
		return int(math.Ceil(e.Position()))
	}
	return e.Floor
}

// firstStopAhead walks from the floor after plan.Floor in plan.Dir.
func firstStopAhead(plan sweep) (int, bool) {
	if plan.Behaviour == Moving {
		plan.Floor += int(plan.Dir)
	}
	for ; plan.Floor >= 1 && plan.Floor < len(plan.Orders); plan.Floor += int(plan.Dir) {
		if shouldStopHere(plan) {
			return plan.Floor, true
		}
		if plan.Dir == types.DirStopped {
			break
		}
	}
	return 0, false
}
