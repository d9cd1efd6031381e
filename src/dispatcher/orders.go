package dispatcher

import "elevsim/src/types"

// ordersToClearHere returns the orders a stop at the current floor serves.
func ordersToClearHere(s sweep) [NumButtons]bool {
	shouldClear := [NumButtons]bool{BT_Cab: true}
	topFloor := len(s.Orders) - 1

	// At edge floors, clear all orders
	if s.Floor == 1 || s.Floor == topFloor {
		shouldClear[BT_HallUp] = true
		shouldClear[BT_HallDown] = true
		return shouldClear
	}

	// Clear hall orders in the same direction
	switch s.Dir {
	case types.DirUp:
		shouldClear[BT_HallUp] = true
		if !ordersAbove(s) {
			shouldClear[BT_HallDown] = true
		}
	case types.DirDown:
		shouldClear[BT_HallDown] = true
		if !ordersBelow(s) {
			shouldClear[BT_HallUp] = true
		}
	case types.DirStopped:
		shouldClear[BT_HallUp] = true
		shouldClear[BT_HallDown] = true
	}
	return shouldClear
}

func clearAtCurrentFloor(s *sweep) {
	shouldClear := ordersToClearHere(*s)
	for btn := range NumButtons {
		if shouldClear[btn] {
			s.Orders[s.Floor][btn] = false
		}
	}
}

// shouldStopHere checks if a sweep should stop at its current floor.
func shouldStopHere(s sweep) bool {
	switch s.Dir {
	case types.DirUp:
		return s.Orders[s.Floor][BT_HallUp] ||
			s.Orders[s.Floor][BT_Cab] ||
			!ordersAbove(s)
	case types.DirDown:
		return s.Orders[s.Floor][BT_HallDown] ||
			s.Orders[s.Floor][BT_Cab] ||
			!ordersBelow(s)
	default:
		return true
	}
}

// chooseDirection is the sweep rule behind LOOK.
//  1. If stopped, go where there are orders, serving the current floor first.
//  2. If moving, keep the direction until there are no more orders in that direction.
func chooseDirection(s sweep) DirnBehaviourPair {
	switch s.Dir {
	case types.DirUp:
		switch {
		case ordersAbove(s):
			return DirnBehaviourPair{Dir: types.DirUp, Behaviour: Moving}
		case ordersHere(s):
			return DirnBehaviourPair{Dir: types.DirDown, Behaviour: DoorOpen}
		case ordersBelow(s):
			return DirnBehaviourPair{Dir: types.DirDown, Behaviour: Moving}
		}
	case types.DirDown:
		switch {
		case ordersBelow(s):
			return DirnBehaviourPair{Dir: types.DirDown, Behaviour: Moving}
		case ordersHere(s):
			return DirnBehaviourPair{Dir: types.DirUp, Behaviour: DoorOpen}
		case ordersAbove(s):
			return DirnBehaviourPair{Dir: types.DirUp, Behaviour: Moving}
		}
	case types.DirStopped:
		switch {
		case ordersHere(s):
			return DirnBehaviourPair{Dir: types.DirStopped, Behaviour: DoorOpen}
		case ordersAbove(s):
			return DirnBehaviourPair{Dir: types.DirUp, Behaviour: Moving}
		case ordersBelow(s):
			return DirnBehaviourPair{Dir: types.DirDown, Behaviour: Moving}
		}
	}
	return DirnBehaviourPair{Dir: types.DirStopped, Behaviour: Idle}
}

func countOrders(s sweep, startFloor int, endFloor int) (result int) {
	for floor := max(startFloor, 1); floor < endFloor && floor < len(s.Orders); floor++ {
		for btn := range NumButtons {
			if s.Orders[floor][btn] {
				result++
			}
		}
	}
	return result
}

func ordersAbove(s sweep) bool {
	return countOrders(s, s.Floor+1, len(s.Orders)) > 0
}

func ordersBelow(s sweep) bool {
	return countOrders(s, 1, s.Floor) > 0
}

func ordersHere(s sweep) bool {
	return countOrders(s, s.Floor, s.Floor+1) > 0
}

func hasOrders(o Orders) bool {
	for floor := 1; floor < len(o); floor++ {
		for btn := range NumButtons {
			if o[floor][btn] {
				return true
			}
		}
	}
	return false
}
