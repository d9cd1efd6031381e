package dispatcher

import (
	"time"

	"elevsim/src/types"
)

type ButtonType int

const (
	BT_HallUp ButtonType = iota
	BT_HallDown
	BT_Cab
)

const NumButtons = 3

type Behaviour int

const (
	Idle Behaviour = iota
	Moving
	DoorOpen
)

type DirnBehaviourPair struct {
	Dir       types.Direction
	Behaviour Behaviour
}

// Orders marks the stops an elevator plans to make, indexed by floor. Index 0 is unused.
type Orders [][NumButtons]bool

// Call is a hall call collected from waiting passengers.
type Call struct {
	Floor   int
	Dir     types.Direction
	FirstID int // id of the earliest passenger behind the call
}

// Timing converts floors and door cycles into durations for cost estimates.
type Timing struct {
	TravelDuration   time.Duration // one floor at cruising speed
	DoorOpenDuration time.Duration
}

// sweep is a planning copy of an elevator.
type sweep struct {
	Floor     int
	Dir       types.Direction
	Behaviour Behaviour
	Orders    Orders
}

func newOrders(numFloors int) Orders {
	return make(Orders, numFloors+1)
}

func hallButton(dir types.Direction) ButtonType {
	if dir == types.DirDown {
		return BT_HallDown
	}
	return BT_HallUp
}
