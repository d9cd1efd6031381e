package dispatcher

import (
	"time"

	"github.com/tiendc/go-deepcopy"

	"elevsim/src/types"
)

// Unreachable is the cost of a call an elevator cannot serve.
const Unreachable = 24 * time.Hour

// timeToServeCall simulates the sweep on a copy of the plan
//   - adjusts the duration based on the next elevator action
//   - adds door time for every stop made before the call
//   - walks floor by floor, accumulating travel time
func timeToServeCall(plan sweep, call Call, timing Timing) time.Duration {
	duration, _ := sweepTo(plan, call, timing)
	return duration
}

// sweepTo runs timeToServeCall and also reports whether the elevator turns
// around before it serves the call.
func sweepTo(plan sweep, call Call, timing Timing) (duration time.Duration, reversed bool) {
	s := sweep{}
	if err := deepcopy.Copy(&s, &plan); err != nil {
		return Unreachable, true
	}
	s.Orders[call.Floor][hallButton(call.Dir)] = true
	turn := func(dir types.Direction) {
		if s.Dir != types.DirStopped && dir != s.Dir {
			reversed = true
		}
		s.Dir = dir
	}

	switch s.Behaviour {
	case Idle:
		if s.Floor == call.Floor {
			return duration, false
		}
		turn(chooseDirection(s).Dir)
		if s.Dir == types.DirStopped {
			return duration, reversed
		}
	case Moving:
		duration += timing.TravelDuration / 2
		s.Floor += int(s.Dir)
	case DoorOpen:
		if s.Floor == call.Floor {
			return duration, false
		}
		duration += timing.DoorOpenDuration / 2
	}

	// A sweep visits each floor at most twice per direction change
	for range 4 * len(s.Orders) {
		if s.Floor < 1 || s.Floor >= len(s.Orders) {
			return Unreachable, true
		}
		if shouldStopHere(s) {
			shouldClear := ordersToClearHere(s)
			if s.Floor == call.Floor && shouldClear[hallButton(call.Dir)] {
				return duration, reversed
			}
			clearAtCurrentFloor(&s)
			duration += timing.DoorOpenDuration
			turn(chooseDirection(s).Dir)
			if s.Dir == types.DirStopped {
				return Unreachable, true
			}
		}
		s.Floor += int(s.Dir)
		duration += timing.TravelDuration
	}
	return Unreachable, true
}
