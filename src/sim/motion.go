package sim

import (
	"log/slog"
	"math"
	"strconv"

	"elevsim/src/types"
)

// move advances an elevator toward its target and reports its position.
// Speed ramps up by the configured acceleration: START_UP/START_DOWN while
// below cruising speed, CONSTANT_SPEED at it, STOPPED on arrival.
func (st *stepper) move(e *types.Elevator) {
	defer st.emitMove(e)
	if e.TargetFloor == types.NoTarget || e.DoorOpen {
		return
	}

	pos := e.Position()
	target := float64(e.TargetFloor)
	before := math.Abs(target - pos)
	departing := !e.IsMoving()
	if before <= st.cfg.StoppingDistance {
		st.arrive(e)
		return
	}

	dir := types.DirUp
	if target < pos {
		dir = types.DirDown
	}
	if departing || dir != e.Direction {
		e.Direction = dir
		e.Speed = 0
	}

	dtSec := st.dt / 1000
	e.Speed = math.Min(st.cfg.MaxSpeed, e.Speed+st.cfg.Acceleration*dtSec)
	if e.Speed < st.cfg.MaxSpeed {
		e.Status = types.StartStatus(dir)
	} else {
		e.Status = types.ConstantSpeed
	}

	travelled := math.Min(e.Speed*dtSec, before)
	newPos := pos + travelled*float64(dir)
	after := math.Abs(target - newPos)
	st.emitPassing(e, pos, newPos, dir)
	if approach := st.cfg.ApproachDistance; approach > 0 && after <= approach && (before > approach || departing) {
		st.emit(types.ElevatorApproaching, e.ID, e.TargetFloor, map[string]string{
			types.MetaDirection: dir.String(),
		})
	}

	if after <= st.cfg.StoppingDistance {
		st.arrive(e)
		return
	}
	setPosition(e, newPos)
}

// emitPassing reports every floor strictly crossed between two positions,
// except the target, which is reported by arrive.
func (st *stepper) emitPassing(e *types.Elevator, from, to float64, dir types.Direction) {
	var floors []int
	switch dir {
	case types.DirUp:
		for f := int(math.Floor(from)) + 1; float64(f) <= to; f++ {
			floors = append(floors, f)
		}
	case types.DirDown:
		for f := int(math.Ceil(from)) - 1; float64(f) >= to; f-- {
			floors = append(floors, f)
		}
	}
	for _, floor := range floors {
		if floor == e.TargetFloor {
			continue
		}
		st.emit(types.PassingFloor, e.ID, floor, map[string]string{
			types.MetaDirection: dir.String(),
		})
	}
}

// arrive snaps the elevator onto its target and opens the door.
// Direction is kept so the policy can continue the sweep.
func (st *stepper) arrive(e *types.Elevator) {
	e.Floor = e.TargetFloor
	e.PosFraction = 0
	e.Speed = 0
	e.Status = types.Stopped
	e.DoorOpen = true
	e.DoorTimer = st.cfg.DoorOpenMs()
	st.emit(types.StoppedAtFloor, e.ID, e.Floor, map[string]string{
		types.MetaDirection: e.Direction.String(),
	})
	slog.Debug("Stopped at floor", "elevator", e.ID, "floor", e.Floor, "time", st.state.Time)
}

// emitMove is the per-step position report of an elevator. Its dt and step
// entries let a replay rebuild the step sequence from the log alone.
func (st *stepper) emitMove(e *types.Elevator) {
	st.emit(types.ElevatorMove, e.ID, e.Floor, map[string]string{
		types.MetaDt:          types.FormatFloat(st.dt),
		types.MetaStep:        strconv.Itoa(st.state.Steps),
		types.MetaPosFraction: types.FormatFloat(e.PosFraction),
		types.MetaStatus:      e.Status.String(),
		types.MetaDirection:   e.Direction.String(),
	})
}

func setPosition(e *types.Elevator, pos float64) {
	floor := math.Floor(pos)
	e.Floor = int(floor)
	e.PosFraction = pos - floor
	if e.PosFraction >= 1 {
		e.Floor++
		e.PosFraction = 0
	}
}
