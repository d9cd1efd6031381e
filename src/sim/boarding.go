package sim

import (
	"fmt"
	"log/slog"
	"strconv"

	"elevsim/src/types"
)

// exchange lets passengers off, then on, while the door is open.
// Waiting passengers board in arrival order until the elevator is full;
// the rest stay queued and the overflow is reported as a fault.
func (st *stepper) exchange(e *types.Elevator) {
	if !e.DoorOpen {
		return
	}

	kept := make([]int, 0, len(e.Passengers))
	for _, id := range e.Passengers {
		p := st.state.Passenger(id)
		if p == nil || p.Destination != e.Floor {
			kept = append(kept, id)
			continue
		}
		p.Status = types.Completed
		p.CompletedAt = st.state.Time
		st.emit(types.PassengerAlight, e.ID, e.Floor, map[string]string{
			types.MetaPassenger: strconv.Itoa(id),
		})
	}
	e.Passengers = kept
	e.PassengerCount = len(kept)

	queue := st.state.Queue(e.Floor)
	excess := 0
	for i := range st.state.Passengers {
		p := &st.state.Passengers[i]
		if p.Status != types.Waiting || p.Origin != e.Floor {
			continue
		}
		if e.IsFull() {
			excess++
			continue
		}
		p.Status = types.InElevator
		p.BoardedAt = st.state.Time
		p.ElevatorID = e.ID
		e.Passengers = append(e.Passengers, p.ID)
		e.PassengerCount++

		wait := p.BoardedAt - p.ArrivedAt
		queue.Waiting--
		queue.Served++
		queue.TotalWaitMs += wait
		queue.MaxWaitMs = max(queue.MaxWaitMs, wait)

		st.emit(types.PassengerBoard, e.ID, e.Floor, map[string]string{
			types.MetaPassenger:   strconv.Itoa(p.ID),
			types.MetaDestination: strconv.Itoa(p.Destination),
		})
		slog.Debug("Passenger boarded", "passenger", p.ID, "elevator", e.ID, "floor", e.Floor)
	}

	if excess > 0 {
		st.fault(fmt.Errorf("%w: elevator %d at floor %d left %d waiting", ErrCapacityExceeded, e.ID, e.Floor, excess))
	}
}

// detectIdle marks an elevator with nothing to do as stopped and reports the
// transition once.
func (st *stepper) detectIdle(e *types.Elevator) {
	if !e.IsIdle() || e.IsMoving() || e.Direction == types.DirStopped {
		return
	}
	e.Direction = types.DirStopped
	st.emit(types.Idle, e.ID, e.Floor, nil)
	slog.Debug("Elevator idle", "elevator", e.ID, "floor", e.Floor)
}
