// Package sim advances the elevator system by discrete time increments.
package sim

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tiendc/go-deepcopy"

	"elevsim/src/config"
	"elevsim/src/dispatcher"
	"elevsim/src/types"
)

// Result is the outcome of one step. Faults are recoverable conditions the
// step handled locally; they never abort the run.
type Result struct {
	State  types.AppState
	Events []types.Event
	Faults []error
}

// stepper carries the working copy through the phases of one step.
type stepper struct {
	state  *types.AppState
	cfg    config.Config
	policy dispatcher.Policy
	dt     float64
	events []types.Event
	faults []error
}

// Step advances state by dt milliseconds. The input state is not modified.
// Events are emitted in this order:
//  1. button presses for the new requests
//  2. motion events per elevator, ascending id
//  3. alighting then boarding per elevator, ascending id
//  4. idle transitions
func Step(state types.AppState, dt float64, policy dispatcher.Policy, requests []types.Request, cfg config.Config) (Result, error) {
	if !(dt >= 0) {
		return Result{}, fmt.Errorf("%w: dt must not be negative, got %v", ErrInvalidStep, dt)
	}
	if policy == nil {
		return Result{}, fmt.Errorf("%w: no scheduling policy", ErrInvalidStep)
	}
	if err := state.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidStep, err)
	}

	next := new(types.AppState)
	if err := deepcopy.Copy(next, &state); err != nil {
		return Result{}, fmt.Errorf("%w: copy state: %w", ErrInvalidStep, err)
	}
	next.Time = state.Time + dt
	next.Steps = state.Steps + 1
	next.Events = nil

	st := &stepper{state: next, cfg: cfg, policy: policy, dt: dt}
	st.registerRequests(requests)
	st.cancelExpired()
	for i := range next.Elevators {
		st.dispatch(&next.Elevators[i])
		st.move(&next.Elevators[i])
	}
	for i := range next.Elevators {
		st.exchange(&next.Elevators[i])
	}
	for i := range next.Elevators {
		st.detectIdle(&next.Elevators[i])
	}

	next.Events = st.events
	return Result{State: *next, Events: st.events, Faults: st.faults}, nil
}

func (st *stepper) emit(eventType types.EventType, elevatorID, floor int, meta map[string]string) {
	st.events = append(st.events, types.Event{
		Type:       eventType,
		ElevatorID: elevatorID,
		Floor:      floor,
		TS:         st.state.Time,
		Meta:       meta,
	})
}

func (st *stepper) fault(err error) {
	slog.Warn("Step fault", "time", st.state.Time, "error", err)
	st.faults = append(st.faults, err)
}

// registerRequests queues new passengers and presses their hall buttons.
func (st *stepper) registerRequests(requests []types.Request) {
	numFloors := st.state.NumFloors()
	for _, req := range requests {
		switch {
		case req.Origin < 1 || req.Origin > numFloors:
			st.fault(fmt.Errorf("%w: origin %d outside [1,%d]", ErrInvalidRequest, req.Origin, numFloors))
			continue
		case req.Destination < 1 || req.Destination > numFloors:
			st.fault(fmt.Errorf("%w: destination %d outside [1,%d]", ErrInvalidRequest, req.Destination, numFloors))
			continue
		case req.Origin == req.Destination:
			st.fault(fmt.Errorf("%w: origin and destination are both %d", ErrInvalidRequest, req.Origin))
			continue
		}

		passenger := types.Passenger{
			ID:          st.state.NextPassengerID,
			Origin:      req.Origin,
			Destination: req.Destination,
			Direction:   types.DirectionBetween(req.Origin, req.Destination),
			Status:      types.Waiting,
			ArrivedAt:   st.state.Time,
			ElevatorID:  types.NoElevator,
		}
		st.state.NextPassengerID++
		st.state.Passengers = append(st.state.Passengers, passenger)
		st.state.Queue(req.Origin).Waiting++

		st.emit(types.ButtonEventType(passenger.Direction), types.NoElevator, req.Origin, map[string]string{
			types.MetaPassenger:   strconv.Itoa(passenger.ID),
			types.MetaDestination: strconv.Itoa(passenger.Destination),
			types.MetaStep:        strconv.Itoa(st.state.Steps),
		})
		slog.Debug("Passenger registered", "passenger", passenger.ID, "origin", req.Origin, "destination", req.Destination)
	}
}

// cancelExpired withdraws waiting passengers who ran out of patience.
func (st *stepper) cancelExpired() {
	patience := st.cfg.PatienceMs()
	if patience <= 0 {
		return
	}
	for i := range st.state.Passengers {
		p := &st.state.Passengers[i]
		if p.Status != types.Waiting || st.state.Time-p.ArrivedAt <= patience {
			continue
		}
		p.Status = types.Cancelled
		p.CompletedAt = st.state.Time
		st.state.Queue(p.Origin).Waiting--
		slog.Info("Passenger gave up waiting", "passenger", p.ID, "floor", p.Origin)
	}
}

// dispatch runs the door dwell and asks the policy for a target.
func (st *stepper) dispatch(e *types.Elevator) {
	if e.DoorOpen {
		e.DoorTimer -= st.dt
		if e.DoorTimer > 0 {
			return
		}
		e.DoorOpen = false
		e.DoorTimer = 0
		e.TargetFloor = types.NoTarget
		slog.Debug("Door closed", "elevator", e.ID, "floor", e.Floor)
	}

	target, ok := st.policy.NextTarget(*e, *st.state)
	if !ok {
		return
	}
	if target < 1 || target > st.state.NumFloors() {
		st.fault(fmt.Errorf("%w: %s returned floor %d for elevator %d", ErrPolicyViolation, st.policy.Name(), target, e.ID))
		return
	}

	switch {
	case e.TargetFloor == types.NoTarget, !e.IsMoving():
		e.TargetFloor = target
	case target != e.TargetFloor && st.interceptable(*e, target):
		slog.Debug("Target intercepted", "elevator", e.ID, "from", e.TargetFloor, "to", target)
		e.TargetFloor = target
	}
}

// interceptable reports a floor a moving elevator can still stop at on its
// way to the current target, without reversing.
func (st *stepper) interceptable(e types.Elevator, floor int) bool {
	pos, target := e.Position(), float64(e.TargetFloor)
	f := float64(floor)
	switch e.Direction {
	case types.DirUp:
		return f > pos+st.cfg.StoppingDistance && f < target
	case types.DirDown:
		return f < pos-st.cfg.StoppingDistance && f > target
	}
	return false
}
