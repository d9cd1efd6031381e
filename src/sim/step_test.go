package sim

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"elevsim/src/config"
	"elevsim/src/dispatcher"
	"elevsim/src/types"
)

func testConfig(floors, elevators int, initial ...int) config.Config {
	cfg := config.Default()
	cfg.Floors = floors
	cfg.Elevators = elevators
	cfg.InitialFloors = initial
	return cfg
}

func mustState(t *testing.T, cfg config.Config) types.AppState {
	t.Helper()
	state, err := NewState(cfg)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return state
}

func mustPolicy(t *testing.T, name string, cfg config.Config) dispatcher.Policy {
	t.Helper()
	policy, err := dispatcher.New(name, cfg)
	if err != nil {
		t.Fatalf("dispatcher.New(%q): %v", name, err)
	}
	return policy
}

type run struct {
	states []types.AppState
	events []types.Event
	faults []error
}

// simulate advances state for the given number of steps, injecting requests
// at their 1-based step index, and checks the per-step invariants on the way.
func simulate(t *testing.T, state types.AppState, policy dispatcher.Policy, cfg config.Config, steps int, requests map[int][]types.Request) run {
	t.Helper()
	var r run
	for i := 1; i <= steps; i++ {
		result, err := Step(state, cfg.StepMs(), policy, requests[i], cfg)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		checkInvariants(t, result.State, cfg)
		checkEventOrder(t, result.Events)
		state = result.State
		r.states = append(r.states, state)
		r.events = append(r.events, result.Events...)
		r.faults = append(r.faults, result.Faults...)
	}
	return r
}

func (r run) final() types.AppState {
	return r.states[len(r.states)-1]
}

func (r run) stops(elevatorID int) []int {
	var floors []int
	for _, ev := range r.events {
		if ev.Type == types.StoppedAtFloor && ev.ElevatorID == elevatorID {
			floors = append(floors, ev.Floor)
		}
	}
	return floors
}

func checkInvariants(t *testing.T, state types.AppState, cfg config.Config) {
	t.Helper()
	if err := state.Validate(); err != nil {
		t.Fatalf("step %d: %v", state.Steps, err)
	}
	if len(state.Queues) != cfg.Floors {
		t.Fatalf("step %d: %d queues, want %d", state.Steps, len(state.Queues), cfg.Floors)
	}
	for _, e := range state.Elevators {
		if e.DoorOpen && e.Status != types.Stopped {
			t.Fatalf("step %d: elevator %d door open while %v", state.Steps, e.ID, e.Status)
		}
		if e.PassengerCount > cfg.Capacity {
			t.Fatalf("step %d: elevator %d carries %d over capacity %d", state.Steps, e.ID, e.PassengerCount, cfg.Capacity)
		}
	}
}

func eventRank(eventType types.EventType) int {
	switch eventType {
	case types.UpButtonPressed, types.DownButtonPressed:
		return 0
	case types.PassengerAlight, types.PassengerBoard:
		return 2
	case types.Idle:
		return 3
	}
	return 1
}

func checkEventOrder(t *testing.T, events []types.Event) {
	t.Helper()
	rank, lastMotionID := 0, types.NoElevator
	for i, ev := range events {
		r := eventRank(ev.Type)
		if r < rank {
			t.Fatalf("event %d %v out of order", i, ev)
		}
		if r == 1 {
			if ev.ElevatorID < lastMotionID {
				t.Fatalf("motion event %d %v after elevator %d", i, ev, lastMotionID)
			}
			lastMotionID = ev.ElevatorID
		}
		if ev.TS != events[0].TS {
			t.Fatalf("event %d %v has ts %v, want %v", i, ev, ev.TS, events[0].TS)
		}
		rank = r
	}
}

func TestStepAdvancesTime(t *testing.T) {
	cfg := testConfig(6, 2)
	policy := mustPolicy(t, "look", cfg)
	state := mustState(t, cfg)

	for _, dt := range []float64{0, 16.7, 100, 1000} {
		result, err := Step(state, dt, policy, []types.Request{{Origin: 3, Destination: 1}}, cfg)
		if err != nil {
			t.Fatalf("Step(dt=%v): %v", dt, err)
		}
		if result.State.Time != state.Time+dt {
			t.Errorf("Step(dt=%v): time %v, want %v", dt, result.State.Time, state.Time+dt)
		}
		if len(result.State.Queues) != cfg.Floors {
			t.Errorf("Step(dt=%v): %d queues, want %d", dt, len(result.State.Queues), cfg.Floors)
		}
		state = result.State
	}
}

func TestStepDoesNotModifyInput(t *testing.T) {
	cfg := testConfig(5, 1)
	policy := mustPolicy(t, "look", cfg)
	first, err := Step(mustState(t, cfg), 100, policy, []types.Request{{Origin: 4, Destination: 1}}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	input := first.State
	elevator := input.Elevators[0]

	next := []types.Request{{Origin: 2, Destination: 5}}
	a, err := Step(input, 100, policy, next, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Step(input, 100, policy, next, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("two steps from the same state differ")
	}
	if input.Time != 100 || len(input.Passengers) != 1 || input.Queue(2).Waiting != 0 {
		t.Errorf("input state changed: time %v, %d passengers", input.Time, len(input.Passengers))
	}
	if !reflect.DeepEqual(input.Elevators[0], elevator) {
		t.Errorf("input elevator changed: %+v, was %+v", input.Elevators[0], elevator)
	}
}

func TestStepFatalErrors(t *testing.T) {
	cfg := testConfig(5, 1)
	policy := mustPolicy(t, "fcfs", cfg)
	state := mustState(t, cfg)
	broken := mustState(t, cfg)
	broken.Queues = broken.Queues[1:]

	tests := []struct {
		name   string
		state  types.AppState
		dt     float64
		policy dispatcher.Policy
	}{
		{"negative dt", state, -1, policy},
		{"nil policy", state, 100, nil},
		{"misaligned queues", broken, 100, policy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Step(tt.state, tt.dt, tt.policy, nil, cfg)
			if !errors.Is(err, ErrInvalidStep) {
				t.Errorf("Step() error = %v, want %v", err, ErrInvalidStep)
			}
		})
	}
}

func TestStepRejectsInvalidRequests(t *testing.T) {
	cfg := testConfig(10, 1)
	policy := mustPolicy(t, "sstf", cfg)
	requests := []types.Request{
		{Origin: 0, Destination: 3},
		{Origin: 3, Destination: 11},
		{Origin: 4, Destination: 4},
		{Origin: 2, Destination: 1},
	}

	result, err := Step(mustState(t, cfg), 100, policy, requests, cfg)
	if err != nil {
		t.Fatal(err)
	}
	invalid := 0
	for _, fault := range result.Faults {
		if errors.Is(fault, ErrInvalidRequest) {
			invalid++
		}
	}
	if invalid != 3 {
		t.Errorf("got %d invalid request faults, want 3: %v", invalid, result.Faults)
	}
	if len(result.State.Passengers) != 1 {
		t.Fatalf("registered %d passengers, want 1", len(result.State.Passengers))
	}
	p := result.State.Passengers[0]
	if p.Origin != 2 || p.Direction != types.DirDown || p.Status != types.Waiting {
		t.Errorf("passenger = %+v", p)
	}
	if ev := result.Events[0]; ev.Type != types.DownButtonPressed || ev.Floor != 2 || ev.Meta[types.MetaDestination] != "1" {
		t.Errorf("first event = %v %v", ev, ev.Meta)
	}
	if got := result.State.Queue(2).Waiting; got != 1 {
		t.Errorf("floor 2 waiting = %d, want 1", got)
	}
}

type fixedPolicy struct{ floor int }

func (fixedPolicy) Name() string { return "fixed" }

func (p fixedPolicy) NextTarget(types.Elevator, types.AppState) (int, bool) {
	return p.floor, true
}

func TestStepPolicyViolation(t *testing.T) {
	cfg := testConfig(5, 1)
	result, err := Step(mustState(t, cfg), 100, fixedPolicy{floor: 9}, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Faults) != 1 || !errors.Is(result.Faults[0], ErrPolicyViolation) {
		t.Fatalf("faults = %v, want one policy violation", result.Faults)
	}
	if e := result.State.Elevators[0]; e.TargetFloor != types.NoTarget || e.IsMoving() {
		t.Errorf("elevator = %+v, want it to keep no target", e)
	}
}

// A single elevator on five floors answers a call at floor 4.
func TestSingleElevatorServesCall(t *testing.T) {
	cfg := testConfig(5, 1)
	policy := mustPolicy(t, "look", cfg)
	requests := map[int][]types.Request{1: {{Origin: 4, Destination: 5}}}
	r := simulate(t, mustState(t, cfg), policy, cfg, 50, requests)

	if got := r.states[0].Elevators[0].TargetFloor; got != 4 {
		t.Fatalf("target after first step = %d, want 4", got)
	}

	var statuses []types.ElevatorStatus
	stoppedAt := -1
	for i, state := range r.states {
		e := state.Elevators[0]
		if len(statuses) == 0 || statuses[len(statuses)-1] != e.Status {
			statuses = append(statuses, e.Status)
		}
		if e.Status == types.Stopped && e.DoorOpen && stoppedAt < 0 {
			stoppedAt = i
		}
	}
	want := []types.ElevatorStatus{types.StartUp, types.ConstantSpeed, types.Stopped}
	if len(statuses) < len(want) || !reflect.DeepEqual(statuses[:len(want)], want) {
		t.Errorf("status transitions = %v, want prefix %v", statuses, want)
	}
	if stoppedAt < 0 {
		t.Fatalf("elevator never stopped")
	}

	arrived := r.states[stoppedAt]
	if arrived.Elevators[0].Floor != 4 {
		t.Errorf("stopped at floor %d, want 4", arrived.Elevators[0].Floor)
	}
	if q := arrived.Queue(4); q.Waiting != 0 || q.Served != 1 {
		t.Errorf("floor 4 queue = %+v, want 0 waiting and 1 served", *q)
	}
	if stops := r.stops(0); len(stops) == 0 || stops[0] != 4 {
		t.Errorf("STOPPED_AT_FLOOR floors = %v, want 4 first", stops)
	}

	var passed []int
	for _, ev := range r.events {
		if ev.Type == types.PassingFloor {
			passed = append(passed, ev.Floor)
		}
	}
	if !reflect.DeepEqual(passed, []int{2, 3}) {
		t.Errorf("passed floors = %v, want [2 3]", passed)
	}
}

func TestApproachingPrecedesStop(t *testing.T) {
	cfg := testConfig(5, 1)
	policy := mustPolicy(t, "look", cfg)
	requests := map[int][]types.Request{1: {{Origin: 4, Destination: 5}}}
	r := simulate(t, mustState(t, cfg), policy, cfg, 80, requests)

	type mark struct {
		eventType types.EventType
		floor     int
	}
	var marks []mark
	var approachTS, stopTS float64
	for _, ev := range r.events {
		if ev.Type != types.ElevatorApproaching && ev.Type != types.StoppedAtFloor {
			continue
		}
		marks = append(marks, mark{ev.Type, ev.Floor})
		switch {
		case ev.Type == types.ElevatorApproaching && ev.Floor == 4:
			approachTS = ev.TS
		case ev.Type == types.StoppedAtFloor && ev.Floor == 4 && stopTS == 0:
			stopTS = ev.TS
		}
	}

	want := []mark{
		{types.ElevatorApproaching, 4},
		{types.StoppedAtFloor, 4},
		{types.ElevatorApproaching, 5},
		{types.StoppedAtFloor, 5},
	}
	if !reflect.DeepEqual(marks, want) {
		t.Fatalf("approach and stop events = %v, want %v", marks, want)
	}
	if !(approachTS > 0 && approachTS < stopTS) {
		t.Errorf("approaching at %v, stopped at %v", approachTS, stopTS)
	}
}

// LOOK keeps going up through 3 and 7 before it turns around.
func TestLookServesAheadBeforeReversing(t *testing.T) {
	cfg := testConfig(10, 1)
	policy := mustPolicy(t, "look", cfg)
	requests := map[int][]types.Request{1: {
		{Origin: 3, Destination: 5},
		{Origin: 7, Destination: 2},
	}}
	r := simulate(t, mustState(t, cfg), policy, cfg, 300, requests)

	stops := r.stops(0)
	want := []int{3, 5, 7, 2}
	if len(stops) < len(want) || !reflect.DeepEqual(stops[:len(want)], want) {
		t.Fatalf("stops = %v, want prefix %v", stops, want)
	}

	for _, ev := range r.events {
		if ev.Type == types.StoppedAtFloor && ev.Floor == 7 {
			break
		}
		if ev.Type == types.ElevatorMove && ev.Meta[types.MetaDirection] == types.DirDown.String() {
			t.Fatalf("elevator reversed before serving floor 7: %v", ev)
		}
	}
	for _, p := range r.final().Passengers {
		if p.Status != types.Completed {
			t.Errorf("passenger %d is %v, want COMPLETED", p.ID, p.Status)
		}
	}
}

func TestEveryPolicyCompletesTrips(t *testing.T) {
	requests := map[int][]types.Request{
		1:  {{Origin: 3, Destination: 8}, {Origin: 6, Destination: 2}},
		15: {{Origin: 8, Destination: 1}},
		40: {{Origin: 1, Destination: 5}, {Origin: 5, Destination: 4}},
	}
	for _, name := range []string{"scan", "load_balance", "adaptive"} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(8, 2)
			cfg.Spread = true
			r := simulate(t, mustState(t, cfg), mustPolicy(t, name, cfg), cfg, 1200, requests)
			final := r.final()
			if len(final.Passengers) != 5 {
				t.Fatalf("%d passengers registered, want 5", len(final.Passengers))
			}
			for _, p := range final.Passengers {
				if p.Status != types.Completed {
					t.Errorf("passenger %d %d->%d is %v, want COMPLETED", p.ID, p.Origin, p.Destination, p.Status)
				}
			}
		})
	}
}

// SSTF pairs by distance, not by elevator id.
func TestSSTFAssignsClosestElevator(t *testing.T) {
	requests := []types.Request{{Origin: 2, Destination: 5}, {Origin: 9, Destination: 3}}
	tests := []struct {
		name    string
		initial []int
		want    []int
	}{
		{"low elevator first", []int{1, 10}, []int{2, 9}},
		{"high elevator first", []int{10, 1}, []int{9, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(10, 2, tt.initial...)
			result, err := Step(mustState(t, cfg), 100, mustPolicy(t, "sstf", cfg), requests, cfg)
			if err != nil {
				t.Fatal(err)
			}
			for i, e := range result.State.Elevators {
				if e.TargetFloor != tt.want[i] {
					t.Errorf("elevator %d target = %d, want %d", e.ID, e.TargetFloor, tt.want[i])
				}
			}
		})
	}
}

func TestBoardingRespectsCapacity(t *testing.T) {
	cfg := testConfig(5, 1)
	cfg.Capacity = 2
	policy := mustPolicy(t, "look", cfg)
	var crowd []types.Request
	for range 4 {
		crowd = append(crowd, types.Request{Origin: 1, Destination: 3})
	}

	first, err := Step(mustState(t, cfg), 100, policy, crowd, cfg)
	if err != nil {
		t.Fatal(err)
	}
	e := first.State.Elevators[0]
	if !e.DoorOpen || e.PassengerCount != 2 {
		t.Fatalf("elevator = %+v, want door open with 2 on board", e)
	}
	if got := first.State.Queue(1).Waiting; got != 2 {
		t.Errorf("floor 1 waiting = %d, want 2", got)
	}
	exceeded := false
	for _, fault := range first.Faults {
		exceeded = exceeded || errors.Is(fault, ErrCapacityExceeded)
	}
	if !exceeded {
		t.Errorf("faults = %v, want capacity exceeded", first.Faults)
	}
	if got := first.State.Passenger(0).Status; got != types.InElevator {
		t.Errorf("passenger 0 is %v, want IN_ELEVATOR", got)
	}
	if got := first.State.Passenger(2).Status; got != types.Waiting {
		t.Errorf("passenger 2 is %v, want WAITING", got)
	}

	// The rest are carried on a later trip.
	r := simulate(t, first.State, policy, cfg, 400, nil)
	for _, p := range r.final().Passengers {
		if p.Status != types.Completed {
			t.Errorf("passenger %d is %v, want COMPLETED", p.ID, p.Status)
		}
	}
}

func TestAlightBeforeBoard(t *testing.T) {
	cfg := testConfig(5, 1)
	policy := mustPolicy(t, "fcfs", cfg)
	r := simulate(t, mustState(t, cfg), policy, cfg, 60, map[int][]types.Request{
		1: {{Origin: 1, Destination: 3}},
		2: {{Origin: 3, Destination: 1}},
	})

	var exchange []types.EventType
	for _, ev := range r.events {
		if ev.Floor == 3 && (ev.Type == types.PassengerAlight || ev.Type == types.PassengerBoard) {
			exchange = append(exchange, ev.Type)
		}
	}
	want := []types.EventType{types.PassengerAlight, types.PassengerBoard}
	if !reflect.DeepEqual(exchange, want) {
		t.Errorf("exchange at floor 3 = %v, want %v", exchange, want)
	}
}

func TestIdleEmittedOnce(t *testing.T) {
	cfg := testConfig(3, 1)
	policy := mustPolicy(t, "sstf", cfg)
	r := simulate(t, mustState(t, cfg), policy, cfg, 120, map[int][]types.Request{
		1: {{Origin: 2, Destination: 3}},
	})

	idle := 0
	for _, ev := range r.events {
		if ev.Type == types.Idle {
			idle++
		}
	}
	if idle != 1 {
		t.Errorf("got %d IDLE events, want 1", idle)
	}
	if e := r.final().Elevators[0]; e.Direction != types.DirStopped || e.Floor != 3 {
		t.Errorf("final elevator = %+v, want idle at floor 3", e)
	}
}

func TestPatienceCancelsWaiting(t *testing.T) {
	cfg := testConfig(10, 1)
	cfg.Patience = 500 * time.Millisecond
	policy := mustPolicy(t, "look", cfg)
	r := simulate(t, mustState(t, cfg), policy, cfg, 10, map[int][]types.Request{
		1: {{Origin: 10, Destination: 1}},
	})

	final := r.final()
	p := final.Passenger(0)
	if p.Status != types.Cancelled {
		t.Fatalf("passenger is %v, want CANCELLED", p.Status)
	}
	if p.CompletedAt != 700 {
		t.Errorf("cancelled at %v, want 700", p.CompletedAt)
	}
	if got := final.Queue(10).Waiting; got != 0 {
		t.Errorf("floor 10 waiting = %d, want 0", got)
	}
}

func TestSummarize(t *testing.T) {
	cfg := testConfig(5, 1)
	policy := mustPolicy(t, "look", cfg)
	r := simulate(t, mustState(t, cfg), policy, cfg, 200, map[int][]types.Request{
		1: {{Origin: 1, Destination: 3}, {Origin: 4, Destination: 2}},
	})

	summary := Summarize(r.final())
	if summary.Completed != 2 || summary.Waiting != 0 || summary.InElevator != 0 {
		t.Errorf("summary = %+v, want 2 completed", summary)
	}
	if summary.Steps != 200 || summary.MaxWaitMs <= 0 || summary.AvgWaitMs > summary.MaxWaitMs {
		t.Errorf("summary = %+v", summary)
	}
}
