package types

import (
	"errors"
	"fmt"
)

const (
	NoTarget   = 0  // Elevator.TargetFloor when no target is assigned
	NoElevator = -1 // Event.ElevatorID and Passenger.ElevatorID when not bound to an elevator
)

var ErrInvalidState = errors.New("invalid state")

// Elevator is mutated only by the simulation step.
type Elevator struct {
	ID             int            `json:"id"`
	Floor          int            `json:"floor"`
	PosFraction    float64        `json:"posFraction"` // offset upward from Floor, rendering only
	TargetFloor    int            `json:"targetFloor,omitempty"`
	Direction      Direction      `json:"direction"`
	Status         ElevatorStatus `json:"status"`
	PassengerCount int            `json:"passengerCount"`
	Capacity       int            `json:"capacity"`
	Speed          float64        `json:"speed"` // floors per second
	DoorOpen       bool           `json:"doorOpen"`
	DoorTimer      float64        `json:"doorTimer,omitempty"` // remaining dwell in ms
	Passengers     []int          `json:"passengers"`          // on board, in boarding order
}

type FloorQueue struct {
	Floor       int     `json:"floor"`
	Waiting     int     `json:"waiting"`
	Served      int     `json:"served"`
	TotalWaitMs float64 `json:"totalWaitMs"`
	MaxWaitMs   float64 `json:"maxWaitMs"`
}

type Passenger struct {
	ID          int             `json:"id"`
	Origin      int             `json:"origin"`
	Destination int             `json:"destination"`
	Direction   Direction       `json:"direction"`
	Status      PassengerStatus `json:"status"`
	ArrivedAt   float64         `json:"arrivedAt"`
	BoardedAt   float64         `json:"boardedAt,omitempty"`
	CompletedAt float64         `json:"completedAt,omitempty"`
	ElevatorID  int             `json:"elevatorId"`
}

// Request is a passenger arrival. Destination is known at creation.
type Request struct {
	Origin      int `json:"origin" yaml:"origin"`
	Destination int `json:"destination" yaml:"destination"`
}

// AppState is a full snapshot exchanged between the simulation and its consumers.
type AppState struct {
	Time            float64      `json:"time"` // ms
	Steps           int          `json:"steps"`
	Elevators       []Elevator   `json:"elevators"`
	Queues          []FloorQueue `json:"queues"`
	Passengers      []Passenger  `json:"passengers"`
	Events          []Event      `json:"events,omitempty"`
	NextPassengerID int          `json:"nextPassengerId"`
}

// NewElevator returns an idle elevator with the door closed.
func NewElevator(id, floor, numFloors, capacity int) (Elevator, error) {
	e := Elevator{
		ID:         id,
		Floor:      floor,
		Direction:  DirStopped,
		Status:     Stopped,
		Capacity:   capacity,
		Passengers: []int{},
	}
	return e, e.Validate(numFloors)
}

func NewFloorQueue(floor, numFloors int) (FloorQueue, error) {
	if floor < 1 || floor > numFloors {
		return FloorQueue{}, fmt.Errorf("%w: queue floor %d outside [1,%d]", ErrInvalidState, floor, numFloors)
	}
	return FloorQueue{Floor: floor}, nil
}

// NewAppState builds the state at time zero with one queue per floor.
func NewAppState(numFloors int, elevators []Elevator) (AppState, error) {
	state := AppState{
		Elevators:  elevators,
		Queues:     make([]FloorQueue, 0, numFloors),
		Passengers: []Passenger{},
	}
	for floor := 1; floor <= numFloors; floor++ {
		queue, err := NewFloorQueue(floor, numFloors)
		if err != nil {
			return AppState{}, err
		}
		state.Queues = append(state.Queues, queue)
	}
	return state, state.Validate()
}

func (e Elevator) Validate(numFloors int) error {
	switch {
	case e.Floor < 1 || e.Floor > numFloors:
		return fmt.Errorf("%w: elevator %d floor %d outside [1,%d]", ErrInvalidState, e.ID, e.Floor, numFloors)
	case e.TargetFloor != NoTarget && (e.TargetFloor < 1 || e.TargetFloor > numFloors):
		return fmt.Errorf("%w: elevator %d target %d outside [1,%d]", ErrInvalidState, e.ID, e.TargetFloor, numFloors)
	case e.PassengerCount < 0 || e.PassengerCount > e.Capacity:
		return fmt.Errorf("%w: elevator %d carries %d of %d", ErrInvalidState, e.ID, e.PassengerCount, e.Capacity)
	case e.PassengerCount != len(e.Passengers):
		return fmt.Errorf("%w: elevator %d count %d does not match %d passengers", ErrInvalidState, e.ID, e.PassengerCount, len(e.Passengers))
	case e.PosFraction < 0 || e.PosFraction >= 1:
		return fmt.Errorf("%w: elevator %d position fraction %v outside [0,1)", ErrInvalidState, e.ID, e.PosFraction)
	case e.DoorOpen && e.Status != Stopped:
		return fmt.Errorf("%w: elevator %d door open while %v", ErrInvalidState, e.ID, e.Status)
	}
	return nil
}

// Validate checks the snapshot invariants: queue alignment, elevator ordering and ranges.
func (s AppState) Validate() error {
	numFloors := s.NumFloors()
	if numFloors == 0 {
		return fmt.Errorf("%w: no floors", ErrInvalidState)
	}
	for i, queue := range s.Queues {
		if queue.Floor != i+1 {
			return fmt.Errorf("%w: queue %d holds floor %d", ErrInvalidState, i, queue.Floor)
		}
		if queue.Waiting < 0 {
			return fmt.Errorf("%w: floor %d has %d waiting", ErrInvalidState, queue.Floor, queue.Waiting)
		}
	}
	for i, e := range s.Elevators {
		if i > 0 && s.Elevators[i-1].ID >= e.ID {
			return fmt.Errorf("%w: elevators not in ascending id order", ErrInvalidState)
		}
		if err := e.Validate(numFloors); err != nil {
			return err
		}
	}
	return nil
}

func (s AppState) NumFloors() int {
	return len(s.Queues)
}

// Queue returns the queue of a floor, or nil when the floor is out of range.
func (s *AppState) Queue(floor int) *FloorQueue {
	if floor < 1 || floor > len(s.Queues) {
		return nil
	}
	return &s.Queues[floor-1]
}

// Passenger returns the passenger record with the given id, or nil.
func (s *AppState) Passenger(id int) *Passenger {
	for i := range s.Passengers {
		if s.Passengers[i].ID == id {
			return &s.Passengers[i]
		}
	}
	return nil
}

// Elevator returns the elevator with the given id, or nil.
func (s *AppState) Elevator(id int) *Elevator {
	for i := range s.Elevators {
		if s.Elevators[i].ID == id {
			return &s.Elevators[i]
		}
	}
	return nil
}

// Position is the continuous floor position used for motion.
func (e Elevator) Position() float64 {
	return float64(e.Floor) + e.PosFraction
}

// IsIdle reports an elevator with nothing to do.
func (e Elevator) IsIdle() bool {
	return e.TargetFloor == NoTarget && e.PassengerCount == 0 && !e.DoorOpen
}

func (e Elevator) IsFull() bool {
	return e.PassengerCount >= e.Capacity
}

func (e Elevator) IsMoving() bool {
	return e.Status != Stopped
}
