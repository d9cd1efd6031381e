package types

import "fmt"

// Direction doubles as a floor delta: floor + int(dir) is the next floor.
type Direction int

const (
	DirUp      Direction = 1
	DirDown    Direction = -1
	DirStopped Direction = 0
)

type PassengerStatus int

const (
	Waiting PassengerStatus = iota
	InElevator
	Completed
	Cancelled
)

// ElevatorStatus models the motion phase, independent of Direction.
type ElevatorStatus int

const (
	Stopped ElevatorStatus = iota
	StartUp
	StartDown
	ConstantSpeed
)

type EventType int

const (
	UpButtonPressed EventType = iota
	DownButtonPressed
	PassingFloor
	StoppedAtFloor
	ElevatorApproaching
	Idle
	PassengerBoard
	PassengerAlight
	ElevatorMove
)

var directionNames = map[Direction]string{
	DirUp:      "UP",
	DirDown:    "DOWN",
	DirStopped: "STOPPED",
}

var passengerStatusNames = map[PassengerStatus]string{
	Waiting:    "WAITING",
	InElevator: "IN_ELEVATOR",
	Completed:  "COMPLETED",
	Cancelled:  "CANCELLED",
}

var elevatorStatusNames = map[ElevatorStatus]string{
	Stopped:       "STOPPED",
	StartUp:       "START_UP",
	StartDown:     "START_DOWN",
	ConstantSpeed: "CONSTANT_SPEED",
}

var eventTypeNames = map[EventType]string{
	UpButtonPressed:     "UP_BUTTON_PRESSED",
	DownButtonPressed:   "DOWN_BUTTON_PRESSED",
	PassingFloor:        "PASSING_FLOOR",
	StoppedAtFloor:      "STOPPED_AT_FLOOR",
	ElevatorApproaching: "ELEVATOR_APPROACHING",
	Idle:                "IDLE",
	PassengerBoard:      "PASSENGER_BOARD",
	PassengerAlight:     "PASSENGER_ALIGHT",
	ElevatorMove:        "ELEVATOR_MOVE",
}

func (d Direction) String() string { return nameOf(directionNames, d) }
func (s PassengerStatus) String() string { return nameOf(passengerStatusNames, s) }
func (s ElevatorStatus) String() string { return nameOf(elevatorStatusNames, s) }
func (t EventType) String() string { return nameOf(eventTypeNames, t) }

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (s PassengerStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s ElevatorStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (d *Direction) UnmarshalText(text []byte) error {
	return valueOf(directionNames, string(text), d)
}

func (s *PassengerStatus) UnmarshalText(text []byte) error {
	return valueOf(passengerStatusNames, string(text), s)
}

func (s *ElevatorStatus) UnmarshalText(text []byte) error {
	return valueOf(elevatorStatusNames, string(text), s)
}

func (t *EventType) UnmarshalText(text []byte) error {
	return valueOf(eventTypeNames, string(text), t)
}

// DirectionBetween returns the direction of travel from one floor to another.
func DirectionBetween(from, to int) Direction {
	if from < to {
		return DirUp
	}
	if from > to {
		return DirDown
	}
	return DirStopped
}

// StartStatus is the acceleration phase for a departure in dir.
func StartStatus(dir Direction) ElevatorStatus {
	if dir == DirDown {
		return StartDown
	}
	return StartUp
}

func nameOf[T ~int](names map[T]string, value T) string {
	if name, ok := names[value]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(value))
}

func valueOf[T ~int](names map[T]string, text string, out *T) error {
	for value, name := range names {
		if name == text {
			*out = value
			return nil
		}
	}
	return fmt.Errorf("unknown name %q", text)
}
