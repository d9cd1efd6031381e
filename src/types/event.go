package types

import (
	"fmt"
	"strconv"
)

// Meta keys carried by events.
const (
	MetaPassenger   = "passenger"
	MetaDestination = "destination"
	MetaDirection   = "direction"
	MetaDt          = "dt"
	MetaPosFraction = "posFraction"
	MetaStatus      = "status"
	MetaStep        = "step"
)

// Event is a historical fact. It is never mutated after emission.
type Event struct {
	Type       EventType         `json:"type"`
	ElevatorID int               `json:"elevatorId"`
	Floor      int               `json:"floor,omitempty"`
	TS         float64           `json:"ts"`
	Meta       map[string]string `json:"meta,omitempty"`
}

func (ev Event) String() string {
	if ev.ElevatorID == NoElevator {
		return fmt.Sprintf("%v(floor=%d ts=%v)", ev.Type, ev.Floor, ev.TS)
	}
	return fmt.Sprintf("%v(elevator=%d floor=%d ts=%v)", ev.Type, ev.ElevatorID, ev.Floor, ev.TS)
}

// MetaInt reads an integer meta value.
func (ev Event) MetaInt(key string) (int, bool) {
	value, err := strconv.Atoi(ev.Meta[key])
	return value, err == nil
}

// MetaFloat reads a float meta value written with FormatFloat.
func (ev Event) MetaFloat(key string) (float64, bool) {
	value, err := strconv.ParseFloat(ev.Meta[key], 64)
	return value, err == nil
}

// FormatFloat encodes floats so that MetaFloat reads back the exact value.
func FormatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// ButtonEventType maps a call direction to its button event.
func ButtonEventType(dir Direction) EventType {
	if dir == DirDown {
		return DownButtonPressed
	}
	return UpButtonPressed
}
