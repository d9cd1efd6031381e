package sim

import (
	"fmt"

	"elevsim/src/config"
	"elevsim/src/types"
)

// NewState builds the initial state of a run: every elevator idle at its
// configured floor, every queue empty, time zero.
func NewState(cfg config.Config) (types.AppState, error) {
	if err := cfg.Validate(); err != nil {
		return types.AppState{}, err
	}
	elevators := make([]types.Elevator, 0, cfg.Elevators)
	for id := range cfg.Elevators {
		e, err := types.NewElevator(id, cfg.InitialFloor(id), cfg.Floors, cfg.Capacity)
		if err != nil {
			return types.AppState{}, fmt.Errorf("elevator %d: %w", id, err)
		}
		elevators = append(elevators, e)
	}
	return types.NewAppState(cfg.Floors, elevators)
}

// Summary is an aggregate view of a run for logs and status lines.
type Summary struct {
	Time       float64
	Steps      int
	Waiting    int
	InElevator int
	Completed  int
	Cancelled  int
	AvgWaitMs  float64
	MaxWaitMs  float64
}

func Summarize(state types.AppState) Summary {
	summary := Summary{Time: state.Time, Steps: state.Steps}
	for _, p := range state.Passengers {
		switch p.Status {
		case types.Waiting:
			summary.Waiting++
		case types.InElevator:
			summary.InElevator++
		case types.Completed:
			summary.Completed++
		case types.Cancelled:
			summary.Cancelled++
		}
	}

	var served int
	var totalWait float64
	for _, queue := range state.Queues {
		served += queue.Served
		totalWait += queue.TotalWaitMs
		summary.MaxWaitMs = max(summary.MaxWaitMs, queue.MaxWaitMs)
	}
	if served > 0 {
		summary.AvgWaitMs = totalWait / float64(served)
	}
	return summary
}
