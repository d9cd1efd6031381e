package sim

import (
	"cmp"
	"fmt"
	"slices"

	"elevsim/src/config"
	"elevsim/src/dispatcher"
	"elevsim/src/types"
)

// replayStep is the input of one recorded step.
type replayStep struct {
	index    int
	dt       float64
	hasDt    bool
	requests []types.Request
}

// Replay re-runs a recorded log from its initial state. Button presses give
// the requests of each step and ELEVATOR_MOVE events give its dt, so with the
// same policy and configuration the result equals the recorded final state.
func Replay(initial types.AppState, events []types.Event, policy dispatcher.Policy, cfg config.Config) (types.AppState, error) {
	steps, err := groupSteps(events)
	if err != nil {
		return types.AppState{}, err
	}

	state := initial
	for _, step := range steps {
		if step.index != state.Steps+1 {
			return state, fmt.Errorf("%w: log jumps from step %d to %d", ErrInvalidStep, state.Steps, step.index)
		}
		if !step.hasDt {
			return state, fmt.Errorf("%w: step %d has no recorded dt", ErrInvalidStep, step.index)
		}
		result, err := Step(state, step.dt, policy, step.requests, cfg)
		if err != nil {
			return state, fmt.Errorf("replay step %d: %w", step.index, err)
		}
		state = result.State
	}
	return state, nil
}

func groupSteps(events []types.Event) ([]*replayStep, error) {
	byIndex := map[int]*replayStep{}
	for _, ev := range events {
		if ev.Type != types.ElevatorMove && ev.Type != types.UpButtonPressed && ev.Type != types.DownButtonPressed {
			continue
		}
		index, ok := ev.MetaInt(types.MetaStep)
		if !ok {
			return nil, fmt.Errorf("%w: %v has no step index", ErrInvalidStep, ev)
		}
		step := byIndex[index]
		if step == nil {
			step = &replayStep{index: index}
			byIndex[index] = step
		}

		switch ev.Type {
		case types.ElevatorMove:
			dt, ok := ev.MetaFloat(types.MetaDt)
			if !ok {
				return nil, fmt.Errorf("%w: %v has no dt", ErrInvalidStep, ev)
			}
			step.dt, step.hasDt = dt, true
		default:
			destination, ok := ev.MetaInt(types.MetaDestination)
			if !ok {
				return nil, fmt.Errorf("%w: %v has no destination", ErrInvalidStep, ev)
			}
			step.requests = append(step.requests, types.Request{Origin: ev.Floor, Destination: destination})
		}
	}

	steps := make([]*replayStep, 0, len(byIndex))
	for _, step := range byIndex {
		steps = append(steps, step)
	}
	slices.SortFunc(steps, func(a, b *replayStep) int { return cmp.Compare(a.index, b.index) })
	return steps, nil
}
