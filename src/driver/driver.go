// Package driver runs a simulation in real time. One goroutine owns the run
// and every other goroutine reaches it through a command channel.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"

	"elevsim/src/config"
	"elevsim/src/dataset"
	"elevsim/src/dispatcher"
	"elevsim/src/eventlog"
	"elevsim/src/sim"
	"elevsim/src/timer"
	"elevsim/src/types"
)

var (
	ErrNotStarted = errors.New("run not started")
	ErrStopped    = errors.New("run stopped")
	ErrStarted    = errors.New("run already started")
)

const subscriberBuffer = 16

// command runs inside the owner goroutine.
type command struct {
	Exec func(st *run)
}

// run is the state owned by the runner goroutine.
type run struct {
	ctx     context.Context
	state   types.AppState
	pending []types.Request
	speed   float64
	paused  bool
	subs    []chan types.Frame
}

type Runner struct {
	cfg      config.Config
	policy   dispatcher.Policy
	schedule dataset.Schedule
	log      *eventlog.Log
	runID    string
	initial  types.AppState

	cmds   chan command
	tick   chan time.Time
	action chan timer.TimerAction
	done   chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	final  types.AppState
}

// New prepares a run. A nil schedule means requests only come from Submit.
func New(cfg config.Config, policy dispatcher.Policy, schedule dataset.Schedule) (*Runner, error) {
	if policy == nil {
		return nil, fmt.Errorf("%w: no scheduling policy", config.ErrInvalidConfig)
	}
	state, err := sim.NewState(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:      cfg,
		policy:   policy,
		schedule: schedule,
		log:      eventlog.New(),
		runID:    uuid.New().String(),
		initial:  state,
		cmds:     make(chan command),
		tick:     make(chan time.Time, 1),
		action:   make(chan timer.TimerAction, 1),
		done:     make(chan struct{}),
	}, nil
}

func (r *Runner) RunID() string { return r.runID }

// Log is the event log of the current run.
func (r *Runner) Log() *eventlog.Log { return r.log }

// Start launches the owner goroutine and the step clock. A paused run does
// not step until Resume.
func (r *Runner) Start(ctx context.Context, paused bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrStarted
	}
	ctx, r.cancel = context.WithCancel(ctx)

	st := &run{ctx: ctx, state: r.initial, speed: r.cfg.SpeedMultiplier, paused: paused}
	go timer.Clock(ctx, r.cfg.Step, r.tick, r.action)
	go r.loop(ctx, st)
	if !paused {
		r.action <- timer.Start
	}
	slog.Info("Run started", "run", r.runID, "policy", r.policy.Name(), "floors", r.cfg.Floors, "elevators", r.cfg.Elevators)
	return nil
}

func (r *Runner) loop(ctx context.Context, st *run) {
	defer func() {
		for _, ch := range st.subs {
			close(ch)
		}
		r.final = st.state
		close(r.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-r.cmds:
			cmd.Exec(st)
		case <-r.tick:
			if st.paused {
				continue
			}
			if err := r.advance(st); err != nil {
				slog.Error("Step failed, pausing run", "run", r.runID, "error", err)
				st.paused = true
				r.clock(st, timer.Stop)
			}
		}
	}
}

// advance takes one step of the configured length scaled by the speed multiplier.
func (r *Runner) advance(st *run) error {
	dt := r.cfg.StepMs() * st.speed
	requests := st.pending
	st.pending = nil
	if r.schedule != nil {
		requests = append(requests, r.schedule.Due(st.state.Time, st.state.Time+dt)...)
	}

	result, err := sim.Step(st.state, dt, r.policy, requests, r.cfg)
	if err != nil {
		return err
	}
	st.state = result.State
	r.log.Append(result.Events...)

	if len(st.subs) == 0 {
		return nil
	}
	frame := types.Frame{RunID: r.runID, Events: result.Events}
	if err := deepcopy.Copy(&frame.State, &result.State); err != nil {
		return fmt.Errorf("copy frame: %w", err)
	}
	for _, fault := range result.Faults {
		frame.Faults = append(frame.Faults, fault.Error())
	}
	for _, ch := range st.subs {
		select {
		case ch <- frame:
		default:
			slog.Debug("Subscriber lagging, frame dropped", "step", result.State.Steps)
		}
	}
	return nil
}

func (r *Runner) clock(st *run, action timer.TimerAction) {
	select {
	case r.action <- action:
	case <-st.ctx.Done():
	}
}

// exec hands a command to the owner goroutine and waits for it to run.
func (r *Runner) exec(fn func(st *run)) error {
	r.mu.Lock()
	started := r.cancel != nil
	r.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	ran := make(chan struct{})
	cmd := command{Exec: func(st *run) {
		fn(st)
		close(ran)
	}}
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return ErrStopped
	}
	<-ran
	return nil
}

func (r *Runner) Pause() error {
	return r.exec(func(st *run) {
		if st.paused {
			return
		}
		st.paused = true
		r.clock(st, timer.Stop)
		slog.Info("Run paused", "time", st.state.Time)
	})
}

func (r *Runner) Resume() error {
	return r.exec(func(st *run) {
		if !st.paused {
			return
		}
		st.paused = false
		r.clock(st, timer.Start)
		slog.Info("Run resumed", "time", st.state.Time)
	})
}

// TogglePause pauses a running run and resumes a paused one.
func (r *Runner) TogglePause() (paused bool, err error) {
	err = r.exec(func(st *run) {
		st.paused = !st.paused
		if st.paused {
			r.clock(st, timer.Stop)
		} else {
			r.clock(st, timer.Start)
		}
		paused = st.paused
	})
	return paused, err
}

// Submit queues a request for the next step.
func (r *Runner) Submit(req types.Request) error {
	return r.exec(func(st *run) {
		st.pending = append(st.pending, req)
	})
}

// SetSpeed changes the multiplier applied to the step length.
func (r *Runner) SetSpeed(multiplier float64) error {
	if !(multiplier > 0) {
		return fmt.Errorf("%w: speed multiplier must be positive, got %v", config.ErrInvalidConfig, multiplier)
	}
	return r.exec(func(st *run) {
		st.speed = multiplier
	})
}

// Advance takes n steps at once, paused or not.
func (r *Runner) Advance(n int) error {
	var err error
	execErr := r.exec(func(st *run) {
		for range n {
			if err = r.advance(st); err != nil {
				return
			}
		}
	})
	return errors.Join(execErr, err)
}

// Snapshot returns a deep copy of the current state.
func (r *Runner) Snapshot() (types.AppState, error) {
	var snapshot types.AppState
	var copyErr error
	err := r.exec(func(st *run) {
		copyErr = deepcopy.Copy(&snapshot, &st.state)
	})
	return snapshot, errors.Join(err, copyErr)
}

// Subscribe returns a channel receiving one frame per step. Frames are
// dropped while the channel is full; it is closed when the run stops.
func (r *Runner) Subscribe() (<-chan types.Frame, error) {
	ch := make(chan types.Frame, subscriberBuffer)
	err := r.exec(func(st *run) {
		st.subs = append(st.subs, ch)
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Stop ends the run and discards its log. It returns the last state.
func (r *Runner) Stop() (types.AppState, error) {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel == nil {
		return types.AppState{}, ErrNotStarted
	}
	cancel()
	<-r.done

	final := r.final
	slog.Info("Run stopped", "run", r.runID, "time", final.Time, "steps", final.Steps, "events", r.log.Len())
	r.log.Reset()
	return final, nil
}
