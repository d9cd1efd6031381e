package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/eiannone/keyboard"

	"elevsim/src/config"
	"elevsim/src/dataset"
	"elevsim/src/dispatcher"
	"elevsim/src/driver"
	"elevsim/src/network"
	"elevsim/src/sim"
	"elevsim/src/types"
	"elevsim/src/utils"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code once every deferred cleanup has run.
func run() int {
	configPath := flag.String("config", "", "YAML configuration file")
	envFile := flag.String("env", ".env", "file with ELEVSIM_ overrides")
	policyName := flag.String("policy", "", "scheduling policy: "+strings.Join(config.Policies, ", "))
	datasetName := flag.String("dataset", "", "arrivals: sample, random, live or a YAML file")
	speed := flag.Float64("speed", 0, "speed multiplier applied to each step")
	steps := flag.Int("steps", 0, "run this many steps without the clock and exit")
	dt := flag.Duration("dt", 0, "simulated time per step")
	spread := flag.Bool("spread", false, "spread elevators without an initial floor across the building")
	render := flag.String("render", "", "UDP address receiving frames")
	listen := flag.String("listen", "", "print frames received on this UDP address instead of simulating")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = config.ApplyEnv(&cfg, *envFile)
	}
	if *policyName != "" {
		cfg.Policy = strings.ToLower(*policyName)
	}
	if *datasetName != "" {
		cfg.Dataset = *datasetName
	}
	if *speed != 0 {
		cfg.SpeedMultiplier = *speed
	}
	if *dt != 0 {
		cfg.Step = *dt
	}
	if *render != "" {
		cfg.RenderAddr = *render
	}
	cfg.Spread = cfg.Spread || *spread
	cfg.Debug = cfg.Debug || *debug

	closeLog, logErr := utils.InitLogger(cfg.Debug, cfg.LogFile)
	defer closeLog()
	if err == nil {
		err = logErr
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listen != "" {
		if err := watch(ctx, *listen); err != nil {
			slog.Error("Listen failed", "error", err)
			return 1
		}
		return 0
	}

	policy, err := dispatcher.New(cfg.Policy, cfg)
	if err != nil {
		slog.Error("Unknown policy", "error", err)
		return 1
	}
	schedule, err := dataset.Open(cfg)
	if err != nil {
		slog.Error("Dataset unavailable", "dataset", cfg.Dataset, "error", err)
		return 1
	}
	runner, err := driver.New(cfg, policy, schedule)
	if err != nil {
		slog.Error("Run setup failed", "error", err)
		return 1
	}

	if *steps > 0 {
		err = headless(ctx, runner, *steps)
	} else {
		err = interactive(ctx, runner, cfg)
	}
	if err != nil {
		slog.Error("Run failed", "error", err)
		return 1
	}
	return 0
}

// headless takes a fixed number of steps as fast as possible and logs the outcome.
func headless(ctx context.Context, runner *driver.Runner, steps int) error {
	if err := runner.Start(ctx, true); err != nil {
		return err
	}
	if err := runner.Advance(steps); err != nil {
		return err
	}
	final, err := runner.Stop()
	if err != nil {
		return err
	}
	logSummary(final)
	return nil
}

// interactive runs on the wall clock until q, ctrl-c or a signal.
func interactive(ctx context.Context, runner *driver.Runner, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := runner.Start(ctx, false); err != nil {
		return err
	}
	frames, err := runner.Subscribe()
	if err != nil {
		return err
	}

	var published <-chan struct{}
	if cfg.RenderAddr != "" {
		renderFrames, err := runner.Subscribe()
		if err != nil {
			return err
		}
		if published, err = network.Init(ctx, cfg.RenderAddr, renderFrames); err != nil {
			return err
		}
	}

	if cfg.Dataset == "live" {
		feed, err := dataset.NewRandom(cfg.Seed, cfg.Floors, cfg.ArrivalRate)
		if err != nil {
			return err
		}
		requests := make(chan types.Request, config.FeedBuffer)
		go feed.Feed(ctx, requests, cfg.SpeedMultiplier)
		go func() {
			for req := range requests {
				if err := runner.Submit(req); err != nil {
					return
				}
			}
		}()
	}

	keys := keyEvents()
	paused := false
	for {
		select {
		case <-ctx.Done():
			return finish(runner, published)
		case frame, ok := <-frames:
			if !ok {
				return finish(runner, published)
			}
			utils.PrintStatus(os.Stdout, frame.State, cfg.Policy, paused)
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			switch {
			case key.Key == keyboard.KeyCtrlC, key.Rune == 'q', key.Rune == 'Q':
				return finish(runner, published)
			case key.Rune == 'p', key.Rune == 'P':
				if paused, err = runner.TogglePause(); err != nil {
					return err
				}
				if snapshot, err := runner.Snapshot(); err == nil {
					utils.PrintStatus(os.Stdout, snapshot, cfg.Policy, paused)
				}
			}
		}
	}
}

// keyEvents reads single key presses. Without a terminal the run continues
// without keyboard control.
func keyEvents() <-chan keyboard.KeyEvent {
	events, err := keyboard.GetKeys(10)
	if err != nil {
		slog.Warn("Keyboard control unavailable", "error", err)
		return nil
	}
	return events
}

func finish(runner *driver.Runner, published <-chan struct{}) error {
	if err := keyboard.Close(); err != nil {
		slog.Debug("Keyboard close", "error", err)
	}
	fmt.Println()
	final, err := runner.Stop()
	if err != nil {
		return err
	}
	if published != nil {
		select {
		case <-published:
		case <-time.After(time.Second):
		}
	}
	logSummary(final)
	return nil
}

func logSummary(state types.AppState) {
	summary := sim.Summarize(state)
	slog.Info("Run summary",
		"time", time.Duration(summary.Time*float64(time.Millisecond)),
		"steps", summary.Steps,
		"completed", summary.Completed,
		"cancelled", summary.Cancelled,
		"waiting", summary.Waiting,
		"inElevator", summary.InElevator,
		"avgWait", time.Duration(summary.AvgWaitMs*float64(time.Millisecond)),
		"maxWait", time.Duration(summary.MaxWaitMs*float64(time.Millisecond)),
	)
}

// watch prints the status line of frames published by another process.
func watch(ctx context.Context, addr string) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	defer conn.Close()

	frames := make(chan types.Frame, config.FeedBuffer)
	go network.Receiver(ctx, conn, frames)
	slog.Info("Watching frames", "addr", conn.LocalAddr())
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case frame := <-frames:
			utils.PrintStatus(os.Stdout, frame.State, frame.RunID[:min(8, len(frame.RunID))], false)
		}
	}
}
