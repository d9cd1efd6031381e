package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"elevsim/src/sim"
	"elevsim/src/types"
)

// InitLogger installs the default slog logger. Records go to stderr, and to
// logFile as well when it is set. The returned func closes the log file.
func InitLogger(debug bool, logFile string) (func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return closeFn, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
		closeFn = func() { file.Close() }
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(NewHandler(out, level)))
	return closeFn, nil
}

// NewHandler is a text handler with a compact clock and file:line sources.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("15:04:05"))
				}
			}
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					file := source.File
					if lastSlash := strings.LastIndexByte(file, '/'); lastSlash >= 0 {
						file = file[lastSlash+1:]
					}
					a.Value = slog.StringValue(fmt.Sprintf("%s:%d", file, source.Line))
				}
			}
			return a
		},
	})
}

// ForEachElevator is a helper function that reduces indentation when acting on every elevator of a snapshot
func ForEachElevator(state types.AppState, action func(e types.Elevator, queue types.FloorQueue)) {
	for _, e := range state.Elevators {
		var queue types.FloorQueue
		if q := state.Queue(e.Floor); q != nil {
			queue = *q
		}
		action(e, queue)
	}
}

// PrintStatus rewrites the status line of an interactive run.
func PrintStatus(w io.Writer, state types.AppState, policy string, paused bool) {
	summary := sim.Summarize(state)
	mode := "Running"
	if paused {
		mode = "Paused "
	}
	fmt.Fprintf(w, "\r%s | %s | t=%.1fs | ", mode, policy, summary.Time/1000)
	ForEachElevator(state, func(e types.Elevator, queue types.FloorQueue) {
		door := " "
		if e.DoorOpen {
			door = "*"
		}
		fmt.Fprintf(w, "E%d %2d%s %-5v %d/%d (%d) | ", e.ID, e.Floor, door, e.Direction, e.PassengerCount, e.Capacity, queue.Waiting)
	})
	fmt.Fprintf(w, "waiting %d done %d avg wait %.1fs   \r", summary.Waiting, summary.Completed, summary.AvgWaitMs/1000)
}
