package timer

import (
	"context"
	"log/slog"
	"time"
)

type TimerAction int

const (
	Start TimerAction = iota
	Stop
)

// Clock is the step clock of a run. It stays silent until it receives Start.
// A tick is dropped when the previous one is still unread, so a slow
// consumer never builds a backlog of steps.
func Clock(ctx context.Context, interval time.Duration, tick chan<- time.Time, action <-chan TimerAction) {
	ticker := time.NewTicker(interval)
	ticker.Stop()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case a := <-action:
			switch a {
			case Start:
				resetTicker(ticker, interval)
			case Stop:
				ticker.Stop()
			}
		case now := <-ticker.C:
			select {
			case tick <- now:
			default:
				slog.Debug("Clock tick dropped")
			}
		}
	}
}

// Stops the ticker and restarts it with a full interval.
func resetTicker(t *time.Ticker, interval time.Duration) {
	t.Stop()
	select {
	case <-t.C:
	default:
	}
	t.Reset(interval)
}
