// Package eventlog holds the append-only history of simulation events.
package eventlog

import (
	"cmp"
	"iter"
	"slices"
	"sync"

	"elevsim/src/types"
)

// Log is safe for one appending driver and any number of readers.
type Log struct {
	mu     sync.RWMutex
	events []types.Event
}

func New() *Log {
	return &Log{}
}

// Append stores events in arrival order.
func (log *Log) Append(events ...types.Event) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.events = append(log.events, events...)
}

func (log *Log) Len() int {
	log.mu.RLock()
	defer log.mu.RUnlock()
	return len(log.events)
}

// All returns a copy of the log in insertion order.
func (log *Log) All() []types.Event {
	log.mu.RLock()
	defer log.mu.RUnlock()
	return slices.Clone(log.events)
}

// Reset discards the history of a stopped run.
func (log *Log) Reset() {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.events = nil
}

// Since yields events with TS >= ts ordered by TS, ties in insertion order.
// Each iteration takes a fresh view of the log, so the sequence can be restarted.
func (log *Log) Since(ts float64) iter.Seq[types.Event] {
	return func(yield func(types.Event) bool) {
		log.mu.RLock()
		selected := make([]types.Event, 0, len(log.events))
		for _, ev := range log.events {
			if ev.TS >= ts {
				selected = append(selected, ev)
			}
		}
		log.mu.RUnlock()

		slices.SortStableFunc(selected, func(a, b types.Event) int {
			return cmp.Compare(a.TS, b.TS)
		})
		for _, ev := range selected {
			if !yield(ev) {
				return
			}
		}
	}
}
