// Package ratewindow implements the sliding-window counters behind every
// burst detector.
package ratewindow

import (
	"sync"
	"time"
)

// Window counts events per key inside a trailing lookback duration. Entries
// older than the lookback are pruned on every Record call, so a key's slice
// only ever holds in-window timestamps.
type Window struct {
	mu       sync.Mutex
	lookback time.Duration
	entries  map[string][]time.Time
}

func New(lookback time.Duration) *Window {
	return &Window{
		lookback: lookback,
		entries:  make(map[string][]time.Time),
	}
}

// Record appends an event for key at ts and returns the number of events for
// key within (ts-lookback, ts]. Calls for the same key are serialized.
func (w *Window) Record(key string, ts time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := ts.Add(-w.lookback)
	kept := w.entries[key][:0]
	for _, t := range w.entries[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, ts)
	w.entries[key] = kept

	return len(kept)
}

// Count returns the in-window event count for key as of ts without recording.
func (w *Window) Count(key string, ts time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := ts.Add(-w.lookback)
	n := 0
	for _, t := range w.entries[key] {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

// Reset drops all recorded events for key.
func (w *Window) Reset(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, key)
}
