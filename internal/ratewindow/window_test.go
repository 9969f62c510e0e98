package ratewindow

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRecordCountsTrailingWindow(t *testing.T) {
	w := New(60 * time.Second)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if got := w.Record("g1", base.Add(time.Duration(i)*time.Second)); got != i+1 {
			t.Fatalf("record %d: count = %d, want %d", i, got, i+1)
		}
	}

	// 61 seconds after the first event: the first one has aged out.
	if got := w.Record("g1", base.Add(61*time.Second)); got != 5 {
		t.Fatalf("count after expiry = %d, want 5", got)
	}
}

func TestRecordPrunesOldEntries(t *testing.T) {
	w := New(30 * time.Second)
	base := time.Now()

	w.Record("k", base)
	w.Record("k", base.Add(5*time.Second))

	// Far enough ahead that both earlier entries are gone.
	if got := w.Record("k", base.Add(2*time.Minute)); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	if got := w.Count("k", base.Add(2*time.Minute)); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	w := New(time.Minute)
	now := time.Now()

	w.Record("a", now)
	w.Record("a", now)
	if got := w.Record("b", now); got != 1 {
		t.Fatalf("key b count = %d, want 1", got)
	}
}

func TestCountDoesNotRecord(t *testing.T) {
	w := New(time.Minute)
	now := time.Now()

	w.Record("k", now)
	w.Count("k", now)
	if got := w.Count("k", now); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
}

func TestReset(t *testing.T) {
	w := New(time.Minute)
	now := time.Now()

	w.Record("k", now)
	w.Record("k", now)
	w.Reset("k")
	if got := w.Record("k", now); got != 1 {
		t.Fatalf("count after reset = %d, want 1", got)
	}
}

func TestConcurrentRecord(t *testing.T) {
	w := New(time.Minute)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%2)
			for j := 0; j < 100; j++ {
				w.Record(key, now)
			}
		}(i)
	}
	wg.Wait()

	if got := w.Count("k0", now); got != 400 {
		t.Fatalf("k0 count = %d, want 400", got)
	}
	if got := w.Count("k1", now); got != 400 {
		t.Fatalf("k1 count = %d, want 400", got)
	}
}
