package database

import (
	"path/filepath"
	"testing"
	"time"
)

func setup(t *testing.T) *Database {
	t.Helper()
	if err := Initialize(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() {
		Close()
		globalDB = nil
	})
	return GetDB()
}

func TestAddAndListActions(t *testing.T) {
	db := setup(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := db.AddActionLog("inc-1", "g1", "Raid detected! Taking action.", base); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := db.AddActionLog("inc-2", "g1", "Unauthorized bot spambot has been banned.", base.Add(time.Minute)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := db.AddActionLog("inc-3", "g2", "elsewhere", base); err != nil {
		t.Fatalf("add: %v", err)
	}

	logs, err := db.RecentActions("g1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	if logs[0].IncidentID != "inc-2" {
		t.Fatalf("logs[0] = %+v, want newest first", logs[0])
	}
	if !logs[0].Timestamp.Equal(base.Add(time.Minute)) {
		t.Fatalf("timestamp = %v", logs[0].Timestamp)
	}
}

func TestDuplicateIncidentRejected(t *testing.T) {
	db := setup(t)
	now := time.Now()

	if err := db.AddActionLog("inc-1", "g1", "first", now); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := db.AddActionLog("inc-1", "g1", "second", now); err == nil {
		t.Fatal("duplicate incident IDs must be rejected")
	}
}

func TestCountActions(t *testing.T) {
	db := setup(t)
	now := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		if err := db.AddActionLog(id, "g1", "x", now); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	n, err := db.CountActions("g1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
	if n, _ := db.CountActions("g2"); n != 0 {
		t.Fatalf("g2 count = %d, want 0", n)
	}
}
