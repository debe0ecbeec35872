package database

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *ShredDB {
	t.Helper()
	db, err := NewShredDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewShredDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRecordAndQuery verifies the insert/query round trip
func TestRecordAndQuery(t *testing.T) {
	db := openTestDB(t)

	records := []ShredRecord{
		{Action: ActionShred, Path: "/tmp/a.key", Size: 4096, Passes: 3, Blocks: 1, BlockLen: 4096, DurationMs: 12},
		{Action: ActionShred, Path: "/tmp/b.pem", Size: 100, Passes: 3, Blocks: 1, BlockLen: 100, SafeMode: true, Removed: true},
		{Action: ActionError, Path: "/tmp/c.bin", Size: 50, Passes: 3, Blocks: 1, BlockLen: 50, ErrorMessage: "write : /tmp/c.bin : permission denied"},
		{Action: ActionSkip, Path: "/etc/passwd", Size: 0},
	}
	for _, rec := range records {
		if err := db.RecordShred(rec); err != nil {
			t.Fatalf("RecordShred(%s): %v", rec.Path, err)
		}
	}

	recent, err := db.GetRecentShreds(10)
	if err != nil {
		t.Fatalf("GetRecentShreds: %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("GetRecentShreds returned %d records, expected 4", len(recent))
	}

	errored, err := db.GetShredsByAction(ActionError)
	if err != nil {
		t.Fatalf("GetShredsByAction: %v", err)
	}
	if len(errored) != 1 || errored[0].Path != "/tmp/c.bin" {
		t.Errorf("GetShredsByAction(ERROR) = %+v", errored)
	}
	if errored[0].ErrorMessage == "" {
		t.Error("error message was not persisted")
	}

	byPath, err := db.GetShredsByPath("/tmp/%")
	if err != nil {
		t.Fatalf("GetShredsByPath: %v", err)
	}
	if len(byPath) != 3 {
		t.Errorf("GetShredsByPath(/tmp/%%) returned %d, expected 3", len(byPath))
	}

	largest, err := db.GetLargestShreds(1)
	if err != nil {
		t.Fatalf("GetLargestShreds: %v", err)
	}
	if len(largest) != 1 || largest[0].Size != 4096 {
		t.Errorf("GetLargestShreds = %+v", largest)
	}
}

// TestStats verifies aggregate counters per action
func TestStats(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		if err := db.RecordShred(ShredRecord{Action: ActionShred, Path: "/tmp/x", Size: 10, Passes: 3, Blocks: 1, BlockLen: 10}); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.RecordShred(ShredRecord{Action: ActionError, Path: "/tmp/y", Size: 5, Passes: 3, Blocks: 1, BlockLen: 5}); err != nil {
		t.Fatal(err)
	}

	stats, err := db.GetShredStats(1)
	if err != nil {
		t.Fatalf("GetShredStats: %v", err)
	}
	if stats.TotalShredded != 3 || stats.TotalErrors != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.TotalBytesCovered != 30 {
		t.Errorf("bytes covered = %d, expected 30", stats.TotalBytesCovered)
	}
}

// TestDeleteOldRecords verifies retention cleanup
func TestDeleteOldRecords(t *testing.T) {
	db := openTestDB(t)

	old := ShredRecord{Action: ActionShred, Path: "/tmp/old", Size: 1, Passes: 3, Blocks: 1, BlockLen: 1, Timestamp: time.Now().AddDate(0, 0, -90)}
	fresh := ShredRecord{Action: ActionShred, Path: "/tmp/fresh", Size: 1, Passes: 3, Blocks: 1, BlockLen: 1}
	if err := db.RecordShred(old); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordShred(fresh); err != nil {
		t.Fatal(err)
	}

	n, err := db.DeleteOldRecords(30)
	if err != nil {
		t.Fatalf("DeleteOldRecords: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d records, expected 1", n)
	}

	remaining, err := db.GetRecentShreds(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].Path != "/tmp/fresh" {
		t.Errorf("remaining = %+v", remaining)
	}
}
