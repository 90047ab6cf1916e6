package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "hookdeps.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenRejectsDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestSaveAndLoadRuns(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun(Run{
		FileCount:       3,
		CallSiteCount:   7,
		DiagnosticCount: 2,
		ByCode: map[string]int{
			"missing-dependency": 1,
			"stale-assignment":   1,
		},
	})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatal("SaveRun returned empty run id")
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != id {
		t.Errorf("run id = %q, want %q", run.ID, id)
	}
	if run.FileCount != 3 || run.CallSiteCount != 7 || run.DiagnosticCount != 2 {
		t.Errorf("run counts = %+v", run)
	}
	if run.ByCode["missing-dependency"] != 1 || run.ByCode["stale-assignment"] != 1 {
		t.Errorf("run codes = %v", run.ByCode)
	}
	if run.Timestamp.IsZero() {
		t.Error("run timestamp not filled in")
	}
}

func TestRecentRunsOrdering(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := store.SaveRun(Run{
			Timestamp:       base.Add(time.Duration(i) * time.Hour),
			DiagnosticCount: i,
		}); err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
	}

	runs, err := store.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if !runs[0].Timestamp.After(runs[1].Timestamp) {
		t.Errorf("runs not ordered newest first: %v, %v", runs[0].Timestamp, runs[1].Timestamp)
	}
}

func TestCodeTrend(t *testing.T) {
	store := openTestStore(t)

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	if _, err := store.SaveRun(Run{Timestamp: old, ByCode: map[string]int{"missing-dependency": 5}}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if _, err := store.SaveRun(Run{Timestamp: recent, ByCode: map[string]int{"missing-dependency": 2, "async-callback": 1}}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	all, err := store.CodeTrend(time.Time{})
	if err != nil {
		t.Fatalf("CodeTrend: %v", err)
	}
	if all["missing-dependency"] != 7 || all["async-callback"] != 1 {
		t.Errorf("trend = %v", all)
	}

	windowed, err := store.CodeTrend(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CodeTrend windowed: %v", err)
	}
	if windowed["missing-dependency"] != 2 {
		t.Errorf("windowed trend = %v", windowed)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hookdeps.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := first.SaveRun(Run{DiagnosticCount: 1}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	runs, err := second.RecentRuns(5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs after reopen, want 1", len(runs))
	}
}
