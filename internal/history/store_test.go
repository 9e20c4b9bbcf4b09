package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mkvaudur/internal/history"
)

func openStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestRecordAndRecent(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []history.Entry{
		{RunID: "run-1", SourcePath: "/m/a.mkv", ReferenceDuration: 100, TrackID: 2, TypeOrder: 1, Language: "en",
			Action: "trim", Difference: 0.5, OutputPath: "/m/a_Audio01.EN.ac3", RecordedAt: base},
		{RunID: "run-1", SourcePath: "/m/a.mkv", ReferenceDuration: 100, TrackID: 3, TypeOrder: 2,
			Action: "append", Difference: -0.25, Status: history.StatusFailed, ErrorMessage: "transcode failed",
			RecordedAt: base.Add(time.Second)},
		{RunID: "run-2", SourcePath: "/m/b.mkv", ReferenceDuration: 50, TrackID: 2, TypeOrder: 1, Language: "de",
			Action: "copy", RecordedAt: base.Add(time.Hour)},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].RunID != "run-2" || recent[0].Action != "copy" {
		t.Fatalf("expected newest entry first, got %#v", recent[0])
	}
	if !recent[0].RecordedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected timestamp %v", recent[0].RecordedAt)
	}

	failed := recent[1]
	if failed.Status != history.StatusFailed || failed.ErrorMessage != "transcode failed" {
		t.Fatalf("unexpected failed entry %#v", failed)
	}
	if failed.Language != "" || failed.OutputPath != "" {
		t.Fatalf("expected null columns to scan as empty strings, got %#v", failed)
	}
	if failed.Difference != -0.25 {
		t.Fatalf("unexpected difference %v", failed.Difference)
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all entries, got %d", len(all))
	}
}

func TestRecordDefaults(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	before := time.Now().Add(-time.Second)

	if err := store.Record(ctx, history.Entry{RunID: "run-1", SourcePath: "/m/a.mkv", Action: "trim"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	entries, err := store.ForRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ForRun failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Status != history.StatusOK {
		t.Fatalf("expected default status ok, got %q", entries[0].Status)
	}
	if entries[0].RecordedAt.Before(before) {
		t.Fatalf("expected recorded_at to be stamped, got %v", entries[0].RecordedAt)
	}
}

func TestRecordRequiresRunID(t *testing.T) {
	store, _ := openStore(t)
	if err := store.Record(context.Background(), history.Entry{SourcePath: "/m/a.mkv"}); err == nil {
		t.Fatal("expected error without run id")
	}
}

func TestForRunFilters(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	for _, runID := range []string{"a", "b", "a"} {
		if err := store.Record(ctx, history.Entry{RunID: runID, SourcePath: "/m/x.mkv", Action: "copy"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	entries, err := store.ForRun(ctx, "a")
	if err != nil {
		t.Fatalf("ForRun failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for run a, got %d", len(entries))
	}
	if entries[0].ID >= entries[1].ID {
		t.Fatalf("expected insertion order, got ids %d and %d", entries[0].ID, entries[1].ID)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	store, path := openStore(t)
	if err := store.Record(context.Background(), history.Entry{RunID: "r", SourcePath: "/m/x.mkv", Action: "trim"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected persisted entry, got %d", len(entries))
	}
}

func TestSchemaMismatch(t *testing.T) {
	store, path := openStore(t)
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := history.Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
