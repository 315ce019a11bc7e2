package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"transmute/internal/jobs"
	"transmute/internal/profile"
	"transmute/internal/services"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAddAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := Entry{
		ID:         "job-1",
		Operation:  "convert",
		Input:      "/media/clip.mov",
		Output:     "/media/clip.mp3",
		State:      "succeeded",
		Encoder:    "libmp3lame",
		Warnings:   []string{"backup failure: disk full"},
		FinishedAt: finished,
		Elapsed:    1500 * time.Millisecond,
	}
	if err := store.Add(ctx, entry); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := store.Get(ctx, "job-1")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.Output != entry.Output || got.Encoder != entry.Encoder || got.Elapsed != entry.Elapsed {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.FinishedAt.Equal(finished) || !got.StartedAt.Equal(finished.Add(-1500*time.Millisecond)) {
		t.Fatalf("timestamps = %v / %v", got.StartedAt, got.FinishedAt)
	}
	if len(got.Warnings) != 1 {
		t.Fatalf("warnings = %v", got.Warnings)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown id, got %v %v", missing, err)
	}
}

func TestAddRequiresID(t *testing.T) {
	if err := openStore(t).Add(context.Background(), Entry{}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []Entry{
		{ID: "a", Operation: "convert", Input: "a", State: "succeeded", FinishedAt: base},
		{ID: "b", Operation: "mute", Input: "b", State: "failed", FinishedAt: base.Add(time.Hour)},
		{ID: "c", Operation: "convert", Input: "c", State: "failed", FinishedAt: base.Add(2 * time.Hour)},
	}
	for _, e := range seed {
		if err := store.Add(ctx, e); err != nil {
			t.Fatalf("Add %s: %v", e.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{}, []string{"c", "b", "a"}},
		{"by state", Filter{State: "failed"}, []string{"c", "b"}},
		{"by operation", Filter{Operation: "convert"}, []string{"c", "a"}},
		{"limit", Filter{Limit: 1}, []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var ids []string
			for _, e := range entries {
				ids = append(ids, e.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", ids, tt.want)
				}
			}
		})
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["failed"] != 2 || stats["succeeded"] != 1 {
		t.Fatalf("stats = %v", stats)
	}

	removed, err := store.Prune(ctx, base.Add(90*time.Minute))
	if err != nil || removed != 2 {
		t.Fatalf("Prune = %d, %v", removed, err)
	}
	removed, err = store.Clear(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("Clear = %d, %v", removed, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Add(ctx, Entry{ID: "x", Operation: "mute", Input: "in", State: "cancelled"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got, _ := reopened.Get(ctx, "x"); got == nil || got.State != "cancelled" {
		t.Fatalf("entry lost across reopen: %+v", got)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestRecorderStoresJobResult(t *testing.T) {
	store := openStore(t)
	started := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	result := jobs.Result{
		ID:        "job-9",
		Operation: profile.OpCompress,
		Input:     "/m/in.mp4",
		Output:    "/m/in_compressed.mp4",
		State:     jobs.StateFailed,
		ExitCode:  1,
		Err:       services.Wrap(services.ErrEngineFailure, "engine", "run", "exit 1", nil),
		Warnings:  []error{services.Wrap(services.ErrBackupFailure, "safeoutput", "prepare", "copy failed", nil)},
		Started:   started,
		Elapsed:   2 * time.Second,
		Encoder:   "libx264",
	}
	if err := (Recorder{Store: store}).Record(context.Background(), result); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := store.Get(context.Background(), "job-9")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.ErrorKind != "engine_failure" || got.State != "failed" || got.Operation != "compress" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !got.FinishedAt.Equal(started.Add(2 * time.Second)) {
		t.Fatalf("finished = %v", got.FinishedAt)
	}
	if len(got.Warnings) != 1 {
		t.Fatalf("warnings = %v", got.Warnings)
	}
}
