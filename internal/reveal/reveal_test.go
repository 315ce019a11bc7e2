package reveal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"transmute/internal/logging"
)

func TestRevealPrefersSelection(t *testing.T) {
	var selected, opened string
	r := &Revealer{
		selectItem: func(_ context.Context, path string) error { selected = path; return nil },
		openFolder: func(dir string) error { opened = dir; return nil },
		logger:     logging.NewNop(),
	}
	target := filepath.Join(t.TempDir(), "out.mp4")
	if err := r.Reveal(context.Background(), target); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if selected != target || opened != "" {
		t.Fatalf("selected=%q opened=%q", selected, opened)
	}
}

func TestRevealFallsBackToFolder(t *testing.T) {
	var opened string
	r := &Revealer{
		selectItem: func(context.Context, string) error { return errors.New("no dbus") },
		openFolder: func(dir string) error { opened = dir; return nil },
		logger:     logging.NewNop(),
	}
	dir := t.TempDir()
	if err := r.Reveal(context.Background(), filepath.Join(dir, "out.mp4")); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if opened != dir {
		t.Fatalf("opened %q, want %q", opened, dir)
	}
}

func TestRevealReportsBothFailures(t *testing.T) {
	selectErr := errors.New("no dbus")
	openErr := errors.New("no xdg-open")
	r := &Revealer{
		selectItem: func(context.Context, string) error { return selectErr },
		openFolder: func(string) error { return openErr },
		logger:     logging.NewNop(),
	}
	err := r.Reveal(context.Background(), filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, selectErr) || !errors.Is(err, openErr) {
		t.Fatalf("expected both causes, got %v", err)
	}
}

func TestNop(t *testing.T) {
	var r FolderRevealer = Nop{}
	if err := r.Reveal(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
}
