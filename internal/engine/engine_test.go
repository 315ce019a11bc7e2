package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"transmute/internal/logging"
	"transmute/internal/services"
)

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a unix shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestStartStreamsLinesAndSucceeds(t *testing.T) {
	stub := writeStub(t, `printf 'Duration: 00:00:10.00\nframe=1 time=00:00:05.00 speed=1x\rframe=2 time=00:00:10.00 speed=1x\n' >&2
pwd > "$1"
exit 0
`)
	dir := t.TempDir()
	eng := New(stub, time.Second, logging.NewNop())
	proc, err := eng.Start(context.Background(), dir, []string{"pwd.txt"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	var lines []string
	for line := range proc.Lines() {
		lines = append(lines, line)
	}
	code, err := proc.Wait()
	if err != nil || code != 0 {
		t.Fatalf("Wait = %d, %v", code, err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	tail := proc.Tail()
	if len(tail) != 1 || tail[0] != "Duration: 00:00:10.00" {
		t.Fatalf("stats lines must not enter the tail: %q", tail)
	}
	got, err := os.ReadFile(filepath.Join(dir, "pwd.txt"))
	if err != nil {
		t.Fatalf("engine did not run in output dir: %v", err)
	}
	wantDir, _ := filepath.EvalSymlinks(dir)
	gotDir, _ := filepath.EvalSymlinks(strings.TrimSpace(string(got)))
	if gotDir != wantDir {
		t.Fatalf("working dir = %q, want %q", gotDir, wantDir)
	}
}

func TestWaitReportsExitError(t *testing.T) {
	stub := writeStub(t, `echo "Unknown encoder 'h264_nvenc'" >&2
echo "Conversion failed!" >&2
exit 1
`)
	proc, err := New(stub, time.Second, nil).Start(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	code, err := proc.Wait()
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if !errors.Is(err, services.ErrEngineFailure) {
		t.Fatal("ExitError must match ErrEngineFailure")
	}
	if exitErr.Category != CategoryEncoder {
		t.Fatalf("category = %s", exitErr.Category)
	}
	if !strings.Contains(exitErr.Error(), "h264_nvenc") {
		t.Fatalf("summary missing detail: %q", exitErr.Error())
	}
}

func TestWaitIsRepeatable(t *testing.T) {
	stub := writeStub(t, "exit 3\n")
	proc, err := New(stub, time.Second, nil).Start(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	first, _ := proc.Wait()
	second, _ := proc.Wait()
	if first != 3 || second != 3 {
		t.Fatalf("exit codes = %d, %d", first, second)
	}
}

func TestCancelInterruptsProcess(t *testing.T) {
	stub := writeStub(t, `trap 'echo interrupted >&2; exit 255' INT
echo running >&2
while :; do sleep 0.05; done
`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc, err := New(stub, 5*time.Second, nil).Start(ctx, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for line := range proc.Lines() {
		if line == "running" {
			cancel()
		}
	}
	done := make(chan struct{})
	go func() {
		_, _ = proc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process did not stop after interrupt")
	}
	if !proc.Interrupted() {
		t.Fatal("expected process to be marked interrupted")
	}
	tail := proc.Tail()
	if len(tail) == 0 || tail[len(tail)-1] != "interrupted" {
		t.Fatalf("expected trap output, got %q", tail)
	}
}

func TestCancelEscalatesToKill(t *testing.T) {
	stub := writeStub(t, `trap '' INT
echo running >&2
while :; do sleep 0.05; done
`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc, err := New(stub, 200*time.Millisecond, nil).Start(ctx, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	started := time.Now()
	for line := range proc.Lines() {
		if line == "running" {
			cancel()
		}
	}
	code, _ := proc.Wait()
	if code == 0 {
		t.Fatal("killed process must not report success")
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Fatalf("kill escalation took too long: %s", elapsed)
	}
}

func TestStartRequiresBinary(t *testing.T) {
	_, err := New("  ", 0, nil).Start(context.Background(), t.TempDir(), nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestStartMissingBinary(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), 0, nil).Start(context.Background(), t.TempDir(), nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		tail     []string
		category Category
		detail   string
	}{
		{"empty", nil, CategoryUnknown, ""},
		{"missing input", []string{"in.mp4: No such file or directory"}, CategoryMissingInput, "in.mp4: No such file or directory"},
		{"invalid data", []string{"x.mp4: Invalid data found when processing input"}, CategoryInvalidInput, "x.mp4: Invalid data found when processing input"},
		{"disk full", []string{"av_interleaved_write_frame(): No space left on device", "Conversion failed!"}, CategoryDiskFull, "av_interleaved_write_frame(): No space left on device"},
		{"hardware before option", []string{"[h264_nvenc @ 0x1] OpenEncodeSessionEx failed: unsupported device (2)", "Error while opening encoder - maybe incorrect parameters", "Invalid argument"}, CategoryHardware, "[h264_nvenc @ 0x1] OpenEncodeSessionEx failed: unsupported device (2)"},
		{"no streams", []string{"Output file #0 does not contain any stream"}, CategoryNoStreams, "Output file #0 does not contain any stream"},
		{"unrecognized", []string{"something odd", "Conversion failed!"}, CategoryUnknown, "something odd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, _, detail := Classify(tt.tail)
			if category != tt.category || detail != tt.detail {
				t.Fatalf("Classify = %s %q, want %s %q", category, detail, tt.category, tt.detail)
			}
		})
	}
}
