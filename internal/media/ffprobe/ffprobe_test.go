package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"transmute/internal/services"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.45", Size: "1000"},
	}
	if !result.HasVideo() || !result.HasAudio() {
		t.Fatalf("expected both streams: %+v", result)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestAttachedPictureIsNotVideo(t *testing.T) {
	var cover Stream
	cover.CodecType = "video"
	cover.Disposition.AttachedPic = 1
	result := Result{Streams: []Stream{{CodecType: "audio"}, cover}}
	if result.HasVideo() {
		t.Fatal("cover art must not count as video")
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := Result{
		Streams: []Stream{{Duration: "10.5"}, {Duration: "12"}, {Duration: "N/A"}},
		Format:  Format{Duration: "N/A"},
	}
	if got := result.DurationSeconds(); got != 12 {
		t.Fatalf("expected longest stream duration, got %v", got)
	}
	if got := (Result{}).DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for empty result, got %v", got)
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a unix shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestProberDuration(t *testing.T) {
	stub := writeStub(t, `echo '{"streams":[{"codec_type":"video"}],"format":{"duration":"100.000000"}}'`)
	prober := NewProber(stub, 5*time.Second)
	duration, err := prober.Duration(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if duration != 100 {
		t.Fatalf("unexpected duration: %v", duration)
	}
}

func TestProberWrapsFailures(t *testing.T) {
	stub := writeStub(t, `echo "clip.mp4: Invalid data found" >&2; exit 1`)
	_, err := NewProber(stub, time.Second).Duration(context.Background(), "clip.mp4")
	if !errors.Is(err, services.ErrProbeFailure) {
		t.Fatalf("expected ErrProbeFailure, got %v", err)
	}
}

func TestProberTimeout(t *testing.T) {
	stub := writeStub(t, `exec sleep 10`)
	start := time.Now()
	_, err := NewProber(stub, 100*time.Millisecond).Probe(context.Background(), "clip.mp4")
	if !errors.Is(err, services.ErrProbeFailure) {
		t.Fatalf("expected ErrProbeFailure, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("probe timeout was not enforced")
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
