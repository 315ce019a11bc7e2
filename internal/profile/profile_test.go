package profile

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"transmute/internal/media"
	"transmute/internal/services"
)

func convertReq(input, output string) Request {
	kind, _ := media.KindOf(input)
	return Request{Input: input, Output: output, InputKind: kind, Operation: OpConvert}
}

func hasSeq(args []string, seq ...string) bool {
	for i := 0; i+len(seq) <= len(args); i++ {
		if slices.Equal(args[i:i+len(seq)], seq) {
			return true
		}
	}
	return false
}

func TestConvertSupportedPairsProduceProfiles(t *testing.T) {
	inputs := map[media.Kind]string{
		media.KindVideo: "/in/clip.mov",
		media.KindAudio: "/in/song.flac",
		media.KindImage: "/in/photo.png",
	}
	for kind, input := range inputs {
		for _, target := range media.Targets(kind) {
			req := convertReq(input, "/out/result"+target)
			p, err := Build(req, 0, DefaultSizing())
			if err != nil {
				t.Fatalf("%s -> %s: %v", input, target, err)
			}
			if len(p.Args) < 6 {
				t.Fatalf("%s -> %s: suspiciously short args %q", input, target, p.Args)
			}
			if !slices.Equal(p.Args[:3], BaseArgs) {
				t.Fatalf("%s -> %s: missing base args %q", input, target, p.Args)
			}
			if p.Args[len(p.Args)-1] != "/out/result"+target {
				t.Fatalf("%s -> %s: output must be last: %q", input, target, p.Args)
			}
			if !hasSeq(p.Args, "-i", input) {
				t.Fatalf("%s -> %s: missing input: %q", input, target, p.Args)
			}
		}
	}
}

func TestConvertDeterministic(t *testing.T) {
	req := convertReq("/in/clip.mkv", "/out/clip.webm")
	a, _ := Build(req, 0, DefaultSizing())
	b, _ := Build(req, 0, DefaultSizing())
	if !slices.Equal(a.Args, b.Args) {
		t.Fatalf("profiles differ:\n%q\n%q", a.Args, b.Args)
	}
}

func TestConvertVideoToMP3IsAudioOnly(t *testing.T) {
	p, err := Build(convertReq("/in/clip.mov", "/in/clip.mp3"), 0, DefaultSizing())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.HasVideo || !p.HasAudio {
		t.Fatalf("expected audio-only profile, got %+v", p)
	}
	if !slices.Contains(p.Args, "-vn") || !hasSeq(p.Args, "-codec:a", "libmp3lame", "-q:a", "0") {
		t.Fatalf("unexpected args %q", p.Args)
	}
	if slices.Contains(p.Args, "-c:v") {
		t.Fatalf("audio-only profile must not select a video codec: %q", p.Args)
	}
}

func TestConvertTables(t *testing.T) {
	tests := []struct {
		input, output string
		want          []string
		encoder       string
	}{
		{"a.png", "a.webp", []string{"-quality", "90", "-compression_level", "6"}, "libwebp"},
		{"a.png", "a.jpg", []string{"-quality", "95"}, "mjpeg"},
		{"a.jpg", "a.png", []string{"-compression_level", "9"}, "png"},
		{"a.png", "a.tiff", []string{"-compression_algo", "lzw"}, "tiff"},
		{"a.png", "a.bmp", []string{"-pix_fmt", "rgb24"}, "bmp"},
		{"a.png", "a.ico", []string{"-vf", "scale=256:256"}, "ico"},
		{"a.gif", "b.gif", []string{"-lavfi", animatedGIFFilter}, "gif"},
		{"a.wav", "a.flac", []string{"-vn", "-codec:a", "flac", "-compression_level", "12"}, "flac"},
		{"a.wav", "a.ogg", []string{"-vn", "-c:a", "libvorbis", "-q:a", "7"}, "libvorbis"},
		{"a.mp3", "a.ac3", []string{"-vn", "-c:a", "ac3", "-b:a", "448k"}, "ac3"},
		{"a.mkv", "a.mp4", []string{"-c:v", "libx264", "-crf", "23", "-preset", "medium", "-c:a", "aac", "-b:a", "192k", "-movflags", "+faststart"}, "libx264"},
		{"a.mp4", "a.mkv", []string{"-c:v", "libx264", "-crf", "21", "-preset", "slower", "-c:a", "libopus", "-b:a", "192k"}, "libx264"},
		{"a.mp4", "a.webm", []string{"-c:v", "libvpx-vp9", "-crf", "30", "-b:v", "0", "-c:a", "libopus", "-b:a", "128k", "-deadline", "good", "-cpu-used", "2"}, "libvpx-vp9"},
		{"a.mp4", "a.mov", []string{"-c:v", "prores_ks", "-profile:v", "3", "-c:a", "pcm_s24le"}, "prores_ks"},
		{"a.mp4", "a.ts", []string{"-f", "mpegts"}, "libx264"},
		{"a.mp4", "a.3gp", []string{"-profile:v", "baseline", "-level", "3.0"}, "libx264"},
		{"a.mp4", "a.gif", []string{"-lavfi", animatedGIFFilter}, "gif"},
	}
	for _, tt := range tests {
		p, err := Build(convertReq(tt.input, tt.output), 0, DefaultSizing())
		if err != nil {
			t.Fatalf("%s -> %s: %v", tt.input, tt.output, err)
		}
		if !hasSeq(p.Args, tt.want...) {
			t.Fatalf("%s -> %s: expected %q in %q", tt.input, tt.output, tt.want, p.Args)
		}
		if p.Encoder != tt.encoder {
			t.Fatalf("%s -> %s: encoder %q, want %q", tt.input, tt.output, p.Encoder, tt.encoder)
		}
	}
}

func TestConvertDefaultBranches(t *testing.T) {
	video, err := Build(convertReq("a.mp4", "a.m2v"), 0, DefaultSizing())
	if err != nil {
		t.Fatalf("video default: %v", err)
	}
	if !hasSeq(video.Args, "-c:v", "libx264", "-crf", "23", "-c:a", "aac", "-b:a", "192k") {
		t.Fatalf("unexpected video default %q", video.Args)
	}

	audio, err := Build(convertReq("a.mp3", "a.mka"), 0, DefaultSizing())
	if err != nil {
		t.Fatalf("audio default: %v", err)
	}
	if !slices.Equal(audio.Args, []string{"-hide_banner", "-nostdin", "-y", "-i", "a.mp3", "-vn", "a.mka"}) {
		t.Fatalf("unexpected audio default %q", audio.Args)
	}

	image, err := Build(convertReq("a.png", "a.jxl"), 0, DefaultSizing())
	if err != nil {
		t.Fatalf("image default: %v", err)
	}
	if !slices.Equal(image.Args, []string{"-hide_banner", "-nostdin", "-y", "-i", "a.png", "a.jxl"}) {
		t.Fatalf("unexpected image default %q", image.Args)
	}
}

func TestConvertAudioToVideoAddsFiller(t *testing.T) {
	p, err := Build(convertReq("song.mp3", "song.mp4"), 0, DefaultSizing())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"-i", "song.mp3", "-f", "lavfi", "-i", "color=c=black:s=1920x1080", "-shortest", "-c:v", "libx264"}
	if !hasSeq(p.Args, want...) {
		t.Fatalf("expected filler source in %q", p.Args)
	}
	if !p.HasVideo || !p.HasAudio {
		t.Fatalf("expected video and audio streams: %+v", p)
	}
}

func TestUnsupportedCombinations(t *testing.T) {
	tests := []Request{
		convertReq("a.png", "a.mp4"),
		convertReq("a.png", "a.mp3"),
		convertReq("a.mp3", "a.png"),
		convertReq("a.mp4", "a.jpg"),
		{Input: "a.png", Output: "a_muted.png", InputKind: media.KindImage, Operation: OpMute},
		{Input: "a.mp4", Output: "a_50pct.mp4", InputKind: media.KindVideo, Operation: OpResize, Params: Params{ScaleFactor: 0.5}},
		{Input: "photo-sequence.gif", Output: "photo-sequence_compressed.gif", InputKind: media.KindImage, Operation: OpCompress, Params: Params{TargetMB: 5}},
		{Input: "clip.mov", Output: "poster.gif", InputKind: media.KindVideo, Operation: OpCompress, Params: Params{TargetMB: 5}},
	}
	for _, req := range tests {
		if _, err := Build(req, 0, DefaultSizing()); !errors.Is(err, services.ErrUnsupportedOperation) {
			t.Fatalf("%s %s -> %s: expected ErrUnsupportedOperation, got %v", req.Operation, req.Input, req.Output, err)
		}
	}
}

func TestParameterValidation(t *testing.T) {
	tests := []Request{
		{Input: "a.png", Output: "a_0pct.png", InputKind: media.KindImage, Operation: OpResize, Params: Params{ScaleFactor: 0}},
		{Input: "a.png", Output: "a_500pct.png", InputKind: media.KindImage, Operation: OpResize, Params: Params{ScaleFactor: 5}},
		{Input: "a.mp4", Output: "a_c.mp4", InputKind: media.KindVideo, Operation: OpCompress, Params: Params{TargetMB: 0}},
		{Input: "a.wav", Output: "a_c.wav", InputKind: media.KindAudio, Operation: OpCompress, Params: Params{TargetMB: 5}},
		{Input: "a.txt", Output: "a.mp4", InputKind: media.KindUnknown, Operation: OpConvert},
		{Input: "a.mp4", Output: "b.mp4", InputKind: media.KindVideo, Operation: Operation("explode")},
	}
	for _, req := range tests {
		if _, err := Build(req, 0, DefaultSizing()); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s %s: expected ErrValidation, got %v", req.Operation, req.Input, err)
		}
	}
}

func TestMuteProfiles(t *testing.T) {
	video, err := Build(Request{Input: "a.mp4", Output: "a_muted.mp4", InputKind: media.KindVideo, Operation: OpMute}, 0, DefaultSizing())
	if err != nil {
		t.Fatalf("video mute: %v", err)
	}
	if !hasSeq(video.Args, "-c:v", "copy", "-c:a", "aac", "-af", "volume=0") {
		t.Fatalf("unexpected video mute %q", video.Args)
	}
	audio, err := Build(Request{Input: "a.mp3", Output: "a_muted.mp3", InputKind: media.KindAudio, Operation: OpMute}, 0, DefaultSizing())
	if err != nil {
		t.Fatalf("audio mute: %v", err)
	}
	if !hasSeq(audio.Args, "-af", "volume=0") || slices.Contains(audio.Args, "copy") {
		t.Fatalf("unexpected audio mute %q", audio.Args)
	}
}

func TestResizeProfile(t *testing.T) {
	p, err := Build(Request{Input: "a.png", Output: "a_50pct.png", InputKind: media.KindImage, Operation: OpResize, Params: Params{ScaleFactor: 0.5}}, 0, DefaultSizing())
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if !hasSeq(p.Args, "-vf", "scale=iw*0.5:ih*0.5") {
		t.Fatalf("unexpected resize %q", p.Args)
	}
}

func TestParseOperation(t *testing.T) {
	if op, err := ParseOperation(" Compress "); err != nil || op != OpCompress {
		t.Fatalf("ParseOperation = %q, %v", op, err)
	}
	if _, err := ParseOperation("upscale"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type countingProbe struct {
	duration float64
	err      error
	calls    atomic.Int32
}

func (c *countingProbe) Duration(context.Context, string) (float64, error) {
	c.calls.Add(1)
	return c.duration, c.err
}

func TestSelectorProbesOnlyForCompress(t *testing.T) {
	probe := &countingProbe{duration: 100}
	s := NewSelector(probe, DefaultSizing(), nil)

	if _, err := s.Select(context.Background(), convertReq("a.mp4", "a.mkv")); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if probe.calls.Load() != 0 {
		t.Fatal("convert must not probe")
	}

	p, err := s.Select(context.Background(), Request{Input: "a.mp4", Output: "a_compressed.mp4", InputKind: media.KindVideo, Operation: OpCompress, Params: Params{TargetMB: 10}})
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if probe.calls.Load() != 1 {
		t.Fatalf("expected one probe, got %d", probe.calls.Load())
	}
	if p.Plan == nil || p.Plan.Estimated || p.Plan.DurationSeconds != 100 {
		t.Fatalf("unexpected plan %+v", p.Plan)
	}
}

func TestSelectorProbeFailureEstimates(t *testing.T) {
	probe := &countingProbe{err: services.ErrProbeFailure}
	s := NewSelector(probe, DefaultSizing(), nil)
	p, err := s.Select(context.Background(), Request{Input: "a.mp4", Output: "a_compressed.mp4", InputKind: media.KindVideo, Operation: OpCompress, Params: Params{TargetMB: 10}})
	if err != nil {
		t.Fatalf("probe failure must not fail selection: %v", err)
	}
	if !p.Plan.Estimated || p.Plan.DurationSeconds != 180 {
		t.Fatalf("expected estimated plan, got %+v", p.Plan)
	}
}

func TestSelectorRejectsBeforeProbing(t *testing.T) {
	probe := &countingProbe{duration: 10}
	s := NewSelector(probe, DefaultSizing(), nil)
	_, err := s.Select(context.Background(), Request{Input: "photo-sequence.gif", Output: "x.gif", InputKind: media.KindImage, Operation: OpCompress, Params: Params{TargetMB: 1}})
	if !errors.Is(err, services.ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if probe.calls.Load() != 0 {
		t.Fatal("unsupported request must not probe")
	}
	if !strings.Contains(err.Error(), "photo-sequence.gif") {
		t.Fatalf("error should name the input: %v", err)
	}
}
