package jobs

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"transmute/internal/capability"
	"transmute/internal/logging"
	"transmute/internal/profile"
	"transmute/internal/safeoutput"
)

// fakeProcess replays lines, optionally writes the output, and optionally
// blocks until the launch context is cancelled.
type fakeProcess struct {
	ctx           context.Context
	lines         []string
	code          int
	err           error
	waitForCancel bool
}

func (p *fakeProcess) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range p.lines {
			if !yield(line) {
				return
			}
		}
		if p.waitForCancel {
			<-p.ctx.Done()
		}
	}
}

func (p *fakeProcess) Wait() (int, error) {
	return p.code, p.err
}

// fakeLauncher records launches. write, when set, is stored at the output
// path (the final argument) before the process is returned.
type fakeLauncher struct {
	mu       sync.Mutex
	calls    [][]string
	dirs     []string
	write    string
	lines    []string
	code     int
	err      error
	startErr error
	block    bool
}

func (l *fakeLauncher) Launch(ctx context.Context, dir string, args []string) (Process, error) {
	l.mu.Lock()
	l.calls = append(l.calls, append([]string(nil), args...))
	l.dirs = append(l.dirs, dir)
	l.mu.Unlock()
	if l.startErr != nil {
		return nil, l.startErr
	}
	if l.write != "" && len(args) > 0 {
		if err := os.WriteFile(args[len(args)-1], []byte(l.write), 0o644); err != nil {
			return nil, err
		}
	}
	return &fakeProcess{ctx: ctx, lines: l.lines, code: l.code, err: l.err, waitForCancel: l.block}, nil
}

func (l *fakeLauncher) launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func (l *fakeLauncher) lastArgs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.calls) == 0 {
		return nil
	}
	return l.calls[len(l.calls)-1]
}

type fakeDuration float64

func (d fakeDuration) Duration(context.Context, string) (float64, error) {
	return float64(d), nil
}

type countingCapability struct {
	mu    sync.Mutex
	class capability.Class
	calls int
}

func (c *countingCapability) Detect(context.Context) capability.Class {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.class
}

type memoryRecorder struct {
	mu      sync.Mutex
	results []Result
}

func (r *memoryRecorder) Record(_ context.Context, result Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

var progressLines = []string{
	"Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in':",
	"  Duration: 00:01:40.00, start: 0.000000, bitrate: 1000 kb/s",
	"frame=  10 fps=0.0 q=-1.0 size=256KiB time=00:00:50.00 bitrate=1.0kbits/s speed=2x",
	"frame=  20 fps=0.0 q=-1.0 size=512KiB time=00:01:40.00 bitrate=1.0kbits/s speed=2x",
}

type harness struct {
	controller *Controller
	launcher   *fakeLauncher
	capability *countingCapability
	recorder   *memoryRecorder
	dir        string
}

func newHarness(t *testing.T, launcher *fakeLauncher) *harness {
	t.Helper()
	h := &harness{
		launcher:   launcher,
		capability: &countingCapability{class: capability.ClassNone},
		recorder:   &memoryRecorder{},
		dir:        t.TempDir(),
	}
	controller, err := NewController(Deps{
		Capability: h.capability,
		Selector:   profile.NewSelector(fakeDuration(100), profile.DefaultSizing(), logging.NewNop()),
		Outputs:    safeoutput.New(filepath.Join(t.TempDir(), "locks"), ".backup", logging.NewNop()),
		Launcher:   launcher,
		Recorder:   h.recorder,
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.controller = controller
	return h
}

func (h *harness) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func assertNoBackup(t *testing.T, output string) {
	t.Helper()
	backup := safeoutput.New("", ".backup", nil).BackupPath(output)
	if _, err := os.Stat(backup); !os.IsNotExist(err) {
		t.Fatalf("backup %s should not exist (err=%v)", backup, err)
	}
}

// messageHook is a slog handler that runs fn the first time a record with
// message msg is logged. It lets tests act at a precise point inside a run.
type messageHook struct {
	msg  string
	fn   func()
	once sync.Once
}

func (h *messageHook) Enabled(context.Context, slog.Level) bool { return true }

func (h *messageHook) Handle(_ context.Context, r slog.Record) error {
	if r.Message == h.msg {
		h.once.Do(h.fn)
	}
	return nil
}

func (h *messageHook) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *messageHook) WithGroup(string) slog.Handler      { return h }

const noDurationMessage = "engine never announced a duration; progress was unavailable"
