package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"transmute/internal/logging"
	"transmute/internal/procattr"
	"transmute/internal/progress"
	"transmute/internal/services"
)

const (
	defaultKillGrace = 3 * time.Second
	tailSize         = 24
)

// Engine launches a transcoding binary.
type Engine struct {
	binary string
	grace  time.Duration
	logger *slog.Logger
}

// New constructs an Engine. grace bounds how long an interrupted process may
// run before it is killed.
func New(binary string, grace time.Duration, logger *slog.Logger) *Engine {
	if grace <= 0 {
		grace = defaultKillGrace
	}
	return &Engine{
		binary: strings.TrimSpace(binary),
		grace:  grace,
		logger: logging.NewComponentLogger(logger, "engine"),
	}
}

// Binary returns the configured executable.
func (e *Engine) Binary() string {
	return e.binary
}

// Process is a running engine invocation.
type Process struct {
	cmd    *exec.Cmd
	stderr io.ReadCloser
	logger *slog.Logger

	exited   chan struct{}
	waitOnce sync.Once
	code     int
	waitErr  error

	mu          sync.Mutex
	tail        []string
	interrupted bool
}

// Start launches the engine with args in dir. The process is interrupted when
// ctx is cancelled.
func (e *Engine) Start(ctx context.Context, dir string, args []string) (*Process, error) {
	if e.binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "start", "no engine binary configured", nil)
	}
	cmd := exec.Command(e.binary, args...)
	cmd.Dir = dir
	procattr.Detach(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "engine", "start", "attach stderr", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "engine", "start", fmt.Sprintf("launch %s", e.binary), err)
	}

	p := &Process{
		cmd:    cmd,
		stderr: stderr,
		logger: logging.WithContext(ctx, e.logger),
		exited: make(chan struct{}),
	}
	p.logger.Debug("engine started",
		logging.Int("pid", cmd.Process.Pid),
		logging.String("dir", dir),
		logging.String("args", strings.Join(args, " ")),
	)
	go p.watch(ctx, e.grace)
	return p, nil
}

func (p *Process) watch(ctx context.Context, grace time.Duration) {
	select {
	case <-p.exited:
		return
	case <-ctx.Done():
	}

	p.mu.Lock()
	p.interrupted = true
	p.mu.Unlock()
	if err := procattr.Interrupt(p.cmd.Process); err != nil {
		p.logger.Debug("interrupt engine", logging.Error(err))
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-p.exited:
	case <-timer.C:
		p.logger.Debug("engine ignored interrupt; killing", logging.Duration("grace", grace))
		if err := procattr.Kill(p.cmd.Process); err != nil {
			p.logger.Debug("kill engine", logging.Error(err))
		}
	}
}

// Lines yields the engine's diagnostic lines. Every line is also kept in a
// bounded tail used for failure summaries. Range over it from one goroutine
// only; Wait drains whatever the caller left unread.
func (p *Process) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range progress.Lines(p.stderr) {
			p.remember(line)
			if !yield(line) {
				return
			}
		}
	}
}

func (p *Process) remember(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || isStatsLine(trimmed) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tail) == tailSize {
		copy(p.tail, p.tail[1:])
		p.tail = p.tail[:tailSize-1]
	}
	p.tail = append(p.tail, trimmed)
}

// isStatsLine matches the periodic "frame= ... time= ..." status line.
func isStatsLine(line string) bool {
	return strings.HasPrefix(line, "frame=") || strings.HasPrefix(line, "size=") ||
		(strings.Contains(line, "time=") && strings.Contains(line, "speed="))
}

// Tail returns a copy of the most recent diagnostic lines.
func (p *Process) Tail() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.tail...)
}

// Interrupted reports whether cancellation reached the process.
func (p *Process) Interrupted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interrupted
}

// Wait drains any unread diagnostics, waits for exit, and returns the exit
// code. A non-zero exit yields *ExitError; other errors mean the process
// could not be waited on. Wait may be called more than once.
func (p *Process) Wait() (int, error) {
	p.waitOnce.Do(func() {
		for range p.Lines() {
		}
		err := p.cmd.Wait()
		close(p.exited)

		var exitErr *exec.ExitError
		switch {
		case err == nil:
			p.code = 0
		case errors.As(err, &exitErr):
			p.code = exitErr.ExitCode()
			p.waitErr = NewExitError(p.code, p.Tail())
		default:
			p.code = -1
			p.waitErr = services.Wrap(services.ErrExternalTool, "engine", "wait", "wait for engine", err)
		}
		p.logger.Debug("engine exited", logging.Int("exit_code", p.code), logging.Bool("interrupted", p.Interrupted()))
	})
	return p.code, p.waitErr
}
