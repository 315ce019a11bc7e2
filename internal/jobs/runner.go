package jobs

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"path/filepath"
	"time"

	"transmute/internal/engine"
	"transmute/internal/logging"
	"transmute/internal/profile"
	"transmute/internal/progress"
	"transmute/internal/services"
)

// Process is a launched engine run.
type Process interface {
	Lines() iter.Seq[string]
	Wait() (int, error)
}

// Launcher starts the engine. Cancelling ctx must stop the process.
type Launcher interface {
	Launch(ctx context.Context, dir string, args []string) (Process, error)
}

// EngineLauncher adapts *engine.Engine to Launcher.
type EngineLauncher struct {
	Engine *engine.Engine
}

// Launch starts the engine with args in dir.
func (l EngineLauncher) Launch(ctx context.Context, dir string, args []string) (Process, error) {
	proc, err := l.Engine.Start(ctx, dir, args)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

// RunResult is the outcome of one engine run.
type RunResult struct {
	State    State
	ExitCode int
	// Err is nil for Succeeded and Cancelled.
	Err     error
	Elapsed time.Duration
}

// Runner executes profiles and translates process outcomes into states.
type Runner struct {
	launcher Launcher
	logger   *slog.Logger
}

// NewRunner constructs a Runner.
func NewRunner(launcher Launcher, logger *slog.Logger) *Runner {
	return &Runner{
		launcher: launcher,
		logger:   logging.NewComponentLogger(logger, "runner"),
	}
}

// Run launches prof and blocks until the engine exits. onProgress receives
// strictly increasing percentages below 100. Cancelling ctx stops the engine
// and yields StateCancelled.
func (r *Runner) Run(ctx context.Context, prof profile.Profile, onProgress func(int)) RunResult {
	return r.run(ctx, newTracker(), prof, onProgress, nil)
}

// run drives states through t. started fires once the process exists, which
// is the earliest point the output may have been touched.
func (r *Runner) run(ctx context.Context, t *tracker, prof profile.Profile, onProgress func(int), started func()) RunResult {
	logger := logging.WithContext(ctx, r.logger)
	begin := time.Now()
	finish := func(state State, code int, err error) RunResult {
		if ctx.Err() != nil {
			t.beginCancel()
		}
		final, terr := t.settle(state)
		if terr != nil {
			logger.Error("job state transition rejected", logging.Error(terr))
		}
		if final == StateCancelled && state != StateCancelled {
			logger.Info("cancellation arrived before the engine result was recorded",
				logging.String("engine_state", string(state)),
				logging.Int("exit_code", code),
			)
			err = nil
		}
		return RunResult{State: final, ExitCode: code, Err: err, Elapsed: time.Since(begin)}
	}

	if ctx.Err() != nil {
		return finish(StateCancelled, 0, nil)
	}
	if len(prof.Args) == 0 {
		return finish(StateFailed, -1, services.Wrap(services.ErrValidation, "runner", "run", "empty argument profile", nil))
	}
	if err := t.transition(StateRunning); err != nil {
		return finish(StateFailed, -1, services.Wrap(services.ErrValidation, "runner", "run", "job not runnable", err))
	}

	dir := filepath.Dir(prof.Output)
	proc, err := r.launcher.Launch(ctx, dir, prof.Args)
	if err != nil {
		if ctx.Err() != nil {
			t.beginCancel()
			return finish(StateCancelled, 0, nil)
		}
		return finish(StateFailed, -1, err)
	}
	if started != nil {
		started()
	}
	stop := context.AfterFunc(ctx, func() {
		if t.beginCancel() {
			logger.Info("cancelling engine")
		}
	})
	defer stop()

	parser := progress.NewParser()
	sampler := logging.NewProgressSampler(10)
	for line := range proc.Lines() {
		pct, advanced := parser.Feed(line)
		if !advanced {
			continue
		}
		if onProgress != nil {
			onProgress(pct)
		}
		if sampler.ShouldLog(pct) {
			logger.Info("engine progress", logging.Int("percent", pct), logging.Duration("position", parser.Position()))
		}
	}
	code, waitErr := proc.Wait()

	if ctx.Err() != nil {
		t.beginCancel()
		logger.Info("engine stopped after cancellation", logging.Int("exit_code", code))
		return finish(StateCancelled, code, nil)
	}
	if waitErr != nil {
		if code == 0 {
			code = -1
		}
		var exitErr *engine.ExitError
		if errors.As(waitErr, &exitErr) {
			logging.ErrorWithContext(logger, "engine failed", "engine_failure",
				logging.Int("exit_code", code),
				logging.String("category", string(exitErr.Category)),
				logging.String(logging.FieldErrorHint, exitErr.Hint),
				logging.Error(waitErr),
			)
		}
		return finish(StateFailed, code, waitErr)
	}
	if code != 0 {
		return finish(StateFailed, code, engine.NewExitError(code, nil))
	}
	if parser.Duration() == 0 {
		logger.Debug("engine never announced a duration; progress was unavailable")
	}
	return finish(StateSucceeded, 0, nil)
}
