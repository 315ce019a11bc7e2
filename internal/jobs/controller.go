package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"transmute/internal/capability"
	"transmute/internal/logging"
	"transmute/internal/profile"
	"transmute/internal/safeoutput"
	"transmute/internal/services"
)

// ErrJobInFlight is returned when Submit is called while a job is running.
var ErrJobInFlight = errors.New("a job is already in flight")

// CapabilitySource reports the host acceleration class.
type CapabilitySource interface {
	Detect(ctx context.Context) capability.Class
}

// ProfileSelector builds engine arguments for a request.
type ProfileSelector interface {
	Select(ctx context.Context, req profile.Request) (profile.Profile, error)
}

// OutputGuard protects output files across a run.
type OutputGuard interface {
	Prepare(ctx context.Context, output string) (*safeoutput.Record, error)
	MarkStarted(record *safeoutput.Record)
	Commit(record *safeoutput.Record) error
	Rollback(record *safeoutput.Record) error
}

// Recorder persists finished jobs.
type Recorder interface {
	Record(ctx context.Context, result Result) error
}

// Deps wires a Controller. Recorder is optional; the others are required.
type Deps struct {
	Capability CapabilitySource
	Selector   ProfileSelector
	Outputs    OutputGuard
	Launcher   Launcher
	Recorder   Recorder
	Logger     *slog.Logger
}

// Callbacks receive job events on the worker goroutine.
type Callbacks struct {
	// OnProgress receives strictly increasing percentages; 100 is only
	// delivered on success.
	OnProgress func(percent int)
	// OnCompletion is invoked exactly once with the final result.
	OnCompletion func(Result)
}

// Result is a finished job.
type Result struct {
	ID        string
	Spec      Spec
	Operation profile.Operation
	Input     string
	State     State
	Output    string
	ExitCode  int
	// Err is nil when the job succeeded or was cancelled.
	Err      error
	Warnings []error
	Elapsed  time.Duration
	Encoder  string
	Started  time.Time
}

// Controller runs one job at a time.
type Controller struct {
	deps   Deps
	runner *Runner
	logger *slog.Logger

	mu      sync.Mutex
	current *Handle
}

// NewController constructs a Controller.
func NewController(deps Deps) (*Controller, error) {
	switch {
	case deps.Selector == nil:
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "new controller", "profile selector is required", nil)
	case deps.Outputs == nil:
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "new controller", "output guard is required", nil)
	case deps.Launcher == nil:
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "new controller", "engine launcher is required", nil)
	}
	if deps.Capability == nil {
		deps.Capability = capability.Static(capability.ClassNone)
	}
	logger := logging.NewComponentLogger(deps.Logger, "jobs")
	return &Controller{
		deps:   deps,
		runner: NewRunner(deps.Launcher, deps.Logger),
		logger: logger,
	}, nil
}

// Submit validates spec and starts it on a worker goroutine. Validation
// failures return ErrUnsupportedOperation or ErrValidation without spawning
// anything. Cancelling ctx cancels the job.
func (c *Controller) Submit(ctx context.Context, spec Spec, cb Callbacks) (*Handle, error) {
	req, err := request(spec)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && !c.current.finished() {
		return nil, ErrJobInFlight
	}

	id := uuid.NewString()
	jobCtx := services.WithJobID(ctx, id)
	jobCtx = services.WithOperation(jobCtx, string(req.Operation))
	jobCtx, cancel := context.WithCancel(jobCtx)

	h := &Handle{
		id:      id,
		spec:    spec,
		output:  req.Output,
		tracker: newTracker(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	c.current = h
	go c.execute(jobCtx, h, req, cb)
	return h, nil
}

func (c *Controller) execute(ctx context.Context, h *Handle, req profile.Request, cb Callbacks) {
	defer h.cancel()
	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()
	result := Result{
		ID:        h.id,
		Spec:      h.spec,
		Operation: req.Operation,
		Input:     req.Input,
		Output:    req.Output,
		Started:   started,
	}
	logger.Info("job started",
		logging.String("input", req.Input),
		logging.String("output", req.Output),
	)

	complete := func(state State) {
		result.State = state
		result.Elapsed = time.Since(started)
		if result.State == StateSucceeded {
			h.report(cb, 100)
		}
		c.logCompletion(logger, result)
		h.setResult(result)
		if cb.OnCompletion != nil {
			cb.OnCompletion(result)
		}
		if c.deps.Recorder != nil {
			if err := c.deps.Recorder.Record(context.WithoutCancel(ctx), result); err != nil {
				logging.WarnWithContext(logger, "failed to record job history", "history_write_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "job is missing from history"),
				)
			}
		}
		close(h.done)
	}
	end := func(state State) {
		final, err := h.tracker.settle(state)
		if err != nil {
			logger.Error("job state transition rejected", logging.Error(err))
		}
		if final == StateCancelled {
			result.Err = nil
		}
		complete(final)
	}
	fail := func(err error) {
		if ctx.Err() != nil {
			end(StateCancelled)
			return
		}
		result.Err = err
		end(StateFailed)
	}

	if ctx.Err() != nil {
		end(StateCancelled)
		return
	}

	if req.Operation == profile.OpCompress {
		req.Capability = c.deps.Capability.Detect(ctx)
	}
	prof, err := c.deps.Selector.Select(ctx, req)
	if err != nil {
		fail(err)
		return
	}
	result.Encoder = prof.Encoder
	if ctx.Err() != nil {
		end(StateCancelled)
		return
	}

	record, err := c.deps.Outputs.Prepare(ctx, req.Output)
	if err != nil {
		fail(err)
		return
	}
	if record.Warning != nil {
		result.Warnings = append(result.Warnings, record.Warning)
	}

	run := c.runner.run(ctx, h.tracker, prof, func(pct int) { h.report(cb, pct) }, func() {
		c.deps.Outputs.MarkStarted(record)
	})
	result.ExitCode = run.ExitCode
	result.Err = run.Err

	if run.State == StateSucceeded {
		if err := c.deps.Outputs.Commit(record); err != nil {
			result.Warnings = append(result.Warnings, err)
		}
	} else if err := c.deps.Outputs.Rollback(record); err != nil {
		result.Warnings = append(result.Warnings, err)
	}
	complete(run.State)
}

func (c *Controller) logCompletion(logger *slog.Logger, result Result) {
	attrs := []logging.Attr{
		logging.String("state", string(result.State)),
		logging.Duration("elapsed", result.Elapsed.Round(time.Millisecond)),
		logging.String("output", result.Output),
	}
	for _, w := range result.Warnings {
		logging.WarnWithContext(logger, "job warning", "job_warning",
			logging.Error(w),
			logging.String(logging.FieldErrorKind, services.Kind(w)),
			logging.String(logging.FieldImpact, "output protection was incomplete"),
			logging.String(logging.FieldErrorHint, "check free space and permissions beside the output"),
		)
	}
	switch result.State {
	case StateSucceeded:
		logger.Info("job succeeded", logging.Args(append(attrs, logging.String("encoder", result.Encoder))...)...)
	case StateCancelled:
		logger.Info("job cancelled", logging.Args(attrs...)...)
	default:
		logging.ErrorWithContext(logger, "job failed", "job_failed", append(attrs,
			logging.Int("exit_code", result.ExitCode),
			logging.String(logging.FieldErrorKind, services.Kind(result.Err)),
			logging.Error(result.Err),
		)...)
	}
}

// Handle observes and controls a submitted job.
type Handle struct {
	id      string
	spec    Spec
	output  string
	tracker *tracker
	percent atomic.Int32

	cancel     context.CancelFunc
	cancelOnce sync.Once

	done   chan struct{}
	mu     sync.Mutex
	result Result
}

// ID returns the job's UUID.
func (h *Handle) ID() string { return h.id }

// Output returns the resolved output path.
func (h *Handle) Output() string { return h.output }

// State returns the current state.
func (h *Handle) State() State { return h.tracker.current() }

// Percentage returns the last reported progress.
func (h *Handle) Percentage() int { return int(h.percent.Load()) }

// Cancel requests cancellation. Calls after the first are no-ops.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(h.cancel)
}

// Done is closed once the job has completed and OnCompletion has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the job completes and returns its result.
func (h *Handle) Wait() Result {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

func (h *Handle) finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Handle) setResult(result Result) {
	h.mu.Lock()
	h.result = result
	h.mu.Unlock()
}

func (h *Handle) report(cb Callbacks, pct int) {
	if int32(pct) <= h.percent.Load() {
		return
	}
	h.percent.Store(int32(pct))
	if cb.OnProgress != nil {
		cb.OnProgress(pct)
	}
}
