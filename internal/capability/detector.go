package capability

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"transmute/internal/logging"
)

const defaultProbeTimeout = 10 * time.Second

// Probe inspects the host for one source of capability evidence.
type Probe interface {
	Name() string
	Probe(ctx context.Context) (Class, error)
}

// Options configures a Detector.
type Options struct {
	// FFmpegBinary is asked for its acceleration backends.
	FFmpegBinary string
	// Mode pins the class when set to anything other than "auto" or "".
	Mode    string
	Timeout time.Duration
	Logger  *slog.Logger
	// Probes replaces the default engine and inventory probes.
	Probes []Probe
}

// Detector resolves the host capability once and caches it.
type Detector struct {
	once    sync.Once
	class   Class
	source  string
	probes  []Probe
	timeout time.Duration
	logger  *slog.Logger
	pinned  bool
}

// NewDetector builds a Detector. An unparseable Mode falls back to probing.
func NewDetector(opts Options) *Detector {
	d := &Detector{
		timeout: opts.Timeout,
		logger:  logging.NewComponentLogger(opts.Logger, "capability"),
		probes:  opts.Probes,
	}
	if d.timeout <= 0 {
		d.timeout = defaultProbeTimeout
	}
	if d.probes == nil {
		d.probes = []Probe{
			&EngineProbe{Binary: opts.FFmpegBinary},
			&InventoryProbe{},
		}
	}

	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	if mode != "" && mode != "auto" {
		class, err := ParseClass(mode)
		if err == nil {
			d.class = class
			d.source = "config"
			d.pinned = true
		} else {
			d.logger.Debug("ignoring invalid capability mode", logging.String("mode", mode), logging.Error(err))
		}
	}
	return d
}

// Static returns a Detector that always reports class without probing.
func Static(class Class) *Detector {
	return &Detector{class: class, source: "static", pinned: true, logger: logging.NewNop()}
}

// Detect returns the cached class, probing on the first call. Concurrent
// first calls block on a single probe. Cancelling ctx does not abort a probe
// already in flight, so one cancelled job cannot pin the process to None.
func (d *Detector) Detect(ctx context.Context) Class {
	if d.pinned {
		return d.class
	}
	d.once.Do(func() {
		d.class, d.source = d.probe(context.WithoutCancel(ctx))
		d.logger.Info("hardware capability resolved",
			logging.String("class", d.class.String()),
			logging.String("source", d.source),
		)
	})
	return d.class
}

// Source names the probe that produced the class ("config", "engine",
// "inventory", or "" when nothing matched). Valid after Detect.
func (d *Detector) Source() string {
	return d.source
}

func (d *Detector) probe(ctx context.Context) (Class, string) {
	for _, p := range d.probes {
		probeCtx, cancel := context.WithTimeout(ctx, d.timeout)
		class, err := p.Probe(probeCtx)
		cancel()
		if err != nil {
			d.logger.Debug("capability probe failed",
				logging.String("probe", p.Name()),
				logging.Error(err),
			)
			continue
		}
		if class.Accelerated() {
			return class, p.Name()
		}
	}
	return ClassNone, ""
}
