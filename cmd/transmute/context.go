package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"transmute/internal/capability"
	"transmute/internal/config"
	"transmute/internal/deps"
	"transmute/internal/engine"
	"transmute/internal/history"
	"transmute/internal/jobs"
	"transmute/internal/logging"
	"transmute/internal/media/ffprobe"
	"transmute/internal/profile"
	"transmute/internal/reveal"
	"transmute/internal/safeoutput"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	logErr     error

	detectorOnce sync.Once
	detector     *capability.Detector

	historyStore *history.Store
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// ensureLogger writes to the log file, echoing to stderr with --verbose. The
// terminal otherwise belongs to the progress display.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logErr = err
			return
		}
		c.logger, c.logErr = logging.NewFromConfig(cfg, c.verbose())
	})
	return c.logger, c.logErr
}

func (c *commandContext) capabilityDetector(logger *slog.Logger) *capability.Detector {
	c.detectorOnce.Do(func() {
		cfg := c.configValue()
		c.detector = capability.NewDetector(capability.Options{
			FFmpegBinary: deps.ResolveTool(cfg.FFmpegBinary(), "ffmpeg"),
			Mode:         cfg.Capability.Mode,
			Timeout:      cfg.ProbeTimeout(),
			Logger:       logger,
		})
	})
	return c.detector
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) openHistory(ctx context.Context) (*history.Store, error) {
	if c.historyStore != nil {
		return c.historyStore, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		return nil, err
	}
	c.historyStore = store
	return store, nil
}

// newController wires the orchestrator from configuration.
func (c *commandContext) newController(cmd *cobra.Command) (*jobs.Controller, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	prober := ffprobe.NewProber(deps.ResolveTool(cfg.FFprobeBinary(), "ffprobe"), cfg.ProbeTimeout())
	sizing := profile.Sizing{
		SafetyFactor:            cfg.Compress.SafetyFactor,
		VideoShare:              cfg.Compress.VideoShare,
		AudioMinKbps:            cfg.Compress.AudioMinKbps,
		AudioMaxKbps:            cfg.Compress.AudioMaxKbps,
		FallbackDurationSeconds: float64(cfg.Compress.FallbackDurationSeconds),
	}
	eng := engine.New(deps.ResolveTool(cfg.FFmpegBinary(), "ffmpeg"), cfg.KillGrace(), logger)

	controllerDeps := jobs.Deps{
		Capability: c.capabilityDetector(logger),
		Selector:   profile.NewSelector(prober, sizing, logger),
		Outputs:    safeoutput.New(cfg.LockDir(), cfg.Output.BackupSuffix, logger),
		Launcher:   jobs.EngineLauncher{Engine: eng},
		Logger:     logger,
	}
	if cfg.History.Enabled {
		store, err := c.openHistory(cmd.Context())
		if err != nil {
			logging.WarnWithContext(logger, "job history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "jobs from this run will not be recorded"),
				logging.String(logging.FieldErrorHint, "delete the history database or set history.enabled = false"),
			)
		} else {
			controllerDeps.Recorder = history.Recorder{Store: store}
		}
	}
	controller, err := jobs.NewController(controllerDeps)
	if err != nil {
		return nil, nil, err
	}
	return controller, logger, nil
}

func (c *commandContext) revealer(logger *slog.Logger) reveal.FolderRevealer {
	return reveal.New(logger)
}

func (c *commandContext) close() error {
	var errs []error
	if c.historyStore != nil {
		errs = append(errs, c.historyStore.Close())
		c.historyStore = nil
	}
	return errors.Join(errs...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
