package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEngine()
	c.normalizeCapability()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEngine() {
	if value, ok := os.LookupEnv("TRANSMUTE_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Engine.FFmpegBinary = value
	}
	if value, ok := os.LookupEnv("TRANSMUTE_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Engine.FFprobeBinary = value
	}
	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	if c.Engine.FFmpegBinary == "" {
		c.Engine.FFmpegBinary = defaultFFmpegBinary
	}
	c.Engine.FFprobeBinary = strings.TrimSpace(c.Engine.FFprobeBinary)
	if c.Engine.FFprobeBinary == "" {
		c.Engine.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Engine.ProbeTimeoutSeconds <= 0 {
		c.Engine.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	if c.Engine.KillGraceSeconds <= 0 {
		c.Engine.KillGraceSeconds = defaultKillGraceSeconds
	}
}

func (c *Config) normalizeCapability() {
	c.Capability.Mode = strings.ToLower(strings.TrimSpace(c.Capability.Mode))
	if c.Capability.Mode == "" {
		c.Capability.Mode = defaultCapabilityMode
	}
}

func (c *Config) normalizeOutput() {
	c.Output.BackupSuffix = strings.TrimSpace(c.Output.BackupSuffix)
	if c.Output.BackupSuffix == "" {
		c.Output.BackupSuffix = defaultBackupSuffix
	}
	if !strings.HasPrefix(c.Output.BackupSuffix, ".") {
		c.Output.BackupSuffix = "." + c.Output.BackupSuffix
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
