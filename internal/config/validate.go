package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCapability(); err != nil {
		return err
	}
	if err := c.validateCompress(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCapability() error {
	switch c.Capability.Mode {
	case CapabilityAuto, CapabilityNone, CapabilityNVIDIA, CapabilityIntel, CapabilityAMD:
		return nil
	default:
		return fmt.Errorf("capability.mode %q is invalid (expected auto, none, nvidia, intel, or amd)", c.Capability.Mode)
	}
}

func (c *Config) validateCompress() error {
	if c.Compress.SafetyFactor <= 0 || c.Compress.SafetyFactor > 1 {
		return errors.New("compress.safety_factor must be in (0, 1]")
	}
	if c.Compress.VideoShare <= 0 || c.Compress.VideoShare >= 1 {
		return errors.New("compress.video_share must be in (0, 1)")
	}
	if c.Compress.AudioMinKbps <= 0 {
		return errors.New("compress.audio_min_kbps must be positive")
	}
	if c.Compress.AudioMaxKbps < c.Compress.AudioMinKbps {
		return errors.New("compress.audio_max_kbps must be >= compress.audio_min_kbps")
	}
	if c.Compress.FallbackDurationSeconds <= 0 {
		return errors.New("compress.fallback_duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.ContainsAny(c.Output.BackupSuffix, `/\`) {
		return fmt.Errorf("output.backup_suffix %q must not contain path separators", c.Output.BackupSuffix)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is invalid (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is invalid (expected debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}
