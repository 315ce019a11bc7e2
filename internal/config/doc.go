// Package config loads, normalizes, and validates transmute configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRANSMUTE_FFMPEG. The Config type centralizes every knob the job orchestrator
// and CLI need: engine binaries, capability overrides, compression sizing
// defaults, and where job state, locks, and logs live.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
