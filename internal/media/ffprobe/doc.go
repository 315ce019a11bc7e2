// Package ffprobe runs read-only ffprobe queries against media files.
//
// Compression sizing needs the source duration and which streams are present.
// Inspect decodes the JSON report, and Prober wraps it with a per-call timeout
// so a hung probe never stalls a job. Probe errors are wrapped with
// services.ErrProbeFailure; callers decide whether to degrade or abort.
package ffprobe
