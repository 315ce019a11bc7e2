// Package capability detects which hardware video encoder family the host can
// use.
//
// A Detector probes once per instance and caches the answer. The engine is
// asked first for its acceleration backends; when that yields nothing the
// host's graphics adapters are inventoried. Probe failures are logged at debug
// level and degrade to ClassNone, since hardware encoding is an optimization
// and never a requirement for a job to run.
package capability
