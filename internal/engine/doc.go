// Package engine supervises one transcoding subprocess.
//
// Start launches the binary in its own process group with the output's
// directory as working directory and exposes the diagnostic stream as a lazy
// line sequence. Cancelling the start context sends an interrupt so the
// engine can finalize or abandon its output cleanly, and escalates to a kill
// when the grace period elapses. Non-zero exits are reported as *ExitError,
// which carries a classified summary of the last diagnostic lines.
package engine
