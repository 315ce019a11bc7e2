// Package procattr sets platform-specific attributes on child processes.
//
// Probes only need their console window hidden on Windows. The transcoding
// engine additionally runs in its own process group on unix so an interrupt
// reaches every process it spawns, and so terminal job-control signals aimed
// at transmute do not hit the engine twice.
package procattr
