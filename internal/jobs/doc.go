// Package jobs orchestrates one media transformation at a time.
//
// A Controller validates a Spec synchronously, then hands the job to a
// worker goroutine that selects an argument profile, protects the output
// with a backup, runs the engine through a Runner, and commits or rolls back
// depending on the terminal State. Callers observe the job through the
// returned Handle and the Callbacks they supplied. Cancellation is a terminal
// state, not an error.
package jobs
