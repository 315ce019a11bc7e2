package main

import (
	"context"
	"errors"
	"fmt"

	"transmute/internal/services"
)

var errCancelled = fmt.Errorf("interrupted: %w", context.Canceled)

type jobsFailedError struct {
	failed int
	total  int
}

func (e *jobsFailedError) Error() string {
	if e.total == 1 {
		return "job failed"
	}
	return fmt.Sprintf("%d of %d jobs failed", e.failed, e.total)
}

// exitCode maps command errors to process exit statuses: 2 for rejected
// input, 130 for interruption, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrUnsupportedOperation):
		return 2
	default:
		return 1
	}
}
