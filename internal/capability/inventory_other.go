//go:build !linux && !windows && !darwin

package capability

import (
	"context"
	"errors"
)

func listAdapters(context.Context) ([]string, error) {
	return nil, errors.New("graphics inventory not supported on this platform")
}
