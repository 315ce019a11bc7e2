//go:build !linux && !darwin && !windows

package reveal

import (
	"context"
	"errors"
)

func selectInFileManager(context.Context, string) error {
	return errors.New("no file manager integration on this platform")
}
