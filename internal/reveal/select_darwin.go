package reveal

import (
	"context"
	"fmt"
	"os/exec"
)

func selectInFileManager(ctx context.Context, path string) error {
	if out, err := exec.CommandContext(ctx, "open", "-R", path).CombinedOutput(); err != nil {
		return fmt.Errorf("open -R: %w (%s)", err, out)
	}
	return nil
}
