//go:build windows

package capability

import (
	"context"
	"strings"
)

func listAdapters(ctx context.Context) ([]string, error) {
	out, err := execOutput(ctx, "wmic", "path", "win32_VideoController", "get", "name")
	if err != nil {
		return nil, err
	}
	return parseWMIC(string(out)), nil
}

func parseWMIC(output string) []string {
	var adapters []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "name") {
			continue
		}
		adapters = append(adapters, line)
	}
	return adapters
}
