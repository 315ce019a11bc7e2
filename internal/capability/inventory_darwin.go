//go:build darwin

package capability

import (
	"context"
	"strings"
)

func listAdapters(ctx context.Context) ([]string, error) {
	out, err := execOutput(ctx, "system_profiler", "SPDisplaysDataType")
	if err != nil {
		return nil, err
	}
	return parseSystemProfiler(string(out)), nil
}

// parseSystemProfiler keeps the "Chipset Model:" values.
func parseSystemProfiler(output string) []string {
	var adapters []string
	for _, line := range strings.Split(output, "\n") {
		if _, model, ok := strings.Cut(line, "Chipset Model:"); ok {
			if model = strings.TrimSpace(model); model != "" {
				adapters = append(adapters, model)
			}
		}
	}
	return adapters
}
