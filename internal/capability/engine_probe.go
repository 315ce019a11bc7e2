package capability

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"transmute/internal/procattr"
)

// commandRunner executes a probe command and returns its standard output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	procattr.Hide(cmd)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// EngineProbe asks the engine which acceleration backends it was built with.
type EngineProbe struct {
	Binary string
	run    commandRunner
}

func (p *EngineProbe) Name() string { return "engine" }

func (p *EngineProbe) Probe(ctx context.Context) (Class, error) {
	binary := strings.TrimSpace(p.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	run := p.run
	if run == nil {
		run = execOutput
	}
	out, err := run(ctx, binary, "-hide_banner", "-hwaccels")
	if err != nil {
		return ClassNone, err
	}
	return ParseHWAccels(string(out)), nil
}

// ParseHWAccels classifies the backend list printed by "ffmpeg -hwaccels".
// NVIDIA wins over Intel, which wins over AMD.
func ParseHWAccels(output string) Class {
	found := map[string]bool{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		found[line] = true
	}
	switch {
	case found["cuda"] || found["nvdec"]:
		return ClassNVIDIA
	case found["qsv"]:
		return ClassIntel
	case found["amf"]:
		return ClassAMD
	default:
		return ClassNone
	}
}
