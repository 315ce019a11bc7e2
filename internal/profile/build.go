package profile

import (
	"path/filepath"
	"slices"
)

// BaseArgs precede every invocation: no banner, no stdin, overwrite.
var BaseArgs = []string{"-hide_banner", "-nostdin", "-y"}

// command assembles arguments in engine order: global flags, pre-input
// flags, the primary input, extra inputs, output options, output path.
type command struct {
	req       Request
	preInput  []string
	extraIn   []string
	outputOpt []string
}

func (c *command) before(args ...string) { c.preInput = append(c.preInput, args...) }

func (c *command) input(args ...string) { c.extraIn = append(c.extraIn, args...) }

func (c *command) add(args ...string) { c.outputOpt = append(c.outputOpt, args...) }

func (c *command) args() []string {
	args := slices.Clone(BaseArgs)
	args = append(args, c.preInput...)
	args = append(args, "-i", c.req.Input)
	args = append(args, c.extraIn...)
	args = append(args, c.outputOpt...)
	return append(args, c.req.Output)
}

func (c *command) profile(hasVideo, hasAudio bool, encoder string) Profile {
	return Profile{Args: c.args(), Output: c.req.Output, HasVideo: hasVideo, HasAudio: hasAudio, Encoder: encoder}
}

func extOf(path string) string {
	return filepath.Ext(path)
}

// Build produces the profile for req. durationSeconds only matters for
// compress; zero or negative means unknown.
func Build(req Request, durationSeconds float64, sizing Sizing) (Profile, error) {
	if err := Check(req); err != nil {
		return Profile{}, err
	}
	cmd := &command{req: req}
	switch req.Operation {
	case OpMute:
		return buildMute(req, cmd), nil
	case OpResize:
		return buildResize(req, cmd), nil
	case OpCompress:
		return buildCompress(req, cmd, durationSeconds, sizing)
	default:
		return buildConvert(req, cmd), nil
	}
}
