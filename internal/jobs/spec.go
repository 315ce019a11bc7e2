package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"transmute/internal/media"
	"transmute/internal/profile"
	"transmute/internal/services"
)

// Spec describes one requested transformation. Output may be empty, in
// which case it is derived from Input (Target supplies the extension for
// convert).
type Spec struct {
	Input     string
	Output    string
	Target    string
	Operation profile.Operation
	Params    profile.Params
}

// ResolveOutput returns the output path for s, deriving it from the input
// when s.Output is empty.
func ResolveOutput(s Spec) (string, error) {
	if out := strings.TrimSpace(s.Output); out != "" {
		return out, nil
	}
	switch s.Operation {
	case profile.OpConvert:
		if strings.TrimSpace(s.Target) == "" {
			return "", services.Wrap(services.ErrValidation, "jobs", "resolve output", "convert needs an output path or target format", nil)
		}
		return media.ConvertedPath(s.Input, s.Target), nil
	case profile.OpMute:
		return media.MutedPath(s.Input), nil
	case profile.OpResize:
		return media.ResizedPath(s.Input, s.Params.ScaleFactor), nil
	case profile.OpCompress:
		return media.CompressedPath(s.Input), nil
	default:
		return "", services.Wrap(services.ErrValidation, "jobs", "resolve output", fmt.Sprintf("unknown operation %q", s.Operation), nil)
	}
}

// request validates s and turns it into a profile request. Operation and
// kind compatibility is checked before the filesystem so unsupported
// combinations fail the same way whether or not the input exists.
func request(s Spec) (profile.Request, error) {
	if strings.TrimSpace(s.Input) == "" {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "input path is required", nil)
	}
	op, err := profile.ParseOperation(string(s.Operation))
	if err != nil {
		return profile.Request{}, err
	}
	s.Operation = op
	kind, err := media.KindOf(s.Input)
	if err != nil {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "classify input", err)
	}
	output, err := ResolveOutput(s)
	if err != nil {
		return profile.Request{}, err
	}
	input, err := filepath.Abs(s.Input)
	if err != nil {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "resolve input path", err)
	}
	output, err = filepath.Abs(output)
	if err != nil {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "resolve output path", err)
	}

	req := profile.Request{
		Input:     input,
		Output:    output,
		InputKind: kind,
		Operation: op,
		Params:    s.Params,
	}
	if err := profile.Check(req); err != nil {
		return profile.Request{}, err
	}
	if filepath.Ext(output) == "" {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "output path needs an extension", nil)
	}
	if samePath(input, output) {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "output must differ from input", nil)
	}

	info, err := os.Stat(input)
	if err != nil {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "input not readable", err)
	}
	if !info.Mode().IsRegular() {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", fmt.Sprintf("%s is not a regular file", input), nil)
	}
	dirInfo, err := os.Stat(filepath.Dir(output))
	if err != nil {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "output directory not accessible", err)
	}
	if !dirInfo.IsDir() {
		return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "output parent is not a directory", nil)
	}
	if outInfo, err := os.Stat(output); err == nil {
		if outInfo.IsDir() {
			return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "output path is a directory", nil)
		}
		if os.SameFile(info, outInfo) {
			return profile.Request{}, services.Wrap(services.ErrValidation, "jobs", "submit", "output must differ from input", nil)
		}
	}
	return req, nil
}

func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}
	// Windows and macOS filesystems are case-insensitive by default.
	return strings.EqualFold(a, b) && (runtime.GOOS == "windows" || runtime.GOOS == "darwin")
}
