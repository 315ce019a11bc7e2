package profile

import (
	"fmt"
	"path/filepath"
	"strings"

	"transmute/internal/capability"
	"transmute/internal/media"
	"transmute/internal/services"
)

// Operation names a job type.
type Operation string

const (
	OpConvert  Operation = "convert"
	OpMute     Operation = "mute"
	OpResize   Operation = "resize"
	OpCompress Operation = "compress"
)

// Operations lists every supported operation.
var Operations = []Operation{OpConvert, OpMute, OpResize, OpCompress}

// ParseOperation validates a user-supplied operation name.
func ParseOperation(value string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(value)))
	switch op {
	case OpConvert, OpMute, OpResize, OpCompress:
		return op, nil
	default:
		return "", services.Wrap(services.ErrValidation, "profile", "parse operation", fmt.Sprintf("unknown operation %q", value), nil)
	}
}

// MaxScaleFactor bounds resize requests.
const MaxScaleFactor = 4.0

// Params carries operation-specific settings.
type Params struct {
	// ScaleFactor multiplies both image dimensions (resize).
	ScaleFactor float64
	// TargetMB is the output size ceiling in MiB (compress).
	TargetMB float64
}

// Request is everything profile selection depends on.
type Request struct {
	Input      string
	Output     string
	InputKind  media.Kind
	Operation  Operation
	Params     Params
	Capability capability.Class
}

// OutputExt returns the lowercased output extension.
func (r Request) OutputExt() string {
	return media.NormalizeExt(filepath.Ext(r.Output))
}

// outputKind classifies the output extension, reporting KindUnknown for
// extensions outside the table.
func (r Request) outputKind() media.Kind {
	kind, err := media.KindForExtension(r.OutputExt())
	if err != nil {
		return media.KindUnknown
	}
	return kind
}

// Profile is the argument list for one engine invocation plus a description
// of what it produces.
type Profile struct {
	Args []string
	// Output is the file the engine writes; its directory is the engine's
	// working directory.
	Output   string
	HasVideo bool
	HasAudio bool
	// Encoder names the primary encoder, e.g. "libx264" or "h264_nvenc".
	Encoder string
	// Plan is set for compress profiles.
	Plan *Plan
}

// Check reports whether req is a supported combination without building
// arguments. It never touches the filesystem.
func Check(req Request) error {
	if req.InputKind == media.KindUnknown {
		return services.Wrap(services.ErrValidation, "profile", string(req.Operation), "input media kind is unknown", nil)
	}
	out := req.outputKind()

	switch req.Operation {
	case OpConvert:
		switch {
		case req.InputKind == media.KindImage && (out == media.KindAudio || out == media.KindVideo):
			return unsupported(req, "an image cannot become "+out.String())
		case req.InputKind == media.KindAudio && out == media.KindImage:
			return unsupported(req, "audio cannot become an image")
		case req.InputKind == media.KindVideo && out == media.KindImage && req.OutputExt() != ".gif":
			return unsupported(req, "video can only become an animated gif, not a still image")
		}
	case OpMute:
		if req.InputKind == media.KindImage {
			return unsupported(req, "images have no audio to mute")
		}
	case OpResize:
		if req.InputKind != media.KindImage {
			return unsupported(req, "only images can be resized")
		}
		if f := req.Params.ScaleFactor; f <= 0 || f > MaxScaleFactor {
			return services.Wrap(services.ErrValidation, "profile", "resize",
				fmt.Sprintf("scale factor %g must be in (0, %g]", f, MaxScaleFactor), nil)
		}
	case OpCompress:
		if req.InputKind == media.KindImage {
			return unsupported(req, "only audio and video can be compressed")
		}
		if out == media.KindImage {
			return unsupported(req, "a size target needs an audio or video output")
		}
		if req.Params.TargetMB <= 0 {
			return services.Wrap(services.ErrValidation, "profile", "compress", "target size must be greater than zero", nil)
		}
		if media.IsLosslessAudio(req.OutputExt()) {
			return services.Wrap(services.ErrValidation, "profile", "compress",
				fmt.Sprintf("%s output cannot honour a size target", req.OutputExt()), nil)
		}
	default:
		return services.Wrap(services.ErrValidation, "profile", "check", fmt.Sprintf("unknown operation %q", req.Operation), nil)
	}
	return nil
}

func unsupported(req Request, message string) error {
	return services.Wrap(services.ErrUnsupportedOperation, "profile", string(req.Operation),
		fmt.Sprintf("%s (%s)", message, filepath.Base(req.Input)), nil)
}
