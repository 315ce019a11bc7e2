package profile

import (
	"fmt"
	"math"
	"strconv"

	"transmute/internal/capability"
	"transmute/internal/media"
	"transmute/internal/services"
)

// Sizing holds the tunable compression defaults.
type Sizing struct {
	SafetyFactor            float64
	VideoShare              float64
	AudioMinKbps            int
	AudioMaxKbps            int
	FallbackDurationSeconds float64
}

// DefaultSizing returns the stock sizing: 95% of the target, 85/15 video and
// audio split, audio clamped to [32, 256] kbps, 180 s assumed duration.
func DefaultSizing() Sizing {
	return Sizing{
		SafetyFactor:            0.95,
		VideoShare:              0.85,
		AudioMinKbps:            32,
		AudioMaxKbps:            256,
		FallbackDurationSeconds: 180,
	}
}

func (s Sizing) withDefaults() Sizing {
	d := DefaultSizing()
	if s.SafetyFactor <= 0 || s.SafetyFactor > 1 {
		s.SafetyFactor = d.SafetyFactor
	}
	if s.VideoShare <= 0 || s.VideoShare >= 1 {
		s.VideoShare = d.VideoShare
	}
	if s.AudioMinKbps <= 0 {
		s.AudioMinKbps = d.AudioMinKbps
	}
	if s.AudioMaxKbps < s.AudioMinKbps {
		s.AudioMaxKbps = max(d.AudioMaxKbps, s.AudioMinKbps)
	}
	if s.FallbackDurationSeconds <= 0 {
		s.FallbackDurationSeconds = d.FallbackDurationSeconds
	}
	return s
}

// Plan is the bitrate split derived for a compress job.
type Plan struct {
	BudgetBits      float64
	DurationSeconds float64
	// Estimated is true when the duration was unknown and the fallback
	// duration was assumed.
	Estimated bool
	VideoKbps int
	AudioKbps int
	Quality   Quality
}

// TotalKbps is the combined stream bitrate.
func (p Plan) TotalKbps() int {
	return p.VideoKbps + p.AudioKbps
}

// Quality is the encoder speed/efficiency step chosen from the video bitrate.
type Quality string

const (
	QualityFast     Quality = "fast"
	QualityMedium   Quality = "medium"
	QualitySlow     Quality = "slow"
	QualityVerySlow Quality = "veryslow"
)

// QualityFor steps encoder effort up as the bitrate shrinks.
func QualityFor(videoKbps int) Quality {
	switch {
	case videoKbps >= 2500:
		return QualityFast
	case videoKbps >= 1000:
		return QualityMedium
	case videoKbps >= 500:
		return QualitySlow
	default:
		return QualityVerySlow
	}
}

// minVideoKbps is the floor below which a video encode is not attempted.
const minVideoKbps = 16

// PlanBitrates divides the derated budget for targetMB across the streams.
// The returned plan always satisfies (video+audio) kbps x duration <= budget.
func PlanBitrates(kind media.Kind, durationSeconds, targetMB float64, sizing Sizing) (Plan, error) {
	sizing = sizing.withDefaults()
	plan := Plan{
		BudgetBits:      targetMB * 1024 * 1024 * 8 * sizing.SafetyFactor,
		DurationSeconds: durationSeconds,
	}
	if durationSeconds <= 0 || math.IsNaN(durationSeconds) || math.IsInf(durationSeconds, 0) {
		plan.DurationSeconds = sizing.FallbackDurationSeconds
		plan.Estimated = true
	}
	totalKbps := plan.BudgetBits / plan.DurationSeconds / 1000

	clampAudio := func(kbps float64) int {
		return int(math.Floor(math.Min(math.Max(kbps, float64(sizing.AudioMinKbps)), float64(sizing.AudioMaxKbps))))
	}

	if kind == media.KindAudio {
		if totalKbps < float64(sizing.AudioMinKbps) {
			return Plan{}, tooSmall(targetMB, plan, totalKbps)
		}
		plan.AudioKbps = clampAudio(totalKbps)
		plan.Quality = QualityFor(0)
		return plan, nil
	}

	plan.AudioKbps = clampAudio(totalKbps * (1 - sizing.VideoShare))
	plan.VideoKbps = int(math.Floor(totalKbps - float64(plan.AudioKbps)))
	if plan.VideoKbps < minVideoKbps {
		return Plan{}, tooSmall(targetMB, plan, totalKbps)
	}
	plan.Quality = QualityFor(plan.VideoKbps)
	return plan, nil
}

func tooSmall(targetMB float64, plan Plan, totalKbps float64) error {
	return services.Wrap(services.ErrValidation, "profile", "compress",
		fmt.Sprintf("target %.2f MB allows only %.0f kbps over %.0f s", targetMB, totalKbps, plan.DurationSeconds), nil)
}

func kbps(v int) string {
	return strconv.Itoa(v) + "k"
}

type hardwareEncoder struct {
	hwaccel string
	encoder string
	presets map[Quality][]string
}

var hardwareEncoders = map[capability.Class]hardwareEncoder{
	capability.ClassNVIDIA: {
		hwaccel: "cuda",
		encoder: "h264_nvenc",
		presets: map[Quality][]string{
			QualityFast:     {"-preset", "p2"},
			QualityMedium:   {"-preset", "p4"},
			QualitySlow:     {"-preset", "p6"},
			QualityVerySlow: {"-preset", "p7"},
		},
	},
	capability.ClassIntel: {
		hwaccel: "qsv",
		encoder: "h264_qsv",
		presets: map[Quality][]string{
			QualityFast:     {"-preset", "fast"},
			QualityMedium:   {"-preset", "medium"},
			QualitySlow:     {"-preset", "slow"},
			QualityVerySlow: {"-preset", "veryslow"},
		},
	},
	capability.ClassAMD: {
		hwaccel: "auto",
		encoder: "h264_amf",
		presets: map[Quality][]string{
			QualityFast:     {"-quality", "speed"},
			QualityMedium:   {"-quality", "balanced"},
			QualitySlow:     {"-quality", "quality"},
			QualityVerySlow: {"-quality", "quality"},
		},
	},
}

func rateControl(videoKbps int) []string {
	return []string{"-b:v", kbps(videoKbps), "-maxrate", kbps(videoKbps), "-bufsize", kbps(2 * videoKbps)}
}

var compressAudioEncoders = map[string]string{
	".mp3":  "libmp3lame",
	".m4a":  "aac",
	".aac":  "aac",
	".ogg":  "libvorbis",
	".opus": "libopus",
	".wma":  "wmav2",
	".ac3":  "ac3",
}

func buildCompress(req Request, cmd *command, durationSeconds float64, sizing Sizing) (Profile, error) {
	// Audio output drops any video stream, so the whole budget goes to audio.
	kind := req.InputKind
	if req.outputKind() == media.KindAudio {
		kind = media.KindAudio
	}
	plan, err := PlanBitrates(kind, durationSeconds, req.Params.TargetMB, sizing)
	if err != nil {
		return Profile{}, err
	}
	ext := req.OutputExt()

	if kind == media.KindAudio {
		encoder, ok := compressAudioEncoders[ext]
		if !ok {
			encoder = "aac"
		}
		cmd.add("-vn", "-c:a", encoder, "-b:a", kbps(plan.AudioKbps))
		p := cmd.profile(false, true, encoder)
		p.Plan = &plan
		return p, nil
	}

	var encoder string
	switch ext {
	case ".webm":
		encoder = "libvpx-vp9"
		cmd.add("-c:v", encoder)
		cmd.add(rateControl(plan.VideoKbps)...)
		cmd.add("-deadline", "good", "-cpu-used", vp9Speed(plan.Quality))
		cmd.add("-c:a", "libopus", "-b:a", kbps(plan.AudioKbps))
	case ".wmv":
		encoder = "wmv2"
		cmd.add("-c:v", encoder)
		cmd.add(rateControl(plan.VideoKbps)...)
		cmd.add("-c:a", "wmav2", "-b:a", kbps(plan.AudioKbps))
	case ".avi":
		encoder = "mpeg4"
		cmd.add("-c:v", encoder)
		cmd.add(rateControl(plan.VideoKbps)...)
		cmd.add("-c:a", "mp3", "-b:a", kbps(plan.AudioKbps))
	default:
		if hw, ok := hardwareEncoders[req.Capability]; ok {
			encoder = hw.encoder
			cmd.before("-hwaccel", hw.hwaccel)
			cmd.add("-c:v", encoder)
			cmd.add(hw.presets[plan.Quality]...)
		} else {
			encoder = "libx264"
			cmd.add("-c:v", encoder, "-preset", string(plan.Quality))
		}
		cmd.add(rateControl(plan.VideoKbps)...)
		cmd.add("-c:a", "aac", "-b:a", kbps(plan.AudioKbps))
		switch ext {
		case ".mp4", ".mov":
			cmd.add("-movflags", "+faststart")
		case ".ts":
			cmd.add("-f", "mpegts")
		}
	}

	p := cmd.profile(true, true, encoder)
	p.Plan = &plan
	return p, nil
}

func vp9Speed(q Quality) string {
	switch q {
	case QualityFast:
		return "4"
	case QualityMedium:
		return "2"
	default:
		return "1"
	}
}
