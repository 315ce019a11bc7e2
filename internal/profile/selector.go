package profile

import (
	"context"
	"log/slog"

	"transmute/internal/logging"
)

// DurationProbe reports a media file's duration in seconds.
type DurationProbe interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Selector chooses profiles, probing durations for compress requests.
type Selector struct {
	probe  DurationProbe
	sizing Sizing
	logger *slog.Logger
}

// NewSelector constructs a Selector. probe may be nil, in which case every
// compress request uses the estimated duration.
func NewSelector(probe DurationProbe, sizing Sizing, logger *slog.Logger) *Selector {
	return &Selector{
		probe:  probe,
		sizing: sizing.withDefaults(),
		logger: logging.NewComponentLogger(logger, "profile"),
	}
}

// Select builds the profile for req.
func (s *Selector) Select(ctx context.Context, req Request) (Profile, error) {
	if err := Check(req); err != nil {
		return Profile{}, err
	}

	var duration float64
	if req.Operation == OpCompress && s.probe != nil {
		d, err := s.probe.Duration(ctx, req.Input)
		if err != nil {
			s.logger.Debug("duration probe failed; estimating bitrate from target size",
				logging.String("input", req.Input),
				logging.Error(err),
			)
		} else {
			duration = d
		}
	}

	profile, err := Build(req, duration, s.sizing)
	if err != nil {
		return Profile{}, err
	}
	if profile.Plan != nil {
		logger := logging.WithContext(ctx, s.logger)
		logger.Info("compression plan",
			logging.Int("video_kbps", profile.Plan.VideoKbps),
			logging.Int("audio_kbps", profile.Plan.AudioKbps),
			logging.String("quality", string(profile.Plan.Quality)),
			logging.Float64("duration_seconds", profile.Plan.DurationSeconds),
			logging.Bool("estimated", profile.Plan.Estimated),
			logging.String("encoder", profile.Encoder),
		)
	}
	return profile, nil
}
