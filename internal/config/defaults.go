package config

const (
	defaultStateDir             = "~/.local/share/transmute"
	defaultLogDir               = "~/.local/share/transmute/logs"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultProbeTimeoutSeconds  = 15
	defaultKillGraceSeconds     = 3
	defaultCapabilityMode       = CapabilityAuto
	defaultSafetyFactor         = 0.95
	defaultVideoShare           = 0.85
	defaultAudioMinKbps         = 32
	defaultAudioMaxKbps         = 256
	defaultFallbackDurationSecs = 180
	defaultBackupSuffix         = ".backup"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Capability modes accepted by capability.mode.
const (
	CapabilityAuto   = "auto"
	CapabilityNone   = "none"
	CapabilityNVIDIA = "nvidia"
	CapabilityIntel  = "intel"
	CapabilityAMD    = "amd"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Engine: Engine{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
			KillGraceSeconds:    defaultKillGraceSeconds,
		},
		Capability: Capability{
			Mode: defaultCapabilityMode,
		},
		Compress: Compress{
			SafetyFactor:            defaultSafetyFactor,
			VideoShare:              defaultVideoShare,
			AudioMinKbps:            defaultAudioMinKbps,
			AudioMaxKbps:            defaultAudioMaxKbps,
			FallbackDurationSeconds: defaultFallbackDurationSecs,
		},
		Output: Output{
			BackupSuffix: defaultBackupSuffix,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
