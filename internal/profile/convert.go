package profile

import (
	"strconv"

	"transmute/internal/media"
)

// animatedGIFFilter keeps dimensions even so palette generation never fails.
const animatedGIFFilter = "fps=15,scale=trunc(iw/2)*2:trunc(ih/2)*2:flags=lanczos"

var imageTable = map[string][]string{
	".webp": {"-quality", "90", "-compression_level", "6"},
	".jpg":  {"-quality", "95"},
	".jpeg": {"-quality", "95"},
	".png":  {"-compression_level", "9"},
	".tiff": {"-compression_algo", "lzw"},
	".bmp":  {"-pix_fmt", "rgb24"},
	".ico":  {"-vf", "scale=256:256"},
	".heic": {"-quality", "90"},
}

type audioSetting struct {
	encoder string
	args    []string
}

var audioTable = map[string]audioSetting{
	".mp3":  {"libmp3lame", []string{"-codec:a", "libmp3lame", "-q:a", "0"}},
	".m4a":  {"aac", []string{"-c:a", "aac", "-b:a", "256k"}},
	".flac": {"flac", []string{"-codec:a", "flac", "-compression_level", "12"}},
	".opus": {"libopus", []string{"-c:a", "libopus", "-b:a", "192k"}},
	".ogg":  {"libvorbis", []string{"-c:a", "libvorbis", "-q:a", "7"}},
	".wav":  {"pcm_s24le", []string{"-c:a", "pcm_s24le"}},
	".wma":  {"wmav2", []string{"-c:a", "wmav2", "-b:a", "256k"}},
	".aac":  {"aac", []string{"-c:a", "aac", "-b:a", "256k"}},
	".ac3":  {"ac3", []string{"-c:a", "ac3", "-b:a", "448k"}},
}

type videoSetting struct {
	encoder string
	video   []string
	audio   []string
	extra   []string
}

var videoTable = map[string]videoSetting{
	".mp4": {
		encoder: "libx264",
		video:   []string{"-c:v", "libx264", "-crf", "23", "-preset", "medium"},
		audio:   []string{"-c:a", "aac", "-b:a", "192k"},
		extra:   []string{"-movflags", "+faststart"},
	},
	".mkv": {
		encoder: "libx264",
		video:   []string{"-c:v", "libx264", "-crf", "21", "-preset", "slower"},
		audio:   []string{"-c:a", "libopus", "-b:a", "192k"},
	},
	".webm": {
		encoder: "libvpx-vp9",
		video:   []string{"-c:v", "libvpx-vp9", "-crf", "30", "-b:v", "0"},
		audio:   []string{"-c:a", "libopus", "-b:a", "128k"},
		extra:   []string{"-deadline", "good", "-cpu-used", "2"},
	},
	".avi": {
		encoder: "mpeg4",
		video:   []string{"-c:v", "mpeg4", "-qscale:v", "3"},
		audio:   []string{"-c:a", "mp3", "-q:a", "3"},
	},
	".wmv": {
		encoder: "wmv2",
		video:   []string{"-c:v", "wmv2", "-qscale:v", "3"},
		audio:   []string{"-c:a", "wmav2", "-b:a", "256k"},
	},
	".flv": {
		encoder: "flv",
		video:   []string{"-c:v", "flv", "-qscale:v", "3"},
		audio:   []string{"-c:a", "mp3", "-q:a", "3"},
	},
	".mov": {
		encoder: "prores_ks",
		video:   []string{"-c:v", "prores_ks", "-profile:v", "3"},
		audio:   []string{"-c:a", "pcm_s24le"},
	},
	".ts": {
		encoder: "libx264",
		video:   []string{"-c:v", "libx264", "-crf", "23", "-preset", "medium"},
		audio:   []string{"-c:a", "aac", "-b:a", "192k"},
		extra:   []string{"-f", "mpegts"},
	},
	".3gp": {
		encoder: "libx264",
		video:   []string{"-c:v", "libx264", "-crf", "28", "-preset", "faster", "-profile:v", "baseline", "-level", "3.0"},
		audio:   []string{"-c:a", "aac", "-b:a", "128k", "-ac", "2"},
	},
}

var defaultVideoSetting = videoSetting{
	encoder: "libx264",
	video:   []string{"-c:v", "libx264", "-crf", "23"},
	audio:   []string{"-c:a", "aac", "-b:a", "192k"},
}

func lookupAudio(ext string) audioSetting {
	if setting, ok := audioTable[ext]; ok {
		return setting
	}
	return audioSetting{encoder: "auto"}
}

func lookupVideo(ext string) videoSetting {
	if setting, ok := videoTable[ext]; ok {
		return setting
	}
	return defaultVideoSetting
}

// fillerSource synthesizes a black frame stream for audio-only sources
// written into video containers.
var fillerSource = []string{"-f", "lavfi", "-i", "color=c=black:s=1920x1080"}

func buildConvert(req Request, cmd *command) Profile {
	ext := req.OutputExt()
	out := req.outputKind()

	switch req.InputKind {
	case media.KindImage:
		if ext == ".gif" && media.NormalizeExt(extOf(req.Input)) == ".gif" {
			cmd.add("-lavfi", animatedGIFFilter)
		} else {
			cmd.add(imageTable[ext]...)
		}
		return cmd.profile(true, false, imageEncoder(ext))

	case media.KindAudio:
		if out == media.KindVideo {
			setting := lookupVideo(ext)
			cmd.input(fillerSource...)
			cmd.add("-shortest")
			cmd.add(setting.video...)
			cmd.add(setting.audio...)
			cmd.add(setting.extra...)
			return cmd.profile(true, true, setting.encoder)
		}
		setting := lookupAudio(ext)
		cmd.add("-vn")
		cmd.add(setting.args...)
		return cmd.profile(false, true, setting.encoder)

	default:
		if out == media.KindAudio {
			setting := lookupAudio(ext)
			cmd.add("-vn")
			cmd.add(setting.args...)
			return cmd.profile(false, true, setting.encoder)
		}
		if ext == ".gif" {
			cmd.add("-lavfi", animatedGIFFilter)
			return cmd.profile(true, false, "gif")
		}
		setting := lookupVideo(ext)
		cmd.add(setting.video...)
		cmd.add(setting.audio...)
		cmd.add(setting.extra...)
		return cmd.profile(true, true, setting.encoder)
	}
}

func imageEncoder(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "mjpeg"
	case ".webp":
		return "libwebp"
	case ".heic":
		return "hevc"
	case "":
		return "auto"
	default:
		return ext[1:]
	}
}

func buildMute(req Request, cmd *command) Profile {
	if req.InputKind == media.KindVideo {
		cmd.add("-c:v", "copy", "-c:a", "aac", "-af", "volume=0")
		return cmd.profile(true, true, "copy")
	}
	cmd.add("-af", "volume=0")
	return cmd.profile(false, true, lookupAudio(req.OutputExt()).encoder)
}

func buildResize(req Request, cmd *command) Profile {
	f := strconv.FormatFloat(req.Params.ScaleFactor, 'f', -1, 64)
	cmd.add("-vf", "scale=iw*"+f+":ih*"+f)
	return cmd.profile(true, false, imageEncoder(req.OutputExt()))
}
