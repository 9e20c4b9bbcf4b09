package config

const (
	defaultStateDir             = "~/.local/share/mkvaudur"
	defaultHistoryFile          = "history.db"
	defaultMediaExtension       = "mkv"
	defaultMediaInfoBinary      = "mediainfo"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultSilenceSampleRate    = 48000
	defaultSilenceChannelLayout = "stereo"
	defaultLogFormat            = "console"
	defaultLogLevel             = "warn"
	defaultHistoryEnabled       = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Filter: Filter{
			Threshold: 0,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Tools: Tools{
			MediaInfo: defaultMediaInfoBinary,
			FFmpeg:    defaultFFmpegBinary,
			FFprobe:   defaultFFprobeBinary,
		},
		Silence: Silence{
			DefaultSampleRate:    defaultSilenceSampleRate,
			DefaultChannelLayout: defaultSilenceChannelLayout,
		},
		Media: Media{
			Extension: defaultMediaExtension,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
