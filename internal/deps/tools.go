package deps

// ToolRequirements lists the external tools used by a run.
//
// mediainfo and ffmpeg are required: without them no file can be inspected
// or written. ffprobe is optional because its only job is reporting a track's
// sample rate and channel layout for silence synthesis, which falls back to a
// configured default when it is unavailable.
func ToolRequirements(mediainfo, ffmpeg, ffprobe string, exporting bool) []Requirement {
	requirements := []Requirement{
		{
			Name:        "MediaInfo",
			Command:     mediainfo,
			Description: "Required for track metadata inspection",
		},
	}
	if !exporting {
		return requirements
	}
	return append(requirements,
		Requirement{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Required for exporting, trimming and padding tracks",
		},
		Requirement{
			Name:        "FFprobe",
			Command:     ffprobe,
			Description: "Detects sample rate and channel layout for appended silence",
			Optional:    true,
		},
	)
}
