package reconcile

import "mkvaudur/internal/media/mediainfo"

// TrackFilter selects which tracks are eligible for repair.
type TrackFilter struct {
	// Threshold is the minimum absolute difference in seconds, exclusive.
	Threshold float64
	// Language restricts repairs to tracks with exactly this language code.
	// Empty means no restriction.
	Language string
	// ProcessAll copies tracks that are not eligible instead of skipping them.
	ProcessAll bool
}

// ActionKind enumerates the repairs a track can receive.
type ActionKind int

const (
	ActionSkip ActionKind = iota
	ActionCopy
	ActionTrim
	ActionAppend
)

func (k ActionKind) String() string {
	switch k {
	case ActionCopy:
		return "copy"
	case ActionTrim:
		return "trim"
	case ActionAppend:
		return "append"
	default:
		return "skip"
	}
}

// Action is the decided repair for one track. Duration is the new track
// length for ActionTrim and the silence length for ActionAppend.
type Action struct {
	Kind     ActionKind
	Duration float64
}

// SilenceSpec is the sample format of generated silence.
type SilenceSpec struct {
	SampleRate    int
	ChannelLayout string
}

// DefaultSilenceSpec is used when a track's format cannot be detected.
func DefaultSilenceSpec() SilenceSpec {
	return SilenceSpec{SampleRate: 48000, ChannelLayout: "stereo"}
}

// TrackDelta pairs an audio track with its signed difference from the
// reference duration. Positive means the audio runs long.
type TrackDelta struct {
	Track      mediainfo.Track
	Difference float64
}

// TrackPlan is a delta together with the action decided for it.
type TrackPlan struct {
	TrackDelta
	Action Action
	Reason string
}

// FileReport is the analysis of one source file.
type FileReport struct {
	Source string
	// Name is the file name reported by the metadata probe.
	Name      string
	Reference float64
	Tracks    []TrackPlan
}

// Reported returns the plans whose action is not ActionSkip.
func (r FileReport) Reported() []TrackPlan {
	out := make([]TrackPlan, 0, len(r.Tracks))
	for _, plan := range r.Tracks {
		if plan.Action.Kind != ActionSkip {
			out = append(out, plan)
		}
	}
	return out
}
