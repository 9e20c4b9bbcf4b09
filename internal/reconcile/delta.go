package reconcile

import (
	"fmt"

	"mkvaudur/internal/media/mediainfo"
	"mkvaudur/internal/services"
)

// ReferenceDuration returns the duration of the first video track.
func ReferenceDuration(media mediainfo.Media) (float64, error) {
	video := media.VideoTracks()
	if len(video) == 0 {
		return 0, services.Wrap(services.ErrInvalidMetadata, "reconcile", "reference duration",
			media.Ref+": no video track", nil)
	}
	if err := video[0].CheckDuration(); err != nil {
		return 0, fmt.Errorf("%s: %w", media.Ref, err)
	}
	return video[0].Duration, nil
}

// AudioDeltas returns every audio track in container order with its
// difference from reference. An audio track without a usable duration is
// ErrInvalidMetadata.
func AudioDeltas(media mediainfo.Media, reference float64) ([]TrackDelta, error) {
	audio := media.AudioTracks()
	deltas := make([]TrackDelta, 0, len(audio))
	for _, track := range audio {
		if err := track.CheckDuration(); err != nil {
			return nil, fmt.Errorf("%s: %w", media.Ref, err)
		}
		deltas = append(deltas, TrackDelta{Track: track, Difference: track.Duration - reference})
	}
	return deltas, nil
}
