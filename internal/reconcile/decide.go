package reconcile

import (
	"fmt"
	"math"
)

// Decide picks the action for one track. A track is eligible when it passes
// the language restriction and its absolute difference is strictly greater
// than the threshold. Eligible tracks that run long are trimmed to the
// reference; those that run short or match get |difference| of silence.
// Ineligible tracks are copied when ProcessAll is set and skipped otherwise.
func Decide(delta TrackDelta, reference float64, filter TrackFilter) Action {
	action, _ := decide(delta, reference, filter)
	return action
}

func decide(delta TrackDelta, reference float64, filter TrackFilter) (Action, string) {
	languageOK := filter.Language == "" || delta.Track.Language == filter.Language
	overThreshold := math.Abs(delta.Difference) > filter.Threshold

	if languageOK && overThreshold {
		if delta.Difference > 0 {
			return Action{Kind: ActionTrim, Duration: reference}, "audio longer than reference"
		}
		return Action{Kind: ActionAppend, Duration: math.Abs(delta.Difference)}, "audio shorter than reference"
	}

	reason := "within threshold"
	if !languageOK {
		reason = fmt.Sprintf("language %q does not match filter", languageOrUnd(delta.Track.Language))
	}
	if filter.ProcessAll {
		return Action{Kind: ActionCopy}, reason
	}
	return Action{Kind: ActionSkip}, reason
}

// Plan decides an action for every delta.
func Plan(deltas []TrackDelta, reference float64, filter TrackFilter) []TrackPlan {
	plans := make([]TrackPlan, 0, len(deltas))
	for _, delta := range deltas {
		action, reason := decide(delta, reference, filter)
		plans = append(plans, TrackPlan{TrackDelta: delta, Action: action, Reason: reason})
	}
	return plans
}

func languageOrUnd(language string) string {
	if language == "" {
		return "und"
	}
	return language
}
